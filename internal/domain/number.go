package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric cell that may be missing in the source data.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a present Number.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Missing is the zero Number.
var Missing = Number{}

// ParseNumber parses a CSV cell. Empty cells and "nan" are missing, not errors.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return Missing, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing, fmt.Errorf("parse number %q: %w", s, err)
	}
	return Num(v), nil
}

// Sub returns n - o, missing if either operand is missing.
func (n Number) Sub(o Number) Number {
	if !n.Valid || !o.Valid {
		return Missing
	}
	return Num(n.Value - o.Value)
}

func (n Number) String() string {
	if !n.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalJSON encodes a missing or non-finite number as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Missing
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Num(v)
	return nil
}

func maxValid(nums ...Number) float64 {
	var hi float64
	for _, n := range nums {
		if n.Valid && n.Value > hi {
			hi = n.Value
		}
	}
	return hi
}
