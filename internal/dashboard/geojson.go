package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

// CountyKey is the feature property the map matches CountyName against.
const CountyKey = "county"

// GeoJSON is the county boundary file served to the map. The raw bytes are
// served unchanged.
type GeoJSON struct {
	Raw      []byte
	Counties []string
}

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// LoadGeoJSON reads and checks a FeatureCollection whose features carry a
// county name property.
func LoadGeoJSON(path string) (*GeoJSON, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return ParseGeoJSON(raw)
}

// ParseGeoJSON checks raw and extracts the county names.
func ParseGeoJSON(raw []byte) (*GeoJSON, error) {
	var fc featureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("geojson type %q, want FeatureCollection", fc.Type)
	}

	g := &GeoJSON{Raw: raw}
	for i, f := range fc.Features {
		name, ok := f.Properties[CountyKey].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("geojson feature %d: missing properties.%s", i, CountyKey)
		}
		g.Counties = append(g.Counties, name)
	}
	return g, nil
}

// Unmatched returns county names in the dataset with no feature, and
// feature names with no county rows.
func (g *GeoJSON) Unmatched(ds *domain.Dataset) (noFeature, noRows []string) {
	features := make(map[string]bool, len(g.Counties))
	for _, c := range g.Counties {
		features[c] = true
	}
	rows := make(map[string]bool)
	for _, r := range ds.County {
		rows[r.CountyName] = true
	}

	for c := range rows {
		if !features[c] {
			noFeature = append(noFeature, c)
		}
	}
	for c := range features {
		if !rows[c] {
			noRows = append(noRows, c)
		}
	}
	sort.Strings(noFeature)
	sort.Strings(noRows)
	return noFeature, noRows
}
