package domain

// ActiveWindow is the number of days after which a confirmed case is
// assumed resolved.
const ActiveWindow = 14

// EstimateActiveCases derives estimated active cases from an ascending
// series of cumulative confirmed totals. The first ActiveWindow entries are
// the totals themselves; after that each entry is the total minus the total
// ActiveWindow days earlier. Missing totals yield missing estimates.
func EstimateActiveCases(totals []Number) []Number {
	active := make([]Number, len(totals))
	for i, total := range totals {
		if i < ActiveWindow {
			active[i] = total
			continue
		}
		active[i] = total.Sub(totals[i-ActiveWindow])
	}
	return active
}

// rollingMean averages each value with up to window-1 predecessors,
// skipping missing values. A window with no present values is missing.
func rollingMean(values []Number, window int) []Number {
	out := make([]Number, len(values))
	for i := range values {
		var sum float64
		var n int
		for j := max(0, i-window+1); j <= i; j++ {
			if values[j].Valid {
				sum += values[j].Value
				n++
			}
		}
		if n > 0 {
			out[i] = Num(sum / float64(n))
		}
	}
	return out
}
