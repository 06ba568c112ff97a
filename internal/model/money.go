package model

// Cents is an integer minor-unit monetary amount (spec.md §3: "all monetary
// values are integer minor-units"). Using an integer type instead of a
// float avoids rounding drift across thousands of ticks.
type Cents int64

// Floor applies a percentage (0-100) to an amount, truncating any fraction,
// matching the tick earnings pass's "floor(...)" requirement (spec.md §8
// scenario 1).
func (c Cents) Floor(percent float64) Cents {
	return Cents(float64(c) * percent / 100.0)
}
