package model

// Tier is a map's progression tier, determining starting cash, tax rate,
// and the profit-engine tier multiplier (spec.md GLOSSARY).
type Tier string

const (
	TierTown    Tier = "town"
	TierCity    Tier = "city"
	TierCapital Tier = "capital"
)

// Next returns the tier a company unlocks by heroing out of t, and false if
// t is already the top tier.
func (t Tier) Next() (Tier, bool) {
	switch t {
	case TierTown:
		return TierCity, true
	case TierCity:
		return TierCapital, true
	default:
		return "", false
	}
}

// StartingCash is the initial cash granted when a GameCompany joins a map
// of this tier (spec.md §4.7).
func (t Tier) StartingCash() Cents {
	switch t {
	case TierTown:
		return 50_000_00
	case TierCity:
		return 1_000_000_00
	case TierCapital:
		return 5_000_000_00
	default:
		return 0
	}
}

// TaxRate is the percentage of positive net income taken during the tick
// earnings pass (spec.md §4.5 pass 2).
func (t Tier) TaxRate() float64 {
	switch t {
	case TierTown:
		return 10
	case TierCity:
		return 15
	case TierCapital:
		return 20
	default:
		return 0
	}
}

// ProfitMultiplier is the map-tier multiplier applied in the adjacency
// engine (spec.md §4.1 step 3). Capital > city > town.
func (t Tier) ProfitMultiplier() float64 {
	switch t {
	case TierTown:
		return 1.0
	case TierCity:
		return 1.25
	case TierCapital:
		return 1.6
	default:
		return 1.0
	}
}

// HeroThresholds are the net-worth/cash/land% thresholds a GameCompany must
// clear on this map to become eligible to hero out (spec.md §4.5 pass 6).
type HeroThresholds struct {
	NetWorth    Cents
	Cash        Cents
	LandPercent float64
}

// Map is a rectangular grid on which GameCompanies own tiles (spec.md §3).
type Map struct {
	ID               string
	Country          string
	Tier             Tier
	Width            int // ∈ [1,100]
	Height           int // ∈ [1,100]
	HeroThresholds   HeroThresholds
	PoliceStrikeDay  int // day-of-week, 0=Sunday; -1 disables
	Active           bool
}

// TileCount returns the number of tiles a map of these dimensions holds.
func (m *Map) TileCount() int {
	return m.Width * m.Height
}
