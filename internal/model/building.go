package model

import "time"

// ProfitContribution is one non-zero adjacency/tier contribution recorded
// by the profit engine (spec.md §4.1 step 5).
type ProfitContribution struct {
	Source string // e.g. "neighbor:temple", "tier_multiplier", "road_access"
	Delta  float64
	Reason string
}

// ProfitBreakdown is the full set of contributions behind a calculated
// profit or value.
type ProfitBreakdown struct {
	Contributions []ProfitContribution
}

// BuildingInstance is a built structure on one tile (spec.md §3).
type BuildingInstance struct {
	ID                string
	MapID             string
	Coordinate        Coordinate
	TypeID            BuildingTypeID
	OwnerCompanyID    string
	Variant           *string

	CalculatedProfit  Cents
	CalculatedValue   Cents
	ProfitBreakdown   ProfitBreakdown
	ValueBreakdown    ProfitBreakdown

	DamagePercent     float64 // ∈ [0,100]
	Collapsed         bool
	Burning           bool
	NeedsProfitRecalc bool
	LastTickApplied   int64

	CreatedAt time.Time
}

// Live reports whether the instance currently occupies its tile in a
// non-collapsed, non-demolished state.
func (b *BuildingInstance) Live() bool {
	return !b.Collapsed && b.TypeID != BuildingDemolished
}

// EffectiveIncomeFactor is (1 - damage/100), the multiplier applied to
// calculated profit during the tick earnings pass (spec.md §4.5 pass 2).
func (b *BuildingInstance) EffectiveIncomeFactor() float64 {
	return 1.0 - b.DamagePercent/100.0
}

// State is the building state machine of spec.md §4.4: healthy → damaged →
// burning (if arson) → collapsed.
type State string

const (
	StateHealthy   State = "healthy"
	StateDamaged   State = "damaged"
	StateBurning   State = "burning"
	StateCollapsed State = "collapsed"
)

// CurrentState derives the state-machine label from the instance's flags,
// for display and for tests asserting transitions.
func (b *BuildingInstance) CurrentState() State {
	switch {
	case b.Collapsed:
		return StateCollapsed
	case b.Burning:
		return StateBurning
	case b.DamagePercent > 0:
		return StateDamaged
	default:
		return StateHealthy
	}
}
