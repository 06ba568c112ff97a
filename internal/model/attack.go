package model

import "time"

// TrickType is one of the closed set of offensive actions (spec.md §4.4).
type TrickType string

const (
	TrickVandalism   TrickType = "vandalism"
	TrickArson       TrickType = "arson"
	TrickSabotage    TrickType = "sabotage"
	TrickInfestation TrickType = "infestation"
)

// TrickDefinition holds a trick's cost, damage, and side effects. Like the
// building/security catalogs, this is configuration data (spec.md §9).
type TrickDefinition struct {
	Type                TrickType
	Cost                Cents
	BaseDamagePercent   float64
	DetectionProbability float64 // ∈ [0,1]
	Cooldown            time.Duration
	SetsBurning         bool
	SetsOverlay         string // "fire" | "rubble" | "vermin" | ""
}

// TrickCatalog maps a trick type to its definition.
type TrickCatalog map[TrickType]TrickDefinition

// DefaultTrickCatalog returns the seed trick table.
func DefaultTrickCatalog() TrickCatalog {
	entries := []TrickDefinition{
		{Type: TrickVandalism, Cost: 500_00, BaseDamagePercent: 15, DetectionProbability: 0.10, Cooldown: time.Hour, SetsOverlay: "rubble"},
		{Type: TrickArson, Cost: 2_000_00, BaseDamagePercent: 40, DetectionProbability: 0.25, Cooldown: 4 * time.Hour, SetsBurning: true, SetsOverlay: "fire"},
		{Type: TrickSabotage, Cost: 1_200_00, BaseDamagePercent: 25, DetectionProbability: 0.18, Cooldown: 2 * time.Hour, SetsOverlay: "rubble"},
		{Type: TrickInfestation, Cost: 800_00, BaseDamagePercent: 20, DetectionProbability: 0.15, Cooldown: 3 * time.Hour, SetsOverlay: "vermin"},
	}
	c := make(TrickCatalog, len(entries))
	for _, e := range entries {
		c[e.Type] = e
	}
	return c
}

// ModerationStatus tracks an Attack message through the Moderation Gate.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Attack is a record of one offensive action (spec.md §3).
type Attack struct {
	ID               string
	AttackerCompanyID string
	TargetBuildingID string
	Trick            TrickType
	Message          string
	ModerationStatus ModerationStatus
	Detected         bool
	FineApplied      Cents
	CreatedAt        time.Time
}
