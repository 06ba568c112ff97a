package model

import "time"

// Tenant is the multi-tenant organizational scope for Users, auth, and
// audit (spec.md §3 "Tenant (Company)"). It is distinct from GameCompany,
// which is a player's in-game economic actor.
type Tenant struct {
	ID              string
	Name            string
	AdminUserID     string // exactly one admin user may be designated
	RetentionDays   int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
