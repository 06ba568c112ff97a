package model

import "time"

// Session is a bearer credential bound to one User (spec.md §3).
type Session struct {
	ID              string
	UserID          string
	Token           string
	IsMobile        bool
	ExpiresAt       time.Time
	DeviceFingerprint string
	SourceIP        string
	CreatedAt       time.Time
}

// Expired reports whether the session has outlived its lifetime.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

const (
	// WebSessionLifetime is the ≈24h bearer-token lifetime for web clients
	// (spec.md §6).
	WebSessionLifetime = 24 * time.Hour
	// MobileSessionLifetime is the ≈90-day lifetime for mobile clients.
	MobileSessionLifetime = 90 * 24 * time.Hour
)
