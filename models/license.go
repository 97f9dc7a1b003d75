package models

import "time"

// License is the locally cached copy of the entitlement issued by the remote
// service. It is never locally authoritative: the remote service can revoke
// it at any time, and a rejected validation clears the cache entirely.
type License struct {
	// Key is the opaque license key used as the bearer credential on every
	// proxied remote call.
	Key string `json:"key"`

	// Email identifies the account the license is bound to.
	Email string `json:"email"`

	// Plan is the subscription tier tag ("free", "pro", "team").
	Plan string `json:"plan"`

	// Credits is the last known credit balance. Meaningless when
	// Unlimited is set.
	Credits float64 `json:"credits"`

	// Unlimited marks plans without a metered balance.
	Unlimited bool `json:"unlimited"`

	// ExpiresAt is the license expiry reported by the remote service, or
	// parsed from the key's JWT claims when the response omits it.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// ValidatedAt is the local time of the last successful remote
	// validation of this license.
	ValidatedAt time.Time `json:"validated_at"`
}

// HasCredits reports whether the license permits one more metered call.
func (l License) HasCredits() bool {
	return l.Unlimited || l.Credits > 0
}

// Session is the license summary exposed to the UI. It carries everything
// the dashboard needs except the key itself.
type Session struct {
	Email       string     `json:"email"`
	Plan        string     `json:"plan"`
	Credits     float64    `json:"credits"`
	Unlimited   bool       `json:"unlimited"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ValidatedAt time.Time  `json:"validated_at"`
}

// Summary converts a cached license into its UI-facing session form.
func (l License) Summary() Session {
	return Session{
		Email:       l.Email,
		Plan:        l.Plan,
		Credits:     l.Credits,
		Unlimited:   l.Unlimited,
		ExpiresAt:   l.ExpiresAt,
		ValidatedAt: l.ValidatedAt,
	}
}
