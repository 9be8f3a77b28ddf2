// Package user defines the profile and matching-state model shared by the
// matchmaking core and its collaborators. A profile is created lazily on
// first contact and is never destroyed; the matching status is a single
// tagged state so that "searching with a partner" is unrepresentable.
package user

import "time"

// Gender is a binary attribute used only by constrained matching.
// The binary model mirrors the product rules, not a recommendation.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// Valid reports whether g is one of the two accepted values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Mode selects the matching pool a user enters.
type Mode string

const (
	// ModeOpen matches any two eligible waiting users.
	ModeOpen Mode = "open"

	// ModeConstrained is the weekend "cari doi" pool: opposite gender only,
	// admitted only while the configured time window is active.
	ModeConstrained Mode = "constrained"
)

// Valid reports whether m is a known matching mode.
func (m Mode) Valid() bool {
	return m == ModeOpen || m == ModeConstrained
}

// Status is the tagged matching state of a user. Exactly one of the three
// holds at any time; SearchMode and PartnerID carry the tag's payload.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSearching Status = "searching"
	StatusPaired    Status = "paired"
)

// Verification is the onboarding state machine position.
type Verification string

const (
	VerificationUnsubmitted Verification = "unsubmitted"
	VerificationPending     Verification = "pending"
	VerificationVerified    Verification = "verified"
	VerificationRejected    Verification = "rejected"
)

// Profile is the per-participant record owned by the matchmaking core.
//
// SearchMode is meaningful only while Status == StatusSearching, and
// PartnerID only while Status == StatusPaired; both are cleared on every
// transition out of their state.
type Profile struct {
	ID           string
	Verification Verification
	Banned       bool
	Gender       Gender
	Age          int
	Affiliation  string
	Status       Status
	SearchMode   Mode
	PartnerID    string
	CreatedAt    time.Time
}

// New returns a freshly initialized profile for a first-contact user.
func New(id string) *Profile {
	return &Profile{
		ID:           id,
		Verification: VerificationUnsubmitted,
		Status:       StatusIdle,
		CreatedAt:    time.Now(),
	}
}

// Verified reports whether the user passed moderator verification.
func (p *Profile) Verified() bool {
	return p.Verification == VerificationVerified
}

// Searching reports whether the user currently occupies a queue slot.
func (p *Profile) Searching() bool {
	return p.Status == StatusSearching
}

// Paired reports whether the user is in an active session.
func (p *Profile) Paired() bool {
	return p.Status == StatusPaired
}

// Clone returns a copy of the profile, safe to hand outside the core's
// synchronization domain.
func (p *Profile) Clone() Profile {
	return *p
}
