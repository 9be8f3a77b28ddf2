package core

import "errors"

// Error kinds surfaced by core operations. All are local and recoverable;
// a failed operation leaves the data model unchanged.
var (
	// ErrInvalidProfile rejects an onboarding submission with missing
	// fields or an out-of-range age.
	ErrInvalidProfile = errors.New("core: invalid profile")

	// ErrNotEligible rejects matching attempted by an unverified, banned,
	// or already-paired user.
	ErrNotEligible = errors.New("core: not eligible for matching")

	// ErrOutsideWindow rejects constrained-mode matching outside the
	// configured time window.
	ErrOutsideWindow = errors.New("core: outside constrained match window")

	// ErrNoActivePartner rejects relay and report attempts with no session.
	ErrNoActivePartner = errors.New("core: no active partner")

	// ErrNotPending rejects a moderator verdict with no pending request.
	ErrNotPending = errors.New("core: no pending verification")

	// ErrUnauthorized rejects moderator actions from non-moderator identities.
	ErrUnauthorized = errors.New("core: unauthorized")
)
