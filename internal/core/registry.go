package core

import (
	"fmt"
	"sort"

	"github.com/anonkampus/matchmaker/internal/protocol"
	"github.com/anonkampus/matchmaker/internal/user"
)

// getOrCreate returns the profile for id, creating a fresh one on first
// contact. Unknown users are never a failure. Lock held.
func (c *Core) getOrCreate(id string) *user.Profile {
	p, ok := c.profiles[id]
	if !ok {
		p = user.New(id)
		c.profiles[id] = p
	}
	return p
}

// eligible implements the matching eligibility gate: verified, not banned,
// not already paired. Lock held.
func (c *Core) eligible(p *user.Profile) bool {
	return p.Verified() && !p.Banned && !p.Paired()
}

// EligibleForMatching reports whether the user may enter a match queue.
func (c *Core) EligibleForMatching(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eligible(c.getOrCreate(userID))
}

// view renders a profile for external consumption. Lock held.
func view(p *user.Profile) protocol.ProfileView {
	return protocol.ProfileView{
		ID:          p.ID,
		Affiliation: p.Affiliation,
		Gender:      string(p.Gender),
		Age:         p.Age,
		Verified:    p.Verified(),
		Banned:      p.Banned,
		Status:      string(p.Status),
	}
}

// ProfileView returns the user's own profile rendering, creating the profile
// on first contact.
func (c *Core) ProfileView(userID string) protocol.ProfileView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view(c.getOrCreate(userID))
}

// Filter selects a subset of the registry in ListUsers.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterVerified   Filter = "verified"
	FilterUnverified Filter = "unverified"
	FilterBanned     Filter = "banned"
)

// ListUsers returns profile views matching the filter, ordered by ID.
// Moderator-only.
func (c *Core) ListUsers(moderatorID string, filter Filter) ([]protocol.ProfileView, error) {
	if !c.isModerator(moderatorID) {
		return nil, fmt.Errorf("%w: %s is not a moderator", ErrUnauthorized, moderatorID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var out []protocol.ProfileView
	for _, p := range c.profiles {
		switch filter {
		case FilterVerified:
			if !p.Verified() {
				continue
			}
		case FilterUnverified:
			if p.Verified() {
				continue
			}
		case FilterBanned:
			if !p.Banned {
				continue
			}
		case FilterAll, "":
		default:
			return nil, fmt.Errorf("core: unknown filter %q", filter)
		}
		out = append(out, view(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
