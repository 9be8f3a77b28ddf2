package core

import (
	"fmt"
	"time"

	"github.com/anonkampus/matchmaker/internal/metrics"
	"github.com/anonkampus/matchmaker/internal/protocol"
	"github.com/anonkampus/matchmaker/internal/user"
)

// queueEntry is one waiting user. Entries are kept in insertion order; the
// oldest compatible entry always wins a scan.
type queueEntry struct {
	userID     string
	enqueuedAt time.Time
}

// Outcome classifies the result of a match request.
type Outcome string

const (
	// OutcomeMatched means a partner was found and the session is active.
	OutcomeMatched Outcome = "matched"

	// OutcomeWaiting means no partner was available; the user now occupies
	// a queue slot.
	OutcomeWaiting Outcome = "waiting"

	// OutcomeAlreadySearching means the user was already waiting; the
	// request is an idempotent no-op that reports current queue statistics.
	OutcomeAlreadySearching Outcome = "already_searching"
)

// MatchResult is the outcome of RequestMatch. PartnerID is set only for
// OutcomeMatched; Stats accompanies the two waiting outcomes.
type MatchResult struct {
	Outcome   Outcome
	PartnerID string
	Stats     protocol.QueueStats
}

// RequestMatch admits the user to the queue for mode, pairing immediately
// with the oldest compatible waiting user if one exists. Constrained mode
// is only open while the configured window contains now, and pairs opposite
// genders only.
func (c *Core) RequestMatch(userID string, mode user.Mode, now time.Time) (MatchResult, error) {
	if !mode.Valid() {
		return MatchResult{}, fmt.Errorf("core: unknown matching mode %q", mode)
	}
	if mode == user.ModeConstrained && !c.cfg.Window.Contains(now) {
		return MatchResult{}, fmt.Errorf("%w: try again between %s %02d:%02d and %s %02d:%02d",
			ErrOutsideWindow,
			c.cfg.Window.From.Weekday, c.cfg.Window.From.Hour, c.cfg.Window.From.Minute,
			c.cfg.Window.Until.Weekday, c.cfg.Window.Until.Hour, c.cfg.Window.Until.Minute)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.getOrCreate(userID)
	if p.Searching() {
		return MatchResult{Outcome: OutcomeAlreadySearching, Stats: c.stats()}, nil
	}
	if !c.eligible(p) {
		return MatchResult{}, fmt.Errorf("%w: user %s", ErrNotEligible, userID)
	}

	if partner := c.takeCandidate(p, mode); partner != nil {
		c.pair(p, partner)
		metrics.MatchesTotal.WithLabelValues(string(mode)).Inc()

		found := protocol.UserNotification{
			Type: protocol.NotifPartnerFound,
			Text: "Partner found! You are now chatting anonymously. Use stop to leave.",
		}
		c.notifier.NotifyUser(p.ID, found)
		c.notifier.NotifyUser(partner.ID, found)

		return MatchResult{Outcome: OutcomeMatched, PartnerID: partner.ID}, nil
	}

	c.queues[mode] = append(c.queues[mode], queueEntry{userID: userID, enqueuedAt: now})
	p.Status = user.StatusSearching
	p.SearchMode = mode
	c.setQueueGauge(mode)

	return MatchResult{Outcome: OutcomeWaiting, Stats: c.stats()}, nil
}

// takeCandidate scans the mode's queue in insertion order for the first
// compatible candidate and removes it. Entries whose users are no longer
// searching or eligible are dropped along the way. Lock held.
func (c *Core) takeCandidate(p *user.Profile, mode user.Mode) *user.Profile {
	entries := c.queues[mode]
	var matched *user.Profile

	kept := entries[:0]
	for _, e := range entries {
		cand, ok := c.profiles[e.userID]
		if !ok || !cand.Searching() || cand.SearchMode != mode {
			continue // stale entry
		}
		if !cand.Verified() || cand.Banned {
			// Eligibility lapsed while waiting; release the slot.
			cand.Status = user.StatusIdle
			cand.SearchMode = ""
			continue
		}
		if matched == nil && cand.ID != p.ID && compatible(p, cand, mode) {
			matched = cand
			continue
		}
		kept = append(kept, e)
	}
	c.queues[mode] = kept
	c.setQueueGauge(mode)

	return matched
}

// compatible applies the mode's pairing constraint.
func compatible(a, b *user.Profile, mode user.Mode) bool {
	if mode != user.ModeConstrained {
		return true
	}
	return a.Gender.Valid() && b.Gender.Valid() && a.Gender != b.Gender
}

// Dequeue removes the user from whichever queue holds them and clears their
// searching state. No-op if the user is not waiting.
func (c *Core) Dequeue(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dequeue(userID)
}

// dequeue is Dequeue with the lock held.
func (c *Core) dequeue(userID string) {
	p, ok := c.profiles[userID]
	if !ok || !p.Searching() {
		return
	}

	mode := p.SearchMode
	entries := c.queues[mode]
	kept := entries[:0]
	for _, e := range entries {
		if e.userID != userID {
			kept = append(kept, e)
		}
	}
	c.queues[mode] = kept
	c.setQueueGauge(mode)

	p.Status = user.StatusIdle
	p.SearchMode = ""
}

// QueueSize returns the number of users waiting in the mode's queue.
func (c *Core) QueueSize(mode user.Mode) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queues[mode])
}

// Stats returns the queue statistics shown to waiting users.
func (c *Core) Stats() protocol.QueueStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats()
}

// stats is Stats with the lock held.
func (c *Core) stats() protocol.QueueStats {
	var s protocol.QueueStats
	for _, p := range c.profiles {
		if !p.Verified() || p.Banned {
			continue
		}
		s.Verified++
		if p.Searching() {
			s.Searching++
		}
	}
	return s
}

// setQueueGauge updates the queue-size gauge for mode. Lock held.
func (c *Core) setQueueGauge(mode user.Mode) {
	metrics.QueueSize.WithLabelValues(string(mode)).Set(float64(len(c.queues[mode])))
}
