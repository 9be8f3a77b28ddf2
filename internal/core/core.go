// Package core implements the anonymous matchmaking and session state
// machine: user registry, verification workflow, match queues, session
// pairing, and the moderation gate.
//
// The chat platform delivers events from many users concurrently, so every
// read and mutation of the shared state (profiles, queues, pending
// verifications, history) is serialized through a single mutex. Queue scans
// and pairing complete synchronously inside the critical section; nothing
// here blocks indefinitely.
package core

import (
	"sort"
	"sync"
	"time"

	"github.com/anonkampus/matchmaker/internal/history"
	"github.com/anonkampus/matchmaker/internal/metrics"
	"github.com/anonkampus/matchmaker/internal/notify"
	"github.com/anonkampus/matchmaker/internal/user"
)

// Config holds the matchmaking policy knobs.
type Config struct {
	Moderators []string // user IDs allowed to decide verifications and ban
	AgeMin     int      // inclusive onboarding age bounds
	AgeMax     int
	Window     Window // constrained-mode admission window
}

// DefaultConfig returns the product defaults: ages 18-25 and the weekend
// evening window.
func DefaultConfig() Config {
	return Config{
		AgeMin: 18,
		AgeMax: 25,
		Window: DefaultWindow(),
	}
}

// Core owns all matchmaking state. All exported methods are safe for
// concurrent use; outbound notifications are emitted while the lock is held,
// so a Notifier implementation must not call back into the Core.
type Core struct {
	mu         sync.Mutex
	cfg        Config
	moderators map[string]bool
	notifier   notify.Notifier

	profiles map[string]*user.Profile
	queues   map[user.Mode][]queueEntry
	pending  map[string]PendingVerification
	history  *history.Buffer
}

// New creates a Core with the given policy and notification sink. A nil
// notifier discards all notifications.
func New(cfg Config, n notify.Notifier) *Core {
	if n == nil {
		n = notify.Discard{}
	}
	moderators := make(map[string]bool, len(cfg.Moderators))
	for _, id := range cfg.Moderators {
		moderators[id] = true
	}
	return &Core{
		cfg:        cfg,
		moderators: moderators,
		notifier:   n,
		profiles:   make(map[string]*user.Profile),
		queues:     make(map[user.Mode][]queueEntry),
		pending:    make(map[string]PendingVerification),
		history:    history.NewBuffer(),
	}
}

// Snapshot returns copies of all profiles, ordered by ID, for persistence.
// Transient matching state travels with the copies but is discarded on
// Restore; only profile, verification, and ban data survive a restart.
func (c *Core) Snapshot() []user.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]user.Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restore replaces the registry with the given profiles. Sessions and queue
// slots do not survive a restart: every restored profile starts idle.
func (c *Core) Restore(profiles []user.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.profiles = make(map[string]*user.Profile, len(profiles))
	c.queues = make(map[user.Mode][]queueEntry)
	c.pending = make(map[string]PendingVerification)
	c.history = history.NewBuffer()

	for _, p := range profiles {
		cp := p
		cp.Status = user.StatusIdle
		cp.SearchMode = ""
		cp.PartnerID = ""
		if cp.Verification == "" {
			cp.Verification = user.VerificationUnsubmitted
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
		c.profiles[cp.ID] = &cp
	}

	metrics.ActiveSessions.Set(0)
	for _, mode := range []user.Mode{user.ModeOpen, user.ModeConstrained} {
		metrics.QueueSize.WithLabelValues(string(mode)).Set(0)
	}
	c.refreshVerifiedGauge()
}

// isModerator reports whether id is a configured moderator identity.
func (c *Core) isModerator(id string) bool {
	return c.moderators[id]
}

// refreshVerifiedGauge recomputes the verified-users gauge. Lock held.
func (c *Core) refreshVerifiedGauge() {
	n := 0
	for _, p := range c.profiles {
		if p.Verified() && !p.Banned {
			n++
		}
	}
	metrics.VerifiedUsers.Set(float64(n))
}
