package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/anonkampus/matchmaker/internal/protocol"
	"github.com/anonkampus/matchmaker/internal/user"
)

func TestRequestMatchPairsOldestWaiting(t *testing.T) {
	c, rec := newTestCore(t)
	for i := 1; i <= 4; i++ {
		verify(t, c, fmt.Sprintf("u%d", i), user.GenderMale)
	}

	// u1, u2, u3 queue in order; u4 arrives and must get u1.
	for _, id := range []string{"u1", "u2", "u3"} {
		res, err := c.RequestMatch(id, user.ModeOpen, saturdayNoon)
		if err != nil {
			t.Fatalf("RequestMatch(%s): %v", id, err)
		}
		if res.Outcome != OutcomeWaiting {
			t.Fatalf("RequestMatch(%s) = %s, want waiting", id, res.Outcome)
		}
	}

	res, err := c.RequestMatch("u4", user.ModeOpen, saturdayNoon)
	if err != nil {
		t.Fatalf("RequestMatch(u4): %v", err)
	}
	if res.Outcome != OutcomeMatched || res.PartnerID != "u1" {
		t.Fatalf("u4 got %s/%s, want matched with u1", res.Outcome, res.PartnerID)
	}

	// Both ends are notified and both point at each other.
	for _, pair := range [][2]string{{"u1", "u4"}, {"u4", "u1"}} {
		if n := rec.lastUser(t, pair[0]); n.Type != protocol.NotifPartnerFound {
			t.Errorf("%s notified with %q, want partner_found", pair[0], n.Type)
		}
	}
	if c.QueueSize(user.ModeOpen) != 2 {
		t.Errorf("queue size = %d, want 2 (u2, u3 still waiting)", c.QueueSize(user.ModeOpen))
	}
}

func TestRequestMatchIdempotentWhileWaiting(t *testing.T) {
	c, _ := newTestCore(t)
	verify(t, c, "u1", user.GenderMale)

	if _, err := c.RequestMatch("u1", user.ModeOpen, saturdayNoon); err != nil {
		t.Fatalf("RequestMatch: %v", err)
	}
	res, err := c.RequestMatch("u1", user.ModeOpen, saturdayNoon)
	if err != nil {
		t.Fatalf("repeat RequestMatch: %v", err)
	}
	if res.Outcome != OutcomeAlreadySearching {
		t.Errorf("outcome = %s, want already_searching", res.Outcome)
	}
	if res.Stats.Verified != 1 || res.Stats.Searching != 1 {
		t.Errorf("stats = %+v, want 1 verified / 1 searching", res.Stats)
	}
	if c.QueueSize(user.ModeOpen) != 1 {
		t.Errorf("repeat request duplicated the queue entry")
	}
}

func TestRequestMatchEligibility(t *testing.T) {
	c, _ := newTestCore(t)

	// Unknown user: never verified.
	if _, err := c.RequestMatch("stranger", user.ModeOpen, saturdayNoon); !errors.Is(err, ErrNotEligible) {
		t.Errorf("unverified: got %v, want ErrNotEligible", err)
	}

	// Banned user.
	verify(t, c, "banned", user.GenderMale)
	if err := c.SetBanned("mod", "banned", true); err != nil {
		t.Fatalf("SetBanned: %v", err)
	}
	if _, err := c.RequestMatch("banned", user.ModeOpen, saturdayNoon); !errors.Is(err, ErrNotEligible) {
		t.Errorf("banned: got %v, want ErrNotEligible", err)
	}

	// Already paired user.
	verify(t, c, "a", user.GenderMale)
	verify(t, c, "b", user.GenderMale)
	mustPair(t, c, "a", "b")
	if _, err := c.RequestMatch("a", user.ModeOpen, saturdayNoon); !errors.Is(err, ErrNotEligible) {
		t.Errorf("paired: got %v, want ErrNotEligible", err)
	}
}

func TestRequestMatchUnknownMode(t *testing.T) {
	c, _ := newTestCore(t)
	verify(t, c, "u1", user.GenderMale)
	if _, err := c.RequestMatch("u1", "speed_dating", saturdayNoon); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestConstrainedModeWindow(t *testing.T) {
	c, _ := newTestCore(t)
	verify(t, c, "u1", user.GenderMale)

	if _, err := c.RequestMatch("u1", user.ModeConstrained, wednesdayNoon); !errors.Is(err, ErrOutsideWindow) {
		t.Errorf("weekday request: got %v, want ErrOutsideWindow", err)
	}
	if res, err := c.RequestMatch("u1", user.ModeConstrained, saturdayNoon); err != nil || res.Outcome != OutcomeWaiting {
		t.Errorf("weekend request failed: %v / %+v", err, res)
	}

	// Open mode ignores the window entirely.
	verify(t, c, "u2", user.GenderMale)
	if _, err := c.RequestMatch("u2", user.ModeOpen, wednesdayNoon); err != nil {
		t.Errorf("open mode blocked on a weekday: %v", err)
	}
}

func TestConstrainedModePairsOppositeGenders(t *testing.T) {
	c, _ := newTestCore(t)
	verify(t, c, "m1", user.GenderMale)
	verify(t, c, "m2", user.GenderMale)
	verify(t, c, "f1", user.GenderFemale)

	if _, err := c.RequestMatch("m1", user.ModeConstrained, saturdayNoon); err != nil {
		t.Fatalf("RequestMatch(m1): %v", err)
	}

	// Same gender skips m1 and waits behind him.
	res, err := c.RequestMatch("m2", user.ModeConstrained, saturdayNoon)
	if err != nil {
		t.Fatalf("RequestMatch(m2): %v", err)
	}
	if res.Outcome != OutcomeWaiting {
		t.Fatalf("m2 matched m1 in constrained mode")
	}

	// Opposite gender takes the oldest compatible entry.
	res, err = c.RequestMatch("f1", user.ModeConstrained, saturdayNoon)
	if err != nil {
		t.Fatalf("RequestMatch(f1): %v", err)
	}
	if res.Outcome != OutcomeMatched || res.PartnerID != "m1" {
		t.Errorf("f1 got %s/%s, want matched with m1", res.Outcome, res.PartnerID)
	}
	if c.QueueSize(user.ModeConstrained) != 1 {
		t.Errorf("queue size = %d, want 1 (m2 remains)", c.QueueSize(user.ModeConstrained))
	}
}

func TestQueueDropsLapsedEntries(t *testing.T) {
	c, _ := newTestCore(t)
	verify(t, c, "u1", user.GenderMale)
	verify(t, c, "u2", user.GenderMale)
	verify(t, c, "u3", user.GenderMale)

	if _, err := c.RequestMatch("u1", user.ModeOpen, saturdayNoon); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RequestMatch("u2", user.ModeOpen, saturdayNoon); err != nil {
		t.Fatal(err)
	}

	// u1 gets banned while waiting: the entry must be skipped, not matched.
	if err := c.SetBanned("mod", "u1", true); err != nil {
		t.Fatalf("SetBanned: %v", err)
	}

	res, err := c.RequestMatch("u3", user.ModeOpen, saturdayNoon)
	if err != nil {
		t.Fatalf("RequestMatch(u3): %v", err)
	}
	if res.Outcome != OutcomeMatched || res.PartnerID != "u2" {
		t.Errorf("u3 got %s/%s, want matched with u2", res.Outcome, res.PartnerID)
	}
	if c.QueueSize(user.ModeOpen) != 0 {
		t.Errorf("stale entry survived the scan, queue size = %d", c.QueueSize(user.ModeOpen))
	}
}

func TestStatsCountsVerifiedAndSearching(t *testing.T) {
	c, _ := newTestCore(t)
	verify(t, c, "u1", user.GenderMale)
	verify(t, c, "u2", user.GenderMale)
	verify(t, c, "u3", user.GenderFemale)
	if err := c.SetBanned("mod", "u3", true); err != nil {
		t.Fatal(err)
	}

	if _, err := c.RequestMatch("u1", user.ModeOpen, saturdayNoon); err != nil {
		t.Fatal(err)
	}

	stats := c.Stats()
	if stats.Verified != 2 {
		t.Errorf("verified = %d, want 2 (banned excluded)", stats.Verified)
	}
	if stats.Searching != 1 {
		t.Errorf("searching = %d, want 1", stats.Searching)
	}
}

// mustPair puts a and b in an open-mode session.
func mustPair(t *testing.T, c *Core, a, b string) {
	t.Helper()
	if _, err := c.RequestMatch(a, user.ModeOpen, saturdayNoon); err != nil {
		t.Fatalf("RequestMatch(%s): %v", a, err)
	}
	res, err := c.RequestMatch(b, user.ModeOpen, saturdayNoon)
	if err != nil {
		t.Fatalf("RequestMatch(%s): %v", b, err)
	}
	if res.Outcome != OutcomeMatched || res.PartnerID != a {
		t.Fatalf("pairing %s with %s got %s/%s", b, a, res.Outcome, res.PartnerID)
	}
}
