package core

import (
	"testing"

	"github.com/anonkampus/matchmaker/internal/protocol"
	"github.com/anonkampus/matchmaker/internal/user"
)

// TestWeekendEveningLifecycle walks one full service lifecycle: onboarding,
// verification, constrained matching, chatting, a report, the resulting ban,
// and the partner's return to the queue.
func TestWeekendEveningLifecycle(t *testing.T) {
	c, rec := newTestCore(t)

	// Two students onboard during a weekend evening.
	if err := c.SubmitOnboarding("rina", Submission{Affiliation: "UI", Gender: user.GenderFemale, Age: 20}); err != nil {
		t.Fatal(err)
	}
	if err := c.SubmitOnboarding("budi", Submission{Affiliation: "ITB", Gender: user.GenderMale, Age: 22}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"rina", "budi"} {
		if err := c.Decide("mod", id, true); err != nil {
			t.Fatalf("Decide(%s): %v", id, err)
		}
	}

	// They meet in the constrained pool.
	if res, err := c.RequestMatch("rina", user.ModeConstrained, saturdayNoon); err != nil || res.Outcome != OutcomeWaiting {
		t.Fatalf("rina: %v / %+v", err, res)
	}
	res, err := c.RequestMatch("budi", user.ModeConstrained, saturdayNoon)
	if err != nil || res.Outcome != OutcomeMatched || res.PartnerID != "rina" {
		t.Fatalf("budi: %v / %+v", err, res)
	}

	// A short conversation turns sour.
	if err := c.Relay("budi", "hey :)"); err != nil {
		t.Fatal(err)
	}
	if err := c.Relay("budi", "send me money"); err != nil {
		t.Fatal(err)
	}

	ticket, err := c.Report("rina")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if ticket.ReportedID != "budi" || len(ticket.History) != 2 {
		t.Fatalf("ticket = %+v", ticket)
	}

	// A moderator reviews the ticket and bans budi; rina's session ends
	// with the reason attached, and she can search again right away.
	if err := c.SetBanned("mod", "budi", true); err != nil {
		t.Fatalf("SetBanned: %v", err)
	}
	if n := rec.lastUser(t, "rina"); n.Type != protocol.NotifPartnerLeft || n.Reason != string(ReasonBanned) {
		t.Errorf("rina got %q/%q", n.Type, n.Reason)
	}
	if res, err := c.RequestMatch("rina", user.ModeConstrained, saturdayNoon); err != nil || res.Outcome != OutcomeWaiting {
		t.Fatalf("rina requeue: %v / %+v", err, res)
	}

	// Budi cannot come back until a moderator lifts the ban.
	if _, err := c.RequestMatch("budi", user.ModeConstrained, saturdayNoon); err == nil {
		t.Fatal("banned user admitted to the queue")
	}
	if err := c.SetBanned("mod", "budi", false); err != nil {
		t.Fatal(err)
	}
	if res, err := c.RequestMatch("budi", user.ModeConstrained, saturdayNoon); err != nil || res.Outcome != OutcomeMatched {
		t.Fatalf("budi after unban: %v / %+v", err, res)
	}
}
