package core

import (
	"fmt"
	"time"

	"github.com/anonkampus/matchmaker/internal/metrics"
	"github.com/anonkampus/matchmaker/internal/protocol"
	"github.com/anonkampus/matchmaker/internal/user"
)

// Submission is a completed onboarding form.
type Submission struct {
	Affiliation string
	Gender      user.Gender
	Age         int
}

// PendingVerification is an onboarding submission awaiting a moderator
// verdict. There is no timeout: requests pend indefinitely.
type PendingVerification struct {
	UserID      string
	Submission  Submission
	SubmittedAt time.Time
}

// SubmitOnboarding validates a submission, stores it on the profile, and
// parks the user in PENDING until a moderator decides. A verified or
// rejected user may resubmit: the change-profile path clears verification
// and restarts the workflow. Moderators are notified with the full
// submission and decision affordances.
func (c *Core) SubmitOnboarding(userID string, sub Submission) error {
	if sub.Affiliation == "" {
		return fmt.Errorf("%w: affiliation is required", ErrInvalidProfile)
	}
	if !sub.Gender.Valid() {
		return fmt.Errorf("%w: gender must be %q or %q", ErrInvalidProfile, user.GenderMale, user.GenderFemale)
	}
	if sub.Age < c.cfg.AgeMin || sub.Age > c.cfg.AgeMax {
		return fmt.Errorf("%w: age must be between %d and %d", ErrInvalidProfile, c.cfg.AgeMin, c.cfg.AgeMax)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.getOrCreate(userID)
	if p.Banned {
		// Banned users are locked out of every action, including putting
		// new submissions in front of the moderators.
		return fmt.Errorf("%w: banned users cannot submit a profile", ErrNotEligible)
	}
	if p.Status != user.StatusIdle {
		// Profile changes are not accepted mid-search or mid-session.
		return fmt.Errorf("%w: stop searching or chatting before changing your profile", ErrNotEligible)
	}

	p.Affiliation = sub.Affiliation
	p.Gender = sub.Gender
	p.Age = sub.Age
	p.Verification = user.VerificationPending
	c.refreshVerifiedGauge()

	// A resubmission replaces any earlier pending request.
	c.pending[userID] = PendingVerification{
		UserID:      userID,
		Submission:  sub,
		SubmittedAt: time.Now(),
	}

	pv := view(p)
	c.notifier.NotifyModerators(protocol.ModeratorNotification{
		Type:    protocol.ModNotifVerification,
		UserID:  userID,
		Profile: &pv,
		Actions: []string{protocol.ActionApprove, protocol.ActionReject, protocol.ActionBan, protocol.ActionUnban},
	})
	return nil
}

// Decide records a moderator's verdict on a pending verification and
// notifies the user of the outcome. Only configured moderator identities may
// decide.
func (c *Core) Decide(moderatorID, targetID string, approve bool) error {
	if !c.isModerator(moderatorID) {
		return fmt.Errorf("%w: %s is not a moderator", ErrUnauthorized, moderatorID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[targetID]; !ok {
		return fmt.Errorf("%w: user %s", ErrNotPending, targetID)
	}
	delete(c.pending, targetID)

	p := c.getOrCreate(targetID)
	if approve {
		p.Verification = user.VerificationVerified
		metrics.VerificationsTotal.WithLabelValues("approved").Inc()
		c.notifier.NotifyUser(targetID, protocol.UserNotification{
			Type: protocol.NotifVerified,
			Text: "Your profile has been verified. You can start chatting now.",
		})
	} else {
		p.Verification = user.VerificationRejected
		metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
		c.notifier.NotifyUser(targetID, protocol.UserNotification{
			Type: protocol.NotifRejected,
			Text: "Your verification was rejected. You may submit your profile again.",
		})
	}
	c.refreshVerifiedGauge()
	return nil
}

// PendingCount returns the number of submissions awaiting a verdict.
func (c *Core) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
