package core

import (
	"fmt"
	"time"

	"github.com/anonkampus/matchmaker/internal/history"
	"github.com/anonkampus/matchmaker/internal/metrics"
	"github.com/anonkampus/matchmaker/internal/protocol"
	"github.com/anonkampus/matchmaker/internal/user"
)

// LeaveReason says why a session ended, carried on the partner-left
// notification.
type LeaveReason string

const (
	ReasonUserStop    LeaveReason = "user_stop"
	ReasonBanned      LeaveReason = "banned"
	ReasonAdminAction LeaveReason = "admin_action"
)

// StopResult says what a Stop call actually did. All three are success.
type StopResult string

const (
	StopEndedChat       StopResult = "ended_chat"
	StopCancelledSearch StopResult = "cancelled_search"
	StopNoop            StopResult = "noop"
)

// pair establishes the mutual pairing. This is the only place partner
// references are set; both users enter StatusPaired and leave any queue
// state behind. Lock held, both profiles eligible and unpaired.
func (c *Core) pair(a, b *user.Profile) {
	a.Status = user.StatusPaired
	a.PartnerID = b.ID
	a.SearchMode = ""
	b.Status = user.StatusPaired
	b.PartnerID = a.ID
	b.SearchMode = ""
	metrics.ActiveSessions.Inc()
}

// unpair tears down p's session if one exists, clearing both sides
// symmetrically and notifying the other side. Returns whether a session
// existed. Lock held.
func (c *Core) unpair(p *user.Profile, reason LeaveReason) bool {
	if !p.Paired() {
		return false
	}

	partnerID := p.PartnerID
	p.Status = user.StatusIdle
	p.PartnerID = ""

	if partner, ok := c.profiles[partnerID]; ok && partner.PartnerID == p.ID {
		partner.Status = user.StatusIdle
		partner.PartnerID = ""
		c.notifier.NotifyUser(partnerID, protocol.UserNotification{
			Type:   protocol.NotifPartnerLeft,
			Reason: string(reason),
			Text:   "Your partner left the conversation.",
		})
	}

	metrics.ActiveSessions.Dec()
	return true
}

// Unpair ends the user's session, if any, notifying the partner with the
// given reason. Returns whether a session existed.
func (c *Core) Unpair(userID string, reason LeaveReason) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unpair(c.getOrCreate(userID), reason)
}

// Stop ends the user's session or cancels their search, whichever is
// active. Calling Stop with nothing active is allowed and harmless.
func (c *Core) Stop(userID string) StopResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.getOrCreate(userID)
	if c.unpair(p, ReasonUserStop) {
		return StopEndedChat
	}
	if p.Searching() {
		c.dequeue(userID)
		return StopCancelledSearch
	}
	return StopNoop
}

// Relay forwards text to the user's partner untouched and records the
// exchange in both sides' trailing history. The partner receives exactly
// one notification per relay.
func (c *Core) Relay(fromID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.profiles[fromID]
	if !ok || !p.Paired() {
		return fmt.Errorf("%w: user %s", ErrNoActivePartner, fromID)
	}

	ts := time.Now().Unix()
	c.history.Add(fromID, history.Entry{Side: history.SideSelf, Text: text, Ts: ts})
	c.history.Add(p.PartnerID, history.Entry{Side: history.SidePartner, Text: text, Ts: ts})

	c.notifier.NotifyUser(p.PartnerID, protocol.UserNotification{
		Type: protocol.NotifMessage,
		Text: text,
		Ts:   ts,
	})
	metrics.RelayedMessagesTotal.Inc()
	return nil
}

// History returns the user's trailing message log, oldest first.
func (c *Core) History(userID string) []history.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Get(userID)
}
