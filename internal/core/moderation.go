package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anonkampus/matchmaker/internal/metrics"
	"github.com/anonkampus/matchmaker/internal/protocol"
)

// Report files an abuse ticket against the reporter's current partner. The
// ticket carries the reporter's trailing message history, each entry tagged
// by sender side, and is delivered to moderators with ban/unban affordances.
// Filing a report changes no matchmaking state.
func (c *Core) Report(reporterID string) (protocol.ReportTicket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.profiles[reporterID]
	if !ok || !p.Paired() {
		return protocol.ReportTicket{}, fmt.Errorf("%w: user %s", ErrNoActivePartner, reporterID)
	}

	ticket := protocol.ReportTicket{
		ID:         uuid.New().String(),
		ReporterID: reporterID,
		ReportedID: p.PartnerID,
		History:    c.history.Get(reporterID),
		CreatedAt:  time.Now().Unix(),
	}

	c.notifier.NotifyModerators(protocol.ModeratorNotification{
		Type:    protocol.ModNotifReport,
		UserID:  ticket.ReportedID,
		Ticket:  &ticket,
		Actions: []string{protocol.ActionBan, protocol.ActionUnban},
	})
	metrics.ReportsTotal.Inc()
	return ticket, nil
}

// SetBanned flips the target's ban flag. Banning tears down any active
// session (partner notified with reason banned), releases any queue slot,
// and drops the target's trailing message history before the flag is set;
// unbanning only clears the flag, with eligibility recomputed on the next
// queue attempt. Moderator-only.
func (c *Core) SetBanned(moderatorID, targetID string, banned bool) error {
	if !c.isModerator(moderatorID) {
		return fmt.Errorf("%w: %s is not a moderator", ErrUnauthorized, moderatorID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.getOrCreate(targetID)
	if banned {
		c.unpair(p, ReasonBanned)
		c.dequeue(targetID)
		c.history.Remove(targetID)
		p.Banned = true
		c.notifier.NotifyUser(targetID, protocol.UserNotification{
			Type: protocol.NotifBanned,
			Text: "You have been banned by a moderator and can no longer use the service.",
		})
	} else {
		p.Banned = false
		c.notifier.NotifyUser(targetID, protocol.UserNotification{
			Type: protocol.NotifUnbanned,
			Text: "You have been unbanned by a moderator. Welcome back.",
		})
	}
	c.refreshVerifiedGauge()
	return nil
}
