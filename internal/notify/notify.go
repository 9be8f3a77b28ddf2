// Package notify declares the outbound notification boundary of the
// matchmaking core. Implementations deliver best-effort, at-most-once:
// a delivery failure is logged by the implementation and never surfaces
// back into core state.
package notify

import "github.com/anonkampus/matchmaker/internal/protocol"

// Notifier delivers notifications to users and moderators.
type Notifier interface {
	NotifyUser(userID string, n protocol.UserNotification)
	NotifyModerators(n protocol.ModeratorNotification)
}

// Discard is a Notifier that drops everything. Useful as a default when no
// transport is wired.
type Discard struct{}

func (Discard) NotifyUser(string, protocol.UserNotification) {}

func (Discard) NotifyModerators(protocol.ModeratorNotification) {}
