package messaging

import (
	"encoding/json"
	"log"

	"github.com/anonkampus/matchmaker/internal/protocol"
)

// Notifier delivers core notifications over NATS. Delivery is at-most-once
// best effort: publish failures are logged and swallowed, never propagated
// back into the matchmaking state.
type Notifier struct {
	client *NATSClient
}

// NewNotifier wraps a connected NATS client as a notification sink.
func NewNotifier(client *NATSClient) *Notifier {
	return &Notifier{client: client}
}

// NotifyUser publishes a notification on the user's subject.
func (n *Notifier) NotifyUser(userID string, un protocol.UserNotification) {
	data, err := json.Marshal(un)
	if err != nil {
		log.Printf("[notify] marshal user notification for %s: %v", userID, err)
		return
	}
	if err := n.client.PublishUserNotification(userID, data); err != nil {
		log.Printf("[notify] publish to user %s: %v", userID, err)
	}
}

// NotifyModerators publishes a notification on the moderator channel.
func (n *Notifier) NotifyModerators(mn protocol.ModeratorNotification) {
	data, err := json.Marshal(mn)
	if err != nil {
		log.Printf("[notify] marshal moderator notification: %v", err)
		return
	}
	if err := n.client.PublishModeratorNotification(data); err != nil {
		log.Printf("[notify] publish to moderators: %v", err)
	}
}
