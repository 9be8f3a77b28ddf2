package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonkampus/matchmaker/internal/history"
)

func TestUserNotificationOmitsEmptyFields(t *testing.T) {
	n := UserNotification{Type: NotifQueueStatus, Text: "Searching..."}
	data, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "queue_status", raw["type"])
	assert.NotContains(t, raw, "reason")
	assert.NotContains(t, raw, "stats")
	assert.NotContains(t, raw, "profile")
}

func TestUserNotificationCarriesStats(t *testing.T) {
	n := UserNotification{
		Type:  NotifQueueStatus,
		Stats: &QueueStats{Verified: 12, Searching: 3},
	}
	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"queue_status","stats":{"verified":12,"searching":3}}`,
		string(data))
}

func TestModeratorNotificationTicketShape(t *testing.T) {
	n := ModeratorNotification{
		Type:   ModNotifReport,
		UserID: "reported_user",
		Ticket: &ReportTicket{
			ID:         "t-1",
			ReporterID: "reporter",
			ReportedID: "reported_user",
			History: []history.Entry{
				{Side: history.SidePartner, Text: "hi", Ts: 100},
			},
			CreatedAt: 200,
		},
		Actions: []string{ActionBan, ActionUnban},
	}
	data, err := json.Marshal(n)
	require.NoError(t, err)

	var back ModeratorNotification
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.Ticket)
	assert.Equal(t, "reporter", back.Ticket.ReporterID)
	assert.Len(t, back.Ticket.History, 1)
	assert.Equal(t, history.SidePartner, back.Ticket.History[0].Side)
	assert.Equal(t, []string{ActionBan, ActionUnban}, back.Actions)
}

func TestInboundRequestDecoding(t *testing.T) {
	var match MatchRequest
	require.NoError(t, json.Unmarshal(
		[]byte(`{"user_id":"u1","mode":"constrained"}`), &match))
	assert.Equal(t, "u1", match.UserID)
	assert.Equal(t, "constrained", match.Mode)

	var decide DecideRequest
	require.NoError(t, json.Unmarshal(
		[]byte(`{"moderator_id":"mod","target_id":"u1","approve":true}`), &decide))
	assert.True(t, decide.Approve)
	assert.Equal(t, "u1", decide.TargetID)
}
