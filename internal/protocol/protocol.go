// Package protocol defines the JSON payloads exchanged over the messaging
// subjects: inbound user/moderator actions and outbound notifications. The
// wire beyond these payloads (long polling, update delivery) belongs to the
// chat platform, not to this service.
package protocol

import (
	"github.com/anonkampus/matchmaker/internal/history"
)

// ---------------------------------------------------------------------------
// Inbound action payloads (transport -> core)
// ---------------------------------------------------------------------------

// OnboardRequest carries a completed onboarding submission.
type OnboardRequest struct {
	UserID      string `json:"user_id"`
	Affiliation string `json:"affiliation"`
	Gender      string `json:"gender"`
	Age         int    `json:"age"`
}

// MatchRequest asks to enter a matching pool.
type MatchRequest struct {
	UserID string `json:"user_id"`
	Mode   string `json:"mode"` // "open" or "constrained"
}

// StopRequest ends the user's session or cancels their search.
type StopRequest struct {
	UserID string `json:"user_id"`
}

// MessageRequest relays a text message to the user's partner.
type MessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// ReportRequest files an abuse report against the current partner.
type ReportRequest struct {
	UserID string `json:"user_id"`
}

// DecideRequest is a moderator's verdict on a pending verification.
type DecideRequest struct {
	ModeratorID string `json:"moderator_id"`
	TargetID    string `json:"target_id"`
	Approve     bool   `json:"approve"`
}

// BanRequest flips a user's ban flag.
type BanRequest struct {
	ModeratorID string `json:"moderator_id"`
	TargetID    string `json:"target_id"`
	Banned      bool   `json:"banned"`
}

// ProfileRequest asks for the requesting user's own profile view.
type ProfileRequest struct {
	UserID string `json:"user_id"`
}

// ListUsersRequest is a moderator query over the registry.
type ListUsersRequest struct {
	ModeratorID string `json:"moderator_id"`
	Filter      string `json:"filter"` // "all", "verified", "unverified", "banned"
}

// ---------------------------------------------------------------------------
// Outbound notification payloads (core -> transport)
// ---------------------------------------------------------------------------

// User notification types.
const (
	NotifVerified     = "verified"
	NotifRejected     = "rejected"
	NotifPartnerFound = "partner_found"
	NotifPartnerLeft  = "partner_left"
	NotifMessage      = "message"
	NotifBanned       = "banned"
	NotifUnbanned     = "unbanned"
	NotifQueueStatus  = "queue_status"
	NotifProfile      = "profile"
	NotifRateLimited  = "rate_limited"
	NotifError        = "error"
)

// Moderator notification types.
const (
	ModNotifVerification = "verification_request"
	ModNotifReport       = "report"
	ModNotifUserList     = "user_list"
)

// Moderator action affordances attached to notifications.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionBan     = "ban"
	ActionUnban   = "unban"
)

// QueueStats is the matchmaking status snapshot shown to waiting users.
type QueueStats struct {
	Verified  int `json:"verified"`
	Searching int `json:"searching"`
}

// ProfileView is the externally visible rendering of a profile. It is what
// users see of themselves and what moderators see of verification subjects.
type ProfileView struct {
	ID          string `json:"id"`
	Affiliation string `json:"affiliation,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Age         int    `json:"age,omitempty"`
	Verified    bool   `json:"verified"`
	Banned      bool   `json:"banned"`
	Status      string `json:"status"` // "idle", "searching", "paired"
}

// ReportTicket packages a reporter's trailing message history for moderator
// review. Filing a ticket changes no matchmaking state.
type ReportTicket struct {
	ID         string          `json:"id"`
	ReporterID string          `json:"reporter_id"`
	ReportedID string          `json:"reported_id"`
	History    []history.Entry `json:"history"`
	CreatedAt  int64           `json:"created_at"`
}

// UserNotification is the payload published on notify.user.<user_id>.
// Delivery is fire-and-forget, at-most-once best effort.
type UserNotification struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Reason string `json:"reason,omitempty"` // partner_left: "user_stop", "banned", "admin_action"
	Ts     int64  `json:"ts,omitempty"`

	Stats   *QueueStats  `json:"stats,omitempty"`   // queue_status
	Profile *ProfileView `json:"profile,omitempty"` // profile
}

// ModeratorNotification is the payload published on notify.moderators.
type ModeratorNotification struct {
	Type     string        `json:"type"`
	UserID   string        `json:"user_id,omitempty"` // subject of the notification
	Profile  *ProfileView  `json:"profile,omitempty"`
	Ticket   *ReportTicket `json:"ticket,omitempty"`
	Profiles []ProfileView `json:"profiles,omitempty"` // user_list
	Actions  []string      `json:"actions,omitempty"`
}
