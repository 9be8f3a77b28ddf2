// Package report provides PostgreSQL-backed storage for moderation tickets.
// Each ticket captures who reported whom and the reporter's trailing message
// history, so moderators can review a conversation after the fact.
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anonkampus/matchmaker/internal/protocol"
)

// Archive stores moderation tickets in PostgreSQL.
type Archive struct {
	db *sql.DB
}

// NewArchive creates an archive backed by the given database handle.
func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// Create inserts a ticket. The message history is marshalled to JSONB.
func (a *Archive) Create(ctx context.Context, t protocol.ReportTicket) error {
	var historyJSON []byte
	if len(t.History) > 0 {
		var err error
		historyJSON, err = json.Marshal(t.History)
		if err != nil {
			return fmt.Errorf("report: marshal history: %w", err)
		}
	}

	const query = `
		INSERT INTO moderation_tickets (id, reporter_id, reported_id, messages, created_at)
		VALUES ($1, $2, $3, $4, to_timestamp($5))`

	_, err := a.db.ExecContext(ctx, query,
		t.ID,
		t.ReporterID,
		t.ReportedID,
		historyJSON,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("report: insert: %w", err)
	}
	return nil
}

// CountRecent returns the number of tickets filed against a user within the
// given time window. Moderators use this to spot repeat offenders.
func (a *Archive) CountRecent(ctx context.Context, reportedID string, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM moderation_tickets
		WHERE reported_id = $1
		  AND created_at >= NOW() - $2::interval`

	var count int
	err := a.db.QueryRowContext(ctx, query, reportedID, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("report: count recent: %w", err)
	}
	return count, nil
}
