// ABOUTME: MediaEvent store methods for auditing media tool usage
// ABOUTME: Events record image analyses and audio transcriptions with JSON meta

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateMediaEvent appends a media audit event.
func (s *SQLiteStore) CreateMediaEvent(ctx context.Context, event *MediaEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	meta, err := marshalMeta(event.Meta)
	if err != nil {
		return fmt.Errorf("encoding event meta: %w", err)
	}

	query := `
		INSERT INTO media_events (id, user_id, event_type, meta, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		nullString(event.UserID),
		event.EventType,
		meta,
		event.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting media event: %w", err)
	}
	return nil
}
