// internal/platform/notifications.go

package platform

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// NotificationFeed appends realtime events to the persistent
// notification feed so users who were offline still see them. It
// satisfies messaging.NotificationSink; writes are best-effort and never
// surface errors to the delivery path.
type NotificationFeed struct {
	db *sqlx.DB
}

func NewNotificationFeed(db *sqlx.DB) *NotificationFeed {
	return &NotificationFeed{db: db}
}

func (f *NotificationFeed) Record(ctx context.Context, userID int64, kind string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("platform: marshal notification payload for user %d: %v", userID, err)
		return
	}

	query := `
		INSERT INTO notification_feed (user_id, kind, payload)
		VALUES ($1, $2, $3)
	`

	if _, err := f.db.ExecContext(ctx, query, userID, kind, data); err != nil {
		log.Printf("platform: record %s notification for user %d: %v", kind, userID, err)
	}
}

// Unread returns feed entries not yet dismissed, newest first.
func (f *NotificationFeed) Unread(ctx context.Context, userID int64, limit int) ([]FeedEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []FeedEntry
	query := `
		SELECT id, user_id, kind, payload, created_at
		FROM notification_feed
		WHERE user_id = $1 AND dismissed_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2
	`

	err := f.db.SelectContext(ctx, &entries, query, userID, limit)
	return entries, err
}

// Dismiss marks a feed entry as seen.
func (f *NotificationFeed) Dismiss(ctx context.Context, userID, entryID int64) error {
	query := `
		UPDATE notification_feed
		SET dismissed_at = NOW()
		WHERE id = $1 AND user_id = $2 AND dismissed_at IS NULL
	`

	_, err := f.db.ExecContext(ctx, query, entryID, userID)
	return err
}

type FeedEntry struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	Kind      string          `json:"kind" db:"kind"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
