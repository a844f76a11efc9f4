// internal/messaging/repository.go

package messaging

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrMessageNotFound = errors.New("message not found")

type Repository interface {
	CreateMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id string) (*Message, error)
	GetConversationMessages(ctx context.Context, a, b int64, limit int, before time.Time) ([]*Message, error)
	MarkMessageRead(ctx context.Context, id string, readAt time.Time) (bool, error)
	GetUnreadMessages(ctx context.Context, userID int64) ([]*Message, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (id, match_id, sender_id, recipient_id, content, message_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		msg.ID, msg.MatchID, msg.SenderID, msg.RecipientID,
		msg.Content, msg.MessageType, msg.CreatedAt,
	)
	return err
}

func (r *postgresRepository) GetMessage(ctx context.Context, id string) (*Message, error) {
	var msg Message
	query := `
		SELECT id, match_id, sender_id, recipient_id, content, message_type,
		       is_read, read_at, created_at
		FROM messages
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &msg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// GetConversationMessages fetches both directions of the exchange between
// a and b, newest first, for pagination and reconnect recovery.
func (r *postgresRepository) GetConversationMessages(ctx context.Context, a, b int64, limit int, before time.Time) ([]*Message, error) {
	var messages []*Message
	query := `
		SELECT id, match_id, sender_id, recipient_id, content, message_type,
		       is_read, read_at, created_at
		FROM messages
		WHERE ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		      AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`

	err := r.db.SelectContext(ctx, &messages, query, a, b, before, limit)
	return messages, err
}

// MarkMessageRead transitions the read flag. The is_read = FALSE guard
// makes repeated calls no-ops; the bool return reports whether this call
// performed the transition.
func (r *postgresRepository) MarkMessageRead(ctx context.Context, id string, readAt time.Time) (bool, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE, read_at = $2
		WHERE id = $1 AND is_read = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, id, readAt)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *postgresRepository) GetUnreadMessages(ctx context.Context, userID int64) ([]*Message, error) {
	var messages []*Message
	query := `
		SELECT id, match_id, sender_id, recipient_id, content, message_type,
		       is_read, read_at, created_at
		FROM messages
		WHERE recipient_id = $1 AND is_read = FALSE
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &messages, query, userID)
	return messages, err
}
