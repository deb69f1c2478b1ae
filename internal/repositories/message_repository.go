package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"epicmail-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, subject, sender_id, receiver_id, body, status, created_on`

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, subject string, senderID, receiverID int, body, status string) (models.Message, error)
	ListReceived(ctx context.Context, userID int) ([]models.Message, error)
	ListSent(ctx context.Context, userID int) ([]models.Message, error)
	ListUnread(ctx context.Context, userID int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	MessageExists(ctx context.Context, messageID int) (bool, error)
	MarkRead(ctx context.Context, messageID int) error
	DeleteMessage(ctx context.Context, messageID int) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a direct message, timestamping created_on at insert.
func (r *MessageRepo) CreateMessage(ctx context.Context, subject string, senderID, receiverID int, body, status string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (subject, sender_id, receiver_id, body, status) VALUES ($1, $2, $3, $4, $5) RETURNING `+messageColumns, subject, senderID, receiverID, body, status).
		StructScan(&msg)
	return msg, err
}

// ListReceived returns messages addressed to the user, most recent first.
// Empty results are an empty slice, never nil, so they serialize as [].
func (r *MessageRepo) ListReceived(ctx context.Context, userID int) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE receiver_id=$1 ORDER BY created_on DESC`, userID)
	return msgs, err
}

// ListSent returns messages sent by the user, most recent first.
func (r *MessageRepo) ListSent(ctx context.Context, userID int) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE sender_id=$1 ORDER BY created_on DESC`, userID)
	return msgs, err
}

// ListUnread returns received messages still unread, most recent first.
func (r *MessageRepo) ListUnread(ctx context.Context, userID int) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE receiver_id=$1 AND status=$2 ORDER BY created_on DESC`, userID, models.StatusUnread)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// MessageExists checks whether a message with the id exists.
func (r *MessageRepo) MessageExists(ctx context.Context, messageID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM messages WHERE id=$1)`, messageID)
	return exists, err
}

// MarkRead transitions a message to read. Marking an already-read message is
// a no-op.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET status=$1 WHERE id=$2`, models.StatusRead, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteMessage removes the row and returns the deleted record.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `DELETE FROM messages WHERE id=$1 RETURNING `+messageColumns, messageID).
		StructScan(&msg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
