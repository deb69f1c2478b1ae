package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"epicmail-service/internal/models"
)

const groupMessageColumns = `id, subject, sender_id, group_id, body, status, created_on`

// GroupMessageRepository defines interactions for group messages.
type GroupMessageRepository interface {
	CreateGroupMessage(ctx context.Context, groupID, senderID int, subject, body string) (models.GroupMessage, error)
	ListGroupMessages(ctx context.Context, groupID int) ([]models.GroupMessage, error)
}

// GroupMessageRepo is a sqlx-backed implementation.
type GroupMessageRepo struct {
	db *sqlx.DB
}

// NewGroupMessageRepo constructs a GroupMessageRepo.
func NewGroupMessageRepo(db *sqlx.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

// CreateGroupMessage persists a group message.
func (r *GroupMessageRepo) CreateGroupMessage(ctx context.Context, groupID, senderID int, subject, body string) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO group_messages (subject, sender_id, group_id, body, status) VALUES ($1, $2, $3, $4, $5) RETURNING `+groupMessageColumns, subject, senderID, groupID, body, models.StatusUnread).
		StructScan(&msg)
	return msg, err
}

// ListGroupMessages returns messages in the group, most recent first. Empty
// results are an empty slice, never nil, so they serialize as [].
func (r *GroupMessageRepo) ListGroupMessages(ctx context.Context, groupID int) ([]models.GroupMessage, error) {
	msgs := []models.GroupMessage{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+groupMessageColumns+` FROM group_messages WHERE group_id=$1 ORDER BY created_on DESC`, groupID)
	return msgs, err
}
