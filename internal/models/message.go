package models

import "time"

// Message status values. A message is created unread and transitions to read
// exactly once, when the receiver first fetches it.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// Message represents a direct message between two users.
type Message struct {
	ID         int       `db:"id" json:"id"`
	Subject    string    `db:"subject" json:"subject"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	ReceiverID int       `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"message"`
	Status     string    `db:"status" json:"status"`
	CreatedOn  time.Time `db:"created_on" json:"created_on"`
}
