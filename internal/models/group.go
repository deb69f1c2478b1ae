package models

import "time"

// Group is owned by the user who created it; only the owner may rename or
// delete it.
type Group struct {
	ID      int    `db:"id" json:"id"`
	OwnerID int    `db:"owner_id" json:"owner_id"`
	Name    string `db:"name" json:"name"`
	Role    string `db:"role" json:"role"`
}

// GroupMember links a user to a group with a per-group role.
type GroupMember struct {
	ID       int    `db:"id" json:"id"`
	GroupID  int    `db:"group_id" json:"group_id"`
	UserID   int    `db:"user_id" json:"user_id"`
	UserRole string `db:"user_role" json:"user_role"`
}

// GroupMessage is a message posted into a group. Same lifecycle as Message
// but scoped to the group's members.
type GroupMessage struct {
	ID        int       `db:"id" json:"id"`
	Subject   string    `db:"subject" json:"subject"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	GroupID   int       `db:"group_id" json:"group_id"`
	Body      string    `db:"body" json:"message"`
	Status    string    `db:"status" json:"status"`
	CreatedOn time.Time `db:"created_on" json:"created_on"`
}
