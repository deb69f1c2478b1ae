package models

import "time"

// User is a registered account. The password hash never leaves the service.
type User struct {
	ID           int       `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Identity is the descriptor returned by signup and login.
type Identity struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
}
