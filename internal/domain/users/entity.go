package users

import "time"

// UserID identifier type
type UserID string

// User account row. PasswordHash is a bcrypt digest and never leaves the
// service boundary.
type User struct {
	ID           UserID    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
