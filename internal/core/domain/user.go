package domain

import "time"

// User models an authenticated actor in the system. Email is the login
// identity and the token subject; it is unique across all users and compared
// as an exact string.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
