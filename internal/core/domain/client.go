package domain

import (
	"strings"
	"time"
)

// Client is a library patron. Email is unique across all clients.
type Client struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName joins name and last name.
func (c Client) FullName() string {
	return strings.TrimSpace(c.Name + " " + c.LastName)
}
