package models

import "time"

// User is a journal account owner.
type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Setup is a named trading setup (pattern) a trade can reference.
type Setup struct {
	ID          int    `json:"id"`
	UserID      int    `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tag is a free-form label attached to trades.
type Tag struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}
