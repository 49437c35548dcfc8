// Package models defines the core data structures for user records.
package models

import "time"

// User represents an application user as held by the credential store.
type User struct {
	// ID is the store-assigned unique identifier for the user.
	ID string `json:"id"`
	// Name is the display name chosen at signup.
	Name string `json:"name"`
	// Email is the login key of the user.
	Email string `json:"email"`
	// Password is kept exactly as submitted. It is never serialized to clients.
	Password string `json:"-"`
	// CreatedAt is the signup time.
	CreatedAt time.Time `json:"created_at"`
}
