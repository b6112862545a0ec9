// Package models defines server-side data models persisted in the database.
package models

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string

	// ResetToken and ResetTokenExpires are set while a password-reset
	// request is pending, nil otherwise.
	ResetToken        *string
	ResetTokenExpires *time.Time

	CreatedAt time.Time
}
