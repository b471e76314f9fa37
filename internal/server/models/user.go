package models

import "time"

// User is a credential record: the canonical identity (an email address)
// and the bcrypt hash of its password.
type User struct {
	ID           string
	Identity     string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
