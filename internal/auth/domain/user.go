package domain

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2 encoded
	Role         string // lowercase role name, e.g. "user", "admin"
	Email        string // optional contact detail
	MobileNumber string // optional contact detail
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
