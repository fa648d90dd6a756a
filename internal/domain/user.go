package domain

import "time"

// User mirrors the fields of the external user store the API exposes.
type User struct {
	ID           int64
	Username     string
	Email        string
	DisplayName  string
	FirstName    string
	LastName     string
	PasswordHash string
	Roles        []string
	RegisteredAt time.Time
}
