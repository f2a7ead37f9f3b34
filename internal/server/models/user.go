package models

import "time"

// Role is the coarse authority level attached to an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a registered account. PasswordHash is always the output of the
// password hasher; the plaintext never reaches this struct.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	FromDataset  bool
	CreatedAt    time.Time
}

// IsAdmin reports whether the account carries the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
