package domain

import (
	"strings"
	"time"
)

// Role is the coarse permission level carried in every access token.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleModerator  Role = "moderator"
	RoleGuest      Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin, RoleModerator, RoleGuest:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           string
	Email        string // lower-cased, unique
	Username     string // unique
	PasswordHash string // argon2id PHC, or a legacy bcrypt digest
	FirstName    string
	LastName     string
	FullName     string
	Phone        *string
	Role         Role
	Active       bool
	Verified     bool
	LoginCount   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
