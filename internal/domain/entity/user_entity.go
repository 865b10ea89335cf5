package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for identity.
// PasswordHash and the reset pair never leave the service; use Profile() for
// anything that is rendered to a client.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	ResetTokenHash   *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserProfile is the public projection of a User.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// HasActiveReset reports whether a reset token is pending and unexpired at now.
func (u *User) HasActiveReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil && now.Before(*u.ResetTokenExpiry)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResetToken is the stored half of a password reset: the one-way hash and its expiry.
type ResetToken struct {
	Hash      string
	ExpiresAt time.Time
}

// UserUpdate is a partial update; nil fields are left untouched.
// Reset and ClearReset are mutually exclusive and always move the pair together.
type UserUpdate struct {
	Name         *string
	PasswordHash *string
	Role         *Role
	Reset        *ResetToken
	ClearReset   bool
}
