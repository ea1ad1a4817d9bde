package user

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches users.role check)
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User represents a FailDaily account
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	DisplayName  string    `db:"display_name"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// IsModerator returns true if user may act on moderation state
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// IsValidRole checks if role exists
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}
