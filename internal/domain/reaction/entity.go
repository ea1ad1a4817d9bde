package reaction

import (
	"time"

	"github.com/google/uuid"
)

// Type is the kind of acknowledgment a user attaches to a fail
type Type string

const (
	TypeCourage Type = "courage"
	TypeEmpathy Type = "empathy"
	TypeLaugh   Type = "laugh"
	TypeSupport Type = "support"
)

// Types lists every reaction type in display order
var Types = []Type{TypeCourage, TypeEmpathy, TypeLaugh, TypeSupport}

// Valid reports whether t is a known reaction type
func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Reaction is a user's single reaction to a fail. A user has at most one per fail.
type Reaction struct {
	ID        uuid.UUID `db:"id"`
	FailID    uuid.UUID `db:"fail_id"`
	UserID    uuid.UUID `db:"user_id"`
	Type      Type      `db:"type"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FailTarget is the fail being reacted to
type FailTarget struct {
	ID       uuid.UUID `db:"id"`
	AuthorID uuid.UUID `db:"author_id"`
	Status   string    `db:"status"`
}
