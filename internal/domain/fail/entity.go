package fail

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Category groups fails by life area
type Category string

const (
	CategoryWork          Category = "work"
	CategorySchool        Category = "school"
	CategoryRelationships Category = "relationships"
	CategorySport         Category = "sport"
	CategoryCooking       Category = "cooking"
	CategoryTech          Category = "tech"
	CategoryTransport     Category = "transport"
	CategoryOther         Category = "other"
)

// Moderation statuses as stored in moderation_records
const (
	statusHidden = "hidden"
)

// Fail is a user-authored post about a personal setback
type Fail struct {
	ID          uuid.UUID      `db:"id"`
	AuthorID    uuid.UUID      `db:"author_id"`
	AuthorName  string         `db:"author_name"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Category    Category       `db:"category"`
	IsAnonymous bool           `db:"is_anonymous"`
	ImageKey    sql.NullString `db:"image_key"`
	Status      string         `db:"status"` // effective moderation status
	CommentCnt  int            `db:"comment_count"`
	ReactionCnt int            `db:"reaction_count"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// IsHidden reports whether moderation removed the fail from public listings
func (f *Fail) IsHidden() bool {
	return f.Status == statusHidden
}

// VisibleTo reports whether viewer may see the fail
func (f *Fail) VisibleTo(viewerID uuid.UUID, moderator bool) bool {
	return !f.IsHidden() || moderator || (viewerID != uuid.Nil && viewerID == f.AuthorID)
}

// Comment is a reply on a fail
type Comment struct {
	ID         uuid.UUID `db:"id"`
	FailID     uuid.UUID `db:"fail_id"`
	AuthorID   uuid.UUID `db:"author_id"`
	AuthorName string    `db:"author_name"`
	Content    string    `db:"content"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}

// ListFilter narrows fail listings
type ListFilter struct {
	Category      Category
	AuthorID      uuid.UUID // uuid.Nil for everyone
	IncludeHidden bool
	Limit         int
	Offset        int
}
