package fail

import (
	"time"

	"github.com/google/uuid"
)

// CreateFailRequest is the body of POST /fails
type CreateFailRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required,min=1,max=5000"`
	Category    string `json:"category" validate:"required,fail_category"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// CreateCommentRequest is the body of POST /fails/{id}/comments
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// FailResponse represents a fail in API responses
type FailResponse struct {
	ID            uuid.UUID  `json:"id"`
	AuthorID      *uuid.UUID `json:"author_id,omitempty"`
	AuthorName    string     `json:"author_name"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      Category   `json:"category"`
	IsAnonymous   bool       `json:"is_anonymous"`
	ImageURL      string     `json:"image_url,omitempty"`
	ThumbnailURL  string     `json:"thumbnail_url,omitempty"`
	Status        string     `json:"status"`
	CommentCount  int        `json:"comment_count"`
	ReactionCount int        `json:"reaction_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateFailResponse is returned after a fail is published
type CreateFailResponse struct {
	Fail          *FailResponse `json:"fail"`
	NewlyUnlocked []string      `json:"newly_unlocked"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID         uuid.UUID `json:"id"`
	FailID     uuid.UUID `json:"fail_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateCommentResponse is returned after a comment is posted
type CreateCommentResponse struct {
	Comment       *CommentResponse `json:"comment"`
	NewlyUnlocked []string         `json:"newly_unlocked"`
}

const anonymousName = "Anonymous"

// NewCommentResponse maps a comment to its API shape
func NewCommentResponse(c *Comment) *CommentResponse {
	return &CommentResponse{
		ID:         c.ID,
		FailID:     c.FailID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
	}
}
