package fail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines fail data access interface
type Repository interface {
	Create(ctx context.Context, f *Fail) error
	GetByID(ctx context.Context, id uuid.UUID) (*Fail, error)
	List(ctx context.Context, filter *ListFilter) ([]*Fail, int, error)
	UpdateImageKey(ctx context.Context, id uuid.UUID, key sql.NullString) error
	CreateComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, failID, viewerID uuid.UUID, includeHidden bool) ([]*Comment, error)
}

const failSelect = `
	SELECT f.id, f.author_id, u.display_name AS author_name, f.title, f.description,
		f.category, f.is_anonymous, f.image_key, f.created_at, f.updated_at,
		COALESCE(m.status, 'pending') AS status,
		(SELECT COUNT(*) FROM comments c WHERE c.fail_id = f.id) AS comment_count,
		(SELECT COUNT(*) FROM reactions r WHERE r.fail_id = f.id) AS reaction_count
	FROM fails f
	JOIN users u ON u.id = f.author_id
	LEFT JOIN moderation_records m ON m.content_kind = 'fail' AND m.content_id = f.id
`

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new fail repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Fail) error {
	query := `
		INSERT INTO fails (id, author_id, title, description, category, is_anonymous, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		f.ID,
		f.AuthorID,
		f.Title,
		f.Description,
		f.Category,
		f.IsAnonymous,
		f.ImageKey,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("fail repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Fail, error) {
	var f Fail
	if err := r.db.GetContext(ctx, &f, failSelect+` WHERE f.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *repository) List(ctx context.Context, filter *ListFilter) ([]*Fail, int, error) {
	var where []string
	var args []interface{}
	argIdx := 1

	if !filter.IncludeHidden {
		where = append(where, "COALESCE(m.status, 'pending') <> 'hidden'")
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("f.category = $%d", argIdx))
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.AuthorID != uuid.Nil {
		where = append(where, fmt.Sprintf("f.author_id = $%d", argIdx))
		args = append(args, filter.AuthorID)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `
		SELECT COUNT(*) FROM fails f
		LEFT JOIN moderation_records m ON m.content_kind = 'fail' AND m.content_id = f.id` + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := failSelect + whereClause +
		fmt.Sprintf(" ORDER BY f.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	var fails []*Fail
	if err := r.db.SelectContext(ctx, &fails, query, args...); err != nil {
		return nil, 0, err
	}
	return fails, total, nil
}

func (r *repository) UpdateImageKey(ctx context.Context, id uuid.UUID, key sql.NullString) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE fails SET image_key = $2, updated_at = NOW() WHERE id = $1`, id, key)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFailNotFound
	}
	return nil
}

func (r *repository) CreateComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (id, fail_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.FailID, c.AuthorID, c.Content, c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: %w", ErrFailNotFound, err)
		}
		return fmt.Errorf("fail repository create comment: %w", err)
	}
	return nil
}

// ListComments returns visible comments oldest first. The viewer always
// sees their own comments, hidden or not.
func (r *repository) ListComments(ctx context.Context, failID, viewerID uuid.UUID, includeHidden bool) ([]*Comment, error) {
	query := `
		SELECT c.id, c.fail_id, c.author_id, u.display_name AS author_name, c.content, c.created_at,
			COALESCE(m.status, 'pending') AS status
		FROM comments c
		JOIN users u ON u.id = c.author_id
		LEFT JOIN moderation_records m ON m.content_kind = 'comment' AND m.content_id = c.id
		WHERE c.fail_id = $1
			AND ($3 OR c.author_id = $2 OR COALESCE(m.status, 'pending') <> 'hidden')
		ORDER BY c.created_at ASC
	`
	var comments []*Comment
	if err := r.db.SelectContext(ctx, &comments, query, failID, viewerID, includeHidden); err != nil {
		return nil, err
	}
	return comments, nil
}
