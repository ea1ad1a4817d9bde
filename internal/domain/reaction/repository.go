package reaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines reaction data access interface
type Repository interface {
	GetFailTarget(ctx context.Context, failID uuid.UUID) (*FailTarget, error)
	Upsert(ctx context.Context, reaction *Reaction) (*Reaction, error)
	Delete(ctx context.Context, userID, failID uuid.UUID) error
	GetByUserAndFail(ctx context.Context, userID, failID uuid.UUID) (*Reaction, error)
}

const reactionColumns = `id, fail_id, user_id, type, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new reaction repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetFailTarget(ctx context.Context, failID uuid.UUID) (*FailTarget, error) {
	query := `
		SELECT f.id, f.author_id, COALESCE(m.status, 'pending') AS status
		FROM fails f
		LEFT JOIN moderation_records m ON m.content_kind = 'fail' AND m.content_id = f.id
		WHERE f.id = $1
	`
	var target FailTarget
	if err := r.db.GetContext(ctx, &target, query, failID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &target, nil
}

// Upsert records the user's reaction, replacing the type of an existing one
func (r *repository) Upsert(ctx context.Context, reaction *Reaction) (*Reaction, error) {
	query := `
		INSERT INTO reactions (id, fail_id, user_id, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, fail_id) DO UPDATE
		SET type = EXCLUDED.type, updated_at = NOW()
		RETURNING ` + reactionColumns

	var out Reaction
	err := r.db.GetContext(ctx, &out, query,
		reaction.ID,
		reaction.FailID,
		reaction.UserID,
		reaction.Type,
		reaction.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, fmt.Errorf("%w: %w", ErrFailNotFound, err)
		}
		return nil, fmt.Errorf("reaction repository upsert: %w", err)
	}
	return &out, nil
}

func (r *repository) Delete(ctx context.Context, userID, failID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reactions WHERE user_id = $1 AND fail_id = $2`, userID, failID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReactionNotFound
	}
	return nil
}

func (r *repository) GetByUserAndFail(ctx context.Context, userID, failID uuid.UUID) (*Reaction, error) {
	query := `SELECT ` + reactionColumns + ` FROM reactions WHERE user_id = $1 AND fail_id = $2`
	var out Reaction
	if err := r.db.GetContext(ctx, &out, query, userID, failID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
