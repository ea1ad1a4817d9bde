package badge

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines badge data access interface
type Repository interface {
	ListDefinitions(ctx context.Context) ([]*Definition, error)
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*UserBadge, error)
	// Unlock inserts the ledger row and reports whether it was new
	Unlock(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new badge repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListDefinitions(ctx context.Context) ([]*Definition, error) {
	query := `
		SELECT id, name, description, icon, category, requirement_type, requirement_value, sort_order
		FROM badge_definitions
		ORDER BY sort_order, id
	`
	var defs []*Definition
	if err := r.db.SelectContext(ctx, &defs, query); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *repository) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*UserBadge, error) {
	query := `
		SELECT user_id, badge_id, unlocked_at
		FROM user_badges
		WHERE user_id = $1
		ORDER BY unlocked_at
	`
	var badges []*UserBadge
	if err := r.db.SelectContext(ctx, &badges, query, userID); err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *repository) Unlock(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id, unlocked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, userID, badgeID)
	if err != nil {
		return false, mapUnlockError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func mapUnlockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %w", ErrDuplicateUnlock, err)
		case "23503":
			return fmt.Errorf("%w: %w", ErrBadgeNotFound, err)
		}
	}
	return fmt.Errorf("badge repository unlock: %w", err)
}
