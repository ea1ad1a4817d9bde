package reaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/aggregate"
	"github.com/faildaily/faildaily-api/internal/domain/badge"
)

// BadgeEvaluator re-runs badge unlocking for a user
type BadgeEvaluator interface {
	EvaluateUser(ctx context.Context, userID uuid.UUID) ([]*badge.Definition, error)
}

// Service handles reaction business logic
type Service struct {
	repo    Repository
	counter aggregate.Counter
	badges  BadgeEvaluator
	now     func() time.Time
}

// NewService creates reaction service
func NewService(repo Repository, counter aggregate.Counter, badges BadgeEvaluator) *Service {
	return &Service{
		repo:    repo,
		counter: counter,
		badges:  badges,
		now:     time.Now,
	}
}

// React records or replaces the user's reaction, then re-evaluates badges
// for the reactor and the fail author
func (s *Service) React(ctx context.Context, userID, failID uuid.UUID, req *ReactRequest) (*ReactResponse, error) {
	t := Type(req.Type)
	if !t.Valid() {
		return nil, ErrInvalidType
	}

	target, err := s.visibleTarget(ctx, failID, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	saved, err := s.repo.Upsert(ctx, &Reaction{
		ID:        uuid.New(),
		FailID:    failID,
		UserID:    userID,
		Type:      t,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	unlocked, err := s.badges.EvaluateUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("evaluate reactor badges: %w", err)
	}
	if target.AuthorID != userID {
		if _, err := s.badges.EvaluateUser(ctx, target.AuthorID); err != nil {
			return nil, fmt.Errorf("evaluate author badges: %w", err)
		}
	}

	summary, err := s.summary(ctx, userID, failID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(unlocked))
	for i, d := range unlocked {
		ids[i] = d.ID
	}

	return &ReactResponse{
		Reaction:      NewReactionResponse(saved),
		Summary:       *summary,
		NewlyUnlocked: ids,
	}, nil
}

// Remove deletes the user's reaction. Unlocked badges stay unlocked.
func (s *Service) Remove(ctx context.Context, userID, failID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, failID)
}

// Summary returns counts by type and the viewer's reaction. viewerID may be uuid.Nil.
func (s *Service) Summary(ctx context.Context, viewerID, failID uuid.UUID, moderator bool) (*SummaryResponse, error) {
	target, err := s.visibleTarget(ctx, failID, true)
	if err != nil {
		return nil, err
	}
	if target.Status == "hidden" && !moderator && target.AuthorID != viewerID {
		return nil, ErrFailNotFound
	}
	return s.summary(ctx, viewerID, failID)
}

func (s *Service) summary(ctx context.Context, viewerID, failID uuid.UUID) (*SummaryResponse, error) {
	counts, err := s.counter.ReactionCounts(ctx, failID)
	if err != nil {
		return nil, err
	}

	out := &SummaryResponse{FailID: failID, Counts: make(map[string]int, len(Types))}
	for _, t := range Types {
		out.Counts[string(t)] = counts[string(t)]
		out.Total += counts[string(t)]
	}

	if viewerID != uuid.Nil {
		mine, err := s.repo.GetByUserAndFail(ctx, viewerID, failID)
		if err != nil {
			return nil, err
		}
		if mine != nil {
			t := mine.Type
			out.Mine = &t
		}
	}
	return out, nil
}

func (s *Service) visibleTarget(ctx context.Context, failID uuid.UUID, allowHidden bool) (*FailTarget, error) {
	target, err := s.repo.GetFailTarget(ctx, failID)
	if err != nil {
		return nil, err
	}
	if target == nil || (!allowHidden && target.Status == "hidden") {
		return nil, ErrFailNotFound
	}
	return target, nil
}
