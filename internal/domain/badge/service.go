package badge

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/aggregate"
	"github.com/faildaily/faildaily-api/internal/pkg/logger"
)

// Notifier receives the badge-unlocked signal
type Notifier interface {
	NotifyBadgeUnlocked(ctx context.Context, userID uuid.UUID, badgeID, badgeName string) error
}

// Service evaluates and reports badge progress
type Service struct {
	repo           Repository
	counter        aggregate.Counter
	catalog        *Catalog
	notifier       Notifier
	upcomingWindow int
}

// NewService creates badge service. notifier may be nil.
func NewService(repo Repository, counter aggregate.Counter, catalog *Catalog, notifier Notifier, upcomingWindow int) *Service {
	return &Service{
		repo:           repo,
		counter:        counter,
		catalog:        catalog,
		notifier:       notifier,
		upcomingWindow: upcomingWindow,
	}
}

// Catalog returns all badge definitions
func (s *Service) Catalog() []*Definition {
	return s.catalog.All()
}

// EvaluateUser unlocks every badge the user now qualifies for and returns
// the ones unlocked by this call. Re-running it is a no-op.
func (s *Service) EvaluateUser(ctx context.Context, userID uuid.UUID) ([]*Definition, error) {
	progress, err := s.progress(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []*Definition
	for _, p := range progress {
		if !p.Unlocked || p.UnlockedAt != nil {
			continue
		}

		inserted, err := s.repo.Unlock(ctx, userID, p.Badge.ID)
		if err != nil {
			if errors.Is(err, ErrDuplicateUnlock) {
				continue
			}
			return nil, err
		}
		if !inserted {
			continue
		}

		logger.FromContext(ctx).Info().
			Str("badge_id", p.Badge.ID).
			Str("requirement_type", string(p.Badge.RequirementType)).
			Int("required", p.Required).
			Msg("Badge unlocked")

		unlocked = append(unlocked, p.Badge)
		s.notifyUnlocked(ctx, userID, p.Badge)
	}

	return unlocked, nil
}

// Progress returns the user's standing against every badge
func (s *Service) Progress(ctx context.Context, userID uuid.UUID) ([]Progress, error) {
	return s.progress(ctx, userID)
}

// Upcoming returns locked badges worth surfacing as next goals, closest first
func (s *Service) Upcoming(ctx context.Context, userID uuid.UUID) ([]Progress, error) {
	all, err := s.progress(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []Progress
	for _, p := range all {
		if IsUpcoming(p, s.upcomingWindow) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ratio != out[j].Ratio {
			return out[i].Ratio > out[j].Ratio
		}
		return out[i].Required-out[i].Current < out[j].Required-out[j].Current
	})
	return out, nil
}

// Unlocked returns the badges the user has earned, oldest first
func (s *Service) Unlocked(ctx context.Context, userID uuid.UUID) ([]Progress, error) {
	ledger, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Progress, 0, len(ledger))
	for _, ub := range ledger {
		def, ok := s.catalog.Get(ub.BadgeID)
		if !ok {
			continue
		}
		at := ub.UnlockedAt
		out = append(out, Progress{
			Badge:      def,
			Current:    def.RequirementValue,
			Required:   def.RequirementValue,
			Ratio:      1,
			Unlocked:   true,
			UnlockedAt: &at,
		})
	}
	return out, nil
}

// progress computes progress for the whole catalog. A ledger row keeps a
// badge unlocked even if the underlying count later drops.
func (s *Service) progress(ctx context.Context, userID uuid.UUID) ([]Progress, error) {
	ledger, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(ledger))
	for _, ub := range ledger {
		unlockedAt[ub.BadgeID] = ub.UnlockedAt
	}

	counts := make(map[RequirementType]int)
	for _, rt := range s.catalog.RequirementTypes() {
		n, err := s.counter.UserCount(ctx, userID, rt.Metric())
		if err != nil {
			return nil, err
		}
		counts[rt] = n
	}

	out := make([]Progress, 0, len(s.catalog.All()))
	for _, def := range s.catalog.All() {
		p := Calculate(def, counts[def.RequirementType])
		if at, ok := unlockedAt[def.ID]; ok {
			at := at
			p.Unlocked = true
			p.UnlockedAt = &at
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) notifyUnlocked(ctx context.Context, userID uuid.UUID, def *Definition) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyBadgeUnlocked(ctx, userID, def.ID, def.Name); err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("badge_id", def.ID).
			Msg("Failed to notify badge unlock")
	}
}
