package badge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/aggregate"
)

type memRepo struct {
	mu        sync.Mutex
	defs      []*Definition
	ledger    map[uuid.UUID]map[string]time.Time
	unlockErr error
	inserts   int
}

func newMemRepo(defs ...*Definition) *memRepo {
	return &memRepo{defs: defs, ledger: map[uuid.UUID]map[string]time.Time{}}
}

func (m *memRepo) ListDefinitions(ctx context.Context) ([]*Definition, error) {
	return m.defs, nil
}

func (m *memRepo) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*UserBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*UserBadge
	for id, at := range m.ledger[userID] {
		out = append(out, &UserBadge{UserID: userID, BadgeID: id, UnlockedAt: at})
	}
	return out, nil
}

func (m *memRepo) Unlock(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unlockErr != nil {
		return false, m.unlockErr
	}
	if m.ledger[userID] == nil {
		m.ledger[userID] = map[string]time.Time{}
	}
	if _, ok := m.ledger[userID][badgeID]; ok {
		return false, nil
	}
	m.ledger[userID][badgeID] = time.Now()
	m.inserts++
	return true, nil
}

type fakeCounter struct {
	counts map[aggregate.Metric]int
	err    error
}

func (c *fakeCounter) ReportCount(ctx context.Context, kind string, contentID uuid.UUID) (int, error) {
	return 0, nil
}

func (c *fakeCounter) ReactionCount(ctx context.Context, failID uuid.UUID, reactionType string) (int, error) {
	return 0, nil
}

func (c *fakeCounter) ReactionCounts(ctx context.Context, failID uuid.UUID) (map[string]int, error) {
	return nil, nil
}

func (c *fakeCounter) UserCount(ctx context.Context, userID uuid.UUID, metric aggregate.Metric) (int, error) {
	if c.err != nil {
		return 0, &aggregate.AggregationError{Metric: metric, Err: c.err}
	}
	return c.counts[metric], nil
}

type fakeNotifier struct {
	unlocked []string
}

func (n *fakeNotifier) NotifyBadgeUnlocked(ctx context.Context, userID uuid.UUID, badgeID, badgeName string) error {
	n.unlocked = append(n.unlocked, badgeID)
	return nil
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := NewCatalog([]*Definition{
		{ID: "first-fail", Name: "First", RequirementType: RequirementFailCount, RequirementValue: 1, SortOrder: 1},
		{ID: "fail-5", Name: "Five", RequirementType: RequirementFailCount, RequirementValue: 5, SortOrder: 2},
		{ID: "comment-10", Name: "Chatty", RequirementType: RequirementCommentCount, RequirementValue: 10, SortOrder: 3},
		{ID: "received-50", Name: "Famous", RequirementType: RequirementReactionsReceived, RequirementValue: 50, SortOrder: 4},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func progressFor(t *testing.T, ps []Progress, id string) Progress {
	t.Helper()
	for _, p := range ps {
		if p.Badge.ID == id {
			return p
		}
	}
	t.Fatalf("no progress for %s", id)
	return Progress{}
}

func TestFifthFailUnlocksBadgeExactlyOnce(t *testing.T) {
	repo := newMemRepo()
	counter := &fakeCounter{counts: map[aggregate.Metric]int{aggregate.MetricFailCount: 4}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, counter, testCatalog(t), notifier, 3)
	ctx := context.Background()
	user := uuid.New()

	if _, err := svc.EvaluateUser(ctx, user); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	progress, err := svc.Progress(ctx, user)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	p := progressFor(t, progress, "fail-5")
	if p.Current != 4 || p.Required != 5 || p.Ratio != 0.8 || p.Unlocked {
		t.Fatalf("unexpected progress at 4 fails: %+v", p)
	}

	counter.counts[aggregate.MetricFailCount] = 5
	unlocked, err := svc.EvaluateUser(ctx, user)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].ID != "fail-5" {
		t.Fatalf("expected fail-5 to unlock, got %v", unlocked)
	}

	again, err := svc.EvaluateUser(ctx, user)
	if err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("re-evaluation must unlock nothing, got %v", again)
	}
	if repo.inserts != 2 {
		t.Fatalf("expected 2 ledger rows (first-fail, fail-5), got %d", repo.inserts)
	}
	if len(notifier.unlocked) != 2 {
		t.Fatalf("expected 2 unlock signals, got %v", notifier.unlocked)
	}
}

func TestUnlockIsPermanent(t *testing.T) {
	repo := newMemRepo()
	counter := &fakeCounter{counts: map[aggregate.Metric]int{aggregate.MetricFailCount: 5}}
	svc := NewService(repo, counter, testCatalog(t), nil, 3)
	ctx := context.Background()
	user := uuid.New()

	if _, err := svc.EvaluateUser(ctx, user); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	counter.counts[aggregate.MetricFailCount] = 2
	progress, err := svc.Progress(ctx, user)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	p := progressFor(t, progress, "fail-5")
	if !p.Unlocked || p.UnlockedAt == nil {
		t.Fatalf("unlock must not revert: %+v", p)
	}

	mine, err := svc.Unlocked(ctx, user)
	if err != nil {
		t.Fatalf("unlocked: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 unlocked badges, got %d", len(mine))
	}
}

func TestDuplicateUnlockIsSwallowed(t *testing.T) {
	repo := newMemRepo()
	repo.unlockErr = ErrDuplicateUnlock
	counter := &fakeCounter{counts: map[aggregate.Metric]int{aggregate.MetricFailCount: 1}}
	svc := NewService(repo, counter, testCatalog(t), nil, 3)

	unlocked, err := svc.EvaluateUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("duplicate unlock must not surface: %v", err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("expected nothing reported as new, got %v", unlocked)
	}
}

func TestAggregationFailureSurfaces(t *testing.T) {
	repo := newMemRepo()
	counter := &fakeCounter{err: errors.New("connection refused")}
	svc := NewService(repo, counter, testCatalog(t), nil, 3)

	_, err := svc.EvaluateUser(context.Background(), uuid.New())
	var aggErr *aggregate.AggregationError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected AggregationError, got %v", err)
	}
	if repo.inserts != 0 {
		t.Fatal("no unlock may be written on failure")
	}
}

func TestUpcoming(t *testing.T) {
	repo := newMemRepo()
	counter := &fakeCounter{counts: map[aggregate.Metric]int{
		aggregate.MetricFailCount:    1,
		aggregate.MetricCommentCount: 0,
	}}
	svc := NewService(repo, counter, testCatalog(t), nil, 3)
	ctx := context.Background()
	user := uuid.New()

	if _, err := svc.EvaluateUser(ctx, user); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	upcoming, err := svc.Upcoming(ctx, user)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}

	ids := map[string]bool{}
	for _, p := range upcoming {
		ids[p.Badge.ID] = true
	}
	if ids["first-fail"] {
		t.Fatal("unlocked badge must not be upcoming")
	}
	if !ids["fail-5"] {
		t.Fatal("started badge must be upcoming")
	}
	if ids["comment-10"] || ids["received-50"] {
		t.Fatalf("untouched distant badges must be filtered, got %v", ids)
	}
}
