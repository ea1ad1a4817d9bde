package moderation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/aggregate"
)

type contentKey struct {
	kind ContentKind
	id   uuid.UUID
}

type reportKey struct {
	content  contentKey
	reporter uuid.UUID
}

// memRepo is an in-memory Repository with the same conflict semantics as Postgres
type memRepo struct {
	mu        sync.Mutex
	content   map[contentKey]*ContentRef
	reports   map[reportKey]*Report
	records   map[contentKey]*Record
	cfg       *Config
	casMisses int // TransitionToHidden calls that lose the race
}

func newMemRepo(cfg Config) *memRepo {
	return &memRepo{
		content: map[contentKey]*ContentRef{},
		reports: map[reportKey]*Report{},
		records: map[contentKey]*Record{},
		cfg:     &cfg,
	}
}

func (m *memRepo) addContent(kind ContentKind, author uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.content[contentKey{kind, id}] = &ContentRef{Kind: kind, ID: id, AuthorID: author}
	return id
}

func (m *memRepo) distinctReporters(kind ContentKind, id uuid.UUID) int {
	n := 0
	for k := range m.reports {
		if k.content == (contentKey{kind, id}) {
			n++
		}
	}
	return n
}

func (m *memRepo) GetContentRef(ctx context.Context, kind ContentKind, id uuid.UUID) (*ContentRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content[contentKey{kind, id}], nil
}

func (m *memRepo) CreateReport(ctx context.Context, report *Report) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reportKey{contentKey{report.ContentKind, report.ContentID}, report.ReporterID}
	if _, ok := m.reports[key]; ok {
		return false, nil
	}
	m.reports[key] = report
	return true, nil
}

func (m *memRepo) ListReportsByReporter(ctx context.Context, reporterID uuid.UUID) ([]*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Report
	for k, r := range m.reports {
		if k.reporter == reporterID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) GetRecord(ctx context.Context, kind ContentKind, id uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[contentKey{kind, id}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memRepo) TransitionToHidden(ctx context.Context, kind ContentKind, id uuid.UUID, from *Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.casMisses > 0 {
		m.casMisses--
		return false, nil
	}
	key := contentKey{kind, id}
	cur, exists := m.records[key]
	if from == nil {
		if exists {
			return false, nil
		}
		m.records[key] = &Record{ContentKind: kind, ContentID: id, Status: StatusHidden, UpdatedAt: time.Now()}
		return true, nil
	}
	if !exists || cur.Status != from.Status || cur.ApprovedReportCount != from.ApprovedReportCount {
		return false, nil
	}
	cur.Status = StatusHidden
	cur.UpdatedBy = uuid.NullUUID{}
	return true, nil
}

func (m *memRepo) upsert(kind ContentKind, id, actor uuid.UUID, status Status) *Record {
	key := contentKey{kind, id}
	rec, ok := m.records[key]
	if !ok {
		rec = &Record{ContentKind: kind, ContentID: id}
		m.records[key] = rec
	}
	rec.Status = status
	rec.UpdatedBy = uuid.NullUUID{UUID: actor, Valid: true}
	rec.UpdatedAt = time.Now()
	return rec
}

func (m *memRepo) Approve(ctx context.Context, kind ContentKind, id, actorID uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.upsert(kind, id, actorID, StatusApproved)
	rec.ApprovedReportCount = m.distinctReporters(kind, id)
	cp := *rec
	return &cp, nil
}

func (m *memRepo) Hide(ctx context.Context, kind ContentKind, id, actorID uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.upsert(kind, id, actorID, StatusHidden)
	return &cp, nil
}

func (m *memRepo) ListFlagged(ctx context.Context, filter FlaggedFilter) ([]*FlaggedItem, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[contentKey]bool{}
	var items []*FlaggedItem
	for k := range m.reports {
		if seen[k.content] {
			continue
		}
		seen[k.content] = true
		status := StatusPending
		if rec, ok := m.records[k.content]; ok {
			status = rec.Status
		}
		if filter.Status != "" && filter.Status != status {
			continue
		}
		if filter.Kind != "" && filter.Kind != k.content.kind {
			continue
		}
		items = append(items, &FlaggedItem{
			ContentKind: k.content.kind,
			ContentID:   k.content.id,
			Status:      status,
			ReportCount: m.distinctReporters(k.content.kind, k.content.id),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ReportCount > items[j].ReportCount })
	return items, len(items), nil
}

func (m *memRepo) GetConfig(ctx context.Context) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return nil, nil
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *memRepo) SeedConfig(ctx context.Context, cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		m.cfg = &cfg
	}
	return nil
}

func (m *memRepo) UpdateConfig(ctx context.Context, cfg Config, actorID uuid.UUID) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg.UpdatedBy = uuid.NullUUID{UUID: actorID, Valid: true}
	m.cfg = &cfg
	cp := cfg
	return &cp, nil
}

// memCounter counts distinct reporters straight from memRepo
type memCounter struct {
	repo *memRepo
	err  error
}

func (c *memCounter) ReportCount(ctx context.Context, kind string, contentID uuid.UUID) (int, error) {
	if c.err != nil {
		return 0, &aggregate.AggregationError{Metric: aggregate.MetricReportCount, Err: c.err}
	}
	c.repo.mu.Lock()
	defer c.repo.mu.Unlock()
	return c.repo.distinctReporters(ContentKind(kind), contentID), nil
}

func (c *memCounter) ReactionCount(ctx context.Context, failID uuid.UUID, reactionType string) (int, error) {
	return 0, nil
}

func (c *memCounter) ReactionCounts(ctx context.Context, failID uuid.UUID) (map[string]int, error) {
	return map[string]int{}, nil
}

func (c *memCounter) UserCount(ctx context.Context, userID uuid.UUID, metric aggregate.Metric) (int, error) {
	return 0, nil
}

type hiddenSignal struct {
	author    uuid.UUID
	contentID uuid.UUID
	automatic bool
}

type fakeNotifier struct {
	signals []hiddenSignal
	err     error
}

func (n *fakeNotifier) NotifyContentHidden(ctx context.Context, authorID uuid.UUID, kind string, contentID uuid.UUID, automatic bool) error {
	n.signals = append(n.signals, hiddenSignal{authorID, contentID, automatic})
	return n.err
}

func defaultConfig() Config {
	return Config{FailReportThreshold: 3, CommentReportThreshold: 3, PanelAutoRefreshSec: 30}
}

func newTestService(cfg Config) (*Service, *memRepo, *memCounter, *fakeNotifier) {
	repo := newMemRepo(cfg)
	counter := &memCounter{repo: repo}
	notifier := &fakeNotifier{}
	return NewService(repo, counter, notifier), repo, counter, notifier
}

func report(t *testing.T, svc *Service, reporter uuid.UUID, kind ContentKind, id uuid.UUID) *ReportResult {
	t.Helper()
	res, err := svc.RecordReport(context.Background(), reporter, &CreateReportRequest{ContentKind: string(kind), ContentID: id})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	return res
}

func TestThreeDistinctReportersHideFail(t *testing.T) {
	svc, repo, _, notifier := newTestService(defaultConfig())
	author := uuid.New()
	failID := repo.addContent(KindFail, author)
	r1, r2, r3 := uuid.New(), uuid.New(), uuid.New()

	if res := report(t, svc, r1, KindFail, failID); res.Status != StatusPending || res.ReportCount != 1 {
		t.Fatalf("after 1 report: %+v", res)
	}
	if res := report(t, svc, r2, KindFail, failID); res.Status != StatusPending || res.ReportCount != 2 {
		t.Fatalf("after 2 reports: %+v", res)
	}
	if res := report(t, svc, r3, KindFail, failID); res.Status != StatusHidden || res.ReportCount != 3 {
		t.Fatalf("after 3 reports: %+v", res)
	}

	res := report(t, svc, r1, KindFail, failID)
	if !res.Duplicate || res.ReportCount != 3 || res.Status != StatusHidden {
		t.Fatalf("repeat report must not count twice: %+v", res)
	}

	if len(notifier.signals) != 1 {
		t.Fatalf("expected exactly one hidden signal, got %d", len(notifier.signals))
	}
	if sig := notifier.signals[0]; sig.author != author || sig.contentID != failID || !sig.automatic {
		t.Fatalf("unexpected signal %+v", sig)
	}
}

func TestApprovalRearmsOnNewReport(t *testing.T) {
	svc, repo, _, notifier := newTestService(defaultConfig())
	ctx := context.Background()
	failID := repo.addContent(KindFail, uuid.New())
	reporters := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, r := range reporters {
		report(t, svc, r, KindFail, failID)
	}

	admin := uuid.New()
	rec, err := svc.Approve(ctx, admin, KindFail, failID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if rec.Status != StatusApproved || rec.ApprovedReportCount != 3 {
		t.Fatalf("unexpected record after approval: %+v", rec)
	}

	if res := report(t, svc, reporters[0], KindFail, failID); res.Status != StatusApproved {
		t.Fatalf("repeat reporter must not re-hide approved content: %+v", res)
	}

	if res := report(t, svc, uuid.New(), KindFail, failID); res.Status != StatusHidden || res.ReportCount != 4 {
		t.Fatalf("4th distinct report must re-hide: %+v", res)
	}
	if len(notifier.signals) != 2 {
		t.Fatalf("expected 2 hidden signals, got %d", len(notifier.signals))
	}
}

func TestAdminHideOverridesCounts(t *testing.T) {
	svc, repo, _, notifier := newTestService(defaultConfig())
	ctx := context.Background()
	commentID := repo.addContent(KindComment, uuid.New())

	rec, err := svc.Hide(ctx, uuid.New(), KindComment, commentID)
	if err != nil {
		t.Fatalf("hide: %v", err)
	}
	if rec.Status != StatusHidden {
		t.Fatalf("expected hidden, got %s", rec.Status)
	}
	if _, err := svc.Hide(ctx, uuid.New(), KindComment, commentID); err != nil {
		t.Fatalf("second hide: %v", err)
	}
	if len(notifier.signals) != 1 || notifier.signals[0].automatic {
		t.Fatalf("expected one manual hidden signal, got %+v", notifier.signals)
	}

	if _, err := svc.Approve(ctx, uuid.New(), KindComment, commentID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res := report(t, svc, uuid.New(), KindComment, commentID); res.Status != StatusApproved {
		t.Fatalf("single report below threshold must keep approval: %+v", res)
	}
}

func TestRecordReportRejections(t *testing.T) {
	svc, repo, _, _ := newTestService(defaultConfig())
	ctx := context.Background()
	author := uuid.New()
	failID := repo.addContent(KindFail, author)

	cases := []struct {
		name     string
		reporter uuid.UUID
		req      CreateReportRequest
		want     error
	}{
		{"own content", author, CreateReportRequest{ContentKind: "fail", ContentID: failID}, ErrCannotReportOwn},
		{"unknown content", uuid.New(), CreateReportRequest{ContentKind: "fail", ContentID: uuid.New()}, ErrContentNotFound},
		{"wrong kind for id", uuid.New(), CreateReportRequest{ContentKind: "comment", ContentID: failID}, ErrContentNotFound},
		{"invalid kind", uuid.New(), CreateReportRequest{ContentKind: "user", ContentID: failID}, ErrInvalidContentKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			if _, err := svc.RecordReport(ctx, tc.reporter, &req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEvaluationFailureLeavesStateUnchanged(t *testing.T) {
	svc, repo, counter, notifier := newTestService(defaultConfig())
	failID := repo.addContent(KindFail, uuid.New())
	counter.err = errors.New("connection refused")

	_, err := svc.RecordReport(context.Background(), uuid.New(), &CreateReportRequest{ContentKind: "fail", ContentID: failID})
	var aggErr *aggregate.AggregationError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected AggregationError, got %v", err)
	}
	if _, ok := repo.records[contentKey{KindFail, failID}]; ok {
		t.Fatal("record must not be written when evaluation fails")
	}
	if len(notifier.signals) != 0 {
		t.Fatal("no signal expected on failure")
	}
}

func TestTransitionRetriesAfterLostRace(t *testing.T) {
	cfg := defaultConfig()
	cfg.FailReportThreshold = 1
	svc, repo, _, _ := newTestService(cfg)
	failID := repo.addContent(KindFail, uuid.New())

	repo.casMisses = 1
	if res := report(t, svc, uuid.New(), KindFail, failID); res.Status != StatusHidden {
		t.Fatalf("expected hidden after retry, got %+v", res)
	}

	other := repo.addContent(KindFail, uuid.New())
	repo.casMisses = maxTransitionAttempts
	_, err := svc.RecordReport(context.Background(), uuid.New(), &CreateReportRequest{ContentKind: "fail", ContentID: other})
	if !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
}

func TestUpdateConfig(t *testing.T) {
	svc, _, _, _ := newTestService(defaultConfig())
	ctx := context.Background()
	zero, negative, two := 0, -1, 2

	if _, err := svc.UpdateConfig(ctx, uuid.New(), &UpdateConfigRequest{FailReportThreshold: &zero}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for zero, got %v", err)
	}
	if _, err := svc.UpdateConfig(ctx, uuid.New(), &UpdateConfigRequest{PanelAutoRefreshSec: &negative}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative, got %v", err)
	}

	cfg, err := svc.GetConfig(ctx)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if *cfg != defaultConfig() {
		t.Fatalf("rejected update must not persist, got %+v", cfg)
	}

	updated, err := svc.UpdateConfig(ctx, uuid.New(), &UpdateConfigRequest{CommentReportThreshold: &two})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CommentReportThreshold != 2 || updated.FailReportThreshold != 3 || updated.PanelAutoRefreshSec != 30 {
		t.Fatalf("partial update merged wrong: %+v", updated)
	}
}

func TestLoweredThresholdAppliesOnNextReport(t *testing.T) {
	svc, repo, _, _ := newTestService(defaultConfig())
	ctx := context.Background()
	failID := repo.addContent(KindFail, uuid.New())
	report(t, svc, uuid.New(), KindFail, failID)
	report(t, svc, uuid.New(), KindFail, failID)

	two := 2
	if _, err := svc.UpdateConfig(ctx, uuid.New(), &UpdateConfigRequest{FailReportThreshold: &two}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if status, _ := svc.GetStatus(ctx, KindFail, failID); status != StatusPending {
		t.Fatalf("config change alone must not transition, got %s", status)
	}

	if res := report(t, svc, uuid.New(), KindFail, failID); res.Status != StatusHidden {
		t.Fatalf("expected hidden on next report, got %+v", res)
	}
}

func TestNotifierFailureDoesNotFailReport(t *testing.T) {
	cfg := defaultConfig()
	cfg.FailReportThreshold = 1
	svc, repo, _, notifier := newTestService(cfg)
	notifier.err = errors.New("smtp down")
	failID := repo.addContent(KindFail, uuid.New())

	if res := report(t, svc, uuid.New(), KindFail, failID); res.Status != StatusHidden {
		t.Fatalf("expected hidden, got %+v", res)
	}
}

func TestSeedConfigKeepsExistingRow(t *testing.T) {
	svc, repo, _, _ := newTestService(defaultConfig())
	if err := svc.SeedConfig(context.Background(), Config{FailReportThreshold: 9, CommentReportThreshold: 9, PanelAutoRefreshSec: 9}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if repo.cfg.FailReportThreshold != 3 {
		t.Fatalf("seed overwrote config: %+v", repo.cfg)
	}
	if err := svc.SeedConfig(context.Background(), Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid defaults to be rejected, got %v", err)
	}
}
