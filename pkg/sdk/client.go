package draftzero

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/db"
	dbRedis "github.com/draftzero/draftzero/internal/db/redis"
	"github.com/draftzero/draftzero/internal/domain"
	domdoc "github.com/draftzero/draftzero/internal/domain/document"
	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
	budgetrepo "github.com/draftzero/draftzero/internal/repository/budget"
	documentrepo "github.com/draftzero/draftzero/internal/repository/document"
	linkagerepo "github.com/draftzero/draftzero/internal/repository/linkage"
	permissionrepo "github.com/draftzero/draftzero/internal/repository/permission"
	sessionrepo "github.com/draftzero/draftzero/internal/repository/session"
	ailimituc "github.com/draftzero/draftzero/internal/usecase/ailimit"
	documentuc "github.com/draftzero/draftzero/internal/usecase/document"
	healthuc "github.com/draftzero/draftzero/internal/usecase/health"
	linkageuc "github.com/draftzero/draftzero/internal/usecase/linkage"
	sessionuc "github.com/draftzero/draftzero/internal/usecase/session"
	usageuc "github.com/draftzero/draftzero/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so services can be swapped in tests.
type documentUseCase interface {
	CreateDocument(ctx context.Context, userID, title string) (domdoc.Document, error)
	GetDocument(ctx context.Context, userID, documentID string) (domdoc.Document, error)
	RenameDocument(ctx context.Context, userID, documentID, title string) (domdoc.Document, error)
	DeleteDocument(ctx context.Context, userID, documentID string) error
	ShareDocument(ctx context.Context, userID, documentID, targetUserID string, roles []domperm.TypedRole) error
	CreateVersion(ctx context.Context, userID, documentID, name, body string) (domdoc.Version, error)
	RenameVersion(ctx context.Context, userID, documentID, versionID, name string) (domdoc.Version, error)
	EditVersion(ctx context.Context, userID, documentID, versionID, body string) (domdoc.Version, error)
	PublishVersion(ctx context.Context, userID, documentID, versionID string) (domdoc.Version, error)
	DeleteVersion(ctx context.Context, userID, documentID, versionID string) error
	ListVersions(ctx context.Context, userID, documentID string) ([]domdoc.Version, error)
	UpsertNote(ctx context.Context, userID, documentID, noteID, text string) (domdoc.Note, error)
	DeleteNote(ctx context.Context, userID, documentID, noteID string) error
	ListNotes(ctx context.Context, userID, documentID string) ([]domdoc.Note, error)
}

type linkageUseCase interface {
	Compute(ctx context.Context, userID, documentID string,
		inputs []domlink.Input, nodeIDs []string) (linkageuc.Result, error)
}

type sessionUseCase interface {
	Start(ctx context.Context, userID, documentID string) (domsess.Session, error)
	Track(ctx context.Context, userID, sessionID string, seg domsess.Segment) (domsess.Session, error)
	End(ctx context.Context, userID, sessionID string) (domsess.Session, error)
	List(ctx context.Context, userID string) ([]domsess.Session, error)
}

type usageUseCase interface {
	GetReport(ctx context.Context, userID string, period usageuc.Period) (usageuc.Report, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the Draft Zero SDK entry point.
type Client struct {
	store    db.Store
	docSvc   documentUseCase
	linkSvc  linkageUseCase
	sessSvc  sessionUseCase
	usageSvc usageUseCase
	health   healthUseCase
	obs      *observer
}

// New creates a Draft Zero Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		scoreExponent:  3,
		scoreThreshold: 0.6,
		maxParallel:    4,
		maxNodes:       200,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("draftzero: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("draftzero: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("draftzero: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	nop := zap.NewNop()

	docRepo := documentrepo.New(store)
	permRepo := permissionrepo.New(store)
	linkRepo := linkagerepo.New(store)
	sessRepo := sessionrepo.New(store)

	// AI providers: noop when not configured (document operations still work,
	// linkage computation returns a clear error).
	var embedder domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	}
	var explainer domain.Explainer = &noopExplainer{}
	if cfg.explainer != nil {
		explainer = &explainerAdapter{inner: cfg.explainer}
	}

	// Pass nil interface (not typed nil pointer!) if the budget is not configured.
	var guard linkageuc.Guard
	var budgetReader usageuc.BudgetReader
	if cfg.dailyCallLimit > 0 || cfg.monthlyCallLimit > 0 {
		limiter := ailimituc.New(
			budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour),
			cfg.dailyCallLimit, cfg.monthlyCallLimit, nop,
		)
		guard = limiter
		budgetReader = limiter
	}

	resolver := domperm.NewResolver(nop)

	return &Client{
		store:  store,
		docSvc: documentuc.New(docRepo, permRepo, resolver, linkRepo, nop),
		linkSvc: linkageuc.New(linkRepo, embedder, explainer, guard, linkageuc.Config{
			ScoreExponent:  cfg.scoreExponent,
			ScoreThreshold: cfg.scoreThreshold,
			MaxParallel:    cfg.maxParallel,
			MaxNodes:       cfg.maxNodes,
		}, nop),
		sessSvc:  sessionuc.New(sessRepo, nop),
		usageSvc: usageuc.New(budgetReader),
		health:   healthuc.New(store, nil),
		obs:      obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component -> "ok"/"error"
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// UsagePeriod is the reporting window for budget reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport describes one user's AI call budget state.
type UsageReport struct {
	Period    UsagePeriod
	Limit     int64 // 0 = unlimited
	Used      int64
	Remaining int64 // -1 = unlimited
	Exhausted bool
	ResetsAt  time.Time
}

// Usage returns the AI call budget report for a user and period.
func (c *Client) Usage(ctx context.Context, userID string, period UsagePeriod) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	report, err := c.usageSvc.GetReport(ctx, userID, usageuc.Period(period))
	if err != nil {
		return UsageReport{}, fmt.Errorf("usage report: %w", err)
	}
	return UsageReport{
		Period:    UsagePeriod(report.Period),
		Limit:     report.Limit,
		Used:      report.Used,
		Remaining: report.Remaining,
		Exhausted: report.Exhausted,
		ResetsAt:  time.UnixMilli(report.ResetsAt).UTC(),
	}, nil
}
