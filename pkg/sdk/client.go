package questsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/questsearch/internal/db"
	"github.com/kailas-cloud/questsearch/internal/db/factory"
	dombatch "github.com/kailas-cloud/questsearch/internal/domain/batch"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
	questionrepo "github.com/kailas-cloud/questsearch/internal/repository/question"
	healthuc "github.com/kailas-cloud/questsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/questsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/questsearch/internal/usecase/search"
)

// Внутренние интерфейсы для подмены в тестах.
type searchUseCase interface {
	Run(ctx context.Context, q request.Query) ([]question.Record, error)
}

type ingestUseCase interface {
	Load(ctx context.Context, raw []map[string]any) (dombatch.Report, error)
}

type indexUseCase interface {
	EnsureIndex(ctx context.Context) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the questsearch SDK entry point. It is safe for concurrent use.
type Client struct {
	store      db.Store
	collection string
	indexSvc   indexUseCase
	searchSvc  searchUseCase
	ingestSvc  ingestUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("questsearch: store required (use WithRedis, WithBleve or WithSQLite)")
	}
	if cfg.driver == "redis" && (len(cfg.addrs) == 0 || cfg.addrs[0] == "") {
		return nil, errors.New("questsearch: redis address required")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("questsearch: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	s, err := factory.Open(factory.Config{
		Driver:   cfg.driver,
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		Path:     cfg.path,
	})
	if err != nil {
		return nil, fmt.Errorf("questsearch: %w", err)
	}
	return s, nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := questionrepo.New(store, cfg.keyPrefix, cfg.collection)

	ingestSvc := ingestuc.New(repo)
	if cfg.batchSize != 0 {
		ingestSvc = ingestSvc.WithBatchSize(cfg.batchSize)
	}
	if cfg.maxDepth > 0 {
		ingestSvc = ingestSvc.WithMaxDepth(cfg.maxDepth)
	}

	return &Client{
		store:      store,
		collection: cfg.collection,
		indexSvc:   repo,
		searchSvc:  searchuc.New(repo),
		ingestSvc:  ingestSvc,
		healthSvc:  healthuc.New(store, repo),
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Collection returns the name of the collection the client works on.
func (c *Client) Collection() string { return c.collection }

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndex creates the collection index when it does not exist yet.
// Calling it on an existing index is a no-op.
func (c *Client) EnsureIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_index", start, err) }()

	if err = c.indexSvc.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	return nil
}
