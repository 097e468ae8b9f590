package questsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis", "bleve" or "sqlite"
	addrs    []string
	username string
	password string
	path     string

	collection       string
	keyPrefix        string
	batchSize        int
	maxDepth         int
	readinessTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		collection:       "questions",
		keyPrefix:        "questsearch:",
		readinessTimeout: 10 * time.Second,
	}
}

// WithRedis connects to a Redis instance with the search and JSON modules.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisACL connects to Redis with an ACL user.
func WithRedisACL(addr, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.username = username
		c.password = password
	})
}

// WithBleve uses an embedded bleve index stored under dir.
// An empty dir keeps the index in memory.
func WithBleve(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "bleve"
		c.path = dir
	})
}

// WithSQLite uses an embedded SQLite FTS5 index stored in file.
// An empty file keeps the index in memory.
func WithSQLite(file string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.path = file
	})
}

// WithCollection sets the collection name. Default: "questions".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithKeyPrefix sets the key namespace shared with the service.
// Default: "questsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithBatchSize sets the number of records per ingestion write.
// Values outside 1..5000 fall back to 5000.
func WithBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = size
	})
}

// WithMaxDepth limits record nesting accepted by Ingest. Default: 64.
func WithMaxDepth(depth int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxDepth = depth
	})
}

// WithReadinessTimeout bounds the initial store readiness wait.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
