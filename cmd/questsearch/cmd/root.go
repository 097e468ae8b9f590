// Package cmd provides the CLI commands for questsearch.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/questsearch/internal/config"
	"github.com/kailas-cloud/questsearch/internal/db"
	"github.com/kailas-cloud/questsearch/internal/db/factory"
	logpkg "github.com/kailas-cloud/questsearch/internal/logger"
	"github.com/kailas-cloud/questsearch/internal/version"
)

// rootOptions are the persistent flags shared by every subcommand. Set
// flags override the config file.
type rootOptions struct {
	env      string
	driver   string
	addrs    []string
	dbPath   string
	logLevel string
}

// NewRootCmd creates the root command for the questsearch CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "questsearch",
		Short: "Keyword search over quiz questions",
		Long: `questsearch serves keyword search over a corpus of quiz questions through
an HTTP JSON API and a JSON-RPC tool endpoint, and loads corpora into the
full-text index.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("questsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "Config environment (local, prod)")
	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "Index driver: redis, bleve or sqlite")
	cmd.PersistentFlags().StringSliceVar(&opts.addrs, "addr", nil, "Redis address host:port (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "bleve directory or sqlite file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newIngestCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// load reads the config file, applies flag overrides and builds the logger.
func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.env)
	if err != nil {
		return config.Config{}, nil, err
	}

	if o.driver != "" {
		cfg.Database.Driver = o.driver
	}
	if len(o.addrs) > 0 {
		cfg.Database.Addrs = o.addrs
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid flags: %w", err)
	}

	logger, err := logpkg.NewLogger(o.env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore opens the configured store and waits for it once. A store that
// does not become ready is fatal for the caller.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (db.Store, error) {
	store, err := factory.Open(factory.Config{
		Driver:   cfg.Database.Driver,
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Path:     cfg.Database.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	start := time.Now()
	if err := store.WaitForReady(ctx, cfg.ReadinessTimeout()); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Duration("took", time.Since(start)),
	)
	return store, nil
}
