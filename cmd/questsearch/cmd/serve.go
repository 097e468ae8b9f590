package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/questsearch/internal/config"
	"github.com/kailas-cloud/questsearch/internal/metrics"
	questionrepo "github.com/kailas-cloud/questsearch/internal/repository/question"
	chiTransport "github.com/kailas-cloud/questsearch/internal/transport/chi"
	mcpTransport "github.com/kailas-cloud/questsearch/internal/transport/mcp"
	healthuc "github.com/kailas-cloud/questsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/questsearch/internal/usecase/search"
	"github.com/kailas-cloud/questsearch/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and JSON-RPC listeners",
		Long: `Serve starts both listeners over one shared index connection. The database
must become ready within the readiness timeout or serve exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting questsearch",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("rpc_port", cfg.RPC.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Database not ready", zap.Error(err))
		return err
	}
	defer store.Close()

	repo := questionrepo.New(store, cfg.Index.KeyPrefix, cfg.Index.Collection)
	if err := repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	metrics.RegisterSearchMetrics()

	// one dispatcher, two front ends
	searchSvc := searchuc.New(repo)
	healthSvc := healthuc.New(store, repo)
	auth := chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys)

	httpSrv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: chiTransport.NewRouter(
			chiTransport.NewServer(searchuc.NewInstrumented(searchSvc, "http"), healthSvc, logger),
			chiTransport.RouterConfig{APIKeys: cfg.Auth.APIKeys, CORSOrigins: cfg.HTTP.CORSOrigins},
		),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	rpcSrv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.RPC.Port),
		Handler: mcpTransport.NewHandler(
			mcpTransport.NewServer(searchuc.NewInstrumented(searchSvc, "rpc"), version.Version),
			cfg.RPC.EndpointPath, logger, auth,
		),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listen(httpSrv, "http", logger) })
	g.Go(func() error { return listen(rpcSrv, "rpc", logger) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		return shutdown(cfg, logger, httpSrv, rpcSrv)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func listen(srv *http.Server, name string, logger *zap.Logger) error {
	logger.Info("Starting listener", zap.String("listener", name), zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s listener: %w", name, err)
	}
	return nil
}

func shutdown(cfg config.Config, logger *zap.Logger, servers ...*http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", zap.String("addr", srv.Addr), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
