package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/questsearch/internal/corpus"
	dombatch "github.com/kailas-cloud/questsearch/internal/domain/batch"
	"github.com/kailas-cloud/questsearch/internal/lock"
	logpkg "github.com/kailas-cloud/questsearch/internal/logger"
	"github.com/kailas-cloud/questsearch/internal/metrics"
	questionrepo "github.com/kailas-cloud/questsearch/internal/repository/question"
	ingestuc "github.com/kailas-cloud/questsearch/internal/usecase/ingest"
)

type ingestOptions struct {
	file      string
	batchSize int
	lockPath  string
}

// ingestOutput is the machine readable report printed on stdout.
type ingestOutput struct {
	RunID string `json:"run_id"`
	dombatch.Report
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	opts := &ingestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a question corpus into the index",
		Long: `Ingest reads a JSON array (or newline-delimited objects) of question
records, normalizes {"$oid": ...} identifiers, and inserts the records in
batches. Failed records are retried once. Existing records are never
overwritten. The report is printed as JSON on stdout.`,
		Example: `  questsearch ingest --file questions.json
  questsearch ingest --file questions.json --driver sqlite --db-path ./data/questsearch.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd.Context(), root, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Corpus file (required)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Records per write, at most 5000 (default from config)")
	cmd.Flags().StringVar(&opts.lockPath, "lock-path", "", "Lock file guarding against concurrent runs (default from config)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runIngest(ctx context.Context, root *rootOptions, opts *ingestOptions, out io.Writer) error {
	cfg, logger, err := root.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if opts.batchSize > 0 {
		cfg.Ingest.BatchSize = opts.batchSize
	}
	if opts.lockPath != "" {
		cfg.Ingest.LockPath = opts.lockPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	runID := uuid.NewString()
	ctx = logpkg.With(logpkg.ContextWithLogger(ctx, logger), zap.String("run_id", runID))
	logger = logpkg.FromContext(ctx)

	fl, err := lock.Acquire(cfg.Ingest.LockPath)
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	raw, err := corpus.ReadFile(opts.file)
	if err != nil {
		return err
	}
	logger.Info("Corpus read", zap.String("file", opts.file), zap.Int("records", len(raw)))

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := questionrepo.New(store, cfg.Index.KeyPrefix, cfg.Index.Collection)
	if err := repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	metrics.RegisterIngestMetrics()

	svc := ingestuc.New(repo).
		WithBatchSize(cfg.Ingest.BatchSize).
		WithMaxDepth(cfg.Ingest.MaxDepth)

	report, loadErr := svc.Load(ctx, raw)

	// the partial report is printed even when the run aborted
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ingestOutput{RunID: runID, Report: report}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if loadErr != nil {
		return fmt.Errorf("ingest: %w", loadErr)
	}
	if report.Failed > 0 {
		logger.Warn("Some records were not inserted", zap.Int("failed", report.Failed))
	}
	return nil
}
