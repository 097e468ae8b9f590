package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/questsearch/internal/domain"
	dombatch "github.com/kailas-cloud/questsearch/internal/domain/batch"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/logger"
	"github.com/kailas-cloud/questsearch/internal/metrics"
)

// Service loads a corpus into the index: normalize, write in bounded
// batches, then one retry pass over everything that failed. It is strictly
// sequential.
type Service struct {
	writer    Writer
	batchSize int
	maxDepth  int
}

// New creates an ingestion service with the default batch size and depth.
func New(w Writer) *Service {
	return &Service{
		writer:    w,
		batchSize: dombatch.MaxSize,
		maxDepth:  question.DefaultMaxDepth,
	}
}

// WithBatchSize configures the batch size, clamped to batch.MaxSize.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 && size <= dombatch.MaxSize {
		s.batchSize = size
	}
	return s
}

// WithMaxDepth configures the normalization depth limit.
func (s *Service) WithMaxDepth(depth int) *Service {
	if depth > 0 {
		s.maxDepth = depth
	}
	return s
}

// Load ingests raw corpus records. Per-record failures are counted in the
// report; only a lost connection aborts, returning the partial report.
func (s *Service) Load(ctx context.Context, raw []map[string]any) (dombatch.Report, error) {
	log := logger.FromContext(ctx)
	report := dombatch.Report{Total: len(raw)}

	records := s.normalize(ctx, raw, &report)

	batches := dombatch.Partition(records, s.batchSize)
	report.Batches = len(batches)

	var failures []question.Record
	for _, b := range batches {
		results, err := s.writer.WriteBatch(ctx, b.Records())
		if err != nil {
			if isFatal(err) {
				log.Error("Ingestion aborted",
					zap.Int("batch", b.Seq()),
					zap.Int("inserted", report.Inserted),
					zap.Error(err),
				)
				return report, fmt.Errorf("batch %d: %w", b.Seq(), err)
			}
			failures = append(failures, b.Fail()...)
			metrics.IngestBatchesTotal.WithLabelValues(string(dombatch.StatusFailed)).Inc()
			log.Warn("Batch failed",
				zap.Int("batch", b.Seq()),
				zap.Int("size", b.Len()),
				zap.Error(err),
			)
			continue
		}

		failed := b.Apply(results)
		failures = append(failures, failed...)
		report.Inserted += b.Inserted()
		metrics.IngestBatchesTotal.WithLabelValues(string(b.Status())).Inc()

		log.Info("Batch written",
			zap.Int("batch", b.Seq()),
			zap.Int("size", b.Len()),
			zap.Int("inserted", b.Inserted()),
			zap.Int("failed", len(failed)),
			zap.String("status", string(b.Status())),
		)
		logFirstError(log, b.Seq(), results)
	}

	if len(failures) > 0 {
		if err := s.retry(ctx, failures, &report); err != nil {
			return report, err
		}
	}

	metrics.IngestRecordsTotal.WithLabelValues("inserted").Add(float64(report.Inserted))
	metrics.IngestRecordsTotal.WithLabelValues("failed").Add(float64(report.Failed - report.Rejected))
	metrics.IngestRecordsTotal.WithLabelValues("rejected").Add(float64(report.Rejected))

	if err := report.Check(); err != nil {
		return report, err
	}

	log.Info("Ingestion completed",
		zap.Int("total", report.Total),
		zap.Int("inserted", report.Inserted),
		zap.Int("failed", report.Failed),
		zap.Int("rejected", report.Rejected),
		zap.Int("batches", report.Batches),
		zap.Int("retried", report.Retried),
		zap.Int("recovered", report.Recovered),
	)
	return report, nil
}

// normalize converts raw documents into records. Documents that cannot be
// normalized are rejected: counted as failed and never written.
func (s *Service) normalize(ctx context.Context, raw []map[string]any, report *dombatch.Report) []question.Record {
	log := logger.FromContext(ctx)
	records := make([]question.Record, 0, len(raw))
	for i, m := range raw {
		doc, err := question.NormalizeDocument(m, s.maxDepth)
		if err == nil {
			var rec question.Record
			rec, err = question.FromMap(doc)
			if err == nil {
				records = append(records, rec)
				continue
			}
		}
		report.Rejected++
		report.Failed++
		log.Warn("Record rejected", zap.Int("position", i), zap.Error(err))
	}
	return records
}

// retry issues exactly one write over the whole failure list.
func (s *Service) retry(ctx context.Context, failures []question.Record, report *dombatch.Report) error {
	log := logger.FromContext(ctx)
	report.Retried = len(failures)
	metrics.IngestRetriesTotal.Inc()

	results, err := s.writer.WriteBatch(ctx, failures)
	if err != nil {
		if isFatal(err) {
			log.Error("Ingestion aborted during retry", zap.Int("pending", len(failures)), zap.Error(err))
			return fmt.Errorf("retry: %w", err)
		}
		report.Failed += len(failures)
		log.Warn("Retry failed", zap.Int("size", len(failures)), zap.Error(err))
		return nil
	}

	// results may be short; records without one stay failed
	recovered := dombatch.CountOK(results[:min(len(results), len(failures))])
	report.Recovered = recovered
	report.Inserted += recovered
	report.Failed += len(failures) - recovered

	log.Info("Retry completed",
		zap.Int("size", len(failures)),
		zap.Int("recovered", recovered),
		zap.Int("failed", len(failures)-recovered),
	)
	logFirstError(log, 0, results)
	return nil
}

func isFatal(err error) bool {
	return errors.Is(err, domain.ErrIndexUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// logFirstError reports one representative failure per write.
func logFirstError(log *zap.Logger, seq int, results []dombatch.Result) {
	for _, r := range results {
		if !r.OK() {
			log.Debug("First write failure", zap.Int("batch", seq), zap.String("id", r.ID()), zap.Error(r.Err()))
			return
		}
	}
}
