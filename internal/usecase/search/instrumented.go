package search

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
	"github.com/kailas-cloud/questsearch/internal/logger"
	"github.com/kailas-cloud/questsearch/internal/metrics"
)

// Outcome labels for search metrics.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

// Instrumented wraps a Searcher with per-protocol metrics and logging.
type Instrumented struct {
	inner    Searcher
	protocol string
}

// NewInstrumented wraps inner; protocol labels every observation ("http", "rpc").
func NewInstrumented(inner Searcher, protocol string) *Instrumented {
	return &Instrumented{inner: inner, protocol: protocol}
}

// Run delegates to the inner searcher and records the outcome.
func (s *Instrumented) Run(ctx context.Context, q request.Query) ([]question.Record, error) {
	_, filtered := q.Type()
	start := time.Now()

	records, err := s.inner.Run(ctx, q)

	duration := time.Since(start)
	outcome := Outcome(err)

	metrics.SearchRequestsTotal.WithLabelValues(s.protocol, outcome).Inc()
	metrics.SearchRequestDuration.WithLabelValues(s.protocol, strconv.FormatBool(filtered)).Observe(duration.Seconds())

	log := logger.FromContext(ctx)
	if err != nil {
		level := log.Error
		if outcome == OutcomeInvalid {
			level = log.Debug
		}
		level("Search failed",
			zap.String("protocol", s.protocol),
			zap.String("outcome", outcome),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.SearchResultsReturned.WithLabelValues(s.protocol).Observe(float64(len(records)))
	log.Debug("Search completed",
		zap.String("protocol", s.protocol),
		zap.Int("page", q.Page()),
		zap.Int("page_size", q.PageSize()),
		zap.Bool("filtered", filtered),
		zap.Int("results", len(records)),
		zap.Duration("duration", duration),
	)
	return records, nil
}

// Outcome classifies a search error for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrIndexUnavailable):
		return OutcomeUnavailable
	default:
		return OutcomeFailed
	}
}
