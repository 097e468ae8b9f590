package questsearch

import (
	"context"

	dombatch "github.com/kailas-cloud/questsearch/internal/domain/batch"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/questsearch/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	runFn func(ctx context.Context, q request.Query) ([]question.Record, error)
}

func (m *mockSearchUC) Run(ctx context.Context, q request.Query) ([]question.Record, error) {
	return m.runFn(ctx, q)
}

// --- ingestUseCase mock ---

type mockIngestUC struct {
	loadFn func(ctx context.Context, raw []map[string]any) (dombatch.Report, error)
}

func (m *mockIngestUC) Load(ctx context.Context, raw []map[string]any) (dombatch.Report, error) {
	return m.loadFn(ctx, raw)
}

// --- indexUseCase mock ---

type mockIndexUC struct {
	ensureFn func(ctx context.Context) error
}

func (m *mockIndexUC) EnsureIndex(ctx context.Context) error {
	return m.ensureFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}
