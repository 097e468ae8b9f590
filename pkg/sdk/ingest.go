package questsearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kailas-cloud/questsearch/internal/corpus"
	dombatch "github.com/kailas-cloud/questsearch/internal/domain/batch"
)

// IngestReport accounts for every input record: Inserted + Failed == Total.
type IngestReport struct {
	Total     int
	Inserted  int
	Failed    int
	Rejected  int // failed records that were never sent to the store
	Batches   int
	Retried   int
	Recovered int
}

// Ingest writes records in batches. Identifiers may be hex strings or
// {"$oid": hex} objects; records without one get a fresh identifier.
// Existing records are left untouched and counted as failed.
//
// Only a lost store connection returns an error, together with the partial
// report.
func (c *Client) Ingest(ctx context.Context, records []map[string]any) (_ IngestReport, err error) {
	start := time.Now()
	var report IngestReport
	defer func() {
		c.obs.observe("ingest", start, err,
			slog.Int("total", report.Total),
			slog.Int("inserted", report.Inserted),
			slog.Int("failed", report.Failed),
		)
		c.obs.records(report)
	}()

	r, err := c.ingestSvc.Load(ctx, records)
	report = fromReport(r)
	if err != nil {
		return report, fmt.Errorf("ingest: %w", err)
	}
	return report, nil
}

// IngestReader reads a JSON array or newline-delimited JSON objects from r
// and ingests them.
func (c *Client) IngestReader(ctx context.Context, r io.Reader) (IngestReport, error) {
	records, err := corpus.Read(r)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest: %w", err)
	}
	return c.Ingest(ctx, records)
}

// IngestFile ingests the corpus stored at path.
func (c *Client) IngestFile(ctx context.Context, path string) (IngestReport, error) {
	records, err := corpus.ReadFile(path)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest: %w", err)
	}
	return c.Ingest(ctx, records)
}

func fromReport(r dombatch.Report) IngestReport {
	return IngestReport{
		Total:     r.Total,
		Inserted:  r.Inserted,
		Failed:    r.Failed,
		Rejected:  r.Rejected,
		Batches:   r.Batches,
		Retried:   r.Retried,
		Recovered: r.Recovered,
	}
}
