// Package batch groups records for bounded ingestion writes.
package batch

import (
	"fmt"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
)

// MaxSize is the largest number of records written in one call.
const MaxSize = 5000

// Status is the lifecycle tag of a batch.
type Status string

// Batch lifecycle values.
const (
	StatusPending   Status = "pending"
	StatusCommitted Status = "committed"
	StatusFailed    Status = "failed"
)

// Batch is an ordered group of at most MaxSize records.
type Batch struct {
	seq      int
	records  []question.Record
	status   Status
	inserted int
}

// Partition splits records into sequential batches of at most size records.
// Every record lands in exactly one batch. size is clamped to [1, MaxSize].
func Partition(records []question.Record, size int) []*Batch {
	if size <= 0 || size > MaxSize {
		size = MaxSize
	}
	out := make([]*Batch, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, &Batch{
			seq:     len(out) + 1,
			records: records[start:end:end],
			status:  StatusPending,
		})
	}
	return out
}

// Seq returns the 1-based batch number.
func (b *Batch) Seq() int { return b.seq }

// Records returns the batch contents.
func (b *Batch) Records() []question.Record { return b.records }

// Len returns the number of records.
func (b *Batch) Len() int { return len(b.records) }

// Status returns the lifecycle tag.
func (b *Batch) Status() Status { return b.status }

// Inserted returns the number of records written.
func (b *Batch) Inserted() int { return b.inserted }

// Apply records per-record write results, aligned with Records(), and
// returns the records that failed. A missing result counts as a failure.
// The batch is committed only when every record was written.
func (b *Batch) Apply(results []Result) []question.Record {
	var failed []question.Record
	for i, r := range b.records {
		if i < len(results) && results[i].OK() {
			b.inserted++
			continue
		}
		failed = append(failed, r)
	}
	if len(failed) == 0 {
		b.status = StatusCommitted
	} else {
		b.status = StatusFailed
	}
	return failed
}

// Fail marks the whole batch as failed and returns all its records.
func (b *Batch) Fail() []question.Record {
	b.status = StatusFailed
	b.inserted = 0
	return b.records
}

// Report is the outcome of loading a corpus.
type Report struct {
	Total     int `json:"total"`
	Inserted  int `json:"inserted"`
	Failed    int `json:"failed"`
	Rejected  int `json:"rejected"` // subset of Failed that never reached the store
	Batches   int `json:"batches"`
	Retried   int `json:"retried"`
	Recovered int `json:"recovered"` // records that succeeded on the retry pass
}

// Check verifies that every input record is accounted for exactly once.
func (r Report) Check() error {
	if r.Inserted+r.Failed != r.Total {
		return fmt.Errorf("%w: inserted %d + failed %d != total %d",
			domain.ErrWriteFailed, r.Inserted, r.Failed, r.Total)
	}
	return nil
}
