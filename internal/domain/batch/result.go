package batch

// ItemStatus is the write outcome of a single record.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of writing one record of a batch.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful write result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed write result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the record identifier in hex form.
func (r Result) ID() string { return r.id }

// Status returns the write outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// OK reports whether the record was written.
func (r Result) OK() bool { return r.status == StatusOK }

// CountOK returns the number of successful results.
func CountOK(results []Result) int {
	n := 0
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}
