// Package batch holds ingestion outcome types: an explicit per-item result
// variant instead of exception-driven control flow, rolled up into a run
// report.
package batch

// ItemStatus is the processing outcome of a single record.
type ItemStatus string

// Ingestion item status values.
const (
	StatusIndexed ItemStatus = "indexed"
	StatusSkipped ItemStatus = "skipped"
)

// SkipReason classifies why a record was quarantined.
type SkipReason string

// Skip reasons.
const (
	ReasonInvalid  SkipReason = "invalid"
	ReasonEncoding SkipReason = "encoding"
)

// Result is the outcome of processing one record.
type Result struct {
	id     string
	status ItemStatus
	reason SkipReason
	err    error
}

// NewIndexed creates a successful result for the point with the given id.
func NewIndexed(id string) Result {
	return Result{id: id, status: StatusIndexed}
}

// NewSkipped creates a quarantined result with its reason.
func NewSkipped(id string, reason SkipReason, err error) Result {
	return Result{id: id, status: StatusSkipped, reason: reason, err: err}
}

// ID returns the point identifier, or the raw record position for records
// that never produced an entity.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Reason returns the skip classification, empty for indexed items.
func (r Result) Reason() SkipReason { return r.reason }

// Err returns the underlying failure, if any.
func (r Result) Err() error { return r.err }

// Report aggregates a full ingestion run.
type Report struct {
	Total           int `json:"total"`
	Indexed         int `json:"indexed"`
	SkippedInvalid  int `json:"skipped_invalid"`
	SkippedEncoding int `json:"skipped_encoding"`
}

// Add folds one result into the report.
func (r *Report) Add(res Result) {
	r.Total++
	switch {
	case res.Status() == StatusIndexed:
		r.Indexed++
	case res.Reason() == ReasonInvalid:
		r.SkippedInvalid++
	case res.Reason() == ReasonEncoding:
		r.SkippedEncoding++
	}
}
