// Package metrics records operational metrics for ingestion runs through a
// narrow, backend-agnostic interface.
//
// A Recorder is created per run and passed explicitly to the orchestrator.
// With no backend configured it records nothing, so instrumentation is always
// safe to call. Concrete systems live in subpackages (prompush, datadog).
package metrics

import "time"

// Metric names emitted by Recorder.
const (
	StepTotal    = "newsingest_step_total"
	StepDuration = "newsingest_step_duration_seconds"
	RecordsTotal = "newsingest_records_total"
	FilesTotal   = "newsingest_files_total"

	statusSuccess = "success"
	statusFailure = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a latency/duration style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}
func (Nop) Flush() error                             { return nil }

// Recorder binds a Backend to a job name. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	backend Backend
	job     string
}

// NewRecorder returns a Recorder for job. A nil backend means Nop.
func NewRecorder(job string, b Backend) *Recorder {
	if b == nil {
		b = Nop{}
	}
	return &Recorder{backend: b, job: job}
}

// Step records the outcome and latency of one pipeline step
// ("connect", "schema", "file", "count").
func (r *Recorder) Step(step string, err error, d time.Duration) {
	if r == nil {
		return
	}
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}
	lbls := Labels{"job": r.job, "step": step, "status": status}
	r.backend.IncCounter(StepTotal, 1, lbls)
	r.backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// Records increments a record-level counter. Typical kinds: "parsed",
// "dropped", "attempted", "inserted".
func (r *Recorder) Records(kind string, delta int64) {
	if r == nil || delta <= 0 {
		return
	}
	r.backend.IncCounter(RecordsTotal, float64(delta), Labels{"job": r.job, "kind": kind})
}

// File increments the per-file outcome counter.
func (r *Recorder) File(outcome string) {
	if r == nil {
		return
	}
	r.backend.IncCounter(FilesTotal, 1, Labels{"job": r.job, "outcome": outcome})
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error {
	if r == nil {
		return nil
	}
	return r.backend.Flush()
}
