package ingest

import (
	"time"

	"newsingest/internal/article"
)

// Outcome tags the result of processing one file. The orchestrator loop
// continues on every outcome except OutcomeFatal.
type Outcome string

const (
	// OutcomeIngested: at least one tuple was upserted (possibly 0 new rows).
	OutcomeIngested Outcome = "ingested"
	// OutcomeEmpty: the file parsed but no record survived validation, so no
	// statement was issued.
	OutcomeEmpty Outcome = "empty"
	// OutcomeSkipped: a recoverable read or parse failure; the file
	// contributes nothing to the run.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFatal: a store error; the run aborts.
	OutcomeFatal Outcome = "fatal"
)

// FileResult is the typed outcome of one file.
type FileResult struct {
	Path     string
	Checksum string // xxh3-64 of the file bytes, hex; empty when unreadable
	Outcome  Outcome
	Err      error

	Records   int // records decoded from the file
	Attempted int64
	Inserted  int64
	Dropped   []*article.ValidationError
}

// Recoverable reports whether the loop may continue after r.
func (r FileResult) Recoverable() bool { return r.Outcome != OutcomeFatal }

// Summary aggregates a run. Attempted and Inserted only count files whose
// upsert committed. Total is the store's row count after the run and is only
// set when the run reached Summarizing.
type Summary struct {
	Attempted int64
	Inserted  int64
	Total     int64
	Files     []FileResult
	Elapsed   time.Duration
	State     State
}

// FilesOK counts files that were ingested or were empty after validation.
func (s Summary) FilesOK() int {
	n := 0
	for _, f := range s.Files {
		if f.Outcome == OutcomeIngested || f.Outcome == OutcomeEmpty {
			n++
		}
	}
	return n
}

// FilesFailed counts skipped and fatal files.
func (s Summary) FilesFailed() int { return len(s.Files) - s.FilesOK() }

func (s *Summary) add(r FileResult) {
	s.Files = append(s.Files, r)
	if r.Outcome == OutcomeIngested {
		s.Attempted += r.Attempted
		s.Inserted += r.Inserted
	}
}
