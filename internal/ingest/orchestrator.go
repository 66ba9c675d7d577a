// Package ingest runs one ingestion pass: connect to the store, ensure the
// article table, then load every *.json file of a directory in order.
//
// Read and parse failures are local to their file. Connection, schema, store
// and count failures abort the run. Files are processed sequentially over a
// single connection, which is closed when Run returns.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsingest/internal/article"
	"newsingest/internal/datasource/file"
	"newsingest/internal/metrics"
	jsonparser "newsingest/internal/parser/json"
	"newsingest/internal/retry"
	"newsingest/internal/storage"

	"github.com/zeebo/xxh3"
)

// previewWidth bounds titles quoted in validation log lines.
const previewWidth = 48

// Config carries everything a run needs. Nothing is read from globals.
type Config struct {
	Storage storage.Config
	DataDir string
	Retry   retry.Policy

	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics may be nil.
	Metrics *metrics.Recorder
	// OnTransition, when set, observes every state change.
	OnTransition func(Transition)
}

// Orchestrator drives a run. It is not safe for concurrent use; create one
// per run.
type Orchestrator struct {
	cfg   Config
	log   *slog.Logger
	state State
	file  int
}

// New returns an Orchestrator in StateIdle.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Storage.Table == "" {
		cfg.Storage.Table = storage.DefaultTable
	}
	return &Orchestrator{cfg: cfg, log: logger, state: StateIdle, file: -1}
}

// State returns the current state and, while processing files, the index of
// the current file (-1 otherwise).
func (o *Orchestrator) State() (State, int) { return o.state, o.file }

func (o *Orchestrator) enter(s State, fileIdx int) {
	prev := o.state
	o.state, o.file = s, fileIdx
	if o.cfg.OnTransition != nil {
		o.cfg.OnTransition(Transition{From: prev, To: s, File: fileIdx})
	}
}

// Run executes the run. The returned Summary is populated as far as the run
// got, even when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context) (sum Summary, err error) {
	if o.state != StateIdle {
		return Summary{State: o.state}, fmt.Errorf("ingest: run already started (state %s)", o.state)
	}

	start := time.Now()
	defer func() {
		sum.Elapsed = time.Since(start)
		if err != nil {
			o.enter(StateFailed, -1)
			o.log.Error("ingestion aborted",
				"error", err,
				"attempted", sum.Attempted,
				"inserted", sum.Inserted,
				"files_ok", sum.FilesOK(),
				"files_failed", sum.FilesFailed(),
				"elapsed", sum.Elapsed.Truncate(time.Millisecond))
		}
		sum.State = o.state
		if ferr := o.cfg.Metrics.Flush(); ferr != nil {
			o.log.Warn("metrics flush failed", "error", ferr)
		}
	}()

	o.enter(StateConnecting, -1)
	t0 := time.Now()
	repo, err := storage.Connect(ctx, o.cfg.Storage, o.cfg.Retry, o.log)
	o.cfg.Metrics.Step("connect", err, time.Since(t0))
	if err != nil {
		return sum, err
	}
	defer repo.Close()
	o.log.Info("connected to store", "kind", o.cfg.Storage.Kind)

	o.enter(StateBootstrappingSchema, -1)
	t0 = time.Now()
	err = storage.EnsureSchema(ctx, repo, o.cfg.Storage.Table)
	o.cfg.Metrics.Step("schema", err, time.Since(t0))
	if err != nil {
		return sum, err
	}
	o.log.Info("schema ensured", "table", o.cfg.Storage.Table)

	paths, err := file.Discover(o.cfg.DataDir)
	if err != nil {
		return sum, err
	}
	o.log.Info("found files to process", "count", len(paths), "directory", o.cfg.DataDir)

	for i, path := range paths {
		if cerr := ctx.Err(); cerr != nil {
			return sum, fmt.Errorf("ingest: %w", cerr)
		}
		o.enter(StateProcessingFiles, i)
		t0 = time.Now()
		res := o.processFile(ctx, repo, path)
		o.cfg.Metrics.Step("file", res.Err, time.Since(t0))
		o.cfg.Metrics.File(string(res.Outcome))
		sum.add(res)
		if !res.Recoverable() {
			return sum, res.Err
		}
	}

	o.enter(StateSummarizing, -1)
	t0 = time.Now()
	total, err := storage.Count(ctx, repo)
	o.cfg.Metrics.Step("count", err, time.Since(t0))
	if err != nil {
		return sum, err
	}
	sum.Total = total
	o.cfg.Metrics.Records("attempted", sum.Attempted)
	o.cfg.Metrics.Records("inserted", sum.Inserted)

	o.enter(StateDone, -1)
	o.log.Info("ingestion complete",
		"attempted", sum.Attempted,
		"total_inserted", sum.Inserted,
		"total_rows", sum.Total,
		"files_ok", sum.FilesOK(),
		"files_failed", sum.FilesFailed(),
		"elapsed", time.Since(start).Truncate(time.Millisecond))
	return sum, nil
}

// processFile loads one file. Only an upsert failure is fatal.
func (o *Orchestrator) processFile(ctx context.Context, repo storage.Repository, path string) FileResult {
	src := file.NewLocal(path)
	res := FileResult{Path: path}
	log := o.log.With("file", src.Name())

	data, err := src.ReadAll(ctx)
	if err != nil {
		return o.skip(log, res, err)
	}
	res.Checksum = fmt.Sprintf("%016x", xxh3.Hash(data))
	log.Info("processing file", "checksum", res.Checksum, "bytes", len(data))

	recs, err := jsonparser.DecodeArticles(bytes.NewReader(data))
	if err != nil {
		return o.skip(log, res, err)
	}
	res.Records = len(recs)
	o.cfg.Metrics.Records("parsed", int64(len(recs)))

	tuples := make([]article.Tuple, 0, len(recs))
	for _, rec := range recs {
		t, err := article.Transform(rec)
		if err != nil {
			var verr *article.ValidationError
			if errors.As(err, &verr) {
				res.Dropped = append(res.Dropped, verr)
			}
			log.Error("invalid article dropped",
				"article_id", rec.ID(),
				"title", article.Preview(rec, previewWidth),
				"error", err)
			continue
		}
		tuples = append(tuples, t)
	}
	o.cfg.Metrics.Records("dropped", int64(len(res.Dropped)))

	if len(tuples) == 0 {
		res.Outcome = OutcomeEmpty
		log.Info("no valid articles in file", "records", res.Records)
		return res
	}

	n, err := storage.Upsert(ctx, repo, tuples)
	if err != nil {
		res.Outcome = OutcomeFatal
		res.Err = fmt.Errorf("file %s: %w", src.Name(), err)
		return res
	}
	res.Outcome = OutcomeIngested
	res.Attempted = int64(len(tuples))
	res.Inserted = n
	log.Info("processed batch", "attempted", res.Attempted, "inserted", res.Inserted)
	return res
}

func (o *Orchestrator) skip(log *slog.Logger, res FileResult, err error) FileResult {
	res.Outcome = OutcomeSkipped
	res.Err = err
	log.Error("error processing file", "error", err)
	return res
}
