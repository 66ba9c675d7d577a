package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	histograms []histCall
	flushCount int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func TestStep_SuccessAndFailure(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRecorder("news", fb)

	r.Step("connect", nil, 2*time.Second)
	r.Step("file", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2 each", len(fb.counters), len(fb.histograms))
	}

	c0 := fb.counters[0]
	if c0.name != StepTotal || c0.delta != 1 {
		t.Fatalf("counter[0] = %#v", c0)
	}
	if c0.labels["job"] != "news" || c0.labels["step"] != "connect" || c0.labels["status"] != "success" {
		t.Fatalf("counter[0].labels = %v", c0.labels)
	}
	if got := fb.counters[1].labels["status"]; got != "failure" {
		t.Fatalf("counter[1].labels[status] = %q; want failure", got)
	}

	h1 := fb.histograms[1]
	if h1.name != StepDuration || h1.value != 1.5 {
		t.Fatalf("histogram[1] = %#v; want %s=1.5", h1, StepDuration)
	}
}

func TestRecordsAndFiles(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRecorder("news", fb)

	r.Records("parsed", 3)
	r.Records("dropped", 0)
	r.File("ingested")

	if len(fb.counters) != 2 {
		t.Fatalf("counters = %#v; zero deltas must be skipped", fb.counters)
	}
	if c := fb.counters[0]; c.name != RecordsTotal || c.delta != 3 || c.labels["kind"] != "parsed" {
		t.Fatalf("records counter = %#v", c)
	}
	if c := fb.counters[1]; c.name != FilesTotal || c.labels["outcome"] != "ingested" {
		t.Fatalf("files counter = %#v", c)
	}
}

func TestFlush(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRecorder("news", fb)
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("flushCount = %d; want 1", fb.flushCount)
	}
}

func TestNilRecorderAndNop(t *testing.T) {
	var r *Recorder
	r.Step("connect", nil, time.Second)
	r.Records("parsed", 1)
	r.File("empty")
	if err := r.Flush(); err != nil {
		t.Fatalf("nil Flush error: %v", err)
	}

	if err := NewRecorder("news", nil).Flush(); err != nil {
		t.Fatalf("nop Flush error: %v", err)
	}
}
