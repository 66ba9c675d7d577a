package ingest

import "fmt"

// State is the phase of a single ingestion run.
//
//	Idle -> Connecting -> BootstrappingSchema -> ProcessingFiles(i) -> Summarizing -> Done
//
// Any fatal error moves the run to Failed.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateBootstrappingSchema
	StateProcessingFiles
	StateSummarizing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:                "idle",
	StateConnecting:          "connecting",
	StateBootstrappingSchema: "bootstrapping_schema",
	StateProcessingFiles:     "processing_files",
	StateSummarizing:         "summarizing",
	StateDone:                "done",
	StateFailed:              "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// Transition is delivered to Config.OnTransition. File is the zero-based
// index of the file being processed and is -1 outside ProcessingFiles.
type Transition struct {
	From, To State
	File     int
}
