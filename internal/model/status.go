package model

// State represents a stage of the acquisition pipeline for one owner
type State string

const (
	// StateIdle means no request is in flight for the owner
	StateIdle State = "Idle"

	// StateAnalyzing means the source URL is being probed
	StateAnalyzing State = "Analyzing"

	// StateOptionsPresented means quality options were shown and a session is live
	StateOptionsPresented State = "OptionsPresented"

	// StateDownloading means the chosen encoding is being acquired
	StateDownloading State = "Downloading"

	// StateValidating means the artifact is being checked against the upload ceiling
	StateValidating State = "Validating"

	// StateUploading means the artifact is being delivered
	StateUploading State = "Uploading"

	// StateDone means the artifact was delivered
	StateDone State = "Done"

	// StateAborted means a stage failed and the request was dropped
	StateAborted State = "Aborted"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true if the state ends a request (done or aborted)
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateAborted
}

// Outcome is the result of handling one inbound event
type Outcome struct {
	State    State // state reached when handling stopped
	FailedAt State // stage that aborted, empty unless State is Aborted
	Err      error // taxonomy error, nil on success
	Ignored  bool  // true for malformed callbacks that were dropped silently
}

// Aborted builds an outcome for a failure at the given stage
func Aborted(stage State, err error) Outcome {
	return Outcome{State: StateAborted, FailedAt: stage, Err: err}
}
