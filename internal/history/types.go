// Package history records every backend round trip a demo page makes.
package history

import "time"

// Action names the user action that triggered a run.
type Action string

const (
	ActionPredict        Action = "predict"
	ActionInputReduction Action = "input_reduction"
	ActionHotFlip        Action = "hotflip"
	ActionInterpret      Action = "interpret"
)

// Status is how a run ended.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
	// StatusStale marks a response that arrived after a newer request of
	// the same kind, or after the page was closed, and was discarded.
	StatusStale Status = "stale"
)

// Entry is one recorded run.
type Entry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Demo        string    `json:"demo"`
	Action      Action    `json:"action"`
	Interpreter string    `json:"interpreter,omitempty"`
	Status      Status    `json:"status"`
	Slug        string    `json:"slug,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}
