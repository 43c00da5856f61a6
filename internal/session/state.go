// Package session holds the display state of one open demo page and runs
// user actions against the backend on its behalf.
package session

import (
	"encoding/json"
	"errors"
	"maps"

	"github.com/ziadkadry99/nlpdemo/internal/backend"
	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/saliency"
)

// OutputState is what the output pane shows.
type OutputState string

const (
	OutputEmpty    OutputState = "empty"
	OutputWorking  OutputState = "working"
	OutputReceived OutputState = "received"
	OutputError    OutputState = "error"
)

// ErrNoPrediction means an attack or interpretation was requested before
// the page had a prediction to work from.
var ErrNoPrediction = errors.New("run the model before attacking or interpreting it")

// ErrClosed means the page instance has been closed.
var ErrClosed = errors.New("page closed")

// DisplayState is everything a demo page renders.
type DisplayState struct {
	Demo        string                                    `json:"demo"`
	Slug        string                                    `json:"slug,omitempty"`
	Request     map[string]any                            `json:"request,omitempty"`
	Response    json.RawMessage                           `json:"response,omitempty"`
	Prediction  demos.Prediction                          `json:"-"`
	Attacks     map[demos.Technique]*backend.AttackResult `json:"attacks,omitempty"`
	Saliency    map[string]backend.InterpretResult        `json:"saliency,omitempty"`
	OutputState OutputState                               `json:"output_state"`
	// Pending lists actions awaiting a backend answer, keyed like tickets.
	Pending map[string]bool                 `json:"pending,omitempty"`
	TopK    map[string]saliency.TopKSetting `json:"top_k,omitempty"`
	// LastError is the message of the most recent failed action.
	LastError string `json:"last_error,omitempty"`
}

func newDisplayState(demo string) DisplayState {
	return DisplayState{
		Demo:        demo,
		Attacks:     make(map[demos.Technique]*backend.AttackResult),
		Saliency:    make(map[string]backend.InterpretResult),
		OutputState: OutputEmpty,
		Pending:     make(map[string]bool),
		TopK:        make(map[string]saliency.TopKSetting),
	}
}

// clone copies the maps so a snapshot can be read without the page lock.
// Result values themselves are never mutated after being stored.
func (s DisplayState) clone() DisplayState {
	s.Request = maps.Clone(s.Request)
	s.Attacks = maps.Clone(s.Attacks)
	s.Saliency = maps.Clone(s.Saliency)
	s.Pending = maps.Clone(s.Pending)
	s.TopK = maps.Clone(s.TopK)
	return s
}

// HasPrediction reports whether a prediction has been received.
func (s DisplayState) HasPrediction() bool {
	return s.Request != nil && s.Prediction != nil
}
