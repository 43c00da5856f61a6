package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ziadkadry99/nlpdemo/internal/backend"
	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
)

// Backend is the model-serving API as the orchestrator uses it.
type Backend interface {
	Predict(ctx context.Context, endpoint string, inputs map[string]any) (json.RawMessage, error)
	Attack(ctx context.Context, endpoint string, inputs map[string]any) (*backend.AttackResult, error)
	Interpret(ctx context.Context, endpoint string, inputs map[string]any) (backend.InterpretResult, error)
}

// Request is one user action on a page.
type Request struct {
	Action history.Action
	// Inputs is the form for predict. For attacks and interpretations it
	// is optional and is sent instead of the page's current request, which
	// stays as it is.
	Inputs      map[string]any
	Interpreter string
}

// Outcome is the result of an applied or dropped action.
type Outcome struct {
	Action history.Action `json:"action"`
	// Applied is false when the response was stale and dropped.
	Applied bool `json:"applied"`
	// Navigate is where the page moves after a successful predict.
	Navigate   string                  `json:"navigate,omitempty"`
	Permalink  *permalink.Permalink    `json:"permalink,omitempty"`
	Request    map[string]any          `json:"request,omitempty"`
	Response   json.RawMessage         `json:"response,omitempty"`
	Prediction demos.Prediction        `json:"-"`
	Attack     *backend.AttackResult   `json:"attack,omitempty"`
	Saliency   backend.InterpretResult `json:"saliency,omitempty"`
}

// Orchestrator runs page actions against the backend, stores permalinks
// for predictions and records every run. The stores may be nil.
type Orchestrator struct {
	backend    Backend
	permalinks *permalink.Store
	history    *history.Store
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(b Backend, links *permalink.Store, hist *history.Store) *Orchestrator {
	return &Orchestrator{backend: b, permalinks: links, history: hist}
}

// ActionKey groups requests whose responses supersede each other. It is
// also the key of DisplayState.Pending.
func ActionKey(action history.Action, interpreter string) string {
	if action == history.ActionInterpret {
		return string(action) + "/" + interpreter
	}
	return string(action)
}

// Run performs one action on the page. A response that arrives after a
// newer request of the same kind, or after the page closed, is dropped and
// reported with Applied false and no error.
func (o *Orchestrator) Run(ctx context.Context, page *Page, req Request) (*Outcome, error) {
	switch req.Action {
	case history.ActionPredict:
		return o.predict(ctx, page, req)
	case history.ActionInputReduction:
		return o.attack(ctx, page, req, demos.TechniqueInputReduction)
	case history.ActionHotFlip:
		return o.attack(ctx, page, req, demos.TechniqueHotFlip)
	case history.ActionInterpret:
		return o.interpret(ctx, page, req)
	}
	return nil, fmt.Errorf("unknown action %q", req.Action)
}

func (o *Orchestrator) predict(ctx context.Context, page *Page, req Request) (*Outcome, error) {
	demo := page.Demo()
	inputs, err := demo.NormalizeInputs(req.Inputs)
	if err != nil {
		return nil, err
	}

	key := ActionKey(history.ActionPredict, "")
	ticket, _, err := page.begin(key, true, false)
	if err != nil {
		return nil, err
	}
	run := o.startRun(demo.Slug, history.ActionPredict, "")

	endpoint := demo.PredictPath(inputs)
	raw, err := o.backend.Predict(ctx, endpoint, inputs)
	var pred demos.Prediction
	if err == nil {
		pred, err = demo.DecodePrediction(endpoint, raw)
	}
	if err != nil {
		return o.fail(ctx, page, key, ticket, run, err)
	}

	applied := page.finish(key, ticket, true, func(s *DisplayState) {
		s.Request = inputs
		s.Response = raw
		s.Prediction = pred
		s.Slug = ""
		s.OutputState = OutputReceived
		s.LastError = ""
		clear(s.Attacks)
		clear(s.Saliency)
	})

	out := &Outcome{Action: history.ActionPredict, Applied: applied}
	if !applied {
		o.finishRun(ctx, run, history.StatusStale, "", nil)
		return out, nil
	}

	// Only applied predictions get a permalink.
	var link *permalink.Permalink
	if o.permalinks != nil {
		link, err = o.permalinks.Save(ctx, demo.Slug, inputs, raw)
		if err != nil {
			log.Printf("session: saving permalink for %s: %v", demo.Slug, err)
			link = nil
		} else {
			page.attachSlug(key, ticket, link.Slug)
		}
	}

	out.Navigate = "/" + demo.Slug
	if link != nil {
		out.Navigate += "/" + link.Slug
		out.Permalink = link
	}
	out.Request = inputs
	out.Response = raw
	out.Prediction = pred
	o.finishRun(ctx, run, history.StatusOK, "", link)
	return out, nil
}

func (o *Orchestrator) attack(ctx context.Context, page *Page, req Request, technique demos.Technique) (*Outcome, error) {
	demo := page.Demo()
	endpoint, err := demo.AttackPath(technique)
	if err != nil {
		return nil, err
	}
	override, err := o.overrideInputs(demo, req.Inputs)
	if err != nil {
		return nil, err
	}

	key := ActionKey(req.Action, "")
	ticket, inputs, err := page.begin(key, false, override == nil)
	if err != nil {
		return nil, err
	}
	if override != nil {
		inputs = override
	}
	run := o.startRun(demo.Slug, req.Action, "")

	res, err := o.backend.Attack(ctx, endpoint, inputs)
	if err != nil {
		return o.fail(ctx, page, key, ticket, run, err)
	}

	applied := page.finish(key, ticket, false, func(s *DisplayState) {
		s.Attacks[technique] = res
		settle(s)
	})
	out := &Outcome{Action: req.Action, Applied: applied}
	if !applied {
		o.finishRun(ctx, run, history.StatusStale, "", nil)
		return out, nil
	}
	out.Request = inputs
	out.Attack = res
	o.finishRun(ctx, run, history.StatusOK, "", nil)
	return out, nil
}

func (o *Orchestrator) interpret(ctx context.Context, page *Page, req Request) (*Outcome, error) {
	demo := page.Demo()
	endpoint, err := demo.InterpretPath(req.Interpreter)
	if err != nil {
		return nil, err
	}
	override, err := o.overrideInputs(demo, req.Inputs)
	if err != nil {
		return nil, err
	}

	key := ActionKey(history.ActionInterpret, req.Interpreter)
	ticket, inputs, err := page.begin(key, false, override == nil)
	if err != nil {
		return nil, err
	}
	if override != nil {
		inputs = override
	}
	run := o.startRun(demo.Slug, history.ActionInterpret, req.Interpreter)

	res, err := o.backend.Interpret(ctx, endpoint, inputs)
	if err != nil {
		return o.fail(ctx, page, key, ticket, run, err)
	}

	applied := page.finish(key, ticket, false, func(s *DisplayState) {
		s.Saliency[req.Interpreter] = res
		settle(s)
	})
	out := &Outcome{Action: history.ActionInterpret, Applied: applied}
	if !applied {
		o.finishRun(ctx, run, history.StatusStale, "", nil)
		return out, nil
	}
	out.Request = inputs
	out.Saliency = res
	o.finishRun(ctx, run, history.StatusOK, "", nil)
	return out, nil
}

func (o *Orchestrator) overrideInputs(demo *demos.Demo, inputs map[string]any) (map[string]any, error) {
	if inputs == nil {
		return nil, nil
	}
	return demo.NormalizeInputs(inputs)
}

// settle clears an error left by an earlier action once a later one
// succeeds on a page that has a prediction.
func settle(s *DisplayState) {
	if s.OutputState == OutputError && s.HasPrediction() {
		s.OutputState = OutputReceived
		s.LastError = ""
	}
}

// fail records a failed backend call. Stored results are left untouched.
func (o *Orchestrator) fail(ctx context.Context, page *Page, key string, ticket uint64, run history.Entry, cause error) (*Outcome, error) {
	applied := page.finish(key, ticket, false, func(s *DisplayState) {
		s.OutputState = OutputError
		s.LastError = cause.Error()
	})
	if !applied {
		o.finishRun(ctx, run, history.StatusStale, cause.Error(), nil)
		return &Outcome{Action: run.Action}, nil
	}

	log.Printf("session: %s %s failed: %v", run.Demo, run.Action, cause)
	o.finishRun(ctx, run, history.StatusError, cause.Error(), nil)
	return nil, cause
}

func (o *Orchestrator) startRun(demo string, action history.Action, interpreter string) history.Entry {
	return history.Entry{
		Timestamp:   time.Now(),
		Demo:        demo,
		Action:      action,
		Interpreter: interpreter,
	}
}

func (o *Orchestrator) finishRun(ctx context.Context, run history.Entry, status history.Status, msg string, link *permalink.Permalink) {
	if o.history == nil {
		return
	}
	run.Status = status
	run.Error = msg
	run.DurationMS = time.Since(run.Timestamp).Milliseconds()
	if link != nil {
		run.Slug = link.Slug
	}
	// The page may have gone away; the record is still wanted.
	if err := o.history.Log(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("session: recording run: %v", err)
	}
}

// IsUserError reports whether err came from bad input rather than the
// backend.
func IsUserError(err error) bool {
	return errors.Is(err, demos.ErrInvalidInput) ||
		errors.Is(err, demos.ErrUnsupported) ||
		errors.Is(err, ErrNoPrediction)
}
