package demos

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ziadkadry99/nlpdemo/internal/backend"
)

// PredictPath returns the predict endpoint for the given inputs. A radio
// field whose options carry a task picks the endpoint; an empty selection
// falls back to the first option.
func (d *Demo) PredictPath(inputs map[string]any) string {
	task := d.Task
	for _, f := range d.Fields {
		if f.Type != FieldRadio || len(f.Options) == 0 {
			continue
		}
		sel, _ := inputs[f.Name].(string)
		opt, ok := f.option(sel)
		if !ok {
			opt = f.Options[0]
		}
		if opt.Task != "" {
			task = opt.Task
		}
	}
	return backend.PredictPath(task)
}

// SupportsTechnique reports whether the demo offers t.
func (d *Demo) SupportsTechnique(t Technique) bool {
	for _, have := range d.Techniques {
		if have == t {
			return true
		}
	}
	return false
}

// AttackPath returns the backend endpoint for an adversarial technique.
func (d *Demo) AttackPath(t Technique) (string, error) {
	if !d.SupportsTechnique(t) {
		return "", fmt.Errorf("%s: technique %q: %w", d.Slug, t, ErrUnsupported)
	}
	switch t {
	case TechniqueInputReduction:
		return backend.AttackPath(d.Task), nil
	case TechniqueHotFlip:
		return backend.HotFlipPath(d.Task), nil
	}
	return "", fmt.Errorf("%s: technique %q: %w", d.Slug, t, ErrUnsupported)
}

// Interpreter looks up a supported interpreter by name.
func (d *Demo) Interpreter(name string) (Interpreter, bool) {
	for _, in := range d.Interpreters {
		if in.Name == name {
			return in, true
		}
	}
	return Interpreter{}, false
}

// InterpretPath returns the backend endpoint for a saliency interpreter.
func (d *Demo) InterpretPath(name string) (string, error) {
	if _, ok := d.Interpreter(name); !ok {
		return "", fmt.Errorf("%s: interpreter %q: %w", d.Slug, name, ErrUnsupported)
	}
	return backend.InterpretPath(d.Task, name), nil
}

// NormalizeInputs validates a submitted form against the demo's fields and
// returns a copy holding only declared fields with normalised text.
func (d *Demo) NormalizeInputs(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		var value string
		if raw, ok := in[f.Name]; ok && raw != nil {
			s, isString := raw.(string)
			if !isString {
				return nil, fmt.Errorf("%w: field %q must be a string", ErrInvalidInput, f.Name)
			}
			value = NormalizeText(s)
		}

		if value == "" {
			if f.Optional {
				continue
			}
			return nil, fmt.Errorf("%w: field %q is required", ErrInvalidInput, f.Name)
		}
		if f.Type == FieldRadio {
			if _, ok := f.option(value); !ok {
				return nil, fmt.Errorf("%w: field %q has no option %q", ErrInvalidInput, f.Name, value)
			}
		}
		out[f.Name] = value
	}
	return out, nil
}

// DecodePrediction decodes and validates a predict response for this demo.
func (d *Demo) DecodePrediction(endpoint string, raw json.RawMessage) (Prediction, error) {
	var pred Prediction
	switch d.Kind {
	case KindSentiment:
		pred = &SentimentPrediction{}
	case KindNER:
		pred = &NERPrediction{}
	case KindEntailment:
		pred = &EntailmentPrediction{}
	default:
		return nil, fmt.Errorf("%s: unknown kind %q", d.Slug, d.Kind)
	}
	if err := backend.Decode(endpoint, raw, pred); err != nil {
		return nil, err
	}
	return pred, nil
}

// inputText returns a string input or "".
func inputText(inputs map[string]any, name string) string {
	s, _ := inputs[name].(string)
	return strings.TrimSpace(s)
}
