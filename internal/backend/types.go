package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Validator is implemented by response schemas that check their own shape
// after decoding.
type Validator interface {
	Validate() error
}

// AttackResult is returned by the attack (Input Reduction) and hotflip
// endpoints: one original token sequence and one or more perturbed ones.
type AttackResult struct {
	Original []string        `json:"original"`
	Final    [][]string      `json:"final"`
	Label    json.RawMessage `json:"label,omitempty"`
}

// Validate checks that the result carries an original and at least one final.
func (a *AttackResult) Validate() error {
	if a.Original == nil {
		return fmt.Errorf("missing field %q", "original")
	}
	if len(a.Final) == 0 {
		return fmt.Errorf("field %q must hold at least one sequence", "final")
	}
	return nil
}

// LabelIndex returns the predicted label after the attack. The backend may
// send it as a number or as a numeric string.
func (a *AttackResult) LabelIndex() (int, bool) {
	if len(a.Label) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(a.Label, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(a.Label, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Gradients holds the per-token gradient vectors of one instance.
// GradInput2 is only present for paired-sequence inputs.
type Gradients struct {
	GradInput1 []float64 `json:"grad_input_1"`
	GradInput2 []float64 `json:"grad_input_2,omitempty"`
}

// InterpretResult maps instance names (instance_1, ...) to gradients.
type InterpretResult map[string]Gradients

// Validate checks that at least one instance with gradients is present.
func (r InterpretResult) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("no instances in interpretation")
	}
	for name, g := range r {
		if !strings.HasPrefix(name, "instance_") {
			return fmt.Errorf("unexpected key %q", name)
		}
		if g.GradInput1 == nil {
			return fmt.Errorf("instance %q missing %q", name, "grad_input_1")
		}
	}
	return nil
}

// Instances returns instance names in numeric order.
func (r InterpretResult) Instances() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(names[i], "instance_"))
		nj, _ := strconv.Atoi(strings.TrimPrefix(names[j], "instance_"))
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names
}

// First returns the gradients of the lowest-numbered instance.
func (r InterpretResult) First() (Gradients, bool) {
	names := r.Instances()
	if len(names) == 0 {
		return Gradients{}, false
	}
	return r[names[0]], true
}
