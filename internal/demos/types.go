// Package demos defines the built-in model demos: their input fields,
// examples, backend endpoints and output schemas.
package demos

import (
	"errors"
	"html/template"
)

// Kind selects how a demo's prediction is decoded and displayed.
type Kind string

const (
	KindSentiment  Kind = "sentiment"
	KindNER        Kind = "ner"
	KindEntailment Kind = "entailment"
)

// FieldType is the input widget a field renders as.
type FieldType string

const (
	FieldText  FieldType = "text"
	FieldRadio FieldType = "radio"
)

// Option is one choice of a radio field. Task, when set, overrides the
// backend task the demo predicts with.
type Option struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Task        string `json:"-"`
}

// Field is one input of a demo form.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Optional    bool      `json:"optional,omitempty"`
}

func (f Field) option(name string) (Option, bool) {
	for _, o := range f.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Example is a canned input, keyed by field name.
type Example map[string]string

// Technique is an adversarial technique run against the current input.
type Technique string

const (
	TechniqueInputReduction Technique = "input-reduction"
	TechniqueHotFlip        Technique = "hotflip"
)

// Interpreter describes a gradient-based saliency method.
type Interpreter struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Paper string `json:"paper"`
	Blurb string `json:"blurb"`
}

// Interpreter names as used in backend paths.
const (
	SimpleGradient     = "simple_gradient"
	IntegratedGradient = "integrated_gradient"
	SmoothGradient     = "smooth_gradient"
)

var interpreters = []Interpreter{
	{
		Name:  SimpleGradient,
		Title: "Simple Gradients Visualization",
		Paper: "https://arxiv.org/abs/1312.6034",
		Blurb: "See saliency map interpretations generated by visualizing the gradient.",
	},
	{
		Name:  IntegratedGradient,
		Title: "Integrated Gradients Visualization",
		Paper: "https://arxiv.org/abs/1703.01365",
		Blurb: "See saliency map interpretations generated using Integrated Gradients.",
	},
	{
		Name:  SmoothGradient,
		Title: "SmoothGrad Visualization",
		Paper: "https://arxiv.org/abs/1706.03825",
		Blurb: "See saliency map interpretations generated using SmoothGrad.",
	},
}

// Demo is one model demo page.
type Demo struct {
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Kind        Kind          `json:"kind"`
	Summary     string        `json:"summary"`
	Description template.HTML `json:"description"`
	Fields      []Field       `json:"fields"`
	Examples    []Example     `json:"examples"`
	Techniques  []Technique   `json:"techniques"`
	// Interpreters is empty for demos without saliency maps.
	Interpreters []Interpreter `json:"interpreters,omitempty"`
	// HotFlipTarget names what HotFlip perturbs ("input", "Hypothesis").
	HotFlipTarget string `json:"hotflip_target"`

	// Task is the backend task name used in endpoint paths.
	Task string `json:"-"`
}

var (
	// ErrUnknownDemo is returned for a slug that is not registered.
	ErrUnknownDemo = errors.New("unknown demo")

	// ErrUnsupported means the demo does not offer the requested technique
	// or interpreter.
	ErrUnsupported = errors.New("not supported by this demo")

	// ErrInvalidInput means a submitted form failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
