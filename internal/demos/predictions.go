package demos

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ziadkadry99/nlpdemo/internal/tokens"
)

// Prediction is a decoded, validated predict response.
type Prediction interface {
	Validate() error
	// Summary is a one-line plain-text rendering of the answer.
	Summary() string
}

// SentimentPrediction is the sentiment-analysis response. Older models
// send probs instead of class_probabilities.
type SentimentPrediction struct {
	ClassProbabilities []float64 `json:"class_probabilities,omitempty"`
	Probs              []float64 `json:"probs,omitempty"`
	Tokens             []string  `json:"tokens,omitempty"`
}

// Probabilities returns the per-class probabilities.
func (p *SentimentPrediction) Probabilities() []float64 {
	if len(p.ClassProbabilities) > 0 {
		return p.ClassProbabilities
	}
	return p.Probs
}

func (p *SentimentPrediction) Validate() error {
	if len(p.Probabilities()) == 0 {
		return fmt.Errorf("missing field %q", "class_probabilities")
	}
	return nil
}

// Answer is the 1-based index of the most probable class. The first
// maximum wins.
func (p *SentimentPrediction) Answer() int {
	return argmax(p.Probabilities()) + 1
}

func (p *SentimentPrediction) Summary() string {
	return fmt.Sprintf("%d on a scale of 1-5.", p.Answer())
}

func argmax(xs []float64) int {
	if len(xs) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// NERPrediction is the named-entity-recognition response: one BIOUL tag
// per word.
type NERPrediction struct {
	Words []string `json:"words"`
	Tags  []string `json:"tags"`
}

func (p *NERPrediction) Validate() error {
	if p.Words == nil || p.Tags == nil {
		return errors.New("missing words or tags")
	}
	if _, err := tokens.GroupEntities(p.Words, p.Tags); err != nil {
		return err
	}
	return nil
}

// Spans groups the tagged words into entity and plain spans.
func (p *NERPrediction) Spans() []tokens.EntitySpan {
	spans, _ := tokens.GroupEntities(p.Words, p.Tags)
	return spans
}

func (p *NERPrediction) Summary() string {
	ents := tokens.Entities(p.Spans())
	if len(ents) == 0 {
		return "No entities found."
	}
	parts := make([]string, len(ents))
	for i, e := range ents {
		parts[i] = fmt.Sprintf("%s (%s)", e.Text, e.Style.Tooltip)
	}
	return strings.Join(parts, ", ")
}

// Entailment labels, in the order of label_probs and of HotFlip's
// numeric label.
const (
	LabelEntailment    = "Entailment"
	LabelContradiction = "Contradiction"
	LabelNeutral       = "Neutral"
)

var entailmentLabels = []string{LabelEntailment, LabelContradiction, LabelNeutral}

// EntailmentLabel names a numeric entailment label.
func EntailmentLabel(i int) (string, bool) {
	if i < 0 || i >= len(entailmentLabels) {
		return "", false
	}
	return entailmentLabels[i], true
}

// Confidence thresholds for the judgment summary.
const (
	VeryConfident     = 0.75
	SomewhatConfident = 0.50
)

// ErrNoJudgment means no label is strictly more probable than the others.
var ErrNoJudgment = errors.New("cannot form judgment")

// Judgment is the entailment verdict drawn from label_probs.
type Judgment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	// Likelihood is "very likely", "somewhat likely" or "" when the model is
	// not confident.
	Likelihood string `json:"likelihood,omitempty"`
}

// Statement describes the judged relation between premise and hypothesis.
func (j Judgment) Statement() string {
	switch j.Label {
	case LabelEntailment:
		return "the premise entails the hypothesis"
	case LabelContradiction:
		return "the premise contradicts the hypothesis"
	default:
		return "there is no correlation between the premise and hypothesis"
	}
}

// Sentence is the full summary line.
func (j Judgment) Sentence() string {
	if j.Likelihood == "" {
		return "The model is not confident in its judgment."
	}
	return fmt.Sprintf("It is %s that %s.", j.Likelihood, j.Statement())
}

// EntailmentPrediction is the textual-entailment response.
// label_probs is ordered entailment, contradiction, neutral.
type EntailmentPrediction struct {
	LabelProbs       []float64   `json:"label_probs"`
	H2PAttention     [][]float64 `json:"h2p_attention,omitempty"`
	P2HAttention     [][]float64 `json:"p2h_attention,omitempty"`
	PremiseTokens    []string    `json:"premise_tokens"`
	HypothesisTokens []string    `json:"hypothesis_tokens"`
}

func (p *EntailmentPrediction) Validate() error {
	if len(p.LabelProbs) != 3 {
		return fmt.Errorf("field %q must hold 3 probabilities, got %d", "label_probs", len(p.LabelProbs))
	}
	if p.PremiseTokens == nil || p.HypothesisTokens == nil {
		return errors.New("missing premise_tokens or hypothesis_tokens")
	}
	if err := checkMatrix("h2p_attention", p.H2PAttention, len(p.HypothesisTokens), len(p.PremiseTokens)); err != nil {
		return err
	}
	if err := checkMatrix("p2h_attention", p.P2HAttention, len(p.PremiseTokens), len(p.HypothesisTokens)); err != nil {
		return err
	}
	_, err := p.Judgment()
	return err
}

// checkMatrix accepts an absent matrix or one shaped rows x cols.
func checkMatrix(name string, m [][]float64, rows, cols int) error {
	if m == nil {
		return nil
	}
	if len(m) != rows {
		return fmt.Errorf("%s: %d rows, want %d", name, len(m), rows)
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%s: row %d has %d columns, want %d", name, i, len(row), cols)
		}
	}
	return nil
}

// Probabilities returns entailment, contradiction and neutral.
func (p *EntailmentPrediction) Probabilities() (entailment, contradiction, neutral float64) {
	return p.LabelProbs[0], p.LabelProbs[1], p.LabelProbs[2]
}

// Judgment picks the strictly most probable label.
func (p *EntailmentPrediction) Judgment() (Judgment, error) {
	if len(p.LabelProbs) != 3 {
		return Judgment{}, ErrNoJudgment
	}
	e, c, n := p.Probabilities()

	var j Judgment
	switch {
	case e > c && e > n:
		j = Judgment{Label: LabelEntailment, Confidence: e}
	case c > e && c > n:
		j = Judgment{Label: LabelContradiction, Confidence: c}
	case n > e && n > c:
		j = Judgment{Label: LabelNeutral, Confidence: n}
	default:
		return Judgment{}, ErrNoJudgment
	}

	switch {
	case j.Confidence >= VeryConfident:
		j.Likelihood = "very likely"
	case j.Confidence >= SomewhatConfident:
		j.Likelihood = "somewhat likely"
	}
	return j, nil
}

func (p *EntailmentPrediction) Summary() string {
	j, err := p.Judgment()
	if err != nil {
		return err.Error()
	}
	return j.Sentence()
}

// Ternary returns the position of the prediction in the
// entailment/contradiction/neutral triangle, both coordinates in [0, 1].
func (p *EntailmentPrediction) Ternary() (x, y float64) {
	c, a, b := p.Probabilities() // entailment, contradiction, neutral
	sum := a + b + c
	if sum <= 0 {
		return 0, 0
	}
	return 0.5 * (2*b + c) / sum, c / sum
}

// FormatProb renders a probability as a percentage with at most one
// decimal, e.g. 0.5 -> "50%", 0.1234 -> "12.3%".
func FormatProb(p float64) string {
	pct := math.Round(p*1000) / 10
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}
