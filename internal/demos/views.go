package demos

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/nlpdemo/internal/backend"
	"github.com/ziadkadry99/nlpdemo/internal/saliency"
	"github.com/ziadkadry99/nlpdemo/internal/tokens"
)

// ReductionRow is one original/reduced pair. Entity is set for NER, where
// the backend reduces the input once per predicted entity.
type ReductionRow struct {
	Entity   *tokens.EntitySpan `json:"entity,omitempty"`
	Original []tokens.Span      `json:"original"`
	Reduced  []tokens.Span      `json:"reduced"`
}

// ReductionView is the rendered Input Reduction section.
type ReductionView struct {
	Rows []ReductionRow `json:"rows"`
}

// ReductionView aligns an Input Reduction result for display.
func (d *Demo) ReductionView(pred Prediction, res *backend.AttackResult) (*ReductionView, error) {
	if res == nil || len(res.Final) == 0 {
		return nil, fmt.Errorf("%s: empty input reduction result", d.Slug)
	}

	finals := res.Final[:1]
	var entities []tokens.EntitySpan
	if d.Kind == KindNER {
		finals = res.Final
		if ner, ok := pred.(*NERPrediction); ok {
			entities = tokens.Entities(ner.Spans())
		}
	}

	view := &ReductionView{}
	for i, final := range finals {
		orig, red, err := tokens.InputReduction(res.Original, final)
		if err != nil {
			return nil, fmt.Errorf("aligning reduced input %d: %w", i, err)
		}
		row := ReductionRow{Original: orig, Reduced: red}
		if i < len(entities) {
			e := entities[i]
			row.Entity = &e
		}
		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

// HotFlipView is the rendered HotFlip section.
type HotFlipView struct {
	Original []tokens.Span   `json:"original"`
	Flipped  [][]tokens.Span `json:"flipped"`
	// Premise is the untouched premise when only the hypothesis is flipped.
	Premise string `json:"premise,omitempty"`
	// NewLabel is the prediction after flipping, when the backend reports it.
	NewLabel string `json:"new_label,omitempty"`
}

// HotFlipView aligns a HotFlip result for display. NER shows every
// candidate; other demos show the first.
func (d *Demo) HotFlipView(request map[string]any, res *backend.AttackResult) (*HotFlipView, error) {
	if res == nil || len(res.Final) == 0 {
		return nil, fmt.Errorf("%s: empty hotflip result", d.Slug)
	}

	if d.Kind == KindNER {
		orig, cands, err := tokens.HotFlipCandidates(res.Original, res.Final)
		if err != nil {
			return nil, fmt.Errorf("aligning flipped inputs: %w", err)
		}
		return &HotFlipView{Original: orig, Flipped: cands}, nil
	}

	orig, flip, err := tokens.HotFlip(res.Original, res.Final[0])
	if err != nil {
		return nil, fmt.Errorf("aligning flipped input: %w", err)
	}
	view := &HotFlipView{Original: orig, Flipped: [][]tokens.Span{flip}}
	if d.Kind == KindEntailment {
		view.Premise = inputText(request, "premise")
		if i, ok := res.LabelIndex(); ok {
			view.NewLabel, _ = EntailmentLabel(i)
		}
	}
	return view, nil
}

// Palettes are the colormaps saliency and attention views draw from.
type Palettes struct {
	Single  *saliency.Colormap
	Paired  *saliency.Colormap
	Heatmap *saliency.Colormap
}

// NewPalettes builds the three colormaps.
func NewPalettes(shades int, single, paired, heatmap string) (Palettes, error) {
	var (
		p   Palettes
		err error
	)
	if p.Single, err = saliency.NewColormap(single, shades); err != nil {
		return Palettes{}, err
	}
	if p.Paired, err = saliency.NewColormap(paired, shades); err != nil {
		return Palettes{}, err
	}
	if p.Heatmap, err = saliency.NewColormap(heatmap, shades); err != nil {
		return Palettes{}, err
	}
	return p, nil
}

// SaliencySection is one colorized token row with its own top-K slider.
type SaliencySection struct {
	Key     string                 `json:"key"`
	Label   string                 `json:"label"`
	Weights []saliency.TokenWeight `json:"weights"`
	TopK    saliency.TopKSetting   `json:"top_k"`
	Spans   []tokens.Span          `json:"spans"`
}

// SaliencyView is the rendered saliency map of one interpreter.
type SaliencyView struct {
	Interpreter Interpreter       `json:"interpreter"`
	Sections    []SaliencySection `json:"sections"`
}

// SectionKey identifies a top-K slider.
func SectionKey(interpreter, section string) string {
	return interpreter + "/" + section
}

// SaliencyView colors the tokens of each input by gradient. topK is asked
// for the slider setting of each section key.
func (d *Demo) SaliencyView(request map[string]any, pred Prediction, interpreter string,
	res backend.InterpretResult, topK func(key string) saliency.TopKSetting, pal Palettes) (*SaliencyView, error) {

	in, ok := d.Interpreter(interpreter)
	if !ok {
		return nil, fmt.Errorf("%s: interpreter %q: %w", d.Slug, interpreter, ErrUnsupported)
	}
	grads, ok := res.First()
	if !ok {
		return nil, fmt.Errorf("%s: empty interpretation", d.Slug)
	}

	type input struct {
		name, label string
		tokens      []string
		grads       []float64
		cmap        *saliency.Colormap
	}
	var inputs []input

	switch d.Kind {
	case KindSentiment:
		var toks []string
		if sp, ok := pred.(*SentimentPrediction); ok && len(sp.Tokens) > 0 {
			toks = sp.Tokens
		} else {
			toks = strings.Fields(inputText(request, "sentence"))
		}
		inputs = append(inputs, input{"input", "Saliency Map", toks, grads.GradInput1, pal.Single})
	case KindEntailment:
		ep, ok := pred.(*EntailmentPrediction)
		if !ok {
			return nil, fmt.Errorf("%s: no entailment prediction to interpret", d.Slug)
		}
		// grad_input_2 belongs to the premise, grad_input_1 to the hypothesis.
		inputs = append(inputs,
			input{"premise", "Premise Saliency Map", ep.PremiseTokens, grads.GradInput2, pal.Paired},
			input{"hypothesis", "Hypothesis Saliency Map", ep.HypothesisTokens, grads.GradInput1, pal.Paired},
		)
	default:
		return nil, fmt.Errorf("%s: saliency: %w", d.Slug, ErrUnsupported)
	}

	view := &SaliencyView{Interpreter: in}
	for _, inp := range inputs {
		weights, err := saliency.Weights(inp.tokens, inp.grads)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", interpreter, inp.name, err)
		}
		key := SectionKey(interpreter, inp.name)
		setting := topK(key)
		top := saliency.IndexSet(saliency.TopK(weights, setting.Effective()))
		view.Sections = append(view.Sections, SaliencySection{
			Key:     key,
			Label:   inp.label,
			Weights: weights,
			TopK:    setting,
			Spans:   saliency.Colorize(weights, top, inp.cmap),
		})
	}
	return view, nil
}

// HeatCell is one colored attention weight.
type HeatCell struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// HeatMap is an attention matrix with row and column labels.
type HeatMap struct {
	Title     string       `json:"title"`
	Blurb     string       `json:"blurb"`
	RowLabels []string     `json:"row_labels"`
	ColLabels []string     `json:"col_labels"`
	Cells     [][]HeatCell `json:"cells"`
}

// HeatMaps renders the attention matrices of an entailment prediction.
// Absent matrices are skipped.
func (p *EntailmentPrediction) HeatMaps(cmap *saliency.Colormap) []HeatMap {
	var out []HeatMap
	if p.H2PAttention != nil {
		out = append(out, heatMap(
			"Premise to Hypothesis Attention",
			"For every premise word, the model computes an attention over the hypothesis words. This heatmap shows that attention, which is normalized for every row in the matrix.",
			p.HypothesisTokens, p.PremiseTokens, p.H2PAttention, cmap))
	}
	if p.P2HAttention != nil {
		out = append(out, heatMap(
			"Hypothesis to Premise Attention",
			"For every hypothesis word, the model computes an attention over the premise words. This heatmap shows that attention, which is normalized for every row in the matrix.",
			p.PremiseTokens, p.HypothesisTokens, p.P2HAttention, cmap))
	}
	return out
}

func heatMap(title, blurb string, rows, cols []string, data [][]float64, cmap *saliency.Colormap) HeatMap {
	cells := make([][]HeatCell, len(data))
	for i, row := range data {
		cells[i] = make([]HeatCell, len(row))
		for j, v := range row {
			cells[i][j] = HeatCell{Value: v, Color: cmap.Color(v)}
		}
	}
	return HeatMap{Title: title, Blurb: blurb, RowLabels: rows, ColLabels: cols, Cells: cells}
}
