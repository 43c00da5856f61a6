package dashboard

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
	"github.com/ziadkadry99/nlpdemo/internal/saliency"
	"github.com/ziadkadry99/nlpdemo/internal/session"
	"github.com/ziadkadry99/nlpdemo/internal/tokens"
)

// Section kinds select the body template of an output section.
const (
	sectionReduction = "reduction"
	sectionHotFlip   = "hotflip"
	sectionSaliency  = "saliency"
)

// Ternary plot triangle in SVG units.
const (
	ternaryWidth  = 200.0
	ternaryHeight = 173.2
)

type sentimentView struct {
	Answer  int
	Summary string
}

type nerView struct {
	Spans   []tokens.EntitySpan
	Summary string
}

type probRow struct {
	Label string
	Value string
}

type entailmentView struct {
	Sentence string
	Rows     []probRow
	// X and Y place the prediction inside the ternary triangle.
	X, Y     string
	HeatMaps []demos.HeatMap
}

// sectionView is one accordion of the output pane.
type sectionView struct {
	ID    string
	Kind  string
	Title string
	Blurb string
	Paper string

	// Button label and the message fields sent when it is pressed.
	Button      string
	Action      string
	Technique   string
	Interpreter string

	Pending bool
	Open    bool
	Error   string

	Reduction *demos.ReductionView
	HotFlip   *demos.HotFlipView
	Saliency  *demos.SaliencyView
}

// outputView is the output pane of a demo page.
type outputView struct {
	Demo          *demos.Demo
	State         session.OutputState
	Error         string
	Slug          string
	HasPrediction bool

	Sentiment  *sentimentView
	NER        *nerView
	Entailment *entailmentView
	Sections   []sectionView
}

type fieldView struct {
	demos.Field
	Value   string
	IsRadio bool
}

type exampleView struct {
	Label string
	JSON  string
}

type recentView struct {
	Slug  string
	Label string
	When  string
}

// pageView is the data behind the demo and permalink pages.
type pageView struct {
	Title    string
	Demo     *demos.Demo
	Slug     string
	Fields   []fieldView
	Examples []exampleView
	Recent   []recentView
	Output   outputView
}

func techniqueAction(t demos.Technique) (history.Action, bool) {
	switch t {
	case demos.TechniqueInputReduction:
		return history.ActionInputReduction, true
	case demos.TechniqueHotFlip:
		return history.ActionHotFlip, true
	}
	return "", false
}

func sectionID(name string) string {
	return "section-" + name
}

// topKFunc reads slider settings from a snapshot, falling back to the
// configured default.
func (d *Dashboard) topKFunc(st session.DisplayState) func(string) saliency.TopKSetting {
	return func(key string) saliency.TopKSetting {
		if s, ok := st.TopK[key]; ok {
			return s
		}
		return saliency.TopKSetting{K: d.defaultTopK}
	}
}

func (d *Dashboard) buildPage(demo *demos.Demo, st session.DisplayState, recent []permalink.Permalink) pageView {
	v := pageView{
		Title:  demo.Title,
		Demo:   demo,
		Slug:   st.Slug,
		Output: d.buildOutput(demo, st),
	}
	for _, f := range demo.Fields {
		fv := fieldView{Field: f, IsRadio: f.Type == demos.FieldRadio}
		if s, ok := st.Request[f.Name].(string); ok {
			fv.Value = s
		} else if fv.IsRadio && len(f.Options) > 0 {
			fv.Value = f.Options[0].Name
		}
		v.Fields = append(v.Fields, fv)
	}
	for _, ex := range demo.Examples {
		data, err := json.Marshal(ex)
		if err != nil {
			continue
		}
		v.Examples = append(v.Examples, exampleView{Label: exampleLabel(demo, ex), JSON: string(data)})
	}
	for _, p := range recent {
		v.Recent = append(v.Recent, recentView{
			Slug:  p.Slug,
			Label: requestLabel(demo, p.Request),
			When:  p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return v
}

func exampleLabel(demo *demos.Demo, ex demos.Example) string {
	var parts []string
	for _, f := range demo.Fields {
		if f.Type == demos.FieldText && ex[f.Name] != "" {
			parts = append(parts, ex[f.Name])
		}
	}
	return truncate(strings.Join(parts, " / "), 80)
}

func requestLabel(demo *demos.Demo, req map[string]any) string {
	var parts []string
	for _, f := range demo.Fields {
		if s, ok := req[f.Name].(string); ok && f.Type == demos.FieldText && s != "" {
			parts = append(parts, s)
		}
	}
	return truncate(strings.Join(parts, " / "), 60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func (d *Dashboard) buildOutput(demo *demos.Demo, st session.DisplayState) outputView {
	v := outputView{
		Demo:          demo,
		State:         st.OutputState,
		Error:         st.LastError,
		Slug:          st.Slug,
		HasPrediction: st.HasPrediction(),
	}
	if !v.HasPrediction {
		return v
	}

	switch p := st.Prediction.(type) {
	case *demos.SentimentPrediction:
		v.Sentiment = &sentimentView{Answer: p.Answer(), Summary: p.Summary()}
	case *demos.NERPrediction:
		v.NER = &nerView{Spans: p.Spans(), Summary: p.Summary()}
	case *demos.EntailmentPrediction:
		v.Entailment = d.entailmentView(p)
	}

	for _, t := range demo.Techniques {
		v.Sections = append(v.Sections, d.techniqueSection(demo, st, t))
	}
	for _, in := range demo.Interpreters {
		v.Sections = append(v.Sections, d.saliencySection(demo, st, in))
	}
	return v
}

func (d *Dashboard) entailmentView(p *demos.EntailmentPrediction) *entailmentView {
	e, c, n := p.Probabilities()
	x, y := p.Ternary()
	return &entailmentView{
		Sentence: p.Summary(),
		Rows: []probRow{
			{demos.LabelEntailment, demos.FormatProb(e)},
			{demos.LabelContradiction, demos.FormatProb(c)},
			{demos.LabelNeutral, demos.FormatProb(n)},
		},
		X:        fmt.Sprintf("%.1f", x*ternaryWidth),
		Y:        fmt.Sprintf("%.1f", (1-y)*ternaryHeight),
		HeatMaps: p.HeatMaps(d.palettes.Heatmap),
	}
}

func (d *Dashboard) techniqueSection(demo *demos.Demo, st session.DisplayState, t demos.Technique) sectionView {
	action, _ := techniqueAction(t)
	s := sectionView{
		ID:        sectionID(string(t)),
		Action:    "attack",
		Technique: string(t),
		Pending:   st.Pending[session.ActionKey(action, "")],
	}

	var err error
	res := st.Attacks[t]
	switch t {
	case demos.TechniqueInputReduction:
		s.Kind = sectionReduction
		s.Title = "Input Reduction"
		s.Blurb = "Input Reduction removes as many words from the input as possible without changing the model's prediction."
		s.Paper = "https://arxiv.org/abs/1804.07781"
		s.Button = "Reduce Input"
		if res != nil {
			s.Reduction, err = demo.ReductionView(st.Prediction, res)
		}
	case demos.TechniqueHotFlip:
		s.Kind = sectionHotFlip
		s.Title = "HotFlip"
		target := strings.ToLower(demo.HotFlipTarget)
		s.Blurb = fmt.Sprintf("HotFlip flips words in the %s to change the model's prediction. We iteratively flip the %s word with the highest gradient until the prediction changes.", target, target)
		s.Paper = "https://arxiv.org/abs/1712.06751"
		s.Button = "Flip Words"
		if res != nil {
			s.HotFlip, err = demo.HotFlipView(st.Request, res)
		}
	}
	if err != nil {
		log.Printf("dashboard: %s %s: %v", demo.Slug, t, err)
		s.Error = err.Error()
	}
	s.Open = s.Pending || res != nil
	return s
}

func (d *Dashboard) saliencySection(demo *demos.Demo, st session.DisplayState, in demos.Interpreter) sectionView {
	s := sectionView{
		ID:          sectionID(in.Name),
		Kind:        sectionSaliency,
		Title:       in.Title,
		Blurb:       in.Blurb,
		Paper:       in.Paper,
		Button:      "Interpret Prediction",
		Action:      "interpret",
		Interpreter: in.Name,
		Pending:     st.Pending[session.ActionKey(history.ActionInterpret, in.Name)],
	}
	res, ok := st.Saliency[in.Name]
	if ok {
		view, err := demo.SaliencyView(st.Request, st.Prediction, in.Name, res, d.topKFunc(st), d.palettes)
		if err != nil {
			log.Printf("dashboard: %s %s: %v", demo.Slug, in.Name, err)
			s.Error = err.Error()
		}
		s.Saliency = view
	}
	s.Open = s.Pending || ok
	return s
}

// findSection returns the output section with the given id.
func (v outputView) findSection(id string) (sectionView, bool) {
	for _, s := range v.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return sectionView{}, false
}

// findSaliency returns the saliency row behind a top-K slider.
func (v outputView) findSaliency(key string) (demos.SaliencySection, bool) {
	for _, s := range v.Sections {
		if s.Saliency == nil {
			continue
		}
		for _, sec := range s.Saliency.Sections {
			if sec.Key == key {
				return sec, true
			}
		}
	}
	return demos.SaliencySection{}, false
}
