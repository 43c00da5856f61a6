package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/nlpdemo/internal/backend"
	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/saliency"
	"github.com/ziadkadry99/nlpdemo/internal/session"
	"github.com/ziadkadry99/nlpdemo/internal/tokens"
)

// predictResponse is the JSON response for the predict endpoint.
type predictResponse struct {
	*session.Outcome
	Summary string `json:"summary"`
}

// attackResponse is the JSON response for the attack endpoint.
type attackResponse struct {
	Attack    *backend.AttackResult `json:"attack"`
	Reduction *demos.ReductionView  `json:"reduction,omitempty"`
	HotFlip   *demos.HotFlipView    `json:"hotflip,omitempty"`
}

// interpretResponse is the JSON response for the interpret endpoint.
type interpretResponse struct {
	Permalink string              `json:"permalink,omitempty"`
	Summary   string              `json:"summary"`
	Saliency  *demos.SaliencyView `json:"saliency"`
}

// alignRequest is the body of the align endpoints.
type alignRequest struct {
	Original []string `json:"original"`
	Flipped  []string `json:"flipped,omitempty"`
	Reduced  []string `json:"reduced,omitempty"`
}

// alignResponse is the JSON response for the align endpoints.
type alignResponse struct {
	Original []tokens.Span `json:"original"`
	Flipped  []tokens.Span `json:"flipped,omitempty"`
	Reduced  []tokens.Span `json:"reduced,omitempty"`
}

func (d *Dashboard) handleListDemos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.registry.All())
}

func (d *Dashboard) handlePredict(w http.ResponseWriter, r *http.Request) {
	demo, inputs, ok := d.decodeDemoRequest(w, r)
	if !ok {
		return
	}
	page := session.NewPage(demo, d.defaultTopK)
	defer page.Close()

	out, err := d.orchestrator.Run(r.Context(), page, session.Request{Action: history.ActionPredict, Inputs: inputs})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Outcome: out, Summary: out.Prediction.Summary()})
}

func (d *Dashboard) handleAttack(w http.ResponseWriter, r *http.Request) {
	demo, inputs, ok := d.decodeDemoRequest(w, r)
	if !ok {
		return
	}
	technique := demos.Technique(chi.URLParam(r, "technique"))
	action, known := techniqueAction(technique)
	if !known || !demo.SupportsTechnique(technique) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown technique: " + string(technique)})
		return
	}
	page := session.NewPage(demo, d.defaultTopK)
	defer page.Close()

	out, err := d.orchestrator.Run(r.Context(), page, session.Request{Action: action, Inputs: inputs})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := attackResponse{Attack: out.Attack}
	switch technique {
	case demos.TechniqueInputReduction:
		resp.Reduction, err = demo.ReductionView(nil, out.Attack)
	case demos.TechniqueHotFlip:
		resp.HotFlip, err = demo.HotFlipView(out.Request, out.Attack)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleInterpret predicts first so the saliency view has the model's
// tokens, then interprets the same input.
func (d *Dashboard) handleInterpret(w http.ResponseWriter, r *http.Request) {
	demo, inputs, ok := d.decodeDemoRequest(w, r)
	if !ok {
		return
	}
	interpreter := chi.URLParam(r, "interpreter")
	if _, ok := demo.Interpreter(interpreter); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown interpreter: " + interpreter})
		return
	}
	setting := saliency.TopKSetting{K: d.defaultTopK}
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		var err error
		if setting, err = saliency.ParseTopK(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	page := session.NewPage(demo, d.defaultTopK)
	defer page.Close()

	pred, err := d.orchestrator.Run(r.Context(), page, session.Request{Action: history.ActionPredict, Inputs: inputs})
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := d.orchestrator.Run(r.Context(), page, session.Request{Action: history.ActionInterpret, Interpreter: interpreter})
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := demo.SaliencyView(pred.Request, pred.Prediction, interpreter, out.Saliency,
		func(string) saliency.TopKSetting { return setting }, d.palettes)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := interpretResponse{Summary: pred.Prediction.Summary(), Saliency: view}
	if pred.Permalink != nil {
		resp.Permalink = pred.Permalink.Slug
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleAlignHotFlip(w http.ResponseWriter, r *http.Request) {
	var req alignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	orig, flip, err := tokens.HotFlip(req.Original, req.Flipped)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alignResponse{Original: orig, Flipped: flip})
}

func handleAlignInputReduction(w http.ResponseWriter, r *http.Request) {
	var req alignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	orig, red, err := tokens.InputReduction(req.Original, req.Reduced)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alignResponse{Original: orig, Reduced: red})
}

// decodeDemoRequest resolves the demo in the path and decodes the form
// inputs from the body. An empty body yields no inputs.
func (d *Dashboard) decodeDemoRequest(w http.ResponseWriter, r *http.Request) (*demos.Demo, map[string]any, bool) {
	demo, err := d.registry.Get(chi.URLParam(r, "demo"))
	if err != nil {
		writeError(w, err)
		return nil, nil, false
	}
	var inputs map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return nil, nil, false
		}
	}
	return demo, inputs, true
}

// statusFor maps an error to the HTTP status the API answers with.
func statusFor(err error) int {
	var (
		netErr    *backend.NetworkError
		statusErr *backend.StatusError
		shapeErr  *backend.ResponseShapeError
	)
	switch {
	case errors.Is(err, demos.ErrUnknownDemo):
		return http.StatusNotFound
	case session.IsUserError(err):
		return http.StatusBadRequest
	case errors.Is(err, tokens.ErrLengthMismatch), errors.Is(err, tokens.ErrNotASubsequence):
		return http.StatusUnprocessableEntity
	case errors.As(err, &netErr), errors.As(err, &statusErr), errors.As(err, &shapeErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
