// Package dashboard serves the demo pages, their websocket channel and the
// JSON API behind them.
package dashboard

import (
	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
	"github.com/ziadkadry99/nlpdemo/internal/session"
)

// Dashboard renders demo pages and runs page actions through the
// orchestrator.
type Dashboard struct {
	registry     *demos.Registry
	orchestrator *session.Orchestrator
	permalinks   *permalink.Store
	palettes     demos.Palettes
	defaultTopK  int
}

// New creates a new Dashboard. permalinks may be nil, in which case
// permalink pages answer 404.
func New(registry *demos.Registry, orchestrator *session.Orchestrator, permalinks *permalink.Store, palettes demos.Palettes, defaultTopK int) *Dashboard {
	return &Dashboard{
		registry:     registry,
		orchestrator: orchestrator,
		permalinks:   permalinks,
		palettes:     palettes,
		defaultTopK:  defaultTopK,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router. The
// catch-all demo routes go last so static paths win.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.handleIndex)
	r.Get("/static/style.css", serveAsset("text/css; charset=utf-8", cssContent))
	r.Get("/static/app.js", serveAsset("application/javascript; charset=utf-8", jsContent))

	r.Route("/api/demos", func(r chi.Router) {
		r.Get("/", d.handleListDemos)
		r.Post("/{demo}/predict", d.handlePredict)
		r.Post("/{demo}/attack/{technique}", d.handleAttack)
		r.Post("/{demo}/interpret/{interpreter}", d.handleInterpret)
	})
	r.Post("/api/align/hotflip", handleAlignHotFlip)
	r.Post("/api/align/input-reduction", handleAlignInputReduction)

	r.Get("/{demo}", d.handleDemo)
	r.Get("/{demo}/{slug}", d.handlePermalink)
}

// RegisterStreams mounts the websocket page channel. The router it is given
// must not time requests out.
func (d *Dashboard) RegisterStreams(r chi.Router) {
	r.Get("/ws/demo", d.handleWebSocket)
}
