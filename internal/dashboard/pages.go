package dashboard

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
	"github.com/ziadkadry99/nlpdemo/internal/session"
)

// recentLimit caps the recent-runs list on a demo page.
const recentLimit = 5

type indexView struct {
	Title string
	Demos []*demos.Demo
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "index", indexView{Title: "Demos", Demos: d.registry.All()})
}

func (d *Dashboard) handleDemo(w http.ResponseWriter, r *http.Request) {
	demo, err := d.registry.Get(chi.URLParam(r, "demo"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	page := session.NewPage(demo, d.defaultTopK)
	render(w, http.StatusOK, "demo", d.buildPage(demo, page.Snapshot(), d.recent(r, demo)))
}

func (d *Dashboard) handlePermalink(w http.ResponseWriter, r *http.Request) {
	demo, err := d.registry.Get(chi.URLParam(r, "demo"))
	if err != nil || d.permalinks == nil {
		http.NotFound(w, r)
		return
	}

	link, err := d.permalinks.Get(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, permalink.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page, err := session.RestorePage(demo, link, d.defaultTopK)
	if err != nil {
		log.Printf("dashboard: %v", err)
		http.NotFound(w, r)
		return
	}
	render(w, http.StatusOK, "demo", d.buildPage(demo, page.Snapshot(), d.recent(r, demo)))
}

func (d *Dashboard) recent(r *http.Request, demo *demos.Demo) []permalink.Permalink {
	if d.permalinks == nil {
		return nil
	}
	links, err := d.permalinks.ListByDemo(r.Context(), demo.Slug, recentLimit)
	if err != nil {
		log.Printf("dashboard: listing permalinks for %s: %v", demo.Slug, err)
		return nil
	}
	return links
}
