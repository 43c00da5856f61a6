package session

import (
	"fmt"
	"sync"

	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
	"github.com/ziadkadry99/nlpdemo/internal/saliency"
)

// Page is one open instance of a demo page. Its state changes only through
// the orchestrator and the top-K setter.
type Page struct {
	demo        *demos.Demo
	defaultTopK int

	mu      sync.Mutex
	state   DisplayState
	tickets map[string]uint64
	closed  bool
}

// NewPage creates an empty page for a demo.
func NewPage(demo *demos.Demo, defaultTopK int) *Page {
	return &Page{
		demo:        demo,
		defaultTopK: defaultTopK,
		state:       newDisplayState(demo.Slug),
		tickets:     make(map[string]uint64),
	}
}

// RestorePage recreates a page from a stored permalink. The prediction is
// decoded again so a corrupt record fails loudly.
func RestorePage(demo *demos.Demo, link *permalink.Permalink, defaultTopK int) (*Page, error) {
	if link.Demo != demo.Slug {
		return nil, fmt.Errorf("permalink %s belongs to %s, not %s", link.Slug, link.Demo, demo.Slug)
	}
	pred, err := demo.DecodePrediction(demo.PredictPath(link.Request), link.Response)
	if err != nil {
		return nil, fmt.Errorf("restoring permalink %s: %w", link.Slug, err)
	}

	p := NewPage(demo, defaultTopK)
	p.state.Slug = link.Slug
	p.state.Request = link.Request
	p.state.Response = link.Response
	p.state.Prediction = pred
	p.state.OutputState = OutputReceived
	return p, nil
}

// Demo returns the demo this page shows.
func (p *Page) Demo() *demos.Demo { return p.demo }

// Snapshot returns a copy of the current display state.
func (p *Page) Snapshot() DisplayState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Close discards the page. Responses arriving afterwards are dropped.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// TopK returns the slider setting for a saliency section.
func (p *Page) TopK(key string) saliency.TopKSetting {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topKLocked(key)
}

func (p *Page) topKLocked(key string) saliency.TopKSetting {
	if s, ok := p.state.TopK[key]; ok {
		return s
	}
	return saliency.TopKSetting{K: p.defaultTopK}
}

// SetTopK stores raw slider input for a saliency section. Blank input is
// kept as the unset state; garbage is rejected and leaves the old value.
func (p *Page) SetTopK(key, raw string) (saliency.TopKSetting, error) {
	setting, err := saliency.ParseTopK(raw)
	if err != nil {
		return p.TopK(key), err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return setting, ErrClosed
	}
	p.state.TopK[key] = setting
	return setting, nil
}

// begin issues the next ticket for key and marks it pending. When
// needPrediction is set the page must already show a prediction, whose
// request is returned.
func (p *Page) begin(key string, working, needPrediction bool) (uint64, map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, nil, ErrClosed
	}
	if needPrediction && !p.state.HasPrediction() {
		return 0, nil, ErrNoPrediction
	}

	p.tickets[key]++
	p.state.Pending[key] = true
	if working {
		p.state.OutputState = OutputWorking
	}
	return p.tickets[key], p.state.Request, nil
}

// finish applies a resolution if ticket is still the latest for key and
// the page is open. It reports whether the resolution was applied. When
// supersede is set, every other outstanding ticket is invalidated too.
func (p *Page) finish(key string, ticket uint64, supersede bool, apply func(*DisplayState)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.tickets[key] != ticket {
		return false
	}

	delete(p.state.Pending, key)
	if supersede {
		for other := range p.state.Pending {
			p.tickets[other]++
			delete(p.state.Pending, other)
		}
	}
	apply(&p.state)
	return true
}

// attachSlug records the permalink of an applied predict unless a newer
// predict has started since.
func (p *Page) attachSlug(key string, ticket uint64, slug string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.tickets[key] != ticket {
		return
	}
	p.state.Slug = slug
}
