package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
	"github.com/ziadkadry99/nlpdemo/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// pageMessage is the incoming WebSocket message format.
type pageMessage struct {
	Type        string         `json:"type"` // "predict", "attack", "interpret" or "top_k"
	Inputs      map[string]any `json:"inputs,omitempty"`
	Technique   string         `json:"technique,omitempty"`
	Interpreter string         `json:"interpreter,omitempty"`
	Section     string         `json:"section,omitempty"`
	Value       string         `json:"value,omitempty"`
}

// pageEvent is the outgoing WebSocket message format.
type pageEvent struct {
	Type        string              `json:"type"` // "state", "navigate", "fragment" or "error"
	OutputState session.OutputState `json:"output_state,omitempty"`
	Location    string              `json:"location,omitempty"`
	Target      string              `json:"target,omitempty"`
	HTML        string              `json:"html,omitempty"`
	Content     string              `json:"content,omitempty"`
}

// pageConn serialises writes to one page's socket. Actions finish on their
// own goroutines.
type pageConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *pageConn) send(events ...pageEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLocked(events...)
}

func (c *pageConn) writeLocked(events ...pageEvent) {
	for _, ev := range events {
		if err := c.conn.WriteJSON(ev); err != nil {
			log.Printf("dashboard: websocket write: %v", err)
			return
		}
	}
}

func (c *pageConn) sendError(message string) {
	c.send(pageEvent{Type: "error", Content: message})
}

// openPage creates the page instance for a connection, restoring it from
// a permalink when slug is set.
func (d *Dashboard) openPage(ctx context.Context, slug, link string) (*session.Page, error) {
	demo, err := d.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	if link == "" {
		return session.NewPage(demo, d.defaultTopK), nil
	}
	if d.permalinks == nil {
		return nil, permalink.ErrNotFound
	}
	p, err := d.permalinks.Get(ctx, link)
	if err != nil {
		return nil, err
	}
	return session.RestorePage(demo, p, d.defaultTopK)
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := d.openPage(r.Context(), q.Get("demo"), q.Get("slug"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, demos.ErrUnknownDemo) || errors.Is(err, permalink.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// The request deadline does not apply to a long-lived socket.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	pc := &pageConn{conn: conn}
	var wg sync.WaitGroup
	defer func() {
		page.Close()
		cancel()
		wg.Wait()
	}()

	run := func(req session.Request) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runAction(ctx, pc, page, req)
		}()
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("dashboard: websocket read: %v", err)
			}
			return
		}

		var m pageMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			pc.sendError("invalid message format")
			continue
		}

		switch m.Type {
		case "predict":
			pc.send(pageEvent{Type: "state", OutputState: session.OutputWorking})
			run(session.Request{Action: history.ActionPredict, Inputs: m.Inputs})
		case "attack":
			action, ok := techniqueAction(demos.Technique(m.Technique))
			if !ok {
				pc.sendError("unknown technique: " + m.Technique)
				continue
			}
			run(session.Request{Action: action})
		case "interpret":
			run(session.Request{Action: history.ActionInterpret, Interpreter: m.Interpreter})
		case "top_k":
			d.handleTopK(pc, page, m.Section, m.Value)
		default:
			pc.sendError("unknown message type: " + m.Type)
		}
	}
}

// runAction runs one action and pushes its result to the page. Dropped
// responses push nothing.
func (d *Dashboard) runAction(ctx context.Context, pc *pageConn, page *session.Page, req session.Request) {
	out, err := d.orchestrator.Run(ctx, page, req)
	if errors.Is(err, session.ErrClosed) || page.Closed() {
		return
	}
	if err != nil {
		pc.sendError(err.Error())
	}
	if err == nil && !out.Applied {
		return
	}

	if req.Action == history.ActionPredict && err == nil {
		pc.send(pageEvent{Type: "navigate", Location: out.Navigate})
		return
	}

	target := ""
	switch req.Action {
	case history.ActionInputReduction:
		target = sectionID(string(demos.TechniqueInputReduction))
	case history.ActionHotFlip:
		target = sectionID(string(demos.TechniqueHotFlip))
	case history.ActionInterpret:
		target = sectionID(req.Interpreter)
	}
	d.pushOutput(pc, page, target)
}

// pushOutput sends the output state, the status line and optionally one
// section, all from a single snapshot.
func (d *Dashboard) pushOutput(pc *pageConn, page *session.Page, section string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	st := page.Snapshot()
	view := d.buildOutput(page.Demo(), st)
	events := []pageEvent{{Type: "state", OutputState: st.OutputState}}

	html, err := renderFragment("status", view)
	if err != nil {
		log.Printf("dashboard: rendering status: %v", err)
		return
	}
	events = append(events, pageEvent{Type: "fragment", Target: "status", HTML: html})

	if s, ok := view.findSection(section); ok {
		html, err := renderFragment("section", s)
		if err != nil {
			log.Printf("dashboard: rendering %s: %v", section, err)
			return
		}
		events = append(events, pageEvent{Type: "fragment", Target: section, HTML: html})
	}
	pc.writeLocked(events...)
}

// handleTopK stores a slider value and re-renders the colored tokens it
// controls.
func (d *Dashboard) handleTopK(pc *pageConn, page *session.Page, key, value string) {
	if _, err := page.SetTopK(key, value); err != nil {
		if !errors.Is(err, session.ErrClosed) {
			pc.sendError("top-k must be a whole number")
		}
		return
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	interpreter, _, _ := strings.Cut(key, "/")
	st := page.Snapshot()
	if _, ok := st.Saliency[interpreter]; !ok {
		return
	}
	view := d.buildOutput(page.Demo(), st)
	sec, ok := view.findSaliency(key)
	if !ok {
		return
	}
	html, err := renderFragment("tokens", sec)
	if err != nil {
		log.Printf("dashboard: rendering %s: %v", key, err)
		return
	}
	pc.writeLocked(pageEvent{Type: "fragment", Target: "tokens-" + key, HTML: html})
}
