package permalink

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/nlpdemo/internal/db"
)

// Store persists permalinks in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Save stores a request/response pair and returns it with a fresh slug.
func (s *Store) Save(ctx context.Context, demo string, request map[string]any, response json.RawMessage) (*Permalink, error) {
	if request == nil {
		request = map[string]any{}
	}
	reqJSON, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}
	if len(response) == 0 {
		response = json.RawMessage("{}")
	}

	p := &Permalink{
		Slug:      uuid.New().String(),
		Demo:      demo,
		Request:   request,
		Response:  response,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO permalinks (slug, demo, request, response, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.Slug, p.Demo, string(reqJSON), string(response), p.CreatedAt.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting permalink: %w", err)
	}
	return p, nil
}

// Get loads the permalink with the given slug.
func (s *Store) Get(ctx context.Context, slug string) (*Permalink, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT slug, demo, request, response, created_at
		FROM permalinks WHERE slug = ?`, slug)

	var (
		p                 Permalink
		reqJSON, respJSON string
		ts                string
	)
	if err := row.Scan(&p.Slug, &p.Demo, &reqJSON, &respJSON, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading permalink %s: %w", slug, err)
	}

	if err := json.Unmarshal([]byte(reqJSON), &p.Request); err != nil {
		return nil, fmt.Errorf("decoding stored request: %w", err)
	}
	p.Response = json.RawMessage(respJSON)
	p.CreatedAt = parseTime(ts)
	return &p, nil
}

// ListByDemo returns the most recent permalinks for a demo.
func (s *Store) ListByDemo(ctx context.Context, demo string, limit int) ([]Permalink, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, demo, request, created_at
		FROM permalinks WHERE demo = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, demo, limit)
	if err != nil {
		return nil, fmt.Errorf("listing permalinks: %w", err)
	}
	defer rows.Close()

	var out []Permalink
	for rows.Next() {
		var (
			p       Permalink
			reqJSON string
			ts      string
		)
		if err := rows.Scan(&p.Slug, &p.Demo, &reqJSON, &ts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(reqJSON), &p.Request); err != nil {
			p.Request = nil
		}
		p.CreatedAt = parseTime(ts)
		out = append(out, p)
	}
	return out, rows.Err()
}

func parseTime(ts string) time.Time {
	if t, err := time.Parse(time.DateTime, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Time{}
}
