// Package permalink stores prediction request/response pairs under a slug
// so a result page can be reopened later.
package permalink

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when no permalink exists for a slug.
var ErrNotFound = errors.New("permalink not found")

// Permalink is one stored prediction.
type Permalink struct {
	Slug      string          `json:"slug"`
	Demo      string          `json:"demo"`
	Request   map[string]any  `json:"request"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"created_at"`
}
