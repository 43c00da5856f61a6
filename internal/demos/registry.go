package demos

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Registry holds the demos enabled for this instance.
type Registry struct {
	demos  []*Demo
	bySlug map[string]*Demo
}

// NewRegistry returns the built-in demos whose slug matches any of the
// given glob patterns.
func NewRegistry(patterns []string) (*Registry, error) {
	return Filter(Builtin(), patterns)
}

// Filter builds a registry from the demos matching any pattern.
func Filter(all []*Demo, patterns []string) (*Registry, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid demo pattern %q", p)
		}
	}

	r := &Registry{bySlug: make(map[string]*Demo)}
	for _, d := range all {
		if !matchesAny(d.Slug, patterns) {
			continue
		}
		if _, dup := r.bySlug[d.Slug]; dup {
			return nil, fmt.Errorf("duplicate demo slug %q", d.Slug)
		}
		r.demos = append(r.demos, d)
		r.bySlug[d.Slug] = d
	}
	return r, nil
}

func matchesAny(slug string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, slug); err == nil && ok {
			return true
		}
	}
	return false
}

// All returns the enabled demos in display order.
func (r *Registry) All() []*Demo { return r.demos }

// Get looks up an enabled demo.
func (r *Registry) Get(slug string) (*Demo, error) {
	d, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDemo, slug)
	}
	return d, nil
}
