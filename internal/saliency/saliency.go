// Package saliency turns per-token gradients into ranked, colorized tokens.
package saliency

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultTopK is how many tokens are highlighted before the user moves the
// slider.
const DefaultTopK = 3

// TokenWeight pairs a token with its transformed weight (1 - gradient).
// Lower weights mean higher salience.
type TokenWeight struct {
	Token  string  `json:"token"`
	Weight float64 `json:"weight"`
}

// Weights pairs tokens with gradients, applying the 1 - gradient transform
// the colormaps are scaled for.
func Weights(tokens []string, grads []float64) ([]TokenWeight, error) {
	if len(tokens) != len(grads) {
		return nil, fmt.Errorf("saliency: %d tokens but %d gradients", len(tokens), len(grads))
	}
	out := make([]TokenWeight, len(tokens))
	for i, tok := range tokens {
		out[i] = TokenWeight{Token: tok, Weight: 1 - grads[i]}
	}
	return out, nil
}

// TopK returns the indices of the k most salient tokens, ordered from most
// to least salient. Ties keep original index order. k is clamped to
// [0, len(weights)].
func TopK(weights []TokenWeight, k int) []int {
	if k < 0 {
		k = 0
	}
	if k > len(weights) {
		k = len(weights)
	}

	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return weights[idx[a]].Weight < weights[idx[b]].Weight
	})
	return idx[:k]
}

// IndexSet converts an index slice into a membership set.
func IndexSet(indices []int) map[int]bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		set[i] = true
	}
	return set
}

// TopKSetting is the value of the top-K slider. Unset is the transient
// state while the user has cleared the field.
type TopKSetting struct {
	K     int  `json:"k"`
	Unset bool `json:"unset,omitempty"`
}

// ParseTopK parses raw slider input. Blank input yields an unset setting.
func ParseTopK(raw string) (TopKSetting, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TopKSetting{Unset: true}, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil {
		return TopKSetting{}, fmt.Errorf("saliency: invalid top-k %q: %w", raw, err)
	}
	return TopKSetting{K: k}, nil
}

// Effective returns the k used for selection. An unset slider highlights
// nothing until a number is entered.
func (s TopKSetting) Effective() int {
	if s.Unset {
		return 0
	}
	return s.K
}

// String renders the setting back into the slider's text form.
func (s TopKSetting) String() string {
	if s.Unset {
		return ""
	}
	return strconv.Itoa(s.K)
}
