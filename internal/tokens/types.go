package tokens

import "errors"

// Highlight colors used by the alignment views.
const (
	ColorTransparent = "transparent"
	ColorRemoved     = "#FF5733"
	ColorFlipped     = "#26BD19"
	ColorCandidate   = "green"
)

// Mark classifies a position after alignment.
type Mark string

const (
	MarkUnchanged Mark = "unchanged"
	MarkChanged   Mark = "changed"
	MarkKept      Mark = "kept"
	MarkDeleted   Mark = "deleted"
)

// Span is the unit consumed by the colorized-token renderer.
type Span struct {
	Token  string `json:"token"`
	Color  string `json:"color"`
	Strike bool   `json:"strike,omitempty"`
	Blank  bool   `json:"blank,omitempty"`
	Mark   Mark   `json:"mark,omitempty"`
	Index  int    `json:"index"`
	Tip    string `json:"tip,omitempty"`
}

var (
	// ErrLengthMismatch means a HotFlip candidate does not have the
	// original's length.
	ErrLengthMismatch = errors.New("token sequences differ in length")

	// ErrNotASubsequence means a reduced input is not an order-preserving
	// subsequence of the original.
	ErrNotASubsequence = errors.New("reduced tokens are not a subsequence of the original")
)
