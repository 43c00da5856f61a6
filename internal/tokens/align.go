package tokens

import "fmt"

// HotFlip aligns an original sequence against a flipped one of the same
// length. Positions whose text differs are marked changed in both outputs.
func HotFlip(original, flipped []string) ([]Span, []Span, error) {
	if len(original) != len(flipped) {
		return nil, nil, fmt.Errorf("%w: original has %d, flipped has %d",
			ErrLengthMismatch, len(original), len(flipped))
	}

	orig := make([]Span, len(original))
	flip := make([]Span, len(flipped))
	for i := range original {
		if original[i] != flipped[i] {
			orig[i] = Span{Token: original[i], Color: ColorRemoved, Mark: MarkChanged, Index: i}
			flip[i] = Span{Token: flipped[i], Color: ColorFlipped, Mark: MarkChanged, Index: i}
			continue
		}
		orig[i] = Span{Token: original[i], Color: ColorTransparent, Mark: MarkUnchanged, Index: i}
		flip[i] = Span{Token: flipped[i], Color: ColorTransparent, Mark: MarkUnchanged, Index: i}
	}
	return orig, flip, nil
}

// HotFlipCandidates aligns several flipped candidates against one original.
// The original stays uncolored; each candidate highlights its own flips.
func HotFlipCandidates(original []string, finals [][]string) ([]Span, [][]Span, error) {
	orig := make([]Span, len(original))
	for i, w := range original {
		orig[i] = Span{Token: w, Color: ColorTransparent, Mark: MarkUnchanged, Index: i}
	}

	candidates := make([][]Span, 0, len(finals))
	for n, final := range finals {
		if len(final) != len(original) {
			return nil, nil, fmt.Errorf("%w: candidate %d has %d tokens, original has %d",
				ErrLengthMismatch, n, len(final), len(original))
		}
		spans := make([]Span, len(final))
		for i, w := range final {
			if w != original[i] {
				spans[i] = Span{Token: w, Color: ColorCandidate, Mark: MarkChanged, Index: i}
			} else {
				spans[i] = Span{Token: w, Color: ColorTransparent, Mark: MarkUnchanged, Index: i}
			}
		}
		candidates = append(candidates, spans)
	}
	return orig, candidates, nil
}

// InputReduction aligns a reduced sequence against the original it was cut
// from. Deleted originals are struck through in the first output and leave
// a blank placeholder in the second, so both outputs have len(original)
// entries.
func InputReduction(original, reduced []string) ([]Span, []Span, error) {
	orig := make([]Span, 0, len(original))
	red := make([]Span, 0, len(original))

	deleteAt := func(i int) {
		orig = append(orig, Span{Token: original[i], Color: ColorRemoved, Strike: true, Mark: MarkDeleted, Index: i})
		red = append(red, Span{Token: original[i], Color: ColorTransparent, Blank: true, Mark: MarkDeleted, Index: i})
	}

	i := 0
	for j := 0; j < len(reduced); j++ {
		for i < len(original) && original[i] != reduced[j] {
			deleteAt(i)
			i++
		}
		if i == len(original) {
			return nil, nil, fmt.Errorf("%w: reduced token %d (%q) has no match",
				ErrNotASubsequence, j, reduced[j])
		}
		orig = append(orig, Span{Token: original[i], Color: ColorTransparent, Mark: MarkKept, Index: i})
		red = append(red, Span{Token: reduced[j], Color: ColorTransparent, Mark: MarkKept, Index: i})
		i++
	}
	for ; i < len(original); i++ {
		deleteAt(i)
	}
	return orig, red, nil
}

// Indices returns the positions carrying the given mark.
func Indices(spans []Span, mark Mark) []int {
	var out []int
	for _, s := range spans {
		if s.Mark == mark {
			out = append(out, s.Index)
		}
	}
	return out
}
