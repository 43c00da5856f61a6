package tokens

import (
	"errors"
	"reflect"
	"testing"
)

func TestHotFlipMarksChangedPositions(t *testing.T) {
	orig, flip, err := HotFlip([]string{"The", "cat", "sat"}, []string{"The", "dog", "sat"})
	if err != nil {
		t.Fatalf("HotFlip: %v", err)
	}

	if got := Indices(orig, MarkChanged); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("changed originals = %v, want [1]", got)
	}
	if got := Indices(flip, MarkChanged); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("changed flips = %v, want [1]", got)
	}
	if orig[1].Color != ColorRemoved || flip[1].Color != ColorFlipped {
		t.Errorf("colors = %q/%q, want %q/%q", orig[1].Color, flip[1].Color, ColorRemoved, ColorFlipped)
	}
	if orig[0].Color != ColorTransparent || flip[2].Color != ColorTransparent {
		t.Error("unchanged positions should be transparent")
	}
}

func TestHotFlipKeepsTokenText(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}},
		{"all flipped", []string{"a", "b"}, []string{"x", "y"}},
		{"case differs", []string{"Good", "film"}, []string{"good", "film"}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, flip, err := HotFlip(tt.a, tt.b)
			if err != nil {
				t.Fatalf("HotFlip: %v", err)
			}
			for i := range tt.a {
				if orig[i].Token != tt.a[i] || flip[i].Token != tt.b[i] {
					t.Errorf("position %d text = %q/%q, want %q/%q", i, orig[i].Token, flip[i].Token, tt.a[i], tt.b[i])
				}
				changed := orig[i].Mark == MarkChanged
				if changed != (tt.a[i] != tt.b[i]) {
					t.Errorf("position %d changed = %v", i, changed)
				}
			}
		})
	}
}

func TestHotFlipLengthMismatch(t *testing.T) {
	_, _, err := HotFlip([]string{"a", "b"}, []string{"a"})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestHotFlipCandidates(t *testing.T) {
	orig, cands, err := HotFlipCandidates(
		[]string{"John", "likes", "Bill"},
		[][]string{{"John", "hates", "Bill"}, {"Mary", "likes", "Bill"}},
	)
	if err != nil {
		t.Fatalf("HotFlipCandidates: %v", err)
	}
	for _, s := range orig {
		if s.Color != ColorTransparent {
			t.Errorf("original span %d color = %q, want transparent", s.Index, s.Color)
		}
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	if got := Indices(cands[0], MarkChanged); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("candidate 0 changed = %v, want [1]", got)
	}
	if cands[1][0].Color != ColorCandidate {
		t.Errorf("candidate 1 color = %q, want %q", cands[1][0].Color, ColorCandidate)
	}

	_, _, err = HotFlipCandidates([]string{"a"}, [][]string{{"a", "b"}})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestInputReductionScenario(t *testing.T) {
	orig, red, err := InputReduction([]string{"a", "b", "c", "d"}, []string{"a", "c"})
	if err != nil {
		t.Fatalf("InputReduction: %v", err)
	}

	if got := Indices(orig, MarkKept); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("kept = %v, want [0 2]", got)
	}
	if got := Indices(orig, MarkDeleted); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("deleted = %v, want [1 3]", got)
	}
	if len(red) != 4 || !red[1].Blank || !red[3].Blank {
		t.Fatalf("reduced view should carry blanks for deleted positions: %+v", red)
	}
	if red[0].Token != "a" || red[2].Token != "c" || red[0].Blank || red[2].Blank {
		t.Errorf("reduced kept spans = %+v, %+v", red[0], red[2])
	}
	if !orig[1].Strike || orig[1].Color != ColorRemoved {
		t.Errorf("deleted original should be struck through in %q: %+v", ColorRemoved, orig[1])
	}
}

func TestInputReductionPartitionsIndices(t *testing.T) {
	tests := []struct {
		name    string
		orig    []string
		reduced []string
	}{
		{"nothing removed", []string{"a", "b"}, []string{"a", "b"}},
		{"everything removed", []string{"a", "b", "c"}, nil},
		{"leading removal", []string{"x", "y", "a"}, []string{"a"}},
		{"duplicates", []string{"the", "the", "film", "the"}, []string{"the", "the"}},
		{"scattered", []string{"a", "b", "c", "d", "e", "f"}, []string{"b", "d", "f"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, _, err := InputReduction(tt.orig, tt.reduced)
			if err != nil {
				t.Fatalf("InputReduction: %v", err)
			}
			kept := Indices(orig, MarkKept)
			deleted := Indices(orig, MarkDeleted)
			if len(kept)+len(deleted) != len(tt.orig) {
				t.Fatalf("kept %v + deleted %v does not cover %d indices", kept, deleted, len(tt.orig))
			}
			if len(kept) != len(tt.reduced) {
				t.Fatalf("len(kept) = %d, want %d", len(kept), len(tt.reduced))
			}
			for n, idx := range kept {
				if tt.orig[idx] != tt.reduced[n] {
					t.Errorf("kept[%d] = %q, want %q", n, tt.orig[idx], tt.reduced[n])
				}
			}
		})
	}
}

func TestInputReductionNotASubsequence(t *testing.T) {
	tests := []struct {
		name    string
		orig    []string
		reduced []string
	}{
		{"unknown token", []string{"a", "b"}, []string{"z"}},
		{"wrong order", []string{"a", "b"}, []string{"b", "a"}},
		{"longer than original", []string{"a"}, []string{"a", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := InputReduction(tt.orig, tt.reduced)
			if !errors.Is(err, ErrNotASubsequence) {
				t.Errorf("err = %v, want ErrNotASubsequence", err)
			}
		})
	}
}

func TestGroupEntities(t *testing.T) {
	words := []string{"Michael", "Jordan", "is", "a", "professor", "at", "Berkeley", "."}
	tags := []string{"B-PER", "L-PER", "O", "O", "O", "O", "U-LOC", "O"}

	spans, err := GroupEntities(words, tags)
	if err != nil {
		t.Fatalf("GroupEntities: %v", err)
	}

	ents := Entities(spans)
	if len(ents) != 2 {
		t.Fatalf("got %d entities, want 2: %+v", len(ents), ents)
	}
	if ents[0].Text != "Michael Jordan" || ents[0].Entity != "PER" {
		t.Errorf("first entity = %+v", ents[0])
	}
	if ents[0].Style.Color != "pink" {
		t.Errorf("PER color = %q, want pink", ents[0].Style.Color)
	}
	if ents[1].Text != "Berkeley" || ents[1].Style.Tooltip != "Location" {
		t.Errorf("second entity = %+v", ents[1])
	}
	if len(spans) != 7 {
		t.Errorf("got %d spans, want 7", len(spans))
	}
}

func TestGroupEntitiesInsideRun(t *testing.T) {
	spans, err := GroupEntities(
		[]string{"Allen", "Institute", "for", "AI"},
		[]string{"B-ORG", "I-ORG", "I-ORG", "L-ORG"},
	)
	if err != nil {
		t.Fatalf("GroupEntities: %v", err)
	}
	if len(spans) != 1 || spans[0].Text != "Allen Institute for AI" {
		t.Errorf("spans = %+v", spans)
	}
}

func TestGroupEntitiesErrors(t *testing.T) {
	if _, err := GroupEntities([]string{"a"}, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
	if _, err := GroupEntities([]string{"a"}, []string{"X-PER"}); err == nil {
		t.Error("expected error for unknown tag prefix")
	}
}

func TestStyleForUnknownLabel(t *testing.T) {
	s := StyleFor("SPACESHIP")
	if s.Color != "gray" || s.Tooltip != "SPACESHIP" {
		t.Errorf("StyleFor(unknown) = %+v", s)
	}
}
