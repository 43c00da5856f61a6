package saliency

import (
	"math"
	"reflect"
	"testing"

	"github.com/ziadkadry99/nlpdemo/internal/tokens"
)

func TestWeightsTransform(t *testing.T) {
	got, err := Weights([]string{"good", "film"}, []float64{0.8, 0.25})
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	if math.Abs(got[0].Weight-0.2) > 1e-9 || got[1].Weight != 0.75 {
		t.Errorf("weights = %+v", got)
	}
	if _, err := Weights([]string{"a"}, nil); err == nil {
		t.Error("expected error for gradient length mismatch")
	}
}

func TestTopKSelectsLowestWeight(t *testing.T) {
	weights := []TokenWeight{{"a", 0.9}, {"b", 0.1}, {"c", 0.5}}
	if got := TopK(weights, 1); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("TopK(1) = %v, want [1]", got)
	}
	if got := TopK(weights, 2); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("TopK(2) = %v, want [1 2]", got)
	}
}

func TestTopKClampsAndTies(t *testing.T) {
	weights := []TokenWeight{{"a", 0.5}, {"b", 0.2}, {"c", 0.5}, {"d", 0.2}}

	tests := []struct {
		k    int
		want []int
	}{
		{-1, []int{}},
		{0, []int{}},
		{2, []int{1, 3}},
		{3, []int{1, 3, 0}},
		{10, []int{1, 3, 0, 2}},
	}
	for _, tt := range tests {
		got := TopK(weights, tt.k)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TopK(%d) = %v, want %v", tt.k, got, tt.want)
		}
	}
}

func TestTopKNoSelectedHeavierThanUnselected(t *testing.T) {
	weights := []TokenWeight{{"a", 0.3}, {"b", 0.7}, {"c", 0.1}, {"d", 0.9}, {"e", 0.3}}
	for k := 0; k <= len(weights); k++ {
		sel := IndexSet(TopK(weights, k))
		if len(sel) != k {
			t.Fatalf("k=%d selected %d", k, len(sel))
		}
		for i := range weights {
			if !sel[i] {
				continue
			}
			for j := range weights {
				if !sel[j] && weights[i].Weight > weights[j].Weight {
					t.Errorf("k=%d: selected %d (%.1f) heavier than unselected %d (%.1f)",
						k, i, weights[i].Weight, j, weights[j].Weight)
				}
			}
		}
	}
}

func TestParseTopK(t *testing.T) {
	tests := []struct {
		raw       string
		want      TopKSetting
		effective int
		wantErr   bool
	}{
		{"3", TopKSetting{K: 3}, 3, false},
		{" 7 ", TopKSetting{K: 7}, 7, false},
		{"", TopKSetting{Unset: true}, 0, false},
		{"   ", TopKSetting{Unset: true}, 0, false},
		{"three", TopKSetting{}, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTopK(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTopK(%q) err = %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTopK(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
		if got.Effective() != tt.effective {
			t.Errorf("ParseTopK(%q).Effective() = %d, want %d", tt.raw, got.Effective(), tt.effective)
		}
	}
}

func TestNewColormapShades(t *testing.T) {
	tests := []struct {
		requested, want int
	}{
		{1, MinShades},
		{6, 6},
		{20, 20},
		{72, 72},
		{500, MaxShades},
	}
	for _, name := range []string{RdBu, Copper, Greys} {
		for _, tt := range tests {
			cm, err := NewColormap(name, tt.requested)
			if err != nil {
				t.Fatalf("NewColormap(%s, %d): %v", name, tt.requested, err)
			}
			if cm.Shades() != tt.want {
				t.Errorf("%s shades(%d) = %d, want %d", name, tt.requested, cm.Shades(), tt.want)
			}
		}
	}
	if _, err := NewColormap("jet", 20); err == nil {
		t.Error("expected error for unknown colormap")
	}
}

func TestColormapEndpoints(t *testing.T) {
	cm, err := NewColormap(RdBu, DefaultShades)
	if err != nil {
		t.Fatalf("NewColormap: %v", err)
	}
	colors := cm.Colors()
	if colors[0] != "#050aac" {
		t.Errorf("first RdBu shade = %q, want #050aac", colors[0])
	}
	if cm.Color(0) != colors[0] {
		t.Errorf("Color(0) = %q, want %q", cm.Color(0), colors[0])
	}
	if cm.Color(1) != colors[len(colors)-1] {
		t.Errorf("Color(1) = %q, want last shade", cm.Color(1))
	}
	if cm.Color(-3) != colors[0] || cm.Color(4) != colors[len(colors)-1] {
		t.Error("out-of-range weights should clamp to palette ends")
	}
	if cm.Color(0.5) != colors[int(math.Round(0.5*float64(len(colors)-1)))] {
		t.Errorf("Color(0.5) = %q", cm.Color(0.5))
	}
	if cm.Color(0.42) != cm.Color(0.42) {
		t.Error("Color must be deterministic")
	}
}

func TestColormapIncludesBothStops(t *testing.T) {
	tests := []struct {
		name        string
		first, last string
	}{
		{RdBu, "#050aac", "#b20a1c"},
		{Copper, "#000000", "#ffc77f"},
		{Greys, "#ffffff", "#3c3c3c"},
	}
	for _, tt := range tests {
		for _, shades := range []int{MinShades, DefaultShades, MaxShades} {
			cm, err := NewColormap(tt.name, shades)
			if err != nil {
				t.Fatalf("NewColormap(%s, %d): %v", tt.name, shades, err)
			}
			colors := cm.Colors()
			if colors[0] != tt.first {
				t.Errorf("%s/%d first shade = %q, want %q", tt.name, shades, colors[0], tt.first)
			}
			if colors[len(colors)-1] != tt.last {
				t.Errorf("%s/%d last shade = %q, want %q", tt.name, shades, colors[len(colors)-1], tt.last)
			}
			if cm.Color(1) != tt.last {
				t.Errorf("%s/%d Color(1) = %q, want %q", tt.name, shades, cm.Color(1), tt.last)
			}
		}
	}
}

func TestColorize(t *testing.T) {
	cm, err := NewColormap(Copper, 10)
	if err != nil {
		t.Fatalf("NewColormap: %v", err)
	}
	weights := []TokenWeight{{"a", 0.9}, {"b", 0.1}, {"c", 0.5}}
	spans := Colorize(weights, IndexSet(TopK(weights, 1)), cm)

	if spans[0].Color != tokens.ColorTransparent || spans[2].Color != tokens.ColorTransparent {
		t.Errorf("tokens outside top-k should be transparent: %+v", spans)
	}
	if spans[1].Color != cm.Color(0.1) {
		t.Errorf("top token color = %q, want %q", spans[1].Color, cm.Color(0.1))
	}
	if spans[1].Tip != "0.900" {
		t.Errorf("tip = %q, want 0.900", spans[1].Tip)
	}
	if spans[2].Token != "c" || spans[2].Index != 2 {
		t.Errorf("span = %+v", spans[2])
	}
}
