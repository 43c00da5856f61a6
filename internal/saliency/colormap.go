package saliency

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ziadkadry99/nlpdemo/internal/tokens"
)

// Palette size bounds.
const (
	MinShades     = 6
	MaxShades     = 72
	DefaultShades = 20
)

// Colormap names.
const (
	RdBu   = "RdBu"
	Copper = "copper"
	Greys  = "greys"
)

type stop struct {
	at  float64
	rgb [3]float64
}

// Palettes run left to right: for RdBu the low end is blue and the high
// end is red.
var colormapStops = map[string][]stop{
	RdBu: {
		{0, [3]float64{5, 10, 172}},
		{0.35, [3]float64{106, 137, 247}},
		{0.5, [3]float64{190, 190, 190}},
		{0.6, [3]float64{220, 170, 132}},
		{0.7, [3]float64{230, 145, 90}},
		{1, [3]float64{178, 10, 28}},
	},
	Copper: {
		{0, [3]float64{0, 0, 0}},
		{0.804, [3]float64{255, 160, 102}},
		{1, [3]float64{255, 199, 127}},
	},
	Greys: {
		{0, [3]float64{255, 255, 255}},
		{1, [3]float64{60, 60, 60}},
	},
}

// Colormap is a discrete palette of hex colors.
type Colormap struct {
	Name   string
	colors []string
}

// ClampShades bounds a requested palette size to [MinShades, MaxShades].
func ClampShades(n int) int {
	return min(max(n, MinShades), MaxShades)
}

// NewColormap builds a palette of the given size by sampling the named
// colormap's stops at evenly spaced points. Both end stops are included.
func NewColormap(name string, shades int) (*Colormap, error) {
	stops, ok := colormapStops[name]
	if !ok {
		return nil, fmt.Errorf("saliency: unknown colormap %q", name)
	}
	shades = ClampShades(shades)

	colors := make([]string, shades)
	seg := 0
	for k := range colors {
		t := float64(k) / float64(shades-1)
		for seg < len(stops)-2 && t > stops[seg+1].at {
			seg++
		}
		from, to := stops[seg], stops[seg+1]
		f := (t - from.at) / (to.at - from.at)
		colors[k] = toColor(from.rgb).BlendRgb(toColor(to.rgb), min(max(f, 0), 1)).Hex()
	}
	return &Colormap{Name: name, colors: colors}, nil
}

// Shades returns the palette size.
func (c *Colormap) Shades() int { return len(c.colors) }

// Colors returns a copy of the palette.
func (c *Colormap) Colors() []string {
	return append([]string(nil), c.colors...)
}

// Color maps a weight in [0, 1] to a palette entry. Out-of-range weights
// are clamped.
func (c *Colormap) Color(weight float64) string {
	if math.IsNaN(weight) {
		weight = 0
	}
	weight = min(max(weight, 0), 1)
	return c.colors[int(math.Round(weight*float64(len(c.colors)-1)))]
}

// Colorize renders weighted tokens. Tokens outside topK stay transparent;
// every token carries its raw gradient as a tooltip.
func Colorize(weights []TokenWeight, topK map[int]bool, cmap *Colormap) []tokens.Span {
	out := make([]tokens.Span, len(weights))
	for i, tw := range weights {
		color := tokens.ColorTransparent
		if topK[i] {
			color = cmap.Color(tw.Weight)
		}
		out[i] = tokens.Span{
			Token: tw.Token,
			Color: color,
			Index: i,
			Tip:   fmt.Sprintf("%.3f", 1-tw.Weight),
		}
	}
	return out
}

func toColor(rgb [3]float64) colorful.Color {
	return colorful.Color{R: rgb[0] / 255, G: rgb[1] / 255, B: rgb[2] / 255}
}
