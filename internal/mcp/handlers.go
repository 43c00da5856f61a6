package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/saliency"
	"github.com/ziadkadry99/nlpdemo/internal/session"
	"github.com/ziadkadry99/nlpdemo/internal/tokens"
)

// handleListDemos describes every enabled demo.
func (s *Server) handleListDemos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all := s.registry.All()
	if len(all) == 0 {
		return mcp.NewToolResultText("No demos are enabled. Check enabled_demos in .nlpdemo.yml."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d demo(s):\n", len(all)))
	for _, d := range all {
		sb.WriteString(fmt.Sprintf("\n## %s (%s)\n%s\n", d.Title, d.Slug, d.Summary))
		sb.WriteString("Fields:\n")
		for _, f := range d.Fields {
			line := fmt.Sprintf("- %s (%s)", f.Name, f.Type)
			if f.Optional {
				line += ", optional"
			}
			if len(f.Options) > 0 {
				names := make([]string, len(f.Options))
				for i, o := range f.Options {
					names[i] = o.Name
				}
				line += ": " + strings.Join(names, " | ")
			}
			sb.WriteString(line + "\n")
		}
		if len(d.Techniques) > 0 {
			names := make([]string, len(d.Techniques))
			for i, t := range d.Techniques {
				names[i] = string(t)
			}
			sb.WriteString("Techniques: " + strings.Join(names, ", ") + "\n")
		}
		if len(d.Interpreters) > 0 {
			names := make([]string, len(d.Interpreters))
			for i, in := range d.Interpreters {
				names[i] = in.Name
			}
			sb.WriteString("Interpreters: " + strings.Join(names, ", ") + "\n")
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleAlignHotFlip marks the positions HotFlip changed.
func (s *Server) handleAlignHotFlip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	original, err := stringSlice(args, "original")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	flipped, err := stringSlice(args, "flipped")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	orig, flip, err := tokens.HotFlip(original, flipped)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("alignment failed: %v", err)), nil
	}

	changed := tokens.Indices(orig, tokens.MarkChanged)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d of %d token(s) flipped. Changed tokens are in [brackets].\n", len(changed), len(orig)))
	sb.WriteString("Original: " + formatSpans(orig) + "\n")
	sb.WriteString("Flipped:  " + formatSpans(flip) + "\n")
	return mcp.NewToolResultText(sb.String()), nil
}

// handleAlignInputReduction marks the tokens Input Reduction removed.
func (s *Server) handleAlignInputReduction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	original, err := stringSlice(args, "original")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reduced, err := stringSlice(args, "reduced")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	orig, red, err := tokens.InputReduction(original, reduced)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("alignment failed: %v", err)), nil
	}

	deleted := tokens.Indices(orig, tokens.MarkDeleted)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d of %d token(s) removed. Removed tokens are ~~struck through~~.\n", len(deleted), len(orig)))
	sb.WriteString("Original: " + formatSpans(orig) + "\n")
	sb.WriteString("Reduced:  " + formatSpans(red) + "\n")
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSaliencyTopK ranks tokens by gradient.
func (s *Server) handleSaliencyTopK(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	toks, err := stringSlice(args, "tokens")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	grads, err := floatSlice(args, "gradients")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	k := request.GetInt("k", s.defaultTopK)

	weights, err := saliency.Weights(toks, grads)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	top := saliency.TopK(weights, k)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Top %d of %d token(s), most important first:\n", len(top), len(weights)))
	for rank, i := range top {
		sb.WriteString(fmt.Sprintf("%d. %s (position %d, gradient %.3f)\n", rank+1, weights[i].Token, i, 1-weights[i].Weight))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handlePredict runs a demo's model on a throwaway page.
func (s *Server) handlePredict(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := request.RequireString("demo")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: demo"), nil
	}
	inputs, ok := request.GetArguments()["inputs"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("missing required parameter: inputs"), nil
	}

	demo, err := s.registry.Get(slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page := session.NewPage(demo, s.defaultTopK)
	defer page.Close()
	out, err := s.orchestrator.Run(ctx, page, session.Request{Action: history.ActionPredict, Inputs: inputs})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", demo.Title, out.Prediction.Summary()))
	if ep, ok := out.Prediction.(*demos.EntailmentPrediction); ok {
		e, c, n := ep.Probabilities()
		sb.WriteString(fmt.Sprintf("Entailment %s, Contradiction %s, Neutral %s\n",
			demos.FormatProb(e), demos.FormatProb(c), demos.FormatProb(n)))
	}
	if out.Permalink != nil {
		sb.WriteString("Permalink: " + out.Navigate + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSpans renders aligned tokens as plain text.
func formatSpans(spans []tokens.Span) string {
	parts := make([]string, 0, len(spans))
	for _, sp := range spans {
		switch {
		case sp.Blank:
			parts = append(parts, strings.Repeat("_", len([]rune(sp.Token))))
		case sp.Strike:
			parts = append(parts, "~~"+sp.Token+"~~")
		case sp.Mark == tokens.MarkChanged:
			parts = append(parts, "["+sp.Token+"]")
		default:
			parts = append(parts, sp.Token)
		}
	}
	return strings.Join(parts, " ")
}

func stringSlice(args map[string]any, key string) ([]string, error) {
	switch v := args[key].(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("parameter %s: item %d is not a string", key, i)
			}
			out[i] = s
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing required parameter: %s", key)
	}
	return nil, fmt.Errorf("parameter %s must be an array of strings", key)
}

func floatSlice(args map[string]any, key string) ([]float64, error) {
	switch v := args[key].(type) {
	case []float64:
		return v, nil
	case []any:
		out := make([]float64, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("parameter %s: item %d is not a number", key, i)
			}
			out[i] = f
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing required parameter: %s", key)
	}
	return nil, fmt.Errorf("parameter %s must be an array of numbers", key)
}
