package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/nlpdemo/internal/backend"
	"github.com/ziadkadry99/nlpdemo/internal/db"
	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
	"github.com/ziadkadry99/nlpdemo/internal/session"
)

func newRegistry(t *testing.T) *demos.Registry {
	t.Helper()
	reg, err := demos.NewRegistry([]string{"*"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"list_demos", listDemosTool, "list_demos"},
		{"align_hotflip", alignHotFlipTool, "align_hotflip"},
		{"align_input_reduction", alignInputReductionTool, "align_input_reduction"},
		{"saliency_top_k", saliencyTopKTool, "saliency_top_k"},
		{"predict", predictTool, "predict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	reg := newRegistry(t)
	srv := NewServer(reg, nil, 3)

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.registry != reg {
		t.Error("registry not set correctly")
	}
	if srv.defaultTopK != 3 {
		t.Errorf("defaultTopK = %d, want 3", srv.defaultTopK)
	}
}

func TestHandleListDemos(t *testing.T) {
	srv := NewServer(newRegistry(t), nil, 3)
	result := callTool(t, srv.handleListDemos, nil)
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := extractText(t, result)
	for _, want := range []string{"3 demo(s)", "sentiment-analysis", "named-entity-recognition", "textual-entailment", "Techniques:", "Interpreters:"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in listing, got:\n%s", want, text)
		}
	}
}

func TestHandleListDemosEmpty(t *testing.T) {
	reg, err := demos.NewRegistry([]string{"no-such-demo"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	srv := NewServer(reg, nil, 3)
	text := extractText(t, callTool(t, srv.handleListDemos, nil))
	if !strings.Contains(text, "No demos are enabled") {
		t.Errorf("unexpected text: %s", text)
	}
}

func TestHandleAlignHotFlip(t *testing.T) {
	srv := NewServer(newRegistry(t), nil, 3)

	t.Run("marks changed tokens", func(t *testing.T) {
		result := callTool(t, srv.handleAlignHotFlip, map[string]any{
			"original": []any{"a", "fine", "film"},
			"flipped":  []any{"a", "bad", "film"},
		})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(t, result)
		if !strings.Contains(text, "1 of 3 token(s) flipped") {
			t.Errorf("missing count in:\n%s", text)
		}
		if !strings.Contains(text, "Original: a [fine] film") {
			t.Errorf("missing original line in:\n%s", text)
		}
		if !strings.Contains(text, "Flipped:  a [bad] film") {
			t.Errorf("missing flipped line in:\n%s", text)
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		result := callTool(t, srv.handleAlignHotFlip, map[string]any{
			"original": []any{"a", "fine", "film"},
			"flipped":  []any{"a", "bad"},
		})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if text := extractText(t, result); !strings.Contains(text, "alignment failed") {
			t.Errorf("unexpected error text: %s", text)
		}
	})

	t.Run("missing parameter", func(t *testing.T) {
		result := callTool(t, srv.handleAlignHotFlip, map[string]any{
			"original": []any{"a"},
		})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if text := extractText(t, result); !strings.Contains(text, "missing required parameter: flipped") {
			t.Errorf("unexpected error text: %s", text)
		}
	})
}

func TestHandleAlignInputReduction(t *testing.T) {
	srv := NewServer(newRegistry(t), nil, 3)

	t.Run("strikes removed tokens", func(t *testing.T) {
		result := callTool(t, srv.handleAlignInputReduction, map[string]any{
			"original": []string{"a", "fine", "film"},
			"reduced":  []string{"fine"},
		})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(t, result)
		if !strings.Contains(text, "2 of 3 token(s) removed") {
			t.Errorf("missing count in:\n%s", text)
		}
		if !strings.Contains(text, "Original: ~~a~~ fine ~~film~~") {
			t.Errorf("missing original line in:\n%s", text)
		}
		if !strings.Contains(text, "Reduced:  _ fine ____") {
			t.Errorf("missing reduced line in:\n%s", text)
		}
	})

	t.Run("not a subsequence", func(t *testing.T) {
		result := callTool(t, srv.handleAlignInputReduction, map[string]any{
			"original": []string{"a", "fine", "film"},
			"reduced":  []string{"film", "fine"},
		})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
	})

	t.Run("non-string item", func(t *testing.T) {
		result := callTool(t, srv.handleAlignInputReduction, map[string]any{
			"original": []any{"a", 2.0},
			"reduced":  []any{"a"},
		})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if text := extractText(t, result); !strings.Contains(text, "item 1 is not a string") {
			t.Errorf("unexpected error text: %s", text)
		}
	})
}

func TestHandleSaliencyTopK(t *testing.T) {
	srv := NewServer(newRegistry(t), nil, 2)

	t.Run("default k ranks by gradient", func(t *testing.T) {
		result := callTool(t, srv.handleSaliencyTopK, map[string]any{
			"tokens":    []any{"a", "fine", "film"},
			"gradients": []any{0.1, 0.6, 0.3},
		})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(t, result)
		if !strings.Contains(text, "Top 2 of 3 token(s)") {
			t.Errorf("missing header in:\n%s", text)
		}
		first := strings.Index(text, "1. fine (position 1")
		second := strings.Index(text, "2. film (position 2")
		if first < 0 || second < 0 || first > second {
			t.Errorf("tokens not ranked by gradient:\n%s", text)
		}
		if strings.Contains(text, "3. a") {
			t.Errorf("expected only two tokens:\n%s", text)
		}
	})

	t.Run("explicit k clamps to length", func(t *testing.T) {
		text := extractText(t, callTool(t, srv.handleSaliencyTopK, map[string]any{
			"tokens":    []any{"a", "fine", "film"},
			"gradients": []any{0.1, 0.6, 0.3},
			"k":         10.0,
		}))
		if !strings.Contains(text, "Top 3 of 3 token(s)") {
			t.Errorf("expected k clamped to 3:\n%s", text)
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		result := callTool(t, srv.handleSaliencyTopK, map[string]any{
			"tokens":    []any{"a", "fine"},
			"gradients": []any{0.1},
		})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
	})

	t.Run("missing gradients", func(t *testing.T) {
		result := callTool(t, srv.handleSaliencyTopK, map[string]any{
			"tokens": []any{"a"},
		})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
	})
}

func TestHandlePredict(t *testing.T) {
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict/sentiment-analysis" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"class_probabilities":[0.05,0.05,0.1,0.6,0.2],"tokens":["a","fine","film"]}`))
	}))
	defer model.Close()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	defer database.Close()

	orch := session.NewOrchestrator(backend.NewClient(model.URL, 5*time.Second),
		permalink.NewStore(database), history.NewStore(database))
	srv := NewServer(newRegistry(t), orch, 3)

	t.Run("sentiment", func(t *testing.T) {
		result := callTool(t, srv.handlePredict, map[string]any{
			"demo":   "sentiment-analysis",
			"inputs": map[string]any{"sentence": "a fine film"},
		})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(t, result)
		if !strings.Contains(text, "Sentiment Analysis: 4 on a scale of 1-5.") {
			t.Errorf("missing summary in:\n%s", text)
		}
		if !strings.Contains(text, "Permalink: /sentiment-analysis/") {
			t.Errorf("missing permalink in:\n%s", text)
		}
	})

	t.Run("unknown demo", func(t *testing.T) {
		result := callTool(t, srv.handlePredict, map[string]any{
			"demo":   "nope",
			"inputs": map[string]any{},
		})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
	})

	t.Run("missing inputs", func(t *testing.T) {
		result := callTool(t, srv.handlePredict, map[string]any{"demo": "sentiment-analysis"})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		result := callTool(t, srv.handlePredict, map[string]any{
			"demo":   "textual-entailment",
			"inputs": map[string]any{"premise": "p", "hypothesis": "h"},
		})
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if text := extractText(t, result); !strings.Contains(text, "prediction failed") {
			t.Errorf("unexpected error text: %s", text)
		}
	})
}
