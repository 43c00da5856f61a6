package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", 5*time.Second)
}

func TestEndpointPaths(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{PredictPath("sentiment-analysis"), "predict/sentiment-analysis"},
		{AttackPath("textual-entailment"), "attack/textual-entailment"},
		{HotFlipPath("named-entity-recognition"), "hotflip/named-entity-recognition"},
		{InterpretPath("sentiment-analysis", "simple_gradient"), "interpret/sentiment-analysis/simple_gradient"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("path = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestPredictPostsJSON(t *testing.T) {
	var gotPath, gotCT, gotAccept string
	var gotBody map[string]any
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"class_probabilities":[0.1,0.9]}`))
	})

	raw, err := c.Predict(context.Background(), PredictPath("sentiment-analysis"), map[string]any{"sentence": "great"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if gotPath != "/predict/sentiment-analysis" {
		t.Errorf("path = %q", gotPath)
	}
	if gotCT != "application/json" || gotAccept != "application/json" {
		t.Errorf("headers = %q / %q", gotCT, gotAccept)
	}
	if gotBody["sentence"] != "great" {
		t.Errorf("body = %v", gotBody)
	}
	if !strings.Contains(string(raw), "class_probabilities") {
		t.Errorf("raw = %s", raw)
	}
}

func TestPredictRejectsNonObject(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	})
	_, err := c.Predict(context.Background(), "predict/x", nil)
	var shapeErr *ResponseShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("err = %v, want ResponseShapeError", err)
	}
}

func TestAttackDecodesAndValidates(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"original":["a","b"],"final":[["a"]]}`, false},
		{"missing final", `{"original":["a","b"]}`, true},
		{"missing original", `{"final":[["a"]]}`, true},
		{"not json", `<html>oops</html>`, true},
		{"wrong types", `{"original":"a b","final":[["a"]]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			res, err := c.Attack(context.Background(), AttackPath("sentiment-analysis"), nil)
			if tt.wantErr {
				var shapeErr *ResponseShapeError
				if !errors.As(err, &shapeErr) {
					t.Fatalf("err = %v, want ResponseShapeError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Attack: %v", err)
			}
			if len(res.Original) != 2 || len(res.Final) != 1 {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestAttackLabelIndex(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{`1`, 1, true},
		{`"2"`, 2, true},
		{`"x"`, 0, false},
		{``, 0, false},
	}
	for _, tt := range tests {
		a := AttackResult{Label: json.RawMessage(tt.label)}
		got, ok := a.LabelIndex()
		if got != tt.want || ok != tt.ok {
			t.Errorf("LabelIndex(%s) = %d, %v; want %d, %v", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInterpret(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"instance_2":{"grad_input_1":[0.5]},"instance_1":{"grad_input_1":[0.1,0.9],"grad_input_2":[0.3]}}`))
	})
	res, err := c.Interpret(context.Background(), InterpretPath("textual-entailment", "simple_gradient"), nil)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if got := res.Instances(); len(got) != 2 || got[0] != "instance_1" {
		t.Errorf("Instances = %v", got)
	}
	first, ok := res.First()
	if !ok || len(first.GradInput1) != 2 || len(first.GradInput2) != 1 {
		t.Errorf("First = %+v, %v", first, ok)
	}
}

func TestInterpretRejectsBadShape(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `{"instance_1":{}}`, `{"grads":{"grad_input_1":[1]}}`} {
		c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		_, err := c.Interpret(context.Background(), "interpret/x/y", nil)
		var shapeErr *ResponseShapeError
		if !errors.As(err, &shapeErr) {
			t.Errorf("body %s: err = %v, want ResponseShapeError", body, err)
		}
	}
}

func TestStatusError(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	})
	_, err := c.Predict(context.Background(), "predict/x", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d", statusErr.Code)
	}
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewClient(url, time.Second)
	_, err := c.Predict(context.Background(), "predict/x", nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want NetworkError", err)
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, time.Second, WithRateLimit(1))
	if _, err := c.Predict(context.Background(), "predict/x", nil); err != nil {
		t.Fatalf("first Predict: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err := c.Predict(ctx, "predict/x", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if calls.Load() != 1 {
		t.Errorf("backend saw %d calls, want 1", calls.Load())
	}
}
