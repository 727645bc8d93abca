package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCorrect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/correct" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req CorrectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.StudentInput != "She go to school." {
			t.Errorf("unexpected student input: %q", req.StudentInput)
		}

		from, to := "go", "goes"
		json.NewEncoder(w).Encode(CorrectionResult{
			Original:  req.StudentInput,
			Corrected: "She goes to school.",
			NumErrors: 1,
			Score:     80,
			HasErrors: true,
			Changes: []Change{{
				Type:          "replaced",
				From:          &from,
				To:            &to,
				ErrorType:     "agreement",
				MicroFeedback: "Use the third-person form.",
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/")
	result, err := client.Correct(context.Background(), CorrectionRequest{StudentInput: "She go to school."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Corrected != "She goes to school." || result.Score != 80 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(result.Changes))
	}
	change := result.Changes[0]
	if change.From == nil || *change.From != "go" || change.To == nil || *change.To != "goes" {
		t.Errorf("unexpected change: %+v", change)
	}
}

func TestCorrect_EmptyInput(t *testing.T) {
	client := NewClient("http://unused.invalid")
	if _, err := client.Correct(context.Background(), CorrectionRequest{StudentInput: "   "}); err == nil {
		t.Fatal("expected error for empty student input")
	}
}

func TestCorrect_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model backend unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Correct(context.Background(), CorrectionRequest{StudentInput: "text"})
	if err == nil {
		t.Fatal("expected error for a 502 response")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "model backend unavailable") {
		t.Errorf("error lacks status and body: %v", err)
	}
}

func TestHealth(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if err := client.Health(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	healthy = false
	if err := client.Health(context.Background()); err == nil {
		t.Error("expected error for an unhealthy service")
	}
}
