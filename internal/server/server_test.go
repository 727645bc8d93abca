package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fcegen/internal/exercisegen"
	"fcegen/internal/llm"
)

const cannedBatch = `Question 1:
The cat sleeps ___ the bed.

Answer 1:
["under"]

Question 2:
Are you ___ the station?

Answer 2:
["at"]

Question 3:
We walked ___ the park. It was fun.

Answer 3:
["through"]`

func newTestServer(t *testing.T, responses ...llm.MockResponse) (*httptest.Server, *llm.Gateway) {
	t.Helper()

	gw := llm.NewGateway([]llm.Candidate{
		{Name: "mock-model", Provider: llm.NewNamedMockProvider("mock-model", responses...)},
	}, llm.NewQuotaRegistry(100))

	gen := exercisegen.New(gw, exercisegen.DefaultConfig(), nil, nil)
	srv := httptest.NewServer(New(gen, gw, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, gw
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleGenerate(t *testing.T) {
	srv, gw := newTestServer(t, llm.MockResponse{Text: cannedBatch})

	resp := postJSON(t, srv.URL+"/api/exercises",
		`{"category": "preposition", "level": "B1", "age": 20, "first_language": "Spanish"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result exercisegen.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Questions) != exercisegen.BatchSize {
		t.Fatalf("expected %d questions, got %d", exercisegen.BatchSize, len(result.Questions))
	}
	if result.ModelUsed != "mock-model" {
		t.Errorf("model_used = %q", result.ModelUsed)
	}
	if gw.Quota().Used("mock-model") != 1 {
		t.Errorf("quota not recorded: %d", gw.Quota().Used("mock-model"))
	}
}

func TestHandleGenerate_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{`},
		{"unknown category", `{"category": "typo", "level": "B1", "age": 20}`},
		{"unknown level", `{"category": "article", "level": "Z9", "age": 20}`},
		{"age out of range", `{"category": "article", "level": "B1", "age": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/exercises", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHandleGenerate_EmptyOutcome(t *testing.T) {
	// A provider with no canned responses fails every attempt; the budget
	// runs out and the API returns an empty list, not an error status.
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/exercises",
		`{"category": "preposition", "level": "B1", "age": 20}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result exercisegen.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Questions) != 0 {
		t.Errorf("expected an empty question list, got %d", len(result.Questions))
	}
}

func TestHandleModels(t *testing.T) {
	srv, gw := newTestServer(t, llm.MockResponse{Text: cannedBatch})
	gw.Quota().Record("mock-model")

	resp, err := http.Get(srv.URL + "/api/models")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Models []struct {
			Name    string `json:"name"`
			Used    int    `json:"used"`
			Ceiling int    `json:"ceiling"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(body.Models))
	}
	m := body.Models[0]
	if m.Name != "mock-model" || m.Used != 1 || m.Ceiling != 100 {
		t.Errorf("unexpected model status: %+v", m)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
