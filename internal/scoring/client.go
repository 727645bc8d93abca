// Package scoring is the client for the remote FCE correction service, the
// grading oracle the practice flow sends free-text answers to. The service
// is an external collaborator; only its request/response contract lives here.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CorrectionRequest asks the service to correct one piece of learner text.
type CorrectionRequest struct {
	StudentInput string `json:"student_input"`
	Prompt       string `json:"prompt,omitempty"`
	MaxLength    int    `json:"max_length,omitempty"`
}

// Change is one token-level edit between the original and corrected text.
// From is nil for additions, To is nil for deletions.
type Change struct {
	Type          string  `json:"type"` // "replaced", "deleted", "added"
	From          *string `json:"from"`
	To            *string `json:"to"`
	ErrorType     string  `json:"error_type"`
	MicroFeedback string  `json:"micro_feedback"`
}

// CorrectionResult is the service's verdict on one submission.
type CorrectionResult struct {
	Original  string   `json:"original"`
	Corrected string   `json:"corrected"`
	Prompt    string   `json:"prompt"`
	NumErrors int      `json:"num_errors"`
	Score     int      `json:"score"`
	Changes   []Change `json:"changes"`
	HasErrors bool     `json:"has_errors"`
}

// Scorer grades learner free text. Implemented by Client; consumers should
// accept this interface so tests can substitute a fake.
type Scorer interface {
	Correct(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error)
}

// Client calls the correction service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Correct submits learner text for correction.
func (c *Client) Correct(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	if strings.TrimSpace(req.StudentInput) == "" {
		return nil, fmt.Errorf("student input is empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/correct", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call correction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("correction service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result CorrectionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// Health checks the service's readiness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call correction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("correction service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
