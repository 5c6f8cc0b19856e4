// Package genai holds the narrow interface to the external text-completion
// service and the natural-language request parser built on top of it. The
// service is a black box: callers hand it a structured prompt and a
// deadline and get free-form text back.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// Prompt is the structured payload sent to the completion service.
type Prompt struct {
	System      string  `json:"system,omitempty"`
	Text        string  `json:"text"`
	Temperature float64 `json:"temperature,omitempty"`
	JSONOutput  bool    `json:"json_output,omitempty"`
}

// CompletionClient is the single operation the workflow needs from the
// completion service. Implementations must honor ctx cancellation.
type CompletionClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// HTTPClient talks to a completion endpoint over HTTP with a JSON body.
type HTTPClient struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

// NewHTTPClient builds a CompletionClient from the completion config. The
// API key is read from the configured environment variable; an empty key is
// allowed (local endpoints).
func NewHTTPClient(cfg models.CompletionConfig) *HTTPClient {
	return &HTTPClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   os.Getenv(cfg.APIKeyEnv),
		http: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

type completionRequest struct {
	Model       string  `json:"model"`
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	JSONOutput  bool    `json:"json_output,omitempty"`
}

type completionResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Complete sends the prompt and returns the generated text. Transport,
// status, and decode failures all surface as errors for the capability
// layer to classify.
func (c *HTTPClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("completion endpoint is not configured")
	}

	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		System:      prompt.System,
		Prompt:      prompt.Text,
		Temperature: prompt.Temperature,
		JSONOutput:  prompt.JSONOutput,
	})
	if err != nil {
		return "", fmt.Errorf("marshalling completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion service returned %s: %s", resp.Status, truncate(string(body), 200))
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("completion service error: %s", out.Error)
	}
	return out.Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
