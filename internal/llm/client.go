// Package llm provides the external LLM classification client the ranking
// engine's three Query Understanding tasks and the progressive
// controller's fit evaluator depend on. The vendor itself is a
// collaborator (out of scope); this package ships an Ollama-compatible
// HTTP client, matching the teacher's classifier, plus a deterministic
// stub for tests.
package llm

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

	rankerrors "github.com/aman-health/practitioner-rank/internal/errors"
)

// classifyRetryConfig bounds the number of transient-failure retries a
// single Classify call absorbs before the error reaches the caller (and,
// for guarded clients, before the circuit breaker counts it as a
// failure). Small and fast: callers already bound the whole call with a
// context deadline.
var classifyRetryConfig = rankerrors.RetryConfig{
	MaxRetries:   2,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     1 * time.Second,
	Multiplier:   2.0,
	Jitter:       true,
}

// DefaultModel is used when LLM_MODEL is unset.
const DefaultModel = "llama3.2:1b"

// DefaultHost is the Ollama API base URL used when none is configured.
const DefaultHost = "http://localhost:11434"

// DefaultTimeout bounds a single classify call absent a caller deadline.
const DefaultTimeout = 3 * time.Second

// Client is the contract consumed by internal/queryunderstanding and
// internal/progressive: classify(prompt, schema, deadline, cancel) ->
// JSON | Error. Implementations must support independent deadlines and
// cancellation; the LLM is inherently non-deterministic, so test doubles
// must be injectable via this interface.
type Client interface {
	// Classify sends prompt to the model and returns its raw text
	// response. Callers are responsible for parsing the response against
	// whatever schema they expect.
	Classify(ctx context.Context, prompt string) (string, error)
}

// OllamaClient is a Client backed by an Ollama-compatible /api/generate
// endpoint.
type OllamaClient struct {
	httpClient *http.Client
	host       string
	model      string
}

// Option configures an OllamaClient.
type Option func(*OllamaClient)

// WithHost overrides the Ollama API base URL.
func WithHost(host string) Option {
	return func(c *OllamaClient) { c.host = host }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *OllamaClient) { c.model = model }
}

// WithHTTPTimeout overrides the underlying http.Client timeout. Per-call
// deadlines set via the context still apply on top of this.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *OllamaClient) { c.httpClient.Timeout = d }
}

// NewOllamaClient builds a client, reading LLM_MODEL from the environment
// when WithModel isn't supplied, matching the teacher's env-var
// precedence convention.
func NewOllamaClient(opts ...Option) *OllamaClient {
	c := &OllamaClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		host:       DefaultHost,
		model:      DefaultModel,
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.model = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Classify issues a single, non-streaming /api/generate call, retrying
// transient failures (dial errors, non-2xx status, malformed response)
// with bounded exponential backoff before giving up.
func (c *OllamaClient) Classify(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("llm: empty prompt")
	}

	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	return rankerrors.RetryWithResult(ctx, classifyRetryConfig, func() (string, error) {
		return c.doGenerate(ctx, body)
	})
}

// doGenerate performs one attempt at the /api/generate round trip.
func (c *OllamaClient) doGenerate(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}

	return result.Response, nil
}
