package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// Connecting to the backend is bounded; the streaming body itself is not,
	// its length is governed by the num_predict cap.
	ollamaConnectTimeout  = 10 * time.Second
	ollamaGenerateTimeout = 5 * time.Minute
)

type GenerationOptions struct {
	Temperature float64
	MaxTokens   int
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// BackendError carries a non-success response from the generation backend.
// It is a degradation, not a request failure: callers surface Error() as the
// summary text and keep the sentiment payload.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("Error: %d - %s", e.StatusCode, e.Body)
}

type OllamaClient struct {
	httpClient *http.Client
	// streamClient has no overall deadline: streaming duration is governed by
	// the backend's num_predict cap, only the connection wait is bounded.
	streamClient *http.Client
	baseURL      string
	model        string
}

func NewOllamaClient(baseURL, model string) *OllamaClient {
	baseURL = strings.TrimSuffix(baseURL, "/")
	slog.Info("[OllamaClient] Initializing client",
		slog.String("base_url", baseURL),
		slog.String("model", model))

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = ollamaConnectTimeout

	return &OllamaClient{
		httpClient: &http.Client{
			Timeout:   ollamaGenerateTimeout,
			Transport: transport,
		},
		streamClient: &http.Client{
			Transport: transport,
		},
		baseURL: baseURL,
		model:   model,
	}
}

func (o *OllamaClient) newGenerateRequest(ctx context.Context, prompt string, stream bool, opts GenerationOptions) (*http.Request, error) {
	payload := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: stream,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("[OllamaClient] failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("[OllamaClient] failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	return req, nil
}

// Generate runs one blocking generation and returns the full response text.
// A non-success status comes back as *BackendError.
func (o *OllamaClient) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	req, err := o.newGenerateRequest(ctx, prompt, false, opts)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := o.httpClient.Do(req)
	if err != nil {
		slog.Error("[OllamaClient] Generation request failed",
			slog.String("error", err.Error()))
		return "", fmt.Errorf("[OllamaClient] generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("[OllamaClient] failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("[OllamaClient] Backend returned non-success status",
			slog.Int("status_code", resp.StatusCode))
		return "", &BackendError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var generated ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &generated); err != nil {
		return "", fmt.Errorf("[OllamaClient] failed to decode response: %w", err)
	}

	slog.Info("[OllamaClient] Generation complete",
		slog.Duration("elapsed", time.Since(start)))
	return generated.Response, nil
}

// GenerateStream runs one streaming generation and returns the raw NDJSON
// body. The caller owns the body; closing it releases the backend connection,
// which is how client disconnects propagate upstream. A non-success status is
// drained and returned as *BackendError.
func (o *OllamaClient) GenerateStream(ctx context.Context, prompt string, opts GenerationOptions) (io.ReadCloser, error) {
	req, err := o.newGenerateRequest(ctx, prompt, true, opts)
	if err != nil {
		return nil, err
	}

	resp, err := o.streamClient.Do(req)
	if err != nil {
		slog.Error("[OllamaClient] Streaming request failed",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("[OllamaClient] streaming request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		slog.Warn("[OllamaClient] Backend refused stream",
			slog.Int("status_code", resp.StatusCode))
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return resp.Body, nil
}

// Ping probes the backend for the health monitor.
func (o *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("[OllamaClient] backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
