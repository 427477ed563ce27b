package llm

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

// DefaultSeedreamURL is the Seedream generation endpoint; override via
// configuration when fronting it with a proxy.
const DefaultSeedreamURL = "https://api.seedream.ai/v1/generate"

// SeedreamImageClient implements ImageClient against the Seedream HTTP API.
// Seedream returns a hosted URL rather than inline bytes, so references from
// this client are always fetchable URLs.
type SeedreamImageClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewSeedreamImageClient creates a Seedream client. apiURL falls back to
// DefaultSeedreamURL when empty.
func NewSeedreamImageClient(apiURL, apiKey string) (*SeedreamImageClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if apiURL == "" {
		apiURL = DefaultSeedreamURL
	}
	return &SeedreamImageClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type seedreamRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type seedreamResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// GenerateImage generates one image and returns its hosted URL.
func (c *SeedreamImageClient) GenerateImage(ctx context.Context, prompt, model string) (string, error) {
	body, err := json.Marshal(seedreamRequest{Prompt: prompt, Model: model})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("seedream returned %s: %s", resp.Status, detail)
	}

	var parsed seedreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.URL == "" {
		if parsed.Error != "" {
			return "", fmt.Errorf("seedream error: %s", parsed.Error)
		}
		return "", fmt.Errorf("seedream returned no image URL")
	}
	return parsed.URL, nil
}

// Close is a no-op; the client holds no persistent connection.
func (c *SeedreamImageClient) Close() error { return nil }

// ImageRouter dispatches each generation to the backend serving the requested
// model: gemini models go to the Gemini client, everything else to Seedream.
// Either backend may be nil; a request routed to a missing backend fails,
// which the image pipeline degrades to an empty slot.
type ImageRouter struct {
	gemini   ImageClient
	seedream ImageClient
}

// NewImageRouter builds a router over the configured backends.
func NewImageRouter(gemini, seedream ImageClient) *ImageRouter {
	return &ImageRouter{gemini: gemini, seedream: seedream}
}

// GenerateImage routes the request by model name.
func (r *ImageRouter) GenerateImage(ctx context.Context, prompt, model string) (string, error) {
	backend := r.seedream
	if strings.Contains(model, "gemini") {
		backend = r.gemini
	}
	if backend == nil {
		return "", fmt.Errorf("no image backend configured for model %s", model)
	}
	return backend.GenerateImage(ctx, prompt, model)
}

// Close closes every configured backend.
func (r *ImageRouter) Close() error {
	var firstErr error
	for _, backend := range []ImageClient{r.gemini, r.seedream} {
		if backend == nil {
			continue
		}
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
