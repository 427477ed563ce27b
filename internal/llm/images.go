package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Image model names accepted by the designer stage. Infographic-capable models
// get a different style instruction than the no-text illustration models.
const (
	ImageModelSeedream    = "seedream-4.5"
	ImageModelGeminiPro   = "gemini-3-pro-image-preview"
	ImageModelGeminiFlash = "gemini-2.5-flash-image"
)

// SupportsEmbeddedText reports whether the image model can render legible text,
// which switches the designer to infographic-style prompts.
func SupportsEmbeddedText(model string) bool {
	return model == ImageModelGeminiPro
}

// ImageClient generates a single image for a prompt and returns a reference to
// it: a URL or a data URI. The reference may be ephemeral; durable storage is
// the caller's concern.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt, model string) (string, error)
	Close() error
}

// GeminiImageClient implements ImageClient using Gemini image models.
type GeminiImageClient struct {
	client *genai.Client
}

// NewGeminiImageClient creates an image client with the given API key.
func NewGeminiImageClient(ctx context.Context, apiKey string) (*GeminiImageClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiImageClient{client: client}, nil
}

// GenerateImage generates one image and returns it as a data URI.
func (c *GeminiImageClient) GenerateImage(ctx context.Context, prompt, model string) (string, error) {
	if !strings.Contains(model, "gemini") {
		return "", fmt.Errorf("model %s is not served by this client", model)
	}

	m := c.client.GenerativeModel(model)
	m.SetCandidateCount(1)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}

	ref, err := extractImageFromResponse(resp)
	if err != nil {
		return "", err
	}
	return ref, nil
}

// Close releases resources held by the client
func (c *GeminiImageClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractImageFromResponse pulls the first inline image blob from a Gemini
// response and encodes it as a data URI.
func extractImageFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	for _, part := range candidate.Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			encoded := base64.StdEncoding.EncodeToString(blob.Data)
			mime := blob.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return fmt.Sprintf("data:%s;base64,%s", mime, encoded), nil
		}
	}

	return "", fmt.Errorf("no image parts in response")
}
