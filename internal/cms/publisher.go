// Package cms publishes approved articles to the Postgres-backed CMS through
// its REST API. Publishing is best-effort and decoupled from approval: a
// failure here never reverts an article's status. The publish call is not
// idempotent; a duplicate call may create a duplicate published post.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/recipepocket/content-agent/internal/article"
)

// PublishError represents a failed publish attempt.
type PublishError struct {
	Message string
	Cause   error
}

func (e *PublishError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("publish failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("publish failed: %s", e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

// Publisher posts articles to the CMS REST endpoint.
type Publisher struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
}

// NewPublisher builds a publisher for the CMS at baseURL, writing to table.
func NewPublisher(baseURL, apiKey, table string) *Publisher {
	if table == "" {
		table = "blog_posts"
	}
	return &Publisher{
		baseURL:    baseURL,
		apiKey:     apiKey,
		table:      table,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// postRecord is the CMS row created per published article.
type postRecord struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Slug         string `json:"slug"`
	Published    bool   `json:"published"`
}

// Publish assembles the final markdown and creates the CMS record, returning
// the published post id.
func (p *Publisher) Publish(ctx context.Context, draft *article.Draft) (string, error) {
	record := postRecord{
		Title:     draft.Title(),
		Content:   AssembleMarkdown(draft.Content, draft.ImageReferences),
		Slug:      draft.ID,
		Published: true,
	}
	if len(draft.ImageReferences) > 0 {
		record.ThumbnailURL = draft.ImageReferences[0]
	}

	body, err := json.Marshal(record)
	if err != nil {
		return "", &PublishError{Message: "failed to encode post", Cause: err}
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", p.baseURL, p.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &PublishError{Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Prefer", "return=representation")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &PublishError{Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &PublishError{Message: fmt.Sprintf("CMS returned %s: %s", resp.Status, detail)}
	}

	// PostgREST returns the created rows as an array.
	var created []struct {
		ID json.Number `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", &PublishError{Message: "failed to decode response", Cause: err}
	}
	if len(created) == 0 {
		return "", &PublishError{Message: "CMS returned no created row"}
	}
	return created[0].ID.String(), nil
}

// AssembleMarkdown interleaves section images between the three body parts:
// part1, section1 image, part2, section2 image, part3, section3 image. The
// thumbnail (slot 0) is not inlined; it becomes the post's thumbnail field.
// Missing parts and empty image slots are skipped.
func AssembleMarkdown(content article.Content, refs []string) string {
	imageAt := func(slot int) string {
		if slot < len(refs) && refs[slot] != "" {
			return fmt.Sprintf("![Section Image %d](%s)\n\n", slot, refs[slot])
		}
		return ""
	}

	var buf bytes.Buffer
	parts := []string{content.BodyPart1, content.BodyPart2, content.BodyPart3}
	for i, part := range parts {
		if part != "" {
			buf.WriteString(part)
			buf.WriteString("\n\n")
		}
		buf.WriteString(imageAt(i + 1))
	}
	return buf.String()
}
