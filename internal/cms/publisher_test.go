package cms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/recipepocket/content-agent/internal/article"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleMarkdown_InterleavesSectionImages(t *testing.T) {
	content := article.Content{
		BodyPart1: "Part one.",
		BodyPart2: "Part two.",
		BodyPart3: "Part three.",
	}
	refs := []string{"thumb.png", "s1.png", "s2.png", "s3.png"}

	md := AssembleMarkdown(content, refs)

	// Each section image follows its part.
	p1 := strings.Index(md, "Part one.")
	i1 := strings.Index(md, "s1.png")
	p2 := strings.Index(md, "Part two.")
	i2 := strings.Index(md, "s2.png")
	p3 := strings.Index(md, "Part three.")
	i3 := strings.Index(md, "s3.png")
	assert.True(t, p1 < i1 && i1 < p2 && p2 < i2 && i2 < p3 && p3 < i3)

	// The thumbnail is never inlined.
	assert.NotContains(t, md, "thumb.png")
}

func TestAssembleMarkdown_SkipsEmptySlots(t *testing.T) {
	content := article.Content{BodyPart1: "Part one.", BodyPart2: "Part two."}
	refs := []string{"thumb.png", "", "s2.png", ""}

	md := AssembleMarkdown(content, refs)

	assert.Contains(t, md, "Part one.")
	assert.Contains(t, md, "s2.png")
	assert.NotContains(t, md, "![Section Image 1]")
	assert.NotContains(t, md, "![Section Image 3]")
}

func TestAssembleMarkdown_NoImages(t *testing.T) {
	content := article.Content{BodyPart1: "Only text."}

	md := AssembleMarkdown(content, nil)

	assert.Equal(t, "Only text.\n\n", md)
}

func TestPublish_CreatesRecord(t *testing.T) {
	var gotPath string
	var gotRecord map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRecord))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": 42}]`))
	}))
	defer srv.Close()

	p := NewPublisher(srv.URL, "secret", "")
	p.httpClient = srv.Client()

	draft := &article.Draft{
		ID:              "art-1",
		Topic:           "bento",
		Strategy:        &article.StrategyResult{Title: "Bento Boxes Made Easy"},
		Content:         article.Content{BodyPart1: "Part one."},
		ImageReferences: []string{"https://cdn.example.com/thumb.png"},
	}

	id, err := p.Publish(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, "42", id)
	assert.Equal(t, "/rest/v1/blog_posts", gotPath, "empty table falls back to the default")
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Bento Boxes Made Easy", gotRecord["title"])
	assert.Equal(t, "art-1", gotRecord["slug"])
	assert.Equal(t, "https://cdn.example.com/thumb.png", gotRecord["thumbnail_url"])
	assert.Equal(t, true, gotRecord["published"])
}

func TestPublish_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "row level security", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewPublisher(srv.URL, "bad-key", "blog_posts")
	p.httpClient = srv.Client()

	_, err := p.Publish(context.Background(), &article.Draft{ID: "art-1", Topic: "t"})
	require.Error(t, err)

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Contains(t, pubErr.Error(), "401")
}

func TestPublish_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewPublisher(srv.URL, "key", "blog_posts")
	p.httpClient = srv.Client()

	_, err := p.Publish(context.Background(), &article.Draft{ID: "art-1", Topic: "t"})
	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Contains(t, pubErr.Error(), "no created row")
}
