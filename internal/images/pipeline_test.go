package images

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/recipepocket/content-agent/internal/article"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator fails for prompts listed in failOn and otherwise returns a
// reference derived from the prompt.
type fakeGenerator struct {
	mu     sync.Mutex
	failOn map[string]bool
	calls  []string
	models []string
}

func (f *fakeGenerator) GenerateImage(_ context.Context, prompt, model string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.models = append(f.models, model)
	f.mu.Unlock()
	if f.failOn[prompt] {
		return "", errors.New("model overloaded")
	}
	return "data:image/png;base64,ref-" + prompt, nil
}

func (f *fakeGenerator) Close() error { return nil }

type fakeUploader struct {
	mu     sync.Mutex
	failOn map[string]bool // keyed by path
	paths  []string
}

func (f *fakeUploader) Upload(_ context.Context, _, path string) (string, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	if f.failOn[path] {
		return "", errors.New("storage unavailable")
	}
	return "https://cdn.example.com/" + path, nil
}

func fullDesign() article.Design {
	return article.Design{
		ThumbnailPrompt: "thumb",
		Section1Prompt:  "one",
		Section2Prompt:  "two",
		Section3Prompt:  "three",
	}
}

func TestGenerate_AllSlotsSucceed(t *testing.T) {
	gen := &fakeGenerator{}
	up := &fakeUploader{}
	p := New(gen, up)

	result := p.Generate(context.Background(), "art-1", fullDesign(), "seedream-4.5")

	require.Len(t, result.Refs, article.NumImageSlots)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "https://cdn.example.com/articles/art-1/thumbnail.png", result.Refs[0])
	assert.Equal(t, "https://cdn.example.com/articles/art-1/section3.png", result.Refs[3])
	assert.Len(t, gen.calls, 4)
}

func TestGenerate_ModelIsPassedPerCall(t *testing.T) {
	gen := &fakeGenerator{}
	p := New(gen, nil)

	p.Generate(context.Background(), "art-1", fullDesign(), "gemini-2.5-flash-image")

	require.Len(t, gen.models, 4)
	for _, model := range gen.models {
		assert.Equal(t, "gemini-2.5-flash-image", model)
	}
}

func TestGenerate_EmptyModelFallsBackToSeedream(t *testing.T) {
	gen := &fakeGenerator{}
	p := New(gen, nil)

	p.Generate(context.Background(), "art-1", fullDesign(), "")

	require.NotEmpty(t, gen.models)
	assert.Equal(t, "seedream-4.5", gen.models[0])
}

func TestGenerate_OneSlotFailureDoesNotCancelSiblings(t *testing.T) {
	gen := &fakeGenerator{failOn: map[string]bool{"two": true}}
	p := New(gen, nil)

	result := p.Generate(context.Background(), "art-1", fullDesign(), "seedream-4.5")

	require.Len(t, result.Refs, article.NumImageSlots)
	assert.NotEmpty(t, result.Refs[0])
	assert.NotEmpty(t, result.Refs[1])
	assert.Empty(t, result.Refs[2], "failed slot stays empty")
	assert.NotEmpty(t, result.Refs[3])

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "section2")
}

func TestGenerate_EmptyPromptsAreSkipped(t *testing.T) {
	gen := &fakeGenerator{}
	p := New(gen, nil)

	design := article.Design{ThumbnailPrompt: "thumb"}
	result := p.Generate(context.Background(), "art-1", design, "seedream-4.5")

	assert.NotEmpty(t, result.Refs[0])
	assert.Empty(t, result.Refs[1])
	assert.Empty(t, result.Refs[2])
	assert.Empty(t, result.Refs[3])
	assert.Len(t, gen.calls, 1, "no call is made for empty prompts")
	assert.Empty(t, result.Warnings)
}

func TestGenerate_UploadFailureKeepsSourceReference(t *testing.T) {
	gen := &fakeGenerator{}
	up := &fakeUploader{failOn: map[string]bool{"articles/art-9/section1.png": true}}
	p := New(gen, up)

	result := p.Generate(context.Background(), "art-9", fullDesign(), "seedream-4.5")

	assert.True(t, strings.HasPrefix(result.Refs[1], "data:image/png;base64,"), "source reference kept on upload failure")
	assert.True(t, strings.HasPrefix(result.Refs[0], "https://cdn.example.com/"))

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "keeping source reference")
}

func TestGenerate_NilUploaderReturnsSourceRefs(t *testing.T) {
	gen := &fakeGenerator{}
	p := New(gen, nil)

	result := p.Generate(context.Background(), "art-1", fullDesign(), "seedream-4.5")

	for i, ref := range result.Refs {
		assert.True(t, strings.HasPrefix(ref, "data:image/png;base64,"), fmt.Sprintf("slot %d", i))
	}
}

func TestGenerate_AllSlotsFailProducesEmptyRefs(t *testing.T) {
	gen := &fakeGenerator{failOn: map[string]bool{"thumb": true, "one": true, "two": true, "three": true}}
	up := &fakeUploader{}
	p := New(gen, up)

	result := p.Generate(context.Background(), "art-1", fullDesign(), "seedream-4.5")

	for _, ref := range result.Refs {
		assert.Empty(t, ref)
	}
	assert.Len(t, result.Warnings, 4)
	assert.Empty(t, up.paths, "nothing to upload when every generation failed")
}
