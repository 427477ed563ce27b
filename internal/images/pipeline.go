// Package images produces the per-article image set: four named slots
// generated concurrently, then uploaded to durable storage, with each slot
// independently fault tolerant. A failed slot degrades to "no image"; a failed
// upload falls back to the source reference. Nothing in this package aborts a
// run.
package images

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/recipepocket/content-agent/internal/article"
	"github.com/recipepocket/content-agent/internal/llm"
)

// Slot names in result order.
var slotNames = [article.NumImageSlots]string{"thumbnail", "section1", "section2", "section3"}

// Uploader stores an image reference under a path and returns a durable public
// URL. Implementations are best-effort: on failure the caller keeps the source
// reference.
type Uploader interface {
	Upload(ctx context.Context, ref, path string) (string, error)
}

// Result is the outcome of one image pipeline invocation. Refs has one entry
// per slot in slot order; an empty entry means no image for that slot.
// Warnings describe per-slot failures that were degraded, not propagated.
type Result struct {
	Refs     []string
	Warnings []string
}

// Pipeline generates and stores the image set for an article.
type Pipeline struct {
	gen      llm.ImageClient
	uploader Uploader
}

// New builds an image pipeline. uploader may be nil, in which case generated
// references are returned as-is.
func New(gen llm.ImageClient, uploader Uploader) *Pipeline {
	return &Pipeline{gen: gen, uploader: uploader}
}

// Generate runs the four slot generations concurrently with the given model,
// then the uploads concurrently. An empty model falls back to seedream. A
// slot with no prompt is skipped: no call is made and its reference stays
// empty.
func (p *Pipeline) Generate(ctx context.Context, articleID string, design article.Design, model string) Result {
	if model == "" {
		model = llm.ImageModelSeedream
	}
	prompts := [article.NumImageSlots]string{
		design.ThumbnailPrompt,
		design.Section1Prompt,
		design.Section2Prompt,
		design.Section3Prompt,
	}

	refs := make([]string, article.NumImageSlots)
	warnings := make([]string, article.NumImageSlots) // per-slot, collapsed later

	// Fan out generation. Goroutines only write their own index and always
	// return nil: one slot's failure must not cancel its siblings.
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < article.NumImageSlots; i++ {
		i := i
		if prompts[i] == "" {
			continue
		}
		g.Go(func() error {
			ref, err := p.gen.GenerateImage(gCtx, prompts[i], model)
			if err != nil {
				warnings[i] = fmt.Sprintf("image generation failed for %s: %v", slotNames[i], err)
				return nil
			}
			refs[i] = ref
			return nil
		})
	}
	_ = g.Wait()

	// Fan out upload with the same isolation. Upload failure keeps the
	// source reference, which may be ephemeral.
	if p.uploader != nil {
		uploadWarnings := make([]string, article.NumImageSlots)
		ug, ugCtx := errgroup.WithContext(ctx)
		for i := 0; i < article.NumImageSlots; i++ {
			i := i
			if refs[i] == "" {
				continue
			}
			ug.Go(func() error {
				path := fmt.Sprintf("articles/%s/%s.png", articleID, slotNames[i])
				url, err := p.uploader.Upload(ugCtx, refs[i], path)
				if err != nil {
					uploadWarnings[i] = fmt.Sprintf("upload failed for %s, keeping source reference: %v", slotNames[i], err)
					return nil
				}
				refs[i] = url
				return nil
			})
		}
		_ = ug.Wait()
		for i, w := range uploadWarnings {
			if w != "" && warnings[i] == "" {
				warnings[i] = w
			}
		}
	}

	result := Result{Refs: refs}
	for _, w := range warnings {
		if w != "" {
			result.Warnings = append(result.Warnings, w)
		}
	}
	return result
}
