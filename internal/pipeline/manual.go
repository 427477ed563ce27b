package pipeline

import (
	"context"
	"fmt"

	"github.com/recipepocket/content-agent/internal/article"
)

// ManualRewrite re-runs the writer and controller once for an already
// persisted article, using the stored strategy and the latest stored review's
// comments as feedback. There is no nested auto-rewrite. Image regeneration is
// skipped entirely when the original run disabled images, preserving the
// original operator intent.
func (r *Runner) ManualRewrite(ctx context.Context, articleID string, opts RunOptions) (*article.Draft, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunActive
	}
	defer r.running.Store(false)

	return r.manualRewrite(ctx, articleID, opts)
}

// StartRewrite claims the run slot, then performs the manual rewrite in a new
// goroutine. Same synchronous claim contract as StartBatch: a nil error means
// this caller, and no other, holds the slot.
func (r *Runner) StartRewrite(ctx context.Context, articleID string, opts RunOptions) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRunActive
	}
	go func() {
		defer r.running.Store(false)
		// Failures are already recorded in the run log.
		_, _ = r.manualRewrite(ctx, articleID, opts)
	}()
	return nil
}

func (r *Runner) manualRewrite(ctx context.Context, articleID string, opts RunOptions) (*article.Draft, error) {
	opts = opts.withDefaults()
	r.log.Reset()
	r.log.Info(StagePipeline, "manual rewrite of article %s", articleID)

	draft, err := r.store.GetArticle(ctx, articleID)
	if err != nil {
		r.log.Error(StagePipeline, "failed to load article %s: %v", articleID, err)
		return nil, err
	}
	if draft.Strategy == nil {
		r.log.Error(StagePipeline, "article %s has no stored strategy to rewrite from", articleID)
		return nil, fmt.Errorf("article %s has no stored strategy to rewrite from", articleID)
	}

	// Legacy records stored a single flat review with no history. Backfill
	// it first so history stays complete retroactively.
	reviews := article.NewReviewLog(draft.ReviewHistory...)
	if reviews.Len() == 0 && draft.LegacyReview != nil {
		reviews.Append(*draft.LegacyReview)
		draft.LegacyReview = nil
	}

	feedback := ""
	if last := reviews.Latest(); last != nil {
		feedback = last.Comments
	}

	r.log.Info(StageRewriting, "rewriting: %s", draft.Title())
	revised, err := r.reviseStage(ctx, opts, draft, feedback)
	if err != nil {
		r.log.Error(StageRewriting, "rewrite failed: %v", err)
		return nil, err
	}
	draft.Content = article.SplitBody(revised)

	r.log.Info(StageReviewing, "reviewing rewritten article")
	outcome := r.reviewStage(ctx, opts, draft)
	reviews.Append(outcome)
	r.log.Info(StageReviewing, "review verdict: approved=%t score=%d", outcome.Approved, outcome.Score)

	r.imageStage(ctx, draft, reviews.IsApproved())

	draft.ReviewHistory = reviews.History()
	if reviews.IsApproved() {
		draft.Status = article.StatusApproved
	} else {
		draft.Status = article.StatusReviewing
	}

	if err := r.persist(ctx, draft); err != nil {
		return nil, err
	}

	r.log.Success(StagePipeline, "manual rewrite of %s done with status %s", draft.ID, draft.Status)
	return draft, nil
}
