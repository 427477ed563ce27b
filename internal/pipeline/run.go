package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/recipepocket/content-agent/internal/agents"
	"github.com/recipepocket/content-agent/internal/analytics"
	"github.com/recipepocket/content-agent/internal/article"
	"github.com/recipepocket/content-agent/internal/llm"
	"github.com/recipepocket/content-agent/internal/observability"
)

// Excerpt budgets for review and design prompt inputs, in runes.
const (
	reviewExcerptLen = 1000
	designExcerptLen = 500
)

// Runner drives the pipeline. One Runner serves the whole process; at most one
// run may be active at a time (application-level guard, no queueing).
type Runner struct {
	agents    AgentGateway
	images    ImageGenerator
	store     Store
	analytics analytics.Fetcher
	publisher Publisher
	log       *observability.RunLog

	running atomic.Bool
}

// NewRunner wires the orchestrator. publisher may be nil when no CMS is
// configured; AutoPublish then degrades to a warning.
func NewRunner(gateway AgentGateway, imgs ImageGenerator, store Store, fetcher analytics.Fetcher, publisher Publisher, log *observability.RunLog) *Runner {
	if log == nil {
		log = observability.NewRunLog(0)
	}
	return &Runner{
		agents:    gateway,
		images:    imgs,
		store:     store,
		analytics: fetcher,
		publisher: publisher,
		log:       log,
	}
}

// Log exposes the run log for observers (SSE streaming, status endpoint).
func (r *Runner) Log() *observability.RunLog {
	return r.log
}

// Active reports whether a run is currently in flight.
func (r *Runner) Active() bool {
	return r.running.Load()
}

// RunBatch executes one automatic run of 1..N articles, strictly sequentially.
// A second run requested while one is active is rejected with ErrRunActive.
// Failures are isolated per article: one article's fatal error does not stop
// the rest of the batch.
func (r *Runner) RunBatch(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunActive
	}
	defer r.running.Store(false)

	return r.runBatch(ctx, opts)
}

// StartBatch claims the run slot, then executes the batch in a new goroutine.
// The claim happens before StartBatch returns: a caller that acknowledges the
// run on a nil error knows no concurrent request was also accepted. The
// returned channel is buffered and delivers the result when the run ends.
func (r *Runner) StartBatch(ctx context.Context, opts RunOptions) (<-chan *RunResult, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunActive
	}
	done := make(chan *RunResult, 1)
	go func() {
		defer r.running.Store(false)
		// Failures are already recorded in the run log.
		result, _ := r.runBatch(ctx, opts)
		done <- result
	}()
	return done, nil
}

func (r *Runner) runBatch(ctx context.Context, opts RunOptions) (*RunResult, error) {
	opts = opts.withDefaults()
	r.log.Reset()

	result := &RunResult{RunID: uuid.NewString()}
	r.log.Info(StagePipeline, "starting run %s (%d article(s), image model %s)", result.RunID, opts.Articles, opts.ImageModel)

	// One snapshot serves the whole run; without it the analyst has nothing
	// to work from, so this failure aborts the run as a whole.
	snapshot, err := r.analytics.FetchDaily(ctx)
	if err != nil {
		r.log.Error(StagePipeline, "failed to fetch analytics snapshot: %v", err)
		return result, err
	}

	// Historical context is best-effort: an empty history only weakens the
	// prompts, it does not block generation.
	pastTopics, err := r.store.RecentTopics(ctx, opts.HistoryLimit)
	if err != nil {
		r.log.Warn(StagePipeline, "failed to fetch past topics: %v", err)
	}
	pastTitles, err := r.store.RecentTitles(ctx, opts.HistoryLimit)
	if err != nil {
		r.log.Warn(StagePipeline, "failed to fetch past titles: %v", err)
	}

	for i := 0; i < opts.Articles; i++ {
		r.log.Info(StagePipeline, "article %d/%d", i+1, opts.Articles)

		articleResult := r.runArticle(ctx, opts, snapshot, pastTopics, pastTitles)
		if articleResult.Err != nil {
			articleResult.ErrMsg = articleResult.Err.Error()
		}
		result.Articles = append(result.Articles, articleResult)

		// Feed this article back into the avoid-lists so a batch does not
		// repeat itself.
		if articleResult.Topic != "" {
			pastTopics = append([]string{articleResult.Topic}, pastTopics...)
		}
		if articleResult.Title != "" && articleResult.Title != article.SentinelStrategyTitle {
			pastTitles = append([]string{articleResult.Title}, pastTitles...)
		}
	}

	r.log.Info(StagePipeline, "run %s finished", result.RunID)
	return result, nil
}

// runArticle takes one article from analysis to its terminal per-article
// state. Only the analyst stage is fatal to the article; every later stage
// degrades instead.
func (r *Runner) runArticle(ctx context.Context, opts RunOptions, snapshot *analytics.Snapshot, pastTopics, pastTitles []string) ArticleResult {
	// Stage 1: Analyze. Fatal on failure: no topic, no article, nothing to
	// persist.
	r.log.Info(StageAnalyzing, "analyzing data")
	analysis, err := r.analyzeStage(ctx, opts, snapshot, pastTopics)
	if err != nil {
		r.log.Error(StageAnalyzing, "analysis failed: %v", err)
		return ArticleResult{Status: article.StatusError, Err: err}
	}
	r.log.Info(StageAnalyzing, "topic decided: %s", analysis.Topic)

	// Duplicate-topic guard: recently covered topics are skipped without
	// persisting anything.
	if containsFold(pastTopics, analysis.Topic) {
		r.log.Warn(StageAnalyzing, "topic %q already covered recently, skipping", analysis.Topic)
		return ArticleResult{Topic: analysis.Topic, Skipped: true}
	}

	now := time.Now()
	draft := &article.Draft{
		ID:                     uuid.NewString(),
		Topic:                  analysis.Topic,
		AnalysisReport:         analysis,
		Status:                 article.StatusDrafting,
		ImageGenerationSkipped: opts.SkipImages,
		ImageModel:             opts.ImageModel,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	// Stage 2: Strategize. Soft failure: a degraded sentinel strategy keeps
	// the run going so a traceable failed article is produced.
	r.log.Info(StageStrategizing, "creating marketing strategy")
	strategy, err := r.strategizeStage(ctx, opts, analysis, pastTitles)
	if err != nil {
		r.log.Error(StageStrategizing, "strategy failed, continuing with degraded placeholder: %v", err)
		strategy = article.DegradedStrategy()
	}
	draft.Strategy = strategy

	// Stage 3: Write.
	r.log.Info(StageWriting, "writing article: %s", draft.Title())
	raw, err := r.writeStage(ctx, opts, strategy)
	if err != nil {
		r.log.Error(StageWriting, "writing failed: %v", err)
		draft.Status = article.StatusError
		r.persist(ctx, draft)
		return ArticleResult{ArticleID: draft.ID, Topic: draft.Topic, Title: draft.Title(), Status: draft.Status, Err: err}
	}
	draft.Content = article.SplitBody(raw)

	// Stages 4-5: review with bounded one-shot rewrite.
	reviews := article.NewReviewLog()
	r.reviewAndRewrite(ctx, opts, draft, reviews)

	// Stage 6: images, iff approved and not disabled for the run.
	r.imageStage(ctx, draft, reviews.IsApproved())

	// Stage 7: assemble final status.
	draft.ReviewHistory = reviews.History()
	if reviews.IsApproved() {
		draft.Status = article.StatusApproved
	} else {
		draft.Status = article.StatusReviewing
	}

	// Stage 8: persist.
	if err := r.persist(ctx, draft); err != nil {
		return ArticleResult{ArticleID: draft.ID, Topic: draft.Topic, Title: draft.Title(), Status: draft.Status, Err: err}
	}

	// Stage 9: conditional publish, best-effort.
	if draft.Status == article.StatusApproved && opts.AutoPublish {
		r.publishStage(ctx, draft)
	}

	r.log.Success(StagePipeline, "article %s done with status %s", draft.ID, draft.Status)
	return ArticleResult{ArticleID: draft.ID, Topic: draft.Topic, Title: draft.Title(), Status: draft.Status}
}

func (r *Runner) analyzeStage(ctx context.Context, opts RunOptions, snapshot *analytics.Snapshot, pastTopics []string) (*article.AnalysisResult, error) {
	ctx, cancel := r.stageCtx(ctx, opts.StageTimeout)
	defer cancel()

	return r.agents.Analyze(ctx, map[string]string{
		"Report":      snapshot.Serialize(),
		"PastTopics":  strings.Join(pastTopics, ", "),
		"AppContext":  opts.AppContext,
		"UserRequest": opts.UserRequest,
	})
}

func (r *Runner) strategizeStage(ctx context.Context, opts RunOptions, analysis *article.AnalysisResult, pastTitles []string) (*article.StrategyResult, error) {
	ctx, cancel := r.stageCtx(ctx, opts.StageTimeout)
	defer cancel()

	return r.agents.Strategize(ctx, map[string]string{
		"Analysis":    serialize(analysis),
		"PastTitles":  strings.Join(pastTitles, ", "),
		"AppContext":  opts.AppContext,
		"UserRequest": opts.UserRequest,
	})
}

func (r *Runner) writeStage(ctx context.Context, opts RunOptions, strategy *article.StrategyResult) (string, error) {
	ctx, cancel := r.stageCtx(ctx, opts.StageTimeout)
	defer cancel()

	return r.agents.WriteArticle(ctx, map[string]string{
		"Strategy":   serialize(strategy),
		"AppContext": opts.AppContext,
	})
}

// reviewAndRewrite runs the first review and, on rejection, exactly one
// rewrite followed by a second review. A second rejection is final; the
// bounded loop keeps worst-case latency and cost deterministic.
func (r *Runner) reviewAndRewrite(ctx context.Context, opts RunOptions, draft *article.Draft, reviews *article.ReviewLog) {
	r.log.Info(StageReviewing, "reviewing article")
	outcome := r.reviewStage(ctx, opts, draft)
	reviews.Append(outcome)
	r.log.Info(StageReviewing, "review verdict: approved=%t score=%d", outcome.Approved, outcome.Score)

	if outcome.Approved {
		return
	}

	r.log.Info(StageRewriting, "rewriting after rejection: %s", llm.Truncate(outcome.Comments, 200))
	draft.RewriteAttempted = true

	revised, err := r.reviseStage(ctx, opts, draft, outcome.Comments)
	if err != nil {
		// The rejected draft stands; the first verdict stays authoritative.
		r.log.Error(StageRewriting, "rewrite failed, keeping rejected draft: %v", err)
		return
	}
	draft.Content = article.SplitBody(revised)

	r.log.Info(StageReviewing, "reviewing rewritten article")
	second := r.reviewStage(ctx, opts, draft)
	reviews.Append(second)
	r.log.Info(StageReviewing, "second review verdict: approved=%t score=%d", second.Approved, second.Score)
}

// reviewStage invokes the controller. A malformed or failed review degrades to
// a zero-score rejection so the article lands in Reviewing for a human,
// mirroring the fail-safe of the upstream reviewer.
func (r *Runner) reviewStage(ctx context.Context, opts RunOptions, draft *article.Draft) article.ReviewOutcome {
	ctx, cancel := r.stageCtx(ctx, opts.StageTimeout)
	defer cancel()

	outcome, err := r.agents.Review(ctx, map[string]string{
		"Strategy": serialize(draft.Strategy),
		"Excerpt":  llm.Truncate(draft.Content.JoinPlain(), reviewExcerptLen),
	})
	if err != nil {
		var malformed *agents.MalformedResponseError
		if errors.As(err, &malformed) {
			r.log.Warn(StageReviewing, "reviewer returned malformed verdict, treating as rejection: %v", err)
		} else {
			r.log.Error(StageReviewing, "review call failed, treating as rejection: %v", err)
		}
		return article.ReviewOutcome{Approved: false, Score: 0, Comments: "reviewer unavailable: " + err.Error()}
	}
	return outcome
}

func (r *Runner) reviseStage(ctx context.Context, opts RunOptions, draft *article.Draft, feedback string) (string, error) {
	ctx, cancel := r.stageCtx(ctx, opts.StageTimeout)
	defer cancel()

	return r.agents.ReviseArticle(ctx, map[string]string{
		"Strategy":       serialize(draft.Strategy),
		"AppContext":     opts.AppContext,
		"Feedback":       feedback,
		"CurrentContent": draft.Content.Join(),
	})
}

// imageStage runs the designer and the image pipeline when the article is
// approved and image generation is enabled. When skipped, the reason is
// logged so observers can tell not-approved from skipped-by-config.
func (r *Runner) imageStage(ctx context.Context, draft *article.Draft, approved bool) {
	if !approved {
		r.log.Warn(StageDesigning, "skipping image generation: article not approved")
		return
	}
	if draft.ImageGenerationSkipped {
		r.log.Warn(StageDesigning, "skipping image generation: disabled by run configuration")
		return
	}

	r.log.Info(StageDesigning, "generating image prompts (%s)", draft.ImageModel)
	design, err := r.agents.DesignPrompts(ctx, draft.Title(), llm.Truncate(draft.Content.JoinPlain(), designExcerptLen), draft.ImageModel)
	if err != nil {
		r.log.Warn(StageDesigning, "designer failed, article keeps no images: %v", err)
		return
	}
	draft.Design = design

	r.log.Info(StageDesigning, "generating images (%s)", draft.ImageModel)
	result := r.images.Generate(ctx, draft.ID, *design, draft.ImageModel)
	for _, warning := range result.Warnings {
		r.log.Warn(StageDesigning, "%s", warning)
	}
	draft.ImageReferences = result.Refs
}

func (r *Runner) persist(ctx context.Context, draft *article.Draft) error {
	r.log.Info(StagePersisting, "saving article %s", draft.ID)
	draft.UpdatedAt = time.Now()
	if err := r.store.UpsertArticle(ctx, draft); err != nil {
		r.log.Error(StagePersisting, "failed to save article %s: %v", draft.ID, err)
		return err
	}
	return nil
}

// publishStage publishes to the CMS and records the posted status. Publish
// failure is logged and swallowed: approval stands, the run does not fail.
func (r *Runner) publishStage(ctx context.Context, draft *article.Draft) {
	if r.publisher == nil {
		r.log.Warn(StagePublishing, "auto-publish is on but no CMS is configured")
		return
	}

	r.log.Info(StagePublishing, "publishing to CMS: %s", draft.Title())
	publishedID, err := r.publisher.Publish(ctx, draft)
	if err != nil {
		r.log.Error(StagePublishing, "publish failed, article stays approved: %v", err)
		return
	}

	draft.PublishedID = publishedID
	draft.Status = article.StatusPosted
	if err := r.store.UpdateArticleStatus(ctx, draft.ID, article.StatusPosted); err != nil {
		r.log.Error(StagePublishing, "failed to record posted status: %v", err)
		return
	}
	r.log.Success(StagePublishing, "published as %s", publishedID)
}

// stageCtx bounds one gateway call when a stage timeout is configured.
func (r *Runner) stageCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}

// serialize renders a stage result as indented JSON for prompt inputs.
func serialize(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// containsFold reports whether list contains s, ignoring case and surrounding
// whitespace.
func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), s) {
			return true
		}
	}
	return false
}
