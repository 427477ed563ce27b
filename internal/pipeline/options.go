// Package pipeline provides the high-level orchestration for the content
// generation process: the automatic batch run, the manual rewrite entry point,
// and the monthly reporting cycle.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/recipepocket/content-agent/internal/agents"
	"github.com/recipepocket/content-agent/internal/article"
	"github.com/recipepocket/content-agent/internal/images"
)

// Stage names used for event tagging and run state.
const (
	StageAnalyzing    = "Analyzing"
	StageStrategizing = "Strategizing"
	StageWriting      = "Writing"
	StageReviewing    = "Reviewing"
	StageRewriting    = "Rewriting"
	StageDesigning    = "Designing"
	StagePersisting   = "Persisting"
	StagePublishing   = "Publishing"
	StagePipeline     = "Pipeline"
)

// ErrRunActive is returned when a run is requested while another is in
// flight. There is no queueing; the caller retries later.
var ErrRunActive = errors.New("a pipeline run is already active")

// AgentGateway is the single-call agent abstraction the orchestrator drives.
type AgentGateway interface {
	Analyze(ctx context.Context, inputs map[string]string) (*article.AnalysisResult, error)
	Strategize(ctx context.Context, inputs map[string]string) (*article.StrategyResult, error)
	WriteArticle(ctx context.Context, inputs map[string]string) (string, error)
	ReviseArticle(ctx context.Context, inputs map[string]string) (string, error)
	Review(ctx context.Context, inputs map[string]string) (article.ReviewOutcome, error)
	DesignPrompts(ctx context.Context, title, excerpt, imageModel string) (*article.Design, error)
	MonthlyAnalysis(ctx context.Context, month, report string) (*agents.MonthlyAnalysisResult, error)
}

// ImageGenerator produces the per-article image set with the given model.
type ImageGenerator interface {
	Generate(ctx context.Context, articleID string, design article.Design, model string) images.Result
}

// Store is the persistence gateway. Upserts are idempotent by id.
type Store interface {
	UpsertArticle(ctx context.Context, draft *article.Draft) error
	UpdateArticleStatus(ctx context.Context, id string, status article.Status) error
	GetArticle(ctx context.Context, id string) (*article.Draft, error)
	RecentTopics(ctx context.Context, limit int) ([]string, error)
	RecentTitles(ctx context.Context, limit int) ([]string, error)
	UpsertMonthlyReport(ctx context.Context, report *article.MonthlyReport) error
}

// Publisher pushes an approved article to the CMS. Not idempotent.
type Publisher interface {
	Publish(ctx context.Context, draft *article.Draft) (string, error)
}

// DefaultAppContext describes the product for prompt context when the
// operator supplies nothing else.
const DefaultAppContext = "'Recipe Pocket' is a cooking app for organizing recipes and planning meals. " +
	"Blog articles exist to drive app downloads. Target audience: 30s housewives and cooking enthusiasts."

// RunOptions holds configuration for one automatic batch run.
type RunOptions struct {
	// Articles is the batch size N; articles run strictly sequentially.
	Articles int
	// UserRequest is optional operator free text forwarded to analyst and
	// marketer prompts.
	UserRequest string
	// ImageModel selects the image generation model for the designer stage.
	ImageModel string
	// SkipImages disables the image stage for every article in the run.
	// Recorded on each draft so a later manual rewrite honors it.
	SkipImages bool
	// AutoPublish publishes approved articles to the CMS.
	AutoPublish bool
	// AppContext overrides DefaultAppContext when set.
	AppContext string
	// HistoryLimit bounds the past topics/titles fetched for prompt context.
	HistoryLimit int
	// StageTimeout, when positive, bounds each gateway call. Zero keeps the
	// transport's own timeout only.
	StageTimeout time.Duration
}

func (o *RunOptions) withDefaults() RunOptions {
	opts := *o
	if opts.Articles <= 0 {
		opts.Articles = 1
	}
	if opts.AppContext == "" {
		opts.AppContext = DefaultAppContext
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	return opts
}

// ArticleResult is one article's terminal per-article state within a run.
type ArticleResult struct {
	ArticleID string         `json:"article_id,omitempty"`
	Topic     string         `json:"topic,omitempty"`
	Title     string         `json:"title,omitempty"`
	Status    article.Status `json:"status,omitempty"`
	Skipped   bool           `json:"skipped,omitempty"`
	Err       error          `json:"-"`
	ErrMsg    string         `json:"error,omitempty"`
}

// RunResult is the outcome of one batch run.
type RunResult struct {
	RunID    string          `json:"run_id"`
	Articles []ArticleResult `json:"articles"`
}
