// Package article defines the domain types moving through the content
// pipeline: the article draft, agent stage results, and the review log.
package article

import "time"

// Status is the lifecycle state of an article draft.
type Status string

// Article lifecycle states. Rejected is never assigned by the pipeline itself;
// it exists for explicit operator action on a persisted article.
const (
	StatusDrafting  Status = "drafting"
	StatusReviewing Status = "reviewing"
	StatusApproved  Status = "approved"
	StatusPosted    Status = "posted"
	StatusRejected  Status = "rejected"
	StatusError     Status = "error"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusDrafting, StatusReviewing, StatusApproved, StatusPosted, StatusRejected, StatusError:
		return true
	}
	return false
}

// Content is the three-part article body. Parts are replaced wholesale on each
// writer invocation; a missing part is an empty string, never an error.
type Content struct {
	BodyPart1 string `json:"body_part1"`
	BodyPart2 string `json:"body_part2"`
	BodyPart3 string `json:"body_part3"`
}

// Design holds the four named image prompts produced by the designer stage.
type Design struct {
	ThumbnailPrompt string `json:"thumbnail_prompt"`
	Section1Prompt  string `json:"section1_prompt"`
	Section2Prompt  string `json:"section2_prompt"`
	Section3Prompt  string `json:"section3_prompt"`
}

// Empty reports whether no prompt was produced for any slot.
func (d Design) Empty() bool {
	return d.ThumbnailPrompt == "" && d.Section1Prompt == "" &&
		d.Section2Prompt == "" && d.Section3Prompt == ""
}

// NumImageSlots is the number of image positions per article:
// thumbnail, section1, section2, section3, in that order.
const NumImageSlots = 4

// Draft is the unit of work moving through the pipeline. It is exclusively
// owned by the orchestrator for the duration of one run; after persistence the
// store is the system of record and the in-memory copy is a read-only cache.
type Draft struct {
	ID             string          `json:"id"`
	Topic          string          `json:"topic"`
	AnalysisReport *AnalysisResult `json:"analysis_report,omitempty"`
	Strategy       *StrategyResult `json:"strategy,omitempty"`
	Content        Content         `json:"content"`
	ReviewHistory  []ReviewOutcome `json:"review_history"`

	// LegacyReview carries the single flat review of records that predate
	// the history list. A manual rewrite backfills it into ReviewHistory
	// before appending its own outcome.
	LegacyReview *ReviewOutcome `json:"legacy_review,omitempty"`

	Design *Design `json:"design,omitempty"`

	// ImageReferences holds up to NumImageSlots entries in slot order.
	// An empty entry means "no image for this slot".
	ImageReferences []string `json:"image_references"`

	Status                 Status `json:"status"`
	RewriteAttempted       bool   `json:"rewrite_attempted"`
	ImageGenerationSkipped bool   `json:"image_generation_skipped"`
	ImageModel             string `json:"image_model,omitempty"`

	PublishedID string    `json:"published_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LastReview returns the authoritative (latest) review outcome, or nil when no
// review has run yet.
func (d *Draft) LastReview() *ReviewOutcome {
	if len(d.ReviewHistory) == 0 {
		return nil
	}
	return &d.ReviewHistory[len(d.ReviewHistory)-1]
}

// Title returns the strategy title, or the topic when no strategy exists.
func (d *Draft) Title() string {
	if d.Strategy != nil && d.Strategy.Title != "" {
		return d.Strategy.Title
	}
	return d.Topic
}
