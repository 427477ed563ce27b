package article

import "time"

// AnalysisResult is the analyst stage output.
type AnalysisResult struct {
	Topic          string   `json:"topic"`
	Reasoning      string   `json:"reasoning"`
	TargetKeywords []string `json:"target_keywords"`
}

// StrategyResult is the marketer stage output.
type StrategyResult struct {
	Title            string   `json:"title"`
	ArticleStructure []string `json:"article_structure"`
	MarketingAngle   string   `json:"marketing_angle"`
	ToneGuide        string   `json:"tone_guide"`
}

// SentinelStrategyTitle marks a degraded strategy produced when the marketer
// stage fails. The run continues so a traceable failed article is persisted
// instead of vanishing silently.
const SentinelStrategyTitle = "戦略策定エラー"

// DegradedStrategy returns the sentinel strategy used when the marketer fails.
func DegradedStrategy() *StrategyResult {
	return &StrategyResult{Title: SentinelStrategyTitle}
}

// ReviewOutcome is the controller stage verdict. Immutable once created.
// Approved is the sole approval signal; Score is informational for display.
type ReviewOutcome struct {
	Approved bool   `json:"approved"`
	Score    int    `json:"score"`
	Comments string `json:"comments"`
}

// MonthlyReport is one calendar month's analytics digest, upserted by month
// key ("YYYY-MM") with the same idempotent contract as articles.
type MonthlyReport struct {
	Month      string    `json:"month"`
	CreatedAt  time.Time `json:"created_at"`
	Metrics    string    `json:"metrics"`
	Analysis   string    `json:"analysis"`
	Highlights []string  `json:"highlights,omitempty"`
}

// MonthKey formats t as the monthly report upsert key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
