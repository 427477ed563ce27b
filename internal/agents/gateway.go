// Package agents implements the agent gateway: one text-generation call per
// invocation, with JSON extraction and schema validation. The gateway performs
// no retries; retry and fallback policy belongs to the orchestrator per stage.
package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/recipepocket/content-agent/internal/article"
	"github.com/recipepocket/content-agent/internal/llm"
	"github.com/recipepocket/content-agent/internal/prompts"
)

// Gateway invokes agent roles against an LLM client using a frozen prompt set.
type Gateway struct {
	client llm.Client
	set    *prompts.Set
}

// NewGateway builds a gateway over the given client and resolved prompt set.
func NewGateway(client llm.Client, set *prompts.Set) *Gateway {
	return &Gateway{client: client, set: set}
}

// InvokeText renders the template for key and issues one generation call,
// returning the raw model text.
func (g *Gateway) InvokeText(ctx context.Context, role Role, key string, inputs map[string]string) (string, error) {
	prompt, ok := g.set.Render(key, inputs)
	if !ok {
		return "", &APICallError{Role: role, Message: fmt.Sprintf("no prompt template for %q", key)}
	}

	text, err := g.client.GenerateContent(ctx, prompt, tierFor(role))
	if err != nil {
		return "", &APICallError{Role: role, Message: "generation failed", Cause: err}
	}
	return text, nil
}

// InvokeJSON renders the template for key, issues one generation call, strips
// any code fences, validates the payload against schema, and decodes into out.
func (g *Gateway) InvokeJSON(ctx context.Context, role Role, key, schema string, inputs map[string]string, out any) error {
	prompt, ok := g.set.Render(key, inputs)
	if !ok {
		return &APICallError{Role: role, Message: fmt.Sprintf("no prompt template for %q", key)}
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, tierFor(role))
	if err != nil {
		return &APICallError{Role: role, Message: "generation failed", Cause: err}
	}

	payload := llm.CleanJSONBlock(raw)
	if err := validateJSON(schema, payload); err != nil {
		return &MalformedResponseError{Role: role, Message: "payload rejected", Cause: err}
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return &MalformedResponseError{Role: role, Message: "payload is not valid JSON", Cause: err}
	}
	return nil
}

// Analyze runs the analyst role over a serialized analytics snapshot.
func (g *Gateway) Analyze(ctx context.Context, inputs map[string]string) (*article.AnalysisResult, error) {
	var result article.AnalysisResult
	if err := g.InvokeJSON(ctx, RoleAnalyst, string(RoleAnalyst), analysisSchema, inputs, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Strategize runs the marketer role over the serialized analysis.
func (g *Gateway) Strategize(ctx context.Context, inputs map[string]string) (*article.StrategyResult, error) {
	var result article.StrategyResult
	if err := g.InvokeJSON(ctx, RoleMarketer, string(RoleMarketer), strategySchema, inputs, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WriteArticle runs the writer role and returns the raw markdown body,
// including any [SPLIT] markers. Splitting is the caller's concern.
func (g *Gateway) WriteArticle(ctx context.Context, inputs map[string]string) (string, error) {
	return g.InvokeText(ctx, RoleWriter, string(RoleWriter), inputs)
}

// ReviseArticle runs the writer's revision template. This is the only place
// the writer receives prior content and reviewer feedback.
func (g *Gateway) ReviseArticle(ctx context.Context, inputs map[string]string) (string, error) {
	return g.InvokeText(ctx, RoleWriter, keyWriterRevision, inputs)
}

// reviewWire is the controller verdict as it appears on the wire.
type reviewWire struct {
	Status   string `json:"status"`
	Score    int    `json:"score"`
	Comments string `json:"comments"`
}

// reviewApproved is the wire value for an approving verdict.
const reviewApproved = "APPROVED"

// Review runs the controller role and converts the wire verdict into a
// ReviewOutcome. Approval is solely the verdict field.
func (g *Gateway) Review(ctx context.Context, inputs map[string]string) (article.ReviewOutcome, error) {
	var wire reviewWire
	if err := g.InvokeJSON(ctx, RoleController, string(RoleController), reviewSchema, inputs, &wire); err != nil {
		return article.ReviewOutcome{}, err
	}
	return article.ReviewOutcome{
		Approved: wire.Status == reviewApproved,
		Score:    wire.Score,
		Comments: wire.Comments,
	}, nil
}

// DesignPrompts runs the designer role, selecting the style instruction for
// the target image model, and returns the four slot prompts.
func (g *Gateway) DesignPrompts(ctx context.Context, title, excerpt, imageModel string) (*article.Design, error) {
	styleKey := "style_illustration"
	if llm.SupportsEmbeddedText(imageModel) {
		styleKey = "style_infographic"
	}
	style, ok := g.set.Template(styleKey)
	if !ok {
		return nil, &APICallError{Role: RoleDesigner, Message: fmt.Sprintf("no prompt template for %q", styleKey)}
	}

	inputs := map[string]string{
		"Title":            title,
		"Excerpt":          excerpt,
		"ImageModel":       imageModel,
		"StyleInstruction": style,
	}

	var design article.Design
	if err := g.InvokeJSON(ctx, RoleDesigner, string(RoleDesigner), designSchema, inputs, &design); err != nil {
		return nil, err
	}
	return &design, nil
}

// MonthlyAnalysisResult is the analyst's monthly digest output.
type MonthlyAnalysisResult struct {
	Analysis   string   `json:"analysis"`
	Highlights []string `json:"highlights"`
}

// MonthlyAnalysis runs the analyst role with the monthly report template.
func (g *Gateway) MonthlyAnalysis(ctx context.Context, month, report string) (*MonthlyAnalysisResult, error) {
	inputs := map[string]string{
		"Month":  month,
		"Report": report,
	}
	var result MonthlyAnalysisResult
	if err := g.InvokeJSON(ctx, RoleAnalyst, keyMonthlyReport, monthlySchema, inputs, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
