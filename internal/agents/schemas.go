package agents

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSON Schemas for the structured agent outputs. Model text is never trusted
// as structured data: every payload is validated before decoding.

const analysisSchema = `{
	"type": "object",
	"required": ["topic"],
	"properties": {
		"topic": {"type": "string", "minLength": 1},
		"reasoning": {"type": "string"},
		"target_keywords": {"type": "array", "items": {"type": "string"}}
	}
}`

const strategySchema = `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"article_structure": {"type": "array", "items": {"type": "string"}},
		"marketing_angle": {"type": "string"},
		"tone_guide": {"type": "string"}
	}
}`

const reviewSchema = `{
	"type": "object",
	"required": ["status", "score", "comments"],
	"properties": {
		"status": {"type": "string", "enum": ["APPROVED", "REVIEW_REQUIRED"]},
		"score": {"type": "integer", "minimum": 0, "maximum": 100},
		"comments": {"type": "string"}
	}
}`

const designSchema = `{
	"type": "object",
	"properties": {
		"thumbnail_prompt": {"type": "string"},
		"section1_prompt": {"type": "string"},
		"section2_prompt": {"type": "string"},
		"section3_prompt": {"type": "string"}
	}
}`

const monthlySchema = `{
	"type": "object",
	"required": ["analysis"],
	"properties": {
		"analysis": {"type": "string", "minLength": 1},
		"highlights": {"type": "array", "items": {"type": "string"}}
	}
}`

// validateJSON checks a payload against a schema and returns a descriptive
// error listing every failed field.
func validateJSON(schema, payload string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("schema validation could not run: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("schema violations:")
	for _, desc := range result.Errors() {
		sb.WriteString(fmt.Sprintf(" %s: %s;", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("%s", strings.TrimSuffix(sb.String(), ";"))
}
