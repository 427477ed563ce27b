//go:build integration
// +build integration

package llm

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := NewGeminiClient(ctx, DefaultGeminiConfig(), apiKey)
	require.NoError(t, err)
	defer client.Close()

	t.Run("GenerateContent", func(t *testing.T) {
		text, err := client.GenerateContent(ctx, "Reply with exactly one word: hello", TierLite)
		require.NoError(t, err)
		assert.NotEmpty(t, text)
	})

	t.Run("GenerateJSON", func(t *testing.T) {
		raw, err := client.GenerateJSON(ctx, `Return a JSON object with a single key "topic" whose value is any short string.`, TierLite)
		require.NoError(t, err)

		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(raw), &payload), "response should be bare JSON: %s", raw)
		assert.NotEmpty(t, payload["topic"])
	})
}
