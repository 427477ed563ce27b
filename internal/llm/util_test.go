package llm

import (
	"testing"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"key\": \"value\"}\n  ",
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{
			name:     "shorter than limit",
			input:    "short",
			n:        10,
			expected: "short",
		},
		{
			name:     "exactly at limit",
			input:    "exact",
			n:        5,
			expected: "exact",
		},
		{
			name:     "cut with ellipsis",
			input:    "a longer sentence",
			n:        8,
			expected: "a longer...",
		},
		{
			name:     "multibyte runes not split",
			input:    "お弁当のアイデア",
			n:        3,
			expected: "お弁当...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Truncate(tt.input, tt.n)
			if result != tt.expected {
				t.Errorf("Truncate() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestSupportsEmbeddedText(t *testing.T) {
	if !SupportsEmbeddedText(ImageModelGeminiPro) {
		t.Errorf("expected %s to support embedded text", ImageModelGeminiPro)
	}
	if SupportsEmbeddedText(ImageModelSeedream) {
		t.Errorf("expected %s to not support embedded text", ImageModelSeedream)
	}
	if SupportsEmbeddedText(ImageModelGeminiFlash) {
		t.Errorf("expected %s to not support embedded text", ImageModelGeminiFlash)
	}
}
