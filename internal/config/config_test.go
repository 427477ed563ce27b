package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `{
		"api_key": "test-key",
		"database_url": "postgres://localhost/content",
		"articles": 3,
		"image_model": "seedream-4.5",
		"auto_publish": true,
		"prompt_overrides": {"writer": "custom prompt"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, 3, cfg.Articles)
	assert.True(t, cfg.AutoPublish)
	assert.Equal(t, "custom prompt", cfg.PromptOverrides["writer"])
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"articles": `)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestValidate_Ranges(t *testing.T) {
	valid := &Config{Articles: 5, ImageModel: "gemini-2.5-flash-image", Port: 8080}
	assert.NoError(t, valid.Validate())

	tooMany := &Config{Articles: 11}
	assert.Error(t, tooMany.Validate())

	badModel := &Config{ImageModel: "dall-e-3"}
	assert.Error(t, badModel.Validate())

	badPort := &Config{Port: 70000}
	assert.Error(t, badPort.Validate())
}

func TestValidate_ZeroValuesAllowed(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{APIKey: "from-file", Articles: 2}
	defaults := Config{
		APIKey:     "from-env",
		Articles:   1,
		ImageModel: "seedream-4.5",
		CMSTable:   "blog_posts",
		Port:       8080,
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "from-file", merged.APIKey, "set values win")
	assert.Equal(t, 2, merged.Articles)
	assert.Equal(t, "seedream-4.5", merged.ImageModel, "unset values fall back")
	assert.Equal(t, "blog_posts", merged.CMSTable)
	assert.Equal(t, 8080, merged.Port)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("PORT", "9090")

	cfg := FromEnv()

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
}

func TestFromEnv_BadPortIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := FromEnv()
	assert.Zero(t, cfg.Port)
}
