package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/recipepocket/content-agent/internal/config"
	"github.com/recipepocket/content-agent/internal/llm"
	"github.com/recipepocket/content-agent/internal/pipeline"
	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the article generation pipeline end-to-end",
	Long: `Orchestrates the full content cycle: analysis -> strategy -> writing -> review -> rewrite -> image design -> persistence -> publishing.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath   string
	runArticles     int
	runUserRequest  string
	runImageModel   string
	runSkipImages   bool
	runAutoPublish  bool
	runAPIKey       string
	runDatabaseURL  string
	runStageTimeout int
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().IntVarP(&runArticles, "articles", "n", 0, "Number of articles to generate in this run")
	runCommand.Flags().StringVarP(&runUserRequest, "request", "r", "", "Free-text instruction forwarded to the analyst and marketer")
	runCommand.Flags().StringVar(&runImageModel, "image-model", "", "Image generation model (seedream-4.5, gemini-3-pro-image-preview, gemini-2.5-flash-image)")
	runCommand.Flags().BoolVar(&runSkipImages, "skip-images", false, "Skip image generation for every article")
	runCommand.Flags().BoolVar(&runAutoPublish, "auto-publish", false, "Publish approved articles to the CMS")
	runCommand.Flags().IntVar(&runStageTimeout, "stage-timeout", 0, "Per-stage timeout in seconds (0 = no timeout)")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for article persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

// loadMergedConfig loads the optional config file, overlays environment
// variables and returns the merged result. Shared by all commands.
func loadMergedConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv())

	// The default image model must be one a configured backend serves:
	// seedream only when its key is present, gemini otherwise.
	defaultModel := llm.ImageModelGeminiFlash
	if cfg.SeedreamAPIKey != "" {
		defaultModel = llm.ImageModelSeedream
	}
	cfg = cfg.MergeWithDefaults(config.Config{
		CMSTable:   "blog_posts",
		CMSBucket:  "article-images",
		ImageModel: defaultModel,
		Articles:   1,
		Port:       8080,
	})
	return cfg, nil
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(runConfigPath)
	if err != nil {
		return err
	}

	// Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("articles") {
		cfg.Articles = runArticles
	}
	if cmd.Flags().Changed("image-model") {
		cfg.ImageModel = runImageModel
	}
	if cmd.Flags().Changed("skip-images") {
		cfg.SkipImages = runSkipImages
	}
	if cmd.Flags().Changed("auto-publish") {
		cfg.AutoPublish = runAutoPublish
	}
	if cmd.Flags().Changed("stage-timeout") {
		cfg.StageTimeoutSeconds = runStageTimeout
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	opts := pipeline.RunOptions{
		Articles:     cfg.Articles,
		UserRequest:  runUserRequest,
		ImageModel:   cfg.ImageModel,
		SkipImages:   cfg.SkipImages,
		AutoPublish:  cfg.AutoPublish,
		AppContext:   cfg.AppContext,
		StageTimeout: time.Duration(cfg.StageTimeoutSeconds) * time.Second,
	}

	result, err := application.runner.RunBatch(ctx, opts)
	if err != nil {
		return err
	}

	for _, art := range result.Articles {
		switch {
		case art.Err != nil:
			fmt.Fprintf(os.Stderr, "article %s failed: %v\n", art.ArticleID, art.Err)
		case art.Skipped:
			fmt.Printf("article skipped (duplicate topic): %s\n", art.Topic)
		default:
			fmt.Printf("article %s: %s (%s)\n", art.ArticleID, art.Topic, art.Status)
		}
	}
	return nil
}
