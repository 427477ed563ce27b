package main

import (
	"context"
	"fmt"

	"github.com/recipepocket/content-agent/internal/agents"
	"github.com/recipepocket/content-agent/internal/analytics"
	"github.com/recipepocket/content-agent/internal/cms"
	"github.com/recipepocket/content-agent/internal/config"
	"github.com/recipepocket/content-agent/internal/db"
	"github.com/recipepocket/content-agent/internal/images"
	"github.com/recipepocket/content-agent/internal/llm"
	"github.com/recipepocket/content-agent/internal/observability"
	"github.com/recipepocket/content-agent/internal/pipeline"
	"github.com/recipepocket/content-agent/internal/prompts"
)

// app bundles the wired pipeline and the handles that need closing.
type app struct {
	runner   *pipeline.Runner
	database *db.DB

	llmClient   llm.Client
	imageClient llm.ImageClient
	analytics   *analytics.Client
}

// buildApp wires all components from a merged config. The caller must call
// app.Close when done.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	if cfg.AnalyticsURL == "" {
		return nil, fmt.Errorf("ANALYTICS_URL environment variable is required")
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	set, err := prompts.Resolve(cfg.PromptOverrides)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to resolve prompts: %w", err)
	}
	gateway := agents.NewGateway(client, set)

	geminiImages, err := llm.NewGeminiImageClient(ctx, cfg.APIKey)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create image client: %w", err)
	}
	var seedream llm.ImageClient
	if cfg.SeedreamAPIKey != "" {
		seedream, err = llm.NewSeedreamImageClient(cfg.SeedreamAPIURL, cfg.SeedreamAPIKey)
		if err != nil {
			client.Close()
			geminiImages.Close()
			return nil, fmt.Errorf("failed to create seedream client: %w", err)
		}
	}
	imageClient := llm.NewImageRouter(geminiImages, seedream)

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		client.Close()
		imageClient.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	fetcher, err := analytics.NewClient(cfg.AnalyticsURL, cfg.RedisURL)
	if err != nil {
		client.Close()
		imageClient.Close()
		database.Close()
		return nil, fmt.Errorf("failed to create analytics client: %w", err)
	}

	// Publisher and uploader are optional; without CMS credentials the run
	// still works, publish and upload just degrade.
	var publisher pipeline.Publisher
	var uploader images.Uploader
	if cfg.CMSBaseURL != "" && cfg.CMSAPIKey != "" {
		publisher = cms.NewPublisher(cfg.CMSBaseURL, cfg.CMSAPIKey, cfg.CMSTable)
		uploader = cms.NewStorageUploader(cfg.CMSBaseURL, cfg.CMSAPIKey, cfg.CMSBucket)
	}

	imgPipeline := images.New(imageClient, uploader)
	runLog := observability.NewRunLog(0)
	runner := pipeline.NewRunner(gateway, imgPipeline, database, fetcher, publisher, runLog)

	return &app{
		runner:      runner,
		database:    database,
		llmClient:   client,
		imageClient: imageClient,
		analytics:   fetcher,
	}, nil
}

func (a *app) Close() {
	a.llmClient.Close()
	a.imageClient.Close()
	a.database.Close()
	_ = a.analytics.Close()
}
