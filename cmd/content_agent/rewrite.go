package main

import (
	"context"
	"fmt"
	"time"

	"github.com/recipepocket/content-agent/internal/pipeline"
	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <article-id>",
	Short: "Re-run the rewrite and review cycle for a stored article",
	Long:  `Loads a persisted article, revises it against its latest review feedback, reviews the revision and regenerates images if approved.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRewrite,
}

var rewriteConfigPath string

func init() {
	rewriteCmd.Flags().StringVar(&rewriteConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(rewriteConfigPath)
	if err != nil {
		return err
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
		ImageModel:   cfg.ImageModel,
		SkipImages:   cfg.SkipImages,
		AppContext:   cfg.AppContext,
		StageTimeout: time.Duration(cfg.StageTimeoutSeconds) * time.Second,
	}

	draft, err := application.runner.ManualRewrite(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("rewrite failed: %w", err)
	}

	fmt.Printf("article %s rewritten: %s (%s)\n", draft.ID, draft.Title(), draft.Status)
	return nil
}
