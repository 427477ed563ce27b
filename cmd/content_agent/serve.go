package main

import (
	"context"
	"time"

	"github.com/recipepocket/content-agent/internal/pipeline"
	"github.com/recipepocket/content-agent/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for triggering pipeline runs, manual rewrites and monthly reports.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	srv, err := server.New(server.Config{
		Port:     cfg.Port,
		Runner:   application.runner,
		Database: application.database,
		Defaults: pipeline.RunOptions{
			Articles:     cfg.Articles,
			ImageModel:   cfg.ImageModel,
			SkipImages:   cfg.SkipImages,
			AutoPublish:  cfg.AutoPublish,
			AppContext:   cfg.AppContext,
			StageTimeout: time.Duration(cfg.StageTimeoutSeconds) * time.Second,
		},
	})
	if err != nil {
		return err
	}

	return srv.Start()
}
