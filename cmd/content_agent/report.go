package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [month]",
	Short: "Generate the monthly analytics report",
	Long:  `Fetches the monthly analytics snapshot, asks the analyst for a summary and stores the report. The month argument uses YYYY-MM format; when omitted the previous month is used.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

var reportConfigPath string

func init() {
	reportCmd.Flags().StringVar(&reportConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(reportConfigPath)
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

	month := ""
	if len(args) > 0 {
		month = args[0]
	}

	report, err := application.runner.RunMonthlyReport(ctx, month)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	fmt.Printf("monthly report for %s stored\n\n%s\n", report.Month, report.Analysis)
	return nil
}
