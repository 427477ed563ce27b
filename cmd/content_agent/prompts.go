package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recipepocket/content-agent/internal/llm"
	"github.com/recipepocket/content-agent/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the agent prompt templates",
	Long:  `Lists every agent role with the first line of its active template, marking roles whose embedded default is replaced by a prompt_overrides entry in the config file.`,
	RunE:  runPrompts,
}

var promptsConfigPath string

func init() {
	promptsCmd.Flags().StringVar(&promptsConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(_ *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(promptsConfigPath)
	if err != nil {
		return err
	}

	keys, err := prompts.List(prompts.AgentsFile)
	if err != nil {
		return err
	}
	for key := range cfg.PromptOverrides {
		if cfg.PromptOverrides[key] == "" {
			continue
		}
		if _, err := prompts.Get(prompts.AgentsFile, key); err != nil {
			keys = append(keys, key) // override-only role
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		tmpl := cfg.PromptOverrides[key]
		source := "override"
		if tmpl == "" {
			tmpl, err = prompts.Get(prompts.AgentsFile, key)
			if err != nil {
				return err
			}
			source = "default"
		}
		firstLine, _, _ := strings.Cut(strings.TrimSpace(tmpl), "\n")
		fmt.Printf("%-16s %-9s %s\n", key, source, llm.Truncate(firstLine, 80))
	}
	return nil
}
