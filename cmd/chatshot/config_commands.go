package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chatshot/internal/config"
	"chatshot/internal/prompt"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var promptsPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file and prompt templates",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(targetPath, config.DefaultConfigPath)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			prompts, err := resolveTarget(promptsPath, func() (string, error) {
				return config.ExpandPath(config.Default().Paths.PromptsFile)
			})
			if err != nil {
				return fmt.Errorf("resolve prompts path: %w", err)
			}
			wrote, err := prompt.WriteSample(prompts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			if wrote {
				fmt.Fprintf(out, "Wrote sample prompts to %s\n", prompts)
			} else {
				fmt.Fprintf(out, "Kept existing prompts at %s\n", prompts)
			}
			fmt.Fprintln(out, "Set YANDEX_OCR_API_KEY, CATALOG_ID and OPENAI_API_KEY (or edit the file) before running chatshot.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&promptsPath, "prompts", "", "Destination for the prompt templates")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func resolveTarget(value string, fallback func() (string, error)) (string, error) {
	target := strings.TrimSpace(value)
	if target == "" {
		return fallback()
	}
	return config.ExpandPath(target)
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Mode: %s, LLM provider: %s (%s)\n", cfg.Classifier.Mode, cfg.LLM.Provider, cfg.LLM.Model)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
