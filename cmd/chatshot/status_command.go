package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chatshot/internal/api"
	"chatshot/internal/config"
	"chatshot/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var skipLLM bool

	cmd := &cobra.Command{
		Use:         "status",
		Short:       "Show readiness of paths, prompts and providers",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing credentials are reported as a failed check.
			cfg, path, exists, err := config.LoadUnvalidated(ctx.configPath())
			if err != nil {
				return err
			}
			ctx.applyOverrides(cfg)

			results := []preflight.Result{{Name: "Configuration", Passed: true, Detail: "valid"}}
			if err := cfg.Validate(); err != nil {
				results[0] = preflight.Result{Name: "Configuration", Detail: err.Error()}
			}
			results = append(results, preflight.RunAll(cmd.Context(), cfg, preflight.Options{SkipLLM: skipLLM})...)
			status := api.FromPreflight(cfg.Classifier.Mode, results)

			if jsonOutput {
				if err := writeJSON(cmd, status); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				color := shouldColorize(out)
				source := path
				if !exists {
					source = path + " (not found; defaults used)"
				}
				fmt.Fprintf(out, "Config: %s\nMode:   %s\n", source, cfg.Classifier.Mode)
				fmt.Fprintln(out, renderChecks(status.Checks, color))
			}
			if !status.Ready {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the checks as JSON")
	cmd.Flags().BoolVar(&skipLLM, "no-llm", false, "Skip the live LLM health check")
	return cmd
}
