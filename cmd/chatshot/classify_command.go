package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"chatshot/internal/api"
	"chatshot/internal/services"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showText bool

	cmd := &cobra.Command{
		Use:   "classify <image>",
		Short: "Classify an image file as chat or not-chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			deps, err := buildPipeline(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			runCtx := services.WithRequestID(cmd.Context(), uuid.NewString())
			result, classifyErr := deps.pipeline.Classify(runCtx, data)
			resp := api.FromResult(result, classifyErr)

			if jsonOutput {
				if err := writeJSON(cmd, resp); err != nil {
					return err
				}
			} else {
				printVerdict(cmd, args[0], resp, result.Text, showText)
			}
			if classifyErr != nil {
				return errors.New("classification failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the verdict as JSON")
	cmd.Flags().BoolVar(&showText, "text", false, "Include the recognized text")
	return cmd
}

func printVerdict(cmd *cobra.Command, path string, resp api.ClassifyResponse, text string, showText bool) {
	out := cmd.OutOrStdout()
	color := shouldColorize(out)

	verdict := resp.Label
	switch {
	case !resp.Classified:
		verdict = colorize("NOT CLASSIFIED", ansiRed, color)
	case resp.IsChat:
		verdict = colorize(verdict, ansiGreen, color)
	}

	fields := [][2]string{
		{"File", path},
		{"Verdict", verdict},
		{"Message", resp.Message},
		{"Processing time", fmt.Sprintf("%.2fs", resp.ProcessingTime().Seconds())},
		{"Text length", strconv.Itoa(resp.TextLength)},
		{"Request ID", resp.RequestID},
	}
	if resp.FailedStage != "" {
		fields = append(fields, [2]string{"Failed stage", resp.FailedStage})
	}
	if resp.Error != "" {
		fields = append(fields, [2]string{"Error", resp.Error})
	}
	if showText && text != "" {
		fields = append(fields, [2]string{"Text", text})
	}
	fmt.Fprintln(out, renderFields(fields))
}
