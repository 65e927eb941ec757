package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chatshot/internal/classifier"
	"chatshot/internal/config"
	"chatshot/internal/logging"
	"chatshot/internal/ocrcache"
	"chatshot/internal/prompt"
	"chatshot/internal/services/llm"
	"chatshot/internal/services/yandexocr"
)

// pipelineDeps owns the resources behind an assembled pipeline.
type pipelineDeps struct {
	pipeline *classifier.Pipeline
	cache    *ocrcache.Store
}

func (d *pipelineDeps) Close() error {
	if d.cache != nil {
		return d.cache.Close()
	}
	return nil
}

func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipelineDeps, error) {
	deps := &pipelineDeps{}

	var recognizer classifier.Recognizer
	if cfg.Classifier.Mode != config.ModeVision {
		ocr := yandexocr.NewClient(yandexocr.Config{
			APIKey:         cfg.OCR.APIKey,
			FolderID:       cfg.OCR.FolderID,
			URL:            cfg.OCR.URL,
			Model:          cfg.OCR.Model,
			LanguageCodes:  cfg.OCR.LanguageCodes,
			DataLogging:    cfg.OCR.DataLogging,
			TimeoutSeconds: cfg.OCR.TimeoutSeconds,
		})
		recognizer = ocr
		if cfg.Cache.Enabled {
			store, err := ocrcache.Open(ctx, cfg.Cache.Path, time.Duration(cfg.Cache.TTLHours)*time.Hour)
			if err != nil {
				return nil, fmt.Errorf("open ocr cache: %w", err)
			}
			deps.cache = store
			recognizer = ocrcache.NewCachedRecognizer(ocr, store, cfg.OCR.LanguageCodes, logger)
		}
	}

	completer, err := llm.New(ctx, cfg.GetLLM())
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	pipeline, err := classifier.New(
		classifier.OptionsFromConfig(cfg),
		recognizer,
		completer,
		prompt.FileSource{Path: cfg.Paths.PromptsFile},
		logger,
	)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.pipeline = pipeline

	logger.Debug("pipeline assembled",
		logging.String("mode", cfg.Classifier.Mode),
		logging.String("llm_provider", completer.Name()),
		logging.Bool("ocr_cache", cfg.Cache.Enabled),
		logging.String("prompts_file", cfg.Paths.PromptsFile),
	)
	return deps, nil
}
