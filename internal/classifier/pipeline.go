package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chatshot/internal/config"
	"chatshot/internal/imaging"
	"chatshot/internal/label"
	"chatshot/internal/logging"
	"chatshot/internal/prompt"
	"chatshot/internal/services"
	"chatshot/internal/textutil"
)

const (
	StageUpload = "upload"
	StageOCR    = "ocr"
	StagePrompt = "prompt"
	StageLLM    = "llm"
	StageResize = "resize"

	snippetLimit = 120
)

// Recognizer extracts text from an encoded image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Completer returns the model's answer for a rendered prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VisionCompleter returns the model's answer for a prompt plus an image.
type VisionCompleter interface {
	CompleteWithImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error)
}

// PromptSource supplies classification templates.
type PromptSource interface {
	Template(key string) (*prompt.Template, error)
	Vision(visionKey, fallbackKey string) (string, error)
}

// Options tune the pipeline.
type Options struct {
	Mode            string
	ChatMarker      string
	PromptKey       string
	VisionPromptKey string
	VisionWidth     int
	VisionHeight    int
	MaxUploadBytes  int64
}

// OptionsFromConfig derives pipeline options from configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode:            cfg.Classifier.Mode,
		ChatMarker:      cfg.Classifier.ChatMarker,
		PromptKey:       cfg.Classifier.PromptKey,
		VisionPromptKey: cfg.Classifier.VisionPromptKey,
		VisionWidth:     cfg.Classifier.VisionWidth,
		VisionHeight:    cfg.Classifier.VisionHeight,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
	}
}

// Result describes one classification.
type Result struct {
	RequestID  string
	Mode       string
	Label      label.Label
	Classified bool
	// Text is the recognized text (OCR mode only).
	Text string
	// Answer is the raw completion text.
	Answer string
	// FailedStage names the stage that stopped the pipeline.
	FailedStage string
	Duration    time.Duration
}

// Pipeline wires the classification stages together.
type Pipeline struct {
	opts      Options
	ocr       Recognizer
	completer Completer
	vision    VisionCompleter
	prompts   PromptSource
	logger    *slog.Logger
	now       func() time.Time
}

// New constructs a pipeline. ocr may be nil in vision mode; vision may be nil in OCR mode.
func New(opts Options, ocr Recognizer, completer Completer, prompts PromptSource, logger *slog.Logger) (*Pipeline, error) {
	if opts.Mode == "" {
		opts.Mode = config.ModeOCR
	}
	if opts.ChatMarker == "" {
		opts.ChatMarker = label.DefaultMarker
	}
	if prompts == nil {
		return nil, errors.New("classifier: prompt source required")
	}
	p := &Pipeline{
		opts:      opts,
		ocr:       ocr,
		completer: completer,
		prompts:   prompts,
		logger:    logging.NewComponentLogger(logger, "classifier"),
		now:       time.Now,
	}
	switch opts.Mode {
	case config.ModeOCR:
		if ocr == nil || completer == nil {
			return nil, errors.New("classifier: ocr mode requires a recognizer and a completer")
		}
	case config.ModeVision:
		vision, ok := completer.(VisionCompleter)
		if !ok {
			return nil, errors.New("classifier: vision mode requires a vision-capable completer")
		}
		p.vision = vision
		if opts.VisionWidth <= 0 || opts.VisionHeight <= 0 {
			return nil, errors.New("classifier: vision mode requires a positive resize target")
		}
	default:
		return nil, fmt.Errorf("classifier: unsupported mode %q", opts.Mode)
	}
	return p, nil
}

// Mode returns the configured pipeline mode.
func (p *Pipeline) Mode() string { return p.opts.Mode }

// Classify runs the pipeline over an uploaded image.
func (p *Pipeline) Classify(ctx context.Context, data []byte) (Result, error) {
	start := p.now()
	requestID, _ := services.RequestIDFromContext(ctx)
	result := Result{RequestID: requestID, Mode: p.opts.Mode}
	logger := logging.WithContext(ctx, p.logger)

	finish := func(err error) (Result, error) {
		result.Duration = p.now().Sub(start)
		if err != nil {
			result.Classified = false
			result.Label = label.NotChat
			logger.Error("classification failed",
				logging.String(logging.FieldStage, result.FailedStage),
				logging.Duration("duration", result.Duration),
				logging.Error(err),
			)
			return result, err
		}
		result.Classified = true
		logger.Info("classification complete",
			logging.String("label", result.Label.Constant()),
			logging.Duration("duration", result.Duration),
			logging.Int("text_length", len([]rune(result.Text))),
		)
		return result, nil
	}

	img, err := imaging.Prepare(data, p.opts.MaxUploadBytes)
	if err != nil {
		result.FailedStage = StageUpload
		return finish(uploadError(err))
	}
	logger.Debug("upload accepted",
		logging.String("format", img.SourceFormat),
		logging.Int("width", img.Width),
		logging.Int("height", img.Height),
		logging.Int("bytes", len(img.Data)),
	)

	if p.opts.Mode == config.ModeVision {
		return finish(p.classifyVision(ctx, logger, img, &result))
	}
	return finish(p.classifyText(ctx, logger, img, &result))
}

func (p *Pipeline) classifyText(ctx context.Context, logger *slog.Logger, img imaging.Image, result *Result) error {
	stageStart := p.now()
	text, err := p.ocr.Recognize(services.WithStage(ctx, StageOCR), img.Data, img.MIME)
	if err != nil {
		result.FailedStage = StageOCR
		return stageError(ctx, StageOCR, "recognize", err)
	}
	text = textutil.Normalize(text)
	result.Text = text
	logger.Info("ocr complete",
		logging.String(logging.FieldStage, StageOCR),
		logging.Duration("duration", p.now().Sub(stageStart)),
		logging.Int("text_length", len([]rune(text))),
		logging.String("snippet", textutil.Snippet(text, snippetLimit)),
	)

	if textutil.IsBlank(text) {
		logger.Info("no text recognized; skipping completion", logging.String(logging.FieldStage, StageOCR))
		result.Label = label.NotChat
		return nil
	}

	tmpl, err := p.prompts.Template(p.opts.PromptKey)
	if err != nil {
		result.FailedStage = StagePrompt
		return services.Wrap(services.ErrConfiguration, StagePrompt, "load template", p.opts.PromptKey, err)
	}
	rendered, err := tmpl.Render(map[string]string{prompt.VarMessageText: text})
	if err != nil {
		result.FailedStage = StagePrompt
		return services.Wrap(services.ErrConfiguration, StagePrompt, "render template", p.opts.PromptKey, err)
	}

	stageStart = p.now()
	answer, err := p.completer.Complete(services.WithStage(ctx, StageLLM), rendered)
	if err != nil {
		result.FailedStage = StageLLM
		return stageError(ctx, StageLLM, "complete", err)
	}
	return p.applyAnswer(logger, answer, p.now().Sub(stageStart), result)
}

func (p *Pipeline) classifyVision(ctx context.Context, logger *slog.Logger, img imaging.Image, result *Result) error {
	resized, err := imaging.Resize(img, p.opts.VisionWidth, p.opts.VisionHeight)
	if err != nil {
		result.FailedStage = StageResize
		return services.Wrap(services.ErrValidation, StageResize, "resize", "", err)
	}
	logger.Debug("image resized",
		logging.String(logging.FieldStage, StageResize),
		logging.String("from", fmt.Sprintf("%dx%d", img.Width, img.Height)),
		logging.String("to", fmt.Sprintf("%dx%d", resized.Width, resized.Height)),
	)

	text, err := p.prompts.Vision(p.opts.VisionPromptKey, p.opts.PromptKey)
	if err != nil {
		result.FailedStage = StagePrompt
		return services.Wrap(services.ErrConfiguration, StagePrompt, "load vision template", p.opts.VisionPromptKey, err)
	}

	stageStart := p.now()
	answer, err := p.vision.CompleteWithImage(services.WithStage(ctx, StageLLM), text, resized.MIME, resized.Data)
	if err != nil {
		result.FailedStage = StageLLM
		return stageError(ctx, StageLLM, "complete with image", err)
	}
	return p.applyAnswer(logger, answer, p.now().Sub(stageStart), result)
}

func (p *Pipeline) applyAnswer(logger *slog.Logger, answer string, elapsed time.Duration, result *Result) error {
	result.Answer = answer
	if strings.TrimSpace(answer) == "" {
		result.FailedStage = StageLLM
		return services.Wrap(services.ErrExternalService, StageLLM, "complete", "empty answer", nil)
	}
	result.Label = label.FromResponse(answer, p.opts.ChatMarker)
	logger.Info("completion received",
		logging.String(logging.FieldStage, StageLLM),
		logging.Duration("duration", elapsed),
		logging.String("answer", textutil.Snippet(answer, snippetLimit)),
		logging.String("label", result.Label.Constant()),
	)
	return nil
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return services.Wrap(services.ErrTooLarge, StageUpload, "validate", "", err)
	case errors.Is(err, imaging.ErrUnsupported):
		return services.Wrap(services.ErrUnsupported, StageUpload, "validate", "expected png, jpeg or webp", err)
	default:
		return services.Wrap(services.ErrValidation, StageUpload, "validate", "", err)
	}
}

func stageError(ctx context.Context, stage, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return services.Wrap(services.ErrTimeout, stage, op, "", err)
	}
	return services.Wrap(services.ErrExternalService, stage, op, "", err)
}
