package ocrcache

import (
	"context"
	"log/slog"
	"strings"

	"chatshot/internal/imaging"
	"chatshot/internal/logging"
)

// Recognizer extracts text from an encoded image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// CachedRecognizer consults the store before delegating to the wrapped recognizer.
// Cache failures are logged and never fail a recognition.
type CachedRecognizer struct {
	next      Recognizer
	store     *Store
	languages string
	logger    *slog.Logger
}

// NewCachedRecognizer wraps next with store. languages partitions entries so a
// change of OCR languages does not serve stale text.
func NewCachedRecognizer(next Recognizer, store *Store, languages []string, logger *slog.Logger) *CachedRecognizer {
	return &CachedRecognizer{
		next:      next,
		store:     store,
		languages: strings.Join(languages, ","),
		logger:    logging.NewComponentLogger(logger, "ocr-cache"),
	}
}

// Recognize returns cached text for image when present, otherwise calls through and stores the result.
func (c *CachedRecognizer) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	digest := imaging.Digest(image)
	logger := logging.WithContext(ctx, c.logger)

	if text, ok, err := c.store.Get(ctx, digest, c.languages); err != nil {
		logging.WarnWithContext(logger, "ocr cache read failed", "cache_read_failed", "check cache.path permissions", logging.Error(err))
	} else if ok {
		logger.Debug("ocr cache hit", logging.String("digest", digest[:12]))
		return text, nil
	}

	text, err := c.next.Recognize(ctx, image, mimeType)
	if err != nil {
		return "", err
	}
	if err := c.store.Put(ctx, digest, c.languages, text); err != nil {
		logging.WarnWithContext(logger, "ocr cache write failed", "cache_write_failed", "check cache.path permissions", logging.Error(err))
	}
	return text, nil
}
