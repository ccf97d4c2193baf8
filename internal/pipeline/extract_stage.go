package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/ocr"
)

// TextExtractor is satisfied by *ocr.Extractor; tests substitute fixed text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// ExtractStage runs text extraction and records its metadata.
type ExtractStage struct {
	TextExtractor TextExtractor
	Logger        *slog.Logger
}

func NewExtractStage(tx TextExtractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{TextExtractor: tx, Logger: logger}
}

// Run returns the text of the PDF at path. Only an unreadable file is an error.
func (s *ExtractStage) Run(ctx context.Context, path string) (ocr.Result, Extraction, error) {
	log := common.LoggerFrom(ctx, s.Logger)
	res, err := s.TextExtractor.Extract(ctx, path)
	if err != nil {
		log.Error("extraction failed", "path", path, "error", err)
		return res, Extraction{}, err
	}
	meta := Extraction{
		Method:     res.Method,
		Pages:      res.Pages,
		Language:   res.Language,
		DurationMS: res.Duration.Milliseconds(),
		Confidence: res.Confidence,
		Warnings:   res.Warnings,
		Chars:      len([]rune(res.Text)),
	}
	log.Debug("extraction ok",
		"path", path,
		"method", meta.Method,
		"pages", meta.Pages,
		"confidence", meta.Confidence,
		"duration_ms", meta.DurationMS)
	return res, meta, nil
}
