// Package ocr turns a credit-report PDF into flowing text. Layout-aware
// extraction is tried first, then simpler text-layer readers, and finally
// page rasterization with tesseract for scanned reports.
package ocr

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
)

// Extraction methods reported in Result.Method.
const (
	MethodLayout      = "layout"
	MethodLayoutAlt   = "layout-alt"
	MethodPdftotext   = "pdftotext"
	MethodPlain       = "plain"
	MethodOCR         = "ocr"
	MethodOCREmbedded = "ocr-embedded"
)

// DefaultKeywords mark text that looks like a credit report.
var DefaultKeywords = []string{"кредит", "обязательство", "долг", "банк"}

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages   []string // tesseract packs, joined with "+"; default rus+kaz
	DPI         int      // rasterization DPI for scanned PDFs, default 300
	MaxPages    int      // 0 = no limit
	PageTimeout time.Duration
	TessdataDir string

	MinChars   int      // below this the text is not satisfactory, default 500
	Keywords   []string // at least one must occur, default DefaultKeywords
	Preprocess bool     // grayscale/contrast/sharpen pages before OCR
	PSM        int
}

// FromAppConfig copies the OCR section of the application config.
func FromAppConfig(c common.OCRConfig) Config {
	return Config{
		Pdftotext:   c.Pdftotext,
		Pdftoppm:    c.Pdftoppm,
		Tesseract:   c.Tesseract,
		Languages:   c.Languages,
		DPI:         c.DPI,
		MaxPages:    c.MaxPages,
		PageTimeout: c.PageTimeout,
		TessdataDir: c.TessdataDir,
		Preprocess:  true,
	}
}

type Result struct {
	Text       string
	Pages      int
	Method     string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32 // tesseract mean word confidence, or a text heuristic
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner, mainly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"rus", "kaz"}
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PageTimeout < 30*time.Second {
		cfg.PageTimeout = 45 * time.Second
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = 500
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) lang() string { return strings.Join(e.cfg.Languages, "+") }

// Extract returns the text of the PDF at path. Only an unreadable or
// non-PDF file is an error; poor extraction yields short or empty text.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if constants.MapExtToFormat(ext) != constants.PDF {
		return Result{}, common.ExtractionFailed("unsupported file type "+ext, nil)
	}
	pages, err := e.validate(path)
	if err != nil {
		e.logger.Error("pdf unreadable", "path", path, "error", err)
		return Result{}, err
	}
	res := e.extract(ctx, path, pages)
	res.Duration = time.Since(start)
	e.logger.Info("text extracted",
		"path", path, "method", res.Method, "pages", res.Pages,
		"chars", len([]rune(res.Text)), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (e *Extractor) extract(ctx context.Context, path string, pages int) Result {
	best := Result{Pages: pages}
	consider := func(text, method string) bool {
		text = Normalize(text)
		if len(text) > len(best.Text) {
			best.Text, best.Method = text, method
		}
		return e.satisfactory(text)
	}

	for i, params := range LayoutPresets {
		text, n, err := layoutExtract(path, params)
		if err != nil {
			best.Warnings = append(best.Warnings, "layout: "+err.Error())
			break
		}
		if n > 0 {
			best.Pages = n
		}
		method := MethodLayout
		if i > 0 {
			method = MethodLayoutAlt
		}
		if consider(text, method) {
			e.logger.Debug("layout extraction accepted", "preset", params.Name)
			return e.finish(best)
		}
	}

	if text, n, warns, err := e.pdfToText(ctx, path); err != nil {
		best.Warnings = append(best.Warnings, warns...)
		e.logger.Debug("pdftotext unavailable", "error", err)
	} else {
		if best.Pages == 0 {
			best.Pages = n
		}
		if consider(text, MethodPdftotext) {
			return e.finish(best)
		}
	}
	if text, err := plainText(path); err == nil && consider(text, MethodPlain) {
		return e.finish(best)
	}

	e.logger.Info("text layer insufficient, running ocr", "path", path, "chars", len(best.Text))
	text, n, conf, warns, err := e.pdfToOCR(ctx, path, best.Pages)
	best.Warnings = append(best.Warnings, warns...)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			best.Warnings = append(best.Warnings, err.Error())
		}
		text, n, conf, warns, err = e.embeddedImagesOCR(ctx, path)
		best.Warnings = append(best.Warnings, warns...)
		if err != nil {
			best.Warnings = append(best.Warnings, err.Error())
		} else if consider(text, MethodOCREmbedded) || best.Method == MethodOCREmbedded {
			best.Confidence = conf
		}
	} else if consider(text, MethodOCR) || best.Method == MethodOCR {
		best.Confidence = conf
	}
	if best.Pages == 0 {
		best.Pages = n
	}
	return e.finish(best)
}

func (e *Extractor) finish(r Result) Result {
	if r.Method == MethodOCR || r.Method == MethodOCREmbedded {
		r.Language = e.lang()
	}
	if r.Confidence == 0 && r.Text != "" {
		r.Confidence = heuristicConfidence(r.Text)
	}
	return r
}

// satisfactory is the acceptance test for extracted text: long enough and
// mentioning at least one report keyword.
func (e *Extractor) satisfactory(text string) bool {
	if len([]rune(text)) < e.cfg.MinChars {
		return false
	}
	lower := strings.ToLower(text)
	for _, k := range e.cfg.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
