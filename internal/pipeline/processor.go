// Package pipeline wires extraction, parsing, normalization and the
// bankruptcy engine into one request-scoped call per report.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/bankruptcy"
	"github.com/joseph-ayodele/credit-report-kz/internal/collateral"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/ingest"
	"github.com/joseph-ayodele/credit-report-kz/internal/message"
	"github.com/joseph-ayodele/credit-report-kz/internal/normalize"
	"github.com/joseph-ayodele/credit-report-kz/internal/ocr"
	"github.com/joseph-ayodele/credit-report-kz/internal/opener"
	"github.com/joseph-ayodele/credit-report-kz/internal/parser"
	"github.com/joseph-ayodele/credit-report-kz/internal/repository"
	"github.com/joseph-ayodele/credit-report-kz/internal/schema"
)

// Extraction is the text extractor's metadata for one report.
type Extraction struct {
	Method     string   `json:"method"`
	Pages      int      `json:"pages"`
	Language   string   `json:"language,omitempty"`
	DurationMS int64    `json:"duration_ms"`
	Confidence float32  `json:"confidence"`
	Chars      int      `json:"chars"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Result is the outcome of one report.
type Result struct {
	RequestID      string                   `json:"request_id"`
	SHA256         string                   `json:"sha256"`
	Source         string                   `json:"source"`
	Extraction     Extraction               `json:"extraction"`
	Parser         string                   `json:"parser"`
	Report         *entity.NormalizedReport `json:"report"`
	Recommendation entity.Recommendation    `json:"recommendation"`
	Message        string                   `json:"message"`
	// Warnings are pipeline-level notes, e.g. an incomplete letter payload.
	Warnings []string `json:"warnings,omitempty"`
	// Cached is set when the result came from the store instead of a fresh run.
	Cached bool `json:"cached,omitempty"`
}

// Request names one report to process.
type Request struct {
	Path   string
	Source string // shown in results; defaults to Path
	Force  bool   // ignore a stored result for the same content
	SHA256 string // precomputed content hash, optional
}

type Processor struct {
	logger  *slog.Logger
	extract *ExtractStage
	analyze *AnalyzeStage
	results repository.ResultRepository
	opener  opener.Opener
	locale  message.Locale
	debug   bool
}

type Option func(*Processor)

// WithExtractor replaces the OCR extractor, mainly for tests.
func WithExtractor(tx TextExtractor) Option {
	return func(p *Processor) { p.extract = NewExtractStage(tx, p.logger) }
}

// WithChain replaces the parser chain.
func WithChain(c *parser.Chain) Option {
	return func(p *Processor) { p.analyze.Chain = c }
}

// WithResultStore enables caching and persistence by content hash.
func WithResultStore(r repository.ResultRepository) Option {
	return func(p *Processor) { p.results = r }
}

// WithOpener enables ProcessLocation for remote inputs.
func WithOpener(o opener.Opener) Option {
	return func(p *Processor) { p.opener = o }
}

// NewProcessor builds every stage from cfg.
func NewProcessor(cfg *common.Config, logger *slog.Logger, opts ...Option) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine, err := bankruptcy.NewEngine(bankruptcy.ConfigFrom(cfg.Engine), logger)
	if err != nil {
		return nil, err
	}
	classifier := collateral.NewClassifier(cfg.Engine.CollateralThresholdKZT, cfg.Engine.PawnshopKeywords)
	p := &Processor{
		logger:  logger,
		extract: NewExtractStage(ocr.NewExtractor(ocr.FromAppConfig(cfg.OCR), logger), logger),
		analyze: &AnalyzeStage{
			Collateral: collateral.NewExtractor(classifier, logger),
			Chain:      parser.NewChain(parser.ConfigFrom(cfg.Parser), logger),
			Normalizer: normalize.New(logger),
			Engine:     engine,
			Logger:     logger,
		},
		locale: message.ParseLocale(cfg.Locale),
		debug:  cfg.DebugMode,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// ProcessFile runs the whole pipeline for the PDF at path.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	return p.Process(ctx, Request{Path: path})
}

// Process runs the pipeline for req. Extraction failures abort with an
// EXTRACTION_FAILED error; everything after extraction degrades instead.
func (p *Processor) Process(ctx context.Context, req Request) (res *Result, err error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	log := common.LoggerFrom(ctx, p.logger)
	defer func() {
		if rec := recover(); rec != nil {
			attrs := []any{"path", req.Path, "panic", rec}
			if p.debug {
				attrs = append(attrs, "stack", string(debug.Stack()))
			}
			log.Error("pipeline panicked", attrs...)
			res, err = nil, common.NewAppError(common.CodeInternal, fmt.Sprint(rec), common.ErrInternal)
		}
	}()

	if req.Source == "" {
		req.Source = req.Path
	}
	if req.SHA256 == "" {
		if req.SHA256, _, err = ingest.HashFile(req.Path); err != nil {
			return nil, common.ExtractionFailed("cannot read file", err)
		}
	}
	ctx = common.WithContentHash(ctx, req.SHA256)

	if p.results != nil && !req.Force {
		if cached, ok := p.cached(ctx, req, reqID); ok {
			log.Info("result served from store", "path", req.Path, "sha256", req.SHA256)
			return cached, nil
		}
	}

	extracted, meta, err := p.extract.Run(ctx, req.Path)
	if err != nil {
		if p.debug {
			log.Debug("extraction error detail", "stack", string(debug.Stack()))
		}
		return nil, err
	}

	a := p.analyze.Run(ctx, extracted.Text)
	res = &Result{
		RequestID:      reqID,
		SHA256:         req.SHA256,
		Source:         req.Source,
		Extraction:     meta,
		Parser:         a.Parser,
		Report:         a.Report,
		Recommendation: a.Recommendation,
		Message:        message.Render(a.Report, p.locale),
	}
	if err := schema.ValidateLetterPayload(a.Report); err != nil {
		log.Warn("letter payload incomplete", "error", err)
		res.Warnings = append(res.Warnings, err.Error())
	}

	if p.results != nil {
		p.store(ctx, res, req.Force)
	}
	return res, nil
}

// ProcessReader spools r to a temporary file and processes it. name supplies
// the extension and the display source.
func (p *Processor) ProcessReader(ctx context.Context, name string, r io.Reader) (*Result, error) {
	ext := filepath.Ext(name)
	if constants.MapExtToFormat(ext) != constants.PDF {
		return nil, common.ExtractionFailed("unsupported file type "+ext, nil)
	}
	tmp, err := os.CreateTemp("", "ckz-in-*"+ext)
	if err != nil {
		return nil, common.NewAppError(common.CodeInternal, "temp file", err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			p.logger.Warn("failed to remove temp file", "path", tmp.Name(), "error", rmErr)
		}
	}()

	hash, _, err := ingest.HashReader(io.TeeReader(r, tmp))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, common.ExtractionFailed("cannot read input", err)
	}
	return p.Process(ctx, Request{Path: tmp.Name(), Source: name, SHA256: hash})
}

// ProcessLocation opens a local path, https URL or s3://bucket/key and processes it.
func (p *Processor) ProcessLocation(ctx context.Context, location string) (*Result, error) {
	if p.opener == nil || !opener.IsRemote(location) {
		return p.ProcessFile(ctx, location)
	}
	rc, meta, err := p.opener.Open(ctx, location)
	if err != nil {
		return nil, common.ExtractionFailed("cannot open "+location, err)
	}
	defer rc.Close()
	res, err := p.ProcessReader(ctx, meta.Name, rc)
	if res != nil {
		res.Source = location
	}
	return res, err
}

func (p *Processor) cached(ctx context.Context, req Request, reqID string) (*Result, bool) {
	row, err := p.results.GetByHash(ctx, req.SHA256)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			p.logger.Warn("result store lookup failed", "sha256", req.SHA256, "error", err)
		}
		return nil, false
	}
	res := &Result{RequestID: reqID, SHA256: req.SHA256, Source: req.Source, Cached: true}
	if err := json.Unmarshal(row.Report, &res.Report); err != nil {
		p.logger.Warn("stored report undecodable, reprocessing", "sha256", req.SHA256, "error", err)
		return nil, false
	}
	if err := json.Unmarshal(row.Recommendation, &res.Recommendation); err != nil {
		p.logger.Warn("stored recommendation undecodable, reprocessing", "sha256", req.SHA256, "error", err)
		return nil, false
	}
	res.Message = message.Render(res.Report, p.locale)
	return res, true
}

func (p *Processor) store(ctx context.Context, res *Result, replace bool) {
	rep, err := json.Marshal(res.Report)
	if err != nil {
		p.logger.Error("failed to encode report", "error", err)
		return
	}
	rcm, err := json.Marshal(res.Recommendation)
	if err != nil {
		p.logger.Error("failed to encode recommendation", "error", err)
		return
	}
	_, _, err = p.results.Upsert(ctx, repository.StoredResult{
		ContentHash:    res.SHA256,
		SourcePath:     res.Source,
		Dialect:        string(res.Report.Dialect),
		Procedure:      string(res.Recommendation.Procedure),
		ParseQuality:   string(res.Report.ParseQuality),
		Report:         rep,
		Recommendation: rcm,
	}, replace)
	if err != nil {
		// persistence is outside the core; the caller still gets the result
		res.Warnings = append(res.Warnings, "result not stored: "+err.Error())
	}
}
