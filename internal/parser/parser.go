// Package parser turns extracted report text into a NormalizedReport. A chain
// of dialect parsers is tried in order; the first whose predicate accepts the
// text does the extraction and a terminal fallback accepts anything.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
)

// Parser recognizes and extracts one report dialect.
type Parser interface {
	Name() string
	Recognizes(text string) bool
	Extract(text string) *entity.NormalizedReport
}

// Config carries the tunables some dialects need.
type Config struct {
	KazakhAvgBank  float64
	KazakhAvgMFO   float64
	KazakhAvgOther float64
}

func DefaultConfig() Config {
	return Config{KazakhAvgBank: 700_000, KazakhAvgMFO: 200_000, KazakhAvgOther: 250_000}
}

// ConfigFrom copies the parser section of the application config.
func ConfigFrom(c common.ParserConfig) Config {
	return Config{KazakhAvgBank: c.KazakhAvgBank, KazakhAvgMFO: c.KazakhAvgMFO, KazakhAvgOther: c.KazakhAvgOther}
}

type Chain struct {
	parsers []Parser
	logger  *slog.Logger
}

// NewChain builds the standard order: GKB, PKB full, detailed, short, Kazakh, fallback.
func NewChain(cfg Config, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		parsers: []Parser{
			NewGKBParser(logger),
			NewPKBParser(logger),
			NewDetailedParser(logger),
			NewShortParser(logger),
			NewKazakhParser(cfg, logger),
			NewFallbackParser(logger),
		},
		logger: logger,
	}
}

// NewChainWith builds a chain from custom parsers. A fallback is appended
// when the last parser is not one.
func NewChainWith(logger *slog.Logger, parsers ...Parser) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	ps := append([]Parser(nil), parsers...)
	if len(ps) == 0 {
		ps = append(ps, NewFallbackParser(logger))
	} else if _, ok := ps[len(ps)-1].(*FallbackParser); !ok {
		ps = append(ps, NewFallbackParser(logger))
	}
	return &Chain{parsers: ps, logger: logger}
}

// ForDialect builds a chain for a caller who already knows the report
// dialect (loose names such as "pkb" or "kz" are accepted). Detection is
// skipped: the dialect's own parser extracts whatever text it gets. GKB
// tries the bureau layout first and the detailed layout otherwise; UNKNOWN
// goes straight to the fallback.
func ForDialect(name string, cfg Config, logger *slog.Logger) (*Chain, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d, ok := constants.CanonicalizeDialect(name)
	if !ok {
		return nil, common.NewAppError(common.CodeConfig,
			fmt.Sprintf("unknown dialect %q, want one of %s", name, strings.Join(constants.DialectsAsStringSlice(), ", ")),
			common.ErrInvalidInput)
	}
	var ps []Parser
	switch d {
	case constants.DialectGKB:
		ps = []Parser{NewGKBParser(logger), forced{NewDetailedParser(logger)}}
	case constants.DialectPKBFull:
		ps = []Parser{forced{NewPKBParser(logger)}}
	case constants.DialectPKBShort:
		ps = []Parser{forced{NewShortParser(logger)}}
	case constants.DialectKazakh:
		ps = []Parser{forced{NewKazakhParser(cfg, logger)}}
	}
	return NewChainWith(logger, ps...), nil
}

// forced accepts every text on behalf of the wrapped parser.
type forced struct{ Parser }

func (forced) Recognizes(string) bool { return true }

func (c *Chain) Parsers() []Parser {
	return append([]Parser(nil), c.parsers...)
}

// Parse dispatches text to the first parser that recognizes it and returns
// its report together with the parser name.
func (c *Chain) Parse(text string) (*entity.NormalizedReport, string) {
	for _, p := range c.parsers {
		if !p.Recognizes(text) {
			c.logger.Debug("parser declined", "parser", p.Name())
			continue
		}
		c.logger.Debug("parser matched", "parser", p.Name(), "text_len", len(text))
		report := p.Extract(text)
		if _, ok := p.(*FallbackParser); ok {
			report.Warnings = append(report.Warnings, common.NewAppError(common.CodeDialectUnrecognized,
				"формат отчёта не распознан, данные извлечены частично", common.ErrDialectUnrecognized).UserMessage())
			c.logger.Warn("dialect unrecognized, fallback parser used", "obligations", len(report.Obligations))
		}
		for i, o := range report.Obligations {
			if len(o.Errors) > 0 {
				c.logger.Debug("obligation fields unextractable", "parser", p.Name(), "index", i, "errors", o.Errors)
			}
		}
		return report, p.Name()
	}
	// unreachable with a fallback in place
	fb := NewFallbackParser(c.logger)
	return fb.Extract(text), fb.Name()
}
