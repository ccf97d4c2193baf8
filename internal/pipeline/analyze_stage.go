package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/credit-report-kz/internal/bankruptcy"
	"github.com/joseph-ayodele/credit-report-kz/internal/collateral"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/normalize"
	"github.com/joseph-ayodele/credit-report-kz/internal/parser"
)

// Analysis is everything derived from the extracted text.
type Analysis struct {
	Parser         string
	Report         *entity.NormalizedReport
	Recommendation entity.Recommendation
}

// AnalyzeStage turns text into a normalized report and a recommendation:
// collaterals, then the parser chain, the normalizer and the engine.
type AnalyzeStage struct {
	Collateral *collateral.Extractor
	Chain      *parser.Chain
	Normalizer *normalize.Normalizer
	Engine     *bankruptcy.Engine
	Logger     *slog.Logger
}

func (s *AnalyzeStage) Run(ctx context.Context, text string) Analysis {
	log := common.LoggerFrom(ctx, s.Logger)

	cols := s.Collateral.ExtractPartitioned(text)
	raw, name := s.Chain.Parse(text)
	report := s.Normalizer.Normalize(raw, &cols)
	log.Info("report parsed",
		"parser", name,
		"dialect", report.Dialect,
		"obligations", len(report.Obligations),
		"quality", report.ParseQuality)

	rec, err := s.Engine.Evaluate(report)
	if err != nil {
		// the error form of the recommendation is still returned to the caller
		if errors.Is(err, common.ErrCalculator) {
			log.Warn("engine rejected report", "error", err)
		} else {
			log.Error("engine failed", "error", err)
		}
	} else {
		log.Info("recommendation ready", "procedure", rec.Procedure, "reason", rec.ReasonCode)
	}
	return Analysis{Parser: name, Report: report, Recommendation: rec}
}
