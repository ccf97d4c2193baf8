package parser

import (
	"log/slog"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/textscan"
)

// DetailedParser reads state-bureau style reports that carry the detailed
// active-contracts section but too few of the bureau's own markers.
type DetailedParser struct {
	logger *slog.Logger
}

func NewDetailedParser(logger *slog.Logger) *DetailedParser {
	return &DetailedParser{logger: logger}
}

func (p *DetailedParser) Name() string { return "detailed" }

func (p *DetailedParser) Recognizes(text string) bool {
	return textscan.ContainsAny(text, headingActiveDetailed)
}

func (p *DetailedParser) Extract(text string) *entity.NormalizedReport {
	r := newReport(text, constants.DialectGKB, "russian")
	for _, b := range textscan.Split(activeSection(text, headingActiveDetailed), reContractRU) {
		f := readContract(b.Text, russianLabels)
		balance := firstNonZero(f.Unpaid, f.Upcoming, f.Used)
		if balance == 0 && f.OverdueAmount > 0 {
			balance = f.OverdueAmount
		}
		r.Obligations = append(r.Obligations, f.obligation(balance, constants.StatusCurrent))
	}
	r.ParseQuality = gradeBlocks(r)
	p.logger.Debug("detailed extracted", "obligations", len(r.Obligations), "quality", r.ParseQuality)
	return r
}
