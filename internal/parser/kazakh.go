package parser

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/textscan"
)

var (
	bankWords = []string{"банк", "bank"}
	mfoWords  = []string{"мфо", "микро", "мқұ", "микроқаржы"}
)

// KazakhParser reads Kazakh-language reports.
type KazakhParser struct {
	cfg    Config
	logger *slog.Logger
}

func NewKazakhParser(cfg Config, logger *slog.Logger) *KazakhParser {
	return &KazakhParser{cfg: cfg, logger: logger}
}

func (p *KazakhParser) Name() string { return "kazakh" }

func (p *KazakhParser) Recognizes(text string) bool {
	return strings.Contains(text, headingKazakhActive) && !strings.Contains(text, headingActiveDetailed)
}

func (p *KazakhParser) Extract(text string) *entity.NormalizedReport {
	r := newReport(text, constants.DialectKazakh, "kazakh")
	for _, b := range textscan.Split(activeSection(text, headingKazakhActive), reObligationKZ) {
		f := readContract(b.Text, kazakhLabels)
		balance := firstNonZero(f.Unpaid, f.Upcoming, f.Used)
		if balance == 0 && f.OverdueAmount > 0 {
			balance = f.OverdueAmount
		}
		estimated := false
		if balance == 0 && f.OverdueDays > 0 {
			balance = p.averageFor(f.Creditor)
			estimated = true
		}
		o := f.obligation(balance, constants.StatusCurrent)
		if estimated {
			o.AddError("balance_kzt", "balance missing, substituted creditor-type average")
			p.logger.Debug("kazakh balance estimated", "creditor", f.Creditor, "balance", balance)
		}
		r.Obligations = append(r.Obligations, o)
	}
	r.ParseQuality = gradeBlocks(r)
	return r
}

func (p *KazakhParser) averageFor(creditor string) float64 {
	name := strings.ToLower(creditor)
	switch {
	case textscan.ContainsAny(name, mfoWords...):
		return p.cfg.KazakhAvgMFO
	case textscan.ContainsAny(name, bankWords...):
		return p.cfg.KazakhAvgBank
	default:
		return p.cfg.KazakhAvgOther
	}
}
