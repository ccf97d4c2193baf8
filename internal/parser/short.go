package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/numparse"
	"github.com/joseph-ayodele/credit-report-kz/internal/textscan"
)

const (
	shortHeading  = "ОБЩАЯ ИНФОРМАЦИЯ ПО ОБЯЗАТЕЛЬСТВАМ"
	shortTitle    = "Персональный кредитный отчет (краткая форма)"
	rateHighRisk  = 0.08
	rateOrdinary  = 0.04
	shortMinCells = 4
)

var (
	highRiskWords = []string{"микро", "мфо", "коллект"}
	reDaysCell    = regexp.MustCompile(`^\d+$`)
)

// ShortParser reads the four-column summary table of short-form reports:
// creditor | contract | balance | overdue days.
type ShortParser struct {
	logger *slog.Logger
}

func NewShortParser(logger *slog.Logger) *ShortParser {
	return &ShortParser{logger: logger}
}

func (p *ShortParser) Name() string { return "short" }

func (p *ShortParser) Recognizes(text string) bool {
	return textscan.ContainsAny(text, shortHeading, shortTitle)
}

func (p *ShortParser) Extract(text string) *entity.NormalizedReport {
	r := newReport(text, constants.DialectPKBShort, "russian")
	table := text
	if sec, ok := textscan.Section(text, shortHeading, append([]string{labelTotals}, majorHeadings...)...); ok {
		table = sec
	}
	for _, line := range textscan.Lines(table) {
		if o, ok := parseShortRow(line); ok {
			r.Obligations = append(r.Obligations, o)
		}
	}
	if len(r.Obligations) == 0 {
		r.ParseQuality = constants.QualityLow
	} else {
		// the short form never prints origin dates
		r.ParseQuality = constants.QualityMedium
	}
	p.logger.Debug("short extracted", "obligations", len(r.Obligations))
	return r
}

func parseShortRow(line string) (entity.Obligation, bool) {
	cells := reColumnGap.Split(strings.Trim(line, "| "), -1)
	if len(cells) < shortMinCells {
		return entity.Obligation{}, false
	}
	n := len(cells)
	daysCell := strings.TrimSpace(cells[n-1])
	if daysCell == "-" {
		daysCell = "0"
	}
	balanceCell := cells[n-2]
	if !reDaysCell.MatchString(daysCell) || !reHasDigit.MatchString(balanceCell) {
		return entity.Obligation{}, false
	}
	creditor := strings.TrimSpace(strings.Join(cells[:n-3], " "))
	o := entity.Obligation{
		Creditor:       creditor,
		ContractNumber: strings.TrimSpace(cells[n-3]),
		BalanceKZT:     numparse.Parse(balanceCell),
		OverdueDays:    numparse.ParseInt(daysCell),
		ContractsCount: 1,
	}
	o.MonthlyPaymentKZT = numparse.Round2(o.BalanceKZT * estimateRate(creditor))
	o.Status = entity.StatusFor(o.OverdueDays, constants.StatusCurrent)
	o.RequireString("creditor", &o.Creditor)
	o.RequireString("contract_number", &o.ContractNumber)
	o.RequireString("debt_origin_date", &o.DebtOriginDate)
	return o, true
}

// estimateRate is the share of the balance assumed as a monthly payment.
func estimateRate(creditor string) float64 {
	if textscan.ContainsAny(strings.ToLower(creditor), highRiskWords...) {
		return rateHighRisk
	}
	return rateOrdinary
}
