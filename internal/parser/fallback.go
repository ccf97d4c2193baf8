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

var (
	reFallbackName = regexp.MustCompile(`(?m)^\s*(?:ФИО|Ф\.И\.О\.|Заемщик|Аты-жөні)\s*:?\s*([А-ЯЁӘӨҰҚҢҮҺІ][а-яёәөұқңүһі]+(?:\s+[А-ЯЁӘӨҰҚҢҮҺІ][а-яёәөұқңүһі]+){1,2})`)
	reFallbackDays = regexp.MustCompile(`(?i)просроч\D{0,30}?(\d{1,4})\s*(?:дн|день|дня)`)
)

// FallbackParser accepts any text and salvages names, creditors and sums.
type FallbackParser struct {
	logger *slog.Logger
}

func NewFallbackParser(logger *slog.Logger) *FallbackParser {
	return &FallbackParser{logger: logger}
}

func (p *FallbackParser) Name() string { return "fallback" }

func (p *FallbackParser) Recognizes(string) bool { return true }

func (p *FallbackParser) Extract(text string) *entity.NormalizedReport {
	r := newReport(text, constants.DialectUnknown, "russian")
	if r.PersonalInfo.FullName == "" {
		if m := reFallbackName.FindStringSubmatch(text); len(m) > 1 {
			r.PersonalInfo.FullName = strings.Join(strings.Fields(m[1]), " ")
		}
	}

	for _, b := range textscan.Split(text, reCreditorLine) {
		creditor := firstCell(textscan.LabelValue(b.Text, "Кредитор:"))
		if creditor == "" {
			continue
		}
		window := strings.Join(firstLines(b.Text, 6), "\n")
		amounts := kztAmounts(window)
		o := entity.Obligation{
			Creditor:       creditor,
			ContractNumber: firstCell(textscan.LabelValue(window, russianLabels.contract...)),
			DebtOriginDate: textscan.Date(window),
			ContractsCount: 1,
		}
		if len(amounts) > 0 {
			o.BalanceKZT = amounts[0]
		}
		if m := reFallbackDays.FindStringSubmatch(window); len(m) > 1 {
			o.OverdueDays = numparse.ParseInt(m[1])
		}
		o.Status = entity.StatusFor(o.OverdueDays, constants.StatusCurrent)
		o.RequireString("contract_number", &o.ContractNumber)
		o.RequireString("debt_origin_date", &o.DebtOriginDate)
		r.Obligations = append(r.Obligations, o)
	}

	if len(r.Obligations) == 0 {
		var largest float64
		for _, a := range kztAmounts(text) {
			if a > largest {
				largest = a
			}
		}
		r.Totals.Debt = largest
	}
	r.ParseQuality = constants.QualityLow
	p.logger.Debug("fallback extracted", "obligations", len(r.Obligations), "debt", r.Totals.Debt)
	return r
}

func firstLines(text string, n int) []string {
	lines := strings.SplitN(text, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
