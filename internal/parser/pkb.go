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

var pkbMarkers = []string{
	headingPKBFull,
	"ПЕРСОНАЛЬНЫЙ КРЕДИТНЫЙ РЕЙТИНГ",
	"ДОГОВОРЫ В КРЕДИТНОЙ ИСТОРИИ",
}

const (
	pkbTableHeading  = "ДЕЙСТВУЮЩИЕ ДОГОВОРЫ"
	pkbHistory       = "ДОГОВОРЫ В КРЕДИТНОЙ ИСТОРИИ"
	pkbDetailHeading = "ДЕТАЛЬНАЯ ИНФОРМАЦИЯ ПО ДОГОВОРАМ"
)

var (
	reKZTAmount   = regexp.MustCompile(`(?:^|\s)(\d+(?:[ \x{00A0}]\d{3})*(?:[.,]\d{1,2})?)\s*(?:KZT|₸)`)
	reRowDate     = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
	reSplitDays   = regexp.MustCompile(`KZT\s+(\d{1,3})(?:[ \x{00A0}](\d{3}))?\s+(?:0(?:[.,]0{1,2})?\s*KZT|-)`)
	reLooseDays   = regexp.MustCompile(`(?:^|\s)(\d{3,4})(?:\s|$)`)
	reHasDigit    = regexp.MustCompile(`\d`)
	reDetailHead  = regexp.MustCompile(`(?m)^[ \t]*Номер договора:`)
	detailDaysLbl = []string{"Количество дней просрочки:"}
)

// pkbTotals are the six positional amounts of the bureau's totals row.
type pkbTotals struct {
	ContractSum     float64
	PeriodicPayment float64
	UnpaidAmount    float64
	OverdueAmount   float64
	PenaltiesUnused float64
	Penalties       float64
}

// PKBParser reads full reports of the first credit bureau. The bureau's own
// totals row is authoritative for the report totals.
type PKBParser struct {
	logger *slog.Logger
}

func NewPKBParser(logger *slog.Logger) *PKBParser {
	return &PKBParser{logger: logger}
}

func (p *PKBParser) Name() string { return "pkb_full" }

func (p *PKBParser) Recognizes(text string) bool {
	return textscan.ContainsAny(text, pkbMarkers...)
}

func (p *PKBParser) Extract(text string) *entity.NormalizedReport {
	r := newReport(text, constants.DialectPKBFull, "russian")

	table, detail := p.splitTable(text)
	var rows []entity.Obligation
	for _, line := range strings.Split(table, "\n") {
		if strings.Contains(line, labelTotals) {
			continue
		}
		if o, ok := p.parseRow(line, detail); ok {
			rows = append(rows, o)
		}
	}
	r.Obligations = groupByCreditor(rows)

	if totals, ok := parseTotalsRow(table); ok {
		r.Totals = entity.Totals{
			Debt:           totals.OverdueAmount,
			MonthlyPayment: totals.PeriodicPayment,
			OverdueAmount:  totals.OverdueAmount,
			Penalties:      totals.Penalties,
			FromBureau:     true,
		}
	} else {
		p.logger.Debug("pkb totals row not found or short")
	}

	switch {
	case len(r.Obligations) == 0:
		r.ParseQuality = constants.QualityLow
	case r.Totals.FromBureau && !r.HasSentinels():
		r.ParseQuality = constants.QualityHigh
	default:
		r.ParseQuality = constants.QualityMedium
	}
	p.logger.Debug("pkb extracted", "rows", len(rows), "groups", len(r.Obligations), "bureau_totals", r.Totals.FromBureau)
	return r
}

// splitTable returns the active-contracts table text and the detail section after it.
func (p *PKBParser) splitTable(text string) (table, detail string) {
	start := strings.Index(text, pkbTableHeading)
	if start < 0 {
		start = strings.Index(text, pkbHistory)
	}
	if start < 0 {
		start = 0
	}
	rest := text[start:]
	end := len(rest)
	if i := strings.Index(rest, labelTotals); i >= 0 {
		// keep the totals line inside the table, it is skipped row-wise
		if nl := strings.Index(rest[i:], "\n"); nl >= 0 {
			end = i + nl
		}
	}
	for _, h := range append([]string{pkbDetailHeading}, majorHeadings...) {
		if i := strings.Index(rest, h); i > 0 && i < end {
			end = i
		}
	}
	table = rest[:end]
	detail = rest[end:]
	if i := strings.Index(text, pkbDetailHeading); i >= 0 {
		detail = text[i:]
	}
	return table, detail
}

// parseTotalsRow reads the amounts of the "Итого:" row of the active-contracts
// table, so pass the table text only. Six amounts map to
// the full column set; with five the unused-penalties column is taken as absent.
func parseTotalsRow(text string) (pkbTotals, bool) {
	i := strings.Index(text, labelTotals)
	if i < 0 {
		return pkbTotals{}, false
	}
	line, _, _ := strings.Cut(text[i+len(labelTotals):], "\n")
	amounts := kztAmounts(line)
	switch {
	case len(amounts) >= 6:
		return pkbTotals{
			ContractSum:     amounts[0],
			PeriodicPayment: amounts[1],
			UnpaidAmount:    amounts[2],
			OverdueAmount:   amounts[3],
			PenaltiesUnused: amounts[4],
			Penalties:       amounts[5],
		}, true
	case len(amounts) == 5:
		return pkbTotals{
			ContractSum:     amounts[0],
			PeriodicPayment: amounts[1],
			UnpaidAmount:    amounts[2],
			OverdueAmount:   amounts[3],
			Penalties:       amounts[4],
		}, true
	}
	return pkbTotals{}, false
}

func kztAmounts(s string) []float64 {
	var out []float64
	for _, m := range reKZTAmount.FindAllStringSubmatch(s, -1) {
		out = append(out, numparse.Parse(m[1]))
	}
	return out
}

// parseRow reads one line of the active-contracts table:
// creditor, contract number, start date, then KZT amounts with overdue days
// printed between the overdue amount and the penalty columns.
func (p *PKBParser) parseRow(line, detail string) (entity.Obligation, bool) {
	loc := reRowDate.FindStringIndex(line)
	if loc == nil {
		return entity.Obligation{}, false
	}
	tail := line[loc[1]:]
	amounts := kztAmounts(tail)
	if len(amounts) < 2 {
		return entity.Obligation{}, false
	}
	creditor, contract := splitCreditorContract(strings.TrimSpace(line[:loc[0]]))

	o := entity.Obligation{
		Creditor:       creditor,
		ContractNumber: contract,
		DebtOriginDate: line[loc[0]:loc[1]],
		ContractsCount: 1,
	}
	at := func(i int) float64 {
		if i < len(amounts) {
			return amounts[i]
		}
		return 0
	}
	o.MonthlyPaymentKZT = at(1)
	unpaid := at(2)
	o.OverdueAmountKZT = at(3)
	if len(amounts) >= 5 {
		o.PenaltiesKZT = amounts[len(amounts)-1]
	}
	o.BalanceKZT = unpaid
	if unpaid == 0 {
		o.BalanceKZT = o.OverdueAmountKZT
	}
	o.OverdueDays = overdueDays(tail, contract, detail)
	o.Status = entity.StatusFor(o.OverdueDays, constants.StatusCurrent)
	o.RequireString("creditor", &o.Creditor)
	o.RequireString("contract_number", &o.ContractNumber)
	o.ClampNonNegative()
	return o, true
}

func splitCreditorContract(prefix string) (creditor, contract string) {
	if cells := reColumnGap.Split(prefix, -1); len(cells) >= 2 {
		last := strings.TrimSpace(cells[len(cells)-1])
		if reHasDigit.MatchString(last) {
			return strings.TrimSpace(strings.Join(cells[:len(cells)-1], " ")), last
		}
		return strings.Join(strings.Fields(prefix), " "), ""
	}
	fields := strings.Fields(prefix)
	if len(fields) >= 2 && reHasDigit.MatchString(fields[len(fields)-1]) {
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
	return strings.Join(fields, " "), ""
}

// overdueDays tries, in order: the detail section's labelled count, the
// "KZT d1 d2 (0 KZT|-)" pattern with the two digit groups joined, and an
// isolated 3-4 digit number between 100 and 3000 outside any KZT sum.
func overdueDays(rowTail, contract, detail string) int {
	if window, ok := detailWindow(detail, contract); ok {
		if d := textscan.LabelInt(window, detailDaysLbl...); d > 0 {
			return d
		}
	}
	if m := reSplitDays.FindStringSubmatch(rowTail); m != nil {
		if d := numparse.ParseInt(m[1] + m[2]); d > 0 {
			return d
		}
	}
	stripped := reKZTAmount.ReplaceAllString(textscan.StripDates(rowTail), " ")
	if contract != "" {
		stripped = strings.ReplaceAll(stripped, contract, " ")
	}
	for _, m := range reLooseDays.FindAllStringSubmatch(stripped, -1) {
		if d := numparse.ParseInt(m[1]); d >= 100 && d <= 3000 {
			return d
		}
	}
	return 0
}

// detailWindow returns the detail block of one contract: from its own
// "Номер договора:" line up to the next contract header. The number must fill
// the header line, so AK-1 never lands in the block of AK-10.
func detailWindow(detail, contract string) (string, bool) {
	if contract == "" || detail == "" {
		return "", false
	}
	re, err := regexp.Compile(`(?m)^[ \t]*Номер договора:[ \t]*` + regexp.QuoteMeta(contract) + `[ \t]*$`)
	if err != nil {
		return "", false
	}
	loc := re.FindStringIndex(detail)
	if loc == nil {
		return "", false
	}
	window := detail[loc[1]:]
	if next := reDetailHead.FindStringIndex(window); next != nil {
		window = window[:next[0]]
	}
	return window, true
}

func hasContract(list, contract string) bool {
	for _, c := range strings.Split(list, ",") {
		if strings.TrimSpace(c) == contract {
			return true
		}
	}
	return false
}

// groupByCreditor merges rows whose creditor names share a grouping key.
// Groups keep first-seen order; the display name is the longest original form.
func groupByCreditor(rows []entity.Obligation) []entity.Obligation {
	out := make([]entity.Obligation, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		key := CreditorKey(row.Creditor)
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, row)
			continue
		}
		g := &out[i]
		g.Creditor = longerName(g.Creditor, row.Creditor)
		if row.ContractNumber != constants.NotFound && !hasContract(g.ContractNumber, row.ContractNumber) {
			if g.ContractNumber == constants.NotFound {
				g.ContractNumber = row.ContractNumber
			} else {
				g.ContractNumber += ", " + row.ContractNumber
			}
		}
		g.BalanceKZT += row.BalanceKZT
		g.MonthlyPaymentKZT += row.MonthlyPaymentKZT
		g.OverdueAmountKZT += row.OverdueAmountKZT
		g.PenaltiesKZT += row.PenaltiesKZT
		if row.OverdueDays > g.OverdueDays {
			g.OverdueDays = row.OverdueDays
		}
		g.ContractsCount += row.ContractsCount
		g.Errors = append(g.Errors, row.Errors...)
		g.Status = entity.StatusFor(g.OverdueDays, constants.StatusCurrent)
	}
	return out
}
