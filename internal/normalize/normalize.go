// Package normalize applies the post-processing every dialect shares:
// totals reconciliation, collateral attachment, money rounding and
// personal-info synthesis. Normalizing an already normalized report is a no-op.
package normalize

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/numparse"
)

// mismatchToleranceKZT is the allowed gap between the bureau total and the row sum.
const mismatchToleranceKZT = 1.0

type Normalizer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize returns a normalized copy of in. cols replaces the report's
// collaterals when non-nil. A nil obligations list is preserved so the
// engine can reject the report.
func (n *Normalizer) Normalize(in *entity.NormalizedReport, cols *entity.Collaterals) *entity.NormalizedReport {
	if in == nil {
		return nil
	}
	r := clone(in)
	if cols != nil {
		r.Collaterals = entity.Collaterals{
			Significant: append([]entity.Collateral{}, cols.Significant...),
			Excluded:    append([]entity.Collateral{}, cols.Excluded...),
		}
	}
	roundCollaterals(r.Collaterals.Significant)
	roundCollaterals(r.Collaterals.Excluded)

	for i := range r.Obligations {
		normalizeObligation(&r.Obligations[i])
	}
	n.reconcileTotals(r)
	if r.ContractSummary.IsZero() && len(r.Obligations) > 0 {
		r.ContractSummary.ActiveWithOverdue = r.Totals.OverdueCount
		r.ContractSummary.ActiveWithoutOverdue = len(r.Obligations) - r.Totals.OverdueCount
	}
	r.PersonalInfo = normalizePersonal(r.PersonalInfo)
	r.Warnings = dedupe(r.Warnings)
	if r.ParseQuality == "" {
		r.ParseQuality = constants.QualityLow
	}
	return r
}

func normalizeObligation(o *entity.Obligation) {
	o.ClampNonNegative()
	o.BalanceKZT = numparse.Round2(o.BalanceKZT)
	o.MonthlyPaymentKZT = numparse.Round2(o.MonthlyPaymentKZT)
	o.OverdueAmountKZT = numparse.Round2(o.OverdueAmountKZT)
	o.PenaltiesKZT = numparse.Round2(o.PenaltiesKZT)
	o.LastPaymentAmountKZT = numparse.Round2(math.Max(o.LastPaymentAmountKZT, 0))
	if o.ContractsCount < 1 {
		o.ContractsCount = 1
	}
	overdue := strings.HasPrefix(o.Status, constants.StatusOverdue)
	switch {
	case o.OverdueDays > 0 && o.Status != entity.StatusFor(o.OverdueDays, ""):
		o.Status = entity.StatusFor(o.OverdueDays, "")
	case o.OverdueDays == 0 && (o.Status == "" || overdue):
		o.Status = constants.StatusCurrent
	}
}

func (n *Normalizer) reconcileTotals(r *entity.NormalizedReport) {
	t := &r.Totals
	var balances, monthly, overdue, penalties []float64
	overdueCount := 0
	for _, o := range r.Obligations {
		balances = append(balances, o.BalanceKZT)
		monthly = append(monthly, o.MonthlyPaymentKZT)
		overdue = append(overdue, o.OverdueAmountKZT)
		penalties = append(penalties, o.PenaltiesKZT)
		if o.OverdueDays > 0 {
			overdueCount++
		}
	}
	sum := numparse.Sum(balances...)

	t.ObligationCount = len(r.Obligations)
	t.OverdueCount = overdueCount
	if t.Debt <= 0 {
		t.Debt = sum
	}
	if t.MonthlyPayment <= 0 {
		t.MonthlyPayment = numparse.Sum(monthly...)
	}
	if t.OverdueAmount <= 0 {
		t.OverdueAmount = numparse.Sum(overdue...)
	}
	if t.Penalties <= 0 {
		t.Penalties = numparse.Sum(penalties...)
	}
	t.Debt = numparse.Round2(t.Debt)
	t.MonthlyPayment = numparse.Round2(t.MonthlyPayment)
	t.OverdueAmount = numparse.Round2(t.OverdueAmount)
	t.Penalties = numparse.Round2(t.Penalties)

	if t.FromBureau && len(r.Obligations) > 0 && math.Abs(t.Debt-sum) > mismatchToleranceKZT {
		err := common.NewAppError(common.CodeTotalsMismatch,
			fmt.Sprintf("bureau total %.2f, obligations sum %.2f", t.Debt, sum), common.ErrTotalsMismatch)
		n.logger.Warn("totals mismatch", "dialect", r.Dialect, "bureau_debt", t.Debt, "obligations_sum", sum, "err", err)
		r.Warnings = append(r.Warnings, err.UserMessage())
	}
}

func normalizePersonal(p entity.PersonalInfo) entity.PersonalInfo {
	p.FullName = strings.Join(strings.Fields(p.FullName), " ")
	p.LastName = strings.TrimSpace(p.LastName)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.MiddleName = strings.TrimSpace(p.MiddleName)
	p.Address = strings.Join(strings.Fields(p.Address), " ")
	if p.LastName == "" && p.FirstName == "" && p.MiddleName == "" && p.FullName != "" {
		parts := strings.Fields(p.FullName)
		p.LastName = parts[0]
		if len(parts) > 1 {
			p.FirstName = parts[1]
		}
		if len(parts) > 2 {
			p.MiddleName = strings.Join(parts[2:], " ")
		}
	}
	p.SyncFullName()
	if p.IIN = strings.TrimSpace(p.IIN); common.IIN("iin", p.IIN) != nil {
		p.IIN = ""
	}
	return p
}

func roundCollaterals(list []entity.Collateral) {
	for i := range list {
		list[i].MarketValueKZT = numparse.Round2(math.Max(list[i].MarketValueKZT, 0))
	}
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// clone copies every slice so the caller's report is left untouched.
func clone(in *entity.NormalizedReport) *entity.NormalizedReport {
	r := *in
	if in.Obligations != nil {
		r.Obligations = make([]entity.Obligation, len(in.Obligations))
		for i, o := range in.Obligations {
			if o.Errors != nil {
				o.Errors = append([]entity.FieldError(nil), o.Errors...)
			}
			r.Obligations[i] = o
		}
	}
	r.Collaterals = entity.Collaterals{
		Significant: append([]entity.Collateral{}, in.Collaterals.Significant...),
		Excluded:    append([]entity.Collateral{}, in.Collaterals.Excluded...),
	}
	r.Warnings = append([]string(nil), in.Warnings...)
	return &r
}
