// Package bankruptcy maps a normalized debt portfolio to one of the three
// personal-bankruptcy procedures. Rules, first match wins:
//
//	max overdue days <= minimum          -> restoration
//	debt < threshold, no significant pledge -> extrajudicial
//	otherwise                            -> judicial
package bankruptcy

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/collateral"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/message"
	"github.com/joseph-ayodele/credit-report-kz/internal/numparse"
)

// Reason codes.
const (
	ReasonInsufficientOverdue   = "insufficient_overdue"
	ReasonEligible              = "eligible_extrajudicial"
	ReasonDebtAboveThreshold    = "debt_above_threshold"
	ReasonSignificantCollateral = "significant_collateral"
	ReasonDebtAndCollateral     = "debt_above_threshold_and_significant_collateral"
	ReasonMalformedReport       = "malformed_report"
)

// Condition names.
const (
	CondOverdue    = "max_overdue_days_above_minimum"
	CondDebt       = "total_debt_below_threshold"
	CondCollateral = "no_significant_collateral"
)

type Engine struct {
	cfg        Config
	classifier collateral.Classifier
	logger     *slog.Logger
}

// NewEngine reads the constants once; they do not change for the engine's lifetime.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.PawnshopKeywords = append([]string(nil), cfg.PawnshopKeywords...)
	return &Engine{
		cfg:        cfg,
		classifier: collateral.NewClassifier(cfg.CollateralThresholdKZT, cfg.PawnshopKeywords),
		logger:     logger,
	}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Evaluate returns the recommendation for r. A malformed report yields the
// error form of Recommendation together with a CALCULATOR_ERROR.
func (e *Engine) Evaluate(r *entity.NormalizedReport) (entity.Recommendation, error) {
	if err := e.check(r); err != nil {
		e.logger.Warn("report rejected by engine", "err", err)
		return errorRecommendation(err), err
	}

	maxDays := r.MaxOverdueDays()
	debt := totalDebt(r)
	threshold := e.cfg.Threshold()
	significant, excluded := e.reclassify(r.Collaterals)

	overdueOK := maxDays > e.cfg.MinOverdueDays
	debtOK := debt < threshold
	collateralOK := len(significant) == 0

	rec := entity.Recommendation{
		ConditionsChecked: []entity.Condition{
			{Name: CondOverdue, Passed: overdueOK, Value: float64(maxDays), Limit: float64(e.cfg.MinOverdueDays)},
			{Name: CondDebt, Passed: debtOK, Value: debt, Limit: threshold},
			{Name: CondCollateral, Passed: collateralOK, Value: float64(len(significant)), Limit: 0},
		},
	}

	switch {
	case !overdueOK:
		rec.Procedure = constants.ProcedureRestoration
		rec.ReasonCode = ReasonInsufficientOverdue
		rec.Rationale = fmt.Sprintf("Максимальная просрочка составляет %d дн. и не превышает %d дн. "+
			"Оснований для банкротства пока нет, подходит процедура восстановления платёжеспособности.",
			maxDays, e.cfg.MinOverdueDays)
	case debtOK && collateralOK:
		rec.Procedure = constants.ProcedureExtrajudicial
		rec.ReasonCode = ReasonEligible
		rec.Rationale = fmt.Sprintf("Просрочка %d дн. превышает %d дн., общая задолженность %s меньше порога %s "+
			"(%s МРП), значимого залогового имущества нет. Доступно внесудебное банкротство.",
			maxDays, e.cfg.MinOverdueDays, money(debt), money(threshold), trimFloat(e.cfg.ThresholdMRPMultiplier))
	default:
		rec.Procedure = constants.ProcedureJudicial
		var clauses []string
		if !debtOK {
			clauses = append(clauses, fmt.Sprintf("общая задолженность %s не меньше порога %s", money(debt), money(threshold)))
		}
		if !collateralOK {
			clauses = append(clauses, fmt.Sprintf("имеется значимое залоговое имущество (%d)", len(significant)))
		}
		switch {
		case !debtOK && !collateralOK:
			rec.ReasonCode = ReasonDebtAndCollateral
		case !debtOK:
			rec.ReasonCode = ReasonDebtAboveThreshold
		default:
			rec.ReasonCode = ReasonSignificantCollateral
		}
		rec.Rationale = "Внесудебная процедура недоступна: " + strings.Join(clauses, "; ") +
			". Требуется судебное банкротство."
	}

	rec.NextSteps = nextSteps(rec.Procedure, e.cfg.MinOverdueDays)
	rec.Warnings = e.warnings(r, debt, significant, excluded)

	e.logger.Info("recommendation computed",
		"procedure", rec.Procedure, "reason", rec.ReasonCode,
		"max_overdue_days", maxDays, "debt", debt, "significant_collaterals", len(significant))
	return rec, nil
}

func (e *Engine) check(r *entity.NormalizedReport) error {
	if r == nil {
		return common.CalculatorError("report is nil")
	}
	v := common.NewValidator().Field("obligations", r.Obligations, common.NotNil)
	for i, o := range r.Obligations {
		prefix := fmt.Sprintf("obligations[%d].", i)
		v.Field(prefix+"balance_kzt", o.BalanceKZT, common.NonNegative).
			Field(prefix+"overdue_amount_kzt", o.OverdueAmountKZT, common.NonNegative).
			Field(prefix+"overdue_days", o.OverdueDays, common.NonNegative)
	}
	if v.HasErrors() {
		return common.NewAppError(common.CodeCalculator, v.ErrorMessage(), common.ErrCalculator)
	}
	return nil
}

// reclassify applies the engine's own threshold and keywords, which may be
// stricter than those the extractor ran with.
func (e *Engine) reclassify(c entity.Collaterals) (significant, excluded []entity.Collateral) {
	part := e.classifier.Partition(c.Significant)
	return part.Significant, append(part.Excluded, c.Excluded...)
}

func (e *Engine) warnings(r *entity.NormalizedReport, debt float64, significant, excluded []entity.Collateral) []string {
	var out []string
	if r.ParseQuality == constants.QualityLow && debt == 0 {
		out = append(out, incompleteInputs)
	}
	if names := unverifiedCreditors(r.Obligations); len(names) > 0 {
		out = append(out, "Кредиторы с остатком долга, но без просрочки: "+strings.Join(names, ", ")+
			". Проверьте статус этих договоров.")
	}
	if len(significant) > 0 {
		items := make([]string, 0, len(significant))
		for _, c := range significant {
			items = append(items, fmt.Sprintf("%s (%s, %s)", c.Kind, c.Creditor, money(c.MarketValueKZT)))
		}
		out = append(out, "Значимое залоговое имущество: "+strings.Join(items, "; ")+".")
	}
	if len(excluded) > 0 {
		out = append(out, fmt.Sprintf("Не учтено как значимый залог (ломбард или стоимость ниже %s): %d.",
			money(e.cfg.CollateralThresholdKZT), len(excluded)))
	}
	return append(out, disclaimer)
}

// unverifiedCreditors lists, once each and in report order, creditors with
// a balance but no overdue days.
func unverifiedCreditors(obs []entity.Obligation) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, o := range obs {
		if o.BalanceKZT <= 0 || o.OverdueDays != 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(o.Creditor))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, o.Creditor)
	}
	return names
}

// totalDebt prefers the report total and falls back to the balance sum.
func totalDebt(r *entity.NormalizedReport) float64 {
	if r.Totals.Debt > 0 {
		return r.Totals.Debt
	}
	balances := make([]float64, 0, len(r.Obligations))
	for _, o := range r.Obligations {
		balances = append(balances, o.BalanceKZT)
	}
	return numparse.Sum(balances...)
}

func errorRecommendation(err error) entity.Recommendation {
	return entity.Recommendation{
		ReasonCode:        ReasonMalformedReport,
		Rationale:         common.UserMessageOf(err),
		ConditionsChecked: []entity.Condition{},
		NextSteps:         []string{},
		Warnings:          []string{disclaimer},
		Error:             err.Error(),
	}
}

func money(v float64) string { return message.Money(v, message.LocaleRU) }

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
