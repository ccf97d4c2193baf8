package entity

import (
	"fmt"

	"github.com/joseph-ayodele/credit-report-kz/constants"
)

// FieldError records one field of an obligation that could not be read.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Obligation is one credit contract, or a group of contracts held by one
// creditor when the dialect merges them.
type Obligation struct {
	Creditor             string       `json:"creditor"`
	ContractNumber       string       `json:"contract_number"`
	DebtOriginDate       string       `json:"debt_origin_date"`
	FinancingType        string       `json:"financing_type,omitempty"`
	BalanceKZT           float64      `json:"balance_kzt"`
	MonthlyPaymentKZT    float64      `json:"monthly_payment_kzt"`
	OverdueAmountKZT     float64      `json:"overdue_amount_kzt"`
	OverdueDays          int          `json:"overdue_days"`
	PenaltiesKZT         float64      `json:"penalties_kzt"`
	Status               string       `json:"status"`
	LastPaymentAmountKZT float64      `json:"last_payment_amount_kzt,omitempty"`
	LastPaymentDate      string       `json:"last_payment_date,omitempty"`
	InterestRatePct      float64      `json:"interest_rate_pct,omitempty"`
	ContractsCount       int          `json:"contracts_count"`
	Errors               []FieldError `json:"errors,omitempty"`
}

// AddError appends a FieldUnextractable note for field.
func (o *Obligation) AddError(field, message string) {
	o.Errors = append(o.Errors, FieldError{Field: field, Message: message})
}

// RequireString replaces an empty value with the NOT_FOUND sentinel and records the miss.
func (o *Obligation) RequireString(field string, value *string) {
	if *value == "" {
		*value = constants.NotFound
		o.AddError(field, "not found in report")
	}
}

// StatusFor derives the status marker from overdue days. base is used when
// the obligation is not overdue ("current" or "active" depending on dialect).
func StatusFor(overdueDays int, base string) string {
	if overdueDays > 0 {
		return fmt.Sprintf("%s %d days", constants.StatusOverdue, overdueDays)
	}
	return base
}

// ClampNonNegative forces the money and day fields to be >= 0.
func (o *Obligation) ClampNonNegative() {
	if o.BalanceKZT < 0 {
		o.BalanceKZT = 0
	}
	if o.OverdueAmountKZT < 0 {
		o.OverdueAmountKZT = 0
	}
	if o.OverdueDays < 0 {
		o.OverdueDays = 0
	}
	if o.MonthlyPaymentKZT < 0 {
		o.MonthlyPaymentKZT = 0
	}
	if o.PenaltiesKZT < 0 {
		o.PenaltiesKZT = 0
	}
}
