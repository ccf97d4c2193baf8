package entity

import (
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/constants"
)

// RawReport is extracted text plus the dialect the chain recognized.
type RawReport struct {
	Text    string            `json:"text"`
	Dialect constants.Dialect `json:"dialect"`
}

// PersonalInfo describes the borrower. All fields are optional.
type PersonalInfo struct {
	FullName         string `json:"full_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	MiddleName       string `json:"middle_name,omitempty"`
	IIN              string `json:"iin,omitempty"`
	BirthDate        string `json:"birth_date,omitempty"`
	Address          string `json:"address,omitempty"`
	IDDocumentNumber string `json:"id_document_number,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
}

// SyncFullName rebuilds FullName from the name parts when any part is set.
func (p *PersonalInfo) SyncFullName() {
	var parts []string
	for _, s := range []string{p.LastName, p.FirstName, p.MiddleName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		p.FullName = strings.Join(parts, " ")
	}
}

// Totals are either the bureau's own figures or sums over obligations.
type Totals struct {
	Debt            float64 `json:"debt"`
	MonthlyPayment  float64 `json:"monthly_payment"`
	OverdueAmount   float64 `json:"overdue_amount"`
	Penalties       float64 `json:"penalties"`
	ObligationCount int     `json:"obligation_count"`
	OverdueCount    int     `json:"overdue_count"`
	// FromBureau is set when Debt was read from the report's own totals row.
	FromBureau bool `json:"from_bureau,omitempty"`
}

type ContractSummary struct {
	ActiveWithoutOverdue    int `json:"active_without_overdue"`
	ActiveWithOverdue       int `json:"active_with_overdue"`
	CompletedWithoutOverdue int `json:"completed_without_overdue"`
	CompletedWithOverdue    int `json:"completed_with_overdue"`
}

func (c ContractSummary) IsZero() bool {
	return c == ContractSummary{}
}

// NormalizedReport is the dialect-independent view of one credit report.
type NormalizedReport struct {
	PersonalInfo    PersonalInfo           `json:"personal_info"`
	Obligations     []Obligation           `json:"obligations"`
	Collaterals     Collaterals            `json:"collaterals"`
	Totals          Totals                 `json:"totals"`
	ContractSummary ContractSummary        `json:"contract_summary"`
	Dialect         constants.Dialect      `json:"dialect"`
	Language        string                 `json:"language"`
	ParseQuality    constants.ParseQuality `json:"parse_quality"`
	Warnings        []string               `json:"warnings,omitempty"`
}

// MaxOverdueDays returns the largest overdue_days across obligations.
func (r *NormalizedReport) MaxOverdueDays() int {
	maxDays := 0
	for _, o := range r.Obligations {
		if o.OverdueDays > maxDays {
			maxDays = o.OverdueDays
		}
	}
	return maxDays
}

// CreditorCount counts distinct creditor names, preserving nothing but the count.
func (r *NormalizedReport) CreditorCount() int {
	seen := make(map[string]struct{}, len(r.Obligations))
	for _, o := range r.Obligations {
		seen[strings.ToLower(strings.TrimSpace(o.Creditor))] = struct{}{}
	}
	return len(seen)
}

// HasSentinels reports whether any obligation still carries a NOT_FOUND marker.
func (r *NormalizedReport) HasSentinels() bool {
	for _, o := range r.Obligations {
		if o.ContractNumber == constants.NotFound || o.DebtOriginDate == constants.NotFound || o.Creditor == constants.NotFound {
			return true
		}
	}
	return false
}
