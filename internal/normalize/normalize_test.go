package normalize

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func ob(creditor string, balance float64, days int) entity.Obligation {
	return entity.Obligation{
		Creditor:       creditor,
		ContractNumber: "C-" + creditor,
		DebtOriginDate: "01.01.2020",
		BalanceKZT:     balance,
		OverdueDays:    days,
		Status:         entity.StatusFor(days, constants.StatusCurrent),
	}
}

func TestNormalizeFillsTotals(t *testing.T) {
	in := &entity.NormalizedReport{
		Obligations: []entity.Obligation{
			ob("A", 2_000_000, 500),
			ob("B", 1_500_000, 400),
			ob("C", 800_000, 600),
		},
		Dialect:      constants.DialectGKB,
		ParseQuality: constants.QualityHigh,
	}
	r := New(quiet()).Normalize(in, nil)
	if r.Totals.Debt != 4_300_000 {
		t.Errorf("debt = %v, want 4300000", r.Totals.Debt)
	}
	if r.Totals.OverdueCount != 3 || r.Totals.ObligationCount != 3 {
		t.Errorf("counts = %+v", r.Totals)
	}
	if r.ContractSummary.ActiveWithOverdue != 3 {
		t.Errorf("contract summary = %+v", r.ContractSummary)
	}
	for _, o := range r.Obligations {
		if o.ContractsCount != 1 {
			t.Errorf("contracts_count = %d, want 1", o.ContractsCount)
		}
	}
	if in.Totals.Debt != 0 {
		t.Error("input report was modified")
	}
}

func TestNormalizeRoundsAndClamps(t *testing.T) {
	in := &entity.NormalizedReport{
		Obligations: []entity.Obligation{{
			Creditor:          "X",
			BalanceKZT:        1234.5678,
			MonthlyPaymentKZT: -5,
			OverdueAmountKZT:  10.005,
			OverdueDays:       -3,
			Status:            "overdue 3 days",
		}},
	}
	r := New(quiet()).Normalize(in, nil)
	o := r.Obligations[0]
	if o.BalanceKZT != 1234.57 || o.MonthlyPaymentKZT != 0 || o.OverdueAmountKZT != 10.01 {
		t.Errorf("money = %v %v %v", o.BalanceKZT, o.MonthlyPaymentKZT, o.OverdueAmountKZT)
	}
	if o.OverdueDays != 0 || o.Status != constants.StatusCurrent {
		t.Errorf("days %d status %q", o.OverdueDays, o.Status)
	}
	if r.ParseQuality != constants.QualityLow {
		t.Errorf("missing quality should default to low, got %q", r.ParseQuality)
	}
}

func TestNormalizeKeepsBureauTotals(t *testing.T) {
	in := &entity.NormalizedReport{
		Obligations: []entity.Obligation{ob("A", 100, 400), ob("B", 200, 0)},
		Totals:      entity.Totals{Debt: 5000, FromBureau: true},
	}
	r := New(quiet()).Normalize(in, nil)
	if r.Totals.Debt != 5000 {
		t.Errorf("bureau debt overwritten: %v", r.Totals.Debt)
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one totals mismatch note", r.Warnings)
	}

	in.Totals.Debt = 300.5
	if r := New(quiet()).Normalize(in, nil); len(r.Warnings) != 0 {
		t.Errorf("gap within tolerance should not warn: %v", r.Warnings)
	}
}

func TestNormalizeAttachesCollaterals(t *testing.T) {
	in := &entity.NormalizedReport{
		Obligations: []entity.Obligation{ob("A", 1, 400)},
		Collaterals: entity.Collaterals{Significant: []entity.Collateral{{Creditor: "old"}}},
	}
	cols := &entity.Collaterals{
		Significant: []entity.Collateral{{Creditor: "Bank", Kind: "квартира", MarketValueKZT: 5_000_000.004}},
	}
	r := New(quiet()).Normalize(in, cols)
	want := entity.Collaterals{
		Significant: []entity.Collateral{{Creditor: "Bank", Kind: "квартира", MarketValueKZT: 5_000_000}},
		Excluded:    []entity.Collateral{},
	}
	if diff := cmp.Diff(want, r.Collaterals); diff != "" {
		t.Errorf("collaterals (-want +got):\n%s", diff)
	}
	if r := New(quiet()).Normalize(in, nil); r.Collaterals.Significant[0].Creditor != "old" {
		t.Error("nil collaterals should keep the report's own")
	}
}

func TestNormalizePersonalInfo(t *testing.T) {
	tests := []struct {
		name string
		in   entity.PersonalInfo
		want entity.PersonalInfo
	}{
		{
			name: "split full name",
			in:   entity.PersonalInfo{FullName: "  Ким  Виктор Олегович ", IIN: "900101300123"},
			want: entity.PersonalInfo{FullName: "Ким Виктор Олегович", LastName: "Ким", FirstName: "Виктор", MiddleName: "Олегович", IIN: "900101300123"},
		},
		{
			name: "parts win over full name",
			in:   entity.PersonalInfo{FullName: "other", LastName: "Сейітов", FirstName: "Нұрлан"},
			want: entity.PersonalInfo{FullName: "Сейітов Нұрлан", LastName: "Сейітов", FirstName: "Нұрлан"},
		},
		{
			name: "bad iin dropped",
			in:   entity.PersonalInfo{IIN: "12345"},
			want: entity.PersonalInfo{},
		},
		{
			name: "ocr letter in iin dropped",
			in:   entity.PersonalInfo{IIN: " 90010130012O "},
			want: entity.PersonalInfo{},
		},
		{
			name: "iin trimmed",
			in:   entity.PersonalInfo{IIN: " 900101300123 "},
			want: entity.PersonalInfo{IIN: "900101300123"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, normalizePersonal(tt.in)); diff != "" {
				t.Errorf("personal info (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := New(quiet())
	inputs := []*entity.NormalizedReport{
		{
			Obligations:  []entity.Obligation{ob("A", 100.123, 400), ob("B", 0, 0)},
			Totals:       entity.Totals{Debt: 9999, FromBureau: true},
			PersonalInfo: entity.PersonalInfo{FullName: "Петров Пётр"},
			Warnings:     []string{"x", "x"},
		},
		{Obligations: []entity.Obligation{}},
		{},
	}
	for i, in := range inputs {
		once := n.Normalize(in, nil)
		twice := n.Normalize(once, nil)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("input %d: second pass changed report (-once +twice):\n%s", i, diff)
		}
	}
}

func TestNormalizePreservesMissingObligations(t *testing.T) {
	r := New(quiet()).Normalize(&entity.NormalizedReport{}, nil)
	if r.Obligations != nil {
		t.Error("nil obligations must stay nil")
	}
	if New(quiet()).Normalize(nil, nil) != nil {
		t.Error("nil report should normalize to nil")
	}
}
