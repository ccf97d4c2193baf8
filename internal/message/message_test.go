package message

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
)

func sampleReport() *entity.NormalizedReport {
	return &entity.NormalizedReport{
		PersonalInfo: entity.PersonalInfo{FullName: "Петров Пётр Петрович", IIN: "850505400321", Address: "г. Астана"},
		Obligations: []entity.Obligation{
			{Creditor: `ТОО "Альфа-Кредит"`, BalanceKZT: 1_000_000, OverdueDays: 400, ContractsCount: 2},
			{Creditor: "АО Банк", BalanceKZT: 250_000, ContractsCount: 1, LastPaymentDate: "01.02.2024", LastPaymentAmountKZT: 15_000},
		},
		Collaterals: entity.Collaterals{
			Significant: []entity.Collateral{{Creditor: "АО Банк", Kind: "квартира", MarketValueKZT: 5_000_000}},
		},
		Totals:       entity.Totals{Debt: 1_250_000, MonthlyPayment: 55_000, Penalties: 12_000, OverdueCount: 1},
		Dialect:      constants.DialectPKBFull,
		ParseQuality: constants.QualityHigh,
	}
}

func TestRenderRussian(t *testing.T) {
	out := Render(sampleReport(), LocaleRU)
	for _, want := range []string{
		"📊 Итог по вашему кредитному отчёту:",
		"— ФИО: Петров Пётр Петрович",
		"— ИИН: 850505400321",
		"— Всего кредиторов: 2",
		"— Просроченных обязательств: 1",
		"Общая сумма задолженности:",
		"Штрафы и пени:",
		`1. ТОО "Альфа-Кредит" [2 договора]: `,
		"(просрочка 400 дней)",
		"2. АО Банк: ",
		"(без просрочки)",
		"последний платёж:",
		"— квартира (АО Банк): ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("message lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Дата рождения") {
		t.Error("empty personal fields must be skipped")
	}
	if strings.Contains(out, "⚠️") {
		t.Error("high-quality report must not carry the disclaimer")
	}
}

func TestRenderKazakh(t *testing.T) {
	out := Render(sampleReport(), LocaleKK)
	for _, want := range []string{
		"📊 Сіздің несие есебіңіздің қорытындысы:",
		"— Барлық кредиторлар саны: 2",
		"— Мерзімі өткен міндеттемелер: 1",
		"Жалпы берешек сомасы:",
		"Ай сайынғы төлем:",
		"(мерзімі өткен 400 күн)",
		"[2 шарт]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("message lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Итог по вашему") {
		t.Error("Russian heading leaked into Kazakh output")
	}
}

func TestRenderPenaltiesOnlyForFullPKB(t *testing.T) {
	r := sampleReport()
	r.Dialect = constants.DialectGKB
	if strings.Contains(Render(r, LocaleRU), "Штрафы и пени") {
		t.Error("penalties line is specific to full PKB reports")
	}
}

func TestRenderLowQualityDisclaimer(t *testing.T) {
	r := &entity.NormalizedReport{ParseQuality: constants.QualityLow, Dialect: constants.DialectUnknown}
	out := Render(r, LocaleRU)
	if !strings.HasSuffix(out, ru.lowQuality) {
		t.Errorf("low-quality output should end with the disclaimer:\n%s", out)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := sampleReport()
	if a, b := Render(r, LocaleRU), Render(r, LocaleRU); a != b {
		t.Errorf("renders differ:\n%s\n---\n%s", a, b)
	}
}

func TestPluralRU(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "день"}, {2, "дня"}, {4, "дня"}, {5, "дней"}, {11, "дней"},
		{12, "дней"}, {21, "день"}, {22, "дня"}, {111, "дней"}, {400, "дней"},
	}
	for _, tt := range tests {
		if got := pluralRU(tt.n, "день", "дня", "дней"); got != tt.want {
			t.Errorf("pluralRU(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestMoneyGroupsDigits(t *testing.T) {
	got := Money(1_234_567.5, LocaleRU)
	if !strings.HasSuffix(got, " ₸") || strings.Contains(got, "1234567") {
		t.Errorf("Money = %q, want grouped digits", got)
	}
}

func TestParseLocale(t *testing.T) {
	if ParseLocale("kk") != LocaleKK || ParseLocale("kz") != LocaleKK || ParseLocale("") != LocaleRU {
		t.Error("unexpected locale mapping")
	}
}
