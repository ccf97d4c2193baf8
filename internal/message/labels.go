package message

import "golang.org/x/text/language"

// Locale selects the display language.
type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleKK Locale = "kk"
)

// ParseLocale maps "kk"/"kz" to Kazakh and anything else to Russian.
func ParseLocale(s string) Locale {
	switch s {
	case "kk", "kz", "kaz", "kazakh":
		return LocaleKK
	default:
		return LocaleRU
	}
}

func (l Locale) tag() language.Tag {
	if l == LocaleKK {
		return language.Kazakh
	}
	return language.Russian
}

type labels struct {
	title          string
	personal       string
	fullName       string
	iin            string
	birthDate      string
	address        string
	summary        string
	creditors      string
	overdueCount   string
	totalDebt      string
	monthly        string
	penalties      string
	creditorList   string
	noOverdue      string
	lastPayment    string
	collaterals    string
	lowQuality     string
	overdueDays    func(int) string
	contractsCount func(int) string
}

var ru = labels{
	title:          "📊 Итог по вашему кредитному отчёту:",
	personal:       "👤 Личные данные:",
	fullName:       "ФИО:",
	iin:            "ИИН:",
	birthDate:      "Дата рождения:",
	address:        "Адрес:",
	summary:        "📈 Сводка:",
	creditors:      "Всего кредиторов:",
	overdueCount:   "Просроченных обязательств:",
	totalDebt:      "Общая сумма задолженности:",
	monthly:        "Ежемесячный платёж:",
	penalties:      "Штрафы и пени:",
	creditorList:   "🏦 Кредиторы:",
	noOverdue:      "без просрочки",
	lastPayment:    "последний платёж",
	collaterals:    "🏠 Залоговое имущество:",
	lowQuality:     "⚠️ Отчёт распознан не полностью, данные могут быть неточными. Проверьте их вручную.",
	overdueDays:    func(n int) string { return "просрочка " + itoa(n) + " " + pluralRU(n, "день", "дня", "дней") },
	contractsCount: func(n int) string { return itoa(n) + " " + pluralRU(n, "договор", "договора", "договоров") },
}

var kk = labels{
	title:          "📊 Сіздің несие есебіңіздің қорытындысы:",
	personal:       "👤 Жеке деректер:",
	fullName:       "Аты-жөні:",
	iin:            "ЖСН:",
	birthDate:      "Туған күні:",
	address:        "Мекенжайы:",
	summary:        "📈 Жиынтық:",
	creditors:      "Барлық кредиторлар саны:",
	overdueCount:   "Мерзімі өткен міндеттемелер:",
	totalDebt:      "Жалпы берешек сомасы:",
	monthly:        "Ай сайынғы төлем:",
	penalties:      "Айыппұлдар мен өсімпұлдар:",
	creditorList:   "🏦 Кредиторлар:",
	noOverdue:      "мерзімі өтпеген",
	lastPayment:    "соңғы төлем",
	collaterals:    "🏠 Кепілдегі мүлік:",
	lowQuality:     "⚠️ Есеп толық танылмады, деректер дәл болмауы мүмкін. Оларды қолмен тексеріңіз.",
	overdueDays:    func(n int) string { return "мерзімі өткен " + itoa(n) + " күн" },
	contractsCount: func(n int) string { return itoa(n) + " шарт" },
}

func labelsFor(l Locale) labels {
	if l == LocaleKK {
		return kk
	}
	return ru
}

// pluralRU picks the Russian noun form for n: one (1, 21), few (2-4, 22-24) or many.
func pluralRU(n int, one, few, many string) string {
	n %= 100
	if n >= 11 && n <= 14 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	default:
		return many
	}
}
