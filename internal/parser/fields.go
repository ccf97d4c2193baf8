package parser

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/textscan"
)

const (
	headingActiveDetailed = "ПОДРОБНАЯ ИНФОРМАЦИЯ ПО ДЕЙСТВУЮЩИМ ДОГОВОРАМ"
	headingPKBFull        = "ПОЛНЫЙ ПЕРСОНАЛЬНЫЙ КРЕДИТНЫЙ ОТЧЕТ"
	headingKazakhActive   = "ҚОЛДАНЫСТАҒЫ ШАРТТАР"
	labelTotals           = "Итого:"
)

// majorHeadings end an active-contracts section.
var majorHeadings = []string{
	"ПОДРОБНАЯ ИНФОРМАЦИЯ ПО ЗАВЕРШЕННЫМ ДОГОВОРАМ",
	"ИНФОРМАЦИЯ ПО ЗАВЕРШЕННЫМ ДОГОВОРАМ",
	"ЗАВЕРШЕННЫЕ ДОГОВОРЫ",
	"ИНФОРМАЦИЯ О ЗАПРОСАХ",
	"КОЛИЧЕСТВО ЗАПРОСОВ",
	"ДОПОЛНИТЕЛЬНАЯ ИНФОРМАЦИЯ",
	"АЯҚТАЛҒАН ШАРТТАР",
	"СҰРАУЛАР ТУРАЛЫ АҚПАРАТ",
}

var (
	reObligationRU = regexp.MustCompile(`(?m)^[ \t]*(?:Обязательство|ОБЯЗАТЕЛЬСТВО)\s+№?\s*\d+`)
	reContractRU   = regexp.MustCompile(`(?m)^[ \t]*(?:Обязательство|ОБЯЗАТЕЛЬСТВО|КОНТРАКТ|Контракт)\s+№?\s*\d+`)
	reObligationKZ = regexp.MustCompile(`(?m)^[ \t]*(?:Міндеттеме|МІНДЕТТЕМЕ)\s+№?\s*\d+`)
	reCreditorLine = regexp.MustCompile(`(?m)^[ \t]*Кредитор:`)
	reColumnGap    = regexp.MustCompile(`\s*\|\s*|\s{2,}`)
)

// labelSet names the labels a block-style dialect prints for each field.
type labelSet struct {
	creditor          []string
	contract          []string
	startDate         []string
	issueDate         []string
	financing         []string
	contractSum       []string
	unpaid            []string
	upcoming          []string
	used              []string
	overdueAmount     []string
	overdueDays       []string
	monthly           []string
	penalties         []string
	rate              []string
	lastPaymentDate   []string
	lastPaymentAmount []string
}

var russianLabels = labelSet{
	creditor:          []string{"Кредитор:", "Наименование кредитора:"},
	contract:          []string{"Номер договора:", "Номер контракта:", "№ договора:"},
	startDate:         []string{"Дата начала срока действия контракта:", "Дата заключения договора:"},
	issueDate:         []string{"Дата фактической выдачи:", "Дата выдачи:"},
	financing:         []string{"Вид финансирования:", "Вид кредита:", "Тип кредита:"},
	contractSum:       []string{"Сумма договора:", "Общая сумма кредита:", "Сумма кредита:"},
	unpaid:            []string{"Непогашенная сумма по кредиту:", "Непогашенная сумма по основному долгу:", "Остаток основного долга:", "Остаток задолженности:", "Непогашенная сумма:"},
	upcoming:          []string{"Сумма предстоящих платежей:"},
	used:              []string{"Использованная сумма:", "Сумма выданного кредита:", "Выданная сумма:"},
	overdueAmount:     []string{"Сумма просроченных взносов:", "Просроченная задолженность:", "Сумма просрочки:"},
	overdueDays:       []string{"Количество дней просрочки:", "Дней просрочки:"},
	monthly:           []string{"Сумма периодического платежа:", "Ежемесячный платеж:", "Ежемесячный платёж:", "Сумма ежемесячного платежа:"},
	penalties:         []string{"Сумма штрафов:", "Штрафы:", "Пеня:", "Неустойка:"},
	rate:              []string{"Ставка вознаграждения:", "Процентная ставка:"},
	lastPaymentDate:   []string{"Дата последнего платежа:"},
	lastPaymentAmount: []string{"Сумма последнего платежа:"},
}

var kazakhLabels = labelSet{
	creditor:          []string{"Кредитор:"},
	contract:          []string{"Шарт нөмірі:"},
	startDate:         []string{"Шарттың басталған күні:", "Шарт жасалған күні:"},
	issueDate:         []string{"Берілген күні:"},
	financing:         []string{"Қаржыландыру түрі:"},
	contractSum:       []string{"Шарт сомасы:"},
	unpaid:            []string{"Өтелмеген сома:", "Негізгі борыштың қалдығы:"},
	upcoming:          []string{"Алдағы төлемдер сомасы"},
	used:              []string{"Пайдаланылған сома:"},
	overdueAmount:     []string{"Мерзімі өткен берешек сомасы:", "Мерзімі өткен жарналар сомасы:"},
	overdueDays:       []string{"Мерзімі өткен күндер саны:"},
	monthly:           []string{"Ай сайынғы төлем сомасы"},
	penalties:         []string{"Айыппұлдар:", "Өсімпұл:"},
	rate:              []string{"Сыйақы мөлшерлемесі:"},
	lastPaymentDate:   []string{"Соңғы төлем күні:"},
	lastPaymentAmount: []string{"Соңғы төлем сомасы:"},
}

// contractFields are the raw values read from one obligation block.
type contractFields struct {
	Creditor        string
	ContractNumber  string
	StartDate       string
	FinancingType   string
	LastPaymentDate string

	ContractSum       float64
	Unpaid            float64
	Upcoming          float64
	Used              float64
	OverdueAmount     float64
	Monthly           float64
	Penalties         float64
	Rate              float64
	LastPaymentAmount float64
	OverdueDays       int
}

func readContract(block string, ls labelSet) contractFields {
	f := contractFields{
		Creditor:          firstCell(textscan.LabelValue(block, ls.creditor...)),
		ContractNumber:    firstCell(textscan.LabelValue(block, ls.contract...)),
		StartDate:         textscan.LabelDate(block, ls.startDate...),
		FinancingType:     firstCell(textscan.LabelValue(block, ls.financing...)),
		LastPaymentDate:   textscan.LabelDate(block, ls.lastPaymentDate...),
		ContractSum:       textscan.LabelAmount(block, ls.contractSum...),
		Unpaid:            textscan.LabelAmount(block, ls.unpaid...),
		Upcoming:          textscan.LabelAmount(block, ls.upcoming...),
		Used:              textscan.LabelAmount(block, ls.used...),
		OverdueAmount:     textscan.LabelAmount(block, ls.overdueAmount...),
		Monthly:           textscan.LabelAmount(block, ls.monthly...),
		Penalties:         textscan.LabelAmount(block, ls.penalties...),
		Rate:              textscan.LabelAmount(block, ls.rate...),
		LastPaymentAmount: textscan.LabelAmount(block, ls.lastPaymentAmount...),
		OverdueDays:       textscan.LabelInt(block, ls.overdueDays...),
	}
	if f.StartDate == "" {
		f.StartDate = textscan.LabelDate(block, ls.issueDate...)
	}
	return f
}

// obligation maps raw fields onto an Obligation. Balance is chosen by the caller.
func (f contractFields) obligation(balance float64, base string) entity.Obligation {
	o := entity.Obligation{
		Creditor:             f.Creditor,
		ContractNumber:       f.ContractNumber,
		DebtOriginDate:       f.StartDate,
		FinancingType:        f.FinancingType,
		BalanceKZT:           balance,
		MonthlyPaymentKZT:    f.Monthly,
		OverdueAmountKZT:     f.OverdueAmount,
		OverdueDays:          f.OverdueDays,
		PenaltiesKZT:         f.Penalties,
		LastPaymentAmountKZT: f.LastPaymentAmount,
		LastPaymentDate:      f.LastPaymentDate,
		InterestRatePct:      f.Rate,
		ContractsCount:       1,
	}
	o.Status = entity.StatusFor(o.OverdueDays, base)
	o.RequireString("creditor", &o.Creditor)
	o.RequireString("contract_number", &o.ContractNumber)
	o.RequireString("debt_origin_date", &o.DebtOriginDate)
	o.ClampNonNegative()
	return o
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// firstCell cuts a value at the first column gap left by layout extraction.
func firstCell(s string) string {
	cells := reColumnGap.Split(strings.TrimSpace(s), 2)
	return strings.TrimSpace(cells[0])
}

var (
	reActiveNoOverdue    = regexp.MustCompile(`(?i)Действующи\S*\s+договор\S*\s+без\s+просроч\S*\s*:?\s*(\d+)`)
	reActiveOverdue      = regexp.MustCompile(`(?i)Действующи\S*\s+договор\S*\s+с\s+просроч\S*\s*:?\s*(\d+)`)
	reCompletedNoOverdue = regexp.MustCompile(`(?i)Завершенн\S*\s+договор\S*\s+без\s+просроч\S*\s*:?\s*(\d+)`)
	reCompletedOverdue   = regexp.MustCompile(`(?i)Завершенн\S*\s+договор\S*\s+с\s+просроч\S*\s*:?\s*(\d+)`)
)

func readContractSummary(text string) entity.ContractSummary {
	count := func(re *regexp.Regexp) int {
		return int(textscan.Amount(textscan.FirstMatch(text, re)))
	}
	return entity.ContractSummary{
		ActiveWithoutOverdue:    count(reActiveNoOverdue),
		ActiveWithOverdue:       count(reActiveOverdue),
		CompletedWithoutOverdue: count(reCompletedNoOverdue),
		CompletedWithOverdue:    count(reCompletedOverdue),
	}
}

// newReport prepares the shape every parser fills in.
func newReport(text string, dialect constants.Dialect, language string) *entity.NormalizedReport {
	return &entity.NormalizedReport{
		PersonalInfo:    readPersonalInfo(text),
		Obligations:     []entity.Obligation{},
		Collaterals:     entity.Collaterals{Significant: []entity.Collateral{}, Excluded: []entity.Collateral{}},
		ContractSummary: readContractSummary(text),
		Dialect:         dialect,
		Language:        language,
	}
}

// gradeBlocks assigns quality for block-style dialects.
func gradeBlocks(r *entity.NormalizedReport) constants.ParseQuality {
	switch {
	case len(r.Obligations) == 0:
		return constants.QualityLow
	case r.HasSentinels():
		return constants.QualityMedium
	default:
		return constants.QualityHigh
	}
}

// activeSection isolates the active-contracts part of a block-style report.
func activeSection(text, heading string) string {
	if sec, ok := textscan.Section(text, heading, majorHeadings...); ok {
		return sec
	}
	return text
}
