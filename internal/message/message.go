// Package message renders a NormalizedReport as the multi-line text shown
// in the chat front-end, in Russian or Kazakh.
package message

import (
	"fmt"
	"strconv"
	"strings"

	textmsg "golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
)

const bullet = "— "

// Money prints an amount with the locale's digit grouping and at most two
// decimals, followed by the tenge sign.
func Money(v float64, l Locale) string {
	p := textmsg.NewPrinter(l.tag())
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(2))) + " ₸"
}

// Render builds the display message. The same report always renders to the same string.
func Render(r *entity.NormalizedReport, l Locale) string {
	if r == nil {
		return ""
	}
	lb := labelsFor(l)
	var b strings.Builder
	b.WriteString(lb.title)
	b.WriteString("\n")

	writePersonal(&b, r.PersonalInfo, lb)

	b.WriteString("\n" + lb.summary + "\n")
	line(&b, lb.creditors, itoa(r.CreditorCount()))
	line(&b, lb.overdueCount, itoa(r.Totals.OverdueCount))
	line(&b, lb.totalDebt, Money(r.Totals.Debt, l))
	line(&b, lb.monthly, Money(r.Totals.MonthlyPayment, l))
	if r.Dialect == constants.DialectPKBFull && r.Totals.Penalties > 0 {
		line(&b, lb.penalties, Money(r.Totals.Penalties, l))
	}

	if len(r.Obligations) > 0 {
		b.WriteString("\n" + lb.creditorList + "\n")
		for i, o := range r.Obligations {
			writeObligation(&b, i+1, o, lb, l)
		}
	}

	if sig := r.Collaterals.Significant; len(sig) > 0 {
		b.WriteString("\n" + lb.collaterals + "\n")
		for _, c := range sig {
			fmt.Fprintf(&b, "%s%s (%s): %s\n", bullet, c.Kind, c.Creditor, Money(c.MarketValueKZT, l))
		}
	}

	if r.ParseQuality == constants.QualityLow {
		b.WriteString("\n" + lb.lowQuality + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writePersonal(b *strings.Builder, p entity.PersonalInfo, lb labels) {
	rows := [][2]string{
		{lb.fullName, p.FullName},
		{lb.iin, p.IIN},
		{lb.birthDate, p.BirthDate},
		{lb.address, p.Address},
	}
	header := false
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		if !header {
			b.WriteString("\n" + lb.personal + "\n")
			header = true
		}
		line(b, row[0], row[1])
	}
}

func writeObligation(b *strings.Builder, n int, o entity.Obligation, lb labels, l Locale) {
	name := o.Creditor
	if o.ContractsCount > 1 {
		name += " [" + lb.contractsCount(o.ContractsCount) + "]"
	}
	status := lb.noOverdue
	if o.OverdueDays > 0 {
		status = lb.overdueDays(o.OverdueDays)
	}
	fmt.Fprintf(b, "%d. %s: %s (%s)\n", n, name, Money(o.BalanceKZT, l), status)
	if o.LastPaymentAmountKZT > 0 || o.LastPaymentDate != "" {
		sub := "   " + lb.lastPayment + ":"
		if o.LastPaymentAmountKZT > 0 {
			sub += " " + Money(o.LastPaymentAmountKZT, l)
		}
		if o.LastPaymentDate != "" {
			sub += " " + o.LastPaymentDate
		}
		b.WriteString(sub + "\n")
	}
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(bullet + label + " " + value + "\n")
}

func itoa(n int) string { return strconv.Itoa(n) }
