package parser

import (
	"regexp"
	"strings"

	"github.com/ttacon/libphonenumber"

	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/textscan"
)

var (
	lastNameLabels   = []string{"Фамилия:", "Тегі:"}
	firstNameLabels  = []string{"Имя:", "Аты:"}
	middleNameLabels = []string{"Отчество:", "Әкесінің аты:"}
	fullNameLabels   = []string{"ФИО:", "Ф.И.О.:", "Субъект кредитной истории:", "Заемщик:", "Аты-жөні:"}
	birthLabels      = []string{"Дата рождения:", "Туған күні:"}
	addressLabels    = []string{"Адрес регистрации:", "Адрес проживания:", "Адрес:", "Мекенжайы:"}
	documentLabels   = []string{"Номер документа:", "Документ, удостоверяющий личность:", "Удостоверение личности:", "Жеке куәлік:"}
	phoneLabels      = []string{"Мобильный телефон:", "Телефон:", "Ұялы телефон:"}
	emailLabels      = []string{"E-mail:", "Email:", "Электронная почта:"}
)

var (
	reIIN        = regexp.MustCompile(`(?:ИИН|ЖСН|IIN)\D{0,12}?(\d{12})\b`)
	reTwelve     = regexp.MustCompile(`\b(\d{12})\b`)
	reEmail      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	reDocNumber  = regexp.MustCompile(`№?\s*([A-ZА-Я]{0,2}\d{6,10})`)
	personalEnds = []string{"Обязательство 1", "ОБЯЗАТЕЛЬСТВО 1", "КОНТРАКТ 1", "Міндеттеме 1", "ДОГОВОРЫ В КРЕДИТНОЙ ИСТОРИИ", "ДЕЙСТВУЮЩИЕ ДОГОВОРЫ"}
)

// personalHead is the part of the report before the contract listings, where
// the subject's own data is printed.
func personalHead(text string) string {
	cut := len(text)
	for _, e := range personalEnds {
		if i := strings.Index(text, e); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}

func readPersonalInfo(text string) entity.PersonalInfo {
	head := personalHead(text)
	p := entity.PersonalInfo{
		LastName:   firstCell(textscan.LabelValue(head, lastNameLabels...)),
		FirstName:  firstCell(textscan.LabelValue(head, firstNameLabels...)),
		MiddleName: firstCell(textscan.LabelValue(head, middleNameLabels...)),
		BirthDate:  textscan.LabelDate(head, birthLabels...),
		Address:    firstCell(textscan.LabelValue(head, addressLabels...)),
	}
	if p.LastName == "" && p.FirstName == "" {
		p.FullName = firstCell(textscan.LabelValue(head, fullNameLabels...))
	}
	p.SyncFullName()

	if m := reIIN.FindStringSubmatch(text); len(m) > 1 {
		p.IIN = m[1]
	} else if m := reTwelve.FindStringSubmatch(head); len(m) > 1 {
		p.IIN = m[1]
	}
	if v := textscan.LabelValue(head, documentLabels...); v != "" {
		if m := reDocNumber.FindStringSubmatch(v); len(m) > 1 {
			p.IDDocumentNumber = m[1]
		}
	}
	p.Phone = normalizePhone(firstCell(textscan.LabelValue(head, phoneLabels...)))
	if v := textscan.LabelValue(head, emailLabels...); v != "" {
		p.Email = reEmail.FindString(v)
	}
	return p
}

// normalizePhone formats a Kazakh number as E.164 and keeps the raw value
// when it does not parse as a valid number.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, "KZ")
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}
