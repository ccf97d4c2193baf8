package parser

import (
	"fmt"
	"strings"
)

// gkbReport builds a state-bureau report with n active obligations.
func gkbReport(n int) string {
	var b strings.Builder
	b.WriteString(`Государственное кредитное бюро
Персональный кредитный отчет
Фамилия: ИВАНОВ
Имя: ИВАН
Отчество: ИВАНОВИЧ
ИИН: 900101300123
Дата рождения: 01.01.1990
Адрес: г. Алматы, ул. Абая 1
Мобильный телефон: 8 701 123 45 67
Действующие договоры без просрочки: 0
Действующие договоры с просрочкой: ` + fmt.Sprint(n) + `
ПОДРОБНАЯ ИНФОРМАЦИЯ ПО ДЕЙСТВУЮЩИМ ДОГОВОРАМ
`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `Обязательство %d
Кредитор:
АО "Bank %d"
Номер договора:
KB-%04d
Дата начала срока действия контракта:
15.03.2020
Вид финансирования: Потребительский кредит
Непогашенная сумма по кредиту: %d 000,00 KZT
Сумма просроченных взносов: 10 000,00 KZT
Количество дней просрочки: 400
Сумма периодического платежа: 5 000 KZT
`, i, i, i, 100+i)
	}
	b.WriteString("ИНФОРМАЦИЯ О ЗАПРОСАХ\nКоличество запросов: 3\n")
	return b.String()
}

const pkbReport = `ПОЛНЫЙ ПЕРСОНАЛЬНЫЙ КРЕДИТНЫЙ ОТЧЕТ
ФИО: Петров Пётр Петрович
ИИН: 850505400321
ДОГОВОРЫ В КРЕДИТНОЙ ИСТОРИИ
Действующие договоры без просрочки: 0
Действующие договоры с просрочкой: 2
ДЕЙСТВУЮЩИЕ ДОГОВОРЫ
Кредитор  Номер договора  Дата начала  Сумма договора  Периодический платеж  Непогашенная сумма  Сумма просрочки  Дни  Неиспользованные штрафы  Штрафы
ТОО "Альфа-Кредит"  AK-001  01.02.2021  600 000 KZT  25 000 KZT  0 KZT  500 000 KZT  400  0 KZT  12 000 KZT
Альфа-Кредит  AK-002  05.06.2021  700 000 KZT  30 000 KZT  500 000 KZT  500 000 KZT  400  0 KZT  0 KZT
Итого:  1 300 000 KZT  55 000 KZT  500 000 KZT  1 000 000 KZT  0 KZT  12 000 KZT
ДЕТАЛЬНАЯ ИНФОРМАЦИЯ ПО ДОГОВОРАМ
Номер договора: AK-001
Количество дней просрочки: 400
Номер договора: AK-002
Количество дней просрочки: 400
`

const kazakhReport = `ЖЕКЕ КРЕДИТТІК ЕСЕП
Тегі: Сейітов
Аты: Нұрлан
ЖСН: 880808300456
ҚОЛДАНЫСТАҒЫ ШАРТТАР
Міндеттеме 1
Кредитор: АО "Халық Банк"
Шарт нөмірі: HB-77
Шарттың басталған күні: 10.10.2019
Өтелмеген сома: 0 KZT
Мерзімі өткен күндер саны: 500
Ай сайынғы төлем сомасы: 35 000 KZT
Міндеттеме 2
Кредитор: ТОО "МФО Шинхан"
Шарт нөмірі: MF-5
Шарттың басталған күні: 01.01.2022
Өтелмеген сома: 150 000 KZT
Мерзімі өткен күндер саны: 0
АЯҚТАЛҒАН ШАРТТАР
`

const detailedReport = `КРЕДИТНЫЙ ОТЧЕТ
ФИО: Смагулов Ерлан Маратович
ПОДРОБНАЯ ИНФОРМАЦИЯ ПО ДЕЙСТВУЮЩИМ ДОГОВОРАМ
КОНТРАКТ 1
Кредитор: АО "Home Credit Bank"
Номер контракта: HC-1
Дата выдачи: 12.12.2018
Непогашенная сумма по основному долгу: 0 KZT
Сумма предстоящих платежей: 0 KZT
Использованная сумма: 300 000 KZT
Сумма просроченных взносов: 50 000 KZT
Количество дней просрочки: 700
КОНТРАКТ 2
Кредитор: ТОО "Коллектор Плюс"
Номер контракта: CP-9
Дата выдачи: 01.03.2019
Сумма просроченных взносов: 80 000 KZT
Количество дней просрочки: 900
`

const shortReport = `Персональный кредитный отчет (краткая форма)
ФИО: Ахметова Айгуль Сериковна
ОБЩАЯ ИНФОРМАЦИЯ ПО ОБЯЗАТЕЛЬСТВАМ
Кредитор | Номер договора | Остаток | Дней просрочки
АО "Kaspi Bank" | KS-1 | 1 000 000 | 0
ТОО "МФО Быстрые деньги" | MF-2 | 250 000 | 420
Итого: 1 250 000
`

const unknownReport = `Справка о задолженности
ФИО: Ким Виктор Олегович
Кредитор: АО "Евразийский Банк"
Задолженность 450 000 KZT, просрочка 800 дней
`
