package bankruptcy

import (
	"fmt"

	"github.com/joseph-ayodele/credit-report-kz/constants"
)

const (
	disclaimer = "Рекомендация предварительная и основана только на данных кредитного отчёта. " +
		"Она не заменяет консультацию юриста."
	incompleteInputs = "Отчёт распознан не полностью и сумма долга не определена: " +
		"исходные данные могут быть неполными, проверьте отчёт вручную."
)

// nextSteps returns the fixed checklist for a procedure.
func nextSteps(p constants.Procedure, minOverdueDays int) []string {
	switch p {
	case constants.ProcedureExtrajudicial:
		return []string{
			"Подайте заявление о применении процедуры внесудебного банкротства через портал электронного правительства или ЦОН.",
			"Приложите сведения о доходах, имуществе и перечень кредиторов из кредитного отчёта.",
			"Проверьте, что за последние три года не совершали сделок по отчуждению имущества.",
			"Дождитесь решения уполномоченного органа и уведомления кредиторов.",
		}
	case constants.ProcedureJudicial:
		return []string{
			"Подготовьте заявление о применении процедуры судебного банкротства в суд по месту жительства.",
			"Соберите кредитный отчёт, документы об имуществе, доходах и договоры с кредиторами.",
			"Оплатите государственную пошлину и подайте заявление в суд.",
			"Будьте готовы к назначению финансового управляющего и оценке имущества.",
		}
	default:
		return []string{
			"Обратитесь к кредиторам с заявлением о реструктуризации или отсрочке платежей.",
			"Рассмотрите процедуру восстановления платёжеспособности через суд.",
			fmt.Sprintf("Повторите проверку, когда просрочка превысит %d дней.", minOverdueDays),
		}
	}
}
