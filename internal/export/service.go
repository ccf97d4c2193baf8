// Package export writes processed reports to an XLSX workbook: one row per
// obligation on the creditors sheet and one row per report on the summary.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/repository"
)

const (
	SheetCreditors = "Кредиторы"
	SheetSummary   = "Сводка"
)

var creditorHeaders = []string{
	"Файл",
	"ФИО",
	"ИИН",
	"Кредитор",
	"Номер договора",
	"Дата возникновения",
	"Остаток, ₸",
	"Ежемесячный платёж, ₸",
	"Сумма просрочки, ₸",
	"Дней просрочки",
	"Штрафы, ₸",
	"Статус",
	"Договоров",
}

var summaryHeaders = []string{
	"Файл",
	"ФИО",
	"ИИН",
	"Формат",
	"Качество",
	"Кредиторов",
	"Просроченных",
	"Общий долг, ₸",
	"Ежемесячный платёж, ₸",
	"Процедура",
	"Причина",
}

// Row is one processed report. Recommendation may be nil.
type Row struct {
	Source         string
	Report         *entity.NormalizedReport
	Recommendation *entity.Recommendation
}

// Service produces XLSX bytes from processed reports or from the result store.
type Service struct {
	results repository.ResultRepository
	logger  *slog.Logger
}

// NewService accepts a nil repository when only in-memory rows are exported.
func NewService(results repository.ResultRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{results: results, logger: logger}
}

// WorkbookXLSX renders rows into a workbook with the creditors and summary sheets.
func (s *Service) WorkbookXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetCreditors); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}
	writeHeaders(f, SheetCreditors, creditorHeaders)
	writeHeaders(f, SheetSummary, summaryHeaders)

	credRow, sumRow, obligations := 2, 2, 0
	for _, r := range rows {
		if r.Report == nil {
			continue
		}
		p := r.Report.PersonalInfo
		for _, o := range r.Report.Obligations {
			writeRow(f, SheetCreditors, credRow,
				r.Source, p.FullName, p.IIN,
				o.Creditor, o.ContractNumber, o.DebtOriginDate,
				o.BalanceKZT, o.MonthlyPaymentKZT, o.OverdueAmountKZT,
				o.OverdueDays, o.PenaltiesKZT, o.Status, o.ContractsCount)
			credRow++
			obligations++
		}

		procedure, reason := "", ""
		if r.Recommendation != nil {
			procedure, reason = string(r.Recommendation.Procedure), r.Recommendation.ReasonCode
			if r.Recommendation.Error != "" {
				reason = r.Recommendation.Error
			}
		}
		t := r.Report.Totals
		writeRow(f, SheetSummary, sumRow,
			r.Source, p.FullName, p.IIN,
			string(r.Report.Dialect), string(r.Report.ParseQuality),
			r.Report.CreditorCount(), t.OverdueCount, t.Debt, t.MonthlyPayment,
			procedure, reason)
		sumRow++
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetCreditors, "A", "A", 28) // file
	_ = f.SetColWidth(SheetCreditors, "B", "B", 32) // name
	_ = f.SetColWidth(SheetCreditors, "C", "C", 14) // iin
	_ = f.SetColWidth(SheetCreditors, "D", "D", 36) // creditor
	_ = f.SetColWidth(SheetCreditors, "E", "F", 18)
	_ = f.SetColWidth(SheetCreditors, "G", "K", 16) // amounts
	_ = f.SetColWidth(SheetCreditors, "L", "L", 24) // status
	_ = f.SetColWidth(SheetSummary, "A", "B", 30)
	_ = f.SetColWidth(SheetSummary, "H", "I", 18)
	_ = f.SetColWidth(SheetSummary, "J", "K", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("xlsx export done",
		"reports", sumRow-2,
		"obligations", obligations,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// StoredXLSX exports every result in the store.
func (s *Service) StoredXLSX(ctx context.Context) ([]byte, error) {
	if s.results == nil {
		return nil, fmt.Errorf("export: no result store configured")
	}
	recs, err := s.results.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		var rep entity.NormalizedReport
		if err := json.Unmarshal(rec.Report, &rep); err != nil {
			s.logger.Warn("skipping undecodable stored report", "content_hash", rec.ContentHash, "error", err)
			continue
		}
		row := Row{Source: rec.SourcePath, Report: &rep}
		var rcm entity.Recommendation
		if err := json.Unmarshal(rec.Recommendation, &rcm); err == nil {
			row.Recommendation = &rcm
		}
		rows = append(rows, row)
	}
	return s.WorkbookXLSX(rows)
}

// WriteFile renders rows and writes the workbook to path.
func (s *Service) WriteFile(path string, rows []Row) error {
	b, err := s.WorkbookXLSX(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
