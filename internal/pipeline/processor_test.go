package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/ocr"
	"github.com/joseph-ayodele/credit-report-kz/internal/opener"
	"github.com/joseph-ayodele/credit-report-kz/internal/parser"
	"github.com/joseph-ayodele/credit-report-kz/internal/repository"
)

const gkbText = `Государственное кредитное бюро
Персональный кредитный отчет
Фамилия: ИВАНОВ
Имя: ИВАН
Отчество: ИВАНОВИЧ
ИИН: 900101300123
Дата рождения: 01.01.1990
Адрес: г. Алматы, ул. Абая 1
ПОДРОБНАЯ ИНФОРМАЦИЯ ПО ДЕЙСТВУЮЩИМ ДОГОВОРАМ
Обязательство 1
Кредитор:
АО "Bank 1"
Номер договора:
KB-0001
Дата начала срока действия контракта:
15.03.2020
Непогашенная сумма по кредиту: 101 000,00 KZT
Количество дней просрочки: 400
Сумма периодического платежа: 5 000 KZT
Обязательство 2
Кредитор:
АО "Bank 2"
Номер договора:
KB-0002
Дата начала срока действия контракта:
15.03.2020
Непогашенная сумма по кредиту: 102 000,00 KZT
Количество дней просрочки: 400
Сумма периодического платежа: 5 000 KZT
ИНФОРМАЦИЯ О ЗАПРОСАХ
`

type stubExtractor struct {
	mu    sync.Mutex
	text  string
	err   error
	paths []string
}

func (s *stubExtractor) Extract(_ context.Context, path string) (ocr.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	if _, err := os.Stat(path); err != nil {
		return ocr.Result{}, common.ExtractionFailed("cannot open file", err)
	}
	if s.err != nil {
		return ocr.Result{}, s.err
	}
	return ocr.Result{Text: s.text, Pages: 2, Method: ocr.MethodLayout, Duration: time.Millisecond}, nil
}

func (s *stubExtractor) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testConfig() *common.Config {
	return &common.Config{
		Locale: "ru",
		OCR:    common.OCRConfig{Languages: []string{"rus", "kaz"}, DPI: 300, PageTimeout: 45 * time.Second},
		Engine: common.EngineConfig{
			MRPValue:               3932,
			ThresholdMRPMultiplier: 1600,
			MinOverdueDays:         365,
			CollateralThresholdKZT: 1_000_000,
			PawnshopKeywords:       common.DefaultPawnshopKeywords,
		},
		Parser: common.ParserConfig{KazakhAvgBank: 700_000, KazakhAvgMFO: 200_000, KazakhAvgOther: 250_000},
	}
}

func writePDF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestProcessor(t *testing.T, tx TextExtractor, opts ...Option) *Processor {
	t.Helper()
	p, err := NewProcessor(testConfig(), discard(), append([]Option{WithExtractor(tx)}, opts...)...)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return p
}

func TestProcessFileGKB(t *testing.T) {
	p := newTestProcessor(t, &stubExtractor{text: gkbText})
	res, err := p.ProcessFile(context.Background(), writePDF(t, "pdf bytes"))
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.Parser != "gkb" || res.Report.Dialect != constants.DialectGKB {
		t.Errorf("parser=%s dialect=%s", res.Parser, res.Report.Dialect)
	}
	if got := len(res.Report.Obligations); got != 2 {
		t.Fatalf("obligations = %d, want 2", got)
	}
	if res.Report.Totals.Debt != 203000 {
		t.Errorf("debt = %v, want 203000", res.Report.Totals.Debt)
	}
	if res.Recommendation.Procedure != constants.ProcedureExtrajudicial {
		t.Errorf("procedure = %q (%s)", res.Recommendation.Procedure, res.Recommendation.ReasonCode)
	}
	if len(res.SHA256) != 64 || res.RequestID == "" {
		t.Errorf("sha=%q request=%q", res.SHA256, res.RequestID)
	}
	if res.Extraction.Method != ocr.MethodLayout || res.Extraction.Pages != 2 {
		t.Errorf("extraction = %+v", res.Extraction)
	}
	if !strings.Contains(res.Message, "ИВАНОВ ИВАН ИВАНОВИЧ") {
		t.Errorf("message lacks borrower name:\n%s", res.Message)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", res.Warnings)
	}
}

func TestProcessExtractionFailure(t *testing.T) {
	p := newTestProcessor(t, &stubExtractor{err: common.ExtractionFailed("pdf is unreadable", nil)})
	res, err := p.ProcessFile(context.Background(), writePDF(t, "garbage"))
	if !errors.Is(err, common.ErrExtractionFailed) || res != nil {
		t.Fatalf("res=%v err=%v", res, err)
	}
	if _, err := p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, common.ErrExtractionFailed) {
		t.Fatalf("missing file: %v", err)
	}
}

func TestProcessUnknownDialectStillRecommends(t *testing.T) {
	p := newTestProcessor(t, &stubExtractor{text: "совершенно непонятный текст"})
	res, err := p.ProcessFile(context.Background(), writePDF(t, "x"))
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.Report.ParseQuality != constants.QualityLow || res.Parser != "fallback" {
		t.Errorf("quality=%s parser=%s", res.Report.ParseQuality, res.Parser)
	}
	if res.Recommendation.Error != "" || res.Recommendation.Procedure == "" {
		t.Errorf("recommendation = %+v", res.Recommendation)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.HasPrefix(w, "letter payload incomplete") {
			found = true
		}
	}
	if !found {
		t.Errorf("no payload warning in %v", res.Warnings)
	}
}

func TestProcessReaderRemovesTempFile(t *testing.T) {
	tx := &stubExtractor{text: gkbText}
	p := newTestProcessor(t, tx)
	res, err := p.ProcessReader(context.Background(), "upload.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("ProcessReader: %v", err)
	}
	if res.Source != "upload.pdf" {
		t.Errorf("source = %q", res.Source)
	}
	if _, err := os.Stat(tx.paths[0]); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp file %s still present: %v", tx.paths[0], err)
	}
	if _, err := p.ProcessReader(context.Background(), "upload.docx", strings.NewReader("x")); !errors.Is(err, common.ErrExtractionFailed) {
		t.Errorf("docx: %v", err)
	}
}

func TestProcessUsesResultStore(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, common.StorageConfig{Driver: repository.DriverSQLite, DSN: filepath.Join(t.TempDir(), "r.db")}, discard())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close(discard())
	repo := repository.NewResultRepository(db, discard())
	if err := repo.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	tx := &stubExtractor{text: gkbText}
	p := newTestProcessor(t, tx, WithResultStore(repo))
	path := writePDF(t, "same bytes")

	first, err := p.ProcessFile(ctx, path)
	if err != nil || first.Cached {
		t.Fatalf("first: cached=%v err=%v", first != nil && first.Cached, err)
	}
	second, err := p.ProcessFile(ctx, path)
	if err != nil || !second.Cached {
		t.Fatalf("second: err=%v", err)
	}
	if second.Recommendation.Procedure != first.Recommendation.Procedure || len(second.Report.Obligations) != 2 {
		t.Errorf("cached result differs: %+v", second.Recommendation)
	}
	if tx.calls() != 1 {
		t.Errorf("extractor called %d times, want 1", tx.calls())
	}
	if _, err := p.Process(ctx, Request{Path: path, Force: true}); err != nil {
		t.Fatal(err)
	}
	if tx.calls() != 2 {
		t.Errorf("forced run did not extract again")
	}
}

type panicParser struct{}

func (panicParser) Name() string                           { return "panics" }
func (panicParser) Recognizes(string) bool                 { return true }
func (panicParser) Extract(string) *entity.NormalizedReport { panic("boom") }

func TestProcessRecoversPanic(t *testing.T) {
	p := newTestProcessor(t, &stubExtractor{text: gkbText}, WithChain(parser.NewChainWith(discard(), panicParser{})))
	_, err := p.ProcessFile(context.Background(), writePDF(t, "x"))
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != common.CodeInternal {
		t.Fatalf("want internal AppError, got %v", err)
	}
}

func TestProcessLocationHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("remote pdf"))
	}))
	defer srv.Close()

	op := opener.NewCompoundOpener(opener.NewLocalOpener(discard()), opener.NewHTTPOpener(srv.Client(), discard()), nil)
	p := newTestProcessor(t, &stubExtractor{text: gkbText}, WithOpener(op))
	url := srv.URL + "/reports/ivanov.pdf"
	res, err := p.ProcessLocation(context.Background(), url)
	if err != nil {
		t.Fatalf("ProcessLocation: %v", err)
	}
	if res.Source != url || res.Recommendation.Procedure != constants.ProcedureExtrajudicial {
		t.Errorf("source=%q procedure=%q", res.Source, res.Recommendation.Procedure)
	}
}
