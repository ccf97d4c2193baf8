package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/credit-report-kz/internal/common"
)

type call struct {
	name string
	args []string
}

// stubRunner answers external commands from a function and records calls.
type stubRunner struct {
	mu    sync.Mutex
	calls []call
	fn    func(ctx context.Context, name string, args []string) ([]byte, []byte, error)
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{name: name, args: args})
	s.mu.Unlock()
	return s.fn(ctx, name, args)
}

func (s *stubRunner) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const tsvSample = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tКредит\n" +
	"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t70\tбанк\n"

func TestParseTSV(t *testing.T) {
	row := func(block, par, line, left, width int, conf, word string) string {
		return fmt.Sprintf("5\t1\t%d\t%d\t%d\t1\t%d\t0\t%d\t20\t%s\t%s\n", block, par, line, left, width, conf, word)
	}
	header := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n"
	tests := []struct {
		name     string
		tsv      string
		wantText string
		wantConf float32
	}{
		{"sample", tsvSample, "Кредит банк\n", 0.8},
		{"header only", "header only\n", "", 0},
		{
			name: "column gap and lines",
			tsv: header +
				row(1, 1, 1, 0, 40, "90", "Банк") +
				row(1, 1, 1, 45, 60, "90", "ЦентрКредит") +
				row(1, 1, 1, 300, 80, "90", "100") +
				row(1, 1, 2, 0, 80, "90", "Договор") +
				row(2, 1, 1, 0, 50, "90", "Итого"),
			wantText: "Банк ЦентрКредит  100\nДоговор\n\nИтого\n",
			wantConf: 0.9,
		},
		{
			name:     "empty words skipped",
			tsv:      header + row(1, 1, 1, 0, 10, "-1", " ") + row(1, 1, 1, 15, 10, "50", "долг"),
			wantText: "долг\n",
			wantConf: 0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, conf := parseTSV(tt.tsv)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if conf < tt.wantConf-0.01 || conf > tt.wantConf+0.01 {
				t.Errorf("conf = %v, want %v", conf, tt.wantConf)
			}
		})
	}
}

func TestLayoutText(t *testing.T) {
	runs := []pdf.Text{
		{X: 10, Y: 650, W: 30, FontSize: 10, S: "Итого"},
		{X: 200, Y: 700, W: 40, FontSize: 10, S: "100 000"},
		{X: 10, Y: 700, W: 20, FontSize: 10, S: "Банк"},
		{X: 33, Y: 700, W: 20, FontSize: 10, S: "ЦентрКредит"},
		{X: 10, Y: 686, W: 30, FontSize: 10, S: "Договор"},
		{X: 10, Y: 600, W: 30, FontSize: 10, S: ""},
	}
	got := layoutText(runs, LayoutPresets[0])
	want := "Банк ЦентрКредит  100 000\nДоговор\n\nИтого"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("layoutText mismatch (-want +got):\n%s", diff)
	}
	if got := layoutText(nil, LayoutPresets[0]); got != "" {
		t.Fatalf("empty input gave %q", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf and trailing spaces", "Кредитор  \r\nБанк\r\n", "Кредитор\nБанк"},
		{"wide gaps become column separator", "Банк       100 000,00", "Банк  100 000,00"},
		{"single spaces kept", "ИВАНОВ ИВАН", "ИВАНОВ ИВАН"},
		{"tabs", "Банк\t\t500", "Банк  500"},
		{"nbsp", "1\u00a0000\u00a0000", "1 000 000"},
		{"blank lines collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"box rulings removed", "a\n-----------\nb", "a\n\nb"},
		{"zero digits untouched", "01.05.2020 0 дней", "01.05.2020 0 дней"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSatisfactory(t *testing.T) {
	e := NewExtractor(Config{MinChars: 20}, testLogger())
	tests := []struct {
		text string
		want bool
	}{
		{"короткий", false},
		{strings.Repeat("лорем ипсум ", 5), false},
		{"Информация по кредитным договорам заёмщика", true},
		{"СВЕДЕНИЯ ОБ ОБЯЗАТЕЛЬСТВАХ ЗАЕМЩИКА ПЕРЕД БАНКОМ", true},
	}
	for _, tt := range tests {
		if got := e.satisfactory(tt.text); got != tt.want {
			t.Errorf("satisfactory(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestHeuristicConfidence(t *testing.T) {
	poor := heuristicConfidence("qwerty")
	rich := heuristicConfidence("Кредитор АО Банк 15.03.2020 сумма 1 250 000,00 KZT")
	if poor >= rich {
		t.Fatalf("poor=%v rich=%v", poor, rich)
	}
	if rich > 1 {
		t.Fatalf("confidence above 1: %v", rich)
	}
}

func TestPdfToTextCountsPages(t *testing.T) {
	r := &stubRunner{fn: func(_ context.Context, name string, _ []string) ([]byte, []byte, error) {
		return []byte("первая\fвторая\f"), nil, nil
	}}
	e := NewExtractor(Config{}, testLogger(), WithRunner(r))
	text, pages, _, err := e.pdfToText(context.Background(), "report.pdf")
	if err != nil {
		t.Fatalf("pdfToText: %v", err)
	}
	if pages != 2 {
		t.Errorf("pages = %d, want 2", pages)
	}
	if strings.Contains(text, "\f") {
		t.Errorf("form feed left in %q", text)
	}
}

func TestPdfToTextMissingBinary(t *testing.T) {
	r := &stubRunner{fn: func(context.Context, string, []string) ([]byte, []byte, error) {
		return nil, []byte("pdftotext: not found\n"), errors.New("exit status 127")
	}}
	e := NewExtractor(Config{}, testLogger(), WithRunner(r))
	_, _, warns, err := e.pdfToText(context.Background(), "report.pdf")
	if err == nil {
		t.Fatal("want error")
	}
	if diff := cmp.Diff([]string{"pdftotext: not found"}, warns); diff != "" {
		t.Fatalf("warnings (-want +got):\n%s", diff)
	}
}

// pageTSV is tesseract TSV output for one line of two words, conf 90 and 70.
func pageTSV(first, second string) string {
	return "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t50\t10\t90\t" + first + "\n" +
		"5\t1\t1\t1\t1\t2\t55\t0\t50\t10\t70\t" + second + "\n"
}

// ocrStub renders pages by touching the png pdftoppm would write and answers
// tesseract with fixed TSV. Page 2 hangs until its context expires.
func ocrStub(t *testing.T) *stubRunner {
	t.Helper()
	return &stubRunner{fn: func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			if err := os.WriteFile(prefix+".png", []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
			return nil, nil, nil
		case "tesseract":
			img := filepath.Base(args[0])
			if img == "page-2.png" {
				<-ctx.Done()
				return nil, nil, ctx.Err()
			}
			if args[len(args)-1] != "tsv" {
				return nil, nil, errors.New("tesseract called without tsv output")
			}
			return []byte(pageTSV("текст", strings.TrimSuffix(img, ".png"))), nil, nil
		}
		return nil, nil, errors.New("unexpected command " + name)
	}}
}

func TestPdfToOCRSkipsTimedOutPage(t *testing.T) {
	r := ocrStub(t)
	e := NewExtractor(Config{}, testLogger(), WithRunner(r))
	e.cfg.PageTimeout = 50 * time.Millisecond

	text, done, conf, warns, err := e.pdfToOCR(context.Background(), "report.pdf", 3)
	if err != nil {
		t.Fatalf("pdfToOCR: %v", err)
	}
	if done != 2 {
		t.Errorf("pages done = %d, want 2", done)
	}
	if want := "текст page-1\n\n\nтекст page-3\n"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
	if conf < 0.79 || conf > 0.81 {
		t.Errorf("conf = %v, want 0.8", conf)
	}
	if n := r.count("tesseract"); n != 3 {
		t.Errorf("tesseract ran %d times for 3 pages, want one run per page", n)
	}
	found := false
	for _, w := range warns {
		if strings.HasPrefix(w, "page 2:") {
			found = true
		}
	}
	if !found {
		t.Errorf("no warning for page 2 in %v", warns)
	}
}

func TestPdfToOCRHonorsMaxPages(t *testing.T) {
	r := ocrStub(t)
	e := NewExtractor(Config{MaxPages: 1}, testLogger(), WithRunner(r))
	if _, done, _, _, err := e.pdfToOCR(context.Background(), "report.pdf", 5); err != nil || done != 1 {
		t.Fatalf("done=%d err=%v", done, err)
	}
	if n := r.count("pdftoppm"); n != 1 {
		t.Fatalf("pdftoppm called %d times, want 1", n)
	}
}

func TestPdfToOCRAllPagesFail(t *testing.T) {
	r := &stubRunner{fn: func(context.Context, string, []string) ([]byte, []byte, error) {
		return nil, nil, errors.New("boom")
	}}
	e := NewExtractor(Config{}, testLogger(), WithRunner(r))
	if _, _, _, _, err := e.pdfToOCR(context.Background(), "report.pdf", 2); err == nil {
		t.Fatal("want error when no page is readable")
	}
}

func TestPageNumber(t *testing.T) {
	if got := pageNumber("/tmp/x/page-12.png"); got != 12 {
		t.Fatalf("pageNumber = %d", got)
	}
}

func TestExtractRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(garbage, []byte("definitely not a pdf"), 0o600); err != nil {
		t.Fatal(err)
	}
	e := NewExtractor(Config{}, testLogger())
	for _, path := range []string{garbage, filepath.Join(dir, "report.txt"), filepath.Join(dir, "missing.pdf")} {
		_, err := e.Extract(context.Background(), path)
		if !errors.Is(err, common.ErrExtractionFailed) {
			t.Errorf("Extract(%s) error = %v, want extraction failed", filepath.Base(path), err)
		}
	}
}

func TestNewExtractorDefaults(t *testing.T) {
	e := NewExtractor(Config{PageTimeout: time.Second}, nil)
	if e.lang() != "rus+kaz" {
		t.Errorf("lang = %q", e.lang())
	}
	if e.cfg.PageTimeout < 30*time.Second {
		t.Errorf("page timeout %v below floor", e.cfg.PageTimeout)
	}
	if e.cfg.DPI != 300 || e.cfg.MinChars != 500 {
		t.Errorf("dpi=%d minChars=%d", e.cfg.DPI, e.cfg.MinChars)
	}
}
