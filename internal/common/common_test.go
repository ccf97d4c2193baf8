package common

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"MRP_VALUE", "THRESHOLD_MRP_MULTIPLIER", "MIN_OVERDUE_DAYS", "OCR_LANGUAGES", "OCR_PAGE_TIMEOUT", "PAWNSHOP_KEYWORDS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	if cfg.Engine.MRPValue != 3932 || cfg.Engine.ThresholdMRPMultiplier != 1600 {
		t.Fatalf("engine defaults = %+v", cfg.Engine)
	}
	if cfg.Engine.MinOverdueDays != 365 || cfg.Engine.CollateralThresholdKZT != 1_000_000 {
		t.Fatalf("engine defaults = %+v", cfg.Engine)
	}
	if got := cfg.OCR.TesseractLang(); got != "rus+kaz" {
		t.Errorf("TesseractLang = %q, want rus+kaz", got)
	}
	if len(cfg.Engine.PawnshopKeywords) != 7 {
		t.Errorf("pawnshop keywords = %v", cfg.Engine.PawnshopKeywords)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("MRP_VALUE", "4000")
	t.Setenv("OCR_LANGUAGES", "rus, kaz, eng")
	t.Setenv("OCR_PAGE_TIMEOUT", "5s")
	cfg := LoadConfig()
	if cfg.Engine.MRPValue != 4000 {
		t.Errorf("MRPValue = %v", cfg.Engine.MRPValue)
	}
	if got := cfg.OCR.TesseractLang(); got != "rus+kaz+eng" {
		t.Errorf("TesseractLang = %q", got)
	}
	if cfg.OCR.PageTimeout != 30*time.Second {
		t.Errorf("PageTimeout = %v, want clamp to 30s", cfg.OCR.PageTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Locale = "en"
	cfg.Engine.MRPValue = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != CodeConfig {
		t.Fatalf("error = %v, want CONFIG_ERROR", err)
	}
	if !strings.Contains(err.Error(), "Locale") || !strings.Contains(err.Error(), "MRPValue") {
		t.Errorf("error does not name failing fields: %v", err)
	}
}

func TestAppErrorUserMessage(t *testing.T) {
	err := ExtractionFailed("open pdf", errors.New("boom"))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Error("ExtractionFailed should wrap ErrExtractionFailed")
	}
	if !strings.HasPrefix(UserMessageOf(err), "Не удалось прочитать PDF") {
		t.Errorf("UserMessageOf = %q", UserMessageOf(err))
	}
	if UserMessageOf(errors.New("x")) != userMessages[CodeInternal] {
		t.Error("plain errors should map to the internal message")
	}
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator().
		Field("iin", "123", IIN).
		Field("iin_ok", "900101300123", IIN).
		Field("obligations", []int(nil), NotNil).
		Field("balance", -1.0, NonNegative).
		Field("mrp", 0.0, Positive).
		Field("days", 3, Positive)
	if len(v.Errors()) != 4 {
		t.Fatalf("errors = %v", v.Errors())
	}
	if err := ValidateAndReturnError(v, CodeCalculator); !errors.Is(err, ErrValidation) {
		t.Errorf("ValidateAndReturnError = %v", err)
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("generated id %q is not a uuid", id)
	}
	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id || RequestIDFromContext(ctx2) != id {
		t.Error("existing request id should be kept")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %s", buf.String())
	}
	NewLogger(&buf, true).Debug("parser matched", "parser", "gkb")
	if !strings.Contains(buf.String(), `"parser":"gkb"`) {
		t.Errorf("debug output = %s", buf.String())
	}
}

func TestLoggerFromCarriesRequestAttrs(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContentHash(WithRequestID(context.Background(), "req-1"), "abc123")
	LoggerFrom(ctx, NewLogger(&buf, false)).Info("report processed")
	for _, want := range []string{`"request_id":"req-1"`, `"sha256":"abc123"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log line %s lacks %s", buf.String(), want)
		}
	}
}
