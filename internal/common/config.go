package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DebugMode bool
	Locale    string `validate:"oneof=ru kk"`
	OCR       OCRConfig
	Engine    EngineConfig
	Parser    ParserConfig
	Storage   StorageConfig
	S3        S3Config
	HTTP      HTTPConfig
}

// OCRConfig holds text extraction and OCR configuration
type OCRConfig struct {
	Languages   []string `validate:"min=1,dive,required"`
	DPI         int      `validate:"gte=72,lte=1200"`
	PageTimeout time.Duration
	MaxPages    int `validate:"gte=0"`
	TessdataDir string
	Pdftotext   string
	Pdftoppm    string
	Tesseract   string
}

// EngineConfig holds the statutory constants of the bankruptcy rules
type EngineConfig struct {
	MRPValue               float64  `validate:"gt=0"`
	ThresholdMRPMultiplier float64  `validate:"gt=0"`
	MinOverdueDays         int      `validate:"gte=0"`
	CollateralThresholdKZT float64  `validate:"gte=0"`
	PawnshopKeywords       []string `validate:"dive,required"`
}

// ParserConfig holds substitute balances for Kazakh reports that list overdue
// contracts without a balance
type ParserConfig struct {
	KazakhAvgBank  float64 `validate:"gte=0"`
	KazakhAvgMFO   float64 `validate:"gte=0"`
	KazakhAvgOther float64 `validate:"gte=0"`
}

// StorageConfig holds the optional result store configuration
type StorageConfig struct {
	Driver          string `validate:"omitempty,oneof=sqlite pgx"`
	DSN             string `validate:"required_with=Driver"`
	MaxOpenConns    int    `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// S3Config holds object storage input configuration
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
}

// HTTPConfig holds remote input configuration
type HTTPConfig struct {
	Timeout time.Duration
}

const minPageTimeout = 30 * time.Second

var DefaultPawnshopKeywords = []string{"ломбард", "lombard", "pawnshop", "залог", "заложи", "золото", "ювели"}

// LoadConfig loads configuration from an optional .env file and the environment
func LoadConfig() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		DebugMode: getEnvAsBool("DEBUG_MODE", false),
		Locale:    getEnv("LOCALE", "ru"),
		OCR: OCRConfig{
			Languages:   getEnvAsList("OCR_LANGUAGES", []string{"rus", "kaz"}),
			DPI:         getEnvAsInt("OCR_DPI", 300),
			PageTimeout: getEnvAsDuration("OCR_PAGE_TIMEOUT", 45*time.Second),
			MaxPages:    getEnvAsInt("OCR_MAX_PAGES", 0),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			Pdftotext:   getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
		},
		Engine: EngineConfig{
			MRPValue:               getEnvAsFloat("MRP_VALUE", 3932),
			ThresholdMRPMultiplier: getEnvAsFloat("THRESHOLD_MRP_MULTIPLIER", 1600),
			MinOverdueDays:         getEnvAsInt("MIN_OVERDUE_DAYS", 365),
			CollateralThresholdKZT: getEnvAsFloat("COLLATERAL_SIGNIFICANCE_THRESHOLD_KZT", 1_000_000),
			PawnshopKeywords:       getEnvAsList("PAWNSHOP_KEYWORDS", DefaultPawnshopKeywords),
		},
		Parser: ParserConfig{
			KazakhAvgBank:  getEnvAsFloat("KAZAKH_AVG_BANK", 700_000),
			KazakhAvgMFO:   getEnvAsFloat("KAZAKH_AVG_MFO", 200_000),
			KazakhAvgOther: getEnvAsFloat("KAZAKH_AVG_OTHER", 250_000),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORE_DRIVER", ""),
			DSN:             getEnv("STORE_DSN", ""),
			MaxOpenConns:    getEnvAsInt("STORE_MAX_OPEN_CONNS", 4),
			ConnMaxLifetime: getEnvAsDuration("STORE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Region:    getEnv("S3_REGION", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			UseSSL:    getEnvAsBool("S3_USE_SSL", true),
		},
		HTTP: HTTPConfig{
			Timeout: getEnvAsDuration("HTTP_TIMEOUT", 60*time.Second),
		},
	}
	if cfg.OCR.PageTimeout < minPageTimeout {
		cfg.OCR.PageTimeout = minPageTimeout
	}
	return cfg
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return NewAppError(CodeConfig, strings.Join(msgs, "; "), ErrInvalidInput)
	}
	return nil
}

// TesseractLang joins OCR languages the way tesseract expects ("rus+kaz").
func (c OCRConfig) TesseractLang() string {
	return strings.Join(c.Languages, "+")
}
