package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/ocr"
)

func main() {
	var (
		lang    = flag.String("lang", "", "tesseract languages, comma separated (defaults to OCR_LANGUAGES)")
		noPrep  = flag.Bool("no-preprocess", false, "skip grayscale/contrast/sharpen before OCR")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall extraction timeout")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, cfg.DebugMode)
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-lang rus,kaz] <report.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	ocrCfg := ocr.FromAppConfig(cfg.OCR)
	if *lang != "" {
		ocrCfg.Languages = strings.Split(*lang, ",")
	}
	ocrCfg.Preprocess = !*noPrep
	extractor := ocr.NewExtractor(ocrCfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	res, err := extractor.Extract(ctx, path)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len([]rune(res.Text)),
		"confidence", res.Confidence,
		"warnings", len(res.Warnings),
		"duration_ms", dur.Milliseconds(),
	)
	fmt.Println(res.Text)
}
