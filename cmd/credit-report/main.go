package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/export"
	"github.com/joseph-ayodele/credit-report-kz/internal/opener"
	"github.com/joseph-ayodele/credit-report-kz/internal/parser"
	"github.com/joseph-ayodele/credit-report-kz/internal/pipeline"
	"github.com/joseph-ayodele/credit-report-kz/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		in      = flag.String("in", "", "report location: local path, https URL or s3://bucket/key (required)")
		locale  = flag.String("locale", "", "message language: ru or kk (defaults to LOCALE)")
		asJSON  = flag.Bool("json", false, "print the full result as JSON")
		xlsx    = flag.String("xlsx", "", "also write the creditors workbook to this path")
		force   = flag.Bool("force", false, "ignore a stored result for the same file")
		timeout = flag.Duration("timeout", 10*time.Minute, "overall processing timeout")
		dialect = flag.String("dialect", "", "skip detection and parse as this dialect ("+
			strings.Join(constants.DialectsAsStringSlice(), ", ")+"); add -force to bypass a stored result")
	)
	flag.Parse()

	if *in == "" {
		printError("Error: --in is required\n")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if *locale != "" {
		cfg.Locale = *locale
	}
	logger := common.NewLogger(os.Stderr, cfg.DebugMode)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		printError("%s\n", common.UserMessageOf(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	store, cleanup, err := repository.InitStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to initialize result store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	opts := []pipeline.Option{pipeline.WithOpener(buildOpener(cfg, logger))}
	if store != nil {
		opts = append(opts, pipeline.WithResultStore(store))
	}
	if *dialect != "" {
		chain, err := parser.ForDialect(*dialect, parser.ConfigFrom(cfg.Parser), logger)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(2)
		}
		opts = append(opts, pipeline.WithChain(chain))
	}
	proc, err := pipeline.NewProcessor(cfg, logger, opts...)
	if err != nil {
		logger.Error("failed to build processor", "error", err)
		printError("%s\n", common.UserMessageOf(err))
		os.Exit(1)
	}

	var res *pipeline.Result
	if *force && !opener.IsRemote(*in) {
		res, err = proc.Process(ctx, pipeline.Request{Path: *in, Force: true})
	} else {
		res, err = proc.ProcessLocation(ctx, *in)
	}
	if err != nil {
		logger.Error("report processing failed", "in", *in, "error", err)
		printError("%s\n", common.UserMessageOf(err))
		os.Exit(1)
	}

	if *xlsx != "" {
		row := export.Row{Source: res.Source, Report: res.Report, Recommendation: &res.Recommendation}
		if err := export.NewService(nil, logger).WriteFile(*xlsx, []export.Row{row}); err != nil {
			logger.Error("failed to write workbook", "path", *xlsx, "error", err)
			os.Exit(1)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			logger.Error("failed to encode result", "error", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(res.Message)
	fmt.Println()
	printRecommendation(res.Recommendation)
}

func buildOpener(cfg *common.Config, logger *slog.Logger) *opener.CompoundOpener {
	httpOp := opener.NewHTTPOpener(&http.Client{Timeout: cfg.HTTP.Timeout}, logger)
	var s3Op *opener.S3Opener
	if cfg.S3.Endpoint != "" {
		cli, err := opener.NewS3Client(cfg.S3)
		if err != nil {
			logger.Warn("s3 client unavailable", "endpoint", cfg.S3.Endpoint, "error", err)
		} else {
			s3Op = opener.NewS3Opener(cli, logger)
		}
	}
	return opener.NewCompoundOpener(opener.NewLocalOpener(logger), httpOp, s3Op)
}

func printRecommendation(r entity.Recommendation) {
	if r.Error != "" {
		fmt.Println("⚠️ " + r.Rationale)
	} else {
		fmt.Printf("⚖️ Рекомендуемая процедура: %s\n", r.Procedure)
		fmt.Println(r.Rationale)
	}
	for _, c := range r.ConditionsChecked {
		mark := "✗"
		if c.Passed {
			mark = "✓"
		}
		fmt.Printf("  %s %s: %.2f (порог %.2f)\n", mark, c.Name, c.Value, c.Limit)
	}
	if len(r.NextSteps) > 0 {
		fmt.Println("\nДальнейшие шаги:")
		for i, s := range r.NextSteps {
			fmt.Printf("%d. %s\n", i+1, s)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Println("\n" + strings.Join(r.Warnings, "\n"))
	}
}
