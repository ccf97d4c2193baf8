package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/async"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
	"github.com/joseph-ayodele/credit-report-kz/internal/export"
	"github.com/joseph-ayodele/credit-report-kz/internal/ingest"
	"github.com/joseph-ayodele/credit-report-kz/internal/pipeline"
	"github.com/joseph-ayodele/credit-report-kz/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// outcome is what the batch remembers about one file.
type outcome struct {
	path   string
	status constants.JobStatus
	reason string
	row    export.Row
}

type collector struct {
	mu   sync.Mutex
	byID map[string]*outcome
	keys []string
}

func newCollector() *collector {
	return &collector{byID: make(map[string]*outcome)}
}

func (c *collector) set(path string, o outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[path]; !ok {
		c.keys = append(c.keys, path)
	}
	o.path = path
	c.byID[path] = &o
}

func (c *collector) snapshot() []outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]outcome, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, *c.byID[k])
	}
	return out
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory with report PDFs (required)")
		outDir  = flag.String("out", "", "write <name>.json next to each result here")
		xlsx    = flag.String("xlsx", "", "write the creditors workbook to this path")
		workers = flag.Int("workers", 2, "parallel workers")
		watch   = flag.Bool("watch", false, "keep watching the directory for new reports")
		force   = flag.Bool("force", false, "reprocess files already in the result store")
		timeout = flag.Duration("timeout", 10*time.Minute, "per-file processing timeout")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		flag.Usage()
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, cfg.DebugMode)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := repository.InitStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to initialize result store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var opts []pipeline.Option
	if store != nil {
		opts = append(opts, pipeline.WithResultStore(store))
	}
	proc, err := pipeline.NewProcessor(cfg, logger, opts...)
	if err != nil {
		logger.Error("failed to build processor", "error", err)
		os.Exit(1)
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			logger.Error("failed to create output directory", "dir", *outDir, "error", err)
			os.Exit(1)
		}
	}

	results := newCollector()
	handle := async.ProcessorFunc(func(ctx context.Context, job async.Job) error {
		res, err := proc.Process(ctx, pipeline.Request{Path: job.Path, SHA256: job.ContentHash, Force: job.Force})
		if err != nil {
			results.set(job.Path, outcome{status: constants.JobStatusFailed, reason: common.UserMessageOf(err)})
			return err
		}
		row := export.Row{Source: res.Source, Report: res.Report, Recommendation: &res.Recommendation}
		results.set(job.Path, outcome{status: constants.JobStatusDone, reason: string(res.Recommendation.Procedure), row: row})
		if *outDir != "" {
			if err := writeJSON(*outDir, job.Path, res); err != nil {
				logger.Warn("failed to write result json", "path", job.Path, "error", err)
			}
		}
		return nil
	})
	queue := async.NewProcessorQueue(handle, logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(*workers*4),
		async.WithProcessTimeout(*timeout),
	)

	submit := func(path, hash string) {
		results.set(path, outcome{status: constants.JobStatusQueued})
		job := async.Job{Path: path, ContentHash: hash, Force: *force, SubmittedAt: time.Now()}
		if err := queue.Enqueue(ctx, job); err != nil {
			logger.Warn("enqueue failed", "path", path, "error", err)
			results.set(path, outcome{status: constants.JobStatusFailed, reason: err.Error()})
		}
	}

	ingestor := ingest.NewFSIngestor(store, *force, logger)
	start := time.Now()
	ingested, stats, err := ingestor.IngestDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("directory ingest failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	for _, r := range ingested {
		switch {
		case r.Err != "":
			results.set(r.SourcePath, outcome{status: constants.JobStatusFailed, reason: r.Err})
		case r.Deduplicated:
			logger.Debug("already processed", "path", r.SourcePath, "sha256", r.HashHex)
		default:
			submit(r.SourcePath, r.HashHex)
		}
	}

	if *watch {
		logger.Info("watching for new reports", "dir", *dir)
		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:      []string{*dir},
			SkipHidden: true,
			Debounce:   2 * time.Second,
			Logger:     logger,
		})
		if err != nil {
			logger.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		for paths != nil || errs != nil {
			select {
			case p, ok := <-paths:
				if !ok {
					paths = nil
					continue
				}
				r, err := ingestor.IngestPath(ctx, p)
				if err != nil {
					logger.Warn("ingest failed", "path", p, "error", err)
					continue
				}
				if !r.Deduplicated {
					submit(r.SourcePath, r.HashHex)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("watcher error", "error", err)
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	succeeded, failed := queue.Stats()

	outcomes := results.snapshot()
	if *xlsx != "" {
		if err := writeWorkbook(context.Background(), *xlsx, store, outcomes, logger); err != nil {
			logger.Error("failed to write workbook", "path", *xlsx, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch complete",
		"dir", *dir,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"succeeded", succeeded,
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	fmt.Printf("\n=== Reports (%d) ===\n", len(outcomes))
	for _, o := range outcomes {
		line := fmt.Sprintf("%-7s %s", o.status, filepath.Base(o.path))
		if o.reason != "" {
			line += "  " + o.reason
		}
		fmt.Println(line)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// writeWorkbook exports the whole store when one is configured, otherwise
// the reports processed in this run.
func writeWorkbook(ctx context.Context, path string, store repository.ResultRepository, outcomes []outcome, logger *slog.Logger) error {
	svc := export.NewService(store, logger)
	if store != nil {
		data, err := svc.StoredXLSX(ctx)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	rows := make([]export.Row, 0, len(outcomes))
	for _, o := range outcomes {
		if o.status == constants.JobStatusDone {
			rows = append(rows, o.row)
		}
	}
	return svc.WriteFile(path, rows)
}

func writeJSON(dir, src string, res *pipeline.Result) error {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".json"
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
