package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tonyleecn/fapiao/internal/batch"
	"github.com/tonyleecn/fapiao/internal/config"
	"github.com/tonyleecn/fapiao/internal/export"
	"github.com/tonyleecn/fapiao/internal/pdf"
)

const logFileName = "运行日志.txt"

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if cfg.CleanOutputs {
		cleanPreviousOutputs(cfg, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reader := pdf.NewReader(cfg.MaxFileSize, cfg.ValidatePDF, logger)

	opts := batch.Options{
		QuarantineDirName: config.QuarantineDirName,
		Logger:            logger,
		Progress: func(done, total int, path string, status batch.Status) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %-9s %s\n", done, total, status, filepath.Base(path))
		},
	}
	if cfg.SaveDebugText {
		opts.SaveTextDir = cfg.DebugTextDir()
	}

	processor := batch.NewProcessor(reader, opts)

	result, err := processor.Run(ctx, cfg.RootDir)
	if err != nil {
		if errors.Is(err, batch.ErrInvalidRoot) {
			return err
		}
		// cancelled mid-batch: still print what was accumulated
		if result != nil {
			printSummary(result)
		}
		return err
	}

	if err := writeArtifacts(cfg, result, logger); err != nil {
		return err
	}
	printSummary(result)
	return nil
}

func writeArtifacts(cfg *config.Config, result *batch.Result, logger *slog.Logger) error {
	if len(result.FailedPaths) > 0 {
		if err := batch.WriteFailedList(cfg.FailedListPath(), result.FailedPaths); err != nil {
			return err
		}
		fmt.Printf("提取失败清单: %s\n", cfg.FailedListPath())
	}
	if len(result.Duplicates) > 0 {
		quarantine := filepath.Join(cfg.RootDir, config.QuarantineDirName)
		if err := batch.WriteDuplicateReport(cfg.DuplicateReportPath(), quarantine, result.Duplicates); err != nil {
			return err
		}
		fmt.Printf("重复发票清单: %s\n", cfg.DuplicateReportPath())
	}
	if len(result.Invoices) > 0 {
		if err := export.WriteXLSX(cfg.SpreadsheetPath(), result.Invoices, logger); err != nil {
			return err
		}
		fmt.Printf("发票汇总表格: %s\n", cfg.SpreadsheetPath())
	}
	return nil
}

func printSummary(result *batch.Result) {
	fmt.Println()
	fmt.Printf("共处理文件: %d\n", result.TotalDocuments())
	fmt.Printf("提取成功:   %d\n", result.SucceededCount)
	fmt.Printf("提取失败:   %d\n", result.FailedCount)
	fmt.Printf("重复发票:   %d\n", result.DuplicateCount)
	fmt.Printf("金额合计:   %s\n", result.FormattedTotal())
}

// setupLogger builds the run logger: stderr always, plus a log file in the
// output directory when --errorlog is set.
func setupLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var w io.Writer = os.Stderr
	closeLog := func() {}
	if cfg.ErrorLog {
		// the output directory is never created here; OutputDir defaults to
		// the batch root, which must stay missing for the run to fail on it
		f, err := os.OpenFile(filepath.Join(cfg.OutputDir, logFileName),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeLog = func() { _ = f.Close() }
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeLog, nil
}

// cleanPreviousOutputs removes artifacts left by an earlier run so a rerun
// starts from a clean slate.
func cleanPreviousOutputs(cfg *config.Config, logger *slog.Logger) {
	targets := []string{
		cfg.FailedListPath(),
		cfg.DuplicateReportPath(),
		cfg.SpreadsheetPath(),
	}
	for _, t := range targets {
		if err := os.Remove(t); err != nil && !os.IsNotExist(err) {
			logger.Warn("cannot remove previous output", "path", t, "error", err)
		}
	}
	if err := os.RemoveAll(cfg.DebugTextDir()); err != nil {
		logger.Warn("cannot remove previous debug text", "dir", cfg.DebugTextDir(), "error", err)
	}
}
