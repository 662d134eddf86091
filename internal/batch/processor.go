package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonyleecn/fapiao/internal/extract"
)

// ErrInvalidRoot is returned when the batch root is missing or not a
// directory. It is the only error that aborts a whole run.
var ErrInvalidRoot = errors.New("root is not a valid directory")

// TextExtractor yields the raw text of one document. The PDF reader
// implements it; tests substitute canned text.
type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// ProgressFunc receives one event after each document reaches a terminal
// state. The consumer only displays; it must not block.
type ProgressFunc func(done, total int, path string, status Status)

// Options configures a Processor.
type Options struct {
	// QuarantineDirName is the subdirectory under the batch root where
	// duplicate files are moved. Required.
	QuarantineDirName string
	// SaveTextDir, when non-empty, receives one .txt per document with the
	// raw extracted text, for extraction-miss triage.
	SaveTextDir string
	Logger      *slog.Logger
	Progress    ProgressFunc
}

// Processor walks a directory of invoice PDFs, runs the extraction cascade
// on each, deduplicates by invoice number, and aggregates totals. Documents
// are processed strictly in discovery order on a single goroutine: the
// aggregate total and duplicate detection both depend on deterministic
// ordering.
type Processor struct {
	extractor TextExtractor
	opts      Options
	logger    *slog.Logger
}

// NewProcessor creates a batch processor over the given text extractor.
func NewProcessor(extractor TextExtractor, opts Options) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{extractor: extractor, opts: opts, logger: logger}
}

// Run processes every PDF under rootDir and returns the aggregate result.
// Cancellation is checked between documents, never mid-file; on cancellation
// the partial aggregate built so far is returned together with the context
// error.
func (p *Processor) Run(ctx context.Context, rootDir string) (*Result, error) {
	info, err := os.Stat(rootDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, rootDir)
	}

	tracker := NewTracker(filepath.Join(rootDir, p.opts.QuarantineDirName), p.logger)

	docs, err := p.discover(rootDir)
	if err != nil {
		return nil, fmt.Errorf("enumerate documents: %w", err)
	}
	p.logger.Info("batch started", "root", rootDir, "documents", len(docs))

	result := &Result{}
	for i, path := range docs {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("batch cancelled", "processed", i, "total", len(docs))
			return result, err
		}

		dr := p.processDocument(tracker, path)
		switch dr.Status {
		case StatusSucceeded:
			result.SucceededCount++
			result.TotalAmount = result.TotalAmount.Add(dr.Invoice.Amount)
			result.Invoices = append(result.Invoices, *dr.Invoice)
			p.logger.Info("invoice extracted",
				"path", path,
				"invoice_number", dr.Invoice.InvoiceNumber,
				"amount", dr.Invoice.Amount.StringFixed(2),
				"tier", string(dr.Invoice.AmountTier))
		case StatusDuplicate:
			result.DuplicateCount++
			result.Duplicates = append(result.Duplicates, *dr.Duplicate)
			p.logger.Info("duplicate invoice",
				"path", path,
				"invoice_number", dr.Duplicate.InvoiceNumber,
				"original", dr.Duplicate.OriginalPath)
		case StatusFailed:
			result.FailedCount++
			result.FailedPaths = append(result.FailedPaths, path)
			p.logger.Warn("extraction failed", "path", path, "reason", dr.Reason)
		}

		if p.opts.Progress != nil {
			p.opts.Progress(i+1, len(docs), path, dr.Status)
		}
	}

	p.logger.Info("batch finished",
		"succeeded", result.SucceededCount,
		"failed", result.FailedCount,
		"duplicates", result.DuplicateCount,
		"total_amount", result.TotalAmount.StringFixed(2))
	return result, nil
}

// discover collects the fixed worklist before any processing begins, so the
// document count is known upfront for progress reporting. The quarantine
// directory is excluded from the walk.
func (p *Processor) discover(rootDir string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal to the walk
			p.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if d.Name() == p.opts.QuarantineDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// processDocument drives one document through the full pipeline. Any panic
// escaping a library on malformed input is converted into a Failed result at
// this boundary; no single document aborts the batch.
func (p *Processor) processDocument(tracker *Tracker, path string) (dr DocumentResult) {
	defer func() {
		if rec := recover(); rec != nil {
			dr = DocumentResult{
				Path:   path,
				Status: StatusFailed,
				Reason: fmt.Sprintf("panic while processing: %v", rec),
			}
		}
	}()

	text, err := p.extractor.ExtractText(path)
	if err != nil {
		return DocumentResult{Path: path, Status: StatusFailed, Reason: fmt.Sprintf("read: %v", err)}
	}

	if p.opts.SaveTextDir != "" {
		p.saveDebugText(path, text)
	}

	number := extract.InvoiceNumber(text)
	if rec := tracker.Check(path, number); rec != nil {
		// amount and party extraction are skipped entirely: a duplicate's
		// amount must never reach the aggregate
		return DocumentResult{Path: path, Status: StatusDuplicate, Duplicate: rec}
	}

	amount := extract.Amount(text)
	if !amount.Value.IsPositive() {
		return DocumentResult{Path: path, Status: StatusFailed, Reason: "no amount extracted"}
	}

	buyer, seller := extract.Parties(text)
	inv := &Invoice{
		InvoiceNumber: number,
		Amount:        amount.Value,
		AmountTier:    amount.Tier,
		Buyer:         buyer,
		Seller:        seller,
		SourcePath:    path,
	}
	tracker.Record(number, inv)
	return DocumentResult{Path: path, Status: StatusSucceeded, Invoice: inv}
}

func (p *Processor) saveDebugText(docPath, text string) {
	if err := os.MkdirAll(p.opts.SaveTextDir, quarantineDirPerm); err != nil {
		p.logger.Warn("cannot create debug text directory", "dir", p.opts.SaveTextDir, "error", err)
		return
	}
	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath)) + ".txt"
	out := filepath.Join(p.opts.SaveTextDir, base)
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		p.logger.Warn("cannot write debug text", "path", out, "error", err)
	}
}
