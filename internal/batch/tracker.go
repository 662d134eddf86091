package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const quarantineDirPerm = 0o750

// Tracker detects repeat invoice numbers within one batch run and quarantines
// the duplicate files. The mutex keeps registration and relocation mutually
// exclusive should the processor ever run documents in parallel.
type Tracker struct {
	mu            sync.Mutex
	quarantineDir string
	seen          map[string]*Invoice
	logger        *slog.Logger
}

// NewTracker creates a tracker that relocates duplicates into quarantineDir.
// The directory is created lazily, on the first duplicate.
func NewTracker(quarantineDir string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		quarantineDir: quarantineDir,
		seen:          make(map[string]*Invoice),
		logger:        logger,
	}
}

// QuarantineDir returns the directory duplicates are moved into.
func (t *Tracker) QuarantineDir() string {
	return t.quarantineDir
}

// Check reports whether number was already registered. An empty number is
// never a duplicate key: documents without a recognized invoice number are
// processed independently of each other. On a duplicate, the file at path is
// moved into the quarantine directory; a failed move is logged and the
// record returned anyway, with RelocatedPath empty.
func (t *Tracker) Check(path, number string) *DuplicateRecord {
	if number == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.seen[number]
	if !ok {
		return nil
	}

	rec := &DuplicateRecord{
		Path:          path,
		InvoiceNumber: number,
		OriginalPath:  original.SourcePath,
	}

	relocated, err := t.relocate(path)
	if err != nil {
		t.logger.Warn("failed to quarantine duplicate invoice",
			"path", path, "invoice_number", number, "error", err)
		return rec
	}
	rec.RelocatedPath = relocated
	return rec
}

// Record registers the first sighting of an invoice number. Empty numbers
// are never recorded.
func (t *Tracker) Record(number string, inv *Invoice) {
	if number == "" || inv == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[number]; !ok {
		t.seen[number] = inv
	}
}

// relocate moves path into the quarantine directory, appending a timestamp
// suffix when the base name is already taken there.
func (t *Tracker) relocate(path string) (string, error) {
	if err := os.MkdirAll(t.quarantineDir, quarantineDirPerm); err != nil {
		return "", fmt.Errorf("create quarantine directory: %w", err)
	}

	target := filepath.Join(t.quarantineDir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(target)
		target = strings.TrimSuffix(target, ext) + "_" + time.Now().Format("20060102150405") + ext
	}

	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("move to quarantine: %w", err)
	}
	return target, nil
}
