package batch

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tonyleecn/fapiao/internal/extract"
)

// Status is the terminal state of one processed document.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusDuplicate Status = "duplicate"
)

// Invoice is the structured data pulled out of one invoice PDF. It is
// created once per successfully extracted document and never mutated.
type Invoice struct {
	InvoiceNumber string
	Amount        decimal.Decimal
	AmountTier    extract.TierID
	Buyer         extract.Party
	Seller        extract.Party
	SourcePath    string
}

// DuplicateRecord describes a document whose invoice number was already seen
// earlier in the walk. RelocatedPath is empty when the quarantine move
// failed; the duplicate is recorded either way.
type DuplicateRecord struct {
	Path          string
	InvoiceNumber string
	OriginalPath  string
	RelocatedPath string
}

// DocumentResult is the tagged outcome of processing one document. Exactly
// one of Invoice, Duplicate, or Reason is populated, according to Status.
type DocumentResult struct {
	Path      string
	Status    Status
	Invoice   *Invoice
	Duplicate *DuplicateRecord
	Reason    string
}

// Result aggregates a whole batch run. Built incrementally in walk order;
// callers receive it only after the run completes (or is cancelled) and must
// treat it as immutable.
type Result struct {
	TotalAmount    decimal.Decimal
	SucceededCount int
	FailedCount    int
	DuplicateCount int
	FailedPaths    []string
	Invoices       []Invoice
	Duplicates     []DuplicateRecord
}

// TotalDocuments is the number of documents that reached a terminal state.
func (r *Result) TotalDocuments() int {
	return r.SucceededCount + r.FailedCount + r.DuplicateCount
}

// FormattedTotal renders the aggregate total with thousands separators,
// e.g. "1,234,567.89". The fractional digits come straight from the decimal
// value so the display never rounds.
func (r *Result) FormattedTotal() string {
	s := r.TotalAmount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart := s[:len(s)-3]
	frac := s[len(s)-3:]

	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// integer part beyond int64 range; fall back to the plain string
		if neg {
			return "-" + intPart + frac
		}
		return intPart + frac
	}

	p := message.NewPrinter(language.English)
	out := p.Sprintf("%d", n) + frac
	if neg {
		out = "-" + out
	}
	return out
}
