package extract

import "regexp"

var (
	// Labeled invoice-number patterns. Fully-digital invoices carry 20-digit
	// numbers, legacy ones 8 or 10 digits; the capture range is deliberately
	// loose and the longest run wins.
	numberLabelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`发票号码[:：]\s*([0-9]{8,30})`),
		regexp.MustCompile(`发票号码\s*([0-9]{8,30})`),
		regexp.MustCompile(`No[.:：]\s*([0-9]{8,30})`),
		regexp.MustCompile(`NO[.:：]\s*([0-9]{8,30})`),
	}

	// Generic proximity fallback: any long digit run near invoice-number
	// shaped context.
	numberContextPattern = regexp.MustCompile(`(?:发票|号码)[^0-9]{0,20}([0-9]{10,30})`)
)

// InvoiceNumber extracts the invoice's identifying number from raw page
// text. Among all pattern matches the single longest digit run wins; longer
// numbers are the modern fully-digital format while short runs are usually
// bleed-through from adjacent numeric fields. Returns "" when nothing
// plausible is found. No checksum validation is attempted.
func InvoiceNumber(text string) string {
	best := ""
	for _, re := range numberLabelPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m[1]) > len(best) {
				best = m[1]
			}
		}
	}
	if best != "" {
		return best
	}
	for _, m := range numberContextPattern.FindAllStringSubmatch(text, -1) {
		if len(m[1]) > len(best) {
			best = m[1]
		}
	}
	return best
}
