package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// TierID identifies which pattern tier produced an extraction result.
// Tiers are ordered from highest precision to highest recall; knowing which
// one fired is the main triage signal when an invoice extracts wrong.
type TierID string

const (
	TierCanonical TierID = "canonical_total" // 价税合计 line with a figures amount
	TierTabular   TierID = "tabular_total"   // 合计 row or tax-inclusive label
	TierFallback  TierID = "fallback_label"  // broader labels, bare currency, standalone
	TierKeyword   TierID = "keyword_context" // nearest number around a money keyword
	TierNone      TierID = ""
)

// AmountResult is the outcome of the amount cascade. A zero Value with
// TierNone means no tier matched; callers treat zero as an extraction miss,
// never as a legitimate zero invoice.
type AmountResult struct {
	Value decimal.Decimal
	Tier  TierID
}

type amountTier struct {
	id    TierID
	match func(text string) (decimal.Decimal, bool)
}

var amountTiers = []amountTier{
	{TierCanonical, matchCanonicalTotal},
	{TierTabular, matchTabularTotal},
	{TierFallback, matchFallbackLabels},
	{TierKeyword, matchKeywordContext},
}

// Amount runs the tier cascade over raw page text and returns the first
// match. It never fails; malformed input yields a zero result.
func Amount(text string) AmountResult {
	for _, t := range amountTiers {
		if v, ok := t.match(text); ok {
			return AmountResult{Value: v, Tier: t.id}
		}
	}
	return AmountResult{Value: decimal.Zero, Tier: TierNone}
}

// decimalToken is the shape of a printed invoice amount: optional thousands
// separators, exactly two fraction digits.
const decimalToken = `([0-9][0-9,]*\.[0-9]{2})`

var (
	canonicalPatterns = []*regexp.Regexp{
		// 价税合计（大写）⊗壹佰元整 （小写）¥100.00
		regexp.MustCompile(`价税合计[（(]\s*大写\s*[)）][^0-9]*?[（(]\s*小写\s*[)）][:：]?\s*[￥¥]?\s*` + decimalToken),
		// 价税合计 ... ¥100.00, label and figure separated by punctuation noise
		regexp.MustCompile(`价税合计[^0-9]{0,40}?[￥¥]\s*` + decimalToken),
		// 价税合计: 100.00
		regexp.MustCompile(`价税合计[^0-9]{0,20}?` + decimalToken),
	}

	// 合计 ¥90.00 ¥10.00 ¥100.00 — amount, tax, tax-inclusive total columns.
	tabularRowPattern = regexp.MustCompile(
		`(?:合\s*计|小\s*计)[^\n0-9]*` + decimalToken + `[^\n0-9]+` + decimalToken + `[^\n0-9]+` + decimalToken)
	// 含税金额: 100.00
	taxInclusivePattern = regexp.MustCompile(`含税[^0-9]{0,12}` + decimalToken)

	fallbackLabelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`总金额[:：]?\s*[￥¥]?\s*` + decimalToken),
		regexp.MustCompile(`[（(]\s*小写\s*[)）][:：]?\s*[￥¥]?\s*` + decimalToken),
		regexp.MustCompile(`人民币[^0-9]{0,10}` + decimalToken),
	}
	// 金额 + 税额 on one stretch: the only pattern that computes (net + tax)
	// instead of reading a printed total.
	amountPlusTaxPattern = regexp.MustCompile(
		`金额[:：]?\s*[￥¥]?\s*` + decimalToken + `[^0-9]{1,20}税额[:：]?\s*[￥¥]?\s*` + decimalToken)
	bareCurrencyPattern = regexp.MustCompile(`[￥¥]\s*` + decimalToken)
	standalonePattern   = regexp.MustCompile(`\b[0-9]{1,3}(?:,[0-9]{3})*\.[0-9]{2}\b`)

	decimalAnywhere = regexp.MustCompile(`[0-9][0-9,]*\.[0-9]{2}`)
)

// amountKeywords drive the last-resort proximity scan, most specific first.
var amountKeywords = []string{
	"价税合计", "小写", "合计", "人民币", "总额", "金额", "大写", "RMB", "CNY", "￥", "¥",
}

// keywordWindow bounds how far from a keyword the proximity scan will accept
// a number, in bytes of UTF-8 text.
const keywordWindow = 150

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func matchCanonicalTotal(text string) (decimal.Decimal, bool) {
	for _, re := range canonicalPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return parseAmount(m[1])
		}
	}
	return decimal.Zero, false
}

func matchTabularTotal(text string) (decimal.Decimal, bool) {
	if m := tabularRowPattern.FindStringSubmatch(text); m != nil {
		// last column is the tax-inclusive total
		return parseAmount(m[3])
	}
	if m := taxInclusivePattern.FindStringSubmatch(text); m != nil {
		return parseAmount(m[1])
	}
	return decimal.Zero, false
}

func matchFallbackLabels(text string) (decimal.Decimal, bool) {
	for _, re := range fallbackLabelPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return parseAmount(m[1])
		}
	}
	if m := amountPlusTaxPattern.FindStringSubmatch(text); m != nil {
		net, okNet := parseAmount(m[1])
		tax, okTax := parseAmount(m[2])
		if okNet && okTax {
			return net.Add(tax), true
		}
	}
	if m := bareCurrencyPattern.FindStringSubmatch(text); m != nil {
		return parseAmount(m[1])
	}
	return matchStandalone(text)
}

// matchStandalone accepts any free-standing thousands-grouped decimal that is
// not sitting in invoice-number context. Go regexp has no lookbehind, so the
// preceding bytes are checked by hand.
func matchStandalone(text string) (decimal.Decimal, bool) {
	for _, loc := range standalonePattern.FindAllStringIndex(text, -1) {
		start := loc[0] - 24
		if start < 0 {
			start = 0
		}
		before := text[start:loc[0]]
		if strings.Contains(before, "发票号码") || strings.Contains(before, "号码") ||
			strings.Contains(before, "No.") || strings.Contains(before, "No:") {
			continue
		}
		return parseAmount(text[loc[0]:loc[1]])
	}
	return decimal.Zero, false
}

func matchKeywordContext(text string) (decimal.Decimal, bool) {
	for _, kw := range amountKeywords {
		at := strings.Index(text, kw)
		if at < 0 {
			continue
		}
		lo := at - keywordWindow
		if lo < 0 {
			lo = 0
		}
		hi := at + len(kw) + keywordWindow
		if hi > len(text) {
			hi = len(text)
		}
		window := text[lo:hi]

		// nearest decimal-shaped number to the keyword wins
		best := ""
		bestDist := -1
		for _, loc := range decimalAnywhere.FindAllStringIndex(window, -1) {
			dist := loc[0] + lo - at
			if dist < 0 {
				dist = -dist
			}
			if bestDist < 0 || dist < bestDist {
				best = window[loc[0]:loc[1]]
				bestDist = dist
			}
		}
		if best != "" {
			return parseAmount(best)
		}
	}
	return decimal.Zero, false
}
