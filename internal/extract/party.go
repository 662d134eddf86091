package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Party is one side of an invoice: a company name and its unified social
// credit code / taxpayer identification number.
type Party struct {
	Name  string
	TaxID string
}

const taxIDToken = `([0-9A-Z]{15,20})`

var (
	buyerNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`购买方名称[:：]\s*([^\s:：]{2,60})`),
		regexp.MustCompile(`购\s*买\s*方[^销名]{0,30}名\s*称[:：]\s*([^\s:：]{2,60})`),
		regexp.MustCompile(`购买方[:：]\s*([^\s:：]{2,60})`),
	}
	sellerNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`销售方名称[:：]\s*([^\s:：]{2,60})`),
		regexp.MustCompile(`销\s*售\s*方[^购名]{0,30}名\s*称[:：]\s*([^\s:：]{2,60})`),
		regexp.MustCompile(`销售方[:：]\s*([^\s:：]{2,60})`),
	}
	buyerTaxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`购买方[^销]{0,40}?(?:统一社会信用代码|纳税人识别号|税号)[^0-9A-Z]{0,10}` + taxIDToken),
	}
	sellerTaxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`销售方[^购]{0,40}?(?:统一社会信用代码|纳税人识别号|税号)[^0-9A-Z]{0,10}` + taxIDToken),
	}

	// 统一社会信用代码/纳税人识别号: XXXX — the combined label most digital
	// invoices print twice, buyer block first.
	combinedTaxPattern = regexp.MustCompile(
		`(?:统一社会信用代码|纳税人识别号)\s*[/／]?\s*(?:纳税人识别号)?[:：]?\s*` + taxIDToken)

	genericNamePattern = regexp.MustCompile(`名\s*称[:：]\s*([^\s:：]{2,60})`)
	genericTaxPattern  = regexp.MustCompile(`(?:税号|识别号|信用代码)[^0-9A-Z]{0,10}` + taxIDToken)
)

// Parties extracts buyer and seller identity from raw page text. Four
// strategies run in order, each filling only fields an earlier strategy left
// empty, so a specific label match is never clobbered by a positional guess.
// Invoice layouts place the buyer block before the seller block; the
// positional strategies rely on that convention and will silently mislabel a
// document that violates it.
func Parties(text string) (buyer, seller Party) {
	matchLabeled(text, &buyer, &seller)
	scanNameLines(text, &buyer, &seller)
	fillCombinedTaxIDs(text, &buyer, &seller)
	fillDualOccurrences(text, &buyer, &seller)
	return buyer, seller
}

func matchLabeled(text string, buyer, seller *Party) {
	buyer.Name = firstMatch(text, buyerNamePatterns)
	seller.Name = firstMatch(text, sellerNamePatterns)
	buyer.TaxID = firstMatch(text, buyerTaxPatterns)
	seller.TaxID = firstMatch(text, sellerTaxPatterns)
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanValue(m[1])
		}
	}
	return ""
}

// scanNameLines routes name-bearing lines by which party label they carry.
func scanNameLines(text string, buyer, seller *Party) {
	if buyer.Name != "" && seller.Name != "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "名称") {
			continue
		}
		idx := strings.IndexAny(line, ":：")
		if idx < 0 {
			continue
		}
		_, colonLen := utf8.DecodeRuneInString(line[idx:])
		value := cleanValue(line[idx+colonLen:])
		if value == "" {
			continue
		}
		switch {
		case strings.Contains(line, "购") && buyer.Name == "":
			buyer.Name = value
		case strings.Contains(line, "销") && seller.Name == "":
			seller.Name = value
		}
	}
}

// fillCombinedTaxIDs assigns combined-label tax IDs positionally: first match
// is the buyer, first distinct later match is the seller.
func fillCombinedTaxIDs(text string, buyer, seller *Party) {
	if buyer.TaxID != "" && seller.TaxID != "" {
		return
	}
	matches := combinedTaxPattern.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		id := m[1]
		switch {
		case buyer.TaxID == "":
			buyer.TaxID = id
		case seller.TaxID == "" && id != buyer.TaxID:
			seller.TaxID = id
		}
	}
}

// fillDualOccurrences is the most speculative pass: with two generic "名称:"
// hits the first is taken as buyer and the second as seller, and likewise for
// generic tax-ID labels.
func fillDualOccurrences(text string, buyer, seller *Party) {
	if buyer.Name == "" || seller.Name == "" {
		names := genericNamePattern.FindAllStringSubmatch(text, -1)
		if len(names) >= 2 {
			if buyer.Name == "" {
				buyer.Name = cleanValue(names[0][1])
			}
			if seller.Name == "" {
				seller.Name = cleanValue(names[1][1])
			}
		}
	}
	if buyer.TaxID == "" || seller.TaxID == "" {
		ids := genericTaxPattern.FindAllStringSubmatch(text, -1)
		if len(ids) >= 2 {
			if buyer.TaxID == "" {
				buyer.TaxID = ids[0][1]
			}
			if seller.TaxID == "" && ids[1][1] != buyer.TaxID {
				seller.TaxID = ids[1][1]
			}
		}
	}
}

func cleanValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), "：:、，,。")
}
