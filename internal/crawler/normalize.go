package crawler

import (
	"regexp"
	"strconv"
	"strings"
)

// Pure text-normalization rules shared by the crawler variants. Board titles
// mix the product name with price, shipping and view-count noise; these
// heuristics pull the structured parts back out.

var (
	// A closing parenthesis followed by a 1-2 digit view count glued onto the
	// end of the title. The parenthesis content itself is kept.
	trailingViewCountRe = regexp.MustCompile(`\)\s*\d{1,2}\s*$`)

	// Price patterns, in priority order.
	wonAmountRe   = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*원`)  // 35,750원 / 9,000 원
	manwonRe      = regexp.MustCompile(`(\d+)만원`)                   // 24만원
	parenAmountRe = regexp.MustCompile(`\((\d{1,3}(?:,\d{3})*)[/,)]`) // (35,750/) (35,750,) (35,750)

	freeShippingKeywords = []string{"무료", "무배", "와우"}
)

// CleanTitle strips the trailing view-count artifact and surrounding
// whitespace. Idempotent.
func CleanTitle(title string) string {
	return strings.TrimSpace(trailingViewCountRe.ReplaceAllString(title, ")"))
}

// ExtractPrice pulls a won amount out of a title. The first matching pattern
// wins; only the 만원 pattern is multiplied by 10,000. No match means the
// price is unknown or free and parses as 0.
func ExtractPrice(title string) int64 {
	if m := wonAmountRe.FindStringSubmatch(title); m != nil {
		return parseAmount(m[1])
	}
	if m := manwonRe.FindStringSubmatch(title); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0
		}
		return n * 10000
	}
	if m := parenAmountRe.FindStringSubmatch(title); m != nil {
		return parseAmount(m[1])
	}
	return 0
}

// parseAmount parses a comma-grouped amount. A 3-digit amount ending in two
// zeros is read as a truncated thousands group ("39,00" meaning 39,000), so
// one more zero is appended. This is a lossy heuristic carried over from the
// reference behavior: a genuinely 900-won item parses as 9,000.
func parseAmount(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	if len(s) == 3 && strings.HasSuffix(s, "00") {
		s += "0"
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FreeShipping reports whether the title mentions free or promotional
// shipping. Substring matching, so unrelated text containing a keyword
// false-positives; accepted approximation.
func FreeShipping(title string) bool {
	for _, kw := range freeShippingKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

var bracketReplacer = strings.NewReplacer("[", "", "]", "")

// StripBrackets removes square brackets and trims, for seller and category
// labels rendered as "[label]".
func StripBrackets(s string) string {
	return strings.TrimSpace(bracketReplacer.Replace(s))
}
