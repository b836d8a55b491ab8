package extractor

import "regexp"

// Category tags one kind of sensitive data found in message text.
type Category string

const (
	CategoryEmail           Category = "email"
	CategoryPhone           Category = "phone"
	CategoryCreditCard      Category = "credit_card"
	CategorySSN             Category = "ssn"
	CategoryAPIKey          Category = "api_key"
	CategoryPassword        Category = "password"
	CategorySecret          Category = "secret"
	CategoryURL             Category = "url"
	CategoryIPAddress       Category = "ip_address"
	CategoryBitcoinAddress  Category = "bitcoin_address"
	CategoryEthereumAddress Category = "ethereum_address"
)

// rule binds a category to its pattern. Labeled-token patterns (api_key,
// password, secret) capture the value in a submatch group; group 0 means the
// whole match is the value.
type rule struct {
	category Category
	re       *regexp.Regexp
	group    int
}

// rules is the fixed ordered extraction table. Extraction order and patterns
// must stay stable so repeated runs over the same text are deterministic.
var rules = []rule{
	{CategoryEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), 0},
	{CategoryPhone, regexp.MustCompile(`(\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`), 0},
	{CategoryCreditCard, regexp.MustCompile(`\b(?:4[0-9]{12}(?:[0-9]{3})?|5[1-5][0-9]{14}|3[47][0-9]{13}|3[0-9]{13}|6(?:011|5[0-9]{2})[0-9]{12})\b`), 0},
	{CategorySSN, regexp.MustCompile(`\b\d{3}-?\d{2}-?\d{4}\b`), 0},
	{CategoryAPIKey, regexp.MustCompile(`(?i)(api[_-]?key|apikey|access[_-]?key|secret[_-]?key)\s*[:=]\s*["']?([a-zA-Z0-9_-]{20,})["']?`), 2},
	{CategoryPassword, regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?([^"'\s]{6,})["']?`), 2},
	{CategorySecret, regexp.MustCompile(`(?i)(secret|token|key)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`), 2},
	{CategoryURL, regexp.MustCompile(`https?://(?:[a-zA-Z0-9]|[$\-_@.&+]|[!*(),]|%[0-9a-fA-F]{2})+`), 0},
	{CategoryIPAddress, regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`), 0},
	{CategoryBitcoinAddress, regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`), 0},
	{CategoryEthereumAddress, regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`), 0},
}

// Extract runs the fixed pattern table over raw message text and returns a
// mapping of category to the distinct matches found, in first-seen order.
// Pure function of its input: no side effects, no error conditions. Text that
// matches nothing yields an empty map.
func Extract(text string) map[Category][]string {
	extracted := make(map[Category][]string)

	for _, r := range rules {
		var values []string
		if r.group == 0 {
			values = r.re.FindAllString(text, -1)
		} else {
			for _, m := range r.re.FindAllStringSubmatch(text, -1) {
				if len(m) > r.group && m[r.group] != "" {
					values = append(values, m[r.group])
				}
			}
		}
		if len(values) == 0 {
			continue
		}
		seen := make(map[string]struct{}, len(values))
		var distinct []string
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			distinct = append(distinct, v)
		}
		extracted[r.category] = distinct
	}

	return extracted
}

// Categories returns the category tags of the extraction table, in table
// order.
func Categories() []Category {
	cats := make([]Category, 0, len(rules))
	for _, r := range rules {
		cats = append(cats, r.category)
	}
	return cats
}

const snippetRadius = 50

// Snippet returns up to snippetRadius runes of context on either side of the
// first occurrence of value in text. If value does not occur, the head of the
// text is returned.
func Snippet(text, value string) string {
	runes := []rune(text)
	idx := indexRunes(runes, []rune(value))
	if idx < 0 {
		if len(runes) <= 2*snippetRadius {
			return text
		}
		return string(runes[:2*snippetRadius])
	}

	start := idx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := idx + len([]rune(value)) + snippetRadius
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
