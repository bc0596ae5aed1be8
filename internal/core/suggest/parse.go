package suggest

import (
	"regexp"
	"strings"
)

// Boilerplate trimmed off suggestion titles when deriving a class label,
// e.g. "Add Customer Entity" -> "Customer".
var titlePrefixes = []string{"add ", "create ", "new ", "introduce "}

var titleSuffixes = []string{" entity class", " entity", " class", " suggestion", " table"}

// DeriveClassLabel strips boilerplate prefixes and suffixes from a
// suggestion title to obtain the node label.
func DeriveClassLabel(title string) string {
	label := strings.TrimSpace(title)
	lower := strings.ToLower(label)
	for _, p := range titlePrefixes {
		if strings.HasPrefix(lower, p) {
			label = label[len(p):]
			lower = lower[len(p):]
			break
		}
	}
	for _, s := range titleSuffixes {
		if strings.HasSuffix(lower, s) {
			label = label[:len(label)-len(s)]
			break
		}
	}
	return strings.TrimSpace(label)
}

var bracketListRe = regexp.MustCompile(`\[([^\[\]]+)\]`)

// ParseBracketList extracts the first bracketed, comma-separated list
// from free implementation text, e.g. "fields: [id, name, email]".
func ParseBracketList(text string) []string {
	m := bracketListRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(m[1], ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var afterAddRe = regexp.MustCompile(`\bAdd\s+([A-Z][A-Za-z0-9_]*)`)

// PropertyAfterAdd finds the first capitalized word following "Add" in
// implementation text, e.g. "Add LoyaltyStatus to Customer".
func PropertyAfterAdd(text string) string {
	m := afterAddRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

var afterAddWordRe = regexp.MustCompile(`(?i)\badd\s+([A-Za-z][A-Za-z0-9_]*)`)

// RelationNameAfterAdd derives a relationship label from implementation
// text: the word following "Add", lower-cased. Empty when absent.
func RelationNameAfterAdd(text string) string {
	m := afterAddWordRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}
