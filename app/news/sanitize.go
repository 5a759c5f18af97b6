package news

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	// Only the five standard XML entities are decoded; anything fancier is a
	// rendering concern and stays untouched.
	entityReplacer = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
)

// StripHTML removes markup tags, decodes the standard entities and collapses
// runs of whitespace to a single space.
func StripHTML(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
