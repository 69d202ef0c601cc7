package format

import "regexp"

var boldKeywordsRe = regexp.MustCompile(`(?i)\b(CISTERNA|RESERVA|INTERMEDIARIO)\b`)

// BoldKeywords wraps tank category names in <b> tags for HTML parse mode,
// preserving the original casing.
func BoldKeywords(text string) string {
	return boldKeywordsRe.ReplaceAllString(text, "<b>$1</b>")
}
