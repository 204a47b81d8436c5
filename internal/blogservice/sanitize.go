package blogservice

import "regexp"

var (
	blockTagRX  = regexp.MustCompile(`(?is)<\s*(?:script|iframe|object|embed)\b[^>]*>.*?<\s*/\s*(?:script|iframe|object|embed)\s*>`)
	strayTagRX  = regexp.MustCompile(`(?i)<\s*/?\s*(?:script|iframe|object|embed)\b[^>]*>`)
	htmlTagRX   = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	eventAttrRX = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
	jsURLAttrRX = regexp.MustCompile(`(?i)\s+(?:href|src)\s*=\s*(?:"\s*javascript:[^"]*"|'\s*javascript:[^']*'|javascript:[^\s>]*)`)
	jsLinkRX    = regexp.MustCompile(`(?i)\]\(\s*javascript:[^)]*\)`)
)

// sanitizeMarkdown strips markup that would run in the reader's browser. The
// rest of the markdown, inline HTML included, is left untouched.
func sanitizeMarkdown(markdown string) string {
	out := blockTagRX.ReplaceAllString(markdown, "")
	out = strayTagRX.ReplaceAllString(out, "")
	out = htmlTagRX.ReplaceAllStringFunc(out, func(tag string) string {
		tag = eventAttrRX.ReplaceAllString(tag, "")
		return jsURLAttrRX.ReplaceAllString(tag, "")
	})
	return jsLinkRX.ReplaceAllString(out, "](#)")
}
