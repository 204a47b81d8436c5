package blogservice

import (
	"regexp"
	"strings"
)

var (
	SlugRX = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	slugStripRX    = regexp.MustCompile(`[^a-z0-9\s_-]`)
	slugCollapseRX = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lower-cases s, drops everything outside [a-z0-9_-] and whitespace,
// and joins the remaining words with single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripRX.ReplaceAllString(s, "")
	s = slugCollapseRX.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
