package blogservice

import (
	"fmt"
	"strings"
)

const wordsPerMinute = 200

// estimateReadTime formats the reading time of markdown, rounded up and never below one minute.
func estimateReadTime(markdown string) string {
	words := len(strings.Fields(markdown))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
