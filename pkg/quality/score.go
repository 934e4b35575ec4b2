// Package quality derives content statistics and a bounded quality score
// from processed markdown.
package quality

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jnystrom/contentpipe/models"
)

var (
	headingPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	linkPattern    = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

// Score computes a [0,100] quality estimate from four independently capped
// contributions. The word-count contribution is a deliberate step function:
// thin pages below 50 words score zero on that axis.
func Score(wordCount, headingCount, codeBlockCount, linkCount int) float64 {
	score := 0.0

	switch {
	case wordCount >= 500:
		score += 25
	case wordCount >= 200:
		score += 15
	case wordCount >= 50:
		score += 10
	}

	if headingCount > 0 {
		score += min(25, float64(headingCount)*5)
	}
	if codeBlockCount > 0 {
		score += min(25, float64(codeBlockCount)*8)
	}
	if linkCount > 0 {
		score += min(25, float64(linkCount)*3)
	}

	return min(100, score)
}

// ReadingMinutes estimates reading time at 200 words per minute, never
// reporting less than one minute.
func ReadingMinutes(wordCount int) int {
	if m := wordCount / 200; m > 1 {
		return m
	}
	return 1
}

// Headings extracts all markdown headings with their levels.
func Headings(markdown string) []models.Heading {
	matches := headingPattern.FindAllStringSubmatch(markdown, -1)
	headings := make([]models.Heading, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, models.Heading{
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
		})
	}
	return headings
}

// ExtractMetadata builds the full ContentMetadata for processed markdown.
func ExtractMetadata(markdown, sourceURL string, codeBlockCount int) models.ContentMetadata {
	headings := Headings(markdown)
	wordCount := len(strings.Fields(markdown))
	linkCount := len(linkPattern.FindAllString(markdown, -1))

	domain := ""
	if u, err := url.Parse(sourceURL); err == nil {
		domain = u.Host
	}

	return models.ContentMetadata{
		URL:                  sourceURL,
		Domain:               domain,
		WordCount:            wordCount,
		LineCount:            len(strings.Split(markdown, "\n")),
		CharCount:            len(markdown),
		HeadingCount:         len(headings),
		CodeBlockCount:       codeBlockCount,
		LinkCount:            linkCount,
		Headings:             headings,
		EstimatedReadingMins: ReadingMinutes(wordCount),
		QualityScore:         Score(wordCount, len(headings), codeBlockCount, linkCount),
	}
}
