package pipeline

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MarkdownFromHTML rebuilds a minimal markdown document from captured HTML.
// Used as a fallback when a capture carries no markdown. Only the
// content-bearing tags are walked; everything else is dropped.
func MarkdownFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	doc.Find("h1,h2,h3,h4,p,li,pre").Each(func(i int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h1":
			writeBlock(&sb, "# "+collapseText(s.Text()))
		case "h2":
			writeBlock(&sb, "## "+collapseText(s.Text()))
		case "h3":
			writeBlock(&sb, "### "+collapseText(s.Text()))
		case "h4":
			writeBlock(&sb, "#### "+collapseText(s.Text()))
		case "li":
			sb.WriteString("- " + collapseText(s.Text()) + "\n")
		case "pre":
			writeBlock(&sb, "```\n"+strings.TrimRight(s.Text(), "\n")+"\n```")
		default:
			if text := collapseText(s.Text()); text != "" {
				writeBlock(&sb, text)
			}
		}
	})

	return strings.TrimSpace(sb.String()), nil
}

func writeBlock(sb *strings.Builder, block string) {
	sb.WriteString(block)
	sb.WriteString("\n\n")
}

// collapseText flattens a node's text to a single line of space-separated
// words.
func collapseText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
