package classify

import "strings"

// NormalizeHeadings rewrites markdown heading levels so the hierarchy forms
// a consistent tree: a heading may deepen at most one level relative to the
// previous emitted heading, no matter how far the source over-nests.
// Non-heading lines pass through untouched.
func NormalizeHeadings(markdown string) string {
	lines := strings.Split(markdown, "\n")
	out := make([]string, 0, len(lines))
	currentLevel := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			out = append(out, line)
			continue
		}

		declared := 0
		for declared < len(trimmed) && trimmed[declared] == '#' {
			declared++
		}

		level := declared
		if level > currentLevel+1 {
			level = currentLevel + 1
		}
		currentLevel = level

		text := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		out = append(out, strings.Repeat("#", level)+" "+text)
	}

	return strings.Join(out, "\n")
}
