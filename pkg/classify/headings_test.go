package classify

import (
	"strings"
	"testing"
)

func TestNormalizeHeadings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "well formed hierarchy unchanged",
			input: "# A\n## B\n### C",
			want:  "# A\n## B\n### C",
		},
		{
			name:  "deep jump clamped to one step",
			input: "# A\n#### B",
			want:  "# A\n## B",
		},
		{
			name:  "first heading deeper than h1 clamped",
			input: "### Intro",
			want:  "# Intro",
		},
		{
			name:  "level can drop freely",
			input: "# A\n## B\n# C\n## D",
			want:  "# A\n## B\n# C\n## D",
		},
		{
			name:  "non-heading lines untouched",
			input: "# A\nplain text\n\n## B",
			want:  "# A\nplain text\n\n## B",
		},
		{
			name:  "repeated over-nesting walks down one at a time",
			input: "# A\n###### B\n###### C",
			want:  "# A\n## B\n### C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeHeadings(tt.input); got != tt.want {
				t.Errorf("NormalizeHeadings() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeHeadings_Monotonicity(t *testing.T) {
	input := "##### A\n# B\n###### C\n### D\n###### E"
	got := NormalizeHeadings(input)

	prev := 0
	for _, line := range strings.Split(got, "\n") {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		if level > prev+1 {
			t.Fatalf("heading level %d follows level %d in %q", level, prev, got)
		}
		prev = level
	}
}
