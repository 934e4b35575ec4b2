package quality

import (
	"strings"
	"testing"
)

func TestScore_Buckets(t *testing.T) {
	tests := []struct {
		name                       string
		words, headings, code, links int
		want                       float64
	}{
		{"empty content", 0, 0, 0, 0, 0},
		{"below word floor", 49, 0, 0, 0, 0},
		{"small article", 50, 0, 0, 0, 10},
		{"medium article", 200, 0, 0, 0, 15},
		{"long article", 500, 0, 0, 0, 25},
		{"heading contribution", 0, 3, 0, 0, 15},
		{"heading cap", 0, 10, 0, 0, 25},
		{"single code block", 0, 0, 1, 0, 8},
		{"code cap", 0, 0, 4, 0, 25},
		{"link contribution", 0, 0, 0, 2, 6},
		{"link cap", 0, 0, 0, 20, 25},
		{"everything maxed clamps to 100", 5000, 20, 10, 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.words, tt.headings, tt.code, tt.links)
			if got != tt.want {
				t.Errorf("Score(%d,%d,%d,%d) = %v, want %v",
					tt.words, tt.headings, tt.code, tt.links, got, tt.want)
			}
		})
	}
}

func TestScore_Bounded(t *testing.T) {
	for _, words := range []int{0, 10, 100, 1000, 1 << 20} {
		s := Score(words, words, words, words)
		if s < 0 || s > 100 {
			t.Errorf("Score out of bounds for %d: %v", words, s)
		}
	}
}

func TestReadingMinutes(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},
		{199, 1},
		{200, 1},
		{400, 2},
		{1000, 5},
	}
	for _, tt := range tests {
		if got := ReadingMinutes(tt.words); got != tt.want {
			t.Errorf("ReadingMinutes(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestExtractMetadata(t *testing.T) {
	markdown := "# Title\n\nSome intro text here.\n\n## Section\n\nMore words and a [link](https://example.com/page).\n"

	md := ExtractMetadata(markdown, "https://ex.com/article", 2)

	if md.Domain != "ex.com" {
		t.Errorf("Domain = %q, want ex.com", md.Domain)
	}
	if md.HeadingCount != 2 {
		t.Errorf("HeadingCount = %d, want 2", md.HeadingCount)
	}
	if md.Headings[0].Level != 1 || md.Headings[0].Text != "Title" {
		t.Errorf("first heading = %+v, want level 1 %q", md.Headings[0], "Title")
	}
	if md.LinkCount != 1 {
		t.Errorf("LinkCount = %d, want 1", md.LinkCount)
	}
	if md.CodeBlockCount != 2 {
		t.Errorf("CodeBlockCount = %d, want 2", md.CodeBlockCount)
	}
	if md.EstimatedReadingMins != 1 {
		t.Errorf("EstimatedReadingMins = %d, want 1", md.EstimatedReadingMins)
	}
	if md.WordCount != len(strings.Fields(markdown)) {
		t.Errorf("WordCount = %d, want %d", md.WordCount, len(strings.Fields(markdown)))
	}
}

func TestHeadings_LineAnchored(t *testing.T) {
	markdown := "# Real\nnot # a heading\n  ## indented is not matched by the anchor\n### Also real"
	hs := Headings(markdown)
	if len(hs) != 2 {
		t.Fatalf("Headings() returned %d, want 2: %+v", len(hs), hs)
	}
	if hs[1].Level != 3 || hs[1].Text != "Also real" {
		t.Errorf("second heading = %+v", hs[1])
	}
}
