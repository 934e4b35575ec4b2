package common

import (
	"testing"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean URL unchanged", "https://example.com/page", "https://example.com/page"},
		{"whitespace trimmed", "  https://example.com  ", "https://example.com"},
		{"trailing comma", "https://example.com,", "https://example.com"},
		{"trailing period", "https://example.com/docs.", "https://example.com/docs"},
		{"markdown link unwrapped", "[docs](https://example.com/docs)", "https://example.com/docs"},
		{"angle brackets stripped", "<https://example.com>", "https://example.com"},
		{"quoted URL", "\"https://example.com\"", "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.in); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	urls := []string{
		"https://example.com/good",
		"  https://example.org/trim  ",
		"not-a-url",
		"ftp://example.com/wrong-scheme",
		"https://bad{domain}.com",
		"",
	}

	sanitized, invalid := SanitizeAndValidateURLs(urls)

	if len(sanitized) != 2 {
		t.Errorf("sanitized = %v, want 2 entries", sanitized)
	}
	if len(invalid) != 4 {
		t.Errorf("invalid = %v, want 4 entries", invalid)
	}
	if sanitized[1] != "https://example.org/trim" {
		t.Errorf("sanitized[1] = %q", sanitized[1])
	}
}
