// Package classify provides stateless content-structure heuristics: code
// language detection and markdown heading normalization.
package classify

import "strings"

// languageRule maps a set of keyword substrings to a language label.
// Rules are evaluated in order; the first match wins, so general-purpose
// languages sit before markup, which sits before config/data formats.
type languageRule struct {
	Language string
	Keywords []string
	// Match overrides keyword scanning for rules that need shape checks.
	Match func(code string) bool
}

var languageRules = []languageRule{
	{Language: "python", Keywords: []string{"def ", "import ", "from ", "if __name__"}},
	{Language: "javascript", Keywords: []string{"function ", "const ", "let ", "var ", "=>"}},
	{Language: "html", Keywords: []string{"<html", "<div", "<span", "class="}},
	{Language: "css", Keywords: []string{"body {", ".class", "#id", "@media"}},
	{Language: "java", Keywords: []string{"public class", "private ", "public static void"}},
	{Language: "bash", Keywords: []string{"#!/bin/", "echo ", "grep ", "awk "}},
	{Language: "sql", Keywords: []string{"select ", "from ", "where ", "insert into"}},
	{Language: "yaml", Keywords: []string{"key:", "- name:"}},
	{Language: "json", Match: func(code string) bool {
		return strings.HasPrefix(code, "{") && strings.HasSuffix(code, "}")
	}},
}

// DetectLanguage guesses the programming language of a code snippet.
// Returns "" when no rule matches; callers treat that as "text".
func DetectLanguage(code string) string {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return ""
	}

	for _, rule := range languageRules {
		if rule.Match != nil {
			if rule.Match(normalized) {
				return rule.Language
			}
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) {
				return rule.Language
			}
		}
	}
	return ""
}

// Rules exposes the ordered rule labels so they can be tested independently
// of the pipeline.
func Rules() []string {
	labels := make([]string, len(languageRules))
	for i, r := range languageRules {
		labels[i] = r.Language
	}
	return labels
}
