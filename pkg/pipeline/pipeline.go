// Package pipeline transforms raw scraped content into canonical,
// AI-consumption-ready markdown with structured metadata.
package pipeline

import (
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jnystrom/contentpipe/models"
	"github.com/jnystrom/contentpipe/pkg/classify"
	"github.com/jnystrom/contentpipe/pkg/quality"
)

const processorVersion = "1.0.0"

var (
	codeBlockPattern = regexp.MustCompile("(?s)```(\\w+)?\\s*\\n(.*?)\\n```")
	linkPattern      = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

	navigationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*\*\s*\[Home\].*$`),
		regexp.MustCompile(`(?im)^\s*\*\s*\[Back\].*$`),
		regexp.MustCompile(`(?im)^\s*\*\s*\[Next\].*$`),
		regexp.MustCompile(`(?im)^\s*\*\s*\[Previous\].*$`),
		regexp.MustCompile(`(?im)^\s*Navigation\s*$`),
		regexp.MustCompile(`(?im)^\s*Menu\s*$`),
		regexp.MustCompile(`(?im)^\s*\[Skip to .*?\].*$`),
	}

	htmlArtifactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)</?div[^>]*>`),
		regexp.MustCompile(`(?i)</?span[^>]*>`),
		regexp.MustCompile(`(?i)</?p[^>]*>`),
		regexp.MustCompile(`(?i)<br\s*/?>`),
	}

	excessBlankLines  = regexp.MustCompile(`\n{3,}`)
	headingSpacingPre = regexp.MustCompile(`\n(#{1,6})`)
	headingSpacingPos = regexp.MustCompile("(#{1,6}[^\n]*)\n([^#\n])")
	listSpacing       = regexp.MustCompile(`\n([*+-]|\d+\.)`)
	listMarker        = regexp.MustCompile(`(?m)^\s*[*+-]\s+`)
)

// Pipeline applies the fixed transformation stages to single content items.
// It holds no per-item state, so one Pipeline may process arbitrarily many
// items concurrently.
type Pipeline struct {
	cfg      models.ProcessingConfig
	logger   *slog.Logger
	enricher *Enricher
}

// New builds a pipeline with the given stage configuration. The enricher may
// be nil to skip readability/language enrichment entirely.
func New(cfg models.ProcessingConfig, logger *slog.Logger, enricher *Enricher) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Pipeline{cfg: cfg, logger: logger, enricher: enricher}
}

// Process runs all configured stages over one raw content item. It never
// returns an error: unrecoverable per-item problems produce an error-tagged
// result carrying the original input for diagnosis.
func (p *Pipeline) Process(raw models.RawContent) models.ProcessingResult {
	result := models.ProcessingResult{
		SourceURL:      raw.SourceURL,
		ProcessedAt:    time.Now(),
		Status:         "ok",
		OptionsUsed:    p.cfg,
		StepsCompleted: []string{},
	}

	markdown := raw.Markdown
	if strings.TrimSpace(markdown) == "" && raw.HTML != "" {
		extracted, err := MarkdownFromHTML(raw.HTML)
		if err != nil || strings.TrimSpace(extracted) == "" {
			return p.fail(result, raw, "extraction_error", "no markdown and HTML extraction produced nothing")
		}
		markdown = extracted
		result.StepsCompleted = append(result.StepsCompleted, "html_fallback_extraction")
	}
	if strings.TrimSpace(markdown) == "" {
		return p.fail(result, raw, "validation_error", "no extractable content in input")
	}

	var codeBlocks []models.CodeBlock

	if p.cfg.PreserveCodeBlocks {
		markdown, codeBlocks = p.preserveCodeBlocks(markdown)
		result.StepsCompleted = append(result.StepsCompleted, "code_block_preservation")
	}

	if p.cfg.LinkValidation {
		markdown = p.processLinks(markdown, raw.SourceURL)
		result.StepsCompleted = append(result.StepsCompleted, "link_processing")
	}

	if p.cfg.CleanNavigation {
		markdown = cleanStructure(markdown)
		result.StepsCompleted = append(result.StepsCompleted, "content_cleaning")
	}

	if p.cfg.OptimizeForAI {
		markdown = p.aiFormat(markdown)
		result.StepsCompleted = append(result.StepsCompleted, "ai_optimization")
	}

	wordCount := len(strings.Fields(markdown))
	result.Optimized = models.OptimizedContent{
		SourceURL:   raw.SourceURL,
		ContentType: "processed_markdown",
		Markdown:    markdown,
		HTML:        raw.HTML,
		RawHTML:     raw.RawHTML,
		CodeBlocks:  codeBlocks,
		ProcessingInfo: models.ProcessingInfo{
			ProcessedAt:          result.ProcessedAt.Format(time.RFC3339),
			ProcessorVersion:     processorVersion,
			TotalCodeBlocks:      len(codeBlocks),
			ContentLength:        len(markdown),
			EstimatedReadingMins: quality.ReadingMinutes(wordCount),
		},
	}
	result.StepsCompleted = append(result.StepsCompleted, "structured_output_generation")

	if p.enricher != nil && raw.RawHTML != "" {
		p.enricher.Enrich(&result.Optimized.ProcessingInfo, raw.SourceURL, raw.RawHTML, markdown)
	}

	if p.cfg.IncludeMetadata {
		result.Metadata = quality.ExtractMetadata(markdown, raw.SourceURL, len(codeBlocks))
		result.StepsCompleted = append(result.StepsCompleted, "metadata_generation")
	}

	hash, err := CanonicalHash(result.Optimized)
	if err != nil {
		return p.fail(result, raw, "hash_error", err.Error())
	}
	result.ContentHash = hash

	return result
}

func (p *Pipeline) fail(result models.ProcessingResult, raw models.RawContent, errType, msg string) models.ProcessingResult {
	p.logger.Error("content processing failed", "url", raw.SourceURL, "error_type", errType, "error", msg)
	result.Status = "error"
	result.ErrorType = errType
	result.ErrorMessage = msg
	result.OriginalInput = &raw
	return result
}

// preserveCodeBlocks scans fenced code regions, resolves each block's
// language, records its metadata, and re-emits the fence with the resolved
// tag. Block content is annotated, never mutated.
func (p *Pipeline) preserveCodeBlocks(markdown string) (string, []models.CodeBlock) {
	var blocks []models.CodeBlock

	enhanced := codeBlockPattern.ReplaceAllStringFunc(markdown, func(match string) string {
		sub := codeBlockPattern.FindStringSubmatch(match)
		language, body := sub[1], sub[2]

		if language == "" || language == "text" {
			language = "text"
			if p.cfg.CodeLanguageDetection {
				if detected := classify.DetectLanguage(body); detected != "" {
					language = detected
				}
			}
		}

		blocks = append(blocks, models.CodeBlock{
			Language:  language,
			Content:   body,
			LineCount: len(strings.Split(body, "\n")),
			CharCount: len(body),
		})

		return "```" + language + "\n" + body + "\n```"
	})

	return enhanced, blocks
}

// processLinks resolves relative link targets against the source URL and
// strips fragments from resolved targets. Anchor, mailto and tel links pass
// through verbatim; links with empty display text get the cleaned URL as
// their text.
func (p *Pipeline) processLinks(markdown, sourceURL string) string {
	base, baseErr := url.Parse(sourceURL)

	return linkPattern.ReplaceAllStringFunc(markdown, func(match string) string {
		sub := linkPattern.FindStringSubmatch(match)
		text, target := sub[1], sub[2]

		if strings.HasPrefix(target, "#") ||
			strings.HasPrefix(target, "mailto:") ||
			strings.HasPrefix(target, "tel:") {
			return match
		}

		resolved, err := url.Parse(target)
		if err != nil {
			return match
		}
		if !resolved.IsAbs() && !strings.HasPrefix(target, "//") {
			if baseErr != nil {
				return match
			}
			resolved = base.ResolveReference(resolved)
		}

		resolved.Fragment = ""
		clean := resolved.String()

		if strings.TrimSpace(text) != "" {
			return "[" + text + "](" + clean + ")"
		}
		return "[" + clean + "](" + clean + ")"
	})
}

// cleanStructure strips known navigation boilerplate lines, collapses runs
// of blank lines, and trims surrounding whitespace.
func cleanStructure(markdown string) string {
	for _, pattern := range navigationPatterns {
		markdown = pattern.ReplaceAllString(markdown, "")
	}
	markdown = excessBlankLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown)
}

// aiFormat normalizes heading hierarchy and spacing, canonicalizes list
// markers, and strips leftover inline HTML.
func (p *Pipeline) aiFormat(markdown string) string {
	if p.cfg.HeadingNormalization {
		markdown = classify.NormalizeHeadings(markdown)
	}

	markdown = headingSpacingPre.ReplaceAllString(markdown, "\n\n$1")
	markdown = headingSpacingPos.ReplaceAllString(markdown, "$1\n\n$2")

	markdown = listSpacing.ReplaceAllString(markdown, "\n\n$1")
	markdown = listMarker.ReplaceAllString(markdown, "- ")

	if p.cfg.RemoveHTMLArtifacts {
		for _, pattern := range htmlArtifactPatterns {
			markdown = pattern.ReplaceAllString(markdown, "")
		}
	}

	markdown = excessBlankLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown)
}
