package models

import "time"

// RawContent is one captured page as delivered by the scraping service.
// The pipeline only reads it; it never mutates the caller's copy.
type RawContent struct {
	SourceURL    string            `json:"source_url" yaml:"url"`
	Markdown     string            `json:"markdown" yaml:"markdown"`
	HTML         string            `json:"html,omitempty" yaml:"html,omitempty"`
	RawHTML      string            `json:"raw_html,omitempty" yaml:"raw_html,omitempty"`
	PageMetadata map[string]string `json:"page_metadata,omitempty" yaml:"page_metadata,omitempty"`
}

// CodeBlock describes one fenced code region extracted from markdown.
// Language is never empty; undetectable code falls back to "text".
type CodeBlock struct {
	Language  string `json:"language"`
	Content   string `json:"content"`
	LineCount int    `json:"line_count"`
	CharCount int    `json:"character_count"`
}

// Heading is one markdown heading with its emitted level.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ContentMetadata holds derived statistics for processed content.
type ContentMetadata struct {
	URL                  string    `json:"url"`
	Domain               string    `json:"domain"`
	WordCount            int       `json:"word_count"`
	LineCount            int       `json:"line_count"`
	CharCount            int       `json:"character_count"`
	HeadingCount         int       `json:"heading_count"`
	CodeBlockCount       int       `json:"code_block_count"`
	LinkCount            int       `json:"link_count"`
	Headings             []Heading `json:"headings"`
	EstimatedReadingMins int       `json:"estimated_reading_time_minutes"`
	QualityScore         float64   `json:"content_quality_score"`
}

// ProcessingInfo is the per-item processing summary embedded in the
// structured output. Enrichment fields are best-effort and may be empty.
type ProcessingInfo struct {
	ProcessedAt          string  `json:"processed_at"`
	ProcessorVersion     string  `json:"processor_version"`
	TotalCodeBlocks      int     `json:"total_code_blocks"`
	ContentLength        int     `json:"content_length"`
	EstimatedReadingMins int     `json:"estimated_reading_time_minutes"`
	Title                string  `json:"title,omitempty"`
	Author               string  `json:"author,omitempty"`
	Excerpt              string  `json:"excerpt,omitempty"`
	SiteName             string  `json:"site_name,omitempty"`
	Language             string  `json:"language,omitempty"`
	LanguageConfidence   float64 `json:"language_confidence,omitempty"`
}

// OptimizedContent is the transformed payload assembled by the pipeline.
type OptimizedContent struct {
	SourceURL      string         `json:"source_url"`
	ContentType    string         `json:"content_type"`
	Markdown       string         `json:"markdown"`
	HTML           string         `json:"html,omitempty"`
	RawHTML        string         `json:"raw_html,omitempty"`
	CodeBlocks     []CodeBlock    `json:"code_blocks"`
	ProcessingInfo ProcessingInfo `json:"processing_info"`
}

// ProcessingResult is the pipeline's output for a single input. A failed
// item carries Status "error" plus the error fields instead of panicking
// or aborting the batch.
type ProcessingResult struct {
	SourceURL      string           `json:"source_url"`
	ProcessedAt    time.Time        `json:"processed_at"`
	Status         string           `json:"status"` // "ok" or "error"
	ErrorType      string           `json:"error_type,omitempty"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	OptionsUsed    ProcessingConfig `json:"processing_options"`
	StepsCompleted []string         `json:"processing_steps"`
	Optimized      OptimizedContent `json:"optimized_content"`
	Metadata       ContentMetadata  `json:"metadata"`
	ContentHash    string           `json:"content_hash,omitempty"`
	OriginalInput  *RawContent      `json:"original_content,omitempty"`
}

// Failed reports whether the result is error-tagged.
func (r *ProcessingResult) Failed() bool {
	return r.Status == "error"
}
