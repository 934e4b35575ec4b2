package pipeline

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/jnystrom/contentpipe/models"
)

// languageSampleLimit bounds how much text is fed to the language detector;
// classification quality plateaus well below this.
const languageSampleLimit = 4096

// Enricher attaches best-effort page metadata to processing results:
// readability-extracted title/author/excerpt and a natural-language guess.
// Failures are logged and never fail the item.
type Enricher struct {
	logger   *slog.Logger
	detector lingua.LanguageDetector
}

// NewEnricher builds an enricher. Constructing the language detector loads
// model data, so build one Enricher and share it across pipeline workers.
func NewEnricher(logger *slog.Logger) *Enricher {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.Spanish, lingua.French, lingua.German,
			lingua.Portuguese, lingua.Italian, lingua.Dutch, lingua.Russian,
			lingua.Japanese, lingua.Chinese,
		).
		Build()

	return &Enricher{logger: logger, detector: detector}
}

// Enrich fills the enrichment fields of info from raw HTML and the processed
// markdown.
func (e *Enricher) Enrich(info *models.ProcessingInfo, sourceURL, rawHTML, markdown string) {
	if parsedURL, err := url.Parse(sourceURL); err == nil {
		parser := readability.NewParser()
		article, err := parser.Parse(strings.NewReader(rawHTML), parsedURL)
		if err != nil {
			e.logger.Warn("readability enrichment failed", "url", sourceURL, "error", err)
		} else {
			info.Title = article.Title
			info.Author = article.Byline
			info.Excerpt = article.Excerpt
			info.SiteName = article.SiteName
		}
	}

	sample := markdown
	if len(sample) > languageSampleLimit {
		sample = sample[:languageSampleLimit]
	}
	if language, ok := e.detector.DetectLanguageOf(sample); ok {
		info.Language = strings.ToLower(language.IsoCode639_1().String())
		info.LanguageConfidence = e.detector.ComputeLanguageConfidence(sample, language)
	}
}
