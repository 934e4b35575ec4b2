package ingest

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jnystrom/contentpipe/internal/common"
	"github.com/jnystrom/contentpipe/models"
	"github.com/jnystrom/contentpipe/pkg/batch"
	"github.com/jnystrom/contentpipe/pkg/db"
	"github.com/jnystrom/contentpipe/pkg/pipeline"
	"github.com/jnystrom/contentpipe/pkg/store"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// CapturesFile is the on-disk input format: a list of captured pages.
type CapturesFile struct {
	Captures []models.RawContent `yaml:"captures"`
}

// ProcessAction reads a captures file, runs the full pipeline over it, and
// stores every successful result.
func ProcessAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Warn("config not loaded, using defaults", "error", err)
	}

	inputPath := c.String("input")
	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: No input file provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  contentpipe process --input captures.yaml`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: contentpipe process --help")
		os.Exit(1)
	}

	captures, err := loadCaptures(inputPath)
	if err != nil {
		logger.Error("failed to load captures file", "path", inputPath, "error", err)
		os.Exit(2)
	}
	if len(captures) == 0 {
		fmt.Fprintln(os.Stderr, "Error: captures file contains no items")
		os.Exit(1)
	}

	// Sanitize and validate source URLs before processing (fail fast)
	urls := make([]string, len(captures))
	for i, capture := range captures {
		urls[i] = capture.SourceURL
	}
	sanitizedURLs, invalidURLs := common.SanitizeAndValidateURLs(urls)
	if len(invalidURLs) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d source URL(s) are malformed (even after cleanup):\n", len(invalidURLs))
		for _, badURL := range invalidURLs {
			fmt.Fprintf(os.Stderr, "  - %s\n", badURL)
		}
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Note: URLs are auto-cleaned (whitespace trimmed, trailing punctuation removed, markdown links extracted)")
		os.Exit(1)
	}
	for i := range captures {
		captures[i].SourceURL = sanitizedURLs[i]
	}

	st, err := store.New(c.String("store-dir"), config.Storage, logger)
	if err != nil {
		logger.Error("failed to initialize content store", "error", err)
		os.Exit(2)
	}

	var history *db.DB
	if !c.Bool("no-history") {
		history, err = db.Open(c.String("store-dir"))
		if err != nil {
			logger.Warn("run history unavailable", "error", err)
		} else {
			defer history.Close()
		}
	}

	var enricher *pipeline.Enricher
	if hasRawHTML(captures) {
		enricher = pipeline.NewEnricher(logger)
	}

	workers := config.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	pipe := pipeline.New(config.Processing, logger, enricher)
	coordinator := batch.New(pipe, st, history, workers, logger)
	report := coordinator.Run(captures, config.Processing)

	if err := printYAML(report); err != nil {
		logger.Error("failed to marshal report", "error", err)
		os.Exit(2)
	}

	if report.Failed == report.Attempted && report.Attempted > 0 {
		os.Exit(2)
	}
	if report.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

// loadCaptures parses the captures file. A bare list and a wrapped
// "captures:" document are both accepted.
func loadCaptures(path string) ([]models.RawContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read captures: %w", err)
	}

	var wrapped CapturesFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Captures) > 0 {
		return wrapped.Captures, nil
	}

	var bare []models.RawContent
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("failed to parse captures: %w", err)
	}
	return bare, nil
}

func hasRawHTML(captures []models.RawContent) bool {
	for _, capture := range captures {
		if capture.RawHTML != "" {
			return true
		}
	}
	return false
}

func printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
