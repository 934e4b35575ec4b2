package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jnystrom/contentpipe/models"
	"github.com/jnystrom/contentpipe/pkg/db"
	"github.com/jnystrom/contentpipe/pkg/store"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(c *cli.Context, logger *slog.Logger) *store.Store {
	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Warn("config not loaded, using defaults", "error", err)
	}

	st, err := store.New(c.String("store-dir"), config.Storage, logger)
	if err != nil {
		logger.Error("failed to open content store", "error", err)
		os.Exit(2)
	}
	return st
}

func printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// ListAction prints stored file records matching the given filters.
func ListAction(c *cli.Context) error {
	logger := newLogger(c)
	st := openStore(c, logger)

	filter := store.ListFilter{
		Domain:      c.String("domain"),
		ContentType: c.String("content-type"),
	}
	if c.IsSet("tags") {
		filter.Tags = strings.Split(c.String("tags"), ",")
		for i := range filter.Tags {
			filter.Tags[i] = strings.TrimSpace(filter.Tags[i])
		}
	}
	if c.IsSet("min-quality") {
		filter.MinQualityScore = c.Float64("min-quality")
		filter.HasMinQuality = true
	}

	records := st.List(filter)
	if len(records) == 0 {
		fmt.Println("No records match the filter")
		return nil
	}
	return printYAML(records)
}

// ExportAction bundles selected records into a zip archive.
func ExportAction(c *cli.Context) error {
	logger := newLogger(c)
	st := openStore(c, logger)

	opts := store.ExportOptions{
		Domain:          c.String("domain"),
		IncludeMetadata: !c.Bool("no-metadata"),
	}
	if c.IsSet("ids") {
		opts.FileIDs = strings.Split(c.String("ids"), ",")
		for i := range opts.FileIDs {
			opts.FileIDs[i] = strings.TrimSpace(opts.FileIDs[i])
		}
	}

	archivePath, err := st.Export(opts)
	if err != nil {
		if errors.Is(err, store.ErrEmptyExport) {
			fmt.Fprintln(os.Stderr, "Error: no records match the export selection")
			os.Exit(1)
		}
		logger.Error("export failed", "error", err)
		os.Exit(2)
	}

	fmt.Printf("Export written to: %s\n", archivePath)
	return nil
}

// StatsAction prints aggregate store statistics plus any broken records.
func StatsAction(c *cli.Context) error {
	logger := newLogger(c)
	st := openStore(c, logger)

	output := struct {
		Stats         store.Statistics `yaml:"stats"`
		BrokenRecords []string         `yaml:"broken_records,omitempty"`
	}{
		Stats:         st.Statistics(),
		BrokenRecords: st.BrokenRecords(),
	}
	return printYAML(output)
}

// CleanupAction removes files on disk that no index entry references.
func CleanupAction(c *cli.Context) error {
	logger := newLogger(c)
	st := openStore(c, logger)

	removed, err := st.CleanupOrphans()
	if err != nil {
		logger.Error("cleanup failed", "error", err)
		os.Exit(2)
	}

	fmt.Printf("Removed %d orphaned file(s)\n", removed)
	if broken := st.BrokenRecords(); len(broken) > 0 {
		fmt.Printf("Note: %d record(s) point at missing files (not auto-repaired):\n", len(broken))
		for _, id := range broken {
			fmt.Printf("  - %s\n", id)
		}
	}
	return nil
}

// DeleteAction removes one record and its file.
func DeleteAction(c *cli.Context) error {
	logger := newLogger(c)

	fileID := c.Args().First()
	if fileID == "" {
		fmt.Fprintln(os.Stderr, "Error: No file ID provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  contentpipe delete <file-id>")
		os.Exit(1)
	}

	st := openStore(c, logger)
	ok, err := st.Delete(fileID)
	if err != nil {
		logger.Error("delete failed", "file_id", fileID, "error", err)
		os.Exit(2)
	}
	if !ok {
		fmt.Printf("No record with ID %s\n", fileID)
		os.Exit(1)
	}

	fmt.Printf("Deleted %s\n", fileID)
	return nil
}

// RunsAction lists recorded batch runs, or one run's items with --run.
func RunsAction(c *cli.Context) error {
	logger := newLogger(c)

	history, err := db.Open(c.String("store-dir"))
	if err != nil {
		logger.Error("failed to open run history", "error", err)
		os.Exit(2)
	}
	defer history.Close()

	if c.IsSet("run") {
		runID := int64(c.Int("run"))
		run, err := history.GetRun(runID)
		if err != nil {
			logger.Error("run not found", "run_id", runID, "error", err)
			os.Exit(1)
		}
		items, err := history.GetRunItems(runID)
		if err != nil {
			logger.Error("failed to load run items", "run_id", runID, "error", err)
			os.Exit(2)
		}
		return printYAML(struct {
			Run   *db.Run      `yaml:"run"`
			Items []db.RunItem `yaml:"items"`
		}{Run: run, Items: items})
	}

	runs, err := history.ListRuns(c.Int("limit"))
	if err != nil {
		logger.Error("failed to list runs", "error", err)
		os.Exit(2)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}
	return printYAML(runs)
}
