package batch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jnystrom/contentpipe/models"
	"github.com/jnystrom/contentpipe/pkg/db"
	"github.com/jnystrom/contentpipe/pkg/pipeline"
	"github.com/jnystrom/contentpipe/pkg/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testCoordinator(t *testing.T, workers int, history *db.DB) (*Coordinator, *store.Store) {
	t.Helper()
	logger := testLogger()
	cfg := models.DefaultConfig()

	st, err := store.New(t.TempDir(), cfg.Storage, logger)
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	pipe := pipeline.New(cfg.Processing, logger, nil)
	return New(pipe, st, history, workers, logger), st
}

func TestRun_MixedOutcomes(t *testing.T) {
	c, _ := testCoordinator(t, 2, nil)

	inputs := []models.RawContent{
		{SourceURL: "https://ex.com/good", Markdown: "# Title\n\nsome real words here\n\n```python\nimport os\n```\n"},
		{SourceURL: "https://ex.com/empty", Markdown: ""},
		{SourceURL: "https://ex.com/other", Markdown: "# Other\n\ndifferent body entirely\n"},
	}

	report := c.Run(inputs, models.DefaultConfig().Processing)

	if report.Attempted != 3 {
		t.Errorf("Attempted = %d, want 3", report.Attempted)
	}
	if report.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", report.Succeeded)
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}
	if len(report.Items) != 3 {
		t.Fatalf("Items = %d, want 3", len(report.Items))
	}

	byURL := map[string]ItemResult{}
	for _, item := range report.Items {
		byURL[item.SourceURL] = item
	}

	good := byURL["https://ex.com/good"]
	if good.Status != "ok" || good.FileID == "" {
		t.Errorf("good item = %+v", good)
	}
	empty := byURL["https://ex.com/empty"]
	if empty.Status != "error" || empty.ErrorType != "validation_error" {
		t.Errorf("empty item = %+v", empty)
	}
	if empty.FileID != "" {
		t.Errorf("failed item was stored: %q", empty.FileID)
	}
}

func TestRun_FailureDoesNotAbortBatch(t *testing.T) {
	c, st := testCoordinator(t, 1, nil)

	inputs := []models.RawContent{
		{SourceURL: "https://ex.com/bad", Markdown: "   "},
		{SourceURL: "https://ex.com/after", Markdown: "# Survives\n\nbody text\n"},
	}

	report := c.Run(inputs, models.DefaultConfig().Processing)
	if report.Succeeded != 1 || report.Failed != 1 {
		t.Fatalf("report = %s", report.Summary())
	}
	if got := st.List(store.ListFilter{}); len(got) != 1 {
		t.Errorf("store has %d records, want 1", len(got))
	}
}

func TestRun_AverageQualityOverSucceededOnly(t *testing.T) {
	c, _ := testCoordinator(t, 2, nil)

	inputs := []models.RawContent{
		{SourceURL: "https://ex.com/a", Markdown: "# A\n\nshort body\n"},
		{SourceURL: "https://ex.com/fail", Markdown: ""},
	}

	report := c.Run(inputs, models.DefaultConfig().Processing)
	if report.Succeeded != 1 {
		t.Fatalf("Succeeded = %d, want 1", report.Succeeded)
	}

	var okItem ItemResult
	for _, item := range report.Items {
		if item.Status == "ok" {
			okItem = item
		}
	}
	if report.AvgQualityScore != okItem.QualityScore {
		t.Errorf("AvgQualityScore = %v, want %v (succeeded items only)", report.AvgQualityScore, okItem.QualityScore)
	}
}

func TestRun_DuplicateContentSharesFileID(t *testing.T) {
	c, st := testCoordinator(t, 4, nil)

	body := "# Same\n\nidentical content stored once\n"
	inputs := []models.RawContent{
		{SourceURL: "https://ex.com/one", Markdown: body},
		{SourceURL: "https://mirror.org/two", Markdown: body},
	}

	report := c.Run(inputs, models.DefaultConfig().Processing)
	if report.Succeeded != 2 {
		t.Fatalf("report = %s", report.Summary())
	}
	if report.Items[0].FileID != report.Items[1].FileID {
		t.Errorf("duplicate content got two file IDs: %q vs %q",
			report.Items[0].FileID, report.Items[1].FileID)
	}
	if got := st.List(store.ListFilter{}); len(got) != 1 {
		t.Errorf("store has %d records, want 1", len(got))
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	history, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatalf("db.Open() failed: %v", err)
	}
	defer history.Close()

	c, _ := testCoordinator(t, 2, history)

	inputs := []models.RawContent{
		{SourceURL: "https://ex.com/a", Markdown: "# A\n\nbody one\n"},
		{SourceURL: "https://ex.com/missing", Markdown: ""},
	}
	report := c.Run(inputs, models.DefaultConfig().Processing)

	runs, err := history.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}

	run := runs[0]
	if run.ItemCount != 2 || run.SuccessCount != 1 || run.FailedCount != 1 {
		t.Errorf("run counters = %d/%d/%d", run.ItemCount, run.SuccessCount, run.FailedCount)
	}
	if run.AvgQualityScore != report.AvgQualityScore {
		t.Errorf("AvgQualityScore = %v, want %v", run.AvgQualityScore, report.AvgQualityScore)
	}

	items, err := history.GetRunItems(run.RunID)
	if err != nil {
		t.Fatalf("GetRunItems() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("GetRunItems() returned %d items, want 2", len(items))
	}
}

func TestRun_OversizedContentLabeledValidationError(t *testing.T) {
	logger := testLogger()
	cfg := models.DefaultConfig()
	cfg.Storage.MaxFileSizeMB = 1

	st, err := store.New(t.TempDir(), cfg.Storage, logger)
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	pipe := pipeline.New(cfg.Processing, logger, nil)
	c := New(pipe, st, nil, 1, logger)

	inputs := []models.RawContent{
		{SourceURL: "https://ex.com/huge", Markdown: "# Huge\n\n" + strings.Repeat("word ", 300000)},
	}

	report := c.Run(inputs, cfg.Processing)
	if report.Failed != 1 {
		t.Fatalf("report = %s", report.Summary())
	}
	item := report.Items[0]
	if item.ErrorType != "validation_error" {
		t.Errorf("ErrorType = %q, want validation_error", item.ErrorType)
	}
	if item.StoreError == "" {
		t.Error("StoreError not recorded")
	}
}

func TestStoreErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no content", store.ErrNoContent, "validation_error"},
		{"too large", fmt.Errorf("rejected: %w", store.ErrContentTooLarge), "validation_error"},
		{"disk failure", errors.New("write failed"), "io_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storeErrorType(tt.err); got != tt.want {
				t.Errorf("storeErrorType(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_EmptyInput(t *testing.T) {
	c, _ := testCoordinator(t, 2, nil)

	report := c.Run(nil, models.DefaultConfig().Processing)
	if report.Attempted != 0 || report.Succeeded != 0 || report.Failed != 0 {
		t.Errorf("empty batch report = %s", report.Summary())
	}
	if report.AvgQualityScore != 0 {
		t.Errorf("AvgQualityScore = %v, want 0", report.AvgQualityScore)
	}
}

func TestDescribeOptions(t *testing.T) {
	cfg := models.ProcessingConfig{PreserveCodeBlocks: true, IncludeMetadata: true}
	if got := describeOptions(cfg); got != "code_blocks,metadata" {
		t.Errorf("describeOptions() = %q", got)
	}
	if got := describeOptions(models.ProcessingConfig{}); got != "" {
		t.Errorf("describeOptions(zero) = %q", got)
	}
}
