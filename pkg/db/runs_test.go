package db

import (
	"testing"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestInsertRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.InsertRun(3, "code_blocks,metadata")
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	if runID == 0 {
		t.Error("InsertRun() returned 0 run ID")
	}

	run, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.ItemCount != 3 {
		t.Errorf("run.ItemCount = %d, want 3", run.ItemCount)
	}
	if run.Options != "code_blocks,metadata" {
		t.Errorf("run.Options = %q", run.Options)
	}
	if run.SuccessCount != 0 || run.FailedCount != 0 {
		t.Errorf("new run should have zero counts, got %d/%d", run.SuccessCount, run.FailedCount)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRun(999); err == nil {
		t.Error("GetRun(999) error = nil, want not-found error")
	}
}

func TestInsertRunItem(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.InsertRun(2, "")
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	ok := RunItem{
		RunID:          runID,
		SourceURL:      "https://example.com/doc",
		Status:         "ok",
		FileID:         "a1b2c3",
		QualityScore:   58,
		WordCount:      420,
		CodeBlockCount: 3,
	}
	failed := RunItem{
		RunID:        runID,
		SourceURL:    "https://example.com/empty",
		Status:       "error",
		ErrorType:    "validation_error",
		ErrorMessage: "no content provided",
	}

	for _, item := range []RunItem{ok, failed} {
		if err := db.InsertRunItem(item); err != nil {
			t.Fatalf("InsertRunItem() error = %v", err)
		}
	}

	items, err := db.GetRunItems(runID)
	if err != nil {
		t.Fatalf("GetRunItems() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("GetRunItems() returned %d items, want 2", len(items))
	}

	if items[0].FileID != "a1b2c3" || items[0].QualityScore != 58 {
		t.Errorf("first item = %+v", items[0])
	}
	if items[1].Status != "error" || items[1].ErrorType != "validation_error" {
		t.Errorf("second item = %+v", items[1])
	}
	if items[1].FileID != "" {
		t.Errorf("failed item should have empty file ID, got %q", items[1].FileID)
	}
}

func TestInsertRunItem_InvalidRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.InsertRunItem(RunItem{RunID: 42, SourceURL: "https://example.com", Status: "ok"})
	if err == nil {
		t.Error("InsertRunItem() with missing run should fail the foreign key check")
	}
}

func TestUpdateRunStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.InsertRun(5, "")
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	if err := db.UpdateRunStats(runID, 4, 1, 2100, 12, 47.5); err != nil {
		t.Fatalf("UpdateRunStats() error = %v", err)
	}

	run, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.SuccessCount != 4 || run.FailedCount != 1 {
		t.Errorf("counts = %d/%d, want 4/1", run.SuccessCount, run.FailedCount)
	}
	if run.TotalWords != 2100 || run.TotalCodeBlocks != 12 {
		t.Errorf("totals = %d words, %d code blocks", run.TotalWords, run.TotalCodeBlocks)
	}
	if run.AvgQualityScore != 47.5 {
		t.Errorf("AvgQualityScore = %v, want 47.5", run.AvgQualityScore)
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := db.InsertRun(1, "")
		if err != nil {
			t.Fatalf("InsertRun() error = %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	// Most recent first
	if runs[0].RunID != ids[2] {
		t.Errorf("runs[0].RunID = %d, want %d", runs[0].RunID, ids[2])
	}

	limited, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListRuns(2) returned %d runs, want 2", len(limited))
	}
}

func TestCascadeDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.InsertRun(1, "")
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	if err := db.InsertRunItem(RunItem{RunID: runID, SourceURL: "https://example.com", Status: "ok"}); err != nil {
		t.Fatalf("InsertRunItem() error = %v", err)
	}

	if _, err := db.Exec("DELETE FROM runs WHERE run_id = ?", runID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	items, err := db.GetRunItems(runID)
	if err != nil {
		t.Fatalf("GetRunItems() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("run items survived cascade delete: %d left", len(items))
	}
}
