package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/jnystrom/contentpipe/models"
	"github.com/jnystrom/contentpipe/pkg/db"
	"github.com/jnystrom/contentpipe/pkg/pipeline"
	"github.com/jnystrom/contentpipe/pkg/store"
)

// Job is one queued input for a worker.
type Job struct {
	Index int
	Input models.RawContent
}

// ItemResult couples one input's pipeline outcome with its store outcome.
// A store failure does not erase the pipeline result; both errors surface
// on the same item.
type ItemResult struct {
	SourceURL    string                  `json:"source_url" yaml:"source_url"`
	Status       string                  `json:"status" yaml:"status"`
	FileID       string                  `json:"file_id,omitempty" yaml:"file_id,omitempty"`
	ErrorType    string                  `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string                  `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	StoreError   string                  `json:"store_error,omitempty" yaml:"store_error,omitempty"`
	QualityScore float64                 `json:"quality_score" yaml:"quality_score"`
	Result       models.ProcessingResult `json:"-" yaml:"-"`
}

// Report aggregates a full batch run. AvgQualityScore covers succeeded
// items only.
type Report struct {
	Attempted       int          `json:"attempted" yaml:"attempted"`
	Succeeded       int          `json:"succeeded" yaml:"succeeded"`
	Failed          int          `json:"failed" yaml:"failed"`
	TotalWords      int          `json:"total_words" yaml:"total_words"`
	TotalCodeBlocks int          `json:"total_code_blocks" yaml:"total_code_blocks"`
	AvgQualityScore float64      `json:"avg_quality_score" yaml:"avg_quality_score"`
	Items           []ItemResult `json:"items" yaml:"items"`
}

// Coordinator fans pipeline work out over a bounded worker pool and
// funnels every successful result into the store.
type Coordinator struct {
	pipe    *pipeline.Pipeline
	store   *store.Store
	history *db.DB
	workers int
	logger  *slog.Logger
}

// New builds a coordinator. history may be nil to skip run recording.
func New(pipe *pipeline.Pipeline, st *store.Store, history *db.DB, workers int, logger *slog.Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Coordinator{
		pipe:    pipe,
		store:   st,
		history: history,
		workers: workers,
		logger:  logger,
	}
}

// Run processes every input and returns the aggregate report. Individual
// failures never abort the batch; each item carries its own errors.
func (c *Coordinator) Run(inputs []models.RawContent, cfg models.ProcessingConfig) Report {
	c.logger.Info("Starting batch run", "item_count", len(inputs), "workers", c.workers)

	var wg sync.WaitGroup
	jobs := make(chan Job, len(inputs))
	results := make(chan ItemResult, len(inputs))

	for w := 1; w <= c.workers; w++ {
		wg.Add(1)
		go c.worker(w, &wg, jobs, results)
	}

	for i, input := range inputs {
		jobs <- Job{Index: i, Input: input}
	}
	close(jobs)

	wg.Wait()
	close(results)
	c.logger.Info("All batch workers finished")

	report := Report{Attempted: len(inputs)}
	var qualitySum float64
	for item := range results {
		report.Items = append(report.Items, item)
		if item.Status != "ok" {
			report.Failed++
			continue
		}
		report.Succeeded++
		report.TotalWords += item.Result.Metadata.WordCount
		report.TotalCodeBlocks += item.Result.Metadata.CodeBlockCount
		qualitySum += item.QualityScore
	}
	if report.Succeeded > 0 {
		report.AvgQualityScore = qualitySum / float64(report.Succeeded)
	}

	c.recordRun(cfg, report)
	return report
}

// worker drains the job queue, running the pipeline and the store per item.
func (c *Coordinator) worker(id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- ItemResult) {
	defer wg.Done()
	for job := range jobs {
		c.logger.Info("Worker started job", "worker_id", id, "url", job.Input.SourceURL)
		results <- c.processOne(job.Input)
	}
}

func (c *Coordinator) processOne(input models.RawContent) ItemResult {
	result := c.pipe.Process(input)
	item := ItemResult{
		SourceURL:    result.SourceURL,
		Status:       result.Status,
		ErrorType:    result.ErrorType,
		ErrorMessage: result.ErrorMessage,
		QualityScore: result.Metadata.QualityScore,
		Result:       result,
	}
	if result.Failed() {
		c.logger.Warn("Pipeline failed for item", "url", input.SourceURL, "error_type", result.ErrorType)
		return item
	}

	if c.store == nil {
		return item
	}

	fileID, err := c.store.Store(
		result.SourceURL,
		result.Optimized.Markdown,
		"processed_markdown",
		processingInfoMap(result.Optimized.ProcessingInfo),
		result.Metadata.QualityScore,
		[]string{"processed"},
	)
	if err != nil {
		c.logger.Error("Store failed for item", "url", input.SourceURL, "error", err)
		item.Status = "error"
		item.ErrorType = storeErrorType(err)
		item.StoreError = err.Error()
		return item
	}
	item.FileID = fileID
	return item
}

// storeErrorType classifies a store failure: rejected content is a
// validation error, everything else is an I/O error.
func storeErrorType(err error) string {
	if errors.Is(err, store.ErrNoContent) || errors.Is(err, store.ErrContentTooLarge) {
		return "validation_error"
	}
	return "io_error"
}

// recordRun persists the batch outcome to the run-history ledger.
// Recording failures are logged and swallowed; the report stands on its own.
func (c *Coordinator) recordRun(cfg models.ProcessingConfig, report Report) {
	if c.history == nil {
		return
	}

	runID, err := c.history.InsertRun(report.Attempted, describeOptions(cfg))
	if err != nil {
		c.logger.Warn("Failed to record run", "error", err)
		return
	}

	for _, item := range report.Items {
		ri := db.RunItem{
			RunID:          runID,
			SourceURL:      item.SourceURL,
			Status:         item.Status,
			ErrorType:      item.ErrorType,
			ErrorMessage:   item.ErrorMessage,
			FileID:         item.FileID,
			QualityScore:   item.QualityScore,
			WordCount:      item.Result.Metadata.WordCount,
			CodeBlockCount: item.Result.Metadata.CodeBlockCount,
		}
		if item.StoreError != "" && ri.ErrorMessage == "" {
			ri.ErrorMessage = item.StoreError
		}
		if err := c.history.InsertRunItem(ri); err != nil {
			c.logger.Warn("Failed to record run item", "url", item.SourceURL, "error", err)
		}
	}

	err = c.history.UpdateRunStats(runID, report.Succeeded, report.Failed,
		report.TotalWords, report.TotalCodeBlocks, report.AvgQualityScore)
	if err != nil {
		c.logger.Warn("Failed to finalize run stats", "run_id", runID, "error", err)
	}
}

// describeOptions renders the enabled stage flags as a stable comma list.
func describeOptions(cfg models.ProcessingConfig) string {
	var on []string
	for _, flag := range []struct {
		name    string
		enabled bool
	}{
		{"code_blocks", cfg.PreserveCodeBlocks},
		{"link_validation", cfg.LinkValidation},
		{"clean_navigation", cfg.CleanNavigation},
		{"ai_optimization", cfg.OptimizeForAI},
		{"metadata", cfg.IncludeMetadata},
	} {
		if flag.enabled {
			on = append(on, flag.name)
		}
	}
	return strings.Join(on, ",")
}

// processingInfoMap flattens ProcessingInfo for the store's opaque bag.
func processingInfoMap(info models.ProcessingInfo) map[string]any {
	data, err := json.Marshal(info)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// Summary renders the one-line outcome used by CLI logging.
func (r Report) Summary() string {
	return fmt.Sprintf("%d attempted, %d succeeded, %d failed", r.Attempted, r.Succeeded, r.Failed)
}
