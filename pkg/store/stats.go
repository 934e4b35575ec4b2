package store

import (
	"os"
	"path/filepath"
	"sort"
)

// GroupStats aggregates count and byte size for one grouping key.
type GroupStats struct {
	Count int   `json:"count" yaml:"count"`
	Size  int64 `json:"size" yaml:"size"`
}

// Statistics summarizes the stored corpus.
type Statistics struct {
	TotalFiles          int                   `json:"total_files" yaml:"total_files"`
	TotalSizeBytes      int64                 `json:"total_size_bytes" yaml:"total_size_bytes"`
	AverageQualityScore float64               `json:"average_quality_score" yaml:"average_quality_score"`
	Domains             map[string]GroupStats `json:"domains" yaml:"domains"`
	ContentTypes        map[string]GroupStats `json:"content_types" yaml:"content_types"`
}

// Statistics computes storage statistics. Pure aggregation over the
// in-memory index; no disk I/O.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		Domains:      make(map[string]GroupStats),
		ContentTypes: make(map[string]GroupStats),
	}

	var qualitySum float64
	for _, record := range s.index {
		stats.TotalFiles++
		stats.TotalSizeBytes += record.SizeBytes
		qualitySum += record.QualityScore

		d := stats.Domains[record.Domain]
		d.Count++
		d.Size += record.SizeBytes
		stats.Domains[record.Domain] = d

		ct := stats.ContentTypes[record.ContentType]
		ct.Count++
		ct.Size += record.SizeBytes
		stats.ContentTypes[record.ContentType] = ct
	}

	if stats.TotalFiles > 0 {
		stats.AverageQualityScore = qualitySum / float64(stats.TotalFiles)
	}
	return stats
}

// BrokenRecords returns the IDs of index entries whose file is missing on
// disk, sorted for stable output. These are reported, never auto-pruned:
// the record's metadata may still be worth investigating.
func (s *Store) BrokenRecords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var broken []string
	for id, record := range s.index {
		if _, err := os.Stat(filepath.Join(s.baseDir, record.RelativePath)); os.IsNotExist(err) {
			broken = append(broken, id)
		}
	}
	sort.Strings(broken)
	return broken
}
