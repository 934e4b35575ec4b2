package models

import "time"

// FileRecord is the persisted metadata for one stored content artifact.
// FileID is immutable for the lifetime of the record; only LastModifiedAt
// and Tags may change after creation.
type FileRecord struct {
	FileID         string         `json:"file_id" yaml:"file_id"`
	OriginalURL    string         `json:"original_url" yaml:"original_url"`
	Domain         string         `json:"domain" yaml:"domain"`
	RelativePath   string         `json:"file_path" yaml:"file_path"`
	ContentType    string         `json:"content_type" yaml:"content_type"`
	ContentHash    string         `json:"content_hash" yaml:"content_hash"`
	SizeBytes      int64          `json:"file_size" yaml:"file_size"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`
	LastModifiedAt time.Time      `json:"last_modified" yaml:"last_modified"`
	ProcessingInfo map[string]any `json:"processing_info,omitempty" yaml:"processing_info,omitempty"`
	QualityScore   float64        `json:"quality_score" yaml:"quality_score"`
	Tags           []string       `json:"tags" yaml:"tags"`
}

// HasTag reports whether the record carries the given tag.
func (r *FileRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAllTags reports whether the record carries every listed tag.
func (r *FileRecord) HasAllTags(tags []string) bool {
	for _, t := range tags {
		if !r.HasTag(t) {
			return false
		}
	}
	return true
}
