// Package store is a content-addressable file store for processed content.
// Files are organized into domain folders under a base directory; metadata
// lives in an in-memory index persisted as a full JSON snapshot with backup
// on every mutation.
package store

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jnystrom/contentpipe/models"
)

const (
	contentDir  = "scraped_content"
	metadataDir = "metadata"
	exportsDir  = "exports"
	backupsDir  = "backups"
	tempDir     = "temp"

	indexFilename = "file_index.json"
)

// Store owns the physical file tree and the metadata index. All mutations
// are serialized behind the write lock; reads share a read lock so they
// always observe a consistent index.
type Store struct {
	baseDir string
	cfg     models.StorageConfig
	logger  *slog.Logger

	mu    sync.RWMutex
	index map[string]*models.FileRecord
}

// New opens a store rooted at baseDir, creating the directory layout and
// loading any existing index snapshot.
func New(baseDir string, cfg models.StorageConfig, logger *slog.Logger) (*Store, error) {
	for _, dir := range []string{contentDir, metadataDir, exportsDir, backupsDir, tempDir} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0750); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}

	s := &Store{
		baseDir: baseDir,
		cfg:     cfg,
		logger:  logger,
		index:   make(map[string]*models.FileRecord),
	}

	if err := s.loadIndex(); err != nil {
		return nil, err
	}

	logger.Info("store opened", "base_dir", baseDir, "records", len(s.index))
	return s, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Store persists one content artifact and returns its file ID. Storing
// content whose hash already exists is a no-op returning the existing ID.
// The duplicate check, file write, index update, and snapshot persist run
// as one critical section so concurrent stores cannot race on identity.
func (s *Store) Store(sourceURL, content, contentType string, processingInfo map[string]any, qualityScore float64, tags []string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrNoContent
	}
	if s.cfg.MaxFileSizeMB > 0 && len(content) > s.cfg.MaxFileSizeMB*1024*1024 {
		return "", fmt.Errorf("%w: %d bytes", ErrContentTooLarge, len(content))
	}

	contentHash := hashContent(content)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findByHash(contentHash); existing != nil {
		s.logger.Info("duplicate content, returning existing record",
			"file_id", existing.FileID, "url", sourceURL)
		return existing.FileID, nil
	}

	now := time.Now()
	fileID := generateFileID(sourceURL, contentHash, now)
	domain := domainOf(sourceURL)

	relPath, err := s.placeFile(sourceURL, domain, contentType, fileID, now)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.baseDir, relPath)
	if err := os.WriteFile(fullPath, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write content file: %w", err)
	}

	record := &models.FileRecord{
		FileID:         fileID,
		OriginalURL:    sourceURL,
		Domain:         domain,
		RelativePath:   relPath,
		ContentType:    contentType,
		ContentHash:    contentHash,
		SizeBytes:      int64(len(content)),
		CreatedAt:      now,
		LastModifiedAt: now,
		ProcessingInfo: processingInfo,
		QualityScore:   qualityScore,
		Tags:           append([]string{}, tags...),
	}

	s.index[fileID] = record
	if err := s.persistIndex(); err != nil {
		// The written file becomes an orphan, detectable via cleanup; the
		// previous snapshot on disk stays intact.
		delete(s.index, fileID)
		return "", fmt.Errorf("failed to persist index: %w", err)
	}

	s.logger.Info("content stored", "file_id", fileID, "path", relPath, "size", record.SizeBytes)
	return fileID, nil
}

// GetRecord returns the record for a file ID.
func (s *Store) GetRecord(fileID string) (*models.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.index[fileID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *record
	return &copied, nil
}

// GetContent reads the stored bytes for a file ID. A record whose file is
// missing on disk reports ErrMissingFile rather than panicking: the index
// entry is preserved for investigation.
func (s *Store) GetContent(fileID string) ([]byte, error) {
	s.mu.RLock()
	record, ok := s.index[fileID]
	var relPath string
	if ok {
		relPath = record.RelativePath
	}
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, relPath))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, relPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return data, nil
}

// ListFilter narrows List results. All set filters are conjunctive; Tags
// requires the record to carry every listed tag.
type ListFilter struct {
	Domain          string
	ContentType     string
	Tags            []string
	MinQualityScore float64
	HasMinQuality   bool
}

// List returns matching records sorted by creation time, newest first.
func (s *Store) List(filter ListFilter) []*models.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*models.FileRecord
	for _, record := range s.index {
		if filter.Domain != "" && record.Domain != filter.Domain {
			continue
		}
		if filter.ContentType != "" && record.ContentType != filter.ContentType {
			continue
		}
		if len(filter.Tags) > 0 && !record.HasAllTags(filter.Tags) {
			continue
		}
		if filter.HasMinQuality && record.QualityScore < filter.MinQualityScore {
			continue
		}
		copied := *record
		results = append(results, &copied)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results
}

// Delete removes a record's file and index entry, persisting the index.
// Returns false if the record does not exist. A file already absent on disk
// does not fail the delete.
func (s *Store) Delete(fileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.index[fileID]
	if !ok {
		return false, nil
	}

	fullPath := filepath.Join(s.baseDir, record.RelativePath)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to remove file: %w", err)
	}

	delete(s.index, fileID)
	if err := s.persistIndex(); err != nil {
		return false, fmt.Errorf("failed to persist index: %w", err)
	}

	s.logger.Info("file deleted", "file_id", fileID, "path", record.RelativePath)
	return true, nil
}

// AddTags appends tags to a record and persists the index. Duplicate tags
// are ignored.
func (s *Store) AddTags(fileID string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.index[fileID]
	if !ok {
		return ErrNotFound
	}

	changed := false
	for _, tag := range tags {
		if !record.HasTag(tag) {
			record.Tags = append(record.Tags, tag)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	record.LastModifiedAt = time.Now()
	return s.persistIndex()
}

func (s *Store) findByHash(contentHash string) *models.FileRecord {
	for _, record := range s.index {
		if record.ContentHash == contentHash {
			return record
		}
	}
	return nil
}

// placeFile derives the relative path for new content and ensures its
// directory exists. The path always stays under the content directory.
func (s *Store) placeFile(sourceURL, domain, contentType, fileID string, now time.Time) (string, error) {
	folder := contentDir
	if s.cfg.DomainBasedFolders {
		domainSafe := sanitizeFilename(domain, s.cfg.MaxFilenameLength)
		if domainSafe == "" {
			domainSafe = "unknown"
		}
		folder = path.Join(contentDir, domainSafe)
	}

	if err := os.MkdirAll(filepath.Join(s.baseDir, filepath.FromSlash(folder)), 0750); err != nil {
		return "", fmt.Errorf("failed to create domain directory: %w", err)
	}

	filename := s.generateFilename(sourceURL, contentType, fileID, now)
	return path.Join(folder, filename), nil
}

// generateFilename builds a collision-resistant filename from the URL's last
// path segment, a timestamp, and the file ID. The file ID suffix keeps
// same-named pages stored in the same second from colliding on one path.
func (s *Store) generateFilename(sourceURL, contentType, fileID string, now time.Time) string {
	base := "page"
	if u, err := url.Parse(sourceURL); err == nil {
		segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
		if len(segments) > 0 {
			last := segments[len(segments)-1]
			base = strings.TrimSuffix(last, path.Ext(last))
		}
	}

	ext := extensionFor(contentType)
	suffix := "_" + fileID + ext
	if s.cfg.TimestampNaming {
		suffix = fmt.Sprintf("_%s_%s%s", now.Format("20060102_150405"), fileID, ext)
	}

	if s.cfg.SanitizeFilenames {
		base = sanitizeFilename(base, 0)
		if base == "" {
			base = "page"
		}
		// Truncate the base, never the uniquifying suffix.
		if max := s.cfg.MaxFilenameLength - len(suffix); max > 0 && len(base) > max {
			base = base[:max]
		}
	}
	return base + suffix
}

func extensionFor(contentType string) string {
	switch contentType {
	case "markdown", "processed_markdown":
		return ".md"
	case "html":
		return ".html"
	case "json":
		return ".json"
	default:
		return ".txt"
	}
}

// sanitizeFilename strips a name down to alphanumerics, dash, underscore,
// and dot, replaces spaces with underscores, and truncates to maxLength
// while preserving the extension.
func sanitizeFilename(name string, maxLength int) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	sanitized := b.String()

	if maxLength > 0 && len(sanitized) > maxLength {
		ext := path.Ext(sanitized)
		keep := maxLength - len(ext)
		if keep < 0 {
			keep = 0
		}
		sanitized = sanitized[:keep] + ext
	}
	return sanitized
}

func domainOf(sourceURL string) string {
	if u, err := url.Parse(sourceURL); err == nil {
		return u.Host
	}
	return ""
}

func hashContent(content string) string {
	digest := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", digest)
}

// generateFileID derives a short stable ID from the URL, content hash, and
// creation time.
func generateFileID(sourceURL, contentHash string, now time.Time) string {
	combined := sourceURL + "_" + contentHash + "_" + now.Format(time.RFC3339Nano)
	digest := sha256.Sum256([]byte(combined))
	return fmt.Sprintf("%x", digest[:6])
}
