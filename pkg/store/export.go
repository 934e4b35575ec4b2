package store

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jnystrom/contentpipe/models"
)

const exportManifestName = "export_metadata.json"

// ExportOptions selects the record set for an export. FileIDs takes
// precedence; otherwise Domain narrows the set; otherwise everything is
// exported.
type ExportOptions struct {
	FileIDs         []string
	Domain          string
	IncludeMetadata bool
}

// Export bundles the selected records into a zip archive under exports/,
// preserving each file's relative path. An empty resolved set fails the
// whole call; no partial archive is produced.
func (s *Store) Export(opts ExportOptions) (string, error) {
	var records []*models.FileRecord

	if len(opts.FileIDs) > 0 {
		s.mu.RLock()
		for _, id := range opts.FileIDs {
			if record, ok := s.index[id]; ok {
				copied := *record
				records = append(records, &copied)
			}
		}
		s.mu.RUnlock()
	} else {
		records = s.List(ListFilter{Domain: opts.Domain})
	}

	if len(records) == 0 {
		return "", ErrEmptyExport
	}

	scope := "all"
	if opts.Domain != "" {
		scope = sanitizeFilename(opts.Domain, s.cfg.MaxFilenameLength)
	}
	archiveName := fmt.Sprintf("export_%s_%s.zip", scope, time.Now().Format("20060102_150405"))
	archivePath := filepath.Join(s.baseDir, exportsDir, archiveName)

	if err := s.writeArchive(archivePath, records, opts.IncludeMetadata); err != nil {
		_ = os.Remove(archivePath)
		return "", err
	}

	s.logger.Info("export completed", "archive", archivePath, "files", len(records))
	return archivePath, nil
}

func (s *Store) writeArchive(archivePath string, records []*models.FileRecord, includeMetadata bool) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	for _, record := range records {
		data, err := os.ReadFile(filepath.Join(s.baseDir, record.RelativePath))
		if os.IsNotExist(err) {
			s.logger.Warn("skipping record with missing file", "file_id", record.FileID, "path", record.RelativePath)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", record.RelativePath, err)
		}

		entry, err := zw.Create(record.RelativePath)
		if err != nil {
			return fmt.Errorf("failed to create archive entry: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("failed to write archive entry: %w", err)
		}
	}

	if includeMetadata {
		manifest, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize export manifest: %w", err)
		}
		entry, err := zw.Create(exportManifestName)
		if err != nil {
			return fmt.Errorf("failed to create manifest entry: %w", err)
		}
		if _, err := entry.Write(manifest); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}
