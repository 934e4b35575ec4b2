package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jnystrom/contentpipe/models"
)

func (s *Store) indexPath() string {
	return filepath.Join(s.baseDir, metadataDir, indexFilename)
}

// loadIndex reads the snapshot from disk. A missing snapshot means a fresh
// store; a corrupt one is an error rather than a silent reset.
func (s *Store) loadIndex() error {
	data, err := os.ReadFile(s.indexPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index snapshot: %w", err)
	}

	index := make(map[string]*models.FileRecord)
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("failed to parse index snapshot: %w", err)
	}

	s.index = index
	return nil
}

// persistIndex writes the full index as a new snapshot. The current snapshot
// is first copied to a timestamped backup, then the new snapshot is written
// to scratch space and renamed over the canonical path, so a crash leaves
// either the old snapshot or a complete new one. Callers must hold the write
// lock.
func (s *Store) persistIndex() error {
	indexPath := s.indexPath()

	if s.cfg.BackupEnabled {
		if _, err := os.Stat(indexPath); err == nil {
			backupName := fmt.Sprintf("file_index_backup_%s.json", time.Now().Format("20060102_150405.000"))
			backupPath := filepath.Join(s.baseDir, backupsDir, backupName)
			if err := copyFile(indexPath, backupPath); err != nil {
				return fmt.Errorf("failed to back up index snapshot: %w", err)
			}
		}
	}

	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize index: %w", err)
	}

	tmpPath := filepath.Join(s.baseDir, tempDir, indexFilename+".tmp")
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write index snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, indexPath); err != nil {
		return fmt.Errorf("failed to replace index snapshot: %w", err)
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
