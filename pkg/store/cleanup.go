package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CleanupOrphans walks the content tree and deletes files no index entry
// references. Index entries are never touched here: a record pointing at a
// missing file is a broken record surfaced through statistics, not something
// cleanup is allowed to heal.
func (s *Store) CleanupOrphans() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	referenced := make(map[string]struct{}, len(s.index))
	for _, record := range s.index {
		referenced[filepath.Join(s.baseDir, record.RelativePath)] = struct{}{}
	}

	root := filepath.Join(s.baseDir, contentDir)
	removed := 0

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := referenced[p]; ok {
			return nil
		}
		if err := os.Remove(p); err != nil {
			s.logger.Error("failed to remove orphan file", "path", p, "error", err)
			return nil
		}
		removed++
		s.logger.Info("removed orphan file", "path", p)
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("orphan cleanup walk failed: %w", err)
	}

	return removed, nil
}
