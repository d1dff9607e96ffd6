package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"diaroo/internal/logger"
)

// Housekeeper prunes day directories that have aged out of the retention
// window.
type Housekeeper struct {
	baseDir       string
	retentionDays int
}

func NewHousekeeper(baseDir string, retentionDays int) *Housekeeper {
	return &Housekeeper{baseDir: baseDir, retentionDays: retentionDays}
}

// Prune removes day directories dated before the retention cutoff and
// returns how many were removed. A retention of zero or less disables
// pruning entirely, and today's directory is never touched.
func (h *Housekeeper) Prune() (int, error) {
	if h.retentionDays <= 0 {
		return 0, nil
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, -h.retentionDays).Format(dateLayout)
	today := now.Format(dateLayout)

	entries, err := os.ReadDir(h.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read data directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !isDateName(name) {
			continue
		}
		// ISO dates compare lexicographically in chronological order.
		if name >= cutoff || name == today {
			continue
		}
		if err := os.RemoveAll(filepath.Join(h.baseDir, name)); err != nil {
			logger.GetLogger().Warnf("failed to prune %s: %v", name, err)
			continue
		}
		logger.GetLogger().Infof("Pruned old data directory: %s", name)
		removed++
	}
	return removed, nil
}
