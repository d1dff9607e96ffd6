package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const reportFileName = "report.md"

// ScreenshotStore manages the on-disk layout of a day's captures:
// <baseDir>/<YYYY-MM-DD>/screenshot_*.jpg plus the day's report.md.
type ScreenshotStore struct {
	baseDir string
}

func NewScreenshotStore(baseDir string) *ScreenshotStore {
	return &ScreenshotStore{baseDir: baseDir}
}

// DateDir returns the directory holding the given day's files.
func (s *ScreenshotStore) DateDir(date string) string {
	return filepath.Join(s.baseDir, date)
}

// EnsureDateDir creates the day directory when missing.
func (s *ScreenshotStore) EnsureDateDir(date string) (string, error) {
	dir := s.DateDir(date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create date directory: %w", err)
	}
	return dir, nil
}

// SaveScreenshot writes a JPEG frame into today's directory under a
// millisecond-precision name and returns the full path.
func (s *ScreenshotStore) SaveScreenshot(jpegData []byte) (string, error) {
	now := time.Now()
	dir, err := s.EnsureDateDir(now.Format(dateLayout))
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("screenshot_%s_%03d.jpg",
		now.Format("20060102_150405"), now.Nanosecond()/int(time.Millisecond))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, jpegData, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}

// DeleteScreenshot removes a stored frame. A missing file is not an error,
// so retrying a partially cleaned batch stays quiet.
func (s *ScreenshotStore) DeleteScreenshot(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete screenshot: %w", err)
	}
	return nil
}

// ReportPath returns where the given day's report lives.
func (s *ScreenshotStore) ReportPath(date string) string {
	return filepath.Join(s.DateDir(date), reportFileName)
}

// SaveReportForDate writes (or overwrites) the day's markdown report.
func (s *ScreenshotStore) SaveReportForDate(markdown, date string) (string, error) {
	if _, err := s.EnsureDateDir(date); err != nil {
		return "", err
	}
	path := s.ReportPath(date)
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// ReadReportForDate returns the saved report content.
func (s *ScreenshotStore) ReadReportForDate(date string) (string, error) {
	data, err := os.ReadFile(s.ReportPath(date))
	if err != nil {
		return "", fmt.Errorf("failed to read report for %s: %w", date, err)
	}
	return string(data), nil
}

// CleanupScreenshotsForDate removes every leftover .jpg in the day
// directory and returns how many were deleted. Files that refuse to go are
// skipped.
func (s *ScreenshotStore) CleanupScreenshotsForDate(date string) (int, error) {
	entries, err := os.ReadDir(s.DateDir(date))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read date directory: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
			continue
		}
		if err := os.Remove(filepath.Join(s.DateDir(date), entry.Name())); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

// DateInfo describes one day directory in the data tree.
type DateInfo struct {
	Date      string
	HasReport bool
}

// ListDataDates returns every day that has an activity database, newest
// first, flagging days that already have a report.
func (s *ScreenshotStore) ListDataDates() ([]DateInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var dates []DateInfo
	for _, entry := range entries {
		if !entry.IsDir() || !isDateName(entry.Name()) {
			continue
		}
		dayDir := filepath.Join(s.baseDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dayDir, dbFileName)); err != nil {
			continue
		}
		_, rerr := os.Stat(filepath.Join(dayDir, reportFileName))
		dates = append(dates, DateInfo{Date: entry.Name(), HasReport: rerr == nil})
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Date > dates[j].Date })
	return dates, nil
}

// ListReportDates returns the days that have a saved report, newest first.
func (s *ScreenshotStore) ListReportDates() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var dates []string
	for _, entry := range entries {
		if !entry.IsDir() || !isDateName(entry.Name()) {
			continue
		}
		if _, err := os.Stat(s.ReportPath(entry.Name())); err != nil {
			continue
		}
		dates = append(dates, entry.Name())
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// isDateName reports whether a directory name is a YYYY-MM-DD date.
func isDateName(name string) bool {
	_, err := time.Parse(dateLayout, name)
	return err == nil
}
