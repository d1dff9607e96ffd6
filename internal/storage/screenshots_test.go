package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveScreenshotLayout(t *testing.T) {
	base := t.TempDir()
	store := NewScreenshotStore(base)

	data := []byte("not really a jpeg")
	path, err := store.SaveScreenshot(data)
	if err != nil {
		t.Fatalf("SaveScreenshot() error = %v", err)
	}

	today := time.Now().Format(dateLayout)
	if got := filepath.Dir(path); got != filepath.Join(base, today) {
		t.Errorf("screenshot dir = %s, want %s", got, filepath.Join(base, today))
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "screenshot_") || !strings.HasSuffix(name, ".jpg") {
		t.Errorf("unexpected screenshot name %q", name)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading screenshot back: %v", err)
	}
	if string(written) != string(data) {
		t.Error("screenshot content does not round-trip")
	}
}

func TestDeleteScreenshotIdempotent(t *testing.T) {
	store := NewScreenshotStore(t.TempDir())

	path, err := store.SaveScreenshot([]byte("frame"))
	if err != nil {
		t.Fatalf("SaveScreenshot() error = %v", err)
	}

	if err := store.DeleteScreenshot(path); err != nil {
		t.Fatalf("first DeleteScreenshot() error = %v", err)
	}
	if err := store.DeleteScreenshot(path); err != nil {
		t.Errorf("second DeleteScreenshot() error = %v, want nil", err)
	}
}

func TestSaveAndReadReport(t *testing.T) {
	store := NewScreenshotStore(t.TempDir())
	date := "2025-06-01"

	path, err := store.SaveReportForDate("# Daily Activity Report", date)
	if err != nil {
		t.Fatalf("SaveReportForDate() error = %v", err)
	}
	if path != store.ReportPath(date) {
		t.Errorf("report path = %s, want %s", path, store.ReportPath(date))
	}

	content, err := store.ReadReportForDate(date)
	if err != nil {
		t.Fatalf("ReadReportForDate() error = %v", err)
	}
	if content != "# Daily Activity Report" {
		t.Errorf("report content = %q", content)
	}

	// Regenerating replaces the previous report.
	if _, err := store.SaveReportForDate("# Updated", date); err != nil {
		t.Fatalf("second SaveReportForDate() error = %v", err)
	}
	content, err = store.ReadReportForDate(date)
	if err != nil {
		t.Fatalf("ReadReportForDate() after overwrite error = %v", err)
	}
	if content != "# Updated" {
		t.Errorf("overwritten report content = %q", content)
	}
}

func TestCleanupScreenshotsForDate(t *testing.T) {
	base := t.TempDir()
	store := NewScreenshotStore(base)
	date := "2025-06-01"

	dir, err := store.EnsureDateDir(date)
	if err != nil {
		t.Fatalf("EnsureDateDir() error = %v", err)
	}
	for _, name := range []string{"screenshot_a.jpg", "screenshot_b.jpg", "screenshot_c.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
	for _, name := range []string{reportFileName, dbFileName} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("keep"), 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}

	deleted, err := store.CleanupScreenshotsForDate(date)
	if err != nil {
		t.Fatalf("CleanupScreenshotsForDate() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	remaining, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	for _, entry := range remaining {
		if strings.HasSuffix(entry.Name(), ".jpg") {
			t.Errorf("leftover jpg %s survived cleanup", entry.Name())
		}
	}
	if len(remaining) != 2 {
		t.Errorf("got %d remaining files, want report and database", len(remaining))
	}
}

func TestCleanupScreenshotsMissingDate(t *testing.T) {
	store := NewScreenshotStore(t.TempDir())

	deleted, err := store.CleanupScreenshotsForDate("1999-01-01")
	if err != nil {
		t.Fatalf("CleanupScreenshotsForDate() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d for missing day, want 0", deleted)
	}
}

func seedDay(t *testing.T, base, date string, withDB, withReport bool) {
	t.Helper()
	dir := filepath.Join(base, date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating day dir: %v", err)
	}
	if withDB {
		if err := os.WriteFile(filepath.Join(dir, dbFileName), []byte("db"), 0644); err != nil {
			t.Fatalf("writing db fixture: %v", err)
		}
	}
	if withReport {
		if err := os.WriteFile(filepath.Join(dir, reportFileName), []byte("md"), 0644); err != nil {
			t.Fatalf("writing report fixture: %v", err)
		}
	}
}

func TestListDataDates(t *testing.T) {
	base := t.TempDir()
	store := NewScreenshotStore(base)

	seedDay(t, base, "2025-06-01", true, true)
	seedDay(t, base, "2025-06-02", true, false)
	seedDay(t, base, "2025-06-03", false, true) // no database, not listed
	seedDay(t, base, "scratch", true, false)    // not a date, ignored

	dates, err := store.ListDataDates()
	if err != nil {
		t.Fatalf("ListDataDates() error = %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("got %d dates, want 2: %+v", len(dates), dates)
	}
	if dates[0].Date != "2025-06-02" || dates[0].HasReport {
		t.Errorf("first entry = %+v, want 2025-06-02 without report", dates[0])
	}
	if dates[1].Date != "2025-06-01" || !dates[1].HasReport {
		t.Errorf("second entry = %+v, want 2025-06-01 with report", dates[1])
	}
}

func TestListReportDates(t *testing.T) {
	base := t.TempDir()
	store := NewScreenshotStore(base)

	seedDay(t, base, "2025-06-01", true, true)
	seedDay(t, base, "2025-06-02", true, false)
	seedDay(t, base, "2025-06-03", false, true)

	dates, err := store.ListReportDates()
	if err != nil {
		t.Fatalf("ListReportDates() error = %v", err)
	}
	want := []string{"2025-06-03", "2025-06-01"}
	if len(dates) != len(want) {
		t.Fatalf("got %d report dates, want %d: %v", len(dates), len(want), dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}
