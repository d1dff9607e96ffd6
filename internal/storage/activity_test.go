package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *ActivityStore {
	t.Helper()
	store, err := NewActivityStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewActivityStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func insertEntries(t *testing.T, store *ActivityStore, apps []string) []int64 {
	t.Helper()
	var ids []int64
	for i, app := range apps {
		ts := time.Date(2025, 6, 1, 10, 0, i, 0, time.UTC).Format(time.RFC3339)
		id, err := store.InsertActivity(ts, "/tmp/shot.jpg", "some window", app, "00000000deadbeef")
		if err != nil {
			t.Fatalf("InsertActivity() error = %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestInsertAndFetchUnbatched(t *testing.T) {
	store := newTestStore(t)
	insertEntries(t, store, []string{"Code", "Safari", "Terminal"})

	entries, err := store.GetUnbatchedEntries()
	if err != nil {
		t.Fatalf("GetUnbatchedEntries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d unbatched entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.BatchID != "" {
			t.Errorf("entry %d has batch id %q before batching", i, e.BatchID)
		}
		if e.ImageHash != "00000000deadbeef" {
			t.Errorf("entry %d hash = %q", i, e.ImageHash)
		}
	}
	// Oldest first.
	if entries[0].AppName != "Code" || entries[2].AppName != "Terminal" {
		t.Errorf("entries out of order: %s, %s, %s",
			entries[0].AppName, entries[1].AppName, entries[2].AppName)
	}
}

func TestMarkEntriesBatched(t *testing.T) {
	store := newTestStore(t)
	ids := insertEntries(t, store, []string{"Code", "Code", "Safari"})

	batchID := "batch-0001"
	ts := time.Now().Format(time.RFC3339)
	if err := store.InsertBatchSummary(batchID, ts, "worked on things", len(ids)); err != nil {
		t.Fatalf("InsertBatchSummary() error = %v", err)
	}
	if err := store.MarkEntriesBatched(ids, batchID); err != nil {
		t.Fatalf("MarkEntriesBatched() error = %v", err)
	}

	entries, err := store.GetUnbatchedEntries()
	if err != nil {
		t.Fatalf("GetUnbatchedEntries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d unbatched entries after batching, want 0", len(entries))
	}

	batches, err := store.GetBatches()
	if err != nil {
		t.Fatalf("GetBatches() error = %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if batches[0].ID != batchID || batches[0].EntryCount != 3 {
		t.Errorf("batch = %+v, want id %s with 3 entries", batches[0], batchID)
	}
}

func TestGetBatchesEmptyDay(t *testing.T) {
	store := newTestStore(t)

	batches, err := store.GetBatches()
	if err != nil {
		t.Fatalf("GetBatches() error = %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("fresh day has %d batches, want 0", len(batches))
	}
}

func TestEnsureTodayIdempotent(t *testing.T) {
	store := newTestStore(t)
	before := store.db

	for i := 0; i < 5; i++ {
		if err := store.EnsureToday(); err != nil {
			t.Fatalf("EnsureToday() call %d error = %v", i, err)
		}
	}

	if store.db != before {
		t.Error("EnsureToday swapped the handle without a date change")
	}
	if got := store.CurrentDate(); got != time.Now().Format(dateLayout) {
		t.Errorf("CurrentDate() = %s, want today", got)
	}
}

func TestEnsureTodayRollsOverStaleDate(t *testing.T) {
	store := newTestStore(t)
	insertEntries(t, store, []string{"Code"})

	store.mu.Lock()
	store.currentDate = "2000-01-01"
	stale := store.db
	store.mu.Unlock()

	if err := store.EnsureToday(); err != nil {
		t.Fatalf("EnsureToday() error = %v", err)
	}

	today := time.Now().Format(dateLayout)
	if got := store.CurrentDate(); got != today {
		t.Errorf("CurrentDate() = %s, want %s", got, today)
	}
	if store.db == stale {
		t.Error("rollover kept the stale handle")
	}
	if _, err := os.Stat(filepath.Join(store.baseDir, today, dbFileName)); err != nil {
		t.Errorf("today's database missing: %v", err)
	}
}

func TestGetAppUsageOrdering(t *testing.T) {
	store := newTestStore(t)
	insertEntries(t, store, []string{"Code", "Safari", "Code", "Terminal", "Code", "Terminal"})

	usage, err := store.GetAppUsage()
	if err != nil {
		t.Fatalf("GetAppUsage() error = %v", err)
	}
	if len(usage) != 3 {
		t.Fatalf("got %d apps, want 3", len(usage))
	}
	if usage[0].AppName != "Code" || usage[0].Count != 3 {
		t.Errorf("top app = %+v, want Code with 3", usage[0])
	}
	if usage[1].AppName != "Terminal" || usage[1].Count != 2 {
		t.Errorf("second app = %+v, want Terminal with 2", usage[1])
	}
}

func TestGetScreenshotCount(t *testing.T) {
	store := newTestStore(t)

	count, err := store.GetScreenshotCount()
	if err != nil {
		t.Fatalf("GetScreenshotCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("fresh day count = %d, want 0", count)
	}

	insertEntries(t, store, []string{"Code", "Safari"})
	count, err = store.GetScreenshotCount()
	if err != nil {
		t.Fatalf("GetScreenshotCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestGetLastBatchTime(t *testing.T) {
	store := newTestStore(t)

	ts, err := store.GetLastBatchTime()
	if err != nil {
		t.Fatalf("GetLastBatchTime() error = %v", err)
	}
	if ts != "" {
		t.Errorf("last batch time = %q before any batch, want empty", ts)
	}

	first := "2025-06-01T10:00:00Z"
	second := "2025-06-01T11:00:00Z"
	if err := store.InsertBatchSummary("b1", first, "early", 2); err != nil {
		t.Fatalf("InsertBatchSummary() error = %v", err)
	}
	if err := store.InsertBatchSummary("b2", second, "late", 4); err != nil {
		t.Fatalf("InsertBatchSummary() error = %v", err)
	}

	ts, err = store.GetLastBatchTime()
	if err != nil {
		t.Fatalf("GetLastBatchTime() error = %v", err)
	}
	if ts != second {
		t.Errorf("last batch time = %q, want %q", ts, second)
	}
}

func TestForDateReadsLeaveLiveStoreAlone(t *testing.T) {
	store := newTestStore(t)
	insertEntries(t, store, []string{"Code", "Safari"})
	liveHandle := store.db

	batches, err := store.GetBatchesForDate("2020-05-05")
	if err != nil {
		t.Fatalf("GetBatchesForDate() error = %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("past date has %d batches, want 0", len(batches))
	}

	usage, err := store.GetAppUsageForDate("2020-05-05")
	if err != nil {
		t.Fatalf("GetAppUsageForDate() error = %v", err)
	}
	if len(usage) != 0 {
		t.Errorf("past date has %d usage rows, want 0", len(usage))
	}

	if store.db != liveHandle {
		t.Error("historical read replaced the live handle")
	}
	if got := store.CurrentDate(); got != time.Now().Format(dateLayout) {
		t.Errorf("CurrentDate() = %s changed by historical read", got)
	}

	entries, err := store.GetUnbatchedEntries()
	if err != nil {
		t.Fatalf("GetUnbatchedEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("live store lost entries: got %d, want 2", len(entries))
	}
}
