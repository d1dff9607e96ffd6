package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"diaroo/internal/logger"
)

const (
	dateLayout = "2006-01-02"
	dbFileName = "activity.db"
)

// ActivityEntry is one captured frame recorded in a day's journal.
type ActivityEntry struct {
	ID             int64
	Timestamp      string
	ScreenshotPath string
	WindowTitle    string
	AppName        string
	ImageHash      string
	BatchID        string // empty until the entry has been summarized
}

// BatchSummary holds the summary of up to ten entries.
type BatchSummary struct {
	ID         string
	Timestamp  string
	Summary    string
	EntryCount int
}

// AppUsage counts captured frames per application.
type AppUsage struct {
	AppName string
	Count   int64
}

// ActivityStore keeps one SQLite database per calendar day under
// <baseDir>/<YYYY-MM-DD>/activity.db and switches databases when the local
// date moves on. All access to the live handle is serialized.
type ActivityStore struct {
	baseDir string

	mu          sync.Mutex
	db          *sql.DB
	currentDate string
}

// NewActivityStore opens today's database, creating the day directory and
// schema when missing.
func NewActivityStore(baseDir string) (*ActivityStore, error) {
	today := time.Now().Format(dateLayout)
	db, err := openDayDB(baseDir, today)
	if err != nil {
		return nil, err
	}
	return &ActivityStore{baseDir: baseDir, db: db, currentDate: today}, nil
}

func openDayDB(baseDir, date string) (*sql.DB, error) {
	dir := filepath.Join(baseDir, date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create day directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time keeps SQLite happy without WAL tuning.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS activity_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		screenshot_path TEXT NOT NULL,
		window_title TEXT DEFAULT '',
		app_name TEXT DEFAULT '',
		image_hash TEXT DEFAULT '',
		batch_id TEXT
	);
	CREATE TABLE IF NOT EXISTS llm_batches (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		summary TEXT DEFAULT '',
		entry_count INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_activity_batch ON activity_log(batch_id);
	CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity_log(timestamp);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// EnsureToday switches the store to today's database when the date has
// changed since the last operation. Calling it on the current date is a
// no-op, so it is safe to invoke from several loops.
func (s *ActivityStore) EnsureToday() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureTodayLocked()
}

func (s *ActivityStore) ensureTodayLocked() error {
	today := time.Now().Format(dateLayout)
	if today == s.currentDate {
		return nil
	}

	db, err := openDayDB(s.baseDir, today)
	if err != nil {
		return fmt.Errorf("failed to roll over to %s: %w", today, err)
	}
	if s.db != nil {
		if cerr := s.db.Close(); cerr != nil {
			logger.GetLogger().Warnf("failed to close previous day database: %v", cerr)
		}
	}
	s.db = db
	s.currentDate = today
	logger.GetLogger().Infof("Rolled over to new day database: %s", today)
	return nil
}

// rolloverLocked keeps operations on today's database. When the switch
// fails the stale handle is reused for this call so a transient error
// never drops data.
func (s *ActivityStore) rolloverLocked() {
	if err := s.ensureTodayLocked(); err != nil {
		logger.GetLogger().Warnf("day rollover failed, still writing to %s: %v", s.currentDate, err)
	}
}

// CurrentDate returns the date the live database is bound to.
func (s *ActivityStore) CurrentDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentDate
}

// InsertActivity records a captured frame and returns its row id.
func (s *ActivityStore) InsertActivity(timestamp, screenshotPath, windowTitle, appName, imageHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()

	res, err := s.db.Exec(
		`INSERT INTO activity_log (timestamp, screenshot_path, window_title, app_name, image_hash)
		 VALUES (?, ?, ?, ?, ?)`,
		timestamp, screenshotPath, windowTitle, appName, imageHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}
	return id, nil
}

// GetUnbatchedEntries returns entries not yet assigned to a batch, oldest
// first.
func (s *ActivityStore) GetUnbatchedEntries() ([]*ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()

	rows, err := s.db.Query(
		`SELECT id, timestamp, screenshot_path, window_title, app_name, image_hash, batch_id
		 FROM activity_log WHERE batch_id IS NULL ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unbatched entries: %w", err)
	}
	defer rows.Close()

	var entries []*ActivityEntry
	for rows.Next() {
		e := &ActivityEntry{}
		var batchID sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ScreenshotPath, &e.WindowTitle, &e.AppName, &e.ImageHash, &batchID); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		e.BatchID = batchID.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkEntriesBatched assigns the batch id to each entry. Updates are
// applied one by one; the first failure stops the loop and entries already
// updated keep their batch id.
func (s *ActivityStore) MarkEntriesBatched(ids []int64, batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()

	for _, id := range ids {
		if _, err := s.db.Exec(`UPDATE activity_log SET batch_id = ? WHERE id = ?`, batchID, id); err != nil {
			return fmt.Errorf("failed to mark entry %d batched: %w", id, err)
		}
	}
	return nil
}

// InsertBatchSummary stores the summary produced for a batch.
func (s *ActivityStore) InsertBatchSummary(batchID, timestamp, summary string, entryCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()

	_, err := s.db.Exec(
		`INSERT INTO llm_batches (id, timestamp, summary, entry_count) VALUES (?, ?, ?, ?)`,
		batchID, timestamp, summary, entryCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch summary: %w", err)
	}
	return nil
}

// GetBatches returns today's batch summaries in chronological order.
func (s *ActivityStore) GetBatches() ([]*BatchSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()
	return queryBatches(s.db)
}

// GetBatchesForDate reads batch summaries for an arbitrary date through a
// short-lived handle, leaving the live database untouched.
func (s *ActivityStore) GetBatchesForDate(date string) ([]*BatchSummary, error) {
	db, err := openDayDB(s.baseDir, date)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return queryBatches(db)
}

func queryBatches(db *sql.DB) ([]*BatchSummary, error) {
	rows, err := db.Query(
		`SELECT id, timestamp, summary, entry_count FROM llm_batches ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []*BatchSummary
	for rows.Next() {
		b := &BatchSummary{}
		if err := rows.Scan(&b.ID, &b.Timestamp, &b.Summary, &b.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan batch summary: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetAppUsage aggregates today's frame counts per application, most used
// first.
func (s *ActivityStore) GetAppUsage() ([]AppUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()
	return queryAppUsage(s.db)
}

// GetAppUsageForDate aggregates usage for an arbitrary date through a
// short-lived handle.
func (s *ActivityStore) GetAppUsageForDate(date string) ([]AppUsage, error) {
	db, err := openDayDB(s.baseDir, date)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return queryAppUsage(db)
}

func queryAppUsage(db *sql.DB) ([]AppUsage, error) {
	rows, err := db.Query(
		`SELECT app_name, COUNT(*) as count FROM activity_log GROUP BY app_name ORDER BY count DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query app usage: %w", err)
	}
	defer rows.Close()

	var usage []AppUsage
	for rows.Next() {
		var u AppUsage
		if err := rows.Scan(&u.AppName, &u.Count); err != nil {
			return nil, fmt.Errorf("failed to scan app usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// GetScreenshotCount returns how many frames today's journal holds.
func (s *ActivityStore) GetScreenshotCount() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()

	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM activity_log`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activity entries: %w", err)
	}
	return count, nil
}

// GetLastBatchTime returns the timestamp of the most recent batch, or the
// empty string when no batch has run today.
func (s *ActivityStore) GetLastBatchTime() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked()

	var ts string
	err := s.db.QueryRow(`SELECT timestamp FROM llm_batches ORDER BY timestamp DESC LIMIT 1`).Scan(&ts)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query last batch time: %w", err)
	}
	return ts, nil
}

// Close releases the live database handle.
func (s *ActivityStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
