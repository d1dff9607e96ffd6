// Package scheduler coordinates the recurring work: the monitoring
// session's capture, batch, and midnight rollover tasks, the daily
// report and start triggers, and generic fixed-rate and cron schedulers
// for maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"diaroo/internal/capture"
	"diaroo/internal/config"
	"diaroo/internal/digest"
	"diaroo/internal/logger"
	"diaroo/internal/storage"
)

// batchCooldown throttles the batch task after each tick so pathological
// short intervals cannot hammer the LLM.
const batchCooldown = 60 * time.Second

// TickResult describes one capture tick for consumers of tick events.
type TickResult struct {
	AppName      string
	WindowTitle  string
	HashDistance int
	Skipped      bool
}

// Notifier receives the session's observable events. The default
// implementation writes them to the log; a UI layer can plug in its own.
type Notifier interface {
	MonitoringStarted()
	MonitoringStopped()
	Tick(result TickResult)
	BatchProcessed(summary string)
	DigestReady(path string)
}

type logNotifier struct{}

// NewLogNotifier returns the Notifier used when no other consumer is
// wired in.
func NewLogNotifier() Notifier { return logNotifier{} }

func (logNotifier) MonitoringStarted() {
	logger.GetLogger().Info("Monitoring started")
}

func (logNotifier) MonitoringStopped() {
	logger.GetLogger().Info("Monitoring stopped")
}

func (logNotifier) Tick(result TickResult) {
	logger.GetLogger().Debugf("Activity tick: %s - %s (hash distance %d, skipped %t)",
		result.AppName, result.WindowTitle, result.HashDistance, result.Skipped)
}

func (logNotifier) BatchProcessed(summary string) {
	if len(summary) > 100 {
		summary = summary[:100]
	}
	logger.GetLogger().Infof("Batch processed: %s", summary)
}

func (logNotifier) DigestReady(path string) {
	logger.GetLogger().Infof("Daily digest ready: %s", path)
}

// Monitor runs one monitoring session: a capture task, a batch task, and
// a midnight rollover task, all racing the same stop channel.
type Monitor struct {
	interval       time.Duration
	batchInterval  time.Duration
	cooldown       time.Duration
	dedupThreshold int

	store    *storage.ActivityStore
	shots    *storage.ScreenshotStore
	pipeline *digest.Pipeline
	notifier Notifier

	captureFrame func() ([]byte, uint64, error)
	activeWindow func() capture.WindowInfo
}

// NewMonitor builds a session runner from the loaded config. A nil
// notifier falls back to log output.
func NewMonitor(cfg *config.Config, store *storage.ActivityStore, shots *storage.ScreenshotStore, pipeline *digest.Pipeline, notifier Notifier) *Monitor {
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	return &Monitor{
		interval:       time.Duration(cfg.ScreenshotIntervalSecs) * time.Second,
		batchInterval:  time.Duration(cfg.BatchIntervalSecs) * time.Second,
		cooldown:       batchCooldown,
		dedupThreshold: cfg.DedupThreshold,
		store:          store,
		shots:          shots,
		pipeline:       pipeline,
		notifier:       notifier,
		captureFrame:   capture.CaptureFrame,
		activeWindow:   capture.GetActiveWindow,
	}
}

// Run launches the three session tasks. Closing stop ends all of them;
// the channel is owned by the SessionManager and never reused.
func (m *Monitor) Run(stop <-chan struct{}) {
	go m.captureLoop(stop)
	go m.batchLoop(stop)
	go m.midnightLoop(stop)
}

// captureLoop fires immediately, then every interval. A failed tick is
// logged and the loop carries on.
func (m *Monitor) captureLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var lastHash uint64
	hasLast := false

	for {
		tick, err := m.captureTick(&lastHash, &hasLast)
		if err != nil {
			logger.GetLogger().Errorf("Screenshot capture error: %v", err)
		} else {
			m.notifier.Tick(tick)
		}

		select {
		case <-ticker.C:
		case <-stop:
			logger.GetLogger().Info("Screenshot capture stopped")
			return
		}
	}
}

// captureTick captures one frame, dedups it against the previous
// persisted hash, and records the survivors. Window info is probed even
// for deduplicated frames so app usage stays accurate.
func (m *Monitor) captureTick(lastHash *uint64, hasLast *bool) (TickResult, error) {
	jpegData, hash, err := m.captureFrame()
	if err != nil {
		return TickResult{}, err
	}

	window := m.activeWindow()

	distance := 0
	skipped := false
	if *hasLast {
		distance = capture.HashDistance(*lastHash, hash)
		skipped = distance < m.dedupThreshold
	}

	if !skipped {
		*lastHash = hash
		*hasLast = true

		path, err := m.shots.SaveScreenshot(jpegData)
		if err != nil {
			return TickResult{}, err
		}
		timestamp := time.Now().Format(time.RFC3339)
		if _, err := m.store.InsertActivity(timestamp, path, window.Title, window.AppName, capture.HashHex(hash)); err != nil {
			return TickResult{}, err
		}
		logger.GetLogger().Debugf("Screenshot saved: %s (%s - %s)", path, window.AppName, window.Title)
	}

	return TickResult{
		AppName:      window.AppName,
		WindowTitle:  window.Title,
		HashDistance: distance,
		Skipped:      skipped,
	}, nil
}

// batchLoop summarizes pending entries every batchInterval. The first
// tick lands a full interval after start, so batching never runs
// immediately. After each tick a cooldown keeps the effective cadence
// above one fire per minute.
func (m *Monitor) batchLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(m.batchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.GetLogger().Info("Batch tick fired, checking for unbatched entries...")
			// Background context: a raised stop signal never aborts an
			// in-flight summarization, it only stops future ticks.
			summary, err := m.pipeline.ProcessBatch(context.Background())
			switch {
			case err != nil:
				logger.GetLogger().Errorf("Batch processing error: %v", err)
			case summary != "":
				m.notifier.BatchProcessed(summary)
			default:
				logger.GetLogger().Info("Batch tick: no unbatched entries to process")
			}

			select {
			case <-time.After(m.cooldown):
			case <-stop:
				logger.GetLogger().Info("Batch processing stopped")
				return
			}
		case <-stop:
			logger.GetLogger().Info("Batch processing stopped")
			return
		}
	}
}

// midnightLoop forces the store onto the new day's database right after
// local midnight and pre-creates the new screenshot directory.
func (m *Monitor) midnightLoop(stop <-chan struct{}) {
	for {
		wait := durationUntilMidnight(time.Now())
		logger.GetLogger().Infof("Midnight rollover scheduled in %d seconds", int(wait.Seconds()))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			newDate := time.Now().Format("2006-01-02")
			logger.GetLogger().Infof("Midnight rollover: transitioning to %s", newDate)
			if err := m.store.EnsureToday(); err != nil {
				logger.GetLogger().Errorf("Midnight rollover: failed to switch database: %v", err)
			}
			if _, err := m.shots.EnsureDateDir(newDate); err != nil {
				logger.GetLogger().Errorf("Midnight rollover: failed to create date dir: %v", err)
			}
		case <-stop:
			timer.Stop()
			logger.GetLogger().Info("Midnight rollover task stopped")
			return
		}
	}
}

// durationUntilMidnight lands one second past local midnight so the new
// date is unambiguous when the rollover runs.
func durationUntilMidnight(now time.Time) time.Duration {
	elapsed := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return time.Duration(86400-elapsed+1) * time.Second
}
