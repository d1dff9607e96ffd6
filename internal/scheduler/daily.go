package scheduler

import (
	"fmt"
	"time"

	"diaroo/internal/logger"
)

// dailyCooldown keeps a trigger from firing twice when the loop
// recomputes its wait near the target minute.
const dailyCooldown = 60 * time.Second

// ParseClock parses a "HH:MM" string, falling back to the given defaults
// when it is malformed or out of range.
func ParseClock(s string, fallbackHour, fallbackMinute int) (int, int) {
	var hour, minute int
	if n, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil || n != 2 {
		return fallbackHour, fallbackMinute
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fallbackHour, fallbackMinute
	}
	return hour, minute
}

// durationUntilClock computes the wait until the next daily occurrence of
// hour:minute local time, at least one second out.
func durationUntilClock(now time.Time, hour, minute int) time.Duration {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	wait := target.Sub(now)
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// DailyTrigger fires an action once per day at a fixed local time. The
// auto-report and scheduled monitoring start timers are both instances
// of it.
type DailyTrigger struct {
	name   string
	hour   int
	minute int
	action func() error

	wait func() time.Duration
}

// NewDailyTrigger builds a trigger named for its log lines.
func NewDailyTrigger(name string, hour, minute int, action func() error) *DailyTrigger {
	t := &DailyTrigger{name: name, hour: hour, minute: minute, action: action}
	t.wait = func() time.Duration {
		return durationUntilClock(time.Now(), t.hour, t.minute)
	}
	return t
}

// Run sleeps until the next firing time, runs the action, cools down for
// a minute, and repeats. Closing stop exits the loop at the current wait.
func (t *DailyTrigger) Run(stop <-chan struct{}) {
	for {
		wait := t.wait()
		logger.GetLogger().Infof("%s scheduled in %d seconds (target %02d:%02d)",
			t.name, int(wait.Seconds()), t.hour, t.minute)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			if err := t.action(); err != nil {
				logger.GetLogger().Errorf("%s failed: %v", t.name, err)
			}
		case <-stop:
			timer.Stop()
			logger.GetLogger().Infof("%s stopped", t.name)
			return
		}

		select {
		case <-time.After(dailyCooldown):
		case <-stop:
			logger.GetLogger().Infof("%s stopped", t.name)
			return
		}
	}
}
