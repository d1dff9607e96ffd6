package scheduler

import (
	"fmt"
	"sync"
)

// Runner is the workload a session controls. *Monitor implements it.
type Runner interface {
	Run(stop <-chan struct{})
}

// SessionManager is the single choke point for session transitions:
// manual commands and scheduled triggers all go through Start/Stop, so
// the running flag and the cancellation channel cannot drift apart.
type SessionManager struct {
	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	runner   Runner
	notifier Notifier
}

// NewSessionManager wraps a runner. A nil notifier falls back to log
// output.
func NewSessionManager(runner Runner, notifier Notifier) *SessionManager {
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	return &SessionManager{runner: runner, notifier: notifier}
}

// Start begins a monitoring session. Every session gets a fresh stop
// channel; channels are never reused across sessions.
func (s *SessionManager) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("already monitoring")
	}
	s.stop = make(chan struct{})
	s.runner.Run(s.stop)
	s.running = true
	s.notifier.MonitoringStarted()
	return nil
}

// Stop raises the cancellation signal for the active session.
func (s *SessionManager) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return fmt.Errorf("not monitoring")
	}
	close(s.stop)
	s.stop = nil
	s.running = false
	s.notifier.MonitoringStopped()
	return nil
}

// Running reports whether a session is active.
func (s *SessionManager) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// StopIfRunning stops the active session if there is one and reports
// whether it did. The auto-report trigger uses it, where an already
// stopped session is normal.
func (s *SessionManager) StopIfRunning() bool {
	return s.Stop() == nil
}
