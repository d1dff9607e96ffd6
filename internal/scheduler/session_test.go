package scheduler

import (
	"sync"
	"testing"
)

type fakeRunner struct {
	mu    sync.Mutex
	stops []<-chan struct{}
}

func (r *fakeRunner) Run(stop <-chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops = append(r.stops, stop)
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestSessionStartStop(t *testing.T) {
	runner := &fakeRunner{}
	notifier := &recordingNotifier{}
	session := NewSessionManager(runner, notifier)

	if session.Running() {
		t.Fatal("new session manager should not be running")
	}
	if err := session.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !session.Running() {
		t.Error("session should be running after Start")
	}
	if err := session.Start(); err == nil {
		t.Error("second Start should fail while running")
	}
	if len(runner.stops) != 1 {
		t.Fatalf("runner launched %d times, want 1", len(runner.stops))
	}
	if isClosed(runner.stops[0]) {
		t.Error("stop channel must stay open while running")
	}

	if err := session.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if session.Running() {
		t.Error("session should not be running after Stop")
	}
	if !isClosed(runner.stops[0]) {
		t.Error("Stop must close the session's stop channel")
	}
	if err := session.Stop(); err == nil {
		t.Error("second Stop should fail while stopped")
	}

	if notifier.started != 1 || notifier.stopped != 1 {
		t.Errorf("notifier saw %d starts and %d stops, want 1 and 1", notifier.started, notifier.stopped)
	}
}

func TestSessionRestartGetsFreshChannel(t *testing.T) {
	runner := &fakeRunner{}
	session := NewSessionManager(runner, &recordingNotifier{})

	if err := session.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := session.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := session.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}

	if len(runner.stops) != 2 {
		t.Fatalf("runner launched %d times, want 2", len(runner.stops))
	}
	if !isClosed(runner.stops[0]) {
		t.Error("first session's channel should be closed")
	}
	if isClosed(runner.stops[1]) {
		t.Error("second session must get a fresh open channel")
	}
}

func TestStopIfRunning(t *testing.T) {
	session := NewSessionManager(&fakeRunner{}, &recordingNotifier{})

	if session.StopIfRunning() {
		t.Error("StopIfRunning on an idle session should report false")
	}
	if err := session.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !session.StopIfRunning() {
		t.Error("StopIfRunning on an active session should report true")
	}
	if session.Running() {
		t.Error("session should be stopped afterwards")
	}
}
