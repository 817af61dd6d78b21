package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eshop-backend/internal/notification/dispatch"
)

type fakeBroadcaster struct {
	mu     sync.Mutex
	calls  int
	tags   []string
	result dispatch.DispatchResult
	onSend func()
}

func (f *fakeBroadcaster) SendToAllUsers(_ context.Context, _, _, tag string, _ map[string]string) dispatch.DispatchResult {
	f.mu.Lock()
	f.calls++
	f.tags = append(f.tags, tag)
	f.mu.Unlock()
	if f.onSend != nil {
		f.onSend()
	}
	return f.result
}

func (f *fakeBroadcaster) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCleaner struct {
	cleared int64
	err     error
	calls   int
}

func (f *fakeCleaner) Run() (int64, error) {
	f.calls++
	return f.cleared, f.err
}

func newTestScheduler(t *testing.T, broadcaster *fakeBroadcaster, cleaner *fakeCleaner) *Scheduler {
	t.Helper()
	s := New(broadcaster, cleaner, "UTC")
	t.Cleanup(s.Stop)
	return s
}

func findJob(t *testing.T, s *Scheduler, name string) *Job {
	t.Helper()
	for _, job := range s.jobs {
		if job.Name == name {
			return job
		}
	}
	t.Fatalf("job %q not registered", name)
	return nil
}

func TestNew_RegistersDefaultFleet(t *testing.T) {
	s := newTestScheduler(t, &fakeBroadcaster{}, &fakeCleaner{})

	if len(s.jobs) != 7 {
		t.Fatalf("jobs = %d, want 7", len(s.jobs))
	}
	if len(s.cron.Entries()) != len(s.jobs) {
		t.Fatalf("cron entries = %d, want %d", len(s.cron.Entries()), len(s.jobs))
	}
	for _, name := range []string{"token_cleanup", "morning_promo", "afternoon_flash_sale", "evening_deals", "weekend_special", "midnight_sale", "random_promo"} {
		findJob(t, s, name)
	}
}

func TestStart_Idempotent(t *testing.T) {
	s := newTestScheduler(t, &fakeBroadcaster{}, &fakeCleaner{})

	s.Start()
	entries := len(s.cron.Entries())
	firstNext := make(map[string]time.Time)
	for _, job := range s.jobs {
		firstNext[job.Name] = s.cron.Entry(job.entryID).Next
	}

	s.Start() // no-op

	if got := len(s.cron.Entries()); got != entries {
		t.Fatalf("entries after second Start = %d, want %d", got, entries)
	}
	for _, job := range s.jobs {
		if next := s.cron.Entry(job.entryID).Next; !next.Equal(firstNext[job.Name]) {
			t.Fatalf("job %q next fire changed: %v -> %v", job.Name, firstNext[job.Name], next)
		}
	}
	if !s.GetStatus().Running {
		t.Fatal("scheduler should report running")
	}
}

func TestStop_Idempotent(t *testing.T) {
	s := newTestScheduler(t, &fakeBroadcaster{}, &fakeCleaner{})

	s.Start()
	s.Stop()
	s.Stop() // no-op

	if s.GetStatus().Running {
		t.Fatal("scheduler should report stopped")
	}
}

func TestGetStatus_States(t *testing.T) {
	s := newTestScheduler(t, &fakeBroadcaster{}, &fakeCleaner{})

	status := s.GetStatus()
	if status.Running {
		t.Fatal("should not be running before Start")
	}
	for _, job := range status.Jobs {
		if job.State != "stopped" {
			t.Fatalf("job %q state = %q, want stopped", job.Name, job.State)
		}
		if job.Schedule == "" {
			t.Fatalf("job %q has no human-readable schedule", job.Name)
		}
	}

	s.Start()
	status = s.GetStatus()
	if !status.Running {
		t.Fatal("should be running after Start")
	}
	for _, job := range status.Jobs {
		if job.State != "scheduled" {
			t.Fatalf("job %q state = %q, want scheduled", job.Name, job.State)
		}
		if job.NextRun.IsZero() {
			t.Fatalf("job %q has no next fire time", job.Name)
		}
	}
}

func TestFailingHandlerStaysScheduled(t *testing.T) {
	cleaner := &fakeCleaner{err: errors.New("db down")}
	s := newTestScheduler(t, &fakeBroadcaster{}, cleaner)
	s.Start()

	job := findJob(t, s, "token_cleanup")
	entry := s.cron.Entry(job.entryID)

	// Fire the job through its full wrapper chain; the handler error must
	// be swallowed at the boundary.
	entry.WrappedJob.Run()
	entry.WrappedJob.Run()

	if cleaner.calls != 2 {
		t.Fatalf("handler ran %d times, want 2 (a failure must not unschedule)", cleaner.calls)
	}
	if got := s.cron.Entry(job.entryID); !got.Valid() {
		t.Fatal("job was unscheduled after a failing run")
	}
	if state := jobState(t, s, "token_cleanup"); state != "scheduled" {
		t.Fatalf("state = %q, a failed run must never read as stopped", state)
	}
}

func TestPanickingHandlerIsRecovered(t *testing.T) {
	broadcaster := &fakeBroadcaster{onSend: func() { panic("boom") }}
	s := newTestScheduler(t, broadcaster, &fakeCleaner{})
	s.Start()

	job := findJob(t, s, "morning_promo")
	entry := s.cron.Entry(job.entryID)

	entry.WrappedJob.Run() // must not propagate the panic

	if got := s.cron.Entry(job.entryID); !got.Valid() {
		t.Fatal("job was unscheduled after a panicking run")
	}
}

func TestOverlappingFireIsSkipped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	broadcaster := &fakeBroadcaster{onSend: func() {
		once.Do(func() { close(entered) })
		<-release
	}}
	s := newTestScheduler(t, broadcaster, &fakeCleaner{})
	s.Start()

	job := findJob(t, s, "random_promo")
	entry := s.cron.Entry(job.entryID)

	firstDone := make(chan struct{})
	go func() {
		entry.WrappedJob.Run()
		close(firstDone)
	}()
	<-entered

	// Second fire while the first is still running: must return without
	// invoking the handler.
	secondDone := make(chan struct{})
	go func() {
		entry.WrappedJob.Run()
		close(secondDone)
	}()
	select {
	case <-secondDone:
	case <-time.After(2 * time.Second):
		t.Fatal("overlapping fire was queued or ran concurrently instead of being skipped")
	}

	close(release)
	<-firstDone

	if got := broadcaster.callCount(); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}
}

func TestSendNow_UsesDispatchPath(t *testing.T) {
	broadcaster := &fakeBroadcaster{result: dispatch.DispatchResult{Success: true, Attempted: 2, Delivered: 2}}
	s := newTestScheduler(t, broadcaster, &fakeCleaner{})

	result := s.SendNow("Hello", "world", "")
	if !result.Success || result.Delivered != 2 {
		t.Fatalf("result = %+v", result)
	}
	if broadcaster.callCount() != 1 {
		t.Fatalf("broadcaster calls = %d, want 1", broadcaster.callCount())
	}
	if broadcaster.tags[0] != "manual" {
		t.Fatalf("tag = %q, want manual default", broadcaster.tags[0])
	}
}

func TestSendRandomNow(t *testing.T) {
	broadcaster := &fakeBroadcaster{result: dispatch.DispatchResult{Success: true, Attempted: 1, Delivered: 1}}
	s := newTestScheduler(t, broadcaster, &fakeCleaner{})

	result := s.SendRandomNow()
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if broadcaster.tags[0] != "manual_random" {
		t.Fatalf("tag = %q, want manual_random", broadcaster.tags[0])
	}
}

func jobState(t *testing.T, s *Scheduler, name string) string {
	t.Helper()
	for _, job := range s.GetStatus().Jobs {
		if job.Name == name {
			return job.State
		}
	}
	t.Fatalf("job %q not in status", name)
	return ""
}
