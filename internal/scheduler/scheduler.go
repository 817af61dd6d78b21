package scheduler

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"eshop-backend/internal/notification/dispatch"

	"github.com/robfig/cron/v3"
)

// Broadcaster is the slice of the dispatch engine the scheduler consumes.
type Broadcaster interface {
	SendToAllUsers(ctx context.Context, title, body, tag string, data map[string]string) dispatch.DispatchResult
}

// TokenCleaner runs the proactive device-token cleanup.
type TokenCleaner interface {
	Run() (int64, error)
}

// Job is one named recurring job with a cron trigger.
type Job struct {
	Name     string
	Spec     string // 5-field cron expression, evaluated in the scheduler timezone
	Schedule string // human-readable schedule for status reporting

	handler func() error
	entryID cron.EntryID
	running atomic.Bool
}

// JobStatus is the externally visible state of one job.
type JobStatus struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	State    string    `json:"state"` // "stopped", "scheduled" or "running"
	NextRun  time.Time `json:"next_run,omitempty"`
}

// Status is the scheduler's liveness report.
type Status struct {
	Running bool        `json:"running"`
	Jobs    []JobStatus `json:"jobs"`
}

// Scheduler owns the fixed fleet of recurring notification jobs. Triggers
// are evaluated by a single cron runner in the configured timezone,
// independent of the system default. Fires of the same job never overlap:
// a fire arriving while the previous run is still in flight is skipped
// (and logged), never queued and never run concurrently.
type Scheduler struct {
	mu      sync.Mutex
	running bool

	cron    *cron.Cron
	jobs    []*Job
	engine  Broadcaster
	cleaner TokenCleaner
	loc     *time.Location
}

// New builds the scheduler with its default job fleet registered but not
// armed. An unknown timezone falls back to UTC with a warning.
func New(engine Broadcaster, cleaner TokenCleaner, timezone string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("[Scheduler] Unknown timezone %q, falling back to UTC: %v", timezone, err)
		loc = time.UTC
	}

	cronLogger := cron.PrintfLogger(log.New(os.Stderr, "[Scheduler] ", log.LstdFlags))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		engine:  engine,
		cleaner: cleaner,
		loc:     loc,
	}

	for _, job := range s.defaultJobs() {
		if err := s.register(job); err != nil {
			// Only reachable with a malformed cron expression constant.
			log.Printf("[Scheduler] Failed to register job %q: %v", job.Name, err)
			continue
		}
		s.jobs = append(s.jobs, job)
	}
	return s
}

func (s *Scheduler) register(job *Job) error {
	entryID, err := s.cron.AddJob(job.Spec, cron.FuncJob(func() {
		job.running.Store(true)
		defer job.running.Store(false)

		log.Printf("[Scheduler] Firing job %q", job.Name)
		if err := job.handler(); err != nil {
			// A failed run never unschedules the job; the next fire
			// still occurs on schedule.
			log.Printf("[Scheduler] Job %q failed at %s: %v",
				job.Name, time.Now().In(s.loc).Format(time.RFC3339), err)
		}
	}))
	if err != nil {
		return err
	}
	job.entryID = entryID
	return nil
}

// Start arms every registered job. Calling Start on a running scheduler
// is a warned no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Println("[Scheduler] Already running")
		return
	}

	s.cron.Start()
	s.running = true
	log.Printf("[Scheduler] Started with %d scheduled jobs (timezone %s)", len(s.jobs), s.loc)
}

// Stop disarms every trigger. Runs already in flight finish on their own;
// nothing is cancelled. Calling Stop on a stopped scheduler is a warned
// no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		log.Println("[Scheduler] Not running")
		return
	}

	finished := s.cron.Stop()
	s.running = false
	log.Println("[Scheduler] Stopped; in-flight jobs will run to completion")

	go func() {
		<-finished.Done()
		log.Println("[Scheduler] All in-flight jobs finished")
	}()
}

// SendNow broadcasts immediately, bypassing the triggers but going
// through the same dispatch path as scheduled fires.
func (s *Scheduler) SendNow(title, body, tag string) dispatch.DispatchResult {
	if tag == "" {
		tag = "manual"
	}
	log.Printf("[Scheduler] Sending immediate notification (%s)", tag)
	result := s.engine.SendToAllUsers(context.Background(), title, body, tag, nil)
	if !result.Success {
		log.Printf("[Scheduler] Immediate notification did not succeed: %s", result.Reason)
	}
	return result
}

// SendRandomNow broadcasts a random promotional message immediately.
func (s *Scheduler) SendRandomNow() dispatch.DispatchResult {
	promo := randomPromo()
	return s.SendNow(promo.Title, promo.Body, "manual_random")
}

// GetStatus reports scheduler liveness and per-job state. Pure read. A
// job reads as "stopped" only when the scheduler was explicitly stopped,
// never because a run of it failed.
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{Running: s.running, Jobs: make([]JobStatus, 0, len(s.jobs))}
	for _, job := range s.jobs {
		state := "stopped"
		var next time.Time
		if s.running {
			state = "scheduled"
			if job.running.Load() {
				state = "running"
			}
			next = s.cron.Entry(job.entryID).Next
		}
		status.Jobs = append(status.Jobs, JobStatus{
			Name:     job.Name,
			Schedule: job.Schedule,
			State:    state,
			NextRun:  next,
		})
	}
	return status
}
