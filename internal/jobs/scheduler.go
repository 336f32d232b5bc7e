package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler triggers a registered job on a cron expression. Ticks go
// through the JobManager, so a tick that lands while a pass is still
// running is skipped.
type Scheduler struct {
	cron  *gocron.Scheduler
	jobs  *JobManager
	jobID string

	mu   sync.Mutex
	expr string
}

// NewScheduler creates a scheduler for the job registered as jobID.
func NewScheduler(jm *JobManager, jobID string) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{cron: s, jobs: jm, jobID: jobID}
}

// ValidateCron reports whether expr is a usable schedule. Six fields
// include seconds; five-field expressions are also accepted.
func ValidateCron(expr string) error {
	s := gocron.NewScheduler(time.UTC)
	_, err := schedule(s, expr).Do(func() {})
	return err
}

func schedule(s *gocron.Scheduler, expr string) *gocron.Scheduler {
	expr = strings.TrimSpace(expr)
	if len(strings.Fields(expr)) == 6 {
		return s.CronWithSeconds(expr)
	}
	return s.Cron(expr)
}

// Schedule sets the cron expression, replacing any previous schedule. It
// can be called before or after Start.
func (s *Scheduler) Schedule(expr string) error {
	if err := ValidateCron(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if expr == s.expr {
		return nil
	}

	_ = s.cron.RemoveByTag(s.jobID)
	_, err := schedule(s.cron, expr).Tag(s.jobID).Do(func() {
		log.Println("Scheduler is triggering job:", s.jobID)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		if err := s.jobs.RunJob(s.jobID); err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", s.jobID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling '%s' job: %w", s.jobID, err)
	}
	log.Printf("Scheduling job: '%s' with cron '%s'.", s.jobID, expr)
	s.expr = expr
	return nil
}

// Expr returns the active cron expression.
func (s *Scheduler) Expr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expr
}

// NextRun returns when the job fires next, or the zero time when nothing
// is scheduled.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.cron.NextRun()
	return next
}

func (s *Scheduler) Start() {
	log.Println("Starting background job scheduler...")
	s.cron.StartAsync()
}

// Shutdown stops new ticks, then gives an in-flight pass until ctx is done
// to finish. A pass still running after that is cancelled.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.cron.Stop()
	err := s.jobs.Wait(ctx)
	if err != nil {
		log.Printf("Grace period expired, cancelling job '%s'", s.jobID)
	}
	s.jobs.Cancel()
	return err
}
