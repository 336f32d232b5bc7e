package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// ErrJobRunning is returned when a job is triggered while another one runs.
var ErrJobRunning = errors.New("a job is already running")

// ErrJobNotFound is returned when no job is registered under an id.
var ErrJobNotFound = errors.New("job not found")

// Task is the body of a job. The returned message is shown in the job
// status on success.
type Task func(ctx context.Context) (string, error)

type JobStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "idle", "running", "success", "failed"
	Message   string    `json:"message"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// JobManager runs registered jobs one at a time, whether they were started
// by the scheduler or through the API.
type JobManager struct {
	mu      sync.Mutex
	jobs    map[string]Task
	status  map[string]*JobStatus
	running bool
	done    chan struct{} // closed when the running job returns

	// ctx is handed to every job; cancel aborts whatever is in flight.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager() *JobManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobManager{
		jobs:   make(map[string]Task),
		status: make(map[string]*JobStatus),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (jm *JobManager) Register(id, name string, task Task) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.jobs[id] = task
	jm.status[id] = &JobStatus{ID: id, Name: name, Status: "idle"}
}

// RunJob starts the job in the background. It fails when the job is
// unknown or any job is already running.
func (jm *JobManager) RunJob(id string) error {
	jm.mu.Lock()
	if jm.running {
		jm.mu.Unlock()
		return ErrJobRunning
	}

	task, ok := jm.jobs[id]
	if !ok {
		jm.mu.Unlock()
		return fmt.Errorf("%w: '%s'", ErrJobNotFound, id)
	}
	if jm.ctx.Err() != nil {
		jm.mu.Unlock()
		return fmt.Errorf("job manager is shutting down")
	}

	jm.running = true
	done := make(chan struct{})
	jm.done = done
	status := jm.status[id]
	status.Status = "running"
	status.StartTime = time.Now()
	status.EndTime = time.Time{}
	status.Message = "Job started..."
	jm.mu.Unlock()

	log.Printf("Starting job: %s", id)
	go func() {
		var message string
		var err error
		defer func() {
			// Ensure we always update the status and release the manager
			if r := recover(); r != nil {
				log.Printf("Job '%s' panicked: %v", id, r)
				err = fmt.Errorf("job panicked: %v", r)
			}

			jm.mu.Lock()
			status.EndTime = time.Now()
			if err != nil {
				status.Status = "failed"
				status.Message = err.Error()
			} else {
				status.Status = "success"
				status.Message = message
				if message == "" {
					status.Message = "Job completed successfully."
				}
			}
			jm.running = false
			final := status.Status
			jm.mu.Unlock()
			close(done)
			log.Printf("Finished job: %s (%s)", id, final)
		}()

		message, err = task(jm.ctx)
	}()
	return nil
}

// Wait blocks until no job is running or ctx is done.
func (jm *JobManager) Wait(ctx context.Context) error {
	jm.mu.Lock()
	done := jm.done
	running := jm.running
	jm.mu.Unlock()

	if !running || done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel aborts the running job, if any, and refuses new ones.
func (jm *JobManager) Cancel() {
	jm.cancel()
}

// IsRunning reports whether a job is in flight.
func (jm *JobManager) IsRunning() bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	return jm.running
}

// GetStatus returns a snapshot of every job's status ordered by id.
func (jm *JobManager) GetStatus() []JobStatus {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	statuses := make([]JobStatus, 0, len(jm.status))
	for _, s := range jm.status {
		statuses = append(statuses, *s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses
}
