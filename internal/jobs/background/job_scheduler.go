package background

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"batstats/internal/websocket"

	"github.com/go-co-op/gocron/v2"
)

// SessionWorker performs the work behind the background jobs
type SessionWorker interface {
	// Reconcile replaces a session's optimistic local state with the server's
	Reconcile(ctx context.Context, sessionID string) (section string, err error)
	// Refresh reloads every cached collection of a session
	Refresh(ctx context.Context, sessionID string) (section string, err error)
	// Sweep frees the state of sessions nobody has used within the TTL
	Sweep(ctx context.Context) (int, error)
}

// Notifier pushes events to live browser sessions
type Notifier interface {
	Notify(sessionID string, event websocket.Event) int
	Sessions() []string
}

type pendingReconcile struct {
	job   gocron.Job
	token uint64
}

// JobScheduler runs the delayed reconcile jobs, the periodic refresh and the
// session sweep
type JobScheduler struct {
	scheduler       gocron.Scheduler
	notifier        Notifier
	refreshInterval time.Duration
	sweepInterval   time.Duration
	jobTimeout      time.Duration

	mu        sync.Mutex
	worker    SessionWorker
	pending   map[string]pendingReconcile
	nextToken uint64
	refresh   gocron.Job
	sweep     gocron.Job
}

// NewJobScheduler creates a scheduler. A non-positive refreshInterval or
// sweepInterval disables that periodic job.
func NewJobScheduler(notifier Notifier, refreshInterval, sweepInterval, jobTimeout time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &JobScheduler{
		scheduler:       scheduler,
		notifier:        notifier,
		refreshInterval: refreshInterval,
		sweepInterval:   sweepInterval,
		jobTimeout:      jobTimeout,
		pending:         make(map[string]pendingReconcile),
	}, nil
}

// Start binds the worker, registers the periodic jobs and starts the scheduler
func (js *JobScheduler) Start(worker SessionWorker) error {
	js.mu.Lock()
	js.worker = worker
	js.mu.Unlock()

	if js.refreshInterval > 0 {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(js.refreshInterval),
			gocron.NewTask(js.refreshLiveSessions),
			gocron.WithName("live-session-refresh"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create refresh job: %w", err)
		}
		js.refresh = job
	}

	if js.sweepInterval > 0 {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(js.sweepInterval),
			gocron.NewTask(js.sweepSessions),
			gocron.WithName("session-sweep"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create sweep job: %w", err)
		}
		js.sweep = job
	}

	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// ScheduleReconcile runs a reconcile for the session after delay. A newer
// schedule for the same session replaces a pending one.
func (js *JobScheduler) ScheduleReconcile(sessionID string, delay time.Duration) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if prev, ok := js.pending[sessionID]; ok {
		if err := js.scheduler.RemoveJob(prev.job.ID()); err != nil {
			log.Printf("DEBUG: previous reconcile for session %s already gone: %v", sessionID, err)
		}
		delete(js.pending, sessionID)
	}

	js.nextToken++
	token := js.nextToken

	start := gocron.OneTimeJobStartImmediately()
	if delay > 0 {
		start = gocron.OneTimeJobStartDateTime(time.Now().Add(delay))
	}

	job, err := js.scheduler.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func() { js.runReconcile(sessionID, token) }),
		gocron.WithName("reconcile-"+sessionID),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile: %w", err)
	}
	js.pending[sessionID] = pendingReconcile{job: job, token: token}
	return nil
}

// PendingReconciles counts sessions with a reconcile waiting to run
func (js *JobScheduler) PendingReconciles() int {
	js.mu.Lock()
	defer js.mu.Unlock()
	return len(js.pending)
}

func (js *JobScheduler) runReconcile(sessionID string, token uint64) {
	js.mu.Lock()
	if p, ok := js.pending[sessionID]; ok && p.token == token {
		delete(js.pending, sessionID)
	}
	worker := js.worker
	js.mu.Unlock()

	if worker == nil {
		log.Printf("WARN: reconcile for session %s skipped, scheduler not started", sessionID)
		return
	}

	ctx, cancel := js.context()
	defer cancel()

	section, err := worker.Reconcile(ctx, sessionID)
	if err != nil {
		log.Printf("WARN: reconcile for session %s failed: %v", sessionID, err)
	}
	js.notifier.Notify(sessionID, websocket.RefreshEvent(section))
}

// refreshLiveSessions reloads the caches of every session with an open socket
func (js *JobScheduler) refreshLiveSessions() {
	js.mu.Lock()
	worker := js.worker
	js.mu.Unlock()

	sessions := js.notifier.Sessions()
	if len(sessions) == 0 {
		return
	}
	log.Printf("DEBUG: refreshing %d live sessions", len(sessions))

	refreshed := 0
	for _, sessionID := range sessions {
		ctx, cancel := js.context()
		section, err := worker.Refresh(ctx, sessionID)
		cancel()
		if err != nil {
			log.Printf("WARN: refresh for session %s failed: %v", sessionID, err)
			continue
		}
		js.notifier.Notify(sessionID, websocket.RefreshEvent(section))
		refreshed++
	}
	log.Printf("DEBUG: refreshed %d of %d live sessions", refreshed, len(sessions))
}

func (js *JobScheduler) sweepSessions() {
	js.mu.Lock()
	worker := js.worker
	js.mu.Unlock()
	if worker == nil {
		return
	}

	ctx, cancel := js.context()
	defer cancel()

	swept, err := worker.Sweep(ctx)
	if err != nil {
		log.Printf("WARN: session sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("DEBUG: swept %d idle sessions", swept)
	}
}

func (js *JobScheduler) context() (context.Context, context.CancelFunc) {
	if js.jobTimeout > 0 {
		return context.WithTimeout(context.Background(), js.jobTimeout)
	}
	return context.WithCancel(context.Background())
}
