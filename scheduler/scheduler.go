// Package scheduler implements the polling scheduler (spec §4.1, §5): a single-leader
// periodic evaluator that ticks over every active workflow, dispatching Checkers and
// Executors and persisting the outcome.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/area-engine/core/areaerr"
	"github.com/area-engine/core/dispatcher"
	"github.com/area-engine/core/engine"
	"github.com/area-engine/core/leaderlock"
	"github.com/area-engine/core/logging"
	"github.com/area-engine/core/models"
	"github.com/robfig/cron/v3"
)

// Config controls tick cadence and per-tick budgets (spec §5, §6).
type Config struct {
	TickInterval    time.Duration // default 1 minute
	HTTPCallTimeout time.Duration // default 30s; not read by the Scheduler (provider calls use the providers package's own 30s client timeout)
}

// DefaultConfig matches spec §6's documented defaults.
func DefaultConfig() Config {
	return Config{TickInterval: time.Minute, HTTPCallTimeout: 30 * time.Second}
}

// Scheduler owns the tick loop's lifecycle, grounded on cklxx-elephant.ai's
// scheduler.Start/Stop shape: a cancellable context, a done channel closed once cron has
// finished the in-flight tick, and a leader lock acquired for the scheduler's lifetime rather than per tick (spec §5).
type Scheduler struct {
	cfg        Config
	lock       leaderlock.Lock
	dispatcher *dispatcher.Dispatcher
	deps       engine.Deps
	log        *logging.ContextLogger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	cron    *cron.Cron
}

// New builds a Scheduler. lock is the leader-coordination substrate chosen by
// config.SchedulerConfig.LeaderLockMode at wiring time.
func New(cfg Config, lock leaderlock.Lock, d *dispatcher.Dispatcher, deps engine.Deps) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		lock:       lock,
		dispatcher: d,
		deps:       deps,
		log:        logging.Named("scheduler"),
	}
}

// Start attempts to become leader and, if successful, begins the tick loop in the
// background. It is idempotent, and returns silently — not an error — if another replica
// already holds the lock (spec §4.1: "If the lock is already held, Start returns silently
// without starting a loop").
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	acquired, err := s.lock.TryAcquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		s.log.WithField("lock", s.lock.Name()).Info("leader lock held elsewhere; staying passive")
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	c := cron.New()
	spec := fmt.Sprintf("@every %s", s.cfg.TickInterval)
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cron.FuncJob(func() { s.tick(loopCtx) }))
	if _, err := c.AddJob(spec, job); err != nil {
		s.running = false
		return err
	}
	s.cron = c
	c.Start()

	go func() {
		<-loopCtx.Done()
		<-c.Stop().Done()
		close(s.done)
	}()

	s.log.WithField("lock", s.lock.Name()).Info("acquired leader lock; scheduler started")
	return nil
}

// Stop signals the loop, waits for the in-flight tick to finish, and releases the lock
// (spec §4.1 Stop, §5 cancellation).
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done

	if err := s.lock.Release(ctx); err != nil {
		s.log.WithError(err).Warn("failed releasing leader lock")
	}
}

// tick enumerates active workflows and evaluates each sequentially, isolating failures per
// spec §4.1 step 3 and §7's propagation rule ("no error from one workflow may abort the
// tick").
func (s *Scheduler) tick(ctx context.Context) {
	budget := time.Duration(float64(s.cfg.TickInterval) * 0.8)
	tickCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	workflows, err := s.deps.Store.ActiveWorkflows(tickCtx)
	if err != nil {
		s.log.WithError(err).Error("failed listing active workflows")
		return
	}

	for _, w := range workflows {
		s.evaluateIsolated(tickCtx, w)
	}
}

// evaluateIsolated wraps evaluate with panic recovery so one workflow's crash never takes
// down the tick (spec §4.1 "Isolate per-workflow exceptions").
func (s *Scheduler) evaluateIsolated(ctx context.Context, w *models.Workflow) {
	wlog := s.log.WithFields(map[string]interface{}{"workflow_id": w.ID, "workflow": w.Name})
	defer func() {
		if r := logging.RecoverAndLog(wlog); r != nil {
			now := time.Now().UTC()
			_ = s.deps.Store.RecordOutcome(ctx, w.ID, now, &models.WorkflowLog{
				Status:      models.LogError,
				Message:     "panic during evaluation",
				TriggeredAt: now,
			})
		}
	}()
	s.evaluate(ctx, w)
}

func (s *Scheduler) evaluate(ctx context.Context, w *models.Workflow) {
	start := time.Now()

	checker, err := s.dispatcher.CheckerFor(w.Action.Name)
	if err != nil {
		s.recordPreFireFailure(ctx, w, start, err)
		return
	}

	outcome, err := checker(ctx, s.deps, w)
	if err != nil {
		s.recordPreFireFailure(ctx, w, start, err)
		return
	}
	if !outcome.Fired {
		return
	}

	executor, err := s.dispatcher.ExecutorFor(w.Reaction.Name)
	if err != nil {
		s.recordPostFireFailure(ctx, w, start, err)
		return
	}

	result, err := executor(ctx, s.deps, w)
	if err != nil {
		s.recordPostFireFailure(ctx, w, start, err)
		return
	}

	message := outcome.Metadata
	if message == "" {
		message = result.Message
	}
	status := models.LogSuccess
	if !result.Success {
		status = models.LogFailed
		message = result.Error
	}

	now := time.Now().UTC()
	elapsed := now.Sub(start).Milliseconds()
	s.commit(ctx, w, &models.WorkflowLog{
		Status:          status,
		Message:         message,
		TriggeredAt:     now,
		ExecutionTimeMs: &elapsed,
	})
}

// recordPreFireFailure persists a failed evaluation that happened before the Checker
// reported Fired:true (dispatcher lookup or the Checker call itself). LastTriggered must not
// advance here: the Action never fired, so spec §4.1 step 2's "last_triggered updates only if
// the outcome indicates fired" still applies.
func (s *Scheduler) recordPreFireFailure(ctx context.Context, w *models.Workflow, start time.Time, err error) {
	log := s.failureLog(start, err)
	if rErr := s.deps.Store.RecordFailure(ctx, w.ID, log); rErr != nil {
		s.log.WithError(rErr).WithField("workflow_id", w.ID).Error("failed recording workflow failure")
	}
}

// recordPostFireFailure persists a failed evaluation that happened after the Checker already
// reported Fired:true (dispatcher lookup or the Executor call itself). LastTriggered advances
// unconditionally here, matching the pre-fire Checker outcome.
func (s *Scheduler) recordPostFireFailure(ctx context.Context, w *models.Workflow, start time.Time, err error) {
	log := s.failureLog(start, err)
	s.commit(ctx, w, log)
}

func (s *Scheduler) failureLog(start time.Time, err error) *models.WorkflowLog {
	kind := areaerr.KindOf(err)
	status := models.LogFailed
	if kind == areaerr.KindInternal {
		status = models.LogError
	}
	now := time.Now().UTC()
	elapsed := now.Sub(start).Milliseconds()
	return &models.WorkflowLog{
		Status:          status,
		Message:         err.Error(),
		TriggeredAt:     now,
		ExecutionTimeMs: &elapsed,
	}
}

func (s *Scheduler) commit(ctx context.Context, w *models.Workflow, log *models.WorkflowLog) {
	if err := s.deps.Store.RecordOutcome(ctx, w.ID, log.TriggeredAt, log); err != nil {
		s.log.WithError(err).WithField("workflow_id", w.ID).Error("failed recording workflow outcome")
	}
}
