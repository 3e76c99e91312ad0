package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/area-engine/core/actions"
	"github.com/area-engine/core/dispatcher"
	"github.com/area-engine/core/engine"
	"github.com/area-engine/core/leaderlock"
	"github.com/area-engine/core/models"
	"github.com/area-engine/core/providers"
	"github.com/area-engine/core/store"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(fs *store.FakeStore, lock leaderlock.Lock) *Scheduler {
	deps := engine.Deps{
		Store:          fs,
		Clock:          providers.FakeClock{Fixed: time.Now().UTC()},
		LookbackWindow: 5 * time.Minute,
	}
	return New(Config{TickInterval: time.Minute, HTTPCallTimeout: 5 * time.Second}, lock, dispatcher.New(), deps)
}

func seedTimerWorkflow(t *testing.T, fs *store.FakeStore, reactionName string) *models.Workflow {
	t.Helper()
	ctx := context.Background()
	svc, err := fs.EnsureService(ctx, &models.Service{Name: "timer"})
	require.NoError(t, err)
	action, err := fs.EnsureAction(ctx, &models.Action{ServiceID: svc.ID, Name: "interval_elapsed"})
	require.NoError(t, err)
	reaction, err := fs.EnsureReaction(ctx, &models.Reaction{ServiceID: svc.ID, Name: reactionName})
	require.NoError(t, err)

	w := &models.Workflow{
		IsActive:       true,
		ActionID:       action.ID,
		ReactionID:     reaction.ID,
		Action:         *action,
		Reaction:       *reaction,
		ActionConfig:   models.JSONMap{"interval_minutes": float64(1)},
		ReactionConfig: models.JSONMap{"message": "tick"},
	}
	fs.PutWorkflow(w)
	return w
}

func TestTickRecordsSuccessWhenActionFiresAndReactionSucceeds(t *testing.T) {
	fs := store.NewFakeStore()
	s := newTestScheduler(fs, leaderlock.NewFakeLock("test"))
	w := seedTimerWorkflow(t, fs, "log_message")

	s.tick(context.Background())

	logs := fs.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, models.LogSuccess, logs[0].Status)
	require.Equal(t, "tick", logs[0].Message)
	require.NotNil(t, w.LastTriggered)
}

func TestTickSkipsInactiveWorkflows(t *testing.T) {
	fs := store.NewFakeStore()
	s := newTestScheduler(fs, leaderlock.NewFakeLock("test"))
	w := seedTimerWorkflow(t, fs, "log_message")
	w.IsActive = false

	s.tick(context.Background())

	require.Empty(t, fs.Logs())
}

func TestTickRecordsUnknownKindAsFailure(t *testing.T) {
	fs := store.NewFakeStore()
	s := newTestScheduler(fs, leaderlock.NewFakeLock("test"))
	ctx := context.Background()
	svc, err := fs.EnsureService(ctx, &models.Service{Name: "timer"})
	require.NoError(t, err)
	action, err := fs.EnsureAction(ctx, &models.Action{ServiceID: svc.ID, Name: "not_a_real_action"})
	require.NoError(t, err)
	reaction, err := fs.EnsureReaction(ctx, &models.Reaction{ServiceID: svc.ID, Name: "log_message"})
	require.NoError(t, err)
	w := &models.Workflow{
		IsActive: true, ActionID: action.ID, ReactionID: reaction.ID,
		Action: *action, Reaction: *reaction,
		ActionConfig: models.JSONMap{}, ReactionConfig: models.JSONMap{"message": "x"},
	}
	fs.PutWorkflow(w)

	s.tick(ctx)

	logs := fs.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, models.LogFailed, logs[0].Status)
	require.Nil(t, w.LastTriggered, "an UnknownKind Checker lookup precedes firing and must not advance LastTriggered")
}

func TestTickDoesNotAdvanceLastTriggeredWhenCheckerErrors(t *testing.T) {
	fs := store.NewFakeStore()
	s := newTestScheduler(fs, leaderlock.NewFakeLock("test"))
	w := seedTimerWorkflow(t, fs, "log_message")
	w.ActionConfig = models.JSONMap{} // interval_elapsed requires interval_minutes: ConfigError

	s.tick(context.Background())

	logs := fs.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, models.LogFailed, logs[0].Status)
	require.Nil(t, w.LastTriggered, "a pre-fire Checker error must not advance LastTriggered")
}

func TestTickAdvancesLastTriggeredWhenExecutorFailsAfterFiring(t *testing.T) {
	fs := store.NewFakeStore()
	s := newTestScheduler(fs, leaderlock.NewFakeLock("test"))
	// "unknown_reaction" fires the Checker (interval_elapsed) but has no registered Executor,
	// so the failure happens post-fire and LastTriggered must still advance.
	w := seedTimerWorkflow(t, fs, "unknown_reaction")

	s.tick(context.Background())

	logs := fs.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, models.LogFailed, logs[0].Status)
	require.NotNil(t, w.LastTriggered, "ExecutorFor failing after the Action fired must still advance LastTriggered")
}

func TestStartStaysPassiveWhenLockHeldElsewhere(t *testing.T) {
	lock := leaderlock.NewFakeLock("shared")
	ctx := context.Background()
	acquired, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	fs := store.NewFakeStore()
	s := newTestScheduler(fs, lock)

	require.NoError(t, s.Start(ctx))
	require.False(t, s.running)
}

func TestStartAndStopLifecycle(t *testing.T) {
	fs := store.NewFakeStore()
	lock := leaderlock.NewFakeLock("solo")
	s := newTestScheduler(fs, lock)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.True(t, s.running)

	s.Stop(ctx)
	require.False(t, s.running)

	acquired, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired, "Stop must release the lock")
}

func TestStartIsIdempotent(t *testing.T) {
	fs := store.NewFakeStore()
	lock := leaderlock.NewFakeLock("solo")
	s := newTestScheduler(fs, lock)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	s.Stop(ctx)
}

func TestEvaluateIsolatedRecoversPanicAsErrorLog(t *testing.T) {
	fs := store.NewFakeStore()
	s := newTestScheduler(fs, leaderlock.NewFakeLock("test"))
	s.dispatcher.RegisterChecker("panicky", func(ctx context.Context, deps engine.Deps, w *models.Workflow) (actions.TriggerOutcome, error) {
		panic("boom")
	})

	ctx := context.Background()
	svc, err := fs.EnsureService(ctx, &models.Service{Name: "custom"})
	require.NoError(t, err)
	action, err := fs.EnsureAction(ctx, &models.Action{ServiceID: svc.ID, Name: "panicky"})
	require.NoError(t, err)
	reaction, err := fs.EnsureReaction(ctx, &models.Reaction{ServiceID: svc.ID, Name: "log_message"})
	require.NoError(t, err)
	w := &models.Workflow{
		IsActive: true, ActionID: action.ID, ReactionID: reaction.ID,
		Action: *action, Reaction: *reaction,
		ActionConfig: models.JSONMap{}, ReactionConfig: models.JSONMap{"message": "x"},
	}
	fs.PutWorkflow(w)

	require.NotPanics(t, func() { s.tick(ctx) })

	logs := fs.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, models.LogError, logs[0].Status)
	require.Equal(t, "panic during evaluation", logs[0].Message)
}
