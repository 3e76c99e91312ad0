package dispatcher

import (
	"context"
	"testing"

	"github.com/area-engine/core/actions"
	"github.com/area-engine/core/areaerr"
	"github.com/area-engine/core/engine"
	"github.com/area-engine/core/models"
	"github.com/area-engine/core/reactions"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersEveryBuiltinKind(t *testing.T) {
	d := New()

	checkerNames := []string{
		"time_matches", "interval_elapsed", "email_received_from", "email_subject_contains",
		"new_file_in_folder", "new_file_uploaded", "new_post_created", "post_contains_keyword",
		"new_star_on_repo", "new_issue_created", "new_pr_opened", "track_added_to_playlist",
		"track_saved", "playback_started",
	}
	for _, name := range checkerNames {
		_, err := d.CheckerFor(name)
		require.NoErrorf(t, err, "checker %q should be registered", name)
	}

	executorNames := []string{
		"send_email", "create_file", "create_folder", "share_file", "create_post",
		"create_issue", "add_to_playlist", "create_playlist", "start_playback",
		"log_message", "send_notification",
	}
	for _, name := range executorNames {
		_, err := d.ExecutorFor(name)
		require.NoErrorf(t, err, "executor %q should be registered", name)
	}
}

func TestCheckerForUnknownNameReturnsFixedFormatError(t *testing.T) {
	d := New()
	_, err := d.CheckerFor("not_a_real_action")
	require.Error(t, err)
	require.Equal(t, areaerr.KindUnknown, areaerr.KindOf(err))
	require.EqualError(t, err, "UnknownKind: Unknown action/reaction type: not_a_real_action")
}

func TestExecutorForUnknownNameReturnsFixedFormatError(t *testing.T) {
	d := New()
	_, err := d.ExecutorFor("not_a_real_reaction")
	require.Error(t, err)
	require.Equal(t, areaerr.KindUnknown, areaerr.KindOf(err))
}

func TestRegisterCheckerOverridesBuiltin(t *testing.T) {
	d := New()
	called := false
	d.RegisterChecker("time_matches", func(ctx context.Context, deps engine.Deps, w *models.Workflow) (actions.TriggerOutcome, error) {
		called = true
		return actions.TriggerOutcome{Fired: true}, nil
	})

	c, err := d.CheckerFor("time_matches")
	require.NoError(t, err)
	_, err = c(context.Background(), engine.Deps{}, &models.Workflow{})
	require.NoError(t, err)
	require.True(t, called)
}

func TestRegisterExecutorAddsNewKind(t *testing.T) {
	d := New()
	d.RegisterExecutor("noop", func(ctx context.Context, deps engine.Deps, w *models.Workflow) (reactions.ExecutionResult, error) {
		return reactions.ExecutionResult{Success: true}, nil
	})

	e, err := d.ExecutorFor("noop")
	require.NoError(t, err)
	result, err := e(context.Background(), engine.Deps{}, &models.Workflow{})
	require.NoError(t, err)
	require.True(t, result.Success)
}
