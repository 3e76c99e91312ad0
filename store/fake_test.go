package store

import (
	"context"
	"testing"
	"time"

	"github.com/area-engine/core/models"
	"github.com/stretchr/testify/require"
)

func TestFakeStoreActiveWorkflowsFiltersInactive(t *testing.T) {
	fs := NewFakeStore()
	fs.PutWorkflow(&models.Workflow{IsActive: true})
	fs.PutWorkflow(&models.Workflow{IsActive: false})

	active, err := fs.ActiveWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestFakeStoreRecordOutcomeIsAtomicish(t *testing.T) {
	fs := NewFakeStore()
	w := &models.Workflow{IsActive: true}
	fs.PutWorkflow(w)

	now := time.Now().UTC()
	err := fs.RecordOutcome(context.Background(), w.ID, now, &models.WorkflowLog{
		Status:  models.LogSuccess,
		Message: "hello",
	})
	require.NoError(t, err)
	require.NotNil(t, w.LastTriggered)
	require.WithinDuration(t, now, *w.LastTriggered, time.Second)

	logs := fs.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, w.ID, logs[0].WorkflowID)
}

func TestFakeStoreRecordFailureLeavesLastTriggeredUntouched(t *testing.T) {
	fs := NewFakeStore()
	w := &models.Workflow{IsActive: true}
	fs.PutWorkflow(w)

	err := fs.RecordFailure(context.Background(), w.ID, &models.WorkflowLog{
		Status:  models.LogFailed,
		Message: "ConfigError: missing interval_minutes",
	})
	require.NoError(t, err)
	require.Nil(t, w.LastTriggered)

	logs := fs.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, w.ID, logs[0].WorkflowID)
}

func TestFakeStoreLogByMessageDedup(t *testing.T) {
	fs := NewFakeStore()
	w := &models.Workflow{IsActive: true}
	fs.PutWorkflow(w)
	ctx := context.Background()

	require.NoError(t, fs.RecordOutcome(ctx, w.ID, time.Now(), &models.WorkflowLog{Status: models.LogSuccess, Message: "Email from x@y.z: hi"}))

	found, err := fs.LogByMessage(ctx, w.ID, "Email from x@y.z: hi")
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := fs.LogByMessage(ctx, w.ID, "Email from other@z.z: hi")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestFakeStoreLogByMessageContainsForDrive(t *testing.T) {
	fs := NewFakeStore()
	w := &models.Workflow{IsActive: true}
	fs.PutWorkflow(w)
	ctx := context.Background()

	require.NoError(t, fs.RecordOutcome(ctx, w.ID, time.Now(), &models.WorkflowLog{Status: models.LogSuccess, Message: "New file: report.pdf (id:f1)"}))

	found, err := fs.LogByMessageContains(ctx, w.ID, "id:f1")
	require.NoError(t, err)
	require.NotNil(t, found)
}
