// Package store is the AREA engine's persistence layer (spec §3, §6): durable storage of
// users, the service/action/reaction catalog, connections, workflows, and execution logs.
package store

import (
	"context"
	"time"

	"github.com/area-engine/core/models"
)

// Store is the collaborator interface the core consumes (spec §6). The transactional unit
// is one workflow evaluation: RecordOutcome commits LastTriggered and the new WorkflowLog
// row together or not at all.
type Store interface {
	// Catalog / seeding
	EnsureUser(ctx context.Context, user *models.User) error
	EnsureService(ctx context.Context, svc *models.Service) (*models.Service, error)
	EnsureAction(ctx context.Context, action *models.Action) (*models.Action, error)
	EnsureReaction(ctx context.Context, reaction *models.Reaction) (*models.Reaction, error)
	CountUsers(ctx context.Context) (int64, error)

	// Workflow evaluation
	ActiveWorkflows(ctx context.Context) ([]*models.Workflow, error)
	LogByMessage(ctx context.Context, workflowID uint, message string) (*models.WorkflowLog, error)
	LogByMessageContains(ctx context.Context, workflowID uint, substr string) (*models.WorkflowLog, error)
	RecordOutcome(ctx context.Context, workflowID uint, triggeredAt time.Time, log *models.WorkflowLog) error
	// RecordFailure inserts log without touching the workflow's LastTriggered column, for
	// failures that happened before the Action fired (spec §4.1 step 2: LastTriggered only
	// advances "if the outcome indicates fired").
	RecordFailure(ctx context.Context, workflowID uint, log *models.WorkflowLog) error

	// Connections
	Connection(ctx context.Context, userID, serviceID uint) (*models.UserServiceConnection, error)
	SaveConnection(ctx context.Context, conn *models.UserServiceConnection) error

	// ServiceByName supports engine.Deps.ResolveToken's connection lookup.
	ServiceByName(ctx context.Context, name string) (*models.Service, error)
}

// ErrNotFound describes a lookup that found nothing. Neither PostgresStore nor FakeStore
// returns it: their lookups report absence as a nil row with a nil error.
type ErrNotFound struct{ What string }

func (e *ErrNotFound) Error() string { return e.What + " not found" }
