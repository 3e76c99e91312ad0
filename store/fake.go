package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/area-engine/core/models"
)

// FakeStore is an in-memory Store used by scheduler/actions/reactions tests in place of a
// live Postgres instance — the same role evalgo-org-eve's queue tests give miniredis, adapted
// here as a hand-written fake since Store is bespoke to this domain.
type FakeStore struct {
	mu sync.Mutex

	users       []*models.User
	services    map[string]*models.Service
	actions     []*models.Action
	reactions   []*models.Reaction
	workflows   map[uint]*models.Workflow
	logs        []*models.WorkflowLog
	connections map[[2]uint]*models.UserServiceConnection

	nextID uint
}

// NewFakeStore returns an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		services:    map[string]*models.Service{},
		workflows:   map[uint]*models.Workflow{},
		connections: map[[2]uint]*models.UserServiceConnection{},
	}
}

func (f *FakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *FakeStore) EnsureUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return nil
		}
	}
	user.ID = f.id()
	f.users = append(f.users, user)
	return nil
}

func (f *FakeStore) EnsureService(_ context.Context, svc *models.Service) (*models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.services[svc.Name]; ok {
		return existing, nil
	}
	svc.ID = f.id()
	f.services[svc.Name] = svc
	return svc, nil
}

func (f *FakeStore) EnsureAction(_ context.Context, action *models.Action) (*models.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.actions {
		if a.ServiceID == action.ServiceID && a.Name == action.Name {
			return a, nil
		}
	}
	action.ID = f.id()
	f.actions = append(f.actions, action)
	return action, nil
}

func (f *FakeStore) EnsureReaction(_ context.Context, reaction *models.Reaction) (*models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reactions {
		if r.ServiceID == reaction.ServiceID && r.Name == reaction.Name {
			return r, nil
		}
	}
	reaction.ID = f.id()
	f.reactions = append(f.reactions, reaction)
	return reaction, nil
}

func (f *FakeStore) CountUsers(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

// PutWorkflow is a test helper to seed a workflow directly (bypassing EnsureX plumbing).
func (f *FakeStore) PutWorkflow(w *models.Workflow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ID == 0 {
		w.ID = f.id()
	}
	f.workflows[w.ID] = w
}

func (f *FakeStore) ActiveWorkflows(_ context.Context) ([]*models.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Workflow
	for _, w := range f.workflows {
		if w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *FakeStore) LogByMessage(_ context.Context, workflowID uint, message string) (*models.WorkflowLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.logs {
		if l.WorkflowID == workflowID && l.Message == message {
			return l, nil
		}
	}
	return nil, nil
}

func (f *FakeStore) LogByMessageContains(_ context.Context, workflowID uint, substr string) (*models.WorkflowLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.logs {
		if l.WorkflowID == workflowID && strings.Contains(l.Message, substr) {
			return l, nil
		}
	}
	return nil, nil
}

func (f *FakeStore) RecordOutcome(_ context.Context, workflowID uint, triggeredAt time.Time, log *models.WorkflowLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.workflows[workflowID]; ok {
		t := triggeredAt
		w.LastTriggered = &t
	}
	log.ID = f.id()
	log.WorkflowID = workflowID
	f.logs = append(f.logs, log)
	return nil
}

func (f *FakeStore) RecordFailure(_ context.Context, workflowID uint, log *models.WorkflowLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = f.id()
	log.WorkflowID = workflowID
	f.logs = append(f.logs, log)
	return nil
}

func (f *FakeStore) Connection(_ context.Context, userID, serviceID uint) (*models.UserServiceConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connections[[2]uint{userID, serviceID}], nil
}

func (f *FakeStore) SaveConnection(_ context.Context, conn *models.UserServiceConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conn.ID == 0 {
		conn.ID = f.id()
	}
	f.connections[[2]uint{conn.UserID, conn.ServiceID}] = conn
	return nil
}

func (f *FakeStore) ServiceByName(_ context.Context, name string) (*models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.services[name], nil
}

// Logs returns a snapshot of every recorded WorkflowLog, for test assertions.
func (f *FakeStore) Logs() []*models.WorkflowLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.WorkflowLog, len(f.logs))
	copy(out, f.logs)
	return out
}
