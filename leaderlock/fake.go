package leaderlock

import (
	"context"
	"sync"
)

// FakeLock is an in-process Lock for scheduler tests: TryAcquire succeeds for the first
// caller and fails for anyone else until Release is called, modeling the single-leader
// discipline of spec §4.1 without a real Postgres/Redis/filesystem dependency.
type FakeLock struct {
	mu     sync.Mutex
	held   bool
	name   string
}

func NewFakeLock(name string) *FakeLock {
	return &FakeLock{name: name}
}

func (f *FakeLock) Name() string { return f.name }

func (f *FakeLock) TryAcquire(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *FakeLock) Release(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	return nil
}

var _ Lock = (*FakeLock)(nil)
