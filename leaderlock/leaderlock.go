// Package leaderlock implements the single-leader coordination lock the Scheduler acquires
// before running its tick loop (spec §4.1, §5): "Lock acquisition is non-blocking; second
// replicas silently skip... The lock must survive crashes."
package leaderlock

import "context"

// Lock is the contract the Scheduler depends on. Unlike cklxx-elephant.ai's postgresAdvisoryLock
// (whose Acquire loops/retries with backoff until it succeeds or ctx is cancelled), spec §4.1
// requires a single non-blocking attempt: "If the lock is already held, Start returns silently
// without starting a loop." TryAcquire therefore makes exactly one attempt and returns
// immediately either way. Scheduler.Start calls it once; a passive replica becomes leader
// only when Start is called on it again after the holder has released the lock (end-to-end
// scenario 6 in spec §8).
type Lock interface {
	// Name identifies the lock substrate (for logging).
	Name() string
	// TryAcquire makes one non-blocking attempt to become leader. false, nil means someone
	// else holds it — not an error.
	TryAcquire(ctx context.Context) (bool, error)
	// Release gives up leadership if held. Safe to call when not held.
	Release(ctx context.Context) error
}
