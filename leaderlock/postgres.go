package leaderlock

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/area-engine/core/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultLockName = "area_scheduler"

// advisoryConn narrows *pgxpool.Conn to what tryLock/unlock need, so tests can substitute a
// fake — adapted from cklxx-elephant.ai's scheduler_leader_lock.go advisoryConn interface.
type advisoryConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Release()
}

type poolConnAdapter struct{ conn *pgxpool.Conn }

func (a *poolConnAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.conn.QueryRow(ctx, sql, args...)
}
func (a *poolConnAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.conn.Exec(ctx, sql, args...)
}
func (a *poolConnAdapter) Release() { a.conn.Release() }

type acquireConnFn func(ctx context.Context) (advisoryConn, error)

// PostgresLock holds a Postgres advisory lock for as long as the process is leader. It is
// auto-released by Postgres if the connection drops, satisfying spec §5's crash-survival
// requirement without any heartbeat.
type PostgresLock struct {
	lockName    string
	lockKey     int64
	ownerID     string
	log         *logging.ContextLogger
	acquireConn acquireConnFn

	mu   sync.Mutex
	conn advisoryConn
}

// NewPostgresLock builds a lock keyed by name over the given pgxpool.Pool.
func NewPostgresLock(pool *pgxpool.Pool, name, ownerID string) *PostgresLock {
	acquire := func(ctx context.Context) (advisoryConn, error) {
		if pool == nil {
			return nil, fmt.Errorf("leaderlock: postgres pool is nil")
		}
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return &poolConnAdapter{conn: conn}, nil
	}
	return newPostgresLockWithAcquire(acquire, name, ownerID)
}

func newPostgresLockWithAcquire(acquire acquireConnFn, name, ownerID string) *PostgresLock {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultLockName
	}
	return &PostgresLock{
		lockName:    name,
		lockKey:     lockKeyFor(name),
		ownerID:     ownerID,
		log:         logging.Named("leaderlock.postgres"),
		acquireConn: acquire,
	}
}

func (l *PostgresLock) Name() string { return l.lockName }

// TryAcquire makes exactly one non-blocking pg_try_advisory_lock attempt, per spec §4.1's
// "non-blocking" requirement — no retry loop here, unlike the cklxx-elephant.ai grounding
// source this is adapted from, whose Acquire retries with backoff until ctx is cancelled.
func (l *PostgresLock) TryAcquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.conn != nil {
		l.mu.Unlock()
		return true, nil
	}
	l.mu.Unlock()

	conn, err := l.acquireConn(ctx)
	if err != nil {
		return false, fmt.Errorf("leaderlock: acquire connection: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, l.lockKey).Scan(&locked); err != nil {
		conn.Release()
		return false, fmt.Errorf("leaderlock: pg_try_advisory_lock: %w", err)
	}
	if !locked {
		conn.Release()
		return false, nil
	}

	l.mu.Lock()
	if l.conn != nil {
		l.mu.Unlock()
		_ = unlockConn(context.Background(), conn, l.lockKey)
		conn.Release()
		return true, nil
	}
	l.conn = conn
	l.mu.Unlock()

	l.log.WithFields(map[string]interface{}{"lock": l.lockName, "owner": l.ownerID}).Info("leader lock acquired")
	return true, nil
}

func (l *PostgresLock) Release(ctx context.Context) error {
	l.mu.Lock()
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()
	if conn == nil {
		return nil
	}
	defer conn.Release()

	if err := unlockConn(ctx, conn, l.lockKey); err != nil {
		return err
	}
	l.log.WithFields(map[string]interface{}{"lock": l.lockName, "owner": l.ownerID}).Info("leader lock released")
	return nil
}

func unlockConn(ctx context.Context, conn advisoryConn, key int64) error {
	var unlocked bool
	if err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, key).Scan(&unlocked); err != nil {
		return fmt.Errorf("leaderlock: pg_advisory_unlock: %w", err)
	}
	return nil
}

func lockKeyFor(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

var _ Lock = (*PostgresLock)(nil)
