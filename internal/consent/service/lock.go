package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "agency/pkg/domain-errors"
)

// numVisitorShards spreads visitors over a fixed set of mutexes so concurrent
// writes for one visitor serialize without a global lock.
const numVisitorShards = 128

// defaultLockTimeout bounds a read-modify-write cycle when the caller set no
// deadline.
const defaultLockTimeout = 5 * time.Second

type visitorLocks struct {
	shards  [numVisitorShards]sync.Mutex
	timeout time.Duration
}

// run executes fn while holding the visitor's shard.
func (l *visitorLocks) run(ctx context.Context, visitorID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "consent update aborted: context cancelled")
	}

	timeout := l.timeout
	if timeout == 0 {
		timeout = defaultLockTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := &l.shards[shardFor(visitorID)]
	shard.Lock()
	defer shard.Unlock()

	// the wait for the shard may have used up the deadline
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "consent update aborted: context cancelled")
	}
	return fn(ctx)
}

func shardFor(visitorID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(visitorID))
	return h.Sum32() % numVisitorShards
}
