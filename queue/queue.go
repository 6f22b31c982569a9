// Package queue is the durable list of mutations waiting for connectivity.
// Ops are replayed in submission order; the whole queue is persisted through
// the cache store as one atomic snapshot so it survives process restarts.
package queue

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"relief_resource_sync/cache"
)

// Op is the kind of a pending mutation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// PendingOp is one queued mutation. Payload is the marshalled document for
// creates and the partial field map for updates.
type PendingOp struct {
	ID         string          `json:"id"`
	Op         Op              `json:"op"`
	Collection string          `json:"collection"`
	TargetID   string          `json:"targetId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

var (
	enqueuedOps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "write_queue_enqueued_total",
		Help: "Mutations accepted into the offline write queue.",
	})
	replayedOps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "write_queue_replayed_total",
		Help: "Queued mutations successfully replayed against the remote store.",
	})
	replayFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "write_queue_replay_failures_total",
		Help: "Queued mutations whose replay attempt failed.",
	})
)

// Queue persists pending ops under one cache key.
type Queue struct {
	mu    sync.Mutex
	cache cache.Store
	key   string
	ops   []PendingOp
}

func New(c cache.Store, key string) *Queue {
	if key == "" {
		key = "writeQueue"
	}
	return &Queue{cache: c, key: key}
}

// Load restores queued ops persisted by a previous run.
func (q *Queue) Load(ctx context.Context) error {
	b, err := q.cache.Get(ctx, q.key)
	if err != nil {
		return errors.Wrap(err, "load write queue")
	}
	if b == nil {
		return nil
	}
	var ops []PendingOp
	if err := json.Unmarshal(b, &ops); err != nil {
		return errors.Wrap(err, "decode write queue")
	}
	q.mu.Lock()
	q.ops = ops
	q.mu.Unlock()
	return nil
}

// Enqueue appends op and persists the new snapshot before reporting success;
// an op is only "queued" once it would survive a restart.
func (q *Queue) Enqueue(ctx context.Context, op PendingOp) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	next := make([]PendingOp, len(q.ops), len(q.ops)+1)
	copy(next, q.ops)
	next = append(next, op)
	if err := q.persistLocked(ctx, next); err != nil {
		return err
	}
	q.ops = next
	enqueuedOps.Inc()
	return nil
}

// Len reports how many ops are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Pending returns a copy of the queued ops in submission order.
func (q *Queue) Pending() []PendingOp {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]PendingOp, len(q.ops))
	copy(out, q.ops)
	return out
}

// Drain replays queued ops in submission order. A failing op is logged,
// counted, and kept for the next drain; later ops still get their attempt.
// Returns how many ops were replayed and how many failed.
func (q *Queue) Drain(ctx context.Context, apply func(ctx context.Context, op PendingOp) error) (int, int) {
	q.mu.Lock()
	pending := make([]PendingOp, len(q.ops))
	copy(pending, q.ops)
	q.mu.Unlock()

	var retained []PendingOp
	replayed, failed := 0, 0
	for _, op := range pending {
		if err := apply(ctx, op); err != nil {
			log.Printf("replay of %s %s/%s failed: %v", op.Op, op.Collection, op.TargetID, err)
			replayFailures.Inc()
			retained = append(retained, op)
			failed++
			continue
		}
		replayedOps.Inc()
		replayed++
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	// Ops enqueued while draining stay behind the retained ones.
	if extra := len(q.ops) - len(pending); extra > 0 {
		retained = append(retained, q.ops[len(pending):]...)
	}
	if retained == nil {
		retained = []PendingOp{}
	}
	if err := q.persistLocked(ctx, retained); err != nil {
		log.Printf("persist write queue after drain failed: %v", err)
	}
	q.ops = retained
	return replayed, failed
}

func (q *Queue) persistLocked(ctx context.Context, ops []PendingOp) error {
	b, err := json.Marshal(ops)
	if err != nil {
		return errors.Wrap(err, "encode write queue")
	}
	return errors.Wrap(q.cache.Set(ctx, q.key, b), "persist write queue")
}
