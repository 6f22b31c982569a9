package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief_resource_sync/cache"
)

func op(id string, kind Op) PendingOp {
	return PendingOp{
		ID:         id,
		Op:         kind,
		Collection: "transactions",
		TargetID:   "t-" + id,
		Payload:    json.RawMessage(`{}`),
		EnqueuedAt: time.Now().UTC(),
	}
}

func TestEnqueuePersistsThroughCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryStore()

	q := New(c, "")
	require.NoError(t, q.Enqueue(ctx, op("1", OpCreate)))
	require.NoError(t, q.Enqueue(ctx, op("2", OpUpdate)))
	assert.Equal(t, 2, q.Len())

	// A fresh queue over the same cache sees the persisted ops.
	q2 := New(c, "")
	require.NoError(t, q2.Load(ctx))
	pending := q2.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "1", pending[0].ID)
	assert.Equal(t, "2", pending[1].ID)
}

func TestDrainReplaysInSubmissionOrder(t *testing.T) {
	ctx := context.Background()
	q := New(cache.NewMemoryStore(), "")
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(ctx, op(fmt.Sprint(i), OpCreate)))
	}

	var got []string
	replayed, failed := q.Drain(ctx, func(ctx context.Context, o PendingOp) error {
		got = append(got, o.ID)
		return nil
	})

	assert.Equal(t, 3, replayed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []string{"1", "2", "3"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestDrainKeepsFailedOpsAndContinues(t *testing.T) {
	ctx := context.Background()
	q := New(cache.NewMemoryStore(), "")
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(ctx, op(fmt.Sprint(i), OpCreate)))
	}

	replayed, failed := q.Drain(ctx, func(ctx context.Context, o PendingOp) error {
		if o.ID == "2" {
			return fmt.Errorf("remote rejected")
		}
		return nil
	})

	assert.Equal(t, 2, replayed)
	assert.Equal(t, 1, failed)
	pending := q.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "2", pending[0].ID)

	// Next drain retries the retained op.
	replayed, failed = q.Drain(ctx, func(ctx context.Context, o PendingOp) error { return nil })
	assert.Equal(t, 1, replayed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 0, q.Len())
}

func TestLoadOnEmptyCache(t *testing.T) {
	q := New(cache.NewMemoryStore(), "")
	require.NoError(t, q.Load(context.Background()))
	assert.Equal(t, 0, q.Len())
}
