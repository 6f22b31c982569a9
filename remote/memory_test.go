package remote

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGeneratesIDWhenAbsent(t *testing.T) {
	s := NewMemoryService()
	id, err := s.Create(context.Background(), "agencies", map[string]any{"name": "Red Cross"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestCreateIsIdempotentOnClientID(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()

	doc := map[string]any{"id": "tx-1", "quantity": 4}
	id1, err := s.Create(ctx, "transactions", doc)
	require.NoError(t, err)
	// Retry after a lost confirmation: same id, no duplicate.
	id2, err := s.Create(ctx, "transactions", doc)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	snaps := make(chan Snapshot, 1)
	unsub, err := s.Subscribe("transactions", func(snap Snapshot) {
		select {
		case snaps <- snap:
		default:
		}
	})
	require.NoError(t, err)
	defer unsub()

	select {
	case snap := <-snaps:
		assert.Len(t, snap.Docs, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestSubscribeDeliversFullSnapshotsOnChange(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()

	_, err := s.Create(ctx, "resources", map[string]any{"id": "r1", "availableQuantity": 10})
	require.NoError(t, err)

	snaps := make(chan Snapshot, 4)
	unsub, err := s.Subscribe("resources", func(snap Snapshot) { snaps <- snap })
	require.NoError(t, err)
	defer unsub()

	// Initial snapshot.
	snap := waitSnap(t, snaps)
	require.Len(t, snap.Docs, 1)

	require.NoError(t, s.Update(ctx, "resources", "r1", map[string]any{"availableQuantity": 6}))
	snap = waitSnap(t, snaps)
	require.Len(t, snap.Docs, 1)
	var doc struct {
		AvailableQuantity int `json:"availableQuantity"`
	}
	require.NoError(t, json.Unmarshal(snap.Docs[0].Data, &doc))
	assert.Equal(t, 6, doc.AvailableQuantity)

	require.NoError(t, s.Delete(ctx, "resources", "r1"))
	snap = waitSnap(t, snaps)
	assert.Empty(t, snap.Docs)
}

func TestUpdateMissingDocumentFails(t *testing.T) {
	s := NewMemoryService()
	err := s.Update(context.Background(), "resources", "ghost", map[string]any{"name": "x"})
	assert.Error(t, err)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()

	snaps := make(chan Snapshot, 4)
	unsub, err := s.Subscribe("resources", func(snap Snapshot) { snaps <- snap })
	require.NoError(t, err)
	waitSnap(t, snaps) // initial
	unsub()

	_, err = s.Create(ctx, "resources", map[string]any{"id": "r1"})
	require.NoError(t, err)

	select {
	case <-snaps:
		t.Fatal("snapshot delivered after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func waitSnap(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}
