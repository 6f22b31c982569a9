// Package remote is the authoritative document store behind the sync
// engine. Subscriptions deliver full-collection snapshots, never deltas.
package remote

import (
	"context"
	"encoding/json"
)

// Document is one stored entity, opaque to this layer.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Snapshot is the complete state of one collection at delivery time.
type Snapshot struct {
	Collection string
	Docs       []Document
}

// Service is the remote inventory store. Create is an idempotent upsert
// when the marshalled data carries an "id" field: retrying a create whose
// confirmation was lost cannot duplicate the document.
//
// Subscribe registers onChange for a collection and returns an unsubscribe
// func. The current snapshot is delivered once shortly after subscribing,
// then again after every change. Delivery is asynchronous with respect to
// the mutating call.
type Service interface {
	Create(ctx context.Context, collection string, data any) (string, error)
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Subscribe(collection string, onChange func(Snapshot)) (func(), error)
}
