package engine

import (
	"context"
	"encoding/json"
	"log"

	"relief_resource_sync/cache"
	"relief_resource_sync/models"
	"relief_resource_sync/remote"
)

// loadFromCache seeds the store from the last persisted snapshots so the UI
// has data before (or without) the live subscriptions attaching.
func (e *Engine) loadFromCache(ctx context.Context) {
	e.store.SetResources(loadCached[models.Resource](ctx, e.cache, models.ResourceCollection))
	e.store.SetTransactions(loadCached[models.ResourceTransaction](ctx, e.cache, models.TransactionCollection))
	e.store.SetMultiTransactions(loadCached[models.MultiResourceTransaction](ctx, e.cache, models.MultiTransactionCollection))
	e.store.SetBorrowers(loadCached[models.BorrowerProfile](ctx, e.cache, models.BorrowerCollection))
	e.store.SetAgencies(loadCached[models.Agency](ctx, e.cache, models.AgencyCollection))
	e.store.SetHistory(loadCached[models.ResourceHistory](ctx, e.cache, models.HistoryCollection))
}

func loadCached[T any](ctx context.Context, c cache.Store, key string) []*T {
	b, err := c.Get(ctx, key)
	if err != nil {
		log.Printf("read cached %s: %v", key, err)
		return nil
	}
	if b == nil {
		return nil
	}
	var out []*T
	if err := json.Unmarshal(b, &out); err != nil {
		log.Printf("decode cached %s: %v", key, err)
		return nil
	}
	return out
}

// subscribeAll attaches the push-driven refresh for every collection.
// Snapshots from the remote store are authoritative: they replace the local
// collection wholesale, superseding any in-flight optimistic state, and are
// written back to the cache.
func (e *Engine) subscribeAll() error {
	subs := []struct {
		collection string
		apply      func(remote.Snapshot)
	}{
		{models.ResourceCollection, func(s remote.Snapshot) {
			e.store.SetResources(decodeDocs[models.Resource](s))
		}},
		{models.TransactionCollection, func(s remote.Snapshot) {
			e.store.SetTransactions(decodeDocs[models.ResourceTransaction](s))
		}},
		{models.MultiTransactionCollection, func(s remote.Snapshot) {
			e.store.SetMultiTransactions(decodeDocs[models.MultiResourceTransaction](s))
		}},
		{models.BorrowerCollection, func(s remote.Snapshot) {
			e.store.SetBorrowers(decodeDocs[models.BorrowerProfile](s))
		}},
		{models.AgencyCollection, func(s remote.Snapshot) {
			e.store.SetAgencies(decodeDocs[models.Agency](s))
		}},
		{models.HistoryCollection, func(s remote.Snapshot) {
			e.store.SetHistory(decodeDocs[models.ResourceHistory](s))
		}},
	}
	for _, sub := range subs {
		collection, apply := sub.collection, sub.apply
		unsub, err := e.remote.Subscribe(collection, func(snap remote.Snapshot) {
			apply(snap)
			e.refreshCache(context.Background(), collection)
		})
		if err != nil {
			return err
		}
		e.unsubs = append(e.unsubs, unsub)
	}
	return nil
}

func decodeDocs[T any](snap remote.Snapshot) []*T {
	out := make([]*T, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			log.Printf("decode %s document %s: %v", snap.Collection, d.ID, err)
			continue
		}
		out = append(out, &v)
	}
	return out
}
