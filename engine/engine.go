// Package engine coordinates lending transactions between the in-memory
// store, the authoritative remote inventory service, the durable write
// queue, and the snapshot cache. Mutations are applied optimistically and
// rolled back to their pre-mutation snapshots when remote persistence fails;
// while offline they are enqueued and replayed in order once connectivity
// returns. Push-driven subscription snapshots are authoritative and replace
// local collections wholesale.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"relief_resource_sync/cache"
	"relief_resource_sync/images"
	"relief_resource_sync/models"
	"relief_resource_sync/netmon"
	"relief_resource_sync/queue"
	"relief_resource_sync/remote"
	"relief_resource_sync/store"
)

type Engine struct {
	store  *store.Store
	remote remote.Service
	cache  cache.Store
	queue  *queue.Queue
	net    *netmon.Monitor
	images images.Store

	unsubs    []func()
	cancelNet func()
}

// New wires the coordinator. The image store is wrapped best-effort here so
// no image failure can ever surface from a lending operation.
func New(st *store.Store, rm remote.Service, ca cache.Store, q *queue.Queue, net *netmon.Monitor, img images.Store) *Engine {
	return &Engine{
		store:  st,
		remote: rm,
		cache:  ca,
		queue:  q,
		net:    net,
		images: images.NewBestEffort(img),
	}
}

// Store exposes the projection for read-only consumers.
func (e *Engine) Store() *store.Store { return e.store }

// Queue exposes the write queue for inspection.
func (e *Engine) Queue() *queue.Queue { return e.queue }

// Start restores queued writes and cached snapshots, attaches the live
// subscriptions, and hooks queue drain to connectivity transitions.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.queue.Load(ctx); err != nil {
		log.Printf("restore write queue: %v", err)
	}
	e.loadFromCache(ctx)
	if err := e.subscribeAll(); err != nil {
		return err
	}
	e.cancelNet = e.net.Notify(func(online bool) {
		if online {
			go e.DrainQueue(context.Background())
		}
	})
	if e.net.IsOnline() && e.queue.Len() > 0 {
		go e.DrainQueue(context.Background())
	}
	return nil
}

// Close detaches subscriptions and the connectivity hook.
func (e *Engine) Close() {
	if e.cancelNet != nil {
		e.cancelNet()
	}
	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil
}

// DrainQueue replays queued mutations in submission order; failures keep
// their op queued for the next drain and do not block later ops.
func (e *Engine) DrainQueue(ctx context.Context) (replayed, failed int) {
	replayed, failed = e.queue.Drain(ctx, func(ctx context.Context, op queue.PendingOp) error {
		switch op.Op {
		case queue.OpCreate:
			_, err := e.remote.Create(ctx, op.Collection, json.RawMessage(op.Payload))
			return err
		case queue.OpUpdate:
			var partial map[string]any
			if err := json.Unmarshal(op.Payload, &partial); err != nil {
				return err
			}
			return e.remote.Update(ctx, op.Collection, op.TargetID, partial)
		case queue.OpDelete:
			return e.remote.Delete(ctx, op.Collection, op.TargetID)
		default:
			return fmt.Errorf("unknown queued op %q", op.Op)
		}
	})
	if replayed > 0 || failed > 0 {
		log.Printf("write queue drain: %d replayed, %d failed", replayed, failed)
	}
	return replayed, failed
}

// ---- persistence dispatch ----

// persistCreate writes doc remotely, or enqueues it when offline. The
// document carries its client-generated id, so an eventual replay (or a
// retry whose confirmation was lost) upserts instead of duplicating.
func (e *Engine) persistCreate(ctx context.Context, collection, id string, doc any) error {
	if !e.net.IsOnline() {
		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("%w: encode %s/%s: %v", ErrPersistenceFailure, collection, id, err)
		}
		return e.enqueue(ctx, queue.OpCreate, collection, id, payload)
	}
	if _, err := e.remote.Create(ctx, collection, doc); err != nil {
		return fmt.Errorf("%w: create %s/%s: %v", ErrPersistenceFailure, collection, id, err)
	}
	return nil
}

func (e *Engine) persistUpdate(ctx context.Context, collection, id string, partial map[string]any) error {
	if !e.net.IsOnline() {
		payload, err := json.Marshal(partial)
		if err != nil {
			return fmt.Errorf("%w: encode %s/%s: %v", ErrPersistenceFailure, collection, id, err)
		}
		return e.enqueue(ctx, queue.OpUpdate, collection, id, payload)
	}
	if err := e.remote.Update(ctx, collection, id, partial); err != nil {
		return fmt.Errorf("%w: update %s/%s: %v", ErrPersistenceFailure, collection, id, err)
	}
	return nil
}

func (e *Engine) persistDelete(ctx context.Context, collection, id string) error {
	if !e.net.IsOnline() {
		return e.enqueue(ctx, queue.OpDelete, collection, id, nil)
	}
	if err := e.remote.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("%w: delete %s/%s: %v", ErrPersistenceFailure, collection, id, err)
	}
	return nil
}

func (e *Engine) enqueue(ctx context.Context, op queue.Op, collection, id string, payload json.RawMessage) error {
	err := e.queue.Enqueue(ctx, queue.PendingOp{
		ID:         uuid.NewString(),
		Op:         op,
		Collection: collection,
		TargetID:   id,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: enqueue %s %s/%s: %v", ErrPersistenceFailure, op, collection, id, err)
	}
	return nil
}

// ---- shared mutation helpers ----

// upsertBorrower persists then applies the borrower profile keyed by name.
// Profiles are created on first borrow and refreshed on every later borrow
// or return; they are never deleted.
func (e *Engine) upsertBorrower(ctx context.Context, b models.Borrower, when time.Time) error {
	profile, exists := e.store.Borrower(b.Name)
	if !exists {
		profile = &models.BorrowerProfile{ID: uuid.NewString(), Name: b.Name}
	}
	if b.Contact != "" {
		profile.Contact = b.Contact
	}
	if b.Department != "" {
		profile.Department = b.Department
	}
	if b.Picture != "" {
		profile.Picture = b.Picture
	}
	profile.LastBorrowDate = when

	var err error
	if exists {
		err = e.persistUpdate(ctx, models.BorrowerCollection, profile.ID, map[string]any{
			"contact":        profile.Contact,
			"department":     profile.Department,
			"picture":        profile.Picture,
			"lastBorrowDate": profile.LastBorrowDate,
		})
	} else {
		err = e.persistCreate(ctx, models.BorrowerCollection, profile.ID, profile)
	}
	if err != nil {
		return err
	}
	e.store.UpsertBorrower(profile)
	return nil
}

// appendHistory persists then applies one audit entry. History is additive
// only and never rolled back.
func (e *Engine) appendHistory(ctx context.Context, resourceID, action, userID, details string) error {
	entry := &models.ResourceHistory{
		ID:         uuid.NewString(),
		ResourceID: resourceID,
		Action:     action,
		UserID:     userID,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}
	if err := e.persistCreate(ctx, models.HistoryCollection, entry.ID, entry); err != nil {
		return err
	}
	e.store.AppendHistory(entry)
	return nil
}

// refreshCache rewrites the cached snapshot for each named collection from
// the current store state. The cache is derived data: failures are logged,
// never propagated.
func (e *Engine) refreshCache(ctx context.Context, collections ...string) {
	for _, c := range collections {
		var v any
		switch c {
		case models.ResourceCollection:
			v = e.store.Resources()
		case models.TransactionCollection:
			v = e.store.Transactions()
		case models.MultiTransactionCollection:
			v = e.store.MultiTransactions()
		case models.BorrowerCollection:
			v = e.store.Borrowers()
		case models.AgencyCollection:
			v = e.store.Agencies()
		case models.HistoryCollection:
			v = e.store.History()
		default:
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			log.Printf("encode cache snapshot %s: %v", c, err)
			continue
		}
		if err := e.cache.Set(ctx, c, b); err != nil {
			log.Printf("refresh cache %s: %v", c, err)
		}
	}
}
