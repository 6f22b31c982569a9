package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"relief_resource_sync/models"
)

// ReturnInput describes one return event against a transaction or a
// multi-transaction item.
type ReturnInput struct {
	Quantity  int
	Condition string
	Notes     string
	ActorID   string
}

// Return processes a return against a single-resource transaction using the
// optimistic two-phase protocol: snapshot, apply locally, persist, and on
// any persistence failure restore both snapshots exactly.
//
// Returning less than the outstanding quantity keeps the transaction active
// with its quantity reduced; returning exactly the outstanding quantity
// completes it. A zero-quantity active transaction is unreachable.
func (e *Engine) Return(ctx context.Context, transactionID string, in ReturnInput) (*models.ResourceTransaction, error) {
	tx, ok := e.store.Transaction(transactionID)
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", ErrEntityNotFound, transactionID)
	}
	if tx.Status == models.StatusCompleted {
		return nil, fmt.Errorf("%w: transaction %s is already completed", ErrInvalidReturnQuantity, transactionID)
	}
	if in.Quantity <= 0 || in.Quantity > tx.Quantity {
		return nil, fmt.Errorf("%w: returning %d against outstanding %d", ErrInvalidReturnQuantity, in.Quantity, tx.Quantity)
	}
	res, ok := e.store.Resource(tx.ResourceID)
	if !ok {
		return nil, fmt.Errorf("%w: resource %s", ErrEntityNotFound, tx.ResourceID)
	}

	// Phase 1: snapshot for rollback.
	txSnap, resSnap := tx.Clone(), res.Clone()

	now := time.Now().UTC()
	updated := tx.Clone()
	if in.Quantity < tx.Quantity {
		updated.Quantity -= in.Quantity
		updated.Status = models.StatusActive
	} else {
		updated.Status = models.StatusCompleted
	}
	updated.ReturnedQuantity += in.Quantity
	updated.ReturnedCondition = in.Condition
	updated.ReturnedDate = &now
	if in.Notes != "" {
		updated.Notes = in.Notes
	}

	updatedRes := res.Clone()
	updatedRes.AvailableQuantity += in.Quantity
	updatedRes.UpdatedAt = now
	updatedRes.UpdatedBy = in.ActorID

	// Phase 2: optimistic apply.
	e.store.UpdateTransaction(updated)
	e.store.UpdateResource(updatedRes)
	rollback := func() {
		e.store.UpdateTransaction(txSnap)
		e.store.UpdateResource(resSnap)
	}

	// Phase 3: persist the transaction update.
	err := e.persistUpdate(ctx, models.TransactionCollection, tx.ID, map[string]any{
		"quantity":          updated.Quantity,
		"status":            updated.Status,
		"returnedQuantity":  updated.ReturnedQuantity,
		"returnedCondition": updated.ReturnedCondition,
		"returnedDate":      now,
		"notes":             updated.Notes,
	})
	if err != nil {
		rollback()
		return nil, err
	}

	// Phase 4: availability, borrower profile, and audit entry in parallel.
	details := fmt.Sprintf("%s returned %d of %q", tx.Borrower.Name, in.Quantity, res.Name)
	if err := e.persistReturnSideEffects(ctx, res.ID, updatedRes.AvailableQuantity, tx.Borrower, details, now, in.ActorID); err != nil {
		rollback()
		return nil, err
	}

	e.refreshCache(ctx, models.TransactionCollection, models.ResourceCollection,
		models.BorrowerCollection, models.HistoryCollection)
	return updated, nil
}

// ReturnMultiItem processes a return against one item of a multi-resource
// transaction. The parent status is recomputed after the item transition:
// completed iff every item is completed. Rollback restores the parent
// transaction and the affected resource.
func (e *Engine) ReturnMultiItem(ctx context.Context, transactionID, itemID string, in ReturnInput) (*models.MultiResourceTransaction, error) {
	mtx, ok := e.store.MultiTransaction(transactionID)
	if !ok {
		return nil, fmt.Errorf("%w: multi transaction %s", ErrEntityNotFound, transactionID)
	}
	idx := -1
	for i := range mtx.Items {
		if mtx.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: item %s in transaction %s", ErrEntityNotFound, itemID, transactionID)
	}
	item := mtx.Items[idx]
	if item.Status == models.StatusCompleted {
		return nil, fmt.Errorf("%w: item %s is already completed", ErrInvalidReturnQuantity, itemID)
	}
	if in.Quantity <= 0 || in.Quantity > item.Quantity {
		return nil, fmt.Errorf("%w: returning %d against outstanding %d", ErrInvalidReturnQuantity, in.Quantity, item.Quantity)
	}
	res, ok := e.store.Resource(item.ResourceID)
	if !ok {
		return nil, fmt.Errorf("%w: resource %s", ErrEntityNotFound, item.ResourceID)
	}

	mtxSnap, resSnap := mtx.Clone(), res.Clone()

	now := time.Now().UTC()
	updated := mtx.Clone()
	it := &updated.Items[idx]
	if in.Quantity < it.Quantity {
		it.Quantity -= in.Quantity
		it.Status = models.StatusActive
	} else {
		it.Status = models.StatusCompleted
	}
	it.ReturnedQuantity += in.Quantity
	it.ReturnedCondition = in.Condition
	it.ReturnedDate = &now
	if in.Notes != "" {
		it.Notes = in.Notes
	}
	if updated.AllItemsCompleted() {
		updated.Status = models.StatusCompleted
	}
	updated.UpdatedAt = now

	updatedRes := res.Clone()
	updatedRes.AvailableQuantity += in.Quantity
	updatedRes.UpdatedAt = now
	updatedRes.UpdatedBy = in.ActorID

	e.store.UpdateMultiTransaction(updated)
	e.store.UpdateResource(updatedRes)
	rollback := func() {
		e.store.UpdateMultiTransaction(mtxSnap)
		e.store.UpdateResource(resSnap)
	}

	err := e.persistUpdate(ctx, models.MultiTransactionCollection, mtx.ID, map[string]any{
		"items":     updated.Items,
		"status":    updated.Status,
		"updatedAt": now,
	})
	if err != nil {
		rollback()
		return nil, err
	}

	details := fmt.Sprintf("%s returned %d of %q", mtx.Borrower.Name, in.Quantity, res.Name)
	if err := e.persistReturnSideEffects(ctx, res.ID, updatedRes.AvailableQuantity, mtx.Borrower, details, now, in.ActorID); err != nil {
		rollback()
		return nil, err
	}

	e.refreshCache(ctx, models.MultiTransactionCollection, models.ResourceCollection,
		models.BorrowerCollection, models.HistoryCollection)
	return updated, nil
}

// persistReturnSideEffects runs the three follow-up writes of a return in
// parallel and reports the first failure. Borrower and history store
// mutations happen inside their helpers only after their own persist
// succeeds, so a failure here leaves only the optimistic transaction and
// resource state for the caller to roll back.
func (e *Engine) persistReturnSideEffects(ctx context.Context, resourceID string, available int, borrower models.Borrower, details string, now time.Time, actorID string) error {
	var wg sync.WaitGroup
	errCh := make(chan error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := e.persistUpdate(ctx, models.ResourceCollection, resourceID, map[string]any{
			"availableQuantity": available,
			"updatedAt":         now,
			"updatedBy":         actorID,
		}); err != nil {
			errCh <- err
		}
	}()
	go func() {
		defer wg.Done()
		if err := e.upsertBorrower(ctx, borrower, now); err != nil {
			errCh <- err
		}
	}()
	go func() {
		defer wg.Done()
		if err := e.appendHistory(ctx, resourceID, models.HistoryReturned, actorID, details); err != nil {
			errCh <- err
		}
	}()
	wg.Wait()
	close(errCh)

	var firstErr error
	for err := range errCh {
		if firstErr == nil {
			firstErr = err
			continue
		}
		log.Printf("additional return persist failure: %v", err)
	}
	return firstErr
}
