package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"relief_resource_sync/models"
)

// BorrowInput describes a single-resource borrow. PictureRef is an optional
// local file for the borrower's photo; its upload is best-effort and never
// fails the borrow.
type BorrowInput struct {
	ResourceID string
	Quantity   int
	Borrower   models.Borrower
	PictureRef string
	DueDate    *time.Time
	Notes      string
	ActorID    string
}

// Borrow lends a quantity of one resource. The transaction is persisted (or
// enqueued when offline) before any store mutation: a remote failure while
// online is fail-fast with zero side effects.
func (e *Engine) Borrow(ctx context.Context, in BorrowInput) (*models.ResourceTransaction, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: borrow quantity must be positive", ErrInsufficientQuantity)
	}
	res, ok := e.store.Resource(in.ResourceID)
	if !ok {
		return nil, fmt.Errorf("%w: resource %s", ErrEntityNotFound, in.ResourceID)
	}
	if res.AvailableQuantity < in.Quantity {
		return nil, fmt.Errorf("%w: resource %q has %d available, requested %d",
			ErrInsufficientQuantity, res.Name, res.AvailableQuantity, in.Quantity)
	}

	now := time.Now().UTC()
	txID := uuid.NewString()
	borrower := in.Borrower
	if in.PictureRef != "" {
		img, _ := e.images.Upload(ctx, in.PictureRef, txID)
		if img.URL != "" {
			borrower.Picture = img.URL
		}
	}

	tx := &models.ResourceTransaction{
		ID:         txID,
		ResourceID: in.ResourceID,
		Borrower:   borrower,
		Quantity:   in.Quantity,
		Status:     models.StatusActive,
		DueDate:    in.DueDate,
		CreatedAt:  now,
		Notes:      in.Notes,
	}
	if err := e.persistCreate(ctx, models.TransactionCollection, tx.ID, tx); err != nil {
		return nil, err
	}

	e.store.AddTransaction(tx)
	if _, err := e.updateResource(ctx, res.ID, map[string]any{
		"availableQuantity": res.AvailableQuantity - in.Quantity,
	}, in.ActorID); err != nil {
		// The transaction document is already persisted; the next
		// authoritative snapshot reconciles availability.
		return tx, err
	}

	if err := e.upsertBorrower(ctx, borrower, now); err != nil {
		log.Printf("upsert borrower %q after borrow: %v", borrower.Name, err)
	}
	details := fmt.Sprintf("%s borrowed %d of %q", borrower.Name, in.Quantity, res.Name)
	if err := e.appendHistory(ctx, res.ID, models.HistoryBorrowed, in.ActorID, details); err != nil {
		log.Printf("record borrowed history for %s: %v", res.ID, err)
	}
	e.refreshCache(ctx, models.TransactionCollection, models.ResourceCollection,
		models.BorrowerCollection, models.HistoryCollection)
	return tx, nil
}

// MultiBorrowItem is one resource line of a multi-resource borrow.
type MultiBorrowItem struct {
	ResourceID string
	Quantity   int
	DueDate    *time.Time
	Notes      string
}

// MultiBorrowInput describes one borrowing event spanning several resources
// for one borrower.
type MultiBorrowInput struct {
	Items      []MultiBorrowItem
	Borrower   models.Borrower
	PictureRef string
	ActorID    string
}

// BorrowMulti validates every item before touching anything: the first
// resource that cannot cover its quantity fails the whole request with no
// mutation. Availability decrements happen only after the transaction
// document is confirmed persisted (or confirmed enqueued).
func (e *Engine) BorrowMulti(ctx context.Context, in MultiBorrowInput) (*models.MultiResourceTransaction, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: multi-resource borrow needs at least one item", ErrEntityNotFound)
	}
	resources := make(map[string]*models.Resource, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: borrow quantity must be positive", ErrInsufficientQuantity)
		}
		res, ok := resources[it.ResourceID]
		if !ok {
			var found bool
			res, found = e.store.Resource(it.ResourceID)
			if !found {
				return nil, fmt.Errorf("%w: resource %s", ErrEntityNotFound, it.ResourceID)
			}
			resources[it.ResourceID] = res
		}
		if res.AvailableQuantity < it.Quantity {
			return nil, fmt.Errorf("%w: resource %q has %d available, requested %d",
				ErrInsufficientQuantity, res.Name, res.AvailableQuantity, it.Quantity)
		}
		// Two items on the same resource draw from the same pool.
		res.AvailableQuantity -= it.Quantity
	}

	now := time.Now().UTC()
	mtxID := uuid.NewString()
	borrower := in.Borrower
	if in.PictureRef != "" {
		img, _ := e.images.Upload(ctx, in.PictureRef, mtxID)
		if img.URL != "" {
			borrower.Picture = img.URL
		}
	}

	items := make([]models.TransactionItem, 0, len(in.Items))
	for i, it := range in.Items {
		items = append(items, models.TransactionItem{
			ID:         fmt.Sprintf("item-%d", i+1),
			ResourceID: it.ResourceID,
			Quantity:   it.Quantity,
			Status:     models.StatusActive,
			DueDate:    it.DueDate,
			Notes:      it.Notes,
		})
	}
	mtx := &models.MultiResourceTransaction{
		ID:        mtxID,
		Borrower:  borrower,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     items,
	}
	if err := e.persistCreate(ctx, models.MultiTransactionCollection, mtx.ID, mtx); err != nil {
		return nil, err
	}

	e.store.AddMultiTransaction(mtx)
	var firstErr error
	for id, res := range resources {
		if _, err := e.updateResource(ctx, id, map[string]any{
			"availableQuantity": res.AvailableQuantity,
		}, in.ActorID); err != nil {
			log.Printf("decrement availability for %s after multi-borrow: %v", id, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return mtx, firstErr
	}

	if err := e.upsertBorrower(ctx, borrower, now); err != nil {
		log.Printf("upsert borrower %q after multi-borrow: %v", borrower.Name, err)
	}
	for _, it := range items {
		res := resources[it.ResourceID]
		details := fmt.Sprintf("%s borrowed %d of %q", borrower.Name, it.Quantity, res.Name)
		if err := e.appendHistory(ctx, it.ResourceID, models.HistoryBorrowed, in.ActorID, details); err != nil {
			log.Printf("record borrowed history for %s: %v", it.ResourceID, err)
		}
	}
	e.refreshCache(ctx, models.MultiTransactionCollection, models.ResourceCollection,
		models.BorrowerCollection, models.HistoryCollection)
	return mtx, nil
}
