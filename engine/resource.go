package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"relief_resource_sync/models"
)

// ResourceInput carries the user-editable fields for creating a resource.
// ImageRefs are local file references uploaded best-effort.
type ResourceInput struct {
	Name          string
	Category      string
	Condition     string
	TotalQuantity int
	Location      string
	Tags          []string
	AgencyID      string
	ImageRefs     []string
}

func (e *Engine) CreateResource(ctx context.Context, in ResourceInput, actorID string) (*models.Resource, error) {
	if in.TotalQuantity < 0 {
		return nil, fmt.Errorf("%w: total quantity must not be negative", ErrInsufficientQuantity)
	}
	now := time.Now().UTC()
	res := &models.Resource{
		ID:                uuid.NewString(),
		Name:              in.Name,
		Category:          in.Category,
		Condition:         in.Condition,
		TotalQuantity:     in.TotalQuantity,
		AvailableQuantity: in.TotalQuantity,
		Location:          in.Location,
		Tags:              in.Tags,
		AgencyID:          in.AgencyID,
		CreatedBy:         actorID,
		UpdatedBy:         actorID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, ref := range in.ImageRefs {
		img, _ := e.images.Upload(ctx, ref, res.ID)
		if img.URL != "" {
			res.Images = append(res.Images, models.ImageRef{URL: img.URL, PublicID: img.PublicID})
		}
	}
	if err := e.persistCreate(ctx, models.ResourceCollection, res.ID, res); err != nil {
		return nil, err
	}
	e.store.AddResource(res)
	if err := e.appendHistory(ctx, res.ID, models.HistoryCreated, actorID, fmt.Sprintf("created %q with quantity %d", res.Name, res.TotalQuantity)); err != nil {
		log.Printf("record created history for %s: %v", res.ID, err)
	}
	e.refreshCache(ctx, models.ResourceCollection, models.HistoryCollection)
	return res, nil
}

// UpdateResource applies a partial edit and records an "updated" audit
// entry. Borrow and return availability changes go through updateResource
// directly so history is recorded once per lending event, not twice.
func (e *Engine) UpdateResource(ctx context.Context, id string, changes map[string]any, actorID string) (*models.Resource, error) {
	res, err := e.updateResource(ctx, id, changes, actorID)
	if err != nil {
		return nil, err
	}
	if err := e.appendHistory(ctx, id, models.HistoryUpdated, actorID, ""); err != nil {
		log.Printf("record updated history for %s: %v", id, err)
	}
	e.refreshCache(ctx, models.ResourceCollection, models.HistoryCollection)
	return res, nil
}

func (e *Engine) updateResource(ctx context.Context, id string, changes map[string]any, actorID string) (*models.Resource, error) {
	res, ok := e.store.Resource(id)
	if !ok {
		return nil, fmt.Errorf("%w: resource %s", ErrEntityNotFound, id)
	}
	changes["updatedBy"] = actorID
	changes["updatedAt"] = time.Now().UTC()
	updated, err := mergeResource(res, changes)
	if err != nil {
		return nil, err
	}
	if updated.AvailableQuantity < 0 || updated.AvailableQuantity > updated.TotalQuantity {
		return nil, fmt.Errorf("%w: available quantity %d out of range [0,%d]",
			ErrInsufficientQuantity, updated.AvailableQuantity, updated.TotalQuantity)
	}
	if err := e.persistUpdate(ctx, models.ResourceCollection, id, changes); err != nil {
		return nil, err
	}
	e.store.UpdateResource(updated)
	return updated, nil
}

// DeleteResource releases the resource's image assets (best-effort), removes
// the document remotely, and drops it from the projection.
func (e *Engine) DeleteResource(ctx context.Context, id, actorID string) error {
	res, ok := e.store.Resource(id)
	if !ok {
		return fmt.Errorf("%w: resource %s", ErrEntityNotFound, id)
	}
	if len(res.Images) > 0 {
		publicIDs := make([]string, 0, len(res.Images))
		for _, img := range res.Images {
			publicIDs = append(publicIDs, img.PublicID)
		}
		_ = e.images.DeleteMany(ctx, publicIDs)
	}
	if err := e.persistDelete(ctx, models.ResourceCollection, id); err != nil {
		return err
	}
	e.store.DeleteResource(id)
	if err := e.appendHistory(ctx, id, models.HistoryDeleted, actorID, fmt.Sprintf("deleted %q", res.Name)); err != nil {
		log.Printf("record deleted history for %s: %v", id, err)
	}
	e.refreshCache(ctx, models.ResourceCollection, models.HistoryCollection)
	return nil
}

// mergeResource applies a partial field map over a resource via a JSON
// round-trip, the same merge the remote store performs, so the local
// projection and the document cannot drift on an update.
func mergeResource(res *models.Resource, changes map[string]any) (*models.Resource, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range changes {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out models.Resource
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("invalid resource change: %v", err)
	}
	return &out, nil
}

// ---- agencies ----

type AgencyInput struct {
	Name     string
	Contact  string
	Location string
}

func (e *Engine) CreateAgency(ctx context.Context, in AgencyInput) (*models.Agency, error) {
	now := time.Now().UTC()
	a := &models.Agency{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Contact:   in.Contact,
		Location:  in.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.persistCreate(ctx, models.AgencyCollection, a.ID, a); err != nil {
		return nil, err
	}
	e.store.AddAgency(a)
	e.refreshCache(ctx, models.AgencyCollection)
	return a, nil
}

func (e *Engine) UpdateAgency(ctx context.Context, id string, in AgencyInput) (*models.Agency, error) {
	a, ok := e.store.Agency(id)
	if !ok {
		return nil, fmt.Errorf("%w: agency %s", ErrEntityNotFound, id)
	}
	if in.Name != "" {
		a.Name = in.Name
	}
	if in.Contact != "" {
		a.Contact = in.Contact
	}
	if in.Location != "" {
		a.Location = in.Location
	}
	a.UpdatedAt = time.Now().UTC()
	err := e.persistUpdate(ctx, models.AgencyCollection, id, map[string]any{
		"name": a.Name, "contact": a.Contact, "location": a.Location, "updatedAt": a.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	e.store.UpdateAgency(a)
	e.refreshCache(ctx, models.AgencyCollection)
	return a, nil
}

func (e *Engine) DeleteAgency(ctx context.Context, id string) error {
	if _, ok := e.store.Agency(id); !ok {
		return fmt.Errorf("%w: agency %s", ErrEntityNotFound, id)
	}
	if err := e.persistDelete(ctx, models.AgencyCollection, id); err != nil {
		return err
	}
	e.store.DeleteAgency(id)
	e.refreshCache(ctx, models.AgencyCollection)
	return nil
}
