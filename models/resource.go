// models/resource.go
package models

import "time"

// Collection names in the remote document store.
const (
	ResourceCollection         = "resources"
	TransactionCollection      = "transactions"
	MultiTransactionCollection = "multiTransactions"
	BorrowerCollection         = "borrowers"
	AgencyCollection           = "agencies"
	HistoryCollection          = "history"
)

// ImageRef points at an uploaded asset: the serving URL plus the key needed
// to delete it again.
type ImageRef struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Resource is a quantity-tracked lendable inventory item.
// AvailableQuantity stays within [0, TotalQuantity]; the difference equals
// the sum of quantities across active transactions referencing it.
type Resource struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Category          string     `json:"category"`
	Condition         string     `json:"condition"`
	TotalQuantity     int        `json:"totalQuantity"`
	AvailableQuantity int        `json:"availableQuantity"`
	Location          string     `json:"location,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	Images            []ImageRef `json:"images,omitempty"`
	AgencyID          string     `json:"agencyId,omitempty"`
	CreatedBy         string     `json:"createdBy,omitempty"`
	UpdatedBy         string     `json:"updatedBy,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy so store snapshots never alias caller memory.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Tags != nil {
		cp.Tags = append([]string(nil), r.Tags...)
	}
	if r.Images != nil {
		cp.Images = append([]ImageRef(nil), r.Images...)
	}
	return &cp
}

// Agency is the organizational owner of resources.
type Agency struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Agency) Clone() *Agency {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// History actions.
const (
	HistoryCreated  = "created"
	HistoryUpdated  = "updated"
	HistoryBorrowed = "borrowed"
	HistoryReturned = "returned"
	HistoryDeleted  = "deleted"
)

// ResourceHistory is an append-only audit entry. Never mutated or deleted.
type ResourceHistory struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	Action     string    `json:"action"`
	UserID     string    `json:"userId,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func (h *ResourceHistory) Clone() *ResourceHistory {
	if h == nil {
		return nil
	}
	cp := *h
	return &cp
}
