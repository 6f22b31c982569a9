// models/transaction.go
package models

import "time"

// Status of a transaction or transaction item.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Borrower is a denormalized identity snapshot taken at borrow time,
// not a live reference to a user record.
type Borrower struct {
	Name       string `json:"name"`
	Contact    string `json:"contact,omitempty"`
	Department string `json:"department,omitempty"`
	Picture    string `json:"picture,omitempty"`
}

// ResourceTransaction records one borrower holding some quantity of one
// resource. Quantity is the outstanding (not yet returned) amount while
// active. Retained as an audit record after completion, never deleted.
type ResourceTransaction struct {
	ID                string     `json:"id"`
	ResourceID        string     `json:"resourceId"`
	Borrower          Borrower   `json:"borrower"`
	Quantity          int        `json:"quantity"`
	Status            Status     `json:"status"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	ReturnedDate      *time.Time `json:"returnedDate,omitempty"`
	ReturnedQuantity  int        `json:"returnedQuantity,omitempty"`
	ReturnedCondition string     `json:"returnedCondition,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

func (t *ResourceTransaction) Clone() *ResourceTransaction {
	if t == nil {
		return nil
	}
	cp := *t
	if t.DueDate != nil {
		d := *t.DueDate
		cp.DueDate = &d
	}
	if t.ReturnedDate != nil {
		d := *t.ReturnedDate
		cp.ReturnedDate = &d
	}
	return &cp
}

// TransactionItem is one resource line inside a MultiResourceTransaction.
// Item IDs are scoped to the parent transaction.
type TransactionItem struct {
	ID                string     `json:"id"`
	ResourceID        string     `json:"resourceId"`
	Quantity          int        `json:"quantity"`
	Status            Status     `json:"status"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	ReturnedDate      *time.Time `json:"returnedDate,omitempty"`
	ReturnedQuantity  int        `json:"returnedQuantity,omitempty"`
	ReturnedCondition string     `json:"returnedCondition,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

func (i TransactionItem) clone() TransactionItem {
	cp := i
	if i.DueDate != nil {
		d := *i.DueDate
		cp.DueDate = &d
	}
	if i.ReturnedDate != nil {
		d := *i.ReturnedDate
		cp.ReturnedDate = &d
	}
	return cp
}

// MultiResourceTransaction is one borrowing event spanning multiple
// resources; each item transitions independently on its own return.
type MultiResourceTransaction struct {
	ID        string            `json:"id"`
	Borrower  Borrower          `json:"borrower"`
	Status    Status            `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Items     []TransactionItem `json:"items"`
}

func (m *MultiResourceTransaction) Clone() *MultiResourceTransaction {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Items = make([]TransactionItem, len(m.Items))
	for i, it := range m.Items {
		cp.Items[i] = it.clone()
	}
	return &cp
}

// AllItemsCompleted reports whether every item has been fully returned.
// The parent status is completed iff this holds.
func (m *MultiResourceTransaction) AllItemsCompleted() bool {
	for _, it := range m.Items {
		if it.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// BorrowerProfile is an upserted summary keyed by borrower name. Created on
// first borrow, updated on every later borrow or return, never deleted.
type BorrowerProfile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Contact        string    `json:"contact,omitempty"`
	Department     string    `json:"department,omitempty"`
	Picture        string    `json:"picture,omitempty"`
	LastBorrowDate time.Time `json:"lastBorrowDate"`
}

func (b *BorrowerProfile) Clone() *BorrowerProfile {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}
