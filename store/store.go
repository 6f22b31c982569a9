// Package store holds the in-memory projection of the remote inventory.
// All collections are owned exclusively by the Store and mutated only
// through its named actions; every action swaps in a rebuilt collection
// slice, so a concurrent reader never observes a half-applied change.
package store

import (
	"sync"

	"relief_resource_sync/models"
)

type Store struct {
	mu sync.RWMutex

	resources []*models.Resource
	txs       []*models.ResourceTransaction
	multiTxs  []*models.MultiResourceTransaction
	borrowers []*models.BorrowerProfile
	agencies  []*models.Agency
	history   []*models.ResourceHistory
}

func New() *Store { return &Store{} }

// ---- resources ----

func (s *Store) SetResources(rs []*models.Resource) {
	next := make([]*models.Resource, 0, len(rs))
	for _, r := range rs {
		next = append(next, r.Clone())
	}
	s.mu.Lock()
	s.resources = next
	s.mu.Unlock()
}

// AddResource inserts r, or replaces the existing entry with the same ID.
// Upsert semantics keep a locally confirmed write and the authoritative
// push snapshot for the same document from duplicating each other.
func (s *Store) AddResource(r *models.Resource) {
	s.mu.Lock()
	s.resources = upsert(s.resources, r.Clone(), func(x *models.Resource) string { return x.ID }, r.ID)
	s.mu.Unlock()
}

func (s *Store) UpdateResource(r *models.Resource) {
	s.AddResource(r)
}

func (s *Store) DeleteResource(id string) {
	s.mu.Lock()
	s.resources = remove(s.resources, func(x *models.Resource) string { return x.ID }, id)
	s.mu.Unlock()
}

func (s *Store) Resources() []*models.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, r.Clone())
	}
	return out
}

func (s *Store) Resource(id string) (*models.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.resources {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return nil, false
}

// ---- single-resource transactions ----

func (s *Store) SetTransactions(ts []*models.ResourceTransaction) {
	next := make([]*models.ResourceTransaction, 0, len(ts))
	for _, t := range ts {
		next = append(next, t.Clone())
	}
	s.mu.Lock()
	s.txs = next
	s.mu.Unlock()
}

func (s *Store) AddTransaction(t *models.ResourceTransaction) {
	s.mu.Lock()
	s.txs = upsert(s.txs, t.Clone(), func(x *models.ResourceTransaction) string { return x.ID }, t.ID)
	s.mu.Unlock()
}

func (s *Store) UpdateTransaction(t *models.ResourceTransaction) {
	s.AddTransaction(t)
}

func (s *Store) Transactions() []*models.ResourceTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ResourceTransaction, 0, len(s.txs))
	for _, t := range s.txs {
		out = append(out, t.Clone())
	}
	return out
}

func (s *Store) Transaction(id string) (*models.ResourceTransaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.txs {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return nil, false
}

// ---- multi-resource transactions ----

func (s *Store) SetMultiTransactions(ms []*models.MultiResourceTransaction) {
	next := make([]*models.MultiResourceTransaction, 0, len(ms))
	for _, m := range ms {
		next = append(next, m.Clone())
	}
	s.mu.Lock()
	s.multiTxs = next
	s.mu.Unlock()
}

func (s *Store) AddMultiTransaction(m *models.MultiResourceTransaction) {
	s.mu.Lock()
	s.multiTxs = upsert(s.multiTxs, m.Clone(), func(x *models.MultiResourceTransaction) string { return x.ID }, m.ID)
	s.mu.Unlock()
}

func (s *Store) UpdateMultiTransaction(m *models.MultiResourceTransaction) {
	s.AddMultiTransaction(m)
}

func (s *Store) MultiTransactions() []*models.MultiResourceTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.MultiResourceTransaction, 0, len(s.multiTxs))
	for _, m := range s.multiTxs {
		out = append(out, m.Clone())
	}
	return out
}

func (s *Store) MultiTransaction(id string) (*models.MultiResourceTransaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.multiTxs {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return nil, false
}

// ---- borrower profiles ----

func (s *Store) SetBorrowers(bs []*models.BorrowerProfile) {
	next := make([]*models.BorrowerProfile, 0, len(bs))
	for _, b := range bs {
		next = append(next, b.Clone())
	}
	s.mu.Lock()
	s.borrowers = next
	s.mu.Unlock()
}

// UpsertBorrower matches on profile name, the natural key for borrowers.
func (s *Store) UpsertBorrower(b *models.BorrowerProfile) {
	s.mu.Lock()
	s.borrowers = upsert(s.borrowers, b.Clone(), func(x *models.BorrowerProfile) string { return x.Name }, b.Name)
	s.mu.Unlock()
}

func (s *Store) Borrowers() []*models.BorrowerProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.BorrowerProfile, 0, len(s.borrowers))
	for _, b := range s.borrowers {
		out = append(out, b.Clone())
	}
	return out
}

func (s *Store) Borrower(name string) (*models.BorrowerProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.borrowers {
		if b.Name == name {
			return b.Clone(), true
		}
	}
	return nil, false
}

// ---- agencies ----

func (s *Store) SetAgencies(as []*models.Agency) {
	next := make([]*models.Agency, 0, len(as))
	for _, a := range as {
		next = append(next, a.Clone())
	}
	s.mu.Lock()
	s.agencies = next
	s.mu.Unlock()
}

func (s *Store) AddAgency(a *models.Agency) {
	s.mu.Lock()
	s.agencies = upsert(s.agencies, a.Clone(), func(x *models.Agency) string { return x.ID }, a.ID)
	s.mu.Unlock()
}

func (s *Store) UpdateAgency(a *models.Agency) {
	s.AddAgency(a)
}

func (s *Store) DeleteAgency(id string) {
	s.mu.Lock()
	s.agencies = remove(s.agencies, func(x *models.Agency) string { return x.ID }, id)
	s.mu.Unlock()
}

func (s *Store) Agencies() []*models.Agency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Agency, 0, len(s.agencies))
	for _, a := range s.agencies {
		out = append(out, a.Clone())
	}
	return out
}

func (s *Store) Agency(id string) (*models.Agency, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agencies {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return nil, false
}

// ---- history ----

func (s *Store) SetHistory(hs []*models.ResourceHistory) {
	next := make([]*models.ResourceHistory, 0, len(hs))
	for _, h := range hs {
		next = append(next, h.Clone())
	}
	s.mu.Lock()
	s.history = next
	s.mu.Unlock()
}

// AppendHistory is additive only; history entries are never mutated.
func (s *Store) AppendHistory(h *models.ResourceHistory) {
	s.mu.Lock()
	next := make([]*models.ResourceHistory, len(s.history), len(s.history)+1)
	copy(next, s.history)
	s.history = append(next, h.Clone())
	s.mu.Unlock()
}

func (s *Store) History() []*models.ResourceHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ResourceHistory, 0, len(s.history))
	for _, h := range s.history {
		out = append(out, h.Clone())
	}
	return out
}

// ---- helpers ----

// upsert rebuilds the slice with v replacing any element whose key matches,
// appending it otherwise. Callers hold the write lock.
func upsert[T any](in []*T, v *T, key func(*T) string, k string) []*T {
	out := make([]*T, 0, len(in)+1)
	replaced := false
	for _, e := range in {
		if key(e) == k {
			out = append(out, v)
			replaced = true
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, v)
	}
	return out
}

func remove[T any](in []*T, key func(*T) string, k string) []*T {
	out := make([]*T, 0, len(in))
	for _, e := range in {
		if key(e) == k {
			continue
		}
		out = append(out, e)
	}
	return out
}
