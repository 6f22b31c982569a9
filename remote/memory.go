package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryService is an in-process Service for tests and redis/postgres-free
// development. Snapshots are delivered asynchronously, like the hosted
// store's listeners.
type MemoryService struct {
	mu      sync.Mutex
	docs    map[string]map[string]json.RawMessage
	order   map[string][]string
	subs    map[string]map[int]func(Snapshot)
	nextSub int
}

func NewMemoryService() *MemoryService {
	return &MemoryService{
		docs:  make(map[string]map[string]json.RawMessage),
		order: make(map[string][]string),
		subs:  make(map[string]map[int]func(Snapshot)),
	}
}

func (s *MemoryService) Create(ctx context.Context, collection string, data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	id, raw, err := ensureID(raw)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]json.RawMessage)
	}
	if _, exists := s.docs[collection][id]; !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	s.docs[collection][id] = raw
	s.mu.Unlock()
	s.broadcast(collection)
	return id, nil
}

func (s *MemoryService) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	s.mu.Lock()
	raw, ok := s.docs[collection][id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("document %s/%s not found", collection, id)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.mu.Unlock()
		return err
	}
	for k, v := range partial {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.docs[collection][id] = merged
	s.mu.Unlock()
	s.broadcast(collection)
	return nil
}

func (s *MemoryService) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.docs[collection], id)
	ids := s.order[collection][:0]
	for _, existing := range s.order[collection] {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	s.order[collection] = ids
	s.mu.Unlock()
	s.broadcast(collection)
	return nil
}

func (s *MemoryService) Subscribe(collection string, onChange func(Snapshot)) (func(), error) {
	s.mu.Lock()
	s.nextSub++
	subID := s.nextSub
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[int]func(Snapshot))
	}
	s.subs[collection][subID] = onChange
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	go onChange(snap)

	return func() {
		s.mu.Lock()
		delete(s.subs[collection], subID)
		s.mu.Unlock()
	}, nil
}

func (s *MemoryService) snapshotLocked(collection string) Snapshot {
	snap := Snapshot{Collection: collection}
	for _, id := range s.order[collection] {
		raw := s.docs[collection][id]
		cp := make(json.RawMessage, len(raw))
		copy(cp, raw)
		snap.Docs = append(snap.Docs, Document{ID: id, Data: cp})
	}
	return snap
}

func (s *MemoryService) broadcast(collection string) {
	s.mu.Lock()
	snap := s.snapshotLocked(collection)
	fns := make([]func(Snapshot), 0, len(s.subs[collection]))
	for _, fn := range s.subs[collection] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		go fn(snap)
	}
}
