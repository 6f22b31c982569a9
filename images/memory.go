package images

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore records uploads in a map; used in tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]string // publicID -> fileRef
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]string)}
}

func (s *MemoryStore) Upload(ctx context.Context, fileRef, targetID string) (Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	publicID := path.Join(targetID, uuid.NewString())
	s.objects[publicID] = fileRef
	return Image{URL: fmt.Sprintf("memory://%s", publicID), PublicID: publicID}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, publicID)
	return nil
}

func (s *MemoryStore) DeleteMany(ctx context.Context, publicIDs []string) error {
	for _, id := range publicIDs {
		_ = s.Delete(ctx, id)
	}
	return nil
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
