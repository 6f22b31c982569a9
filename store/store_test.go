package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief_resource_sync/models"
)

func TestAddResourceUpsertsByID(t *testing.T) {
	s := New()
	s.AddResource(&models.Resource{ID: "r1", Name: "Generator", TotalQuantity: 5, AvailableQuantity: 5})
	s.AddResource(&models.Resource{ID: "r1", Name: "Generator", TotalQuantity: 5, AvailableQuantity: 3})

	rs := s.Resources()
	require.Len(t, rs, 1)
	assert.Equal(t, 3, rs[0].AvailableQuantity)
}

func TestGettersReturnClones(t *testing.T) {
	s := New()
	s.AddResource(&models.Resource{ID: "r1", Name: "Pump", Tags: []string{"water"}})

	got, ok := s.Resource("r1")
	require.True(t, ok)
	got.Name = "mutated"
	got.Tags[0] = "mutated"

	again, ok := s.Resource("r1")
	require.True(t, ok)
	assert.Equal(t, "Pump", again.Name)
	assert.Equal(t, []string{"water"}, again.Tags)
}

func TestSetReplacesWholeCollection(t *testing.T) {
	s := New()
	s.AddTransaction(&models.ResourceTransaction{ID: "t1", ResourceID: "r1", Quantity: 2, Status: models.StatusActive})
	s.SetTransactions([]*models.ResourceTransaction{
		{ID: "t2", ResourceID: "r1", Quantity: 1, Status: models.StatusActive},
	})

	ts := s.Transactions()
	require.Len(t, ts, 1)
	assert.Equal(t, "t2", ts[0].ID)
}

func TestUpsertBorrowerKeyedByName(t *testing.T) {
	s := New()
	s.UpsertBorrower(&models.BorrowerProfile{ID: "b1", Name: "Ana", Department: "Logistics"})
	s.UpsertBorrower(&models.BorrowerProfile{ID: "b1", Name: "Ana", Department: "Medical"})

	bs := s.Borrowers()
	require.Len(t, bs, 1)
	assert.Equal(t, "Medical", bs[0].Department)

	_, ok := s.Borrower("nobody")
	assert.False(t, ok)
}

func TestAppendHistoryIsAdditive(t *testing.T) {
	s := New()
	s.AppendHistory(&models.ResourceHistory{ID: "h1", ResourceID: "r1", Action: models.HistoryCreated})
	s.AppendHistory(&models.ResourceHistory{ID: "h2", ResourceID: "r1", Action: models.HistoryBorrowed})

	hs := s.History()
	require.Len(t, hs, 2)
	assert.Equal(t, models.HistoryCreated, hs[0].Action)
	assert.Equal(t, models.HistoryBorrowed, hs[1].Action)
}

func TestDeleteResource(t *testing.T) {
	s := New()
	s.AddResource(&models.Resource{ID: "r1"})
	s.AddResource(&models.Resource{ID: "r2"})
	s.DeleteResource("r1")

	rs := s.Resources()
	require.Len(t, rs, 1)
	assert.Equal(t, "r2", rs[0].ID)
}

// Readers racing writers must always observe complete snapshots. Run with
// -race to make this meaningful.
func TestConcurrentReadersAndWriters(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.AddResource(&models.Resource{ID: "r1", AvailableQuantity: j})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if r, ok := s.Resource("r1"); ok && r.ID != "r1" {
					t.Error("torn read")
					return
				}
			}
		}()
	}
	wg.Wait()
}
