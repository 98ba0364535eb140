package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usergate/pkg/domain"
)

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemoryStore()
	s.Put(User{ID: 2, Name: "b", Age: domain.AgePtr(20), Status: StatusCandidate})
	s.Put(User{ID: 1, Name: "a", Status: StatusCandidate})

	got, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	*got.Age = 99
	again, err := s.Get(2)
	require.NoError(t, err)
	assert.InDelta(t, 20, *again.Age, 0, "returned values must be copies")

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)

	removed, err := s.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Name)

	_, err = s.Delete(1)
	var nf ErrNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, EntityUser, nf.Entity)
	assert.Equal(t, "1", nf.ID)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreMutateLeavesStateOnError(t *testing.T) {
	s := NewMemoryStore()
	s.Put(User{ID: 5, Name: "keep", Status: StatusCandidate})
	_, err := s.Mutate(5, func(u User) (User, error) {
		u.Name = "changed"
		return u, errors.New("boom")
	})
	require.Error(t, err)
	got, _ := s.Get(5)
	assert.Equal(t, "keep", got.Name)

	updated, err := s.Mutate(5, func(u User) (User, error) {
		u.ID = 99
		u.Name = "changed"
		return u, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.ID, "mutators cannot change ids")

	_, err = s.Mutate(6, func(u User) (User, error) { return u, nil })
	assert.True(t, errors.As(err, &ErrNotFound{}))
}

func TestMemoryStoreConcurrentMutations(t *testing.T) {
	s := NewMemoryStore()
	s.Put(User{ID: 1, Age: domain.AgePtr(0)})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Mutate(1, func(u User) (User, error) {
				*u.Age++
				return u, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	got, err := s.Get(1)
	require.NoError(t, err)
	assert.InDelta(t, 50, *got.Age, 0)
}

func TestIDAllocatorConcurrentUnique(t *testing.T) {
	ids := NewIDAllocator()
	const n = 200
	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ids.Next()
		}()
	}
	wg.Wait()
	close(results)
	seen := make(map[int64]bool, n)
	for id := range results {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, int64(n), ids.Current())
}
