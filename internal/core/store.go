package core

import (
	"sort"
	"strconv"
	"sync"
)

// MemoryStore is the in-memory user collection. It performs no validation;
// every value crossing its boundary is a copy.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]User
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]User)}
}

// Get retrieves a user by ID.
func (s *MemoryStore) Get(id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, notFound(id)
	}
	return u.Clone(), nil
}

// Put inserts or overwrites a user.
func (s *MemoryStore) Put(u User) {
	s.mu.Lock()
	s.users[u.ID] = u.Clone()
	s.mu.Unlock()
}

// Delete removes a user and returns the removed record.
func (s *MemoryStore) Delete(id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, notFound(id)
	}
	delete(s.users, id)
	return u, nil
}

// List returns all users ordered by ID.
func (s *MemoryStore) List() []User {
	s.mu.RLock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Mutate applies mutator to a copy of the user under the write lock and
// stores the result only when mutator succeeds. The ID cannot be changed.
func (s *MemoryStore) Mutate(id int64, mutator func(User) (User, error)) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[id]
	if !ok {
		return User{}, notFound(id)
	}
	updated, err := mutator(current.Clone())
	if err != nil {
		return User{}, err
	}
	updated.ID = id
	s.users[id] = updated.Clone()
	return updated, nil
}

func notFound(id int64) ErrNotFound {
	return ErrNotFound{Entity: EntityUser, ID: strconv.FormatInt(id, 10)}
}
