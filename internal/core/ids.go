package core

import "sync/atomic"

// IDAllocator hands out process-wide user identifiers. Values are strictly
// increasing and are never reused, even after the user is deleted.
type IDAllocator struct {
	counter atomic.Int64
}

// NewIDAllocator returns an allocator whose first ID is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next increments the counter and returns the new value.
func (a *IDAllocator) Next() int64 {
	return a.counter.Add(1)
}

// Current returns the most recently allocated ID, or 0 if none was issued.
func (a *IDAllocator) Current() int64 {
	return a.counter.Load()
}
