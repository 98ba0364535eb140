package keys

import (
	"context"
	"errors"
	"sync"

	"usergate/pkg/domain"
)

// recordingStore is an in-memory KeyRecordStore counting writes.
type recordingStore struct {
	mu      sync.Mutex
	rec     domain.KeyRecord
	saves   int
	saveErr error
	loadErr error
}

func (s *recordingStore) Load(context.Context) (domain.KeyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.KeyRecord{}, s.loadErr
	}
	return s.rec.Clone(), nil
}

func (s *recordingStore) Save(_ context.Context, rec domain.KeyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.rec = rec.Clone()
	return nil
}

func (s *recordingStore) Close() error { return nil }

func (s *recordingStore) snapshot() (domain.KeyRecord, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone(), s.saves
}

var errDiskFull = errors.New("disk full")

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// collectingDispatcher records every issuance it is handed.
type collectingDispatcher struct {
	mu   sync.Mutex
	seen []Issuance
}

func (d *collectingDispatcher) Dispatch(iss Issuance) {
	d.mu.Lock()
	d.seen = append(d.seen, iss)
	d.mu.Unlock()
}

func (d *collectingDispatcher) issued() []Issuance {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Issuance(nil), d.seen...)
}
