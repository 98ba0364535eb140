package keys

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"usergate/internal/blob"
	"usergate/pkg/domain"
)

// DefaultObjectKey names the key record inside a blob store.
const DefaultObjectKey = "api-keys.json"

var _ domain.KeyRecordStore = (*BlobRecordStore)(nil)

// BlobRecordStore keeps the key record as a single JSON document in a blob
// store. Durability and atomic replacement come from the blob backend.
type BlobRecordStore struct {
	store blob.Store
	key   string
}

// NewBlobRecordStore stores the record under key (DefaultObjectKey when empty).
func NewBlobRecordStore(store blob.Store, key string) *BlobRecordStore {
	if key == "" {
		key = DefaultObjectKey
	}
	return &BlobRecordStore{store: store, key: key}
}

// Load decodes the stored document. A missing document is an empty record.
func (s *BlobRecordStore) Load(ctx context.Context) (domain.KeyRecord, error) {
	_, rc, err := s.store.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return domain.KeyRecord{}.Clone(), nil
	}
	if err != nil {
		return domain.KeyRecord{}, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.KeyRecord{}, fmt.Errorf("read %s: %w", s.key, err)
	}
	var rec domain.KeyRecord
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &rec); err != nil {
			return domain.KeyRecord{}, fmt.Errorf("decode %s: %w", s.key, err)
		}
	}
	return rec.Clone(), nil
}

// Save replaces the stored document.
func (s *BlobRecordStore) Save(ctx context.Context, rec domain.KeyRecord) error {
	data, err := json.MarshalIndent(rec.Clone(), "", "  ")
	if err != nil {
		return err
	}
	_, err = s.store.Put(ctx, s.key, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json"})
	return err
}

// Close is a no-op; blob stores hold no per-record resources.
func (s *BlobRecordStore) Close() error { return nil }
