package domain

import "context"

// KeyRecord is the durable layout of the API key pool. Available and Used are
// disjoint; together they hold every key ever generated.
type KeyRecord struct {
	Available []string `json:"availableKeys"`
	Used      []string `json:"usedKeys"`
}

// Clone returns a copy that shares no backing arrays with r.
func (r KeyRecord) Clone() KeyRecord {
	return KeyRecord{
		Available: append([]string{}, r.Available...),
		Used:      append([]string{}, r.Used...),
	}
}

// KeyRecordStore is a minimal abstraction over durable key record backends.
// Save replaces the stored record wholesale; a partially written record must
// never become visible. Load returns an empty record when nothing is stored.
type KeyRecordStore interface {
	Load(ctx context.Context) (KeyRecord, error)
	Save(ctx context.Context, record KeyRecord) error
	Close() error
}

// Bucket names used by row-oriented record stores. They match the JSON field
// names of KeyRecord.
const (
	BucketAvailableKeys = "availableKeys"
	BucketUsedKeys      = "usedKeys"
)
