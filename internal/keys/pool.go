package keys

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"usergate/pkg/domain"
)

// Partition identifies which set of the pool a key belongs to.
type Partition int

const (
	// PartitionNone means the key is unknown to the pool.
	PartitionNone Partition = iota
	// PartitionAvailable holds generated keys that have not been issued.
	PartitionAvailable
	// PartitionUsed holds issued keys.
	PartitionUsed
)

func (p Partition) String() string {
	switch p {
	case PartitionAvailable:
		return "available"
	case PartitionUsed:
		return "used"
	default:
		return "none"
	}
}

// maxGenerateAttempts bounds collision retries for a single key.
const maxGenerateAttempts = 64

// Stats summarizes the pool partitions.
type Stats struct {
	Available int `json:"available"`
	Used      int `json:"used"`
}

// Total returns the number of keys ever generated.
func (s Stats) Total() int { return s.Available + s.Used }

// Pool owns the available and used key sets and their durable record.
type Pool struct {
	mu        sync.Mutex
	available []string
	used      []string
	members   map[string]Partition

	store  domain.KeyRecordStore
	length int
	random io.Reader
	logger zerolog.Logger
}

// PoolOption customizes a Pool.
type PoolOption func(*Pool)

// WithKeyLength sets the length of generated keys.
func WithKeyLength(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.length = n
		}
	}
}

// WithRandom replaces the randomness source used for key generation.
func WithRandom(r io.Reader) PoolOption {
	return func(p *Pool) {
		if r != nil {
			p.random = r
		}
	}
}

// WithPoolLogger sets the pool logger.
func WithPoolLogger(logger zerolog.Logger) PoolOption {
	return func(p *Pool) { p.logger = logger.With().Str("component", "keypool").Logger() }
}

// NewPool constructs an empty pool persisted through store. Call Load before use.
func NewPool(store domain.KeyRecordStore, opts ...PoolOption) *Pool {
	p := &Pool{
		members: make(map[string]Partition),
		store:   store,
		length:  DefaultKeyLength,
		random:  rand.Reader,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load replaces the in-memory sets with the durable record. A missing record
// yields an empty pool. Keys are case-normalized and de-duplicated; a key
// present in both partitions is treated as used.
func (p *Pool) Load(ctx context.Context) error {
	rec, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load key record: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available = p.available[:0]
	p.used = p.used[:0]
	p.members = make(map[string]Partition, len(rec.Available)+len(rec.Used))
	for _, k := range rec.Used {
		k = Normalize(k)
		if k == "" || p.members[k] != PartitionNone {
			continue
		}
		p.members[k] = PartitionUsed
		p.used = append(p.used, k)
	}
	conflicts := 0
	for _, k := range rec.Available {
		k = Normalize(k)
		if k == "" {
			continue
		}
		switch p.members[k] {
		case PartitionUsed:
			conflicts++
			continue
		case PartitionAvailable:
			continue
		}
		p.members[k] = PartitionAvailable
		p.available = append(p.available, k)
	}
	if conflicts > 0 {
		p.logger.Warn().Int("conflicts", conflicts).Msg("keys listed as both available and used were kept as used")
	}
	p.logger.Info().Int("available", len(p.available)).Int("used", len(p.used)).Msg("key pool loaded")
	return nil
}

// EnsureCapacity generates fresh keys until the available partition holds at
// least target keys, then persists the record. It returns how many keys were
// added; nothing is written when none were needed.
func (p *Pool) EnsureCapacity(ctx context.Context, target int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	added, err := p.fillLocked(target)
	if err != nil {
		return added, err
	}
	if added == 0 {
		return 0, nil
	}
	if err := p.persistLocked(ctx); err != nil {
		return added, err
	}
	p.logger.Info().Int("added", added).Int("available", len(p.available)).Msg("key pool replenished")
	return added, nil
}

func (p *Pool) fillLocked(target int) (int, error) {
	added := 0
	for len(p.available) < target {
		key, err := p.uniqueKeyLocked()
		if err != nil {
			return added, err
		}
		p.members[key] = PartitionAvailable
		p.available = append(p.available, key)
		added++
	}
	return added, nil
}

// uniqueKeyLocked draws candidates until one is absent from both partitions.
func (p *Pool) uniqueKeyLocked() (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		key, err := generateKey(p.random, p.length)
		if err != nil {
			return "", err
		}
		if p.members[key] == PartitionNone {
			return key, nil
		}
	}
	return "", fmt.Errorf("no unique key after %d attempts", maxGenerateAttempts)
}

// Persist atomically overwrites the durable record with the current sets.
func (p *Pool) Persist(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.persistLocked(ctx)
}

func (p *Pool) persistLocked(ctx context.Context) error {
	rec := domain.KeyRecord{Available: p.available, Used: p.used}
	if err := p.store.Save(ctx, rec.Clone()); err != nil {
		return PersistenceError{Err: err}
	}
	return nil
}

// Lookup reports which partition holds key. The key is normalized first.
func (p *Pool) Lookup(key string) Partition {
	key = Normalize(key)
	if key == "" {
		return PartitionNone
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.members[key]
}

// Stats returns the current partition sizes.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Available: len(p.available), Used: len(p.used)}
}

// Snapshot returns a copy of both partitions.
func (p *Pool) Snapshot() domain.KeyRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.KeyRecord{Available: p.available, Used: p.used}.Clone()
}

// take moves one key from available to used and persists the record. When
// refillTo is positive and the available partition falls below refillBelow,
// the pool is topped up to refillTo within the same critical section. The
// returned key is valid even when persistence fails; the failure is reported
// through the error, which is always a PersistenceError in that case.
func (p *Pool) take(ctx context.Context, refillBelow, refillTo int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.available)
	if n == 0 {
		return "", ErrOutOfKeys
	}
	key := p.available[n-1]
	p.available = p.available[:n-1]
	p.used = append(p.used, key)
	p.members[key] = PartitionUsed

	if refillBelow > 0 && len(p.available) < refillBelow {
		if added, err := p.fillLocked(refillTo); err != nil {
			p.logger.Error().Err(err).Int("added", added).Msg("replenish after issuance failed")
		}
	}
	if err := p.persistLocked(ctx); err != nil {
		return key, err
	}
	return key, nil
}

// Close releases the durable record store.
func (p *Pool) Close() error {
	return p.store.Close()
}
