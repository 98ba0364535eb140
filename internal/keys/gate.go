package keys

import "fmt"

// AuthMode selects which partitions the gate accepts.
type AuthMode string

const (
	// AuthAny accepts keys from either partition, including keys that were
	// never issued. This matches the historical behaviour of the service.
	AuthAny AuthMode = "any"
	// AuthIssued accepts only keys that have been issued.
	AuthIssued AuthMode = "issued"
)

// ParseAuthMode validates a configured mode; empty means AuthAny.
func ParseAuthMode(raw string) (AuthMode, error) {
	switch AuthMode(raw) {
	case "", AuthAny:
		return AuthAny, nil
	case AuthIssued:
		return AuthIssued, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", raw)
	}
}

// Gate checks presented credentials against the pool.
type Gate struct {
	pool *Pool
	mode AuthMode
}

// NewGate constructs a gate over pool.
func NewGate(pool *Pool, mode AuthMode) *Gate {
	if mode == "" {
		mode = AuthAny
	}
	return &Gate{pool: pool, mode: mode}
}

// Mode returns the configured acceptance mode.
func (g *Gate) Mode() AuthMode { return g.mode }

// Authorize reports whether presented is an acceptable key. Values outside
// the key alphabet are rejected without consulting the pool.
func (g *Gate) Authorize(presented string) bool {
	key := Normalize(presented)
	if !wellFormed(key, 0) {
		return false
	}
	switch g.pool.Lookup(key) {
	case PartitionUsed:
		return true
	case PartitionAvailable:
		return g.mode == AuthAny
	default:
		return false
	}
}
