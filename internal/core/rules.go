package core

import (
	"fmt"
	"sort"
	"strconv"
)

// UpdateAgePolicy selects how v2 validates an age supplied on update.
type UpdateAgePolicy string

const (
	// UpdateAgeNonNegative accepts any age >= 0, so updates may move a user
	// outside the creation bounds (and into the retired status).
	UpdateAgeNonNegative UpdateAgePolicy = "non_negative"
	// UpdateAgeBounded applies the same closed [18, 65] bound as creation.
	UpdateAgeBounded UpdateAgePolicy = "bounded"
)

// RulesConfig holds the tunable constants of the built-in rule sets.
type RulesConfig struct {
	// V1MinorThreshold is the age below which v1 classifies a user as minor.
	V1MinorThreshold float64
	// V1RequireAge rejects v1 creations without an age when true; otherwise
	// the age is stored as null.
	V1RequireAge bool
	// V2UpdateAge is the predicate applied to ages supplied on v2 update.
	V2UpdateAge UpdateAgePolicy
}

// DefaultRulesConfig returns the canonical rule constants.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		V1MinorThreshold: 18,
		V1RequireAge:     true,
		V2UpdateAge:      UpdateAgeNonNegative,
	}
}

// RuleBook maps API versions to their rule sets. It is populated at
// construction and read-only afterwards.
type RuleBook struct {
	sets map[Version]RuleSet
}

// NewRuleBook constructs an empty rule book.
func NewRuleBook() *RuleBook {
	return &RuleBook{sets: make(map[Version]RuleSet)}
}

// NewDefaultRuleBook builds a rule book with the v1 and v2 rule sets.
func NewDefaultRuleBook(cfg RulesConfig) *RuleBook {
	book := NewRuleBook()
	book.Register(NewLegacyRules(cfg.V1MinorThreshold, cfg.V1RequireAge))
	book.Register(NewStrictRules(cfg.V2UpdateAge))
	return book
}

// Register adds or replaces the rule set for its version.
func (b *RuleBook) Register(rs RuleSet) {
	b.sets[rs.Version()] = rs
}

// Select returns the rule set for v.
func (b *RuleBook) Select(v Version) (RuleSet, error) {
	rs, ok := b.sets[v]
	if !ok {
		return nil, fmt.Errorf("no rule set registered for version %q", v)
	}
	return rs, nil
}

// Versions lists the registered versions in ascending order.
func (b *RuleBook) Versions() []Version {
	out := make([]Version, 0, len(b.sets))
	for v := range b.sets {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseID converts a raw path identifier into a store key.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func copyAge(age *float64) *float64 {
	if age == nil {
		return nil
	}
	v := *age
	return &v
}
