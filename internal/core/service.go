package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Service orchestrates the ID allocator, the user store, and the versioned
// rule sets. Rule validation always completes before any mutation.
type Service struct {
	store   *MemoryStore
	ids     *IDAllocator
	rules   *RuleBook
	logger  zerolog.Logger
	metrics MetricsRecorder
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the structured logger used for operation records.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger.With().Str("component", "users").Logger() }
}

// WithMetricsRecorder sets the recorder observing each operation.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithIDAllocator shares an existing allocator with the service.
func WithIDAllocator(ids *IDAllocator) Option {
	return func(s *Service) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// NewService constructs a service backed by the supplied store and rules.
func NewService(store *MemoryStore, rules *RuleBook, opts ...Option) *Service {
	if rules == nil {
		rules = NewDefaultRuleBook(DefaultRulesConfig())
	}
	s := &Service{
		store:   store,
		ids:     NewIDAllocator(),
		rules:   rules,
		logger:  zerolog.Nop(),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service with a fresh in-memory store.
func NewInMemoryService(rules *RuleBook, opts ...Option) *Service {
	return NewService(NewMemoryStore(), rules, opts...)
}

// Store returns the underlying user store.
func (s *Service) Store() *MemoryStore {
	return s.store
}

// Create validates in under version v, allocates an ID, and stores the user.
func (s *Service) Create(ctx context.Context, v Version, in Input) (created User, err error) {
	defer s.observe(ctx, v, "create_user", time.Now(), &err)
	rs, err := s.rules.Select(v)
	if err != nil {
		return User{}, err
	}
	user, err := rs.ValidateCreate(in)
	if err != nil {
		return User{}, err
	}
	user.ID = s.ids.Next()
	s.store.Put(user)
	return user, nil
}

// Read resolves rawID through the version's lookup and returns the user.
func (s *Service) Read(ctx context.Context, v Version, rawID string) (found User, err error) {
	defer s.observe(ctx, v, "read_user", time.Now(), &err)
	rs, err := s.rules.Select(v)
	if err != nil {
		return User{}, err
	}
	key, ok := rs.LookupKey(rawID)
	if !ok {
		return User{}, ErrNotFound{Entity: EntityUser, ID: rawID}
	}
	return s.store.Get(key)
}

// Update merges the fields present in in into the stored user. A missing
// user is reported before any validation failure.
func (s *Service) Update(ctx context.Context, v Version, rawID string, in Input) (updated User, err error) {
	defer s.observe(ctx, v, "update_user", time.Now(), &err)
	rs, err := s.rules.Select(v)
	if err != nil {
		return User{}, err
	}
	id, ok := ParseID(rawID)
	if !ok {
		return User{}, ErrNotFound{Entity: EntityUser, ID: rawID}
	}
	return s.store.Mutate(id, func(existing User) (User, error) {
		return rs.ValidateUpdate(existing, in)
	})
}

// Delete removes a user and returns the removed record. Behaviour does not
// depend on the API version.
func (s *Service) Delete(ctx context.Context, rawID string) (removed User, err error) {
	defer s.observe(ctx, "", "delete_user", time.Now(), &err)
	id, ok := ParseID(rawID)
	if !ok {
		return User{}, ErrNotFound{Entity: EntityUser, ID: rawID}
	}
	return s.store.Delete(id)
}

// List returns every stored user ordered by ID.
func (s *Service) List(ctx context.Context) []User {
	var err error
	defer s.observe(ctx, "", "list_users", time.Now(), &err)
	return s.store.List()
}

// Versions lists the API versions the service can serve.
func (s *Service) Versions() []Version {
	return s.rules.Versions()
}

func (s *Service) observe(ctx context.Context, v Version, op string, started time.Time, errp *error) {
	elapsed := time.Since(started)
	name := op
	if v != "" {
		name = string(v) + "." + op
	}
	var err error
	if errp != nil {
		err = *errp
	}
	s.metrics.Observe(ctx, name, err == nil, elapsed)

	var evt *zerolog.Event
	var verr ValidationError
	var nf ErrNotFound
	switch {
	case err == nil:
		evt = s.logger.Debug()
	case errors.As(err, &verr), errors.As(err, &nf):
		evt = s.logger.Info().Str("reason", err.Error())
	default:
		evt = s.logger.Error().Err(err)
	}
	evt.Str("operation", name).Dur("elapsed", elapsed).Bool("success", err == nil).Msg("user operation")
}
