package keys

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Issuance describes one key handed to a recipient.
type Issuance struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"apiKey"`
	Recipient string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
}

// Dispatcher schedules delivery of an issued key. Dispatch must not block on
// the delivery itself.
type Dispatcher interface {
	Dispatch(Issuance)
}

type discardDispatcher struct{}

func (discardDispatcher) Dispatch(Issuance) {}

// Issuer pops keys from a Pool on request and announces each issuance.
type Issuer struct {
	pool        *Pool
	dispatcher  Dispatcher
	logger      zerolog.Logger
	refillBelow int
	refillTo    int
	now         func() time.Time
}

// IssuerOption customizes an Issuer.
type IssuerOption func(*Issuer)

// WithDispatcher sets where issuances are announced.
func WithDispatcher(d Dispatcher) IssuerOption {
	return func(i *Issuer) {
		if d != nil {
			i.dispatcher = d
		}
	}
}

// WithIssuerLogger sets the issuer logger.
func WithIssuerLogger(logger zerolog.Logger) IssuerOption {
	return func(i *Issuer) { i.logger = logger.With().Str("component", "keyissuer").Logger() }
}

// WithReplenish tops the pool up to target whenever an issuance leaves fewer
// than below keys available. A non-positive below disables replenishment.
func WithReplenish(below, target int) IssuerOption {
	return func(i *Issuer) {
		i.refillBelow = below
		i.refillTo = target
	}
}

// WithClock overrides the issuance timestamp source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer constructs an issuer over pool.
func NewIssuer(pool *Pool, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		pool:       pool,
		dispatcher: discardDispatcher{},
		logger:     zerolog.Nop(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue hands one available key to recipient. It fails with
// ErrMissingRecipient for a blank recipient and ErrOutOfKeys when the pool is
// empty; neither failure mutates the pool. A persistence failure is logged and
// does not fail the issuance.
func (i *Issuer) Issue(ctx context.Context, recipient string) (Issuance, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return Issuance{}, ErrMissingRecipient
	}
	key, err := i.pool.take(ctx, i.refillBelow, i.refillTo)
	if err != nil {
		var perr PersistenceError
		if !errors.As(err, &perr) {
			i.logger.Warn().Err(err).Str("email", recipient).Msg("issuance refused")
			return Issuance{}, err
		}
		i.logger.Error().Err(err).Str("email", recipient).Msg("issued key was not persisted")
	}
	iss := Issuance{
		ID:        uuid.New(),
		Key:       key,
		Recipient: recipient,
		IssuedAt:  i.now(),
	}
	i.logger.Info().Str("issuance", iss.ID.String()).Str("email", recipient).Msg("api key issued")
	i.dispatcher.Dispatch(iss)
	return iss, nil
}
