// Package notify delivers API key issuances to their recipients.
//
// Delivery happens off the request path: the issuer hands each issuance to a
// Dispatcher, which runs the configured Notifier with a timeout and logs the
// outcome. A failed delivery never affects the issuance itself.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"usergate/internal/keys"
)

// Driver names a Notifier implementation.
type Driver string

const (
	// DriverLog records each delivery as a structured log entry.
	DriverLog Driver = "log"
	// DriverNone discards deliveries.
	DriverNone Driver = "none"
)

// Notifier delivers one issuance.
type Notifier interface {
	Notify(ctx context.Context, iss keys.Issuance) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, iss keys.Issuance) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, iss keys.Issuance) error { return f(ctx, iss) }

// LogNotifier writes the delivery to the log instead of a mail transport.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier returns a notifier logging through logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

// Notify logs the recipient and issuance id. The key itself is not logged.
func (n *LogNotifier) Notify(ctx context.Context, iss keys.Issuance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Info().
		Str("issuance", iss.ID.String()).
		Str("email", iss.Recipient).
		Time("issued_at", iss.IssuedAt).
		Msg("api key delivered")
	return nil
}

// NopNotifier discards every delivery.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, keys.Issuance) error { return nil }

// New returns the Notifier for driver. An empty driver selects DriverLog.
func New(driver Driver, logger zerolog.Logger) (Notifier, error) {
	switch driver {
	case "", DriverLog:
		return NewLogNotifier(logger), nil
	case DriverNone:
		return NopNotifier{}, nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", driver)
	}
}
