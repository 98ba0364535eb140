package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"usergate/internal/keys"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

var _ keys.Dispatcher = (*Dispatcher)(nil)

// Dispatcher runs deliveries on a Runner and tracks them until they finish.
type Dispatcher struct {
	notifier Notifier
	runner   Runner
	timeout  time.Duration
	logger   zerolog.Logger
	results  *prometheus.CounterVec
	wg       sync.WaitGroup
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithRunner replaces the Async runner.
func WithRunner(r Runner) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.runner = r
		}
	}
}

// WithTimeout sets the per-delivery timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger.With().Str("component", "dispatcher").Logger() }
}

// WithResultsCounter counts deliveries by result label (success, failure, panic).
func WithResultsCounter(c *prometheus.CounterVec) Option {
	return func(d *Dispatcher) { d.results = c }
}

// NewResultsCounter builds and registers the delivery counter.
func NewResultsCounter(reg prometheus.Registerer, namespace string) (*prometheus.CounterVec, error) {
	if namespace == "" {
		namespace = "usergate"
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notify",
		Name:      "deliveries_total",
		Help:      "Issuance notifications by result.",
	}, []string{"result"})
	if reg != nil {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register notify metrics: %w", err)
		}
	}
	return c, nil
}

// NewDispatcher constructs a dispatcher delivering through notifier.
func NewDispatcher(notifier Notifier, opts ...Option) *Dispatcher {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	d := &Dispatcher{
		notifier: notifier,
		runner:   Async{},
		timeout:  DefaultTimeout,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch schedules delivery of iss and returns without waiting for it
// unless the runner is synchronous.
func (d *Dispatcher) Dispatch(iss keys.Issuance) {
	d.wg.Add(1)
	d.runner.Do(func() {
		defer d.wg.Done()
		d.deliver(iss)
	})
}

func (d *Dispatcher) deliver(iss keys.Issuance) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.count("panic")
			d.logger.Error().Str("issuance", iss.ID.String()).Interface("panic", r).Msg("notification panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.notifier.Notify(ctx, iss); err != nil {
		d.count("failure")
		d.logger.Error().Err(err).Str("issuance", iss.ID.String()).Str("email", iss.Recipient).
			Dur("elapsed", time.Since(started)).Msg("notification failed")
		return
	}
	d.count("success")
	d.logger.Debug().Str("issuance", iss.ID.String()).Dur("elapsed", time.Since(started)).Msg("notification sent")
}

func (d *Dispatcher) count(result string) {
	if d.results != nil {
		d.results.WithLabelValues(result).Inc()
	}
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
