package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usergate/internal/keys"
)

func issuance(email string) keys.Issuance {
	return keys.Issuance{ID: uuid.New(), Key: "SECRETKEY", Recipient: email, IssuedAt: time.Now().UTC()}
}

func TestLogNotifierOmitsKey(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))
	require.NoError(t, n.Notify(context.Background(), issuance("a@example.com")))
	assert.Contains(t, buf.String(), "a@example.com")
	assert.Contains(t, buf.String(), `"component":"notify"`)
	assert.NotContains(t, buf.String(), "SECRETKEY")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, issuance("b@example.com")), context.Canceled)
}

func TestNewSelectsDriver(t *testing.T) {
	n, err := New("", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)
	n, err = New(DriverNone, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)
	_, err = New("smtp", zerolog.Nop())
	assert.Error(t, err)
}

func TestDispatcherSyncDeliversAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter, err := NewResultsCounter(reg, "")
	require.NoError(t, err)

	var got []string
	fail := errors.New("mailbox unavailable")
	n := NotifierFunc(func(_ context.Context, iss keys.Issuance) error {
		got = append(got, iss.Recipient)
		if iss.Recipient == "bad@example.com" {
			return fail
		}
		return nil
	})
	var buf bytes.Buffer
	d := NewDispatcher(n, WithRunner(Sync{}), WithResultsCounter(counter), WithLogger(zerolog.New(&buf)))
	d.Dispatch(issuance("a@example.com"))
	d.Dispatch(issuance("bad@example.com"))

	assert.Equal(t, []string{"a@example.com", "bad@example.com"}, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("failure")))
	assert.Contains(t, buf.String(), "mailbox unavailable")
	require.NoError(t, d.Wait(context.Background()))

	_, err = NewResultsCounter(reg, "")
	assert.Error(t, err, "duplicate registration")
}

func TestDispatcherRecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(NotifierFunc(func(context.Context, keys.Issuance) error {
		panic("template missing")
	}), WithRunner(Sync{}), WithLogger(zerolog.New(&buf)))
	assert.NotPanics(t, func() { d.Dispatch(issuance("a@example.com")) })
	assert.Contains(t, buf.String(), "notification panicked")
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	var deadline atomic.Bool
	d := NewDispatcher(NotifierFunc(func(ctx context.Context, _ keys.Issuance) error {
		_, ok := ctx.Deadline()
		deadline.Store(ok)
		<-ctx.Done()
		return ctx.Err()
	}), WithRunner(Sync{}), WithTimeout(5*time.Millisecond))
	d.Dispatch(issuance("a@example.com"))
	assert.True(t, deadline.Load())
}

func TestDispatcherAsyncWait(t *testing.T) {
	release := make(chan struct{})
	var delivered atomic.Int32
	d := NewDispatcher(NotifierFunc(func(context.Context, keys.Issuance) error {
		<-release
		delivered.Add(1)
		return nil
	}))
	for i := 0; i < 5; i++ {
		d.Dispatch(issuance("a@example.com"))
	}

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(short), context.DeadlineExceeded)

	close(release)
	require.NoError(t, d.Wait(context.Background()))
	assert.EqualValues(t, 5, delivered.Load())
}

func TestIssuerHandsIssuancesToDispatcher(t *testing.T) {
	var mu sync.Mutex
	var recipients []string
	d := NewDispatcher(NotifierFunc(func(_ context.Context, iss keys.Issuance) error {
		mu.Lock()
		recipients = append(recipients, iss.Recipient)
		mu.Unlock()
		return nil
	}))
	store, err := keys.OpenRecordStore(context.Background(), keys.StorageConfig{Driver: keys.StorageMemory})
	require.NoError(t, err)
	pool := keys.NewPool(store)
	require.NoError(t, pool.Load(context.Background()))
	_, err = pool.EnsureCapacity(context.Background(), 2)
	require.NoError(t, err)

	issuer := keys.NewIssuer(pool, keys.WithDispatcher(d))
	_, err = issuer.Issue(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.NoError(t, d.Wait(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a@example.com"}, recipients)
}
