package connection

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pantryshelf/products-service/internal/core/docdb"
	domainerrors "github.com/pantryshelf/products-service/internal/domain/errors"
	"github.com/pantryshelf/products-service/internal/mocks"
	"github.com/pantryshelf/products-service/internal/pkg/retry"
	"github.com/pantryshelf/products-service/internal/testutils"
)

func newTestManager(t *testing.T, dial docdb.Dialer, policy retry.Policy) (*Manager, *testutils.LogBuffer) {
	t.Helper()

	logger, out := testutils.NewTestLogger()

	m, err := NewManager(&Config{
		Dialer: dial,
		Policy: policy,
		Logger: &logger,
	})
	require.NoError(t, err)
	return m, out
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(nil)
	assert.Error(t, err)

	_, err = NewManager(&Config{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dialer is required")
}

func TestEnsureConnected_FirstAttemptSucceeds(t *testing.T) {
	client := mocks.NewMockDocDBClient()
	dialer := &mocks.MockDialer{}
	dialer.On("Dial", mock.Anything).Return(client, nil).Once()

	m, logs := newTestManager(t, dialer.Dial, retry.Policy{MaxRetries: 3, Delay: time.Millisecond})

	require.NoError(t, m.EnsureConnected(context.Background()))
	assert.True(t, m.IsConnected())

	got, err := m.Client()
	require.NoError(t, err)
	assert.Same(t, client, got)
	assert.Equal(t, 1, strings.Count(logs.String(), "connected to document database"))

	dialer.AssertExpectations(t)
}

func TestEnsureConnected_IdempotentWhenConnected(t *testing.T) {
	client := mocks.NewMockDocDBClient()
	dialer := &mocks.MockDialer{}
	dialer.On("Dial", mock.Anything).Return(client, nil).Once()

	m, _ := newTestManager(t, dialer.Dial, retry.DefaultPolicy())
	require.NoError(t, m.EnsureConnected(context.Background()))

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, m.EnsureConnectedWith(context.Background(), 3, time.Second))
	}

	assert.Less(t, time.Since(start), 100*time.Millisecond)
	dialer.AssertNumberOfCalls(t, "Dial", 1)
	client.AssertNotCalled(t, "Ping", mock.Anything)
}

func TestEnsureConnected_ExhaustsAfterMaxRetriesPlusOne(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		dialer := &mocks.MockDialer{}
		cause := errors.New("connection refused")
		dialer.On("Dial", mock.Anything).Return(nil, cause)

		m, _ := newTestManager(t, dialer.Dial, retry.DefaultPolicy())

		err := m.EnsureConnectedWith(context.Background(), n, time.Millisecond)

		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrExhaustedRetries)
		assert.ErrorIs(t, err, cause)

		var connErr *domainerrors.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, n+1, connErr.Attempts)
		assert.False(t, m.IsConnected())

		dialer.AssertNumberOfCalls(t, "Dial", n+1)
	}
}

func TestEnsureConnected_RetryDelayIsFixed(t *testing.T) {
	const n = 3
	delay := 15 * time.Millisecond

	dialer := &mocks.MockDialer{}
	dialer.On("Dial", mock.Anything).Return(nil, errors.New("down"))

	m, _ := newTestManager(t, dialer.Dial, retry.DefaultPolicy())

	start := time.Now()
	err := m.EnsureConnectedWith(context.Background(), n, delay)

	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), n*delay)
}

func TestEnsureConnected_SucceedsOnRetry(t *testing.T) {
	client := mocks.NewMockDocDBClient()
	dialer := &mocks.MockDialer{}
	dialer.On("Dial", mock.Anything).Return(nil, errors.New("not yet")).Once()
	dialer.On("Dial", mock.Anything).Return(client, nil).Once()

	m, logs := newTestManager(t, dialer.Dial, retry.Policy{MaxRetries: 3, Delay: time.Millisecond})

	require.NoError(t, m.EnsureConnected(context.Background()))
	assert.True(t, m.IsConnected())
	assert.Contains(t, logs.String(), "retrying connect")
	assert.Contains(t, logs.String(), `"attempts_left":3`)

	dialer.AssertExpectations(t)
}

func TestEnsureConnected_ConcurrentFirstCallersDialOnce(t *testing.T) {
	var dials int32
	release := make(chan struct{})
	client := mocks.NewMockDocDBClient()

	dial := func(ctx context.Context) (docdb.Client, error) {
		atomic.AddInt32(&dials, 1)
		<-release
		return client, nil
	}

	m, logs := newTestManager(t, dial, retry.Policy{MaxRetries: 3, Delay: time.Millisecond})

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.EnsureConnected(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
	assert.Equal(t, 1, strings.Count(logs.String(), "connected to document database"))
}

func TestEnsureConnected_JoinedCallerSharesInFlightPolicy(t *testing.T) {
	var dials int32
	started := make(chan struct{})
	release := make(chan struct{})

	dial := func(ctx context.Context) (docdb.Client, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			close(started)
		}
		<-release
		return nil, errors.New("unreachable")
	}

	m, _ := newTestManager(t, dial, retry.DefaultPolicy())

	first := make(chan error, 1)
	go func() {
		first <- m.EnsureConnectedWith(context.Background(), 0, time.Millisecond)
	}()
	<-started

	second := make(chan error, 1)
	go func() {
		second <- m.EnsureConnectedWith(context.Background(), 5, time.Millisecond)
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	for _, ch := range []chan error{first, second} {
		err := <-ch
		var connErr *domainerrors.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, 1, connErr.Attempts)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestEnsureConnected_CallerCancellation(t *testing.T) {
	dial := func(ctx context.Context) (docdb.Client, error) {
		return nil, errors.New("unreachable")
	}

	m, _ := newTestManager(t, dial, retry.DefaultPolicy())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.EnsureConnectedWith(ctx, 5, time.Second)

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domainerrors.ErrExhaustedRetries)
	assert.True(t, domainerrors.IsConnectionError(err))
}

func TestClient_NotConnected(t *testing.T) {
	m, _ := newTestManager(t, (&mocks.MockDialer{}).Dial, retry.DefaultPolicy())

	client, err := m.Client()

	assert.Nil(t, client)
	assert.ErrorIs(t, err, domainerrors.ErrNotConnected)
}

func TestVerify_HealthyConnection(t *testing.T) {
	client := mocks.NewMockDocDBClient()
	client.On("Ping", mock.Anything).Return(nil)
	dialer := &mocks.MockDialer{}
	dialer.On("Dial", mock.Anything).Return(client, nil)

	m, _ := newTestManager(t, dialer.Dial, retry.DefaultPolicy())
	require.NoError(t, m.EnsureConnected(context.Background()))

	assert.NoError(t, m.Verify(context.Background()))
	assert.True(t, m.IsConnected())
}

func TestVerify_StaleConnectionResets(t *testing.T) {
	stale := mocks.NewMockDocDBClient()
	stale.On("Ping", mock.Anything).Return(errors.New("socket closed"))
	stale.On("Close", mock.Anything).Return(nil)
	fresh := mocks.NewMockDocDBClient()

	dialer := &mocks.MockDialer{}
	dialer.On("Dial", mock.Anything).Return(stale, nil).Once()
	dialer.On("Dial", mock.Anything).Return(fresh, nil).Once()

	m, _ := newTestManager(t, dialer.Dial, retry.Policy{MaxRetries: 0})
	require.NoError(t, m.EnsureConnected(context.Background()))

	err := m.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection is stale")
	assert.False(t, m.IsConnected())
	stale.AssertCalled(t, "Close", mock.Anything)

	require.NoError(t, m.EnsureConnected(context.Background()))
	got, err := m.Client()
	require.NoError(t, err)
	assert.Same(t, fresh, got)
	dialer.AssertExpectations(t)
}

func TestVerify_CallerCancellationKeepsConnection(t *testing.T) {
	client := mocks.NewMockDocDBClient()
	client.On("Ping", mock.Anything).Return(context.Canceled)
	dialer := &mocks.MockDialer{}
	dialer.On("Dial", mock.Anything).Return(client, nil).Once()

	m, logs := newTestManager(t, dialer.Dial, retry.Policy{MaxRetries: 0})
	require.NoError(t, m.EnsureConnected(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Verify(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "connection is stale")

	assert.True(t, m.IsConnected())
	got, err := m.Client()
	require.NoError(t, err)
	assert.Same(t, client, got)
	client.AssertNotCalled(t, "Close", mock.Anything)
	assert.NotContains(t, logs.String(), "resetting connection")
}

func TestVerify_NotConnected(t *testing.T) {
	m, _ := newTestManager(t, (&mocks.MockDialer{}).Dial, retry.DefaultPolicy())

	assert.ErrorIs(t, m.Verify(context.Background()), domainerrors.ErrNotConnected)
}

func TestClose(t *testing.T) {
	client := mocks.NewMockDocDBClient()
	client.On("Close", mock.Anything).Return(nil).Once()
	dialer := &mocks.MockDialer{}
	dialer.On("Dial", mock.Anything).Return(client, nil)

	m, _ := newTestManager(t, dialer.Dial, retry.DefaultPolicy())
	require.NoError(t, m.EnsureConnected(context.Background()))

	require.NoError(t, m.Close(context.Background()))
	assert.False(t, m.IsConnected())

	// Closing twice is a no-op.
	require.NoError(t, m.Close(context.Background()))
	client.AssertExpectations(t)
}
