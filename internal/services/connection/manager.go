// Package connection owns the lifecycle of the shared document database connection.
package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/pantryshelf/products-service/internal/core/docdb"
	domainerrors "github.com/pantryshelf/products-service/internal/domain/errors"
	"github.com/pantryshelf/products-service/internal/metrics"
	"github.com/pantryshelf/products-service/internal/pkg/retry"
)

const (
	connectKey   = "connect"
	closeTimeout = 5 * time.Second
)

// Config holds the dependencies of a Manager.
type Config struct {
	// Dialer opens a ready client. Required.
	Dialer docdb.Dialer
	// Policy is the retry budget used by EnsureConnected.
	Policy retry.Policy
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
	// Metrics defaults to a no-op recorder.
	Metrics metrics.Recorder
}

// Manager lazily establishes one document database connection and shares it.
//
// Once connected, EnsureConnected returns without any I/O. Concurrent first callers
// share a single dial sequence. The state is only reset by Verify observing a failed
// ping, or by Close.
type Manager struct {
	dial    docdb.Dialer
	policy  retry.Policy
	logger  zerolog.Logger
	metrics metrics.Recorder

	mu        sync.RWMutex
	client    docdb.Client
	connected bool

	group singleflight.Group
}

// NewManager creates a new Manager.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Dialer == nil {
		return nil, fmt.Errorf("dialer is required")
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	var recorder metrics.Recorder = metrics.Noop{}
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}

	return &Manager{
		dial:    cfg.Dialer,
		policy:  cfg.Policy,
		logger:  logger.With().Str("component", "connection").Logger(),
		metrics: recorder,
	}, nil
}

// EnsureConnected connects using the configured retry policy.
func (m *Manager) EnsureConnected(ctx context.Context) error {
	return m.EnsureConnectedWith(ctx, m.policy.MaxRetries, m.policy.Delay)
}

// EnsureConnectedWith connects if no connection is established yet, retrying up to
// maxRetries times with a fixed delay. It returns a *errors.ConnectionError on failure.
//
// Callers that arrive while a connect is already in flight wait for that attempt and
// share its outcome; their own maxRetries and delay are not applied.
func (m *Manager) EnsureConnectedWith(ctx context.Context, maxRetries int, delay time.Duration) error {
	if m.IsConnected() {
		return nil
	}

	policy := retry.Policy{MaxRetries: maxRetries, Delay: delay}

	// The dial runs detached from the caller that happened to start it so one
	// cancelled request does not fail everyone waiting on the same flight.
	dialCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(connectKey, func() (interface{}, error) {
		return nil, m.connect(dialCtx, policy)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return &domainerrors.ConnectionError{Canceled: true, Err: ctx.Err()}
	}
}

func (m *Manager) connect(ctx context.Context, policy retry.Policy) error {
	if m.IsConnected() {
		return nil
	}

	attempts := 0
	client, err := retry.DoValue(ctx, policy, func(ctx context.Context) (docdb.Client, error) {
		attempts++
		client, err := m.dial(ctx)
		if err != nil {
			m.metrics.RecordConnectAttempt(metrics.ResultFailure)
			m.logger.Error().
				Err(err).
				Int("attempt", attempts).
				Msg("error connecting to document database")
			return nil, err
		}
		m.metrics.RecordConnectAttempt(metrics.ResultSuccess)
		return client, nil
	}, func(attempt, left int, err error) {
		m.logger.Warn().
			Int("attempts_left", left).
			Dur("delay", policy.Delay).
			Msg("retrying connect")
	})
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			return &domainerrors.ConnectionError{Attempts: exhausted.Attempts, Err: exhausted.Err}
		}
		return &domainerrors.ConnectionError{Attempts: attempts, Canceled: true, Err: err}
	}

	m.mu.Lock()
	m.client = client
	m.connected = true
	m.mu.Unlock()

	m.metrics.SetConnectionUp(true)
	m.logger.Info().
		Int("attempts", attempts).
		Msg("connected to document database")

	return nil
}

// IsConnected reports whether a connection has been established.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Client returns the established client, or ErrNotConnected.
func (m *Manager) Client() (docdb.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return nil, domainerrors.ErrNotConnected
	}
	return m.client, nil
}

// Verify pings the established connection. A failed ping closes the stale client and
// resets the state so the next EnsureConnected reconnects. A ping cut short by ctx
// leaves the connection in place.
func (m *Manager) Verify(ctx context.Context) error {
	client, err := m.Client()
	if err != nil {
		return err
	}

	if err := client.Ping(ctx); err != nil {
		// The caller giving up says nothing about the server.
		if ctx.Err() != nil {
			return fmt.Errorf("connection check interrupted: %w", err)
		}
		m.logger.Warn().Err(err).Msg("document database ping failed, resetting connection")
		m.reset(ctx, client)
		return fmt.Errorf("connection is stale: %w", err)
	}

	return nil
}

// reset drops client if it is still the current one.
func (m *Manager) reset(ctx context.Context, client docdb.Client) {
	m.mu.Lock()
	if m.client != client {
		m.mu.Unlock()
		return
	}
	m.client = nil
	m.connected = false
	m.mu.Unlock()

	m.metrics.SetConnectionUp(false)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := client.Close(closeCtx); err != nil {
		m.logger.Warn().Err(err).Msg("failed to close stale document database client")
	}
}

// Close disconnects the established client, if any.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.connected = false
	m.mu.Unlock()

	if client == nil {
		return nil
	}

	m.metrics.SetConnectionUp(false)
	return client.Close(ctx)
}
