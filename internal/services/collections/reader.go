// Package collections reads whole document collections with bounded retry.
package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pantryshelf/products-service/internal/core/docdb"
	domainerrors "github.com/pantryshelf/products-service/internal/domain/errors"
	"github.com/pantryshelf/products-service/internal/domain/models"
	"github.com/pantryshelf/products-service/internal/metrics"
	"github.com/pantryshelf/products-service/internal/pkg/retry"
)

// ClientProvider hands out the shared document database client.
type ClientProvider interface {
	Client() (docdb.Client, error)
}

// Config holds the dependencies of a Reader.
type Config struct {
	// Provider supplies the established client. Required.
	Provider ClientProvider
	// Policy is the retry budget used by FetchAll.
	Policy retry.Policy
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
	// Metrics defaults to a no-op recorder.
	Metrics metrics.Recorder
}

// Reader materializes every document of a collection.
type Reader struct {
	provider ClientProvider
	policy   retry.Policy
	logger   zerolog.Logger
	metrics  metrics.Recorder
}

// NewReader creates a new Reader.
func NewReader(cfg *Config) (*Reader, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("client provider is required")
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	var recorder metrics.Recorder = metrics.Noop{}
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}

	return &Reader{
		provider: cfg.Provider,
		policy:   cfg.Policy,
		logger:   logger.With().Str("component", "collections").Logger(),
		metrics:  recorder,
	}, nil
}

// FetchAll reads the named collection using the configured retry policy.
func (r *Reader) FetchAll(ctx context.Context, name string) ([]models.Document, error) {
	return r.FetchAllWith(ctx, name, r.policy.MaxRetries, r.policy.Delay)
}

// FetchAllWith issues an unfiltered scan of the named collection and returns every
// document in the order the store yields them. Every failure is retried, up to
// maxRetries times with a fixed delay. The result is never nil.
func (r *Reader) FetchAllWith(ctx context.Context, name string, maxRetries int, delay time.Duration) ([]models.Document, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domainerrors.NewValidationError("invalid collection name", "collection name is empty")
	}

	policy := retry.Policy{MaxRetries: maxRetries, Delay: delay}
	logger := r.logger.With().Str("collection", name).Logger()
	start := time.Now()

	attempts := 0
	docs, err := retry.DoValue(ctx, policy, func(ctx context.Context) ([]models.Document, error) {
		attempts++
		docs, err := r.fetchOnce(ctx, name)
		if err != nil {
			r.metrics.RecordFetchAttempt(name, metrics.ResultFailure)
			logger.Error().
				Err(err).
				Int("attempt", attempts).
				Msg("error accessing collection")
			return nil, err
		}
		r.metrics.RecordFetchAttempt(name, metrics.ResultSuccess)
		return docs, nil
	}, func(attempt, left int, err error) {
		logger.Warn().
			Int("attempts_left", left).
			Dur("delay", policy.Delay).
			Msg("retrying fetch")
	})
	if err != nil {
		r.metrics.RecordFetch(name, metrics.ResultFailure, time.Since(start), 0)

		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			return nil, &domainerrors.FetchError{Collection: name, Attempts: exhausted.Attempts, Err: exhausted.Err}
		}
		return nil, &domainerrors.FetchError{Collection: name, Attempts: attempts, Canceled: true, Err: err}
	}

	r.metrics.RecordFetch(name, metrics.ResultSuccess, time.Since(start), len(docs))
	logger.Debug().
		Int("documents", len(docs)).
		Int("attempts", attempts).
		Msg("collection fetched")

	return docs, nil
}

func (r *Reader) fetchOnce(ctx context.Context, name string) ([]models.Document, error) {
	client, err := r.provider.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to get document database client: %w", err)
	}

	cursor, err := client.Database().Collection(name).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := models.NewCollectionResult(0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	if docs == nil {
		docs = models.NewCollectionResult(0)
	}

	return docs, nil
}
