package accident

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Store errors.
var (
	// ErrNotLoaded is returned when no dataset snapshot has been loaded yet.
	ErrNotLoaded = errors.New("accident dataset not loaded")
)

// StoreConfig holds configuration for the dataset store.
type StoreConfig struct {
	// Source supplies dataset snapshots on load and reload.
	Source Source

	// Logger for load operations.
	Logger zerolog.Logger

	// Clock is used for load timestamps. Defaults to the real clock.
	Clock clockwork.Clock

	// LoadMaxRetries bounds startup load retries. Default: 3.
	LoadMaxRetries uint64

	// LoadRetryInterval is the initial backoff between startup load
	// attempts. Default: 1 second.
	LoadRetryInterval time.Duration
}

// Store holds the process-wide accident dataset snapshot. Reload replaces
// the whole table reference under the lock, so readers observe either the
// old or the new snapshot, never a partially updated one.
type Store struct {
	source            Source
	logger            zerolog.Logger
	clock             clockwork.Clock
	loadMaxRetries    uint64
	loadRetryInterval time.Duration

	mu    sync.RWMutex
	table *Table
}

// NewStore creates a dataset store. The store starts empty; call Load or
// Reload to populate it.
func NewStore(cfg StoreConfig) *Store {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	maxRetries := cfg.LoadMaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	interval := cfg.LoadRetryInterval
	if interval == 0 {
		interval = time.Second
	}
	return &Store{
		source:            cfg.Source,
		logger:            cfg.Logger,
		clock:             clock,
		loadMaxRetries:    maxRetries,
		loadRetryInterval: interval,
	}
}

// Snapshot returns the current dataset snapshot. ok is false when no
// dataset has been loaded.
func (s *Store) Snapshot() (table *Table, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table, s.table != nil
}

// Reload fetches a fresh snapshot from the source and swaps it in. On
// failure the previous snapshot is kept.
func (s *Store) Reload(ctx context.Context) (*Table, error) {
	start := s.clock.Now()

	table, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("source", s.source.Name()).Msg("dataset reload failed")
		return nil, err
	}

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	latCol, lngCol, hasCoords := table.CoordinateColumns()
	s.logger.Info().
		Str("source", table.Source).
		Int("records", table.Len()).
		Int("spatial_points", len(table.Points())).
		Str("lat_column", latCol).
		Str("lng_column", lngCol).
		Bool("coordinates_available", hasCoords).
		Dur("duration", s.clock.Since(start)).
		Msg("dataset loaded")

	return table, nil
}

// Load populates the store at startup, retrying transient source failures
// with exponential backoff. A service can come up before its dataset is
// reachable; callers decide whether a final failure is fatal.
func (s *Store) Load(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.loadRetryInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, s.loadMaxRetries), ctx)

	return backoff.Retry(func() error {
		_, err := s.Reload(ctx)
		return err
	}, policy)
}

// Clear drops the current snapshot. Subsequent queries degrade to
// "unavailable" results until the next successful load.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
}

// SourceName identifies the configured dataset source.
func (s *Store) SourceName() string {
	return s.source.Name()
}
