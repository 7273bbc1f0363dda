package accident

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/roadrisk/roadrisk/internal/provider/resilience"
)

// Source errors.
var (
	ErrSourceUnavailable = errors.New("dataset source unavailable")
)

// Source supplies a fresh dataset snapshot. Implementations must return a
// fully built table or an error; partial tables are never surfaced.
type Source interface {
	// Fetch loads the dataset and returns an immutable snapshot.
	Fetch(ctx context.Context) (*Table, error)

	// Name identifies the source for logging and the data-source marker
	// in scoring responses.
	Name() string
}

// FileSource loads the dataset from a local CSV file.
type FileSource struct {
	Path  string
	Clock clockwork.Clock
}

// NewFileSource creates a file-backed dataset source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, Clock: clockwork.NewRealClock()}
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "csv:" + s.Path
}

// Fetch implements Source.
func (s *FileSource) Fetch(_ context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrSourceUnavailable, s.Path, err)
	}
	defer f.Close()

	table, err := ParseCSV(f, s.Name(), s.clock().Now())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	return table, nil
}

func (s *FileSource) clock() clockwork.Clock {
	if s.Clock == nil {
		return clockwork.NewRealClock()
	}
	return s.Clock
}

// HTTPSource downloads the dataset CSV from a URL through the resilient
// HTTP client (circuit breaker + retries).
type HTTPSource struct {
	URL    string
	Client *resilience.Client
	Clock  clockwork.Clock
}

// NewHTTPSource creates an HTTP-backed dataset source.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: resilience.NewClient(resilience.Config{Name: "accident-dataset"}),
		Clock:  clockwork.NewRealClock(),
	}
}

// Name implements Source.
func (s *HTTPSource) Name() string {
	return "http:" + s.URL
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) (*Table, error) {
	resp, err := s.Client.Get(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrSourceUnavailable, s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%w: fetching %s: status %d", ErrSourceUnavailable, s.URL, resp.StatusCode)
	}

	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	table, err := ParseCSV(resp.Body, s.Name(), clock.Now())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.URL, err)
	}
	return table, nil
}

// StaticSource serves a fixed table. Intended for tests.
type StaticSource struct {
	Table *Table
	Err   error
}

// Name implements Source.
func (s *StaticSource) Name() string {
	return "static"
}

// Fetch implements Source.
func (s *StaticSource) Fetch(_ context.Context) (*Table, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Table, nil
}

// Compile-time interface checks.
var (
	_ Source = (*FileSource)(nil)
	_ Source = (*HTTPSource)(nil)
	_ Source = (*StaticSource)(nil)
)
