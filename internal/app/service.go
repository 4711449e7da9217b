// Package app wires fetching, computation, the comparison worker pool and
// the preference store into the operations the HTTP API serves.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/trainhist/internal/adapters/mq/queue"
	"github.com/okian/trainhist/internal/adapters/mq/worker"
	"github.com/okian/trainhist/internal/adapters/repository"
	"github.com/okian/trainhist/internal/adapters/upstream"
	"github.com/okian/trainhist/internal/domain/currency"
	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/domain/transfer"
	"github.com/okian/trainhist/pkg/logger"
)

// Source supplies raw entity data. *upstream.Client implements it.
type Source interface {
	TrainingSeries(ctx context.Context, id string) ([]model.RawSeries, error)
	Scout(ctx context.Context, id string) (upstream.ScoutPage, error)
	Transfers(ctx context.Context, id string) ([]transfer.Row, error)
	Profile(ctx context.Context, id string) (upstream.Profile, error)
	Anchor(ctx context.Context) (season.Anchor, error)
}

// Service implements the API dependencies for history reconstruction.
type Service struct {
	mu sync.RWMutex

	source Source
	store  repository.Store
	cache  *repository.ReportCache[*Report]
	queue  *queue.InMemoryQueue
	pool   *worker.Pool

	// Configuration
	workerCount     int
	queueSize       int
	cacheSize       int
	maxCompare      int
	defaultCurrency string
	location        *time.Location
	staticAnchor    *season.Anchor
	now             func() time.Time

	anchorMu  sync.Mutex
	anchor    *season.Clock
	anchorDay string

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where entity data is fetched from.
func WithSource(src Source) Option {
	return func(s *Service) { s.source = src }
}

// WithStore sets the preference store. Defaults to an in-memory store.
func WithStore(st repository.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithWorkerCount sets the number of comparison workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the comparison job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithReportCacheSize bounds the number of reports kept for re-pricing.
func WithReportCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithMaxCompare caps the number of ids one comparison accepts.
func WithMaxCompare(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCompare = n
		}
	}
}

// WithDefaultCurrency sets the currency used until a preference is stored.
func WithDefaultCurrency(code string) Option {
	return func(s *Service) {
		if code != "" {
			s.defaultCurrency = code
		}
	}
}

// WithLocation sets the host calendar timezone.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithStaticAnchor pins the season anchor instead of reading it upstream.
func WithStaticAnchor(a season.Anchor) Option {
	return func(s *Service) { s.staticAnchor = &a }
}

// WithNow overrides the wall clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration. The service
// logs nowhere unless WithLogger is given.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       1000,
		cacheSize:       256,
		maxCompare:      20,
		defaultCurrency: "USD",
		location:        time.UTC,
		now:             time.Now,
		logger:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return fmt.Errorf("start: no data source configured")
	}
	if s.store == nil {
		s.store = repository.NewInMemoryStore()
	}

	s.logger.Info(ctx, "starting history service...")

	cache, err := repository.NewReportCache[*Report](s.cacheSize)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	s.cache = cache
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, worker.WithLogger(s.logger.Named("worker")))
	// Workers outlive the start request; they stop on Stop.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "history service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.Bool("staticAnchor", s.staticAnchor != nil),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping history service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing preference store failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "history service stopped")
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Clock returns today's season clock. A static anchor is rebased to today;
// an upstream anchor is fetched once per calendar day.
func (s *Service) Clock(ctx context.Context) (*season.Clock, error) {
	now := s.now()
	if s.staticAnchor != nil {
		return season.NewClock(*s.staticAnchor, s.location).At(now), nil
	}

	day := now.In(s.location).Format("2006-01-02")
	s.anchorMu.Lock()
	defer s.anchorMu.Unlock()
	if s.anchor != nil && s.anchorDay == day {
		return s.anchor, nil
	}
	a, err := s.source.Anchor(ctx)
	if err != nil {
		if s.anchor != nil {
			s.logger.Warn(ctx, "anchor refresh failed, rebasing cached anchor", logger.Error(err))
			return s.anchor.At(now), nil
		}
		if !errors.Is(err, season.ErrAnchorUnavailable) {
			err = fmt.Errorf("%w: %w", season.ErrAnchorUnavailable, err)
		}
		return nil, err
	}
	s.anchor = season.NewClock(a, s.location)
	s.anchorDay = day
	return s.anchor, nil
}

// PreferredCurrency returns the stored currency, or the default when none
// is stored or the store cannot be read.
func (s *Service) PreferredCurrency(ctx context.Context) string {
	if s.store == nil {
		return s.defaultCurrency
	}
	code, err := s.store.PreferredCurrency(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn(ctx, "reading preferred currency failed", logger.Error(err))
		}
		return s.defaultCurrency
	}
	return code
}

// SetPreferredCurrency stores code after checking it against the rate table.
func (s *Service) SetPreferredCurrency(ctx context.Context, code string) error {
	if err := s.running(); err != nil {
		return err
	}
	if !currency.Known(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return s.store.SetPreferredCurrency(ctx, code)
}

// NewView opens a view holding the current preferred currency.
func (s *Service) NewView(ctx context.Context) *View {
	return OpenView(s.PreferredCurrency(ctx))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"reportCacheSize":   s.cacheSize,
		"maxCompare":        s.maxCompare,
		"staticAnchor":      s.staticAnchor != nil,
		"defaultCurrency":   s.defaultCurrency,
		"currencies":        len(currency.Codes()),
		"preferredCurrency": s.PreferredCurrency(ctx),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["cachedReports"] = s.cache.Len()
		stats["jobsProcessed"] = s.pool.Processed()
		stats["jobsFailed"] = s.pool.Failed()
	}
	return stats
}
