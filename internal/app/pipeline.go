package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/trainhist/internal/adapters/mq/queue"
	"github.com/okian/trainhist/internal/adapters/upstream"
	"github.com/okian/trainhist/internal/domain/classify"
	"github.com/okian/trainhist/internal/domain/compare"
	"github.com/okian/trainhist/internal/domain/currency"
	"github.com/okian/trainhist/internal/domain/history"
	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/scout"
	"github.com/okian/trainhist/internal/domain/transfer"
	"github.com/okian/trainhist/pkg/logger"
	"github.com/okian/trainhist/pkg/metrics"
)

// Chart names registered on a view by Compare.
const (
	ChartGains      = "gains"
	ChartCumulative = "cumulative"
)

// Comparison is the result of one comparison batch.
type Comparison struct {
	ID       string        `json:"id"`
	Currency string        `json:"currency"`
	Table    compare.Table `json:"table"`
	Rows     []compare.Row `json:"rows"`
}

// Detail runs the single-entity pipeline. The profile and training series
// are required; scout and transfer failures fall back to empty defaults.
func (s *Service) Detail(ctx context.Context, view *View, id string) (*Report, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	start := time.Now()
	metrics.RecordPipelineStarted("detail")

	r, err := s.detail(ctx, view, id)
	if err != nil {
		metrics.RecordPipelineFailed("detail", kindOf(err))
		return nil, err
	}
	metrics.RecordPipelineCompleted("detail", float64(time.Since(start).Milliseconds()))
	return r, nil
}

func (s *Service) detail(ctx context.Context, view *View, id string) (*Report, error) {
	clock, err := s.Clock(ctx)
	if err != nil {
		return nil, err
	}
	log := s.logger.Named("detail")

	var (
		profile  upstream.Profile
		series   []model.RawSeries
		page     upstream.ScoutPage
		rows     []transfer.Row
		scoutErr error
		transErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.source.Profile(gctx, id)
		if err != nil {
			return unavailable(id, "profile", err)
		}
		if !p.HasSkills {
			return unavailable(id, "current skills", upstream.ErrParse)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		rs, err := s.source.TrainingSeries(gctx, id)
		if err != nil {
			return unavailable(id, "training series", err)
		}
		series = rs
		return nil
	})
	g.Go(func() error {
		page, scoutErr = s.source.Scout(gctx, id)
		return nil
	})
	g.Go(func() error {
		rows, transErr = s.source.Transfers(gctx, id)
		return nil
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, &EntityError{EntityID: id, Kind: KindCancelled, Err: ctx.Err()}
		}
		return nil, err
	}

	var partial []string
	if scoutErr != nil {
		partial = append(partial, upstream.SourceScout)
		page = upstream.ScoutPage{}
		s.partial(ctx, log, id, upstream.SourceScout, scoutErr)
	}
	if transErr != nil {
		partial = append(partial, upstream.SourceTransfers)
		rows = nil
		s.partial(ctx, log, id, upstream.SourceTransfers, transErr)
	}

	report := Compute(ctx, log, clock, Input{
		EntityID:   id,
		Name:       profile.Name,
		CurrentAge: profile.Age,
		Current:    profile.Skills,
		Series:     series,
		Transfers:  rows,
		Scout:      page.Report(),
		Partial:    partial,
	})
	s.cache.Put(id, report)

	code := s.defaultCurrency
	if view != nil {
		code = view.Currency
	}
	log.Info(ctx, "history computed",
		logger.String("entity", id),
		logger.Int("season", report.CurrentSeason),
		logger.Int("snapshots", len(report.Snapshots)),
		logger.Int("gains", report.TotalGains),
		logger.Int("clamps", len(report.Clamps)),
	)
	return report.Priced(code), nil
}

func (s *Service) partial(ctx context.Context, log logger.Logger, id, source string, err error) {
	metrics.RecordPartialData(source)
	log.Warn(ctx, "using defaults for unavailable data",
		logger.String("entity", id),
		logger.String("source", source),
		logger.Error(err),
	)
}

// RepriceCached re-prices a cached report's transfers without fetching.
func (s *Service) RepriceCached(_ context.Context, id, code string) ([]TransferView, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	if code != "" && !currency.Known(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	r, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, id)
	}
	if code == "" {
		code = s.defaultCurrency
	}
	return Reprice(r.Transfers, code), nil
}

// ProcessEntity builds one entity's comparison record. It implements
// worker.Processor. A scout failure leaves the speed tier at zero.
func (s *Service) ProcessEntity(ctx context.Context, id string) (model.ComparisonRecord, error) {
	clock, err := s.Clock(ctx)
	if err != nil {
		return model.ComparisonRecord{}, unavailable(id, "season anchor", err)
	}
	profile, err := s.source.Profile(ctx, id)
	if err != nil {
		return model.ComparisonRecord{}, unavailable(id, "profile", err)
	}
	series, err := s.source.TrainingSeries(ctx, id)
	if err != nil {
		return model.ComparisonRecord{}, unavailable(id, "training series", err)
	}
	var report scout.Report
	if page, err := s.source.Scout(ctx, id); err != nil {
		s.partial(ctx, s.logger.Named("compare"), id, upstream.SourceScout, err)
	} else {
		report = page.Report()
	}

	classified := classify.New(clock).Classify(series)
	agg := history.Build(classified.Gains, classified.Chips, nil)
	rec, err := compare.Record(compare.FromAggregate(id, profile.Name, report.SpeedTier, profile.Age, clock.Current(), agg))
	if err != nil {
		return model.ComparisonRecord{}, unavailable(id, "age", err)
	}
	return rec, nil
}

// Compare aligns the histories of the ids in raw. Entities that fail are
// listed in the table's failures; the rest still compare.
func (s *Service) Compare(ctx context.Context, view *View, raw string) (*Comparison, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	ids, err := compare.NormalizeIDs(raw, s.maxCompare)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	metrics.RecordPipelineStarted("compare")
	metrics.RecordComparison(len(ids))

	batch := uuid.NewString()
	replies := make(chan queue.Result, len(ids))
	var failures []compare.Failure
	pending := 0
	for i, id := range ids {
		job := queue.Job{ID: uuid.NewString(), BatchID: batch, EntityID: id, Index: i, Reply: replies}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			kind := KindBackpressure
			if ctx.Err() != nil {
				kind = KindCancelled
			}
			failures = append(failures, compare.Failure{EntityID: id, Reason: kind + ": " + err.Error()})
			metrics.RecordComparisonEntity("failed")
			continue
		}
		pending++
	}

	results := make([]queue.Result, 0, pending)
	for ; pending > 0; pending-- {
		select {
		case res := <-replies:
			results = append(results, res)
		case <-ctx.Done():
			metrics.RecordPipelineFailed("compare", KindCancelled)
			return nil, &EntityError{EntityID: batch, Kind: KindCancelled, Err: ctx.Err()}
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	records := make([]model.ComparisonRecord, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, compare.Failure{EntityID: res.EntityID, Reason: res.Err.Error()})
			metrics.RecordComparisonEntity("failed")
			continue
		}
		records = append(records, res.Record)
		metrics.RecordComparisonEntity("succeeded")
	}

	table := compare.Align(records, failures)
	code := s.defaultCurrency
	if view != nil {
		view.Register(ChartGains, table.Series(false))
		view.Register(ChartCumulative, table.Series(true))
		code = view.Currency
	}
	s.logger.Info(ctx, "comparison aligned",
		logger.String("batch", batch),
		logger.Int("requested", len(ids)),
		logger.Int("succeeded", len(records)),
		logger.Int("failed", len(failures)),
	)
	metrics.RecordPipelineCompleted("compare", float64(time.Since(start).Milliseconds()))
	return &Comparison{ID: batch, Currency: code, Table: table, Rows: table.Rows()}, nil
}

// ComputeBundle runs the pure computation over a posted bundle. Nothing is
// fetched and nothing is cached.
func (s *Service) ComputeBundle(ctx context.Context, b Bundle) (*Report, error) {
	start := time.Now()
	metrics.RecordPipelineStarted("bundle")

	clock, err := b.Clock()
	if err != nil {
		metrics.RecordPipelineFailed("bundle", kindOf(err))
		return nil, err
	}
	in, err := b.Input()
	if err != nil {
		metrics.RecordPipelineFailed("bundle", kindOf(err))
		return nil, err
	}
	code := b.Currency
	if code == "" {
		code = s.PreferredCurrency(ctx)
	}
	r := Compute(ctx, s.logger.Named("bundle"), clock, in).Priced(code)
	metrics.RecordPipelineCompleted("bundle", float64(time.Since(start).Milliseconds()))
	return r, nil
}

func kindOf(err error) string {
	var ee *EntityError
	switch {
	case errors.As(err, &ee):
		return ee.Kind
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInputUnavailable
	}
}
