// Package reports loads call records for a reporting window and runs the
// aggregations on them. It is shared by the REST handlers and the live
// dashboard publisher.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/aggregator"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/metrics"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/storage"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/rs/zerolog"
)

// Report kinds, used as metric labels
const (
	KindKPIs      = "kpis"
	KindChart     = "chart"
	KindOperators = "operators"
	KindQueues    = "queues"
	KindMissed    = "missed"
	KindDashboard = "dashboard"
)

// chartDays is how far back the daily chart reaches, today included
const chartDays = 7

// Query selects the reporting window
type Query struct {
	Period types.PeriodKind
	Now    time.Time
}

// Service computes reports from a store
type Service struct {
	store   storage.Store
	agg     aggregator.Aggregator
	loc     *time.Location
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewService creates a new report service. Calendar days are taken in loc.
func NewService(store storage.Store, agg aggregator.Aggregator, loc *time.Location, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:   store,
		agg:     agg,
		loc:     loc,
		metrics: m,
		logger:  logger.With().Str("component", "reports").Logger(),
	}
}

// Now returns the current time in the report location
func (s *Service) Now() time.Time {
	return time.Now().In(s.loc)
}

// Location returns the report location
func (s *Service) Location() *time.Location {
	return s.loc
}

// KPIs returns the summary for the period
func (s *Service) KPIs(ctx context.Context, q Query) (types.KPISummary, error) {
	var summary types.KPISummary
	err := s.track(KindKPIs, func() (int, error) {
		records, _, err := s.load(ctx, q, false, false)
		if err != nil {
			return 0, err
		}
		summary = s.agg.ComputeKPIs(records)
		return len(records), nil
	})
	return summary, err
}

// Chart returns the hourly series for now's day or the daily series for the
// last seven days
func (s *Service) Chart(ctx context.Context, granularity types.Granularity, now time.Time) (types.BucketSeries, error) {
	var series types.BucketSeries
	err := s.track(KindChart, func() (int, error) {
		if _, err := types.ParseGranularity(string(granularity)); err != nil {
			return 0, err
		}
		if now.IsZero() {
			return 0, fmt.Errorf("reference time is zero: %w", types.ErrInvalidArgument)
		}
		now = now.In(s.loc)

		from, to := chartWindow(now)
		if granularity == types.GranularityHourly {
			from = startOfDay(now)
		}
		records, err := s.store.GetCallRecords(ctx, from, to)
		if err != nil {
			return 0, fmt.Errorf("failed to load call records: %w", err)
		}

		series, err = aggregator.Bucketize(records, granularity, now)
		return len(records), err
	})
	return series, err
}

// Operators returns per-operator KPIs for the period
func (s *Service) Operators(ctx context.Context, q Query) ([]types.OperatorReport, error) {
	var reports []types.OperatorReport
	err := s.track(KindOperators, func() (int, error) {
		records, dir, err := s.load(ctx, q, false, true)
		if err != nil {
			return 0, err
		}
		reports = s.agg.RollupByOperator(records, dir.Operators, dir.Groups)
		return len(records), nil
	})
	return reports, err
}

// Queues returns per-queue KPIs for the period
func (s *Service) Queues(ctx context.Context, q Query) ([]types.QueueReport, error) {
	var reports []types.QueueReport
	err := s.track(KindQueues, func() (int, error) {
		records, dir, err := s.load(ctx, q, false, true)
		if err != nil {
			return 0, err
		}
		reports = s.agg.RollupByQueue(records, dir.Queues)
		return len(records), nil
	})
	return reports, err
}

// Missed returns the missed calls of the period, newest first
func (s *Service) Missed(ctx context.Context, q Query) ([]types.MissedCall, error) {
	var calls []types.MissedCall
	err := s.track(KindMissed, func() (int, error) {
		records, dir, err := s.load(ctx, q, false, true)
		if err != nil {
			return 0, err
		}
		calls = aggregator.MissedCalls(records, dir.Queues)
		return len(records), nil
	})
	return calls, err
}

// Dashboard returns the overview payload including operator presence
func (s *Service) Dashboard(ctx context.Context, q Query) (types.Dashboard, error) {
	var dashboard types.Dashboard
	err := s.track(KindDashboard, func() (int, error) {
		records, dir, err := s.load(ctx, q, true, true)
		if err != nil {
			return 0, err
		}
		dashboard, err = s.agg.Dashboard(records, q.Period, q.Now.In(s.loc))
		if err != nil {
			return 0, err
		}
		presence := aggregator.SummarizePresence(dir.Operators)
		dashboard.Presence = &presence
		return len(records), nil
	})
	return dashboard, err
}

// load fetches the records of the query window. With withCharts the window
// is widened to cover the chart series and the records are returned
// unfiltered; the dashboard filters them itself.
func (s *Service) load(ctx context.Context, q Query, withCharts, withDirectory bool) ([]types.CallRecord, types.Directory, error) {
	if q.Now.IsZero() {
		return nil, types.Directory{}, fmt.Errorf("reference time is zero: %w", types.ErrInvalidArgument)
	}
	now := q.Now.In(s.loc)

	from, to, err := aggregator.PeriodWindow(q.Period, now)
	if err != nil {
		return nil, types.Directory{}, err
	}
	if withCharts {
		chartFrom, chartTo := chartWindow(now)
		if chartFrom.Before(from) {
			from = chartFrom
		}
		if chartTo.After(to) {
			to = chartTo
		}
	}

	records, err := s.store.GetCallRecords(ctx, from, to)
	if err != nil {
		return nil, types.Directory{}, fmt.Errorf("failed to load call records: %w", err)
	}

	var dir types.Directory
	if withDirectory {
		dir, err = s.store.GetDirectory(ctx)
		if err != nil {
			return nil, types.Directory{}, fmt.Errorf("failed to load directory: %w", err)
		}
		s.logUnresolved(records, dir)
	}

	if withCharts {
		return records, dir, nil
	}
	filtered, err := aggregator.FilterByPeriod(records, q.Period, now)
	if err != nil {
		return nil, types.Directory{}, err
	}
	return filtered, dir, nil
}

func (s *Service) logUnresolved(records []types.CallRecord, dir types.Directory) {
	for _, ref := range aggregator.UnresolvedReferences(records, dir) {
		s.logger.Warn().
			Str("kind", string(ref.Kind)).
			Str("id", ref.ID).
			Str("call_id", ref.RecordID).
			Msg("unresolved reference")
	}
}

func (s *Service) track(kind string, fn func() (int, error)) error {
	start := time.Now()
	n, err := fn()
	if s.metrics == nil {
		return err
	}
	if err != nil {
		s.metrics.RecordReportError(kind)
		return err
	}
	s.metrics.RecordReport(kind, n, time.Since(start))
	return nil
}

// chartWindow covers the daily chart: seven calendar days ending with now's day
func chartWindow(now time.Time) (time.Time, time.Time) {
	today := startOfDay(now)
	return today.AddDate(0, 0, -(chartDays - 1)), today.AddDate(0, 0, 1)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
