package aggregator

import (
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

// Dashboard composes the overview payload. KPIs cover the requested period;
// the hourly and daily series are bucketed over the full input so the charts
// do not depend on the KPI period.
func (a Aggregator) Dashboard(records []types.CallRecord, period types.PeriodKind, now time.Time) (types.Dashboard, error) {
	filtered, err := FilterByPeriod(records, period, now)
	if err != nil {
		return types.Dashboard{}, err
	}

	hourlySeries, err := Bucketize(records, types.GranularityHourly, now)
	if err != nil {
		return types.Dashboard{}, err
	}
	dailySeries, err := Bucketize(records, types.GranularityDaily, now)
	if err != nil {
		return types.Dashboard{}, err
	}

	return types.Dashboard{
		Period:      period,
		GeneratedAt: now,
		KPIs:        a.ComputeKPIs(filtered),
		Hourly:      hourlySeries,
		Daily:       dailySeries,
	}, nil
}
