package aggregator

import (
	"fmt"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

// FilterByPeriod returns the records whose start time falls inside the named
// window relative to now. Calendar days are taken in now's location.
func FilterByPeriod(records []types.CallRecord, period types.PeriodKind, now time.Time) ([]types.CallRecord, error) {
	match, err := periodMatcher(period, now)
	if err != nil {
		return nil, err
	}

	filtered := make([]types.CallRecord, 0, len(records))
	for _, r := range records {
		if match(r.StartTime) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// PeriodWindow returns the [from, to) instants covering the period, which a
// store can use to narrow its query before FilterByPeriod runs. Rolling
// windows end at the close of now's calendar day.
func PeriodWindow(period types.PeriodKind, now time.Time) (time.Time, time.Time, error) {
	if now.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("reference time is zero: %w", types.ErrInvalidArgument)
	}

	today := startOfDay(now)
	switch period {
	case types.PeriodToday:
		return today, today.AddDate(0, 0, 1), nil
	case types.PeriodYesterday:
		return today.AddDate(0, 0, -1), today, nil
	case types.PeriodWeek:
		return now.AddDate(0, 0, -7), today.AddDate(0, 0, 1), nil
	case types.PeriodMonth:
		return now.AddDate(0, -1, 0), today.AddDate(0, 0, 1), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q: %w", period, types.ErrInvalidArgument)
}

func periodMatcher(period types.PeriodKind, now time.Time) (func(time.Time) bool, error) {
	if now.IsZero() {
		return nil, fmt.Errorf("reference time is zero: %w", types.ErrInvalidArgument)
	}

	loc := now.Location()
	switch period {
	case types.PeriodToday:
		return func(t time.Time) bool {
			return sameDate(t.In(loc), now)
		}, nil
	case types.PeriodYesterday:
		yesterday := startOfDay(now).AddDate(0, 0, -1)
		return func(t time.Time) bool {
			return sameDate(t.In(loc), yesterday)
		}, nil
	case types.PeriodWeek:
		since := now.AddDate(0, 0, -7)
		return func(t time.Time) bool {
			return !t.Before(since)
		}, nil
	case types.PeriodMonth:
		since := now.AddDate(0, -1, 0)
		return func(t time.Time) bool {
			return !t.Before(since)
		}, nil
	}
	return nil, fmt.Errorf("unknown period %q: %w", period, types.ErrInvalidArgument)
}

// sameDate compares calendar dates; both times must already be in the same location
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
