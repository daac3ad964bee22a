package aggregator

import (
	"fmt"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

const (
	hoursPerDay = 24
	daysPerWeek = 7
)

// Bucketize groups records into a fixed chart series around referenceNow.
//
// Hourly series always have 24 buckets for referenceNow's calendar day,
// labelled by local wall-clock hour. On a day that skips an hour for
// daylight saving the skipped bucket stays empty and its Start equals the
// next bucket's Start; on a day that repeats an hour both occurrences fall
// into that hour's bucket.
// Daily series always have 7 buckets, oldest first, ending on referenceNow's
// day. Records outside the covered window are dropped; empty buckets stay.
func Bucketize(records []types.CallRecord, granularity types.Granularity, referenceNow time.Time) (types.BucketSeries, error) {
	if referenceNow.IsZero() {
		return types.BucketSeries{}, fmt.Errorf("reference time is zero: %w", types.ErrInvalidArgument)
	}

	switch granularity {
	case types.GranularityHourly:
		return hourly(records, referenceNow), nil
	case types.GranularityDaily:
		return daily(records, referenceNow), nil
	}
	return types.BucketSeries{}, fmt.Errorf("unknown granularity %q: %w", granularity, types.ErrInvalidArgument)
}

func hourly(records []types.CallRecord, now time.Time) types.BucketSeries {
	loc := now.Location()
	y, m, d := now.Date()

	buckets := make([]types.Bucket, hoursPerDay)
	for h := range buckets {
		buckets[h] = types.Bucket{
			Label: fmt.Sprintf("%02d:00", h),
			Start: time.Date(y, m, d, h, 0, 0, 0, loc),
		}
	}

	for _, r := range records {
		t := r.StartTime.In(loc)
		if !sameDate(t, now) {
			continue
		}
		count(&buckets[t.Hour()], r)
	}

	return types.BucketSeries{Granularity: types.GranularityHourly, Buckets: buckets}
}

func daily(records []types.CallRecord, now time.Time) types.BucketSeries {
	loc := now.Location()
	y, m, d := now.Date()

	buckets := make([]types.Bucket, daysPerWeek)
	index := make(map[string]int, daysPerWeek)
	for i := range buckets {
		day := time.Date(y, m, d-(daysPerWeek-1)+i, 0, 0, 0, 0, loc)
		label := day.Format(types.DateLayout)
		buckets[i] = types.Bucket{Label: label, Start: day}
		index[label] = i
	}

	for _, r := range records {
		i, ok := index[r.DateKey(loc)]
		if !ok {
			continue
		}
		count(&buckets[i], r)
	}

	return types.BucketSeries{Granularity: types.GranularityDaily, Buckets: buckets}
}

func count(b *types.Bucket, r types.CallRecord) {
	b.Calls++
	if r.Answered() {
		b.Answered++
	} else {
		b.Missed++
	}
}
