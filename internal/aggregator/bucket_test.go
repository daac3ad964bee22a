package aggregator

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

func TestBucketizeHourlySingleRecord(t *testing.T) {
	records := []types.CallRecord{
		answered("call-1", time.Date(2026, 10, 14, 14, 32, 0, 0, msk), 10, 120, "1", "1"),
	}

	series, err := Bucketize(records, types.GranularityHourly, refNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(series.Buckets))
	}

	for h, b := range series.Buckets {
		if h == 14 {
			if b.Label != "14:00" || b.Calls != 1 || b.Answered != 1 || b.Missed != 0 {
				t.Errorf("unexpected 14:00 bucket: %+v", b)
			}
			continue
		}
		if b.Calls != 0 || b.Answered != 0 || b.Missed != 0 {
			t.Errorf("expected empty bucket %s, got %+v", b.Label, b)
		}
	}
}

func TestBucketizeHourlyLabelsAndWindow(t *testing.T) {
	records := periodFixture()

	series, err := Bucketize(records, types.GranularityHourly, refNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Granularity != types.GranularityHourly {
		t.Errorf("expected hourly granularity, got %s", series.Granularity)
	}
	if series.Buckets[0].Label != "00:00" || series.Buckets[23].Label != "23:00" {
		t.Errorf("unexpected labels %s..%s", series.Buckets[0].Label, series.Buckets[23].Label)
	}
	if !series.Buckets[9].Start.Equal(time.Date(2026, 10, 14, 9, 0, 0, 0, msk)) {
		t.Errorf("unexpected bucket start %v", series.Buckets[9].Start)
	}

	// today-early (00:30), today-utc (01:30 local) and today-late (23:59)
	if got := series.TotalCalls(); got != 3 {
		t.Errorf("expected 3 calls in window, got %d", got)
	}
	if series.Buckets[0].Answered != 1 || series.Buckets[1].Missed != 1 || series.Buckets[23].Calls != 1 {
		t.Errorf("records placed in wrong hours: %+v %+v %+v",
			series.Buckets[0], series.Buckets[1], series.Buckets[23])
	}
}

func TestBucketizeDaily(t *testing.T) {
	records := periodFixture()

	series, err := Bucketize(records, types.GranularityDaily, refNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(series.Buckets))
	}

	wantLabels := []string{
		"2026-10-08", "2026-10-09", "2026-10-10", "2026-10-11",
		"2026-10-12", "2026-10-13", "2026-10-14",
	}
	for i, b := range series.Buckets {
		if b.Label != wantLabels[i] {
			t.Errorf("bucket %d: expected label %s, got %s", i, wantLabels[i], b.Label)
		}
	}

	// six-days lands in the oldest bucket; week-edge (10-07) is outside
	if series.Buckets[0].Calls != 1 {
		t.Errorf("expected 1 call on 10-08, got %d", series.Buckets[0].Calls)
	}
	if series.Buckets[5].Missed != 1 {
		t.Errorf("expected 1 missed call on 10-13, got %+v", series.Buckets[5])
	}
	if series.Buckets[6].Calls != 3 || series.Buckets[6].Answered != 2 || series.Buckets[6].Missed != 1 {
		t.Errorf("unexpected today bucket: %+v", series.Buckets[6])
	}
	if got := series.TotalCalls(); got != 5 {
		t.Errorf("expected 5 calls in window, got %d", got)
	}
}

func TestBucketizeIgnoresInputOrder(t *testing.T) {
	records := periodFixture()
	reversed := make([]types.CallRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	for _, g := range []types.Granularity{types.GranularityHourly, types.GranularityDaily} {
		a, err := Bucketize(records, g, refNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := Bucketize(reversed, g, refNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range a.Buckets {
			if a.Buckets[i] != b.Buckets[i] {
				t.Errorf("%s bucket %d differs: %+v vs %+v", g, i, a.Buckets[i], b.Buckets[i])
			}
		}
	}
}

func TestBucketizeEmptyInput(t *testing.T) {
	tests := []struct {
		granularity types.Granularity
		want        int
	}{
		{types.GranularityHourly, 24},
		{types.GranularityDaily, 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.granularity), func(t *testing.T) {
			series, err := Bucketize(nil, tt.granularity, refNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(series.Buckets) != tt.want {
				t.Errorf("expected %d buckets, got %d", tt.want, len(series.Buckets))
			}
			if series.TotalCalls() != 0 {
				t.Errorf("expected 0 calls, got %d", series.TotalCalls())
			}
		})
	}
}

func TestBucketizeInvalidArguments(t *testing.T) {
	if _, err := Bucketize(nil, "weekly", refNow); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown granularity, got %v", err)
	}
	if _, err := Bucketize(nil, types.GranularityDaily, time.Time{}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero time, got %v", err)
	}
}

func TestBucketizeHourlyAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	tests := []struct {
		name    string
		now     time.Time
		records []types.CallRecord
		want    map[int]int // hour -> calls
	}{
		{
			name: "spring forward skips 02:00",
			now:  time.Date(2026, 3, 29, 12, 0, 0, 0, berlin),
			records: []types.CallRecord{
				missed("before", time.Date(2026, 3, 29, 0, 30, 0, 0, time.UTC), 5, "1"),
				missed("after", time.Date(2026, 3, 29, 1, 30, 0, 0, time.UTC), 5, "1"),
			},
			want: map[int]int{1: 1, 3: 1},
		},
		{
			name: "fall back repeats 02:00",
			now:  time.Date(2026, 10, 25, 12, 0, 0, 0, berlin),
			records: []types.CallRecord{
				missed("first", time.Date(2026, 10, 25, 0, 30, 0, 0, time.UTC), 5, "1"),
				missed("second", time.Date(2026, 10, 25, 1, 30, 0, 0, time.UTC), 5, "1"),
			},
			want: map[int]int{2: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := Bucketize(tt.records, types.GranularityHourly, tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(series.Buckets) != 24 {
				t.Fatalf("expected 24 buckets, got %d", len(series.Buckets))
			}
			if got := series.TotalCalls(); got != len(tt.records) {
				t.Errorf("expected %d calls in total, got %d", len(tt.records), got)
			}
			for h, b := range series.Buckets {
				if b.Calls != tt.want[h] {
					t.Errorf("bucket %s: expected %d calls, got %d", b.Label, tt.want[h], b.Calls)
				}
				if h > 0 && b.Start.Before(series.Buckets[h-1].Start) {
					t.Errorf("bucket %s starts before bucket %s", b.Label, series.Buckets[h-1].Label)
				}
			}
		})
	}
}
