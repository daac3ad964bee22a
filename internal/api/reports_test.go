package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/aggregator"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/reports"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/storage"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

var msk = time.FixedZone("MSK", 3*60*60)

const testNow = "2026-10-14T15:00:00%2B03:00"

func record(id string, hour, minute, wait, talk int, queueID, agentID, caller string) types.CallRecord {
	start := time.Date(2026, 10, 14, hour, minute, 0, 0, msk)
	r := types.CallRecord{
		ID:           id,
		CallerNumber: caller,
		StartTime:    start,
		EndTime:      start.Add(time.Duration(wait+talk) * time.Second),
		WaitTime:     wait,
		TalkTime:     talk,
		QueueID:      queueID,
		AgentID:      agentID,
		Status:       types.CallStatusAnswered,
	}
	if agentID == "" {
		r.Status = types.CallStatusMissed
	}
	return r
}

func testRecords() []types.CallRecord {
	return []types.CallRecord{
		record("a1", 9, 0, 5, 60, "1", "1", "+79000000001"),
		record("a2", 9, 30, 10, 120, "1", "1", "+79000000002"),
		record("a3", 10, 0, 15, 90, "2", "2", "+79000000003"),
		record("a4", 11, 0, 20, 200, "2", "3", "+79000000004"),
		record("a5", 12, 0, 25, 150, "1", "1", "+79000000005"),
		record("a6", 13, 0, 30, 80, "3", "3", "+79000000006"),
		record("a7", 14, 0, 18, 100, "1", "2", "+79000000007"),
		record("m1", 9, 15, 40, 0, "1", "", "+79001110001"),
		record("m2", 13, 30, 50, 0, "2", "", "+79002220002"),
		record("m3", 14, 30, 60, 0, "1", "", "+79003330003"),
	}
}

func newTestRouter(t *testing.T, store storage.Store) chi.Router {
	t.Helper()
	svc := reports.NewService(store, aggregator.New(aggregator.DefaultServiceLevelSecs), msk, nil, zerolog.Nop())
	h := NewReportHandler(svc, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api/reports", h.Routes)
	return r
}

func seededStore(t *testing.T, records []types.CallRecord) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore(storage.FixtureDirectory())
	for _, rec := range records {
		if err := store.SaveCallRecord(context.Background(), rec); err != nil {
			t.Fatalf("failed to seed %s: %v", rec.ID, err)
		}
	}
	return store
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
}

func TestGetKPIs(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	rec := get(t, router, "/api/reports/kpis?period=today&now="+testNow)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var got types.KPISummary
	decode(t, rec, &got)
	want := types.KPISummary{TotalCalls: 10, AnsweredCount: 7, MissedCount: 3, AvgWaitTime: 27, AvgTalkTime: 114, ServiceLevel: 50, AnswerRate: 70}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestGetKPIsDefaultsToToday(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	rec := get(t, router, "/api/reports/kpis?now="+testNow)
	var got types.KPISummary
	decode(t, rec, &got)
	if got.TotalCalls != 10 {
		t.Errorf("expected today's 10 calls, got %d", got.TotalCalls)
	}

	// yesterday holds nothing
	rec = get(t, router, "/api/reports/kpis?period=yesterday&now="+testNow)
	decode(t, rec, &got)
	if got != (types.KPISummary{}) {
		t.Errorf("expected zero summary, got %+v", got)
	}
}

func TestBadRequests(t *testing.T) {
	router := newTestRouter(t, seededStore(t, nil))

	tests := []struct {
		name   string
		target string
	}{
		{"unknown period", "/api/reports/kpis?period=quarter"},
		{"malformed now", "/api/reports/kpis?now=yesterday"},
		{"unknown granularity", "/api/reports/chart?granularity=weekly"},
		{"unknown sort key", "/api/reports/operators?sort=salary"},
		{"unknown order", "/api/reports/queues?order=sideways"},
		{"unknown export kind", "/api/reports/agents/export"},
		{"unknown export format", "/api/reports/operators/export?format=pdf"},
		{"xlsx for missed calls", "/api/reports/missed/export?format=xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			var body map[string]string
			decode(t, rec, &body)
			if body["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestStorageFailureIs500(t *testing.T) {
	router := newTestRouter(t, brokenStore{})

	rec := get(t, router, "/api/reports/dashboard?now="+testNow)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "failed to compute dashboard report" {
		t.Errorf("unexpected error body %q", body["error"])
	}
}

func TestGetChart(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	rec := get(t, router, "/api/reports/chart?now="+testNow)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var series types.BucketSeries
	decode(t, rec, &series)
	if series.Granularity != types.GranularityHourly || len(series.Buckets) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %s/%d", series.Granularity, len(series.Buckets))
	}
	if b := series.Buckets[14]; b.Label != "14:00" || b.Calls != 2 || b.Answered != 1 || b.Missed != 1 {
		t.Errorf("unexpected 14:00 bucket %+v", b)
	}

	rec = get(t, router, "/api/reports/chart?granularity=daily&now="+testNow)
	decode(t, rec, &series)
	if len(series.Buckets) != 7 || series.Buckets[6].Calls != 10 {
		t.Errorf("unexpected daily series %+v", series)
	}
}

func TestGetOperators(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"directory order", "", []string{"1", "2", "3", "4", "5"}},
		{"group filter", "&group=2", []string{"3", "4"}},
		{"name search", "&q=IVAN", []string{"1"}},
		{"sort by talk time desc", "&sort=avgTalkTime&order=desc", []string{"3", "1", "2", "4", "5"}},
		{"sort by name", "&sort=name", []string{"3", "5", "4", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, "/api/reports/operators?now="+testNow+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			var got []types.OperatorReport
			decode(t, rec, &got)

			ids := make([]string, 0, len(got))
			for _, op := range got {
				ids = append(ids, op.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("expected %v, got %v", tt.wantIDs, ids)
			}
		})
	}
}

func TestGetQueues(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	rec := get(t, router, "/api/reports/queues?sort=totalCalls&order=desc&now="+testNow)
	var got []types.QueueReport
	decode(t, rec, &got)
	if len(got) != 4 {
		t.Fatalf("expected 4 queues, got %d", len(got))
	}
	if got[0].Name != "Main queue" || got[0].TotalCalls != 6 || got[0].AnswerRate != 67 {
		t.Errorf("unexpected busiest queue %+v", got[0])
	}
	if got[3].TotalCalls != 0 {
		t.Errorf("expected an idle queue last, got %+v", got[3])
	}
}

func TestGetMissed(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"newest first", "", []string{"m3", "m2", "m1"}},
		{"queue filter", "&queue=1", []string{"m3", "m1"}},
		{"caller search", "&q=222", []string{"m2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, "/api/reports/missed?now="+testNow+tt.query)
			var got []types.MissedCall
			decode(t, rec, &got)

			ids := make([]string, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("expected %v, got %v", tt.wantIDs, ids)
			}
		})
	}
}

func TestGetMissedUnknownQueue(t *testing.T) {
	records := append(testRecords(), record("orphan", 10, 30, 12, 0, "99", "", "+79009999999"))
	router := newTestRouter(t, seededStore(t, records))

	rec := get(t, router, "/api/reports/missed?q=999999&now="+testNow)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var got []types.MissedCall
	decode(t, rec, &got)
	if len(got) != 1 || got[0].QueueName != types.UnknownQueueLabel {
		t.Errorf("expected orphan call with sentinel queue name, got %+v", got)
	}
}

func TestGetDashboard(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	rec := get(t, router, "/api/reports/dashboard?now="+testNow)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var got types.Dashboard
	decode(t, rec, &got)
	if got.Period != types.PeriodToday || got.KPIs.TotalCalls != 10 {
		t.Errorf("unexpected dashboard %+v", got)
	}
	if got.Presence == nil || got.Presence.Online != 3 {
		t.Errorf("unexpected presence %+v", got.Presence)
	}
}

func TestExportCSV(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	rec := get(t, router, "/api/reports/operators/export?group=1&now="+testNow)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="operator_report_2026-10-14.csv"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	want := "Name,Group,Total Calls,Answered,Missed,Avg Talk Time,Efficiency\n" +
		"Petr Ivanov,Support group,3,3,0,1:50,100%\n" +
		"Maria Sidorova,Support group,2,2,0,1:35,100%\n"
	if rec.Body.String() != want {
		t.Errorf("unexpected csv:\n%s", rec.Body.String())
	}

	rec = get(t, router, "/api/reports/missed/export?now="+testNow)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 4 || lines[1] != "+79003330003,Main queue,2026-10-14 14:30:00,1:00" {
		t.Errorf("unexpected missed csv %q", lines)
	}
}

func TestExportXLSX(t *testing.T) {
	router := newTestRouter(t, seededStore(t, testRecords()))

	rec := get(t, router, "/api/reports/queues/export?format=xlsx&now="+testNow)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="queue_report_2026-10-14.xlsx"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Queues")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 5 || rows[1][0] != "Main queue" || rows[1][1] != "6" {
		t.Errorf("unexpected rows %v", rows)
	}
}

type brokenStore struct{}

func (brokenStore) GetCallRecords(context.Context, time.Time, time.Time) ([]types.CallRecord, error) {
	return nil, context.DeadlineExceeded
}

func (brokenStore) SaveCallRecord(context.Context, types.CallRecord) error {
	return context.DeadlineExceeded
}

func (brokenStore) GetDirectory(context.Context) (types.Directory, error) {
	return types.Directory{}, context.DeadlineExceeded
}

func (brokenStore) SaveDirectory(context.Context, types.Directory) error {
	return context.DeadlineExceeded
}
