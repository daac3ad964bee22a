package ticker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/aggregator"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/metrics"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/reports"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/storage"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

var msk = time.FixedZone("MSK", 3*60*60)

var refNow = time.Date(2026, 10, 14, 15, 0, 0, 0, msk)

// fakeHub records broadcasts
type fakeHub struct {
	mu       sync.Mutex
	messages [][]byte
}

func (h *fakeHub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message)
}

func (h *fakeHub) ClientCount() int { return 0 }

func (h *fakeHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

type downStore struct{ *storage.MemoryStore }

func (downStore) GetCallRecords(context.Context, time.Time, time.Time) ([]types.CallRecord, error) {
	return nil, errors.New("dynamodb unavailable")
}

func newService(t *testing.T, store storage.Store) *reports.Service {
	t.Helper()
	return reports.NewService(store, aggregator.New(aggregator.DefaultServiceLevelSecs), msk, nil, zerolog.Nop())
}

func seeded(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore(storage.FixtureDirectory())
	records := []types.CallRecord{
		{ID: "a1", StartTime: refNow.Add(-time.Hour), WaitTime: 12, TalkTime: 90, QueueID: "1", AgentID: "1", Status: types.CallStatusAnswered},
		{ID: "m1", StartTime: refNow.Add(-30 * time.Minute), WaitTime: 70, QueueID: "2", Status: types.CallStatusMissed},
	}
	for _, r := range records {
		if err := store.SaveCallRecord(context.Background(), r); err != nil {
			t.Fatalf("failed to seed %s: %v", r.ID, err)
		}
	}
	return store
}

func TestNewPublisher(t *testing.T) {
	hub := &fakeHub{}
	p := NewPublisher(hub, newService(t, seeded(t)), time.Second, nil, zerolog.Nop())

	if p == nil {
		t.Fatal("expected publisher to be created")
	}
	if p.interval != time.Second {
		t.Errorf("expected interval 1s, got %v", p.interval)
	}
}

func TestPublishBroadcastsDashboard(t *testing.T) {
	hub := &fakeHub{}
	m := metrics.New()
	p := NewPublisher(hub, newService(t, seeded(t)), time.Second, m, zerolog.Nop())

	p.publish(context.Background(), refNow)

	if hub.count() != 1 {
		t.Fatalf("expected 1 broadcast, got %d", hub.count())
	}

	var msg LiveMessage
	if err := json.Unmarshal(hub.messages[0], &msg); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if msg.Type != MessageTypeDashboard {
		t.Errorf("expected type dashboard, got %s", msg.Type)
	}
	if msg.Timestamp != "2026-10-14T15:00:00+03:00" || msg.ServerTime != refNow.Unix() {
		t.Errorf("unexpected timestamp %s / %d", msg.Timestamp, msg.ServerTime)
	}
	if msg.Data.Period != types.PeriodToday || msg.Data.KPIs.TotalCalls != 2 || msg.Data.KPIs.AnswerRate != 50 {
		t.Errorf("unexpected dashboard %+v", msg.Data.KPIs)
	}
	if msg.Data.Presence == nil || msg.Data.Presence.Total != 5 {
		t.Errorf("expected presence for 5 operators, got %+v", msg.Data.Presence)
	}
	if got := testutil.ToFloat64(m.LiveBroadcasts()); got != 1 {
		t.Errorf("expected 1 live broadcast recorded, got %v", got)
	}
}

func TestPublishSkipsOnStoreError(t *testing.T) {
	hub := &fakeHub{}
	m := metrics.New()
	store := downStore{storage.NewMemoryStore(storage.FixtureDirectory())}
	p := NewPublisher(hub, newService(t, store), time.Second, m, zerolog.Nop())

	p.publish(context.Background(), refNow)

	if hub.count() != 0 {
		t.Errorf("expected no broadcast, got %d", hub.count())
	}
	if got := testutil.ToFloat64(m.LiveErrors()); got != 1 {
		t.Errorf("expected 1 live error recorded, got %v", got)
	}
}

func TestPublisherStartAndStop(t *testing.T) {
	hub := &fakeHub{}
	p := NewPublisher(hub, newService(t, seeded(t)), 20*time.Millisecond, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		p.Start(ctx)
		done <- true
	}()

	// Let it run for a few ticks
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop within timeout after context cancel")
	}

	if hub.count() < 2 {
		t.Errorf("expected an immediate snapshot plus ticks, got %d broadcasts", hub.count())
	}
}
