package ticker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/metrics"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/reports"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/rs/zerolog"
)

// MessageTypeDashboard tags live dashboard snapshots
const MessageTypeDashboard = "dashboard"

// LiveMessage is the envelope pushed to websocket clients
type LiveMessage struct {
	Type       string          `json:"type"`
	Timestamp  string          `json:"timestamp"`
	ServerTime int64           `json:"serverTime"`
	Data       types.Dashboard `json:"data"`
}

// Broadcaster accepts encoded messages for all connected clients
type Broadcaster interface {
	Broadcast(message []byte)
	ClientCount() int
}

// Publisher periodically recomputes today's dashboard and broadcasts it
type Publisher struct {
	hub      Broadcaster
	service  *reports.Service
	interval time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewPublisher creates a new Publisher. m may be nil.
func NewPublisher(hub Broadcaster, service *reports.Service, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Publisher {
	return &Publisher{
		hub:      hub,
		service:  service,
		interval: interval,
		metrics:  m,
		logger:   logger.With().Str("component", "publisher").Logger(),
	}
}

// Start publishes one snapshot immediately and then one per interval until
// ctx is cancelled
func (p *Publisher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.interval).Msg("publisher started")
	p.publish(ctx, p.service.Now())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("publisher stopped")
			return

		case <-ticker.C:
			p.publish(ctx, p.service.Now())
		}
	}
}

// publish computes and broadcasts one snapshot; errors are logged and the
// next tick tries again
func (p *Publisher) publish(ctx context.Context, now time.Time) {
	data, err := p.snapshot(ctx, now)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if p.metrics != nil {
			p.metrics.RecordLiveError()
		}
		p.logger.Error().Err(err).Msg("failed to compute live dashboard")
		return
	}

	p.hub.Broadcast(data)
	if p.metrics != nil {
		p.metrics.RecordLiveBroadcast()
	}
	p.logger.Debug().
		Int("clients", p.hub.ClientCount()).
		Int("bytes", len(data)).
		Msg("broadcasted dashboard")
}

func (p *Publisher) snapshot(ctx context.Context, now time.Time) ([]byte, error) {
	dashboard, err := p.service.Dashboard(ctx, reports.Query{Period: types.PeriodToday, Now: now})
	if err != nil {
		return nil, err
	}

	return json.Marshal(LiveMessage{
		Type:       MessageTypeDashboard,
		Timestamp:  now.Format(time.RFC3339),
		ServerTime: now.Unix(),
		Data:       dashboard,
	})
}
