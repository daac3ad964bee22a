package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/metrics"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/storage"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/rs/zerolog"
)

// Receiver accepts completed call records from the telephony side and
// persists them
type Receiver struct {
	store         storage.Store
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	callsReceived int64
	lastReceived  time.Time
	mu            sync.RWMutex
}

// NewReceiver creates a new call record receiver. m may be nil.
func NewReceiver(store storage.Store, m *metrics.Metrics, logger zerolog.Logger) *Receiver {
	return &Receiver{
		store:   store,
		metrics: m,
		logger:  logger.With().Str("component", "call_receiver").Logger(),
	}
}

// HandleCall receives a single completed call
// POST /internal/calls
func (r *Receiver) HandleCall(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var record types.CallRecord
	if err := json.NewDecoder(req.Body).Decode(&record); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode call record")
		r.recordError()
		http.Error(w, "invalid call record", http.StatusBadRequest)
		return
	}

	if err := r.store.SaveCallRecord(req.Context(), record); err != nil {
		r.recordError()
		if errors.Is(err, types.ErrInvalidArgument) {
			r.logger.Warn().Err(err).Str("call_id", record.ID).Msg("rejected call record")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		r.logger.Error().Err(err).Str("call_id", record.ID).Msg("failed to save call record")
		http.Error(w, "failed to save call record", http.StatusInternalServerError)
		return
	}

	if r.metrics != nil {
		r.metrics.RecordCallIngested()
	}

	// Update stats
	count := atomic.AddInt64(&r.callsReceived, 1)
	r.mu.Lock()
	r.lastReceived = time.Now()
	r.mu.Unlock()

	// Log periodically
	if count%1000 == 0 {
		r.logger.Info().Int64("total_received", count).Msg("call records received")
	}

	w.WriteHeader(http.StatusAccepted)
}

// GetStats returns receiver statistics
// GET /internal/calls/stats
func (r *Receiver) GetStats(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	lastReceived := r.lastReceived
	r.mu.RUnlock()

	stats := map[string]interface{}{
		"calls_received": atomic.LoadInt64(&r.callsReceived),
		"last_received":  lastReceived,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (r *Receiver) recordError() {
	if r.metrics != nil {
		r.metrics.RecordIngestError()
	}
}
