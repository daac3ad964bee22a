package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/reports"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ReportHandler provides read-only REST endpoints for call center reports
type ReportHandler struct {
	service *reports.Service
	logger  zerolog.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reports.Service, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Routes mounts the report endpoints on r
func (h *ReportHandler) Routes(r chi.Router) {
	r.Get("/kpis", h.GetKPIs)
	r.Get("/chart", h.GetChart)
	r.Get("/operators", h.GetOperators)
	r.Get("/queues", h.GetQueues)
	r.Get("/missed", h.GetMissed)
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/{kind}/export", h.Export)
}

// GetKPIs returns the KPI summary of a period
// GET /api/reports/kpis?period=today
func (h *ReportHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.writeError(w, err, "kpis")
		return
	}

	summary, err := h.service.KPIs(r.Context(), q)
	if err != nil {
		h.writeError(w, err, "kpis")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetChart returns an hourly or daily chart series
// GET /api/reports/chart?granularity=hourly
func (h *ReportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	now, err := h.parseNow(r)
	if err != nil {
		h.writeError(w, err, "chart")
		return
	}

	raw := r.URL.Query().Get("granularity")
	if raw == "" {
		raw = string(types.GranularityHourly)
	}
	granularity, err := types.ParseGranularity(raw)
	if err != nil {
		h.writeError(w, err, "chart")
		return
	}

	series, err := h.service.Chart(r.Context(), granularity, now)
	if err != nil {
		h.writeError(w, err, "chart")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// GetOperators returns per-operator KPIs
// GET /api/reports/operators?period=week&group=1&q=ivan&sort=efficiency&order=desc
func (h *ReportHandler) GetOperators(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.writeError(w, err, "operators")
		return
	}
	opts, err := parseListOptions(r, operatorSortKeys)
	if err != nil {
		h.writeError(w, err, "operators")
		return
	}

	list, err := h.service.Operators(r.Context(), q)
	if err != nil {
		h.writeError(w, err, "operators")
		return
	}
	writeJSON(w, http.StatusOK, filterOperators(list, opts))
}

// GetQueues returns per-queue KPIs
// GET /api/reports/queues?period=today&sort=serviceLevel
func (h *ReportHandler) GetQueues(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.writeError(w, err, "queues")
		return
	}
	opts, err := parseListOptions(r, queueSortKeys)
	if err != nil {
		h.writeError(w, err, "queues")
		return
	}

	list, err := h.service.Queues(r.Context(), q)
	if err != nil {
		h.writeError(w, err, "queues")
		return
	}
	writeJSON(w, http.StatusOK, filterQueues(list, opts))
}

// GetMissed returns missed calls, newest first
// GET /api/reports/missed?period=today&queue=1&q=900
func (h *ReportHandler) GetMissed(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.writeError(w, err, "missed")
		return
	}
	opts, err := parseListOptions[types.MissedCall](r, nil)
	if err != nil {
		h.writeError(w, err, "missed")
		return
	}

	list, err := h.service.Missed(r.Context(), q)
	if err != nil {
		h.writeError(w, err, "missed")
		return
	}
	writeJSON(w, http.StatusOK, filterMissed(list, opts))
}

// GetDashboard returns the overview payload
// GET /api/reports/dashboard?period=today
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.writeError(w, err, "dashboard")
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), q)
	if err != nil {
		h.writeError(w, err, "dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *ReportHandler) parseQuery(r *http.Request) (reports.Query, error) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(types.PeriodToday)
	}
	period, err := types.ParsePeriod(raw)
	if err != nil {
		return reports.Query{}, err
	}

	now, err := h.parseNow(r)
	if err != nil {
		return reports.Query{}, err
	}
	return reports.Query{Period: period, Now: now}, nil
}

// parseNow honours an explicit ?now= for reproducible reports
func (h *ReportHandler) parseNow(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return h.service.Now(), nil
	}
	now, err := types.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, err
	}
	return now.In(h.service.Location()), nil
}

// writeError maps invalid arguments to 400 and everything else to 500
func (h *ReportHandler) writeError(w http.ResponseWriter, err error, kind string) {
	if errors.Is(err, types.ErrInvalidArgument) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.logger.Error().Err(err).Str("report", kind).Msg("failed to compute report")
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": fmt.Sprintf("failed to compute %s report", kind),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
