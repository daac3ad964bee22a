package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/export"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/reports"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/go-chi/chi/v5"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

// Export streams a report as a file download
// GET /api/reports/{kind}/export?format=csv&period=today
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	q, err := h.parseQuery(r)
	if err != nil {
		h.writeError(w, err, kind)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = formatCSV
	}
	if format != formatCSV && format != formatXLSX {
		h.writeError(w, fmt.Errorf("unknown export format %q: %w", format, types.ErrInvalidArgument), kind)
		return
	}

	// Render into a buffer first so a failure can still become a JSON error
	var buf bytes.Buffer
	fileKind, err := h.render(r, &buf, kind, format, q)
	if err != nil {
		h.writeError(w, err, kind)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == formatXLSX {
		contentType = export.XLSXContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(fileKind, q.Now, format)))
	w.WriteHeader(http.StatusOK)
	size := buf.Len()
	buf.WriteTo(w)

	h.logger.Debug().Str("report", kind).Str("format", format).Int("bytes", size).Msg("report exported")
}

func (h *ReportHandler) render(r *http.Request, buf *bytes.Buffer, kind, format string, q reports.Query) (string, error) {
	switch kind {
	case reports.KindOperators:
		opts, err := parseListOptions(r, operatorSortKeys)
		if err != nil {
			return "", err
		}
		list, err := h.service.Operators(r.Context(), q)
		if err != nil {
			return "", err
		}
		list = filterOperators(list, opts)
		if format == formatXLSX {
			return export.KindOperator, export.WriteOperatorXLSX(buf, list)
		}
		return export.KindOperator, export.WriteOperatorCSV(buf, list)

	case reports.KindQueues:
		opts, err := parseListOptions(r, queueSortKeys)
		if err != nil {
			return "", err
		}
		list, err := h.service.Queues(r.Context(), q)
		if err != nil {
			return "", err
		}
		list = filterQueues(list, opts)
		if format == formatXLSX {
			return export.KindQueue, export.WriteQueueXLSX(buf, list)
		}
		return export.KindQueue, export.WriteQueueCSV(buf, list)

	case reports.KindMissed:
		if format == formatXLSX {
			return "", fmt.Errorf("missed calls export supports csv only: %w", types.ErrInvalidArgument)
		}
		opts, err := parseListOptions[types.MissedCall](r, nil)
		if err != nil {
			return "", err
		}
		list, err := h.service.Missed(r.Context(), q)
		if err != nil {
			return "", err
		}
		return export.KindMissed, export.WriteMissedCSV(buf, filterMissed(list, opts), h.service.Location())
	}
	return "", fmt.Errorf("unknown report kind %q: %w", kind, types.ErrInvalidArgument)
}
