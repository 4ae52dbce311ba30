package api

import (
	"bytes"
	"net/http"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/calllogs"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/middleware"
)

// CallLogHandlers serves the call intake record endpoints
type CallLogHandlers struct {
	service *calllogs.Service
}

// NewCallLogHandlers creates call log handlers
func NewCallLogHandlers(service *calllogs.Service) *CallLogHandlers {
	return &CallLogHandlers{service: service}
}

// Append handles POST /api/v1/call-logs
func (h *CallLogHandlers) Append(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req calllogs.AppendRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	entry, err := h.service.Append(ctx, middleware.GetIdentity(ctx), &req)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeCallLogAppend, "call log appended", map[string]interface{}{
		"entry_id": entry.ID,
		"outcome":  string(entry.Outcome),
	})
	httputil.WriteCreated(w, entry)
}

// List handles GET /api/v1/call-logs
func (h *CallLogHandlers) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out, err := h.service.List(ctx, middleware.GetIdentity(ctx))
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	if out == nil {
		out = []*calllogs.Entry{}
	}
	httputil.WriteSuccess(w, out)
}

// ExportCSV handles GET /api/v1/call-logs/export.
//
// The export is buffered so a store failure still yields a clean JSON error
// instead of a truncated download.
func (h *CallLogHandlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acting := middleware.GetIdentity(ctx)

	var buf bytes.Buffer
	if err := h.service.ExportCSV(ctx, acting, &buf); err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeCallLogExport, "call logs exported", nil)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="call-logs.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
