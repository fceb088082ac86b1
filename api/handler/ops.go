package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/api/transport"
	"github.com/servicepulse/datalayer/domain"
	"github.com/servicepulse/datalayer/internal/monitor"
	"github.com/servicepulse/datalayer/pkg/httpcontext"
	"github.com/servicepulse/datalayer/usecase/coordinator"
)

// OpsHandler exposes health, export and event-logging endpoints.
type OpsHandler struct {
	baseHandler
	coord   *coordinator.Coordinator
	monitor *monitor.Monitor
}

func NewOpsHandler(coord *coordinator.Coordinator, mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coord:       coord,
		monitor:     mon,
	}
}

// Health handles GET /health from the monitor's cached snapshot.
func (h *OpsHandler) Health(ctx *fasthttp.RequestCtx) {
	status := h.monitor.Status()
	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, status)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError(domain.ErrCodeUnavailable, "one or more stores unhealthy", status))
}

// Export handles GET /api/v1/export.
func (h *OpsHandler) Export(ctx *fasthttp.RequestCtx) {
	opts := parseExportOptions(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.coord.Export(stdCtx, opts)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

func parseExportOptions(ctx *fasthttp.RequestCtx) domain.ExportOptions {
	args := ctx.QueryArgs()
	opts := domain.ExportOptions{
		IncludeUsers:    args.GetBool("users"),
		IncludeTickets:  args.GetBool("tickets"),
		IncludeArticles: args.GetBool("kb"),
	}

	from := parseTime(args.Peek("from"))
	to := parseTime(args.Peek("to"))
	if from != nil || to != nil {
		opts.TimeRange = &domain.TimeRange{From: from, To: to}
	}
	return opts
}

// LogEvent handles POST /api/v1/events. It always answers 202: event
// logging never fails the caller.
func (h *OpsHandler) LogEvent(ctx *fasthttp.RequestCtx) {
	var event domain.LogEvent
	if err := json.Unmarshal(ctx.PostBody(), &event); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.coord.LogEvent(stdCtx, event)
	h.respondSuccess(ctx, http.StatusAccepted, nil)
}
