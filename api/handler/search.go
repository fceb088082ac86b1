package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
	"github.com/servicepulse/datalayer/pkg/httpcontext"
	"github.com/servicepulse/datalayer/usecase/coordinator"
)

// SearchHandler exposes the coordinator's unified search.
type SearchHandler struct {
	baseHandler
	coord *coordinator.Coordinator
}

func NewSearchHandler(coord *coordinator.Coordinator, adapter *httpcontext.Adapter, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coord:       coord,
	}
}

// Tickets handles GET /api/v1/search/tickets.
func (h *SearchHandler) Tickets(ctx *fasthttp.RequestCtx) {
	query, filters, opts := parseSearchRequest(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	audit := httpcontext.AuditContext(ctx)
	result, err := h.coord.SearchTickets(stdCtx, query, filters, opts, &audit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// KnowledgeBase handles GET /api/v1/search/knowledge-base.
func (h *SearchHandler) KnowledgeBase(ctx *fasthttp.RequestCtx) {
	query, filters, opts := parseSearchRequest(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	audit := httpcontext.AuditContext(ctx)
	result, err := h.coord.SearchArticles(stdCtx, query, filters, opts, &audit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

func parseSearchRequest(ctx *fasthttp.RequestCtx) (string, domain.SearchFilters, domain.SearchOptions) {
	args := ctx.QueryArgs()

	filters := domain.SearchFilters{
		Status:     string(args.Peek("status")),
		Priority:   string(args.Peek("priority")),
		Category:   string(args.Peek("category")),
		UserID:     string(args.Peek("user_id")),
		AssigneeID: string(args.Peek("assignee_id")),
		AuthorID:   string(args.Peek("author_id")),
		Visibility: string(args.Peek("visibility")),
	}
	if tags := string(args.Peek("tags")); tags != "" {
		filters.Tags = strings.Split(tags, ",")
	}
	if from := parseTime(args.Peek("from")); from != nil {
		filters.From = from
	}
	if to := parseTime(args.Peek("to")); to != nil {
		filters.To = to
	}

	opts := domain.SearchOptions{
		Page:     parseInt(args.Peek("page")),
		PageSize: parseInt(args.Peek("page_size")),
		Sort:     string(args.Peek("sort")),
	}

	return string(args.Peek("q")), filters, opts
}

func parseInt(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return n
}

func parseTime(raw []byte) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	t, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return nil
	}
	return &t
}
