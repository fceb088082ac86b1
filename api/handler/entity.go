package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
	"github.com/servicepulse/datalayer/pkg/httpcontext"
	"github.com/servicepulse/datalayer/usecase/coordinator"
)

// EntityHandler exposes the coordinator's entity mutations.
type EntityHandler struct {
	baseHandler
	coord *coordinator.Coordinator
}

func NewEntityHandler(coord *coordinator.Coordinator, adapter *httpcontext.Adapter, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coord:       coord,
	}
}

// CreateUser handles POST /api/v1/users.
func (h *EntityHandler) CreateUser(ctx *fasthttp.RequestCtx) {
	var user domain.User
	if err := json.Unmarshal(ctx.PostBody(), &user); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	audit := httpcontext.AuditContext(ctx)
	created, err := h.coord.CreateUser(stdCtx, &user, &audit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// UpdateUser handles PUT /api/v1/users/{id}.
func (h *EntityHandler) UpdateUser(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)

	var patch domain.UserUpdate
	if err := json.Unmarshal(ctx.PostBody(), &patch); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	audit := httpcontext.AuditContext(ctx)
	updated, err := h.coord.UpdateUser(stdCtx, id, patch, &audit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// CreateTicket handles POST /api/v1/tickets.
func (h *EntityHandler) CreateTicket(ctx *fasthttp.RequestCtx) {
	var ticket domain.Ticket
	if err := json.Unmarshal(ctx.PostBody(), &ticket); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	audit := httpcontext.AuditContext(ctx)
	if ticket.UserID == "" {
		ticket.UserID = audit.ActorID
	}
	created, err := h.coord.CreateTicket(stdCtx, &ticket, &audit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// UpdateTicket handles PUT /api/v1/tickets/{id}.
func (h *EntityHandler) UpdateTicket(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)

	var patch domain.TicketUpdate
	if err := json.Unmarshal(ctx.PostBody(), &patch); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	audit := httpcontext.AuditContext(ctx)
	updated, err := h.coord.UpdateTicket(stdCtx, id, patch, &audit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// CreateArticle handles POST /api/v1/kb/articles.
func (h *EntityHandler) CreateArticle(ctx *fasthttp.RequestCtx) {
	var article domain.Article
	if err := json.Unmarshal(ctx.PostBody(), &article); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	audit := httpcontext.AuditContext(ctx)
	if article.AuthorID == "" {
		article.AuthorID = audit.ActorID
	}
	created, err := h.coord.CreateArticle(stdCtx, &article, &audit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// UpdateArticle handles PUT /api/v1/kb/articles/{id}.
func (h *EntityHandler) UpdateArticle(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)

	var patch domain.ArticleUpdate
	if err := json.Unmarshal(ctx.PostBody(), &patch); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	audit := httpcontext.AuditContext(ctx)
	updated, err := h.coord.UpdateArticle(stdCtx, id, patch, &audit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}
