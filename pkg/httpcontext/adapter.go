package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/servicepulse/datalayer/domain"
	appLogger "github.com/servicepulse/datalayer/pkg/logger"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context carrying a
// deadline, a request id and the audit context of the acting user.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and
// enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	stdCtx = domain.WithAuditContext(stdCtx, AuditContext(ctx))
	return stdCtx, cancel
}

// AuditContext extracts the acting user's identity and network origin from
// the request. The actor id is stamped by the auth middleware.
func AuditContext(ctx *fasthttp.RequestCtx) domain.AuditContext {
	audit := domain.AuditContext{
		ActorID:   string(ctx.Request.Header.Peek("X-User-ID")),
		UserAgent: string(ctx.Request.Header.UserAgent()),
	}
	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		audit.RemoteAddr = remoteAddr.String()
	}
	return audit
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}
