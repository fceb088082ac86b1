package domain

import "context"

// AuditContext identifies the acting user for audit-log completeness.
// Controllers fill it from their auth layer; an empty context is allowed
// for system-initiated mutations.
type AuditContext struct {
	ActorID    string `json:"actor_id,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

type auditCtxKey struct{}

// WithAuditContext attaches the acting user to the call context so adapter
// middleware can stamp audit records without widening every signature.
func WithAuditContext(ctx context.Context, audit AuditContext) context.Context {
	return context.WithValue(ctx, auditCtxKey{}, audit)
}

// AuditContextFrom extracts the acting user, if any, from the call context.
func AuditContextFrom(ctx context.Context) AuditContext {
	if ctx == nil {
		return AuditContext{}
	}
	if audit, ok := ctx.Value(auditCtxKey{}).(AuditContext); ok {
		return audit
	}
	return AuditContext{}
}
