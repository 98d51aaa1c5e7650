package http

import (
	"context"

	"github.com/cataloghq/catalog/internal/catalog/domain"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// WithPrincipal attaches the authenticated identity to the context.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the authenticated identity, if any. The second
// return is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(domain.Principal)
	return p, ok
}
