package http

import (
	"context"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

type ctxKeyUser struct{}

func withUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// userFromContext returns the user placed by Router.authenticated.
func userFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser{}).(domain.User)
	return u, ok
}
