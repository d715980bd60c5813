package middleware

import (
	"context"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/requestctx"
)

type ctxKey string

const (
	ctxKeyUser     ctxKey = "user"
	ctxKeyTokenErr ctxKey = "token_error"
)

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}

func tokenError(ctx context.Context) *auth.TokenError {
	err, _ := ctx.Value(ctxKeyTokenErr).(*auth.TokenError)
	return err
}
