package interceptors

import (
	"context"

	"github.com/jcmexdev/storefront/internal/pkg/interceptors/constants"
)

// WithRequestMeta stores the request id and idempotency key so they can be
// forwarded to backend calls made while serving the request.
func WithRequestMeta(ctx context.Context, requestID, idempotencyKey string) context.Context {
	ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestID)
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)
}

// WithAuthToken stores the bearer token forwarded to the backend.
func WithAuthToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyAuthToken, token)
}

func RequestID(ctx context.Context) string {
	return stringValue(ctx, constants.ContextKeyRequestID)
}

func IdempotencyKey(ctx context.Context) string {
	return stringValue(ctx, constants.ContextKeyIdempotencyKey)
}

func AuthToken(ctx context.Context) string {
	return stringValue(ctx, constants.ContextKeyAuthToken)
}

func stringValue(ctx context.Context, key any) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
