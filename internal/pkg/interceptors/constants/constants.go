package constants

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const (
	HeaderXRequestId      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"
	HeaderAuthorization   = "Authorization"

	// ContextKeyRequestID is the context key for the request ID.
	ContextKeyRequestID contextKey = "x-request-id"
	// ContextKeyIdempotencyKey is the context key for the idempotency key.
	ContextKeyIdempotencyKey contextKey = "x-idempotency-key"
	// ContextKeyAuthToken carries the caller's backend bearer token.
	ContextKeyAuthToken contextKey = "auth-token"
)
