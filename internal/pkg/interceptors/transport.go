package interceptors

import (
	"net/http"

	"github.com/jcmexdev/storefront/internal/pkg/interceptors/constants"
)

// PropagatingTransport copies request metadata and the caller's token from
// the outgoing request's context into HTTP headers, the REST equivalent of
// appending gRPC outgoing metadata.
type PropagatingTransport struct {
	Base http.RoundTripper
}

func NewPropagatingTransport(base http.RoundTripper) *PropagatingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &PropagatingTransport{Base: base}
}

func (t *PropagatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)

	if id := RequestID(ctx); id != "" && out.Header.Get(constants.HeaderXRequestId) == "" {
		out.Header.Set(constants.HeaderXRequestId, id)
	}
	if key := IdempotencyKey(ctx); key != "" && out.Header.Get(constants.HeaderXIdempotencyKey) == "" {
		out.Header.Set(constants.HeaderXIdempotencyKey, key)
	}
	if token := AuthToken(ctx); token != "" && out.Header.Get(constants.HeaderAuthorization) == "" {
		out.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	return t.Base.RoundTrip(out)
}
