package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata copies chi's request id and the caller's idempotency
// key into the context so backend calls forward them as headers.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderXIdempotencyKey)

		ctx := interceptors.WithRequestMeta(r.Context(), requestId, idempotencyKey)
		w.Header().Set(constants.HeaderXRequestId, requestId)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
