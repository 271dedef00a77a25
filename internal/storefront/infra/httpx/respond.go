package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/service"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// publicMessage is the backend's human-readable reason, or "".
func publicMessage(err error) string {
	var pm interface{ PublicMessage() string }
	if errors.As(err, &pm) {
		return pm.PublicMessage()
	}
	return ""
}

const sessionExpiredToast = "Session expired or permission denied. Please login again."

// backendError maps a failed backend call onto the response. A 401/403 also
// queues the session-expired warning; failToast, when set, is queued as a
// danger toast for any other failure.
func (h *Handler) backendError(w http.ResponseWriter, r *http.Request, s *entity.Session, err error, failToast string) {
	switch {
	case service.IsUnauthorized(err):
		h.toast(s, sessionExpiredToast, entity.ToastWarning)
		writeError(w, http.StatusUnauthorized, "unauthorized", sessionExpiredToast)
		return
	case service.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", fallback(publicMessage(err), "Not found"))
		return
	}

	if failToast != "" {
		h.toast(s, failToast, entity.ToastDanger)
	}
	if service.IsClientError(err) {
		writeError(w, http.StatusBadRequest, "rejected", fallback(publicMessage(err), failToast))
		return
	}
	slog.ErrorContext(r.Context(), "backend call failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusBadGateway, "backend_error", fallback(publicMessage(err), failToast))
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
