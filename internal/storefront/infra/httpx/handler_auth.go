package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/service"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.Registration
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	if _, err := h.accounts.Register(r.Context(), req); err != nil {
		status := http.StatusBadGateway
		if service.IsClientError(err) || service.IsUnauthorized(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "registration_failed", "Registration failed. Try again.")
		return
	}

	if !rotate(w, r) {
		return
	}
	h.toast(h.session(r), "Registration successful! Please login.", entity.ToastSuccess)
	writeJSON(w, http.StatusCreated, MessageResponse{
		Message:  "Registration successful! Please login.",
		Redirect: "/login",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.Credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	res, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		if service.IsUnauthorized(err) || service.IsClientError(err) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
			return
		}
		writeError(w, http.StatusBadGateway, "backend_error", "Invalid email or password")
		return
	}

	if !rotate(w, r) {
		return
	}
	s := h.session(r)
	s.Login(*res, req.Email)
	h.toast(s, "Welcome back!", entity.ToastSuccess)

	r = r.WithContext(middlewares.WithSession(r.Context(), s))
	out := h.sessionResponse(r, s)
	out.Redirect = "/products"
	writeJSON(w, http.StatusOK, out)
}

// Logout clears the credentials and retires the session id; pending toasts
// carry over to the new one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session(r).Logout()
	if !rotate(w, r) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func rotate(w http.ResponseWriter, r *http.Request) bool {
	if err := middlewares.RotateSession(w, r); err != nil {
		slog.ErrorContext(r.Context(), "session rotation failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "session_unavailable", "Session store unavailable")
		return false
	}
	return true
}
