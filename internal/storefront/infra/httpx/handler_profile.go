package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/paymentmethods"
)

// Profile loads the profile page. Addresses and payment methods degrade to
// empty lists when unavailable.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.accounts.Profile(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	res := ProfileResponse{Profile: p, Addresses: []entity.Address{}, PaymentMethods: []entity.SavedPaymentMethod{}}
	if addrs, err := h.accounts.Addresses(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "addresses unavailable", "error", err)
	} else if addrs != nil {
		res.Addresses = addrs
	}
	if methods, err := h.payments.SavedMethods(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "saved payment methods unavailable", "error", err)
	} else if methods != nil {
		res.PaymentMethods = methods
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p entity.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	if _, err := h.accounts.UpdateProfile(r.Context(), p); err != nil {
		h.backendError(w, r, h.session(r), err, "Failed to update profile.")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Profile updated successfully!"})
}

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.accounts.Addresses(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (h *Handler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var a entity.Address
	if !decodeJSON(w, r, &a) {
		return
	}
	if a.Label == "" {
		a.Label = "Home"
	}
	saved, err := h.accounts.AddAddress(r.Context(), a)
	if err != nil {
		h.backendError(w, r, h.session(r), err, "Failed to add address.")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		MessageResponse
		Address *entity.Address `json:"address"`
	}{MessageResponse{Message: "Address added successfully!"}, saved})
}

func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.accounts.DeleteAddress(r.Context(), id); err != nil {
		h.backendError(w, r, h.session(r), err, "Failed to delete address.")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Address deleted."})
}

func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.payments.SavedMethods(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

func (h *Handler) paymentMethodForm(w http.ResponseWriter, r *http.Request) (entity.SavedPaymentMethod, bool) {
	var f paymentmethods.Form
	if !decodeJSON(w, r, &f) {
		return entity.SavedPaymentMethod{}, false
	}
	m, err := paymentmethods.Build(f)
	var fe *paymentmethods.FormError
	if errors.As(err, &fe) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_payment_method", fe.Message)
		return entity.SavedPaymentMethod{}, false
	}
	return m, true
}

func (h *Handler) SavePaymentMethod(w http.ResponseWriter, r *http.Request) {
	m, ok := h.paymentMethodForm(w, r)
	if !ok {
		return
	}
	saved, err := h.payments.SaveMethod(r.Context(), m)
	if err != nil {
		h.backendError(w, r, h.session(r), err, "Failed to save payment method.")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		MessageResponse
		PaymentMethod *entity.SavedPaymentMethod `json:"paymentMethod"`
	}{MessageResponse{Message: "Payment method saved successfully!"}, saved})
}

func (h *Handler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	m, ok := h.paymentMethodForm(w, r)
	if !ok {
		return
	}
	m.ID = id
	saved, err := h.payments.UpdateMethod(r.Context(), id, m)
	if err != nil {
		h.backendError(w, r, h.session(r), err, "Failed to update payment method.")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		MessageResponse
		PaymentMethod *entity.SavedPaymentMethod `json:"paymentMethod"`
	}{MessageResponse{Message: "Payment method updated successfully!"}, saved})
}

// EditPaymentMethod returns the form pre-filled for an existing method.
func (h *Handler) EditPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	methods, err := h.payments.SavedMethods(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	for _, m := range methods {
		if m.ID == id {
			writeJSON(w, http.StatusOK, paymentmethods.EditForm(m))
			return
		}
	}
	writeError(w, http.StatusNotFound, "not_found", "Payment method not found")
}

func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.payments.DeleteMethod(r.Context(), id); err != nil {
		h.backendError(w, r, h.session(r), err, "Failed to delete payment method.")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Payment method deleted."})
}
