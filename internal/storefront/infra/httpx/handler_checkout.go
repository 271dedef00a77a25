package httpx

import (
	"errors"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// checkoutError maps wizard errors; anything else is a backend failure.
func (h *Handler) checkoutError(w http.ResponseWriter, r *http.Request, s *entity.Session, err error) {
	var ve *checkout.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", ve.Message)
	case errors.Is(err, checkout.ErrEmptyCart):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:    "empty_cart",
			Message:  "Your cart is empty. Redirecting...",
			Redirect: "/cart",
		})
	case errors.Is(err, checkout.ErrNotStarted):
		writeError(w, http.StatusConflict, "checkout_not_started", "Open the checkout page first")
	case errors.Is(err, checkout.ErrWrongStep):
		writeError(w, http.StatusConflict, "wrong_step", "This action is not available at the current step")
	case errors.Is(err, checkout.ErrProcessing):
		writeError(w, http.StatusConflict, "processing", "Your order is already being placed")
	case errors.Is(err, checkout.ErrOrderFailed):
		writeError(w, http.StatusBadGateway, "order_failed", fallback(publicMessage(err), "Failed to create order."))
	default:
		h.backendError(w, r, s, err, "")
	}
}

// GetCheckout returns the wizard, starting it on first visit or when
// restart=true.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s.Checkout == nil || r.URL.Query().Get("restart") == "true" {
		if err := h.wizard.Start(r.Context(), s); err != nil {
			h.checkoutError(w, r, s, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, checkout.NewView(s.Checkout))
}

func (h *Handler) CheckoutAddress(w http.ResponseWriter, r *http.Request) {
	var sel checkout.AddressSelection
	if !decodeJSON(w, r, &sel) {
		return
	}
	s := h.session(r)
	if err := h.wizard.ProceedToPayment(s, sel); err != nil {
		h.checkoutError(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout.NewView(s.Checkout))
}

func (h *Handler) CheckoutPayment(w http.ResponseWriter, r *http.Request) {
	var sel checkout.PaymentSelection
	if !decodeJSON(w, r, &sel) {
		return
	}
	s := h.session(r)
	if err := h.wizard.ProceedToReview(s, sel); err != nil {
		h.checkoutError(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout.NewView(s.Checkout))
}

func (h *Handler) CheckoutBack(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := h.wizard.Back(s); err != nil {
		h.checkoutError(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout.NewView(s.Checkout))
}

func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s := h.session(r)
	err := h.wizard.ApplyCoupon(r.Context(), s, req.Code)
	var ve *checkout.ValidationError
	if err != nil && !errors.As(err, &ve) {
		h.checkoutError(w, r, s, err)
		return
	}
	// A rejected code is not a request failure: the view carries couponError.
	writeJSON(w, http.StatusOK, checkout.NewView(s.Checkout))
}

func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := h.wizard.RemoveCoupon(s); err != nil {
		h.checkoutError(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout.NewView(s.Checkout))
}

// PlaceOrder runs the saga. A new card payment must send its number and CVV
// in the body; the session only holds the masked card.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var secret entity.CardSecret
	if r.ContentLength != 0 && !decodeJSON(w, r, &secret) {
		return
	}
	s := h.session(r)
	res, err := h.wizard.Place(r.Context(), s, secret)
	if err != nil {
		h.checkoutError(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
