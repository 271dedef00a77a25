package httpx

import (
	"errors"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/orders"
)

func orderFilter(r *http.Request) orders.Filter {
	f := orders.Filter{Search: r.URL.Query().Get("search")}
	if st, ok := entity.ParseOrderStatus(r.URL.Query().Get("status")); ok {
		f.Status = st
	}
	return f
}

func orderList(list []entity.Order, f orders.Filter, options []entity.OrderStatus) OrderListResponse {
	view := orders.History(list, f)
	out := make([]OrderSummary, len(view))
	for i, o := range view {
		out[i] = OrderSummary{Order: o, CanPay: o.Payable()}
	}
	return OrderListResponse{Orders: out, StatusOptions: options}
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, orderList(list, orderFilter(r), []entity.OrderStatus{
		entity.StatusPending, entity.StatusPaid, entity.StatusShipped, entity.StatusDelivered, entity.StatusCancelled,
	}))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, OrderSummary{Order: *o, CanPay: o.Payable()})
}

// PayOrder is the order history "Pay Now" button.
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	s := h.session(r)
	payment, err := h.payer.PayNow(r.Context(), s, id)
	switch {
	case errors.Is(err, orders.ErrNotPayable):
		writeError(w, http.StatusConflict, "not_payable", "Order is not pending payment")
	case err != nil:
		h.backendError(w, r, s, err, "")
	default:
		writeJSON(w, http.StatusOK, payment)
	}
}
