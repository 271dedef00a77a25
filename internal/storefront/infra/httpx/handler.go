package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/orders"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

// Services are the backend ports the handler talks to. Runs may be nil, in
// which case checkout runs are not recorded.
type Services struct {
	Products ports.ProductService
	Carts    ports.CartService
	Orders   ports.OrderService
	Payments ports.PaymentService
	Coupons  ports.CouponService
	Accounts ports.AccountService
	Runs     sagalog.Repository
}

// Handler serves the storefront JSON API. Per-user state lives in the
// session attached by middlewares.Sessions.
type Handler struct {
	products ports.ProductService
	carts    ports.CartService
	orders   ports.OrderService
	payments ports.PaymentService
	coupons  ports.CouponService
	accounts ports.AccountService
	runs     sagalog.Repository

	wizard   *checkout.Wizard
	payer    *orders.Payer
	toastTTL time.Duration
	now      func() time.Time
}

func NewHandler(svc Services, toastTTL time.Duration) *Handler {
	return &Handler{
		products: svc.Products,
		carts:    svc.Carts,
		orders:   svc.Orders,
		payments: svc.Payments,
		coupons:  svc.Coupons,
		accounts: svc.Accounts,
		runs:     svc.Runs,
		wizard:   checkout.NewWizard(svc.Carts, svc.Orders, svc.Payments, svc.Coupons, svc.Accounts, svc.Runs),
		payer:    orders.NewPayer(svc.Orders, svc.Payments),
		toastTTL: toastTTL,
		now:      time.Now,
	}
}

func (h *Handler) session(r *http.Request) *entity.Session {
	return middlewares.SessionFrom(r.Context())
}

func (h *Handler) toast(s *entity.Session, msg string, typ entity.ToastType) {
	if s != nil {
		s.AddToast(msg, typ, h.now())
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Session reports login state and the navbar cart badge.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	writeJSON(w, http.StatusOK, h.sessionResponse(r, s))
}

func (h *Handler) sessionResponse(r *http.Request, s *entity.Session) SessionResponse {
	res := SessionResponse{
		LoggedIn: s.LoggedIn(),
		IsAdmin:  s.IsAdmin(),
		Email:    s.Email,
		Role:     s.Role,
	}
	if !s.LoggedIn() {
		return res
	}
	cart, err := h.carts.GetCart(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "cart badge unavailable", "error", err)
		return res
	}
	res.CartItemCount = cart.ItemCount()
	return res
}

func (h *Handler) ListToasts(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	writeJSON(w, http.StatusOK, s.DrainToasts(h.now(), h.toastTTL))
}

func (h *Handler) DismissToast(w http.ResponseWriter, r *http.Request) {
	if !h.session(r).DismissToast(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "toast_not_found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
