package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

// RouterDeps carries the stateful middlewares built in main.
type RouterDeps struct {
	Sessions          *middlewares.Sessions
	Metrics           *middlewares.Metrics
	AuthLimiter       *middlewares.RateLimiter
	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Only set it when a proxy in front overwrites those headers;
	// otherwise clients pick their own rate-limit key.
	TrustProxyHeaders bool
}

func NewRouter(handler *Handler, deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if deps.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)

	r.Get("/healthz", handler.Healthz)
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.Sessions.Middleware)

		r.Get("/session", handler.Session)
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthLimiter.Handler)
			r.Post("/auth/register", handler.Register)
			r.Post("/auth/login", handler.Login)
		})
		r.Post("/auth/logout", handler.Logout)

		r.Get("/home", handler.Home)
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)
		r.Get("/coupons/active", handler.ActiveCoupons)
		r.Get("/toasts", handler.ListToasts)
		r.Delete("/toasts/{id}", handler.DismissToast)

		r.Post("/cart/items", handler.AddToCart)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAuth)

			r.Get("/cart", handler.GetCart)
			r.Put("/cart/items/{productId}", handler.UpdateQuantity)
			r.Delete("/cart/items/{productId}", handler.RemoveFromCart)
			r.Delete("/cart", handler.ClearCart)

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", handler.GetCheckout)
				r.Post("/address", handler.CheckoutAddress)
				r.Post("/payment", handler.CheckoutPayment)
				r.Post("/back", handler.CheckoutBack)
				r.Post("/coupon", handler.ApplyCoupon)
				r.Delete("/coupon", handler.RemoveCoupon)
				r.With(deps.Sessions.Exclusive).Post("/place", handler.PlaceOrder)
			})

			r.Get("/orders", handler.ListOrders)
			r.Get("/orders/{id}", handler.GetOrder)
			r.Post("/orders/{id}/pay", handler.PayOrder)

			r.Get("/profile", handler.Profile)
			r.Put("/profile", handler.UpdateProfile)
			r.Get("/addresses", handler.ListAddresses)
			r.Post("/addresses", handler.AddAddress)
			r.Delete("/addresses/{id}", handler.DeleteAddress)
			r.Get("/payment-methods", handler.ListPaymentMethods)
			r.Post("/payment-methods", handler.SavePaymentMethod)
			r.Get("/payment-methods/{id}/edit", handler.EditPaymentMethod)
			r.Put("/payment-methods/{id}", handler.UpdatePaymentMethod)
			r.Delete("/payment-methods/{id}", handler.DeletePaymentMethod)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewares.RequireAdmin)

			r.Get("/products", handler.AdminListProducts)
			r.Post("/products", handler.AdminCreateProduct)
			r.Put("/products/{id}", handler.AdminUpdateProduct)
			r.Delete("/products/{id}", handler.AdminDeleteProduct)

			r.Get("/orders", handler.AdminListOrders)
			r.Put("/orders/{id}/status", handler.AdminUpdateOrderStatus)

			r.Get("/coupons", handler.AdminListCoupons)
			r.Post("/coupons", handler.AdminCreateCoupon)
			r.Put("/coupons/{id}", handler.AdminUpdateCoupon)
			r.Delete("/coupons/{id}", handler.AdminDeleteCoupon)

			r.Get("/checkout-runs/{id}", handler.CheckoutRun)
		})
	})
	return r
}
