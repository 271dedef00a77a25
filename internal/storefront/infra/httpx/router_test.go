package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/service"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/session"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv     *httptest.Server
	backend *service.MemoryBackend
	cache   *cache.MemoryCache
	lamp    entity.Product
	soldOut entity.Product
}

type fixtureOptions struct {
	orders  func(ports.OrderService) ports.OrderService
	limiter *middlewares.RateLimiter
}

type fixtureOption func(*fixtureOptions)

func withOrders(wrap func(ports.OrderService) ports.OrderService) fixtureOption {
	return func(o *fixtureOptions) { o.orders = wrap }
}

func withAuthLimiter(rl *middlewares.RateLimiter) fixtureOption {
	return func(o *fixtureOptions) { o.limiter = rl }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	o := fixtureOptions{limiter: middlewares.NewRateLimiter(100, 100)}
	for _, opt := range opts {
		opt(&o)
	}
	m := service.NewMemoryBackend()
	m.SeedUser(entity.Profile{Email: "user@shop.com", PhoneNumber: "5550001", Role: "USER"}, "pw")
	m.SeedUser(entity.Profile{Email: "admin@shop.com", Role: entity.RoleAdmin}, "pw")
	lamp := m.SeedProduct(entity.Product{Name: "Desk Lamp", Category: "Home", Price: decimal.NewFromInt(600), StockQuantity: 10})
	soldOut := m.SeedProduct(entity.Product{Name: "Console", Category: "Gaming", Price: decimal.NewFromInt(300)})
	m.SeedCoupon(entity.Coupon{Code: "OFFER1000", MinOrderValue: decimal.NewFromInt(1000), DiscountAmount: decimal.NewFromInt(200)})

	var orders ports.OrderService = m
	if o.orders != nil {
		orders = o.orders(m)
	}

	runs := sagalog.NewMemoryRepository()
	h := NewHandler(Services{
		Products: m, Carts: m, Orders: orders, Payments: m, Coupons: m, Accounts: m, Runs: runs,
	}, time.Minute)
	c := cache.NewMemoryCache("test")
	router := NewRouter(h, RouterDeps{
		Sessions:    middlewares.NewSessions(session.NewCacheStore(c, time.Hour), time.Hour, false),
		Metrics:     middlewares.NewMetrics(),
		AuthLimiter: o.limiter,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, backend: m, cache: c, lamp: lamp, soldOut: soldOut}
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (f *fixture) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: f.srv.URL, client: &http.Client{Jar: jar}}
}

func (b *browser) do(method, path string, body any) (int, []byte) {
	b.t.Helper()
	return b.doWith(method, path, body, nil)
}

func (b *browser) doWith(method, path string, body any, header http.Header) (int, []byte) {
	b.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(b.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, b.base+path, rd)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)
	return res.StatusCode, out
}

func (b *browser) login(email string) {
	b.t.Helper()
	status, body := b.do(http.MethodPost, "/api/auth/login", entity.Credentials{Email: email, Password: "pw"})
	require.Equal(b.t, http.StatusOK, status, string(body))
}

func (b *browser) toasts() []entity.Toast {
	b.t.Helper()
	_, body := b.do(http.MethodGet, "/api/toasts", nil)
	var out []entity.Toast
	require.NoError(b.t, json.Unmarshal(body, &out))
	return out
}

func (b *browser) sessionID() string {
	b.t.Helper()
	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == middlewares.CookieName {
			return c.Value
		}
	}
	return ""
}

func lastToast(t *testing.T, ts []entity.Toast) entity.Toast {
	t.Helper()
	require.NotEmpty(t, ts)
	return ts[len(ts)-1]
}

func TestAnonymousAddToCart(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	status, body := b.do(http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: f.lamp.ID})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), `"redirect":"/login"`)

	toast := lastToast(t, b.toasts())
	assert.Equal(t, "Please login to add items to cart", toast.Message)
	assert.Equal(t, entity.ToastWarning, toast.Type)
	assert.Empty(t, b.toasts(), "toasts are drained once read")

	status, _ = b.do(http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	status, body := b.do(http.MethodPost, "/api/auth/login", entity.Credentials{Email: "user@shop.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "Invalid email or password")

	b.login("user@shop.com")
	assert.Equal(t, "Welcome back!", lastToast(t, b.toasts()).Message)

	_, body = b.do(http.MethodGet, "/api/session", nil)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(body, &sess))
	assert.True(t, sess.LoggedIn)
	assert.False(t, sess.IsAdmin)
	assert.Equal(t, "user@shop.com", sess.Email)

	status, _ = b.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, status)
	_, body = b.do(http.MethodGet, "/api/session", nil)
	require.NoError(t, json.Unmarshal(body, &sess))
	assert.False(t, sess.LoggedIn)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	status, body := b.do(http.MethodPost, "/api/auth/register", entity.Registration{Email: "new@shop.com", Password: "pw"})
	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(body), `"redirect":"/login"`)
	assert.Equal(t, "Registration successful! Please login.", lastToast(t, b.toasts()).Message)

	status, body = b.do(http.MethodPost, "/api/auth/register", entity.Registration{Email: "new@shop.com", Password: "pw"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "Registration failed. Try again.")
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.login("user@shop.com")

	status, _ := b.do(http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: f.soldOut.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "This product is out of stock", lastToast(t, b.toasts()).Message)

	status, _ = b.do(http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: f.lamp.ID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Added to cart!", lastToast(t, b.toasts()).Message)

	qty := 50
	status, body := b.do(http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: f.lamp.ID, Quantity: &qty})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "Added 10 item(s) to cart!", lastToast(t, b.toasts()).Message, "clamped to stock")

	status, body = b.do(http.MethodPut, "/api/cart/items/"+itoa(f.lamp.ID), UpdateQuantityRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, status, string(body))
	var cart CartResponse
	require.NoError(t, json.Unmarshal(body, &cart))
	require.Equal(t, 1, cart.ItemCount)
	assert.Equal(t, 3, cart.Cart.CartItems[0].Quantity)
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, "Quantity updated", lastToast(t, b.toasts()).Message)

	status, _ = b.do(http.MethodPut, "/api/cart/items/"+itoa(f.lamp.ID), UpdateQuantityRequest{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, status)

	_, body = b.do(http.MethodGet, "/api/session", nil)
	assert.Contains(t, string(body), `"cartItemCount":1`)

	status, _ = b.do(http.MethodDelete, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cart cleared", lastToast(t, b.toasts()).Message)
}

func TestCheckoutFlow(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.login("user@shop.com")

	status, body := b.do(http.MethodGet, "/api/checkout", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), `"redirect":"/cart"`)

	qty := 2
	status, _ = b.do(http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: f.lamp.ID, Quantity: &qty})
	require.Equal(t, http.StatusOK, status)

	status, body = b.do(http.MethodGet, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"step":1`)
	assert.Contains(t, string(body), `"useNewAddress":true`)

	status, _ = b.do(http.MethodPost, "/api/checkout/address", map[string]any{"useNewAddress": true, "newAddress": map[string]string{"street": "1 Main"}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Please fill in all address fields.", lastToast(t, b.toasts()).Message)

	status, body = b.do(http.MethodPost, "/api/checkout/address", map[string]any{
		"useNewAddress": true,
		"newAddress":    map[string]string{"street": "1 Main", "city": "Pune", "state": "MH", "zipCode": "411001", "country": "India"},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = b.do(http.MethodPost, "/api/checkout/payment", map[string]any{
		"useNewPayment":     true,
		"paymentMethodType": "CREDIT_CARD",
		"details":           map[string]string{"cardNumber": "4111111111111111", "cvv": "123", "cardHolderName": "U"},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"maskedCard":"**** 1111"`)
	assert.NotContains(t, string(body), "4111111111111111")

	status, body = b.do(http.MethodPost, "/api/checkout/coupon", CouponRequest{Code: "OFFER1000"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"grandTotal":1000`)

	status, body = b.do(http.MethodPost, "/api/checkout/place", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status, "card must be re-entered")
	assert.Contains(t, string(body), "Please re-enter your card number and CVV")

	status, body = b.do(http.MethodPost, "/api/checkout/place", entity.CardSecret{CardNumber: "4111111111111111", CVV: "123"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var placed struct {
		RunID      string `json:"runId"`
		Paid       bool   `json:"paid"`
		TrackingID string `json:"trackingId"`
	}
	require.NoError(t, json.Unmarshal(body, &placed))
	assert.True(t, placed.Paid)
	assert.Equal(t, "Order placed successfully! ID: "+placed.TrackingID, lastToast(t, b.toasts()).Message)

	status, body = b.do(http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"PAID"`)
	assert.Contains(t, string(body), `"canPay":false`)

	status, _ = b.do(http.MethodGet, "/api/admin/checkout-runs/"+placed.RunID, nil)
	assert.Equal(t, http.StatusForbidden, status)

	admin := f.browser(t)
	admin.login("admin@shop.com")
	status, body = admin.do(http.MethodGet, "/api/admin/checkout-runs/"+placed.RunID, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var run CheckoutRunResponse
	require.NoError(t, json.Unmarshal(body, &run))
	assert.Equal(t, sagalog.StatusCompleted, run.Latest.Status)
	assert.NotEmpty(t, run.History)
}

func TestPayNowAfterDecline(t *testing.T) {
	f := newFixture(t)
	f.backend.PaymentLimit = decimal.NewFromInt(100)
	b := f.browser(t)
	b.login("user@shop.com")

	status, _ := b.do(http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: f.lamp.ID})
	require.Equal(t, http.StatusOK, status)
	b.do(http.MethodGet, "/api/checkout", nil)
	b.do(http.MethodPost, "/api/checkout/address", map[string]any{
		"useNewAddress": true,
		"newAddress":    map[string]string{"street": "1 Main", "city": "Pune", "zipCode": "411001"},
	})
	b.do(http.MethodPost, "/api/checkout/payment", map[string]any{
		"useNewPayment": true, "paymentMethodType": "UPI", "details": map[string]string{"upiId": "me@bank"},
	})
	status, body := b.do(http.MethodPost, "/api/checkout/place", nil)
	require.Equal(t, http.StatusCreated, status, string(body))
	var placed struct {
		OrderID  int64  `json:"orderId"`
		Paid     bool   `json:"paid"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(body, &placed))
	assert.False(t, placed.Paid)
	assert.Equal(t, "/orders", placed.Redirect)
	assert.Equal(t, "Payment failed: Payment declined: amount exceeds limit. Please try again from Order History.",
		lastToast(t, b.toasts()).Message)

	_, body = b.do(http.MethodGet, "/api/orders?status=PENDING", nil)
	assert.Contains(t, string(body), `"canPay":true`)

	f.backend.PaymentLimit = decimal.Zero
	status, _ = b.do(http.MethodPost, "/api/orders/"+itoa(placed.OrderID)+"/pay", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Payment successful!", lastToast(t, b.toasts()).Message)

	status, _ = b.do(http.MethodPost, "/api/orders/"+itoa(placed.OrderID)+"/pay", nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestProductList(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	status, body := b.do(http.MethodGet, "/api/products?inStock=true&sort=price-asc", nil)
	require.Equal(t, http.StatusOK, status)
	var list ProductListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Desk Lamp", list.Products[0].Name)
	assert.Equal(t, "Only 10 left!", list.Products[0].Stock.Label)
	assert.Equal(t, []string{"Gaming", "Home"}, list.Categories)
	require.Len(t, list.ActiveFilters, 1)
	assert.Equal(t, "In Stock Only", list.ActiveFilters[0].Label)

	status, _ = b.do(http.MethodGet, "/api/products?minPrice=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = b.do(http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProfilePaymentMethods(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.login("user@shop.com")

	status, body := b.do(http.MethodPost, "/api/payment-methods", map[string]any{
		"paymentMethodType": "NET_BANKING",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body), "This payment method cannot be saved.")

	status, body = b.do(http.MethodPost, "/api/payment-methods", map[string]any{
		"paymentMethodType": "CREDIT_CARD",
		"details":           map[string]string{"cardNumber": "5500000000000004", "cardHolderName": "U", "expiryDate": "01/30"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Contains(t, string(body), "Payment method saved successfully!")
	assert.Contains(t, string(body), `"provider":"Mastercard"`)

	status, body = b.do(http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, status)
	var prof ProfileResponse
	require.NoError(t, json.Unmarshal(body, &prof))
	require.Len(t, prof.PaymentMethods, 1)
	assert.Equal(t, "**** 0004", prof.PaymentMethods[0].MaskedNumber)

	_, body = b.do(http.MethodGet, "/api/payment-methods/"+itoa(prof.PaymentMethods[0].ID)+"/edit", nil)
	assert.Contains(t, string(body), `"paymentMethodType":"CREDIT_CARD"`)

	status, body = b.do(http.MethodPost, "/api/addresses", entity.Address{Street: "1 Main", City: "Pune"})
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(body), "Address added successfully!")
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)
	user := f.browser(t)
	user.login("user@shop.com")
	status, _ := user.do(http.MethodGet, "/api/admin/orders", nil)
	assert.Equal(t, http.StatusForbidden, status)

	admin := f.browser(t)
	admin.login("admin@shop.com")

	status, body := admin.do(http.MethodPost, "/api/admin/coupons", entity.Coupon{Code: "new50", DiscountAmount: decimal.NewFromInt(50)})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Contains(t, string(body), `"code":"NEW50"`)
	assert.Equal(t, "Coupon created successfully", lastToast(t, admin.toasts()).Message)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(t, mw.WriteField("product", `{"name":"Chair","price":150,"category":"Home","stockQuantity":4}`))
	fw, err := mw.CreateFormFile("images", "chair.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/admin/products", &form)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res, err := admin.client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "Product created successfully!", lastToast(t, admin.toasts()).Message)

	status, _ = admin.do(http.MethodPut, "/api/admin/orders/1/status", UpdateStatusRequest{Status: "LOST"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	res, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.True(t, strings.Contains(string(body), "storefront_http_requests_total"))
}

func TestLoginRotatesSessionID(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	b.do(http.MethodGet, "/api/session", nil)
	before := b.sessionID()
	require.NotEmpty(t, before)

	b.login("user@shop.com")
	after := b.sessionID()
	assert.NotEqual(t, before, after)

	raw, err := f.cache.Get(context.Background(), f.cache.GenerateKey("session", before))
	require.NoError(t, err)
	assert.Empty(t, raw, "pre-login session is deleted")

	status, _ := b.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, status)
	assert.NotEqual(t, after, b.sessionID())
	raw, err = f.cache.Get(context.Background(), f.cache.GenerateKey("session", after))
	require.NoError(t, err)
	assert.Empty(t, raw, "logged-in session is deleted on logout")
}

func TestAuthLimiterIgnoresForwardedFor(t *testing.T) {
	f := newFixture(t, withAuthLimiter(middlewares.NewRateLimiter(0.001, 1)))
	b := f.browser(t)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		header := http.Header{"X-Forwarded-For": []string{"198.51.100." + strconv.Itoa(i+1)}}
		status, _ := b.doWith(http.MethodPost, "/api/auth/login", entity.Credentials{Email: "user@shop.com", Password: "nope"}, header)
		codes = append(codes, status)
	}
	assert.Equal(t, http.StatusUnauthorized, codes[0])
	assert.Contains(t, codes[1:], http.StatusTooManyRequests)
	assert.NotContains(t, codes[1:], http.StatusUnauthorized)
}

func checkoutToReview(t *testing.T, f *fixture, b *browser) {
	t.Helper()
	status, _ := b.do(http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: f.lamp.ID})
	require.Equal(t, http.StatusOK, status)
	status, body := b.do(http.MethodGet, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	status, body = b.do(http.MethodPost, "/api/checkout/address", map[string]any{
		"useNewAddress": true,
		"newAddress":    map[string]string{"street": "1 Main", "city": "Pune", "zipCode": "411001"},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	status, body = b.do(http.MethodPost, "/api/checkout/payment", map[string]any{
		"useNewPayment":     true,
		"paymentMethodType": "CREDIT_CARD",
		"details":           map[string]string{"cardNumber": "4111111111114242", "cvv": "321", "cardHolderName": "U"},
	})
	require.Equal(t, http.StatusOK, status, string(body))
}

func TestCheckoutCardIsNotStoredInSession(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.login("user@shop.com")
	checkoutToReview(t, f, b)

	raw, err := f.cache.Get(context.Background(), f.cache.GenerateKey("session", b.sessionID()))
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.NotContains(t, raw, "4111111111114242")
	assert.NotContains(t, raw, "321")
	assert.Contains(t, raw, "**** 4242")
}

// gatedOrders holds PlaceOrder until release is closed.
type gatedOrders struct {
	ports.OrderService
	entered chan struct{}
	release chan struct{}
}

func (g *gatedOrders) PlaceOrder(ctx context.Context, req entity.PlaceOrderRequest) (*entity.Order, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.OrderService.PlaceOrder(ctx, req)
}

func TestPlaceOrder_ConcurrentSubmitIsRejected(t *testing.T) {
	gate := &gatedOrders{entered: make(chan struct{}, 2), release: make(chan struct{})}
	f := newFixture(t, withOrders(func(o ports.OrderService) ports.OrderService {
		gate.OrderService = o
		return gate
	}))
	b := f.browser(t)
	b.login("user@shop.com")
	checkoutToReview(t, f, b)

	secret := entity.CardSecret{CardNumber: "4111111111114242", CVV: "321"}
	var wg sync.WaitGroup
	var first int
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, _ = b.do(http.MethodPost, "/api/checkout/place", secret)
	}()
	<-gate.entered

	status, body := b.do(http.MethodPost, "/api/checkout/place", secret)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "Your order is already being placed")

	close(gate.release)
	wg.Wait()
	assert.Equal(t, http.StatusCreated, first)
	assert.Len(t, gate.entered, 0, "the backend saw one order")

	ts := b.toasts()
	require.NotEmpty(t, ts)
	assert.Contains(t, lastToast(t, ts).Message, "Order placed successfully!")
	for _, toast := range ts {
		assert.NotEqual(t, "Failed to create order.", toast.Message)
	}

	status, _ = b.do(http.MethodPost, "/api/checkout/place", secret)
	assert.Equal(t, http.StatusConflict, status, "wizard was cleared by the first submit")
}

func TestAdminListCoupons_RejectedTokenQueuesOneToast(t *testing.T) {
	m := service.NewMemoryBackend()
	h := NewHandler(Services{Products: m, Carts: m, Orders: m, Payments: m, Coupons: m, Accounts: m}, time.Minute)

	s := entity.NewSession(time.Now())
	s.Login(entity.AuthResult{Token: "revoked", Role: entity.RoleAdmin}, "admin@shop.com")
	req := httptest.NewRequest(http.MethodGet, "/api/admin/coupons", nil)
	req = req.WithContext(middlewares.WithSession(req.Context(), s))
	rec := httptest.NewRecorder()
	h.AdminListCoupons(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Len(t, s.Toasts, 1)
	assert.Equal(t, sessionExpiredToast, s.Toasts[0].Message)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
