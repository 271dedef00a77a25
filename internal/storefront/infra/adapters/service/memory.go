package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jcmexdev/storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/shopspring/decimal"
)

var (
	_ ports.ProductService = (*MemoryBackend)(nil)
	_ ports.CartService    = (*MemoryBackend)(nil)
	_ ports.OrderService   = (*MemoryBackend)(nil)
	_ ports.PaymentService = (*MemoryBackend)(nil)
	_ ports.CouponService  = (*MemoryBackend)(nil)
	_ ports.AccountService = (*MemoryBackend)(nil)
)

// MemoryBackend is an in-process stand-in for the REST backend, used for
// local development (BACKEND_URL=memory) and tests. It mirrors the backend's
// rules: stock is reserved when an order is placed and released when it is
// cancelled, payments below the order total are rejected, and charges above
// PaymentLimit are declined.
type MemoryBackend struct {
	mu sync.Mutex

	// PaymentLimit declines larger charges when positive.
	PaymentLimit decimal.Decimal

	signingKey []byte
	now        func() time.Time
	nextID     int64

	users    map[string]*memoryUser // by email
	products map[int64]*entity.Product
	carts    map[string]*entity.Cart // by email
	orders   map[int64]*entity.Order
	payments map[int64]*entity.Payment // by order id
	coupons  map[int64]*entity.Coupon
}

type memoryUser struct {
	profile   entity.Profile
	password  string
	addresses []entity.Address
	methods   []entity.SavedPaymentMethod
}

func NewMemoryBackend() *MemoryBackend {
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return &MemoryBackend{
		signingKey: key,
		now:        time.Now,
		users:      make(map[string]*memoryUser),
		products:   make(map[int64]*entity.Product),
		carts:      make(map[string]*entity.Cart),
		orders:     make(map[int64]*entity.Order),
		payments:   make(map[int64]*entity.Payment),
		coupons:    make(map[int64]*entity.Coupon),
	}
}

// NewSeededMemoryBackend returns a backend with a demo catalog, coupons, an
// admin (admin@gmail.com / Admin@123) and a shopper (user@gmail.com / User@123).
func NewSeededMemoryBackend() *MemoryBackend {
	m := NewMemoryBackend()
	m.SeedUser(entity.Profile{FirstName: "Admin", LastName: "User", Email: "admin@gmail.com", PhoneNumber: "1234567890", Address: "Admin Street", Role: entity.RoleAdmin}, "Admin@123")
	m.SeedUser(entity.Profile{FirstName: "Regular", LastName: "User", Email: "user@gmail.com", PhoneNumber: "0987654321", Address: "User Street", Role: "USER"}, "User@123")

	created := m.now().Add(-30 * 24 * time.Hour)
	for i, p := range []entity.Product{
		{Name: "iPhone 15 Pro Max", Description: "Titanium design, A17 Pro chip", Price: decimal.RequireFromString("1199.00"), Category: "Electronics", StockQuantity: 50, Rating: 4.8, IsPopular: true},
		{Name: "Sony WH-1000XM5", Description: "Industry-leading noise cancellation headphones", Price: decimal.RequireFromString("399.00"), Category: "Audio", StockQuantity: 15, Rating: 4.7, IsPopular: true},
		{Name: "iPad Air M2", Description: "10.9-inch Liquid Retina display, Apple M2 chip", Price: decimal.RequireFromString("599.00"), Category: "Electronics", StockQuantity: 40, Rating: 4.6},
		{Name: "AirPods Pro 2nd Gen", Description: "Active noise cancellation, spatial audio", Price: decimal.RequireFromString("249.00"), Category: "Audio", StockQuantity: 8, Rating: 4.5, IsPopular: true},
		{Name: "Nintendo Switch OLED", Description: "7-inch OLED screen, enhanced audio, 64GB storage", Price: decimal.RequireFromString("349.00"), Category: "Gaming", StockQuantity: 0, Rating: 4.4},
	} {
		p.CreatedAt = entity.Timestamp{Time: created.Add(time.Duration(i) * 24 * time.Hour)}
		m.SeedProduct(p)
	}
	for _, c := range []entity.Coupon{
		{Code: "OFFER1000", Description: "₹200 OFF on orders above ₹1,000", MinOrderValue: decimal.NewFromInt(1000), DiscountAmount: decimal.NewFromInt(200)},
		{Code: "OFFER2000", Description: "₹500 OFF on orders above ₹2,000", MinOrderValue: decimal.NewFromInt(2000), DiscountAmount: decimal.NewFromInt(500)},
	} {
		m.SeedCoupon(c)
	}
	return m
}

func (m *MemoryBackend) SeedUser(p entity.Profile, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	m.users[strings.ToLower(p.Email)] = &memoryUser{profile: p, password: password}
}

func (m *MemoryBackend) SeedProduct(p entity.Product) entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = entity.Timestamp{Time: m.now().UTC()}
	}
	m.products[p.ID] = &p
	return p
}

func (m *MemoryBackend) SeedCoupon(c entity.Coupon) entity.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	if c.IsActive == nil {
		active := true
		c.IsActive = &active
	}
	m.coupons[c.ID] = &c
	return c
}

func (m *MemoryBackend) id() int64 {
	m.nextID++
	return m.nextID
}

func fail(status int, msg string) error {
	return &Error{Status: status, Message: msg}
}

type memoryClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (m *MemoryBackend) issueToken(u *memoryUser) (string, error) {
	claims := memoryClaims{
		Role: u.profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.profile.Email,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(m.now().Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
}

// caller resolves the user behind the bearer token in ctx. m.mu must be held.
func (m *MemoryBackend) caller(ctx context.Context) (*memoryUser, error) {
	raw := interceptors.AuthToken(ctx)
	if raw == "" {
		return nil, fail(http.StatusUnauthorized, "Unauthorized")
	}
	var claims memoryClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return m.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fail(http.StatusUnauthorized, "Invalid or expired token")
	}
	u, ok := m.users[strings.ToLower(claims.Subject)]
	if !ok {
		return nil, fail(http.StatusUnauthorized, "Unknown user")
	}
	return u, nil
}

func (m *MemoryBackend) admin(ctx context.Context) (*memoryUser, error) {
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	if u.profile.Role != entity.RoleAdmin {
		return nil, fail(http.StatusForbidden, "Access denied")
	}
	return u, nil
}

// --- auth & profile ---

func (m *MemoryBackend) Register(_ context.Context, reg entity.Registration) (*entity.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(reg.Email)
	if key == "" || reg.Password == "" {
		return nil, fail(http.StatusBadRequest, "Email and password are required")
	}
	if _, ok := m.users[key]; ok {
		return nil, fail(http.StatusBadRequest, "Email already registered")
	}
	role := reg.Role
	if role == "" {
		role = "USER"
	}
	u := &memoryUser{
		profile: entity.Profile{
			ID: m.id(), FirstName: reg.FirstName, LastName: reg.LastName, Email: reg.Email,
			PhoneNumber: reg.PhoneNumber, Address: reg.Address, Role: role,
		},
		password: reg.Password,
	}
	m.users[key] = u
	token, err := m.issueToken(u)
	if err != nil {
		return nil, err
	}
	return &entity.AuthResult{Token: token, Role: role}, nil
}

func (m *MemoryBackend) Login(_ context.Context, cred entity.Credentials) (*entity.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(cred.Email)]
	if !ok || u.password != cred.Password {
		return nil, fail(http.StatusUnauthorized, "Bad credentials")
	}
	token, err := m.issueToken(u)
	if err != nil {
		return nil, err
	}
	return &entity.AuthResult{Token: token, Role: u.profile.Role}, nil
}

func (m *MemoryBackend) Profile(ctx context.Context) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	p := u.profile
	return &p, nil
}

func (m *MemoryBackend) UpdateProfile(ctx context.Context, p entity.Profile) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	u.profile.FirstName = p.FirstName
	u.profile.LastName = p.LastName
	u.profile.PhoneNumber = p.PhoneNumber
	u.profile.Address = p.Address
	if p.Password != "" {
		u.password = p.Password
	}
	out := u.profile
	return &out, nil
}

func (m *MemoryBackend) Addresses(ctx context.Context) ([]entity.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	return append([]entity.Address{}, u.addresses...), nil
}

func (m *MemoryBackend) AddAddress(ctx context.Context, a entity.Address) (*entity.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	a.ID = m.id()
	u.addresses = append(u.addresses, a)
	return &a, nil
}

func (m *MemoryBackend) DeleteAddress(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return err
	}
	for i, a := range u.addresses {
		if a.ID == id {
			u.addresses = append(u.addresses[:i], u.addresses[i+1:]...)
			return nil
		}
	}
	return fail(http.StatusNotFound, "Address not found")
}

// --- products ---

func (m *MemoryBackend) ListProducts(context.Context) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryBackend) GetProduct(_ context.Context, id int64) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, fail(http.StatusNotFound, "Product not found")
	}
	out := *p
	return &out, nil
}

func (m *MemoryBackend) CreateProduct(ctx context.Context, in entity.ProductInput, images []entity.ImageUpload) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return nil, err
	}
	p := &entity.Product{ID: m.id(), CreatedAt: entity.Timestamp{Time: m.now().UTC()}}
	applyProductInput(p, in, images)
	m.products[p.ID] = p
	out := *p
	return &out, nil
}

func (m *MemoryBackend) UpdateProduct(ctx context.Context, id int64, in entity.ProductInput, images []entity.ImageUpload) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return nil, err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, fail(http.StatusNotFound, "Product not found")
	}
	applyProductInput(p, in, images)
	out := *p
	return &out, nil
}

func applyProductInput(p *entity.Product, in entity.ProductInput, images []entity.ImageUpload) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.StockQuantity = in.StockQuantity
	p.IsPopular = in.IsPopular
	if len(images) > 0 {
		p.MainImageURL = "/images/" + images[0].Filename
	}
}

func (m *MemoryBackend) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return err
	}
	if _, ok := m.products[id]; !ok {
		return fail(http.StatusNotFound, "Product not found")
	}
	delete(m.products, id)
	return nil
}

// --- cart ---

func (m *MemoryBackend) cartOf(u *memoryUser) *entity.Cart {
	key := strings.ToLower(u.profile.Email)
	c, ok := m.carts[key]
	if !ok {
		c = &entity.Cart{ID: m.id(), UserID: u.profile.ID, CartItems: []entity.CartItem{}}
		m.carts[key] = c
	}
	return c
}

// snapshot recomputes line subtotals and the total and copies the cart.
func (m *MemoryBackend) snapshot(c *entity.Cart) *entity.Cart {
	total := decimal.Zero
	items := make([]entity.CartItem, len(c.CartItems))
	for i, it := range c.CartItems {
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		if p, ok := m.products[it.ProductID]; ok {
			cp := *p
			it.Product = &cp
		}
		total = total.Add(it.Subtotal)
		items[i] = it
	}
	return &entity.Cart{ID: c.ID, UserID: c.UserID, CartItems: items, TotalAmount: total}
}

func (m *MemoryBackend) GetCart(ctx context.Context) (*entity.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	return m.snapshot(m.cartOf(u)), nil
}

func (m *MemoryBackend) AddToCart(ctx context.Context, productID int64, quantity int) (*entity.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := m.products[productID]
	if !ok {
		return nil, fail(http.StatusNotFound, "Product not found")
	}
	c := m.cartOf(u)
	for i := range c.CartItems {
		if c.CartItems[i].ProductID != productID {
			continue
		}
		c.CartItems[i].Quantity += quantity
		if c.CartItems[i].Quantity <= 0 {
			c.CartItems = append(c.CartItems[:i], c.CartItems[i+1:]...)
		}
		return m.snapshot(c), nil
	}
	if quantity <= 0 {
		return nil, fail(http.StatusBadRequest, "Quantity must be positive")
	}
	c.CartItems = append(c.CartItems, entity.CartItem{ID: m.id(), ProductID: productID, Quantity: quantity, Price: p.Price})
	return m.snapshot(c), nil
}

func (m *MemoryBackend) RemoveFromCart(ctx context.Context, productID int64) (*entity.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	c := m.cartOf(u)
	for i, it := range c.CartItems {
		if it.ProductID == productID {
			c.CartItems = append(c.CartItems[:i], c.CartItems[i+1:]...)
			break
		}
	}
	return m.snapshot(c), nil
}

func (m *MemoryBackend) ClearCart(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return err
	}
	m.cartOf(u).CartItems = []entity.CartItem{}
	return nil
}

// --- orders ---

func (m *MemoryBackend) trackingID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(0)
	}
	return fmt.Sprintf("ORD-%d-%04d", m.now().UnixMilli(), n.Int64())
}

func (m *MemoryBackend) PlaceOrder(ctx context.Context, req entity.PlaceOrderRequest) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	cart := m.snapshot(m.cartOf(u))
	if cart.IsEmpty() {
		return nil, fail(http.StatusBadRequest, "Cart is empty")
	}
	for _, it := range cart.CartItems {
		p, ok := m.products[it.ProductID]
		if !ok || p.StockQuantity < it.Quantity {
			return nil, fail(http.StatusConflict, fmt.Sprintf("Insufficient stock for product %d", it.ProductID))
		}
	}

	order := &entity.Order{
		ID:              m.id(),
		OrderTrackingID: m.trackingID(),
		UserID:          u.profile.ID,
		TotalAmount:     cart.TotalAmount,
		Status:          entity.StatusPending,
		ShippingAddress: req.ShippingAddress,
		PhoneNumber:     req.PhoneNumber,
		CreatedAt:       entity.Timestamp{Time: m.now().UTC()},
	}
	for _, it := range cart.CartItems {
		m.products[it.ProductID].StockQuantity -= it.Quantity
		order.OrderItems = append(order.OrderItems, entity.OrderItem{
			ID: m.id(), ProductID: it.ProductID, Product: it.Product, Quantity: it.Quantity, Price: it.Price,
		})
	}
	m.orders[order.ID] = order
	m.cartOf(u).CartItems = []entity.CartItem{}

	if req.CouponCode != "" {
		for _, c := range m.coupons {
			if strings.EqualFold(c.Code, req.CouponCode) {
				c.UsedCount++
			}
		}
	}
	slog.DebugContext(ctx, "memory backend placed order", "order_id", order.ID, "tracking_id", order.OrderTrackingID)
	out := *order
	return &out, nil
}

func (m *MemoryBackend) ListOrders(ctx context.Context) ([]entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	return m.collectOrders(func(o *entity.Order) bool { return o.UserID == u.profile.ID }), nil
}

func (m *MemoryBackend) collectOrders(keep func(*entity.Order) bool) []entity.Order {
	out := []entity.Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *MemoryBackend) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	o, ok := m.orders[id]
	if !ok || (o.UserID != u.profile.ID && u.profile.Role != entity.RoleAdmin) {
		return nil, fail(http.StatusNotFound, "Order not found")
	}
	out := *o
	return &out, nil
}

func (m *MemoryBackend) ListAllOrders(ctx context.Context) ([]entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return nil, err
	}
	return m.collectOrders(func(*entity.Order) bool { return true }), nil
}

// UpdateOrderStatus releases reserved stock when an order is cancelled.
func (m *MemoryBackend) UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return nil, err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, fail(http.StatusNotFound, "Order not found")
	}
	if status == entity.StatusCancelled && o.Status != entity.StatusCancelled {
		for _, it := range o.OrderItems {
			if p, ok := m.products[it.ProductID]; ok {
				p.StockQuantity += it.Quantity
			}
		}
	}
	o.Status = status
	out := *o
	return &out, nil
}

// --- payments ---

func (m *MemoryBackend) ProcessPayment(ctx context.Context, req entity.PaymentRequest) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.caller(ctx); err != nil {
		return nil, err
	}
	o, ok := m.orders[req.OrderID]
	if !ok {
		return nil, fail(http.StatusInternalServerError, "Order not found")
	}
	if o.Status == entity.StatusPaid {
		return nil, fail(http.StatusInternalServerError, "Order is already paid")
	}
	paid := req.Amount.Round(2)
	due := o.TotalAmount.Round(2)
	if paid.LessThan(due) {
		return nil, fail(http.StatusInternalServerError,
			fmt.Sprintf("Insufficient payment amount. Required: %s, Received: %s", due.StringFixed(2), paid.StringFixed(2)))
	}
	if m.PaymentLimit.IsPositive() && paid.GreaterThan(m.PaymentLimit) {
		return nil, fail(http.StatusInternalServerError, "Payment declined: amount exceeds limit")
	}
	p := &entity.Payment{
		ID:            m.id(),
		OrderID:       o.ID,
		PaymentMethod: string(req.PaymentMethod),
		TransactionID: uuid.NewString(),
		Amount:        req.Amount,
		Status:        "SUCCESS",
		PaymentDate:   entity.Timestamp{Time: m.now().UTC()},
	}
	m.payments[o.ID] = p
	o.Status = entity.StatusPaid
	out := *p
	return &out, nil
}

func (m *MemoryBackend) SavedMethods(ctx context.Context) ([]entity.SavedPaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	return append([]entity.SavedPaymentMethod{}, u.methods...), nil
}

func (m *MemoryBackend) SaveMethod(ctx context.Context, pm entity.SavedPaymentMethod) (*entity.SavedPaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	pm.ID = m.id()
	u.methods = append(u.methods, pm)
	return &pm, nil
}

func (m *MemoryBackend) UpdateMethod(ctx context.Context, id int64, pm entity.SavedPaymentMethod) (*entity.SavedPaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return nil, err
	}
	for i := range u.methods {
		if u.methods[i].ID == id {
			pm.ID = id
			u.methods[i] = pm
			return &pm, nil
		}
	}
	return nil, fail(http.StatusNotFound, "Payment method not found")
}

func (m *MemoryBackend) DeleteMethod(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.caller(ctx)
	if err != nil {
		return err
	}
	for i, pm := range u.methods {
		if pm.ID == id {
			u.methods = append(u.methods[:i], u.methods[i+1:]...)
			return nil
		}
	}
	return fail(http.StatusNotFound, "Payment method not found")
}

// --- coupons ---

func (m *MemoryBackend) usable(c *entity.Coupon) bool {
	if c.IsActive != nil && !*c.IsActive {
		return false
	}
	if c.ExpiryDate != nil && !c.ExpiryDate.IsZero() && c.ExpiryDate.Before(m.now()) {
		return false
	}
	return c.UsageLimit == nil || c.UsedCount < *c.UsageLimit
}

func (m *MemoryBackend) sortedCoupons(keep func(*entity.Coupon) bool) []entity.Coupon {
	out := []entity.Coupon{}
	for _, c := range m.coupons {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryBackend) ActiveCoupons(context.Context) ([]entity.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedCoupons(m.usable), nil
}

func (m *MemoryBackend) ValidateCoupon(_ context.Context, code string, orderTotal decimal.Decimal) (*entity.CouponValidation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *entity.Coupon
	for _, c := range m.coupons {
		if strings.EqualFold(c.Code, code) && (c.IsActive == nil || *c.IsActive) {
			found = c
			break
		}
	}
	switch {
	case found == nil:
		return &entity.CouponValidation{Message: "Invalid coupon code"}, nil
	case found.ExpiryDate != nil && !found.ExpiryDate.IsZero() && found.ExpiryDate.Before(m.now()):
		return &entity.CouponValidation{Message: "Coupon has expired"}, nil
	case found.UsageLimit != nil && found.UsedCount >= *found.UsageLimit:
		return &entity.CouponValidation{Message: "Coupon usage limit reached"}, nil
	case orderTotal.LessThan(found.MinOrderValue):
		return &entity.CouponValidation{
			Message: fmt.Sprintf("Coupon requires minimum order value of ₹%s", found.MinOrderValue.String()),
		}, nil
	}
	return &entity.CouponValidation{
		Valid:          true,
		Code:           found.Code,
		DiscountAmount: found.DiscountAmount,
		MinOrderValue:  found.MinOrderValue,
		Description:    found.Description,
		Message:        fmt.Sprintf("Coupon applied! You saved ₹%s", found.DiscountAmount.String()),
	}, nil
}

func (m *MemoryBackend) ListCoupons(ctx context.Context) ([]entity.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return nil, err
	}
	return m.sortedCoupons(func(*entity.Coupon) bool { return true }), nil
}

func (m *MemoryBackend) CreateCoupon(ctx context.Context, c entity.Coupon) (*entity.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return nil, err
	}
	for _, existing := range m.coupons {
		if strings.EqualFold(existing.Code, c.Code) {
			return nil, fail(http.StatusBadRequest, "Coupon code already exists")
		}
	}
	c.ID = m.id()
	c.Code = strings.ToUpper(c.Code)
	if c.IsActive == nil {
		active := true
		c.IsActive = &active
	}
	m.coupons[c.ID] = &c
	out := c
	return &out, nil
}

func (m *MemoryBackend) UpdateCoupon(ctx context.Context, id int64, c entity.Coupon) (*entity.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return nil, err
	}
	existing, ok := m.coupons[id]
	if !ok {
		return nil, fail(http.StatusNotFound, "Coupon not found")
	}
	c.ID = id
	c.Code = strings.ToUpper(c.Code)
	c.UsedCount = existing.UsedCount
	m.coupons[id] = &c
	out := c
	return &out, nil
}

func (m *MemoryBackend) DeleteCoupon(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.admin(ctx); err != nil {
		return err
	}
	if _, ok := m.coupons[id]; !ok {
		return fail(http.StatusNotFound, "Coupon not found")
	}
	delete(m.coupons, id)
	return nil
}
