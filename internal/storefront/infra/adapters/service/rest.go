package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/shopspring/decimal"
)

var (
	_ ports.ProductService = (*ProductClient)(nil)
	_ ports.CartService    = (*CartClient)(nil)
	_ ports.OrderService   = (*OrderClient)(nil)
	_ ports.PaymentService = (*PaymentClient)(nil)
	_ ports.CouponService  = (*CouponClient)(nil)
	_ ports.AccountService = (*AccountClient)(nil)
)

// --- products ---

type ProductClient struct{ c *Client }

func NewProductClient(c *Client) *ProductClient { return &ProductClient{c: c} }

func (p *ProductClient) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	if err := p.c.doJSON(ctx, http.MethodGet, "/api/products", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *ProductClient) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	var out entity.Product
	if err := p.c.doJSON(ctx, http.MethodGet, idPath("/api/products/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProductClient) CreateProduct(ctx context.Context, in entity.ProductInput, images []entity.ImageUpload) (*entity.Product, error) {
	var out entity.Product
	if err := p.c.doMultipart(ctx, http.MethodPost, "/api/products", "product", in, "images", uploads(images), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProductClient) UpdateProduct(ctx context.Context, id int64, in entity.ProductInput, images []entity.ImageUpload) (*entity.Product, error) {
	var out entity.Product
	if err := p.c.doMultipart(ctx, http.MethodPut, idPath("/api/products/%d", id), "product", in, "images", uploads(images), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProductClient) DeleteProduct(ctx context.Context, id int64) error {
	return p.c.doJSON(ctx, http.MethodDelete, idPath("/api/products/%d", id), nil, nil, nil)
}

func uploads(images []entity.ImageUpload) []fileUpload {
	out := make([]fileUpload, 0, len(images))
	for _, img := range images {
		out = append(out, fileUpload{name: img.Filename, contentType: img.ContentType, data: img.Data})
	}
	return out
}

// --- cart ---

type CartClient struct{ c *Client }

func NewCartClient(c *Client) *CartClient { return &CartClient{c: c} }

func (cc *CartClient) GetCart(ctx context.Context) (*entity.Cart, error) {
	var out entity.Cart
	if err := cc.c.doJSON(ctx, http.MethodGet, "/api/cart", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type addToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddToCart adds quantity to the line; a negative quantity reduces it.
func (cc *CartClient) AddToCart(ctx context.Context, productID int64, quantity int) (*entity.Cart, error) {
	var out entity.Cart
	req := addToCartRequest{ProductID: productID, Quantity: quantity}
	if err := cc.c.doJSON(ctx, http.MethodPost, "/api/cart/add", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CartClient) RemoveFromCart(ctx context.Context, productID int64) (*entity.Cart, error) {
	var out entity.Cart
	if err := cc.c.doJSON(ctx, http.MethodDelete, idPath("/api/cart/remove/%d", productID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CartClient) ClearCart(ctx context.Context) error {
	return cc.c.doJSON(ctx, http.MethodDelete, "/api/cart/clear", nil, nil, nil)
}

// --- orders ---

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

func (o *OrderClient) PlaceOrder(ctx context.Context, req entity.PlaceOrderRequest) (*entity.Order, error) {
	var out entity.Order
	if err := o.c.doJSON(ctx, http.MethodPost, "/api/orders/place", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *OrderClient) ListOrders(ctx context.Context) ([]entity.Order, error) {
	var out []entity.Order
	if err := o.c.doJSON(ctx, http.MethodGet, "/api/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OrderClient) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	var out entity.Order
	if err := o.c.doJSON(ctx, http.MethodGet, idPath("/api/orders/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *OrderClient) ListAllOrders(ctx context.Context) ([]entity.Order, error) {
	var out []entity.Order
	if err := o.c.doJSON(ctx, http.MethodGet, "/api/orders/admin/all", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OrderClient) UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error) {
	var out entity.Order
	q := url.Values{"status": {string(status)}}
	if err := o.c.doJSON(ctx, http.MethodPut, idPath("/api/orders/admin/%d/status", id), q, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- payments ---

type PaymentClient struct{ c *Client }

func NewPaymentClient(c *Client) *PaymentClient { return &PaymentClient{c: c} }

func (p *PaymentClient) ProcessPayment(ctx context.Context, req entity.PaymentRequest) (*entity.Payment, error) {
	var out entity.Payment
	if err := p.c.doJSON(ctx, http.MethodPost, "/api/payments/process", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PaymentClient) SavedMethods(ctx context.Context) ([]entity.SavedPaymentMethod, error) {
	var out []entity.SavedPaymentMethod
	if err := p.c.doJSON(ctx, http.MethodGet, "/api/payments/saved", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PaymentClient) SaveMethod(ctx context.Context, m entity.SavedPaymentMethod) (*entity.SavedPaymentMethod, error) {
	var out entity.SavedPaymentMethod
	if err := p.c.doJSON(ctx, http.MethodPost, "/api/payments/saved", nil, m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PaymentClient) UpdateMethod(ctx context.Context, id int64, m entity.SavedPaymentMethod) (*entity.SavedPaymentMethod, error) {
	var out entity.SavedPaymentMethod
	if err := p.c.doJSON(ctx, http.MethodPut, idPath("/api/payments/saved/%d", id), nil, m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PaymentClient) DeleteMethod(ctx context.Context, id int64) error {
	return p.c.doJSON(ctx, http.MethodDelete, idPath("/api/payments/saved/%d", id), nil, nil, nil)
}

// --- coupons ---

type CouponClient struct{ c *Client }

func NewCouponClient(c *Client) *CouponClient { return &CouponClient{c: c} }

func (cc *CouponClient) ActiveCoupons(ctx context.Context) ([]entity.Coupon, error) {
	var out []entity.Coupon
	if err := cc.c.doJSON(ctx, http.MethodGet, "/api/coupons/active", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type validateCouponRequest struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
}

func (cc *CouponClient) ValidateCoupon(ctx context.Context, code string, orderTotal decimal.Decimal) (*entity.CouponValidation, error) {
	var out entity.CouponValidation
	req := validateCouponRequest{Code: code, OrderTotal: orderTotal}
	if err := cc.c.doJSON(ctx, http.MethodPost, "/api/coupons/validate", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CouponClient) ListCoupons(ctx context.Context) ([]entity.Coupon, error) {
	var out []entity.Coupon
	if err := cc.c.doJSON(ctx, http.MethodGet, "/api/coupons", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cc *CouponClient) CreateCoupon(ctx context.Context, c entity.Coupon) (*entity.Coupon, error) {
	var out entity.Coupon
	if err := cc.c.doJSON(ctx, http.MethodPost, "/api/coupons", nil, c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CouponClient) UpdateCoupon(ctx context.Context, id int64, c entity.Coupon) (*entity.Coupon, error) {
	var out entity.Coupon
	if err := cc.c.doJSON(ctx, http.MethodPut, idPath("/api/coupons/%d", id), nil, c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CouponClient) DeleteCoupon(ctx context.Context, id int64) error {
	return cc.c.doJSON(ctx, http.MethodDelete, idPath("/api/coupons/%d", id), nil, nil, nil)
}

// --- accounts ---

type AccountClient struct{ c *Client }

func NewAccountClient(c *Client) *AccountClient { return &AccountClient{c: c} }

func (a *AccountClient) Register(ctx context.Context, reg entity.Registration) (*entity.AuthResult, error) {
	var out entity.AuthResult
	if err := a.c.doJSON(ctx, http.MethodPost, "/api/auth/register", nil, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountClient) Login(ctx context.Context, cred entity.Credentials) (*entity.AuthResult, error) {
	var out entity.AuthResult
	if err := a.c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, cred, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountClient) Profile(ctx context.Context) (*entity.Profile, error) {
	var out entity.Profile
	if err := a.c.doJSON(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountClient) UpdateProfile(ctx context.Context, p entity.Profile) (*entity.Profile, error) {
	var out entity.Profile
	if err := a.c.doJSON(ctx, http.MethodPut, "/api/auth/profile", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountClient) Addresses(ctx context.Context) ([]entity.Address, error) {
	var out []entity.Address
	if err := a.c.doJSON(ctx, http.MethodGet, "/api/addresses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *AccountClient) AddAddress(ctx context.Context, addr entity.Address) (*entity.Address, error) {
	var out entity.Address
	if err := a.c.doJSON(ctx, http.MethodPost, "/api/addresses", nil, addr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountClient) DeleteAddress(ctx context.Context, id int64) error {
	return a.c.doJSON(ctx, http.MethodDelete, idPath("/api/addresses/%d", id), nil, nil, nil)
}
