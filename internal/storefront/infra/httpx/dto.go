package httpx

import (
	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront/internal/storefront/core/catalog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type SessionResponse struct {
	LoggedIn      bool   `json:"loggedIn"`
	IsAdmin       bool   `json:"isAdmin"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	CartItemCount int    `json:"cartItemCount"`
	Redirect      string `json:"redirect,omitempty"`
}

type HomeResponse struct {
	NewArrivals []entity.Product `json:"newArrivals"`
	Popular     []entity.Product `json:"popularProducts"`
	Categories  []string         `json:"categories"`
	Coupons     []entity.Coupon  `json:"coupons"`
}

type ProductSummary struct {
	entity.Product
	Stock catalog.StockStatus `json:"stockStatus"`
}

type ProductListResponse struct {
	Products      []ProductSummary       `json:"products"`
	Total         int                    `json:"total"`
	Categories    []string               `json:"categories"`
	PriceRange    catalog.PriceRange     `json:"priceRange"`
	ActiveFilters []catalog.ActiveFilter `json:"activeFilters"`
	SortBy        string                 `json:"sortBy"`
}

type ProductDetailResponse struct {
	ProductSummary
	MaxQuantity int `json:"maxQuantity"`
}

type AddToCartRequest struct {
	ProductID int64 `json:"productId"`
	// Quantity is omitted by the product grid's quick-add button.
	Quantity *int `json:"quantity,omitempty"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Cart      *entity.Cart    `json:"cart"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

type CouponRequest struct {
	Code string `json:"code"`
}

type OrderSummary struct {
	entity.Order
	CanPay bool `json:"canPay"`
}

type OrderListResponse struct {
	Orders        []OrderSummary       `json:"orders"`
	StatusOptions []entity.OrderStatus `json:"statusOptions"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ProfileResponse struct {
	Profile        *entity.Profile             `json:"profile"`
	Addresses      []entity.Address            `json:"addresses"`
	PaymentMethods []entity.SavedPaymentMethod `json:"paymentMethods"`
}

type CheckoutRunResponse struct {
	Latest  *sagalog.SagaLog  `json:"latest"`
	History []sagalog.SagaLog `json:"history"`
}
