package entity

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// AdminStatusOptions is what the back-office lets an admin set.
var AdminStatusOptions = []OrderStatus{StatusPending, StatusShipped, StatusDelivered, StatusCancelled}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

type OrderItem struct {
	ID        int64           `json:"id,omitempty"`
	ProductID int64           `json:"productId"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderTrackingID string          `json:"orderTrackingId"`
	UserID          int64           `json:"userId,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	PhoneNumber     string          `json:"phoneNumber"`
	CreatedAt       Timestamp       `json:"createdAt"`
}

// Payable reports whether the order can still be paid from order history.
func (o Order) Payable() bool {
	return o.Status == StatusPending
}

type PlaceOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	PhoneNumber     string `json:"phoneNumber"`
	CouponCode      string `json:"couponCode,omitempty"`
}
