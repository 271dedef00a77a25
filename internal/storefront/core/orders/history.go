// Package orders builds the order history view and handles paying a
// pending order from it.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

var ErrNotPayable = errors.New("orders: order is not pending payment")

// Filter narrows the order history. Zero fields match everything.
type Filter struct {
	Status entity.OrderStatus
	Search string
}

// History sorts a copy of list newest first and keeps the orders matching f.
// Search is case-insensitive over tracking id, shipping address and item
// product names.
func History(list []entity.Order, f Filter) []entity.Order {
	sorted := append([]entity.Order(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt.Time)
	})

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]entity.Order, 0, len(sorted))
	for _, o := range sorted {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if needle != "" && !matches(o, needle) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matches(o entity.Order, needle string) bool {
	if strings.Contains(strings.ToLower(o.OrderTrackingID), needle) ||
		strings.Contains(strings.ToLower(o.ShippingAddress), needle) {
		return true
	}
	for _, it := range o.OrderItems {
		if it.Product != nil && strings.Contains(strings.ToLower(it.Product.Name), needle) {
			return true
		}
	}
	return false
}

// Payer retries payment for an order still pending payment.
type Payer struct {
	orders   ports.OrderService
	payments ports.PaymentService
	now      func() time.Time
}

func NewPayer(orders ports.OrderService, payments ports.PaymentService) *Payer {
	return &Payer{orders: orders, payments: payments, now: time.Now}
}

// PayNow charges a pending order with the shopper's saved method for the
// order's total and reports the outcome as a toast.
func (p *Payer) PayNow(ctx context.Context, s *entity.Session, orderID int64) (*entity.Payment, error) {
	order, err := p.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: load order %d: %w", orderID, err)
	}
	if !order.Payable() {
		s.AddToast(fmt.Sprintf("Payment failed: Order is %s. Please try again.", strings.ToLower(string(order.Status))), entity.ToastDanger, p.now())
		return nil, ErrNotPayable
	}

	payment, err := p.payments.ProcessPayment(ctx, entity.PaymentRequest{
		OrderID:       order.ID,
		PaymentMethod: entity.MethodSavedMethod,
		Amount:        order.TotalAmount,
	})
	if err != nil && ports.IsAuthFailure(err) {
		return nil, fmt.Errorf("orders: pay order %d: %w", orderID, err)
	}
	if err != nil {
		msg := "Unknown error"
		var pm interface{ PublicMessage() string }
		if errors.As(err, &pm) && pm.PublicMessage() != "" {
			msg = pm.PublicMessage()
		}
		s.AddToast(fmt.Sprintf("Payment failed: %s. Please try again.", msg), entity.ToastDanger, p.now())
		return nil, fmt.Errorf("orders: pay order %d: %w", orderID, err)
	}
	s.AddToast("Payment successful!", entity.ToastSuccess, p.now())
	return payment, nil
}
