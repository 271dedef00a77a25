package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// --- PlaceOrderStep ---

// PlaceOrderStep creates the order from the session cart. A later failure
// leaves that order pending payment rather than cancelling it.
type PlaceOrderStep struct {
	orders  ports.OrderService
	request entity.PlaceOrderRequest
	order   *entity.Order
}

func NewPlaceOrderStep(orders ports.OrderService, request entity.PlaceOrderRequest) *PlaceOrderStep {
	return &PlaceOrderStep{orders: orders, request: request}
}

func (s *PlaceOrderStep) Name() string { return "Place_Order_Step" }

func (s *PlaceOrderStep) Execute(ctx context.Context) error {
	order, err := s.orders.PlaceOrder(ctx, s.request)
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}
	if order == nil {
		return errors.New("backend returned no order")
	}
	s.order = order
	return nil
}

// Compensate leaves the order PENDING so it can be paid from order history.
func (s *PlaceOrderStep) Compensate(ctx context.Context) error {
	if s.order != nil {
		slog.InfoContext(ctx, "order left pending for retry", "order_id", s.order.ID, "tracking_id", s.order.OrderTrackingID)
	}
	return nil
}

// Order is nil until Execute succeeds.
func (s *PlaceOrderStep) Order() *entity.Order { return s.order }

// --- ProcessPaymentStep ---

// OrderSource hands a later step the order an earlier step produced.
type OrderSource interface {
	Order() *entity.Order
}

// ProcessPaymentStep charges the order named by its source.
type ProcessPaymentStep struct {
	payments ports.PaymentService
	source   OrderSource
	method   entity.PaymentMethodType
	details  entity.PaymentDetails
	payment  *entity.Payment
}

// NewProcessPaymentStep charges the order produced by source. Order id and
// amount are read from it at execution time.
func NewProcessPaymentStep(payments ports.PaymentService, source OrderSource, method entity.PaymentMethodType, details entity.PaymentDetails) *ProcessPaymentStep {
	return &ProcessPaymentStep{payments: payments, source: source, method: method, details: details}
}

func (s *ProcessPaymentStep) Name() string { return "Process_Payment_Step" }

func (s *ProcessPaymentStep) Execute(ctx context.Context) error {
	order := s.source.Order()
	if order == nil {
		return errors.New("no order to pay")
	}
	payment, err := s.payments.ProcessPayment(ctx, entity.PaymentRequest{
		OrderID:        order.ID,
		PaymentMethod:  s.method,
		Amount:         order.TotalAmount,
		PaymentDetails: s.details,
	})
	if err != nil {
		return fmt.Errorf("payment for order %d: %w", order.ID, err)
	}
	s.payment = payment
	return nil
}

// Compensate is a no-op: the payment is the last fallible step.
func (s *ProcessPaymentStep) Compensate(ctx context.Context) error {
	return nil
}

func (s *ProcessPaymentStep) Payment() *entity.Payment { return s.payment }

// --- RefreshCartStep ---

// RefreshCartStep re-reads the cart so the badge reflects the emptied cart.
// Failures are logged and never stop the run.
type RefreshCartStep struct {
	carts ports.CartService
	cart  *entity.Cart
}

func NewRefreshCartStep(carts ports.CartService) *RefreshCartStep {
	return &RefreshCartStep{carts: carts}
}

func (s *RefreshCartStep) Name() string { return "Refresh_Cart_Step" }

func (s *RefreshCartStep) Execute(ctx context.Context) error {
	cart, err := s.carts.GetCart(ctx)
	if err != nil {
		slog.WarnContext(ctx, "cart refresh failed", "error", err)
		return nil
	}
	s.cart = cart
	return nil
}

func (s *RefreshCartStep) Compensate(ctx context.Context) error {
	return nil
}

func (s *RefreshCartStep) Cart() *entity.Cart { return s.cart }
