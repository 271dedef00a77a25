// Package checkout drives the three-step checkout (address, payment, review)
// over a session's CheckoutState and places the order through the checkout
// saga.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront/internal/coordinator"
	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart   = errors.New("checkout: cart is empty")
	ErrNotStarted  = errors.New("checkout: not started")
	ErrWrongStep   = errors.New("checkout: action not allowed at this step")
	ErrProcessing  = errors.New("checkout: order is already being placed")
	ErrOrderFailed = errors.New("checkout: failed to create order")
)

// ValidationError is a form problem the shopper must fix. Its message has
// already been queued as a warning toast.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// fallbackPhone is used when the profile carries no phone number.
const fallbackPhone = "9999999999"

// Wizard holds no per-shopper state of its own: everything it reads and
// writes lives in the session's CheckoutState, so one Wizard serves every
// request. The backend ports are the ones the HTTP handler uses; runs records
// each Place as a checkout run and may be nil.
type Wizard struct {
	carts    ports.CartService
	orders   ports.OrderService
	payments ports.PaymentService
	coupons  ports.CouponService
	accounts ports.AccountService
	runs     sagalog.Repository
	now      func() time.Time
}

// NewWizard wires the wizard to the backend. runs may be nil.
func NewWizard(
	carts ports.CartService,
	orders ports.OrderService,
	payments ports.PaymentService,
	coupons ports.CouponService,
	accounts ports.AccountService,
	runs sagalog.Repository,
) *Wizard {
	return &Wizard{
		carts:    carts,
		orders:   orders,
		payments: payments,
		coupons:  coupons,
		accounts: accounts,
		runs:     runs,
		now:      time.Now,
	}
}

func (w *Wizard) toast(s *entity.Session, msg string, typ entity.ToastType) {
	s.AddToast(msg, typ, w.now())
}

func (w *Wizard) invalid(s *entity.Session, msg string) error {
	w.toast(s, msg, entity.ToastWarning)
	return &ValidationError{Message: msg}
}

// Start loads the cart, saved addresses, saved payment methods and profile
// phone into a fresh wizard at step 1. An empty cart queues a warning toast
// and returns ErrEmptyCart.
func (w *Wizard) Start(ctx context.Context, s *entity.Session) error {
	cart, err := w.carts.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("checkout: load cart: %w", err)
	}
	if cart.IsEmpty() {
		s.Checkout = nil
		w.toast(s, "Your cart is empty. Redirecting...", entity.ToastWarning)
		return ErrEmptyCart
	}

	st := &entity.CheckoutState{
		Step:        entity.StepAddress,
		Cart:        cart,
		PaymentType: entity.MethodCreditCard,
		NewAddress:  entity.Address{Label: "Home"},
		Phone:       fallbackPhone,
	}

	if addrs, err := w.accounts.Addresses(ctx); err != nil {
		slog.WarnContext(ctx, "checkout: saved addresses unavailable", "error", err)
	} else {
		st.Addresses = addrs
	}
	if len(st.Addresses) > 0 {
		st.SelectedAddressID = st.Addresses[0].ID
	} else {
		st.UseNewAddress = true
	}

	if methods, err := w.payments.SavedMethods(ctx); err != nil {
		slog.WarnContext(ctx, "checkout: saved payment methods unavailable", "error", err)
	} else {
		st.PaymentMethods = methods
	}
	if len(st.PaymentMethods) > 0 {
		st.SelectedPaymentID = st.PaymentMethods[0].ID
	} else {
		st.UseNewPayment = true
	}

	if p, err := w.accounts.Profile(ctx); err == nil && p.PhoneNumber != "" {
		st.Phone = p.PhoneNumber
	}

	s.Checkout = st
	return nil
}

func (w *Wizard) state(s *entity.Session) (*entity.CheckoutState, error) {
	if s.Checkout == nil {
		return nil, ErrNotStarted
	}
	return s.Checkout, nil
}

// AddressSelection is the address step's form. UseNew picks between the
// inline Address and one of the saved addresses by AddressID.
type AddressSelection struct {
	UseNew    bool           `json:"useNewAddress"`
	AddressID int64          `json:"addressId"`
	Address   entity.Address `json:"newAddress"`
}

// ProceedToPayment validates the address step and moves to step 2.
func (w *Wizard) ProceedToPayment(s *entity.Session, sel AddressSelection) error {
	st, err := w.state(s)
	if err != nil {
		return err
	}
	if st.Step != entity.StepAddress {
		return ErrWrongStep
	}

	st.UseNewAddress = sel.UseNew
	if sel.UseNew {
		if sel.Address.Label == "" {
			sel.Address.Label = "Home"
		}
		st.NewAddress = sel.Address
		if sel.Address.Street == "" || sel.Address.City == "" || sel.Address.ZipCode == "" {
			return w.invalid(s, "Please fill in all address fields.")
		}
	} else {
		st.SelectedAddressID = sel.AddressID
		if _, ok := st.SelectedAddress(); !ok || sel.AddressID == 0 {
			return w.invalid(s, "Please select an address.")
		}
	}
	st.Step = entity.StepPayment
	return nil
}

// PaymentSelection is the payment step's form. With UseNew the Type and
// Details describe a new card or UPI payment; otherwise PaymentID names a
// saved method. Only a masked summary of Details is kept once the step
// passes.
type PaymentSelection struct {
	UseNew    bool                     `json:"useNewPayment"`
	PaymentID int64                    `json:"paymentId"`
	Type      entity.PaymentMethodType `json:"paymentMethodType"`
	Details   entity.PaymentDetails    `json:"details"`
}

// ProceedToReview validates the payment step and moves to step 3.
func (w *Wizard) ProceedToReview(s *entity.Session, sel PaymentSelection) error {
	st, err := w.state(s)
	if err != nil {
		return err
	}
	if st.Step != entity.StepPayment {
		return ErrWrongStep
	}

	st.UseNewPayment = sel.UseNew
	if sel.UseNew {
		typ, ok := entity.ParsePaymentMethodType(string(sel.Type))
		if !ok {
			typ = entity.MethodCreditCard
		}
		st.PaymentType = typ
		st.Payment = entity.SummarizePayment(sel.Details)
		if typ == entity.MethodUPI && sel.Details.UpiID == "" {
			return w.invalid(s, "Please enter UPI ID")
		}
		if typ.IsCard() && (!entity.ValidCardNumber(sel.Details.CardNumber) || sel.Details.CVV == "") {
			return w.invalid(s, "Please enter card details")
		}
	} else {
		st.SelectedPaymentID = sel.PaymentID
		if _, ok := st.SelectedPaymentMethod(); !ok {
			return w.invalid(s, "Please select a payment method.")
		}
	}
	st.Step = entity.StepReview
	return nil
}

// Back moves one step back, never below the address step.
func (w *Wizard) Back(s *entity.Session) error {
	st, err := w.state(s)
	if err != nil {
		return err
	}
	if st.Processing {
		return ErrProcessing
	}
	if st.Step > entity.StepAddress {
		st.Step--
	}
	return nil
}

// publicMessage returns the backend's human-readable message, if any.
func publicMessage(err error) string {
	var pm interface{ PublicMessage() string }
	if errors.As(err, &pm) {
		return pm.PublicMessage()
	}
	return ""
}

// ApplyCoupon validates code against the cart total with the backend.
func (w *Wizard) ApplyCoupon(ctx context.Context, s *entity.Session, code string) error {
	st, err := w.state(s)
	if err != nil {
		return err
	}
	if code == "" {
		st.CouponError = "Please enter a coupon code"
		return &ValidationError{Message: st.CouponError}
	}

	res, err := w.coupons.ValidateCoupon(ctx, code, st.Cart.Total())
	if err != nil {
		st.Coupon = nil
		st.Discount = decimal.Zero
		st.CouponError = publicMessage(err)
		if st.CouponError == "" {
			st.CouponError = "Invalid coupon code"
		}
		if !ports.IsAuthFailure(err) {
			w.toast(s, st.CouponError, entity.ToastDanger)
		}
		return fmt.Errorf("checkout: validate coupon: %w", err)
	}

	if !res.Valid {
		st.Coupon = nil
		st.Discount = decimal.Zero
		st.CouponError = res.Message
		w.toast(s, res.Message, entity.ToastWarning)
		return &ValidationError{Message: res.Message}
	}

	applied := res.Code
	if applied == "" {
		applied = code
	}
	st.Coupon = &entity.AppliedCoupon{
		Code:           applied,
		DiscountAmount: res.DiscountAmount,
		Description:    res.Description,
		MinOrderValue:  res.MinOrderValue,
	}
	st.Discount = res.DiscountAmount
	st.CouponError = ""
	msg := res.Message
	if msg == "" {
		msg = "Coupon applied successfully"
	}
	w.toast(s, msg, entity.ToastSuccess)
	return nil
}

func (w *Wizard) RemoveCoupon(s *entity.Session) error {
	st, err := w.state(s)
	if err != nil {
		return err
	}
	st.Coupon = nil
	st.Discount = decimal.Zero
	st.CouponError = ""
	w.toast(s, "Coupon removed", entity.ToastInfo)
	return nil
}

// GrandTotal is the cart total minus the coupon discount, floored at zero.
func GrandTotal(st *entity.CheckoutState) decimal.Decimal {
	if st == nil || st.Cart == nil {
		return decimal.Zero
	}
	total := st.Cart.Total().Sub(st.Discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// FormattedShippingAddress renders the chosen address, or "" when none is chosen.
func FormattedShippingAddress(st *entity.CheckoutState) string {
	if st == nil {
		return ""
	}
	addr, ok := st.SelectedAddress()
	if !ok {
		return ""
	}
	return addr.Format()
}

// PlaceResult tells the caller where to send the shopper next.
type PlaceResult struct {
	RunID      string          `json:"runId"`
	OrderID    int64           `json:"orderId"`
	TrackingID string          `json:"trackingId"`
	Paid       bool            `json:"paid"`
	Amount     decimal.Decimal `json:"amount"`
	Redirect   string          `json:"redirect"`
}

type runPayload struct {
	ShippingAddress string                   `json:"shippingAddress"`
	CouponCode      string                   `json:"couponCode,omitempty"`
	PaymentMethod   entity.PaymentMethodType `json:"paymentMethod"`
	CartTotal       decimal.Decimal          `json:"cartTotal"`
	Discount        decimal.Decimal          `json:"discount"`
}

// NeedsCardSecret reports whether Place must be given the card number and
// CVV: the session only remembers a masked card.
func NeedsCardSecret(st *entity.CheckoutState) bool {
	return st != nil && st.UseNewPayment && st.PaymentType.IsCard()
}

// Place runs the checkout saga from the review step. For a new card, secret
// must carry the number shown masked at review and the CVV; it is used for
// this payment only. A failed order creation returns ErrOrderFailed and keeps
// the wizard on the review step. A failed payment is not an error: the order
// stays PENDING, the wizard is cleared and the result redirects to order
// history with Paid=false.
//
// Place does not guard against two concurrent calls for one session; the
// caller serialises them.
func (w *Wizard) Place(ctx context.Context, s *entity.Session, secret entity.CardSecret) (*PlaceResult, error) {
	st, err := w.state(s)
	if err != nil {
		return nil, err
	}
	if st.Processing {
		return nil, ErrProcessing
	}
	if st.Step != entity.StepReview {
		return nil, ErrWrongStep
	}

	method := entity.MethodSavedMethod
	var details entity.PaymentDetails
	if st.UseNewPayment {
		method = st.PaymentType
		if NeedsCardSecret(st) {
			if secret.CVV == "" || !entity.ValidCardNumber(secret.CardNumber) ||
				entity.MaskCardNumber(secret.CardNumber) != st.Payment.MaskedCard {
				return nil, w.invalid(s, "Please re-enter your card number and CVV")
			}
			details = st.Payment.Details(secret)
		} else {
			details = st.Payment.Details(entity.CardSecret{})
		}
	}

	st.Processing = true
	defer func() { st.Processing = false }()

	req := entity.PlaceOrderRequest{
		ShippingAddress: FormattedShippingAddress(st),
		PhoneNumber:     st.Phone,
	}
	if st.Coupon != nil {
		req.CouponCode = st.Coupon.Code
	}

	placeStep := coordinator.NewPlaceOrderStep(w.orders, req)
	payStep := coordinator.NewProcessPaymentStep(w.payments, placeStep, method, details)
	refreshStep := coordinator.NewRefreshCartStep(w.carts)

	payload, _ := json.Marshal(runPayload{
		ShippingAddress: req.ShippingAddress,
		CouponCode:      req.CouponCode,
		PaymentMethod:   method,
		CartTotal:       st.Cart.Total(),
		Discount:        st.Discount,
	})
	runID := uuid.NewString()
	saga := coordinator.NewOrchestrator(runID, []coordinator.Step{placeStep, payStep, refreshStep}, w.runs,
		coordinator.WithPayload(string(payload)))

	runErr := saga.Start(ctx)

	order := placeStep.Order()
	if order == nil {
		slog.ErrorContext(ctx, "checkout: order creation failed", "run_id", runID, "error", runErr)
		w.toast(s, "Failed to create order.", entity.ToastDanger)
		return nil, fmt.Errorf("%w: %w", ErrOrderFailed, runErr)
	}

	res := &PlaceResult{
		RunID:      runID,
		OrderID:    order.ID,
		TrackingID: order.OrderTrackingID,
		Amount:     order.TotalAmount,
		Redirect:   "/orders",
	}
	st.LastTrackingID = order.OrderTrackingID

	if runErr != nil {
		msg := publicMessage(runErr)
		if msg == "" {
			msg = "Payment failed"
		}
		slog.WarnContext(ctx, "checkout: payment failed, order left pending", "run_id", runID, "order_id", order.ID, "error", runErr)
		w.toast(s, fmt.Sprintf("Payment failed: %s. Please try again from Order History.", msg), entity.ToastDanger)
		s.Checkout = nil
		return res, nil
	}

	res.Paid = true
	w.toast(s, fmt.Sprintf("Order placed successfully! ID: %s", order.OrderTrackingID), entity.ToastSuccess)
	s.Checkout = nil
	return res, nil
}
