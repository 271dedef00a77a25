package entity

import "github.com/shopspring/decimal"

type CheckoutStep int

const (
	StepAddress CheckoutStep = iota + 1
	StepPayment
	StepReview
)

// CheckoutState is the wizard's view state, kept in the session between requests.
type CheckoutState struct {
	Step           CheckoutStep         `json:"step"`
	Cart           *Cart                `json:"cart"`
	Addresses      []Address            `json:"addresses"`
	PaymentMethods []SavedPaymentMethod `json:"paymentMethods"`
	Phone          string               `json:"phone"`

	UseNewAddress     bool    `json:"useNewAddress"`
	SelectedAddressID int64   `json:"selectedAddressId,omitempty"`
	NewAddress        Address `json:"newAddress"`

	UseNewPayment     bool              `json:"useNewPayment"`
	SelectedPaymentID int64             `json:"selectedPaymentId,omitempty"`
	PaymentType       PaymentMethodType `json:"paymentType"`
	// Payment never holds the full card number or the CVV.
	Payment           PaymentSummary    `json:"payment"`

	Coupon      *AppliedCoupon  `json:"coupon,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
	CouponError string          `json:"couponError,omitempty"`

	Processing     bool   `json:"processing"`
	LastTrackingID string `json:"lastTrackingId,omitempty"`
}

// SelectedAddress resolves the address the order ships to.
func (s *CheckoutState) SelectedAddress() (Address, bool) {
	if s.UseNewAddress {
		return s.NewAddress, true
	}
	for _, a := range s.Addresses {
		if a.ID == s.SelectedAddressID {
			return a, true
		}
	}
	return Address{}, false
}

func (s *CheckoutState) SelectedPaymentMethod() (SavedPaymentMethod, bool) {
	for _, m := range s.PaymentMethods {
		if m.ID == s.SelectedPaymentID {
			return m, true
		}
	}
	return SavedPaymentMethod{}, false
}
