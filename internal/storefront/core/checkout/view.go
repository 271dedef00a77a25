package checkout

import (
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
)

// View is what the checkout page renders. Only the masked card is shown;
// ConfirmCard tells the page to ask for the card number and CVV again before
// placing the order.
type View struct {
	Step              entity.CheckoutStep         `json:"step"`
	Cart              *entity.Cart                `json:"cart"`
	Addresses         []entity.Address            `json:"addresses"`
	PaymentMethods    []entity.SavedPaymentMethod `json:"paymentMethods"`
	UseNewAddress     bool                        `json:"useNewAddress"`
	SelectedAddressID int64                       `json:"selectedAddressId,omitempty"`
	NewAddress        entity.Address              `json:"newAddress"`
	UseNewPayment     bool                        `json:"useNewPayment"`
	SelectedPaymentID int64                       `json:"selectedPaymentId,omitempty"`
	PaymentType       entity.PaymentMethodType    `json:"paymentMethodType"`
	MaskedCard        string                      `json:"maskedCard,omitempty"`
	ConfirmCard       bool                        `json:"confirmCard"`
	UpiID             string                      `json:"upiId,omitempty"`
	Coupon            *entity.AppliedCoupon       `json:"appliedCoupon,omitempty"`
	CouponError       string                      `json:"couponError,omitempty"`
	Subtotal          decimal.Decimal             `json:"subtotal"`
	Discount          decimal.Decimal             `json:"discount"`
	GrandTotal        decimal.Decimal             `json:"grandTotal"`
	ShippingAddress   string                      `json:"shippingAddress"`
	Processing        bool                        `json:"processing"`
}

func NewView(st *entity.CheckoutState) View {
	v := View{
		Step:              st.Step,
		Cart:              st.Cart,
		Addresses:         st.Addresses,
		PaymentMethods:    st.PaymentMethods,
		UseNewAddress:     st.UseNewAddress,
		SelectedAddressID: st.SelectedAddressID,
		NewAddress:        st.NewAddress,
		UseNewPayment:     st.UseNewPayment,
		SelectedPaymentID: st.SelectedPaymentID,
		PaymentType:       st.PaymentType,
		MaskedCard:        st.Payment.MaskedCard,
		ConfirmCard:       NeedsCardSecret(st),
		UpiID:             st.Payment.UpiID,
		Coupon:            st.Coupon,
		CouponError:       st.CouponError,
		Subtotal:          st.Cart.Total(),
		Discount:          st.Discount,
		GrandTotal:        GrandTotal(st),
		ShippingAddress:   FormattedShippingAddress(st),
		Processing:        st.Processing,
	}
	if v.Addresses == nil {
		v.Addresses = []entity.Address{}
	}
	if v.PaymentMethods == nil {
		v.PaymentMethods = []entity.SavedPaymentMethod{}
	}
	return v
}
