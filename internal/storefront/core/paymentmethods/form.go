// Package paymentmethods turns the profile's "add payment method" form into
// the masked record the backend stores.
package paymentmethods

import (
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const (
	TypeCard = "CARD"
	TypeUPI  = "UPI"
)

// FormError is shown next to the form; nothing is sent to the backend.
type FormError struct {
	Message string
}

func (e *FormError) Error() string { return e.Message }

type Form struct {
	Type    entity.PaymentMethodType `json:"paymentMethodType"`
	Details entity.PaymentDetails    `json:"details"`
}

// Build validates f and returns the record to save. Full card numbers are
// reduced to their last four digits.
func Build(f Form) (entity.SavedPaymentMethod, error) {
	switch {
	case f.Type.IsCard():
		if !entity.ValidCardNumber(f.Details.CardNumber) {
			return entity.SavedPaymentMethod{}, &FormError{Message: "Invalid Card Number"}
		}
		pan := entity.NormalizeCardNumber(f.Details.CardNumber)
		return entity.SavedPaymentMethod{
			Type:           TypeCard,
			Provider:       provider(pan),
			MaskedNumber:   entity.MaskCardNumber(pan),
			CardHolderName: f.Details.CardHolderName,
			ExpiryDate:     f.Details.ExpiryDate,
		}, nil
	case f.Type == entity.MethodUPI:
		if f.Details.UpiID == "" {
			return entity.SavedPaymentMethod{}, &FormError{Message: "Invalid UPI ID"}
		}
		return entity.SavedPaymentMethod{
			Type:         TypeUPI,
			Provider:     TypeUPI,
			MaskedNumber: f.Details.UpiID,
		}, nil
	default:
		return entity.SavedPaymentMethod{}, &FormError{Message: "This payment method cannot be saved."}
	}
}

func provider(pan string) string {
	switch {
	case strings.HasPrefix(pan, "4"):
		return "Visa"
	case strings.HasPrefix(pan, "5"):
		return "Mastercard"
	default:
		return "Card Network"
	}
}

// EditForm pre-fills the form for an existing record. The card number and
// CVV cannot be recovered and stay blank.
func EditForm(m entity.SavedPaymentMethod) Form {
	f := Form{
		Type: entity.PaymentMethodType(m.Type),
		Details: entity.PaymentDetails{
			CardHolderName: m.CardHolderName,
			ExpiryDate:     m.ExpiryDate,
		},
	}
	if m.Type == TypeCard {
		f.Type = entity.MethodCreditCard
	}
	if m.Type == TypeUPI {
		f.Details.UpiID = m.MaskedNumber
	}
	return f
}
