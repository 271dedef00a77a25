package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentMethodType string

const (
	MethodCreditCard  PaymentMethodType = "CREDIT_CARD"
	MethodDebitCard   PaymentMethodType = "DEBIT_CARD"
	MethodUPI         PaymentMethodType = "UPI"
	MethodNetBanking  PaymentMethodType = "NET_BANKING"
	MethodSavedMethod PaymentMethodType = "SAVED_METHOD"
)

func (t PaymentMethodType) IsCard() bool {
	return t == MethodCreditCard || t == MethodDebitCard
}

func ParsePaymentMethodType(s string) (PaymentMethodType, bool) {
	switch t := PaymentMethodType(s); t {
	case MethodCreditCard, MethodDebitCard, MethodUPI, MethodNetBanking:
		return t, true
	}
	return "", false
}

// PaymentDetails is the card / UPI form of a new payment.
type PaymentDetails struct {
	CardNumber     string `json:"cardNumber,omitempty"`
	CardHolderName string `json:"cardHolderName,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	CVV            string `json:"cvv,omitempty"`
	UpiID          string `json:"upiId,omitempty"`
}

// CardSecret is the part of a card that is never written to a session. The
// shopper sends it again with the place request.
type CardSecret struct {
	CardNumber string `json:"cardNumber"`
	CVV        string `json:"cvv"`
}

// PaymentSummary is what a session keeps of a new payment between the
// payment and review steps.
type PaymentSummary struct {
	MaskedCard     string `json:"maskedCard,omitempty"`
	CardHolderName string `json:"cardHolderName,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	UpiID          string `json:"upiId,omitempty"`
}

func SummarizePayment(d PaymentDetails) PaymentSummary {
	return PaymentSummary{
		MaskedCard:     MaskCardNumber(d.CardNumber),
		CardHolderName: d.CardHolderName,
		ExpiryDate:     d.ExpiryDate,
		UpiID:          d.UpiID,
	}
}

// Details joins the summary with the card secret into the payload the
// payment backend expects.
func (p PaymentSummary) Details(secret CardSecret) PaymentDetails {
	return PaymentDetails{
		CardNumber:     NormalizeCardNumber(secret.CardNumber),
		CardHolderName: p.CardHolderName,
		ExpiryDate:     p.ExpiryDate,
		CVV:            secret.CVV,
		UpiID:          p.UpiID,
	}
}

// NormalizeCardNumber drops the spaces and dashes shoppers type between digit
// groups.
func NormalizeCardNumber(n string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(n)
}

// ValidCardNumber reports whether n, once normalized, is at least four ASCII
// digits.
func ValidCardNumber(n string) bool {
	n = NormalizeCardNumber(n)
	if len(n) < 4 {
		return false
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MaskCardNumber renders "**** " and the last four characters of the
// normalized number, or "" when there are fewer than four.
func MaskCardNumber(n string) string {
	r := []rune(NormalizeCardNumber(n))
	if len(r) < 4 {
		return ""
	}
	return "**** " + string(r[len(r)-4:])
}

type PaymentRequest struct {
	OrderID       int64             `json:"orderId"`
	PaymentMethod PaymentMethodType `json:"paymentMethod"`
	Amount        decimal.Decimal   `json:"amount"`
	PaymentDetails
}

type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"orderId"`
	PaymentMethod string          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaymentDate   Timestamp       `json:"paymentDate"`
}

// SavedPaymentMethod is a masked payment method stored on the user's profile.
type SavedPaymentMethod struct {
	ID             int64  `json:"id,omitempty"`
	Type           string `json:"type"`
	Provider       string `json:"provider"`
	MaskedNumber   string `json:"maskedNumber"`
	CardHolderName string `json:"cardHolderName,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
}
