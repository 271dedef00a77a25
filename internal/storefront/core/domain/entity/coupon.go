package entity

import "github.com/shopspring/decimal"

type Coupon struct {
	ID             int64           `json:"id,omitempty"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	MinOrderValue  decimal.Decimal `json:"minOrderValue"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	IsActive       *bool           `json:"isActive,omitempty"`
	ExpiryDate     *Timestamp      `json:"expiryDate,omitempty"`
	UsageLimit     *int            `json:"usageLimit,omitempty"`
	UsedCount      int             `json:"usedCount"`
}

type CouponValidation struct {
	Valid          bool            `json:"valid"`
	Code           string          `json:"code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	MinOrderValue  decimal.Decimal `json:"minOrderValue"`
	Description    string          `json:"description,omitempty"`
	Message        string          `json:"message"`
}

// AppliedCoupon is what the checkout keeps after a successful validation.
type AppliedCoupon struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Description    string          `json:"description"`
	MinOrderValue  decimal.Decimal `json:"minOrderValue"`
}
