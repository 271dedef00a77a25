package entity

import "github.com/shopspring/decimal"

type CartItem struct {
	ID        int64           `json:"id,omitempty"`
	ProductID int64           `json:"productId"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	ID          int64           `json:"id,omitempty"`
	UserID      int64           `json:"userId,omitempty"`
	CartItems   []CartItem      `json:"cartItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// IsEmpty is true for a nil cart as well.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.CartItems) == 0
}

// ItemCount is the number of distinct lines, which is what the navbar badge shows.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	return len(c.CartItems)
}

func (c *Cart) Item(productID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.CartItems {
		if it.ProductID == productID || (it.Product != nil && it.Product.ID == productID) {
			return it, true
		}
	}
	return CartItem{}, false
}

// Total returns TotalAmount, or the sum of line subtotals when the backend
// omitted it.
func (c *Cart) Total() decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	if !c.TotalAmount.IsZero() {
		return c.TotalAmount
	}
	sum := decimal.Zero
	for _, it := range c.CartItems {
		if !it.Subtotal.IsZero() {
			sum = sum.Add(it.Subtotal)
			continue
		}
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}
