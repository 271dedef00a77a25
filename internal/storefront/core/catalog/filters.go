package catalog

import (
	"fmt"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const (
	FilterCategory = "category"
	FilterPrice    = "price"
	FilterStock    = "stock"
	FilterSearch   = "search"
)

type ActiveFilter struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

// ActiveFilters lists the chips shown above the product grid. The price chip
// only appears once the bounds are narrower than the full range.
func ActiveFilters(q Query, r PriceRange) []ActiveFilter {
	filters := []ActiveFilter{}
	if q.Category != "" {
		filters = append(filters, ActiveFilter{Label: "Category: " + q.Category, Type: FilterCategory})
	}
	lo, hi := q.bounds(r)
	if lo.GreaterThan(r.Min) || hi.LessThan(r.Max) {
		filters = append(filters, ActiveFilter{
			Label: fmt.Sprintf("Price: ₹%s - ₹%s", lo.String(), hi.String()),
			Type:  FilterPrice,
		})
	}
	if q.InStockOnly {
		filters = append(filters, ActiveFilter{Label: "In Stock Only", Type: FilterStock})
	}
	if q.Search != "" {
		filters = append(filters, ActiveFilter{Label: `Search: "` + q.Search + `"`, Type: FilterSearch})
	}
	return filters
}

// RemoveFilter resets one filter. Unknown types leave q untouched.
func RemoveFilter(q Query, filterType string) Query {
	switch filterType {
	case FilterCategory:
		q.Category = ""
	case FilterPrice:
		q.MinPrice, q.MaxPrice = nil, nil
	case FilterStock:
		q.InStockOnly = false
	case FilterSearch:
		q.Search = ""
	}
	return q
}

// Reset clears bounds, stock and sort but keeps category and search, like the
// "reset filters" button.
func Reset(q Query) Query {
	q.MinPrice, q.MaxPrice = nil, nil
	q.InStockOnly = false
	q.SortBy = ""
	return q
}

type StockStatus struct {
	Class string `json:"class"`
	Label string `json:"label"`
}

func StockStatusOf(p entity.Product) StockStatus {
	switch {
	case p.StockQuantity <= 0:
		return StockStatus{Class: "out-of-stock", Label: "Out of Stock"}
	case p.StockQuantity < lowStockLimit:
		return StockStatus{Class: "low-stock", Label: fmt.Sprintf("Only %d left!", p.StockQuantity)}
	default:
		return StockStatus{Class: "in-stock", Label: "In Stock"}
	}
}

// ClampQuantity keeps a requested quantity within 1..stock. With no stock the
// result is 1 so the caller can still report "out of stock".
func ClampQuantity(qty int, p entity.Product) int {
	if qty > p.StockQuantity {
		qty = p.StockQuantity
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}
