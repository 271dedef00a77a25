// Package catalog holds the product-list pipeline: range computation,
// filtering, sorting and the home page selections. Everything here is pure
// and recomputed from the full product list on every request.
package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
	SortNewest    = "newest"
	SortPopular   = "popular"

	homeSectionSize = 4
	lowStockLimit   = 20
)

var (
	defaultMinPrice = decimal.Zero
	defaultMaxPrice = decimal.NewFromInt(10000)
)

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// PriceRangeOf returns floor(min price) and ceil(max price), or 0..10000 for
// an empty list.
func PriceRangeOf(products []entity.Product) PriceRange {
	if len(products) == 0 {
		return PriceRange{Min: defaultMinPrice, Max: defaultMaxPrice}
	}
	lo, hi := products[0].Price, products[0].Price
	for _, p := range products[1:] {
		lo = decimal.Min(lo, p.Price)
		hi = decimal.Max(hi, p.Price)
	}
	return PriceRange{Min: lo.Floor(), Max: hi.Ceil()}
}

// Query is the product-list filter state. Nil bounds mean "use the range".
type Query struct {
	Category    string
	Search      string
	SortBy      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
}

// ParseQuery reads category, search, sort, minPrice, maxPrice and inStock.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Category: v.Get("category"),
		Search:   strings.TrimSpace(v.Get("search")),
		SortBy:   v.Get("sort"),
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &q.MinPrice, "maxPrice": &q.MaxPrice} {
		raw := v.Get(key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Query{}, fmt.Errorf("catalog: invalid %s %q", key, raw)
		}
		*dst = &d
	}
	if raw := v.Get("inStock"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Query{}, fmt.Errorf("catalog: invalid inStock %q", raw)
		}
		q.InStockOnly = b
	}
	return q, nil
}

func (q Query) bounds(r PriceRange) (decimal.Decimal, decimal.Decimal) {
	lo, hi := r.Min, r.Max
	if q.MinPrice != nil {
		lo = *q.MinPrice
	}
	if q.MaxPrice != nil {
		hi = *q.MaxPrice
	}
	return lo, hi
}

// Apply filters a copy of products by category, search text, price and stock,
// then sorts it by q.SortBy. An unknown sort key keeps the backend order.
func Apply(products []entity.Product, q Query) []entity.Product {
	lo, hi := q.bounds(PriceRangeOf(products))
	needle := strings.ToLower(q.Search)

	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if needle != "" && !matches(p, needle) {
			continue
		}
		if p.Price.LessThan(lo) || p.Price.GreaterThan(hi) {
			continue
		}
		if q.InStockOnly && !p.InStock() {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out, q.SortBy)
	return out
}

func matches(p entity.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle)
}

func sortProducts(ps []entity.Product, by string) {
	var less func(a, b entity.Product) bool
	switch by {
	case SortPriceAsc:
		less = func(a, b entity.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b entity.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.English)
		sign := 1
		if by == SortNameDesc {
			sign = -1
		}
		less = func(a, b entity.Product) bool { return sign*col.CompareString(a.Name, b.Name) < 0 }
	case SortNewest:
		less = func(a, b entity.Product) bool { return a.CreatedAt.After(b.CreatedAt.Time) }
	case SortPopular:
		less = func(a, b entity.Product) bool {
			if a.IsPopular != b.IsPopular {
				return a.IsPopular
			}
			return a.Rating > b.Rating
		}
	default:
		return
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

// Categories returns the distinct categories in ascending order.
func Categories(products []entity.Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// NewArrivals is the four most recently created products.
func NewArrivals(products []entity.Product) []entity.Product {
	out := append([]entity.Product(nil), products...)
	sortProducts(out, SortNewest)
	return head(out, homeSectionSize)
}

// Popular is the first four products flagged popular, in backend order.
func Popular(products []entity.Product) []entity.Product {
	out := make([]entity.Product, 0, homeSectionSize)
	for _, p := range products {
		if p.IsPopular {
			out = append(out, p)
		}
	}
	return head(out, homeSectionSize)
}

func head(ps []entity.Product, n int) []entity.Product {
	if len(ps) > n {
		return ps[:n]
	}
	return ps
}
