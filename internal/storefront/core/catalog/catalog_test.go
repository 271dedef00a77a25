package catalog

import (
	"net/url"
	"testing"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, name, category, price string, stock int) entity.Product {
	return entity.Product{
		ID:            id,
		Name:          name,
		Description:   name + " description",
		Category:      category,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CreatedAt:     entity.Timestamp{Time: time.Date(2024, 1, int(id), 0, 0, 0, 0, time.UTC)},
	}
}

func fixture() []entity.Product {
	return []entity.Product{
		product(1, "Laptop", "Electronics", "999.50", 5),
		product(2, "apple", "Groceries", "1.20", 100),
		product(3, "Banana", "Groceries", "0.80", 0),
		product(4, "Headphones", "Electronics", "49.99", 30),
	}
}

func ids(ps []entity.Product) []int64 {
	out := make([]int64, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestPriceRangeOf(t *testing.T) {
	r := PriceRangeOf(fixture())
	assert.True(t, r.Min.Equal(decimal.Zero), r.Min.String())
	assert.True(t, r.Max.Equal(decimal.NewFromInt(1000)), r.Max.String())

	empty := PriceRangeOf(nil)
	assert.True(t, empty.Max.Equal(decimal.NewFromInt(10000)))
}

func TestApply_Filters(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want []int64
	}{
		{name: "no filters keeps backend order", q: Query{}, want: []int64{1, 2, 3, 4}},
		{name: "category is exact", q: Query{Category: "Groceries"}, want: []int64{2, 3}},
		{name: "search is case-insensitive", q: Query{Search: "APPLE"}, want: []int64{2}},
		{name: "search matches category", q: Query{Search: "electro"}, want: []int64{1, 4}},
		{name: "price bounds are inclusive", q: Query{MinPrice: dec("1.20"), MaxPrice: dec("49.99")}, want: []int64{2, 4}},
		{name: "in stock only", q: Query{InStockOnly: true}, want: []int64{1, 2, 4}},
		{name: "unknown sort keeps order", q: Query{SortBy: "random"}, want: []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(fixture(), tt.q)))
		})
	}
}

func TestApply_Sorts(t *testing.T) {
	ps := fixture()
	ps[3].IsPopular = true
	ps[1].IsPopular = true
	ps[1].Rating = 4.5
	ps[3].Rating = 4.8

	assert.Equal(t, []int64{3, 2, 4, 1}, ids(Apply(ps, Query{SortBy: SortPriceAsc})))
	assert.Equal(t, []int64{1, 4, 2, 3}, ids(Apply(ps, Query{SortBy: SortPriceDesc})))
	assert.Equal(t, []int64{2, 3, 4, 1}, ids(Apply(ps, Query{SortBy: SortNameAsc})))
	assert.Equal(t, []int64{1, 4, 3, 2}, ids(Apply(ps, Query{SortBy: SortNameDesc})))
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(Apply(ps, Query{SortBy: SortNewest})))
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(Apply(ps, Query{SortBy: SortPopular})))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	ps := fixture()
	_ = Apply(ps, Query{SortBy: SortPriceAsc})
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(ps))
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(url.Values{
		"category": {"Electronics"},
		"search":   {"  lap "},
		"sort":     {SortNewest},
		"minPrice": {"10"},
		"inStock":  {"true"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Electronics", q.Category)
	assert.Equal(t, "lap", q.Search)
	assert.True(t, q.InStockOnly)
	require.NotNil(t, q.MinPrice)
	assert.Nil(t, q.MaxPrice)

	_, err = ParseQuery(url.Values{"maxPrice": {"cheap"}})
	assert.Error(t, err)
}

func TestActiveFiltersAndRemove(t *testing.T) {
	r := PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(1000)}
	q := Query{Category: "Groceries", Search: "app", InStockOnly: true, MinPrice: dec("10")}

	got := ActiveFilters(q, r)
	require.Len(t, got, 4)
	assert.Equal(t, ActiveFilter{Label: "Category: Groceries", Type: FilterCategory}, got[0])
	assert.Equal(t, "Price: ₹10 - ₹1000", got[1].Label)
	assert.Equal(t, "In Stock Only", got[2].Label)
	assert.Equal(t, `Search: "app"`, got[3].Label)

	q = RemoveFilter(q, FilterPrice)
	q = RemoveFilter(q, FilterSearch)
	assert.Len(t, ActiveFilters(q, r), 2)

	assert.Empty(t, ActiveFilters(Query{MinPrice: dec("0"), MaxPrice: dec("1000")}, r))
}

func TestCategoriesAndHome(t *testing.T) {
	ps := fixture()
	ps[0].IsPopular = true
	ps = append(ps, product(5, "Mouse", "Electronics", "20", 3))

	assert.Equal(t, []string{"Electronics", "Groceries"}, Categories(ps))
	assert.Equal(t, []int64{5, 4, 3, 2}, ids(NewArrivals(ps)))
	assert.Equal(t, []int64{1}, ids(Popular(ps)))
}

func TestStockStatusAndClamp(t *testing.T) {
	assert.Equal(t, "out-of-stock", StockStatusOf(product(1, "a", "c", "1", 0)).Class)
	assert.Equal(t, "Only 19 left!", StockStatusOf(product(1, "a", "c", "1", 19)).Label)
	assert.Equal(t, "In Stock", StockStatusOf(product(1, "a", "c", "1", 20)).Label)

	p := product(1, "a", "c", "1", 3)
	assert.Equal(t, 3, ClampQuantity(10, p))
	assert.Equal(t, 1, ClampQuantity(0, p))
	assert.Equal(t, 2, ClampQuantity(2, p))
}
