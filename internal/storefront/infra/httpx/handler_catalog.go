package httpx

import (
	"log/slog"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/catalog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	coupons, err := h.coupons.ActiveCoupons(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "active coupons unavailable", "error", err)
		coupons = []entity.Coupon{}
	}
	writeJSON(w, http.StatusOK, HomeResponse{
		NewArrivals: catalog.NewArrivals(products),
		Popular:     catalog.Popular(products),
		Categories:  catalog.Categories(products),
		Coupons:     coupons,
	})
}

func summarize(ps []entity.Product) []ProductSummary {
	out := make([]ProductSummary, len(ps))
	for i, p := range ps {
		out[i] = ProductSummary{Product: p, Stock: catalog.StockStatusOf(p)}
	}
	return out
}

// ListProducts applies the catalog filters from the query string. Pass
// remove=<type> to drop one active filter, or reset=true to clear the bounds.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := catalog.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	if t := r.URL.Query().Get("remove"); t != "" {
		q = catalog.RemoveFilter(q, t)
	}
	if r.URL.Query().Get("reset") == "true" {
		q = catalog.Reset(q)
	}

	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}

	rng := catalog.PriceRangeOf(products)
	filtered := catalog.Apply(products, q)
	writeJSON(w, http.StatusOK, ProductListResponse{
		Products:      summarize(filtered),
		Total:         len(filtered),
		Categories:    catalog.Categories(products),
		PriceRange:    rng,
		ActiveFilters: catalog.ActiveFilters(q, rng),
		SortBy:        q.SortBy,
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, ProductDetailResponse{
		ProductSummary: ProductSummary{Product: *p, Stock: catalog.StockStatusOf(*p)},
		MaxQuantity:    p.StockQuantity,
	})
}

func (h *Handler) ActiveCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ActiveCoupons(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}
