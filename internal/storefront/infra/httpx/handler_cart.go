package httpx

import (
	"fmt"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/catalog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const addToCartFailed = "Failed to add to cart. Please try again."

func cartResponse(c *entity.Cart) CartResponse {
	if c == nil {
		c = &entity.Cart{CartItems: []entity.CartItem{}}
	}
	return CartResponse{Cart: c, ItemCount: c.ItemCount(), Total: c.Total()}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(cart))
}

// AddToCart is reachable anonymously so it can tell the shopper to log in.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if !s.LoggedIn() {
		h.toast(s, "Please login to add items to cart", entity.ToastWarning)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:    "login_required",
			Message:  "Please login to add items to cart",
			Redirect: "/login",
		})
		return
	}

	var req AddToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "productId is required")
		return
	}

	product, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.backendError(w, r, s, err, addToCartFailed)
		return
	}
	if !product.InStock() {
		h.toast(s, "This product is out of stock", entity.ToastDanger)
		writeError(w, http.StatusConflict, "out_of_stock", "This product is out of stock")
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = catalog.ClampQuantity(*req.Quantity, *product)
	}
	cart, err := h.carts.AddToCart(r.Context(), product.ID, qty)
	if err != nil {
		h.backendError(w, r, s, err, addToCartFailed)
		return
	}

	msg := "Added to cart!"
	if req.Quantity != nil {
		msg = fmt.Sprintf("Added %d item(s) to cart!", qty)
	}
	h.toast(s, msg, entity.ToastSuccess)
	writeJSON(w, http.StatusOK, cartResponse(cart))
}

// UpdateQuantity sets a line to an absolute quantity by sending the
// difference to the backend, which only knows how to add.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(w, r, "productId")
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	s := h.session(r)
	cart, err := h.carts.GetCart(r.Context())
	if err != nil {
		h.backendError(w, r, s, err, "")
		return
	}
	item, found := cart.Item(productID)
	if !found {
		writeError(w, http.StatusNotFound, "not_in_cart", "product is not in the cart")
		return
	}
	if delta := req.Quantity - item.Quantity; delta != 0 {
		cart, err = h.carts.AddToCart(r.Context(), productID, delta)
		if err != nil {
			h.backendError(w, r, s, err, "Failed to update quantity.")
			return
		}
	}
	h.toast(s, "Quantity updated", entity.ToastSuccess)
	writeJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(w, r, "productId")
	if !ok {
		return
	}
	s := h.session(r)
	cart, err := h.carts.RemoveFromCart(r.Context(), productID)
	if err != nil {
		h.backendError(w, r, s, err, "Failed to remove item.")
		return
	}
	h.toast(s, "Item removed from cart", entity.ToastInfo)
	writeJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := h.carts.ClearCart(r.Context()); err != nil {
		h.backendError(w, r, s, err, "Failed to clear cart.")
		return
	}
	h.toast(s, "Cart cleared", entity.ToastInfo)
	writeJSON(w, http.StatusOK, cartResponse(nil))
}
