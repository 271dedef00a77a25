package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const (
	maxUploadMemory = 8 << 20
	maxImageSize    = 5 << 20
)

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, summarize(products))
}

// productForm reads the admin product form: a "product" JSON field plus any
// number of "images" files.
func productForm(w http.ResponseWriter, r *http.Request) (entity.ProductInput, []entity.ImageUpload, bool) {
	var in entity.ProductInput
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return in, nil, false
	}
	if err := json.Unmarshal([]byte(r.FormValue("product")), &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product", "product must be a JSON object")
		return in, nil, false
	}
	if strings.TrimSpace(in.Name) == "" || !in.Price.IsPositive() || in.StockQuantity < 0 {
		writeError(w, http.StatusBadRequest, "invalid_product", "name, a positive price and a non-negative stock are required")
		return in, nil, false
	}

	var images []entity.ImageUpload
	for _, fh := range r.MultipartForm.File["images"] {
		if fh.Size > maxImageSize {
			writeError(w, http.StatusRequestEntityTooLarge, "image_too_large", fh.Filename+" exceeds 5MB")
			return in, nil, false
		}
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_image", err.Error())
			return in, nil, false
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_image", err.Error())
			return in, nil, false
		}
		images = append(images, entity.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return in, images, true
}

func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	in, images, ok := productForm(w, r)
	if !ok {
		return
	}
	s := h.session(r)
	p, err := h.products.CreateProduct(r.Context(), in, images)
	if err != nil {
		h.backendError(w, r, s, err, "Failed to save product.")
		return
	}
	h.toast(s, "Product created successfully!", entity.ToastSuccess)
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	in, images, ok := productForm(w, r)
	if !ok {
		return
	}
	s := h.session(r)
	p, err := h.products.UpdateProduct(r.Context(), id, in, images)
	if err != nil {
		h.backendError(w, r, s, err, "Failed to save product.")
		return
	}
	h.toast(s, "Product updated successfully!", entity.ToastSuccess)
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	s := h.session(r)
	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		h.backendError(w, r, s, err, "Failed to delete product")
		return
	}
	h.toast(s, "Product deleted successfully", entity.ToastInfo)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "")
		return
	}
	writeJSON(w, http.StatusOK, orderList(list, orderFilter(r), entity.AdminStatusOptions))
}

func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, ok := entity.ParseOrderStatus(strings.ToUpper(req.Status))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status", "unknown order status "+req.Status)
		return
	}
	s := h.session(r)
	o, err := h.orders.UpdateOrderStatus(r.Context(), id, status)
	if err != nil {
		h.backendError(w, r, s, err, "Failed to update order status")
		return
	}
	h.toast(s, "Order status updated successfully", entity.ToastSuccess)
	writeJSON(w, http.StatusOK, OrderSummary{Order: *o, CanPay: o.Payable()})
}

func (h *Handler) AdminListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ListCoupons(r.Context())
	if err != nil {
		h.backendError(w, r, h.session(r), err, "Failed to load coupons")
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

func couponInput(w http.ResponseWriter, r *http.Request) (entity.Coupon, bool) {
	var c entity.Coupon
	if !decodeJSON(w, r, &c) {
		return c, false
	}
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" || !c.DiscountAmount.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid_coupon", "code and a positive discountAmount are required")
		return c, false
	}
	return c, true
}

func (h *Handler) AdminCreateCoupon(w http.ResponseWriter, r *http.Request) {
	c, ok := couponInput(w, r)
	if !ok {
		return
	}
	s := h.session(r)
	saved, err := h.coupons.CreateCoupon(r.Context(), c)
	if err != nil {
		h.backendError(w, r, s, err, fallback(publicMessage(err), "Failed to create coupon"))
		return
	}
	h.toast(s, "Coupon created successfully", entity.ToastSuccess)
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) AdminUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, ok := couponInput(w, r)
	if !ok {
		return
	}
	s := h.session(r)
	saved, err := h.coupons.UpdateCoupon(r.Context(), id, c)
	if err != nil {
		h.backendError(w, r, s, err, fallback(publicMessage(err), "Failed to update coupon"))
		return
	}
	h.toast(s, "Coupon updated successfully", entity.ToastSuccess)
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) AdminDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	s := h.session(r)
	if err := h.coupons.DeleteCoupon(r.Context(), id); err != nil {
		h.backendError(w, r, s, err, "Failed to delete coupon")
		return
	}
	h.toast(s, "Coupon deleted successfully", entity.ToastSuccess)
	w.WriteHeader(http.StatusNoContent)
}

// CheckoutRun returns the latest entry and full history of a checkout run.
func (h *Handler) CheckoutRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.runs == nil {
		writeError(w, http.StatusNotFound, "run_not_found", "checkout runs are not recorded")
		return
	}
	latest, err := h.runs.GetLatest(r.Context(), id)
	if errors.Is(err, sagalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "run_log_error", err.Error())
		return
	}
	history, err := h.runs.History(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "run_log_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CheckoutRunResponse{Latest: latest, History: history})
}
