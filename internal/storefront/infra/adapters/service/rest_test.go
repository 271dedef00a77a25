package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, 2*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("localhost", time.Second)
	assert.Error(t, err)
}

func TestCartClient_ForwardsTokenAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart/add", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "req-9", r.Header.Get("X-Request-Id"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 7, body["productId"])
		assert.EqualValues(t, 2, body["quantity"])

		_, _ = io.WriteString(w, `{"id":1,"cartItems":[{"productId":7,"quantity":2,"price":10.5,"subtotal":21}],"totalAmount":21}`)
	})

	ctx := interceptors.WithAuthToken(context.Background(), "tok-1")
	ctx = interceptors.WithRequestMeta(ctx, "req-9", "")

	cart, err := NewCartClient(c).AddToCart(ctx, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount())
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(21)))
}

func TestClient_ErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "message field", status: 500, body: `{"message":"Order is already paid"}`, want: "Order is already paid"},
		{name: "error field", status: 400, body: `{"error":"Bad Request"}`, want: "Bad Request"},
		{name: "detail field", status: 422, body: `{"detail":"invalid status"}`, want: "invalid status"},
		{name: "plain text", status: 401, body: "Unauthorized", want: "Unauthorized"},
		{name: "html page", status: 502, body: "<html>bad gateway</html>", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := NewOrderClient(c).ListOrders(context.Background())

			var be *Error
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.status, be.Status)
			assert.Equal(t, tt.want, be.PublicMessage())
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsUnauthorized(&Error{Status: 403}))
	assert.True(t, IsNotFound(&Error{Status: 404}))
	assert.True(t, IsClientError(&Error{Status: 409}))
	assert.False(t, IsClientError(&Error{Status: 401}))
	assert.False(t, IsUnauthorized(assert.AnError))
}

func TestOrderClient_UpdateStatusUsesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/orders/admin/42/status", r.URL.Path)
		assert.Equal(t, "SHIPPED", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `{"id":42,"status":"SHIPPED","createdAt":"2024-02-01T09:00:00"}`)
	})

	o, err := NewOrderClient(c).UpdateOrderStatus(context.Background(), 42, entity.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShipped, o.Status)
}

func TestCartClient_ClearUsesBackendRoute(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/cart/clear", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, NewCartClient(c).ClearCart(context.Background()))
}

func TestProductClient_MultipartUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var in entity.ProductInput
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("product")), &in))
		assert.Equal(t, "Lamp", in.Name)

		files := r.MultipartForm.File["images"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.png", files[0].Filename)
		assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

		_, _ = io.WriteString(w, `{"id":9,"name":"Lamp","price":12}`)
	})

	p, err := NewProductClient(c).CreateProduct(context.Background(),
		entity.ProductInput{Name: "Lamp", Price: decimal.NewFromInt(12)},
		[]entity.ImageUpload{
			{Filename: "a.png", ContentType: "image/png", Data: []byte("png")},
			{Filename: "b.jpg", Data: []byte("jpg")},
		})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
}

func TestCouponClient_Validate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "OFFER1000", body["code"])
		assert.EqualValues(t, 1500.5, body["orderTotal"])
		_, _ = io.WriteString(w, `{"valid":true,"code":"OFFER1000","discountAmount":200,"message":"Coupon applied! You saved ₹200"}`)
	})

	v, err := NewCouponClient(c).ValidateCoupon(context.Background(), "OFFER1000", decimal.RequireFromString("1500.50"))
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.True(t, v.DiscountAmount.Equal(decimal.NewFromInt(200)))
}
