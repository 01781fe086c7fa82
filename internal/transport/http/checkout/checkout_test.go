package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/webshop-labs/checkout/internal/service/models/order"
	"github.com/webshop-labs/checkout/internal/service/services/checkoutsvc"
)

type fakeService struct {
	result *checkoutsvc.CreateOrderResult
	err    error

	gotBasketID int64
	gotAddress  order.Address
}

func (f *fakeService) CreateOrder(
	_ context.Context,
	basketID int64,
	shipTo order.Address,
) (*checkoutsvc.CreateOrderResult, error) {
	f.gotBasketID = basketID
	f.gotAddress = shipTo
	return f.result, f.err
}

func newTestRouter(svc *fakeService) *chi.Mux {
	router := chi.NewRouter()
	router.Post("/api/baskets/{basketID}/checkout", func(w http.ResponseWriter, r *http.Request) {
		Checkout(w, r, svc)
	})
	return router
}

const validBody = `{
	"shippingAddress": {
		"street": "1 Main St",
		"city": "Springfield",
		"country": "US",
		"zipCode": "12345"
	}
}`

func TestCheckout_Success(t *testing.T) {
	svc := &fakeService{
		result: &checkoutsvc.CreateOrderResult{
			Order: order.Order{ID: 42, Total: decimal.RequireFromString("24.98")},
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/baskets/7/checkout", strings.NewReader(validBody))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, int64(7), svc.gotBasketID)
	require.Equal(t, "Springfield", svc.gotAddress.City)

	var resp struct {
		OrderID          int64 `json:"orderId"`
		EventPublished   bool  `json:"eventPublished"`
		DeliveryNotified bool  `json:"deliveryNotified"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(42), resp.OrderID)
	require.True(t, resp.EventPublished)
	require.True(t, resp.DeliveryNotified)
}

func TestCheckout_InvalidBasketID(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/baskets/abc/checkout", strings.NewReader(validBody))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_MissingAddressFields(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/baskets/7/checkout", strings.NewReader(`{"shippingAddress":{"street":"1 Main St"}}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_BasketNotFound(t *testing.T) {
	svc := &fakeService{err: checkoutsvc.ErrBasketNotFound}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/baskets/999/checkout", strings.NewReader(validBody))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout_EmptyBasket(t *testing.T) {
	svc := &fakeService{err: checkoutsvc.ErrEmptyBasket}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/baskets/7/checkout", strings.NewReader(validBody))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckout_CatalogItemMissing(t *testing.T) {
	svc := &fakeService{err: checkoutsvc.ErrCatalogItemMissing}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/baskets/7/checkout", strings.NewReader(validBody))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
