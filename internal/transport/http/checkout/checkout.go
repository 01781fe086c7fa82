package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/webshop-labs/checkout/internal/service/models/order"
	"github.com/webshop-labs/checkout/internal/service/services/checkoutsvc"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(
		ctx context.Context,
		basketID int64,
		shipTo order.Address,
	) (*checkoutsvc.CreateOrderResult, error)
}

// addressInCheckoutRequest represents the shipping address in a checkout request.
type addressInCheckoutRequest struct {
	Street  string `json:"street"  validate:"required"`
	City    string `json:"city"    validate:"required"`
	State   string `json:"state"`
	Country string `json:"country" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

// toModel converts addressInCheckoutRequest to order.Address.
func (r *addressInCheckoutRequest) toModel() order.Address {
	return order.Address{
		Street:  r.Street,
		City:    r.City,
		State:   r.State,
		Country: r.Country,
		ZipCode: r.ZipCode,
	}
}

// checkoutRequest represents a checkout request.
type checkoutRequest struct {
	ShippingAddress addressInCheckoutRequest `json:"shippingAddress" validate:"required"`
}

// Validate validates the checkout request.
func (r *checkoutRequest) Validate() error {
	return validator.New().Struct(r)
}

// checkoutResponse represents a successful checkout response.
type checkoutResponse struct {
	OrderID          int64           `json:"orderId"`
	Total            decimal.Decimal `json:"total"`
	EventPublished   bool            `json:"eventPublished"`
	DeliveryNotified bool            `json:"deliveryNotified"`
}

// Checkout handles the order-creation request for one basket.
func Checkout(w http.ResponseWriter, r *http.Request, service service) {
	basketID, err := strconv.ParseInt(chi.URLParam(r, "basketID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid basket id", http.StatusBadRequest)
		slog.Error("Error parsing basket id for checkout", "error", err)

		return
	}

	req := checkoutRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for checkout", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for checkout", "error", err)

		return
	}

	result, err := service.CreateOrder(r.Context(), basketID, req.ShippingAddress.toModel())
	if err != nil {
		http.Error(w, err.Error(), statusFromError(err))
		slog.Error("Error creating order", "basket_id", basketID, "error", err)

		return
	}

	resp := checkoutResponse{
		OrderID:          result.Order.ID,
		Total:            result.Order.Total,
		EventPublished:   result.Notifications.EventPublished(),
		DeliveryNotified: result.Notifications.DeliveryNotified(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error sending response for checkout", "error", err)
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, checkoutsvc.ErrBasketNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkoutsvc.ErrEmptyBasket),
		errors.Is(err, checkoutsvc.ErrCatalogItemMissing):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
