package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/webshop-labs/checkout/internal/service/models/order"
)

// OrderDelivery is the wire payload for the delivery-processing
// endpoint. Field names are part of the external contract and must not
// follow internal naming.
type OrderDelivery struct {
	ID              string              `json:"id"`
	ShippingAddress order.Address       `json:"ShippingAddress"`
	OrderItems      []OrderDeliveryItem `json:"OrderItems"`
	FinalPrice      decimal.Decimal     `json:"FinalPrice"`
}

// OrderDeliveryItem is one order line in the delivery payload.
type OrderDeliveryItem struct {
	CatalogueItemID int64           `json:"CatalogueItemId"`
	UnitPrice       decimal.Decimal `json:"UnitPrice"`
	Units           int             `json:"Units"`
}

// Client calls the external delivery-processing endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// option is a function that configures the Client.
type option func(*Client)

// NewClient creates a delivery client from configuration.
func NewClient(opts ...option) *Client {
	timeoutSeconds := viper.GetInt("delivery.timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 10
	}

	c := &Client{
		httpClient: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		endpoint:   viper.GetString("delivery.endpoint"),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithEndpoint overrides the configured endpoint.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEndpoint(endpoint string) option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient overrides the underlying HTTP client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHTTPClient(httpClient *http.Client) option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NotifyOrderCreated posts the order to the delivery-processing
// endpoint. Each call carries a fresh delivery id.
func (c *Client) NotifyOrderCreated(ctx context.Context, o order.Order) error {
	payload := PayloadFromOrder(o)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call delivery endpoint: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("delivery endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

// PayloadFromOrder builds the delivery payload from a persisted order.
func PayloadFromOrder(o order.Order) OrderDelivery {
	items := make([]OrderDeliveryItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderDeliveryItem{
			CatalogueItemID: item.ItemOrdered.CatalogItemID,
			UnitPrice:       item.UnitPrice,
			Units:           item.Units,
		}
	}

	return OrderDelivery{
		ID:              uuid.NewString(),
		ShippingAddress: o.ShipToAddress,
		OrderItems:      items,
		FinalPrice:      o.Total,
	}
}
