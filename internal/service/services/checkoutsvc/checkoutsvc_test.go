package checkoutsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/webshop-labs/checkout/internal/dal/interfaces/iorderitemrepo"
	"github.com/webshop-labs/checkout/internal/dal/interfaces/iorderrepo"
	"github.com/webshop-labs/checkout/internal/service/models/basket"
	"github.com/webshop-labs/checkout/internal/service/models/catalog"
	"github.com/webshop-labs/checkout/internal/service/models/order"
	"github.com/webshop-labs/checkout/internal/service/models/orderitem"
	"github.com/webshop-labs/checkout/pkg/uricomposer"
)

type fakeBasketRepo struct {
	baskets map[int64]*basket.Basket
	err     error
}

func (f *fakeBasketRepo) LoadWithItems(_ context.Context, basketID int64) (*basket.Basket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.baskets[basketID], nil
}

type fakeCatalogRepo struct {
	items map[int64]catalog.Item
	err   error
}

func (f *fakeCatalogRepo) BatchLoad(_ context.Context, ids []int64) (map[int64]catalog.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[int64]catalog.Item)
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			result[id] = item
		}
	}
	return result, nil
}

type fakeOrderRepo struct {
	inserted []order.Order
	err      error
}

func (f *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	if f.err != nil {
		return order.Order{}, f.err
	}
	o.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, o)
	return o, nil
}

type fakeOrderItemRepo struct {
	inserted []orderitem.OrderItem
	err      error
}

func (f *fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range items {
		items[i].ID = int64(i + 1)
	}
	f.inserted = append(f.inserted, items...)
	return items, nil
}

type fakeUOW struct {
	orderRepo     *fakeOrderRepo
	orderItemRepo *fakeOrderItemRepo
	beginErr      error
	committed     bool
	rolledBack    bool
}

func (f *fakeUOW) Begin(context.Context) error {
	return f.beginErr
}

func (f *fakeUOW) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeUOW) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

func (f *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return f.orderRepo
}

func (f *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return f.orderItemRepo
}

type fakeEventsRepo struct {
	err   error
	calls int
	last  order.Order
}

func (f *fakeEventsRepo) PublishOrderCreated(_ context.Context, o order.Order) error {
	f.calls++
	f.last = o
	return f.err
}

type fakeDeliveryClient struct {
	err   error
	calls int
}

func (f *fakeDeliveryClient) NotifyOrderCreated(context.Context, order.Order) error {
	f.calls++
	return f.err
}

func testBasket() *basket.Basket {
	return &basket.Basket{
		ID:      7,
		BuyerID: "B1",
		Items: []basket.Item{
			{ID: 1, BasketID: 7, CatalogItemID: 1, UnitPrice: decimal.RequireFromString("9.99"), Quantity: 2},
			{ID: 2, BasketID: 7, CatalogItemID: 2, UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
		},
	}
}

func testCatalog() map[int64]catalog.Item {
	return map[int64]catalog.Item{
		1: {ID: 1, Name: "Widget", PictureURI: "http://catalogbaseurltobereplaced/1.png"},
		2: {ID: 2, Name: "Gadget", PictureURI: "http://catalogbaseurltobereplaced/2.png"},
	}
}

type testDeps struct {
	basketRepo  *fakeBasketRepo
	catalogRepo *fakeCatalogRepo
	work        *fakeUOW
	events      *fakeEventsRepo
	delivery    *fakeDeliveryClient
}

func newTestService(deps *testDeps) *CheckoutService {
	return MustNewCheckoutService(
		WithBasketRepository(deps.basketRepo),
		WithCatalogRepository(deps.catalogRepo),
		WithUnitOfWorkFactory(func() unitOfWork { return deps.work }),
		WithURIComposer(uricomposer.New("http://cdn.example.com")),
		WithNotificationFanout(NewNotificationFanout(deps.events, deps.delivery)),
		WithPersistTimeout(time.Second),
	)
}

func newTestDeps() *testDeps {
	return &testDeps{
		basketRepo:  &fakeBasketRepo{baskets: map[int64]*basket.Basket{7: testBasket()}},
		catalogRepo: &fakeCatalogRepo{items: testCatalog()},
		work:        &fakeUOW{orderRepo: &fakeOrderRepo{}, orderItemRepo: &fakeOrderItemRepo{}},
		events:      &fakeEventsRepo{},
		delivery:    &fakeDeliveryClient{},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	deps := newTestDeps()
	svc := newTestService(deps)

	result, err := svc.CreateOrder(context.Background(), 7, order.Address{Street: "1 Main St", City: "Springfield", Country: "US", ZipCode: "12345"})
	require.NoError(t, err)

	require.True(t, result.Order.Total.Equal(decimal.RequireFromString("24.98")))
	require.Equal(t, "B1", result.Order.BuyerID)
	require.NotZero(t, result.Order.ID)

	require.Len(t, deps.work.orderRepo.inserted, 1)
	require.Len(t, deps.work.orderItemRepo.inserted, 2)
	require.True(t, deps.work.committed)

	// catalog data is frozen into the lines, with the composed picture url
	first := result.Order.Items[0]
	require.Equal(t, int64(1), first.ItemOrdered.CatalogItemID)
	require.Equal(t, "Widget", first.ItemOrdered.ProductName)
	require.Equal(t, "http://cdn.example.com/1.png", first.ItemOrdered.PictureURI)
	require.Equal(t, 2, first.Units)

	require.Equal(t, 1, deps.events.calls)
	require.Equal(t, 1, deps.delivery.calls)
	require.True(t, result.Notifications.EventPublished())
	require.True(t, result.Notifications.DeliveryNotified())

	// the publisher sees the persisted order, not the draft
	require.Equal(t, result.Order.ID, deps.events.last.ID)
}

func TestCreateOrder_BasketNotFound(t *testing.T) {
	deps := newTestDeps()
	svc := newTestService(deps)

	_, err := svc.CreateOrder(context.Background(), 999, order.Address{})
	require.ErrorIs(t, err, ErrBasketNotFound)

	require.Empty(t, deps.work.orderRepo.inserted)
	require.Zero(t, deps.events.calls)
	require.Zero(t, deps.delivery.calls)
}

func TestCreateOrder_EmptyBasket(t *testing.T) {
	deps := newTestDeps()
	deps.basketRepo.baskets[8] = &basket.Basket{ID: 8, BuyerID: "B2"}
	svc := newTestService(deps)

	_, err := svc.CreateOrder(context.Background(), 8, order.Address{})
	require.ErrorIs(t, err, ErrEmptyBasket)

	require.Empty(t, deps.work.orderRepo.inserted)
	require.Zero(t, deps.events.calls)
	require.Zero(t, deps.delivery.calls)
}

func TestCreateOrder_CatalogItemMissing(t *testing.T) {
	deps := newTestDeps()
	delete(deps.catalogRepo.items, 2)
	svc := newTestService(deps)

	_, err := svc.CreateOrder(context.Background(), 7, order.Address{})
	require.ErrorIs(t, err, ErrCatalogItemMissing)
	require.Contains(t, err.Error(), "2")

	require.Empty(t, deps.work.orderRepo.inserted)
	require.Zero(t, deps.events.calls)
	require.Zero(t, deps.delivery.calls)
}

func TestCreateOrder_PersistFailureSuppressesNotifications(t *testing.T) {
	deps := newTestDeps()
	deps.work.orderRepo.err = errors.New("connection reset")
	svc := newTestService(deps)

	_, err := svc.CreateOrder(context.Background(), 7, order.Address{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrBasketNotFound)

	require.True(t, deps.work.rolledBack)
	require.False(t, deps.work.committed)
	require.Zero(t, deps.events.calls)
	require.Zero(t, deps.delivery.calls)
}

func TestCreateOrder_ItemInsertFailureRollsBack(t *testing.T) {
	deps := newTestDeps()
	deps.work.orderItemRepo.err = errors.New("constraint violation")
	svc := newTestService(deps)

	_, err := svc.CreateOrder(context.Background(), 7, order.Address{})
	require.Error(t, err)

	require.True(t, deps.work.rolledBack)
	require.False(t, deps.work.committed)
	require.Zero(t, deps.events.calls)
	require.Zero(t, deps.delivery.calls)
}

func TestCreateOrder_WebhookFailureDoesNotFailCheckout(t *testing.T) {
	deps := newTestDeps()
	deps.delivery.err = errors.New("delivery endpoint returned status 500")
	svc := newTestService(deps)

	result, err := svc.CreateOrder(context.Background(), 7, order.Address{})
	require.NoError(t, err)

	require.True(t, deps.work.committed)
	require.True(t, result.Notifications.EventPublished())
	require.False(t, result.Notifications.DeliveryNotified())
	require.Error(t, result.Notifications.WebhookErr)
}

func TestCreateOrder_PublishFailureDoesNotFailCheckout(t *testing.T) {
	deps := newTestDeps()
	deps.events.err = errors.New("channel closed")
	svc := newTestService(deps)

	result, err := svc.CreateOrder(context.Background(), 7, order.Address{})
	require.NoError(t, err)

	require.True(t, deps.work.committed)
	require.False(t, result.Notifications.EventPublished())
	require.True(t, result.Notifications.DeliveryNotified())
	require.Error(t, result.Notifications.PublishErr)
}

func TestCreateOrder_DuplicateCatalogIDsResolvedOnce(t *testing.T) {
	deps := newTestDeps()
	b := testBasket()
	b.Items = append(b.Items, basket.Item{
		ID: 3, BasketID: 7, CatalogItemID: 1,
		UnitPrice: decimal.RequireFromString("9.99"), Quantity: 3,
	})
	deps.basketRepo.baskets[7] = b
	svc := newTestService(deps)

	result, err := svc.CreateOrder(context.Background(), 7, order.Address{})
	require.NoError(t, err)

	require.Len(t, result.Order.Items, 3)
	require.True(t, result.Order.Total.Equal(decimal.RequireFromString("54.95")))
}
