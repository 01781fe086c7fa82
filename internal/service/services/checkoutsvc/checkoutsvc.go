package checkoutsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/webshop-labs/checkout/internal/dal/interfaces/ibasketrepo"
	"github.com/webshop-labs/checkout/internal/dal/interfaces/icatalogrepo"
	"github.com/webshop-labs/checkout/internal/dal/interfaces/iorderitemrepo"
	"github.com/webshop-labs/checkout/internal/dal/interfaces/iorderrepo"
	"github.com/webshop-labs/checkout/internal/dal/postgres"
	basketrepo "github.com/webshop-labs/checkout/internal/dal/repositories/basket/postgres"
	catalogrepo "github.com/webshop-labs/checkout/internal/dal/repositories/catalog/postgres"
	"github.com/webshop-labs/checkout/internal/dal/uow"
	"github.com/webshop-labs/checkout/internal/service/models/basket"
	"github.com/webshop-labs/checkout/internal/service/models/catalog"
	"github.com/webshop-labs/checkout/internal/service/models/order"
	"github.com/webshop-labs/checkout/internal/service/models/orderitem"
)

var (
	// ErrBasketNotFound is returned when no basket exists for the id.
	ErrBasketNotFound = errors.New("basket not found")
	// ErrEmptyBasket is returned when the basket has no items.
	ErrEmptyBasket = errors.New("basket has no items")
	// ErrCatalogItemMissing is returned when a basket line references a
	// catalog item id with no matching record. The whole checkout fails;
	// there is no partial resolution.
	ErrCatalogItemMissing = errors.New("catalog item missing")
)

// uriComposer turns a stored picture reference into a public URL.
type uriComposer interface {
	ComposePicURI(raw string) string
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
}

// CreateOrderResult is the outcome of a successful checkout. The order
// is persisted; Notifications records how each downstream dispatch went.
type CreateOrderResult struct {
	Order         order.Order
	Notifications NotificationResult
}

// CheckoutService turns a basket into a persisted order and notifies the
// downstream consumers.
type CheckoutService struct {
	pgClient       *postgres.Client
	basketRepo     ibasketrepo.IBasketRepository
	catalogRepo    icatalogrepo.ICatalogRepository
	uriComposer    uriComposer
	fanout         *NotificationFanout
	newUOW         func() unitOfWork
	persistTimeout time.Duration
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.persistTimeout == 0 {
		seconds := viper.GetInt("checkout.persist_timeout_seconds")
		if seconds == 0 {
			seconds = 5
		}
		s.persistTimeout = time.Duration(seconds) * time.Second
	}

	if s.basketRepo == nil || s.catalogRepo == nil || s.newUOW == nil {
		panic("checkout service requires a basket repository, a catalog repository and a unit of work")
	}
	if s.uriComposer == nil {
		panic("checkout service requires a picture uri composer")
	}
	if s.fanout == nil {
		panic("checkout service requires a notification fanout")
	}

	return s
}

// WithPostgresClient sets the Postgres client and the default
// repositories built on it.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CheckoutService) {
		s.pgClient = pgClient
		s.basketRepo = basketrepo.NewPostgresBasketRepository(pgClient.Pool())
		s.catalogRepo = catalogrepo.NewPostgresCatalogRepository(pgClient.Pool())
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithBasketRepository sets the basket repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBasketRepository(repo ibasketrepo.IBasketRepository) option {
	return func(s *CheckoutService) {
		s.basketRepo = repo
	}
}

// WithCatalogRepository sets the catalog repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogRepository(repo icatalogrepo.ICatalogRepository) option {
	return func(s *CheckoutService) {
		s.catalogRepo = repo
	}
}

// WithURIComposer sets the picture uri composer.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithURIComposer(composer uriComposer) option {
	return func(s *CheckoutService) {
		s.uriComposer = composer
	}
}

// WithNotificationFanout sets the notification fanout.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotificationFanout(fanout *NotificationFanout) option {
	return func(s *CheckoutService) {
		s.fanout = fanout
	}
}

// WithUnitOfWorkFactory sets the unit of work factory.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *CheckoutService) {
		s.newUOW = factory
	}
}

// WithPersistTimeout bounds the persistence step.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPersistTimeout(timeout time.Duration) option {
	return func(s *CheckoutService) {
		s.persistTimeout = timeout
	}
}

// CreateOrder runs the checkout sequence for one basket: load, validate,
// reconcile catalog data, assemble the snapshot, persist, notify.
// Precondition and persistence failures abort the whole operation.
// Notification failures do not; they are reported in the result once the
// order is the system of record.
func (s *CheckoutService) CreateOrder(
	ctx context.Context,
	basketID int64,
	shipTo order.Address,
) (*CreateOrderResult, error) {
	ctx, span := otel.Tracer("checkout-svc").Start(ctx, "CheckoutService.CreateOrder")
	defer span.End()

	b, err := s.basketRepo.LoadWithItems(ctx, basketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load basket %d: %w", basketID, err)
	}
	if b == nil {
		return nil, fmt.Errorf("basket %d: %w", basketID, ErrBasketNotFound)
	}
	if len(b.Items) == 0 {
		return nil, fmt.Errorf("basket %d: %w", basketID, ErrEmptyBasket)
	}

	ids := b.CatalogItemIDs()
	catalogItems, err := s.catalogRepo.BatchLoad(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog items: %w", err)
	}
	if missing := missingCatalogIDs(ids, catalogItems); len(missing) > 0 {
		return nil, fmt.Errorf("catalog items %v: %w", missing, ErrCatalogItemMissing)
	}

	ord := s.assemble(b, catalogItems, shipTo)

	persisted, err := s.persist(ctx, ord)
	if err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	return &CreateOrderResult{
		Order:         persisted,
		Notifications: s.fanout.Dispatch(persisted),
	}, nil
}

// assemble freezes the reconciled catalog data and the basket's captured
// prices into an order snapshot. Pure given a complete mapping.
func (s *CheckoutService) assemble(
	b *basket.Basket,
	catalogItems map[int64]catalog.Item,
	shipTo order.Address,
) order.Order {
	items := make([]orderitem.OrderItem, len(b.Items))
	for i, line := range b.Items {
		catalogItem := catalogItems[line.CatalogItemID]
		items[i] = orderitem.OrderItem{
			ItemOrdered: orderitem.ItemOrdered{
				CatalogItemID: catalogItem.ID,
				ProductName:   catalogItem.Name,
				PictureURI:    s.uriComposer.ComposePicURI(catalogItem.PictureURI),
			},
			UnitPrice: line.UnitPrice,
			Units:     line.Quantity,
		}
	}

	return order.New(b.BuyerID, shipTo, items)
}

// persist commits the order row and all of its lines in one transaction,
// bounded by the persist timeout.
func (s *CheckoutService) persist(ctx context.Context, ord order.Order) (order.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	ord.CreatedAt = time.Now()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}

	persisted, err := work.OrderRepository().Insert(ctx, ord)
	if err != nil {
		_ = work.Rollback(ctx)

		return order.Order{}, err
	}

	for i := range persisted.Items {
		persisted.Items[i].OrderID = persisted.ID
	}

	items, err := work.OrderItemRepository().BulkInsert(ctx, persisted.Items)
	if err != nil {
		_ = work.Rollback(ctx)

		return order.Order{}, err
	}
	persisted.Items = items

	if err := work.Commit(ctx); err != nil {
		_ = work.Rollback(ctx)

		return order.Order{}, err
	}

	return persisted, nil
}

func missingCatalogIDs(ids []int64, catalogItems map[int64]catalog.Item) []int64 {
	var missing []int64
	for _, id := range ids {
		if _, ok := catalogItems[id]; !ok {
			missing = append(missing, id)
		}
	}

	return missing
}
