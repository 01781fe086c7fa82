package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/webshop-labs/checkout/internal/dal/postgres"
	"github.com/webshop-labs/checkout/internal/service/models/order"
)

// OrderDal represents order data access layer model
type OrderDal struct {
	Id          int64           `db:"id"`
	BuyerId     string          `db:"buyer_id"`
	ShipStreet  string          `db:"ship_street"`
	ShipCity    string          `db:"ship_city"`
	ShipState   string          `db:"ship_state"`
	ShipCountry string          `db:"ship_country"`
	ShipZipCode string          `db:"ship_zip_code"`
	Total       decimal.Decimal `db:"total"`
	CreatedAt   time.Time       `db:"created_at"`
}

// OrderDalFromModel converts service layer Order model to OrderDal
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:          o.ID,
		BuyerId:     o.BuyerID,
		ShipStreet:  o.ShipToAddress.Street,
		ShipCity:    o.ShipToAddress.City,
		ShipState:   o.ShipToAddress.State,
		ShipCountry: o.ShipToAddress.Country,
		ShipZipCode: o.ShipToAddress.ZipCode,
		Total:       o.Total,
		CreatedAt:   o.CreatedAt,
	}
}

type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert persists a single order row and returns the order with its
// assigned id. Order items are inserted separately within the same
// unit of work.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal := OrderDalFromModel(&o)

	query, args, err := sq.Insert("orders").
		Columns(
			"buyer_id",
			"ship_street",
			"ship_city",
			"ship_state",
			"ship_country",
			"ship_zip_code",
			"total",
			"created_at",
		).
		Values(
			dal.BuyerId,
			dal.ShipStreet,
			dal.ShipCity,
			dal.ShipState,
			dal.ShipCountry,
			dal.ShipZipCode,
			dal.Total,
			dal.CreatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.ID); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}
