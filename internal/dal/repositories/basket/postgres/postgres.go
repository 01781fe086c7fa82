package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/webshop-labs/checkout/internal/dal/postgres"
	"github.com/webshop-labs/checkout/internal/service/models/basket"
)

// BasketDal represents basket data access layer model
type BasketDal struct {
	Id      int64  `db:"id"`
	BuyerId string `db:"buyer_id"`
}

// BasketItemDal represents basket item data access layer model
type BasketItemDal struct {
	Id            int64           `db:"id"`
	BasketId      int64           `db:"basket_id"`
	CatalogItemId int64           `db:"catalog_item_id"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	Quantity      int             `db:"quantity"`
}

// ToModel converts BasketItemDal to service layer basket.Item model
func (i *BasketItemDal) ToModel() basket.Item {
	return basket.Item{
		ID:            i.Id,
		BasketID:      i.BasketId,
		CatalogItemID: i.CatalogItemId,
		UnitPrice:     i.UnitPrice,
		Quantity:      i.Quantity,
	}
}

type PostgresBasketRepository struct {
	conn postgres.Querier
}

func NewPostgresBasketRepository(conn postgres.Querier) *PostgresBasketRepository {
	return &PostgresBasketRepository{
		conn: conn,
	}
}

// LoadWithItems retrieves a basket together with its items. Returns nil
// without an error when no basket exists for the given id.
func (r *PostgresBasketRepository) LoadWithItems(
	ctx context.Context,
	basketID int64,
) (*basket.Basket, error) {
	query, args, err := sq.Select("id", "buyer_id").
		From("baskets").
		Where(sq.Eq{"id": basketID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build basket query: %w", err)
	}

	var dal BasketDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(&dal.Id, &dal.BuyerId)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query basket: %w", err)
	}

	items, err := r.loadItems(ctx, basketID)
	if err != nil {
		return nil, err
	}

	return &basket.Basket{
		ID:      dal.Id,
		BuyerID: dal.BuyerId,
		Items:   items,
	}, nil
}

func (r *PostgresBasketRepository) loadItems(
	ctx context.Context,
	basketID int64,
) ([]basket.Item, error) {
	query, args, err := sq.Select(
		"id",
		"basket_id",
		"catalog_item_id",
		"unit_price",
		"quantity",
	).
		From("basket_items").
		Where(sq.Eq{"basket_id": basketID}).
		OrderBy("id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build basket items query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query basket items: %w", err)
	}
	defer rows.Close()

	var items []basket.Item
	for rows.Next() {
		var dal BasketItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.BasketId,
			&dal.CatalogItemId,
			&dal.UnitPrice,
			&dal.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan basket item: %w", err)
		}
		items = append(items, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}
