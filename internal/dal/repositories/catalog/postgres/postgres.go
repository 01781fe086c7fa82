package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/webshop-labs/checkout/internal/dal/postgres"
	"github.com/webshop-labs/checkout/internal/service/models/catalog"
)

// CatalogItemDal represents catalog item data access layer model
type CatalogItemDal struct {
	Id         int64  `db:"id"`
	Name       string `db:"name"`
	PictureUri string `db:"picture_uri"`
}

// ToModel converts CatalogItemDal to service layer catalog.Item model
func (c *CatalogItemDal) ToModel() catalog.Item {
	return catalog.Item{
		ID:         c.Id,
		Name:       c.Name,
		PictureURI: c.PictureUri,
	}
}

type PostgresCatalogRepository struct {
	conn postgres.Querier
}

func NewPostgresCatalogRepository(conn postgres.Querier) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		conn: conn,
	}
}

// BatchLoad resolves all requested catalog item ids in a single query.
// Ids with no matching row are absent from the returned mapping.
func (r *PostgresCatalogRepository) BatchLoad(
	ctx context.Context,
	ids []int64,
) (map[int64]catalog.Item, error) {
	if len(ids) == 0 {
		return map[int64]catalog.Item{}, nil
	}

	query, args, err := sq.Select("id", "name", "picture_uri").
		From("catalog_items").
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog items query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]catalog.Item, len(ids))
	for rows.Next() {
		var dal CatalogItemDal
		if err := rows.Scan(&dal.Id, &dal.Name, &dal.PictureUri); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		result[dal.Id] = dal.ToModel()
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
