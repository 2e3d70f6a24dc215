package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

var itemColumns = []interface{}{
	"id", "name", "description", "available", "owner_id", "request_id", "created_at", "updated_at",
}

type itemRow struct {
	ID          int64         `db:"id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	Available   bool          `db:"available"`
	OwnerID     int64         `db:"owner_id"`
	RequestID   sql.NullInt64 `db:"request_id"`
	CreatedAt   int64         `db:"created_at"`
	UpdatedAt   int64         `db:"updated_at"`
}

func (r itemRow) toModel() *models.Item {
	item := &models.Item{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Available:   r.Available,
		OwnerID:     r.OwnerID,
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
	if r.RequestID.Valid {
		id := r.RequestID.Int64
		item.RequestID = &id
	}
	return item
}

func itemsFromRows(rows []itemRow) []*models.Item {
	items := make([]*models.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toModel())
	}
	return items
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, available, owner_id, request_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := toMillis(time.Now())
	result, err := db.ExecContext(ctx, query,
		item.Name,
		item.Description,
		item.Available,
		item.OwnerID,
		nullableID(item.RequestID),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = fromMillis(now)
	item.UpdatedAt = item.CreatedAt
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`
	now := toMillis(time.Now())
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	item.UpdatedAt = fromMillis(now)
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var row itemRow
	query, args, err := db.dialect.From("items").Select(itemColumns...).
		Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return row.toModel(), nil
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error) {
	ds := db.dialect.From("items").Select(itemColumns...).
		Where(goqu.C("owner_id").Eq(ownerID)).
		Order(goqu.C("id").Asc())
	ds = paginate(ds, offset, limit)

	var rows []itemRow
	if err := db.selectRows(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to get owner items: %w", err)
	}
	return itemsFromRows(rows), nil
}

func (db *DB) GetItemsByRequests(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return []*models.Item{}, nil
	}

	ds := db.dialect.From("items").Select(itemColumns...).
		Where(goqu.C("request_id").In(requestIDs)).
		Order(goqu.C("id").Asc())

	var rows []itemRow
	if err := db.selectRows(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to get request items: %w", err)
	}
	return itemsFromRows(rows), nil
}

// SearchItems matches text case-insensitively against name or description of available items.
func (db *DB) SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	ds := db.dialect.From("items").Select(itemColumns...).
		Where(
			goqu.C("available").IsTrue(),
			goqu.Or(
				goqu.L(`unicode_lower(name) LIKE ? ESCAPE '\'`, pattern),
				goqu.L(`unicode_lower(description) LIKE ? ESCAPE '\'`, pattern),
			),
		).
		Order(goqu.C("id").Asc())
	ds = paginate(ds, offset, limit)

	var rows []itemRow
	if err := db.selectRows(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return itemsFromRows(rows), nil
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func paginate(ds *goqu.SelectDataset, offset, limit int) *goqu.SelectDataset {
	switch {
	case limit > 0:
		ds = ds.Limit(uint(limit))
	case offset > 0:
		// sqlite rejects OFFSET without LIMIT
		ds = ds.Limit(math.MaxInt32)
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}
	return ds
}
