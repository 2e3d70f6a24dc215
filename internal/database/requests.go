package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

type requestRow struct {
	ID          int64  `db:"id"`
	Description string `db:"description"`
	RequestorID int64  `db:"requestor_id"`
	CreatedAt   int64  `db:"created_at"`
}

func (r requestRow) toModel() *models.Request {
	return &models.Request{
		ID:          r.ID,
		Description: r.Description,
		RequestorID: r.RequestorID,
		Created:     fromMillis(r.CreatedAt),
		Items:       []*models.Item{},
	}
}

func requestsFromRows(rows []requestRow) []*models.Request {
	requests := make([]*models.Request, 0, len(rows))
	for _, r := range rows {
		requests = append(requests, r.toModel())
	}
	return requests
}

func (db *DB) requestSelect() *goqu.SelectDataset {
	return db.dialect.From("requests").Select("id", "description", "requestor_id", "created_at")
}

func (db *DB) CreateRequest(ctx context.Context, request *models.Request) error {
	created := request.Created
	if created.IsZero() {
		created = time.Now()
	}

	query := `INSERT INTO requests (description, requestor_id, created_at) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query, request.Description, request.RequestorID, toMillis(created))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.Created = fromMillis(toMillis(created))
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	query, args, err := db.requestSelect().Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row requestRow
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return row.toModel(), nil
}

// GetRequestsByRequestor returns the user's own requests, newest first.
func (db *DB) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.Request, error) {
	ds := db.requestSelect().
		Where(goqu.C("requestor_id").Eq(requestorID)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())

	var rows []requestRow
	if err := db.selectRows(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to get own requests: %w", err)
	}
	return requestsFromRows(rows), nil
}

// GetRequestsExcept pages through requests of everybody but requestorID, newest first.
func (db *DB) GetRequestsExcept(ctx context.Context, requestorID int64, offset, limit int) ([]*models.Request, error) {
	ds := db.requestSelect().
		Where(goqu.C("requestor_id").Neq(requestorID)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	ds = paginate(ds, offset, limit)

	var rows []requestRow
	if err := db.selectRows(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}
	return requestsFromRows(rows), nil
}
