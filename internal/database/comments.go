package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

type commentRow struct {
	ID         int64  `db:"id"`
	Text       string `db:"text"`
	ItemID     int64  `db:"item_id"`
	AuthorID   int64  `db:"author_id"`
	AuthorName string `db:"author_name"`
	CreatedAt  int64  `db:"created_at"`
}

func (r commentRow) toModel() *models.Comment {
	return &models.Comment{
		ID:         r.ID,
		Text:       r.Text,
		ItemID:     r.ItemID,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Created:    fromMillis(r.CreatedAt),
	}
}

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	created := comment.Created
	if created.IsZero() {
		created = time.Now()
	}

	query := `INSERT INTO comments (text, item_id, author_id, created_at) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, comment.Text, comment.ItemID, comment.AuthorID, toMillis(created))
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	comment.Created = fromMillis(toMillis(created))
	return nil
}

// GetCommentsForItems returns comments of the given items, newest first.
func (db *DB) GetCommentsForItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	if len(itemIDs) == 0 {
		return []*models.Comment{}, nil
	}

	ds := db.dialect.From(goqu.T("comments").As("c")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("c.author_id")))).
		Select(
			goqu.I("c.id").As("id"),
			goqu.I("c.text").As("text"),
			goqu.I("c.item_id").As("item_id"),
			goqu.I("c.author_id").As("author_id"),
			goqu.I("u.name").As("author_name"),
			goqu.I("c.created_at").As("created_at"),
		).
		Where(goqu.I("c.item_id").In(itemIDs)).
		Order(goqu.I("c.created_at").Desc(), goqu.I("c.id").Desc())

	var rows []commentRow
	if err := db.selectRows(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	comments := make([]*models.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.toModel())
	}
	return comments, nil
}
