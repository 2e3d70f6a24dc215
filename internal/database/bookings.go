package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type bookingRow struct {
	ID         int64  `db:"id"`
	Start      int64  `db:"start_ts"`
	End        int64  `db:"end_ts"`
	Status     string `db:"status"`
	Version    int64  `db:"version"`
	ItemID     int64  `db:"item_id"`
	ItemName   string `db:"item_name"`
	OwnerID    int64  `db:"owner_id"`
	BookerID   int64  `db:"booker_id"`
	BookerName string `db:"booker_name"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

func (r bookingRow) toModel() *models.Booking {
	return &models.Booking{
		ID:        r.ID,
		Start:     fromMillis(r.Start),
		End:       fromMillis(r.End),
		Status:    models.BookingStatus(r.Status),
		Booker:    models.UserShort{ID: r.BookerID, Name: r.BookerName},
		Item:      models.ItemShort{ID: r.ItemID, Name: r.ItemName},
		OwnerID:   r.OwnerID,
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
		Version:   r.Version,
	}
}

func bookingsFromRows(rows []bookingRow) []*models.Booking {
	bookings := make([]*models.Booking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, r.toModel())
	}
	return bookings
}

// bookingSelect joins every booking with its item and booker.
func (db *DB) bookingSelect() *goqu.SelectDataset {
	return db.dialect.From(goqu.T("bookings").As("b")).
		Join(goqu.T("items").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			goqu.I("b.id").As("id"),
			goqu.I("b.start_ts").As("start_ts"),
			goqu.I("b.end_ts").As("end_ts"),
			goqu.I("b.status").As("status"),
			goqu.I("b.version").As("version"),
			goqu.I("b.item_id").As("item_id"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.owner_id").As("owner_id"),
			goqu.I("b.booker_id").As("booker_id"),
			goqu.I("u.name").As("booker_name"),
			goqu.I("b.created_at").As("created_at"),
			goqu.I("b.updated_at").As("updated_at"),
		)
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_ts, end_ts, item_id, booker_id, status, version, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := toMillis(time.Now())
	result, err := db.ExecContext(ctx, query,
		toMillis(booking.Start),
		toMillis(booking.End),
		booking.Item.ID,
		booking.Booker.ID,
		booking.Status,
		1,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = fromMillis(now)
	booking.UpdatedAt = booking.CreatedAt
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query, args, err := db.bookingSelect().Where(goqu.I("b.id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row bookingRow
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return row.toModel(), nil
}

// UpdateBookingStatusWithVersion moves a WAITING booking to status if nobody changed it since fromVersion.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, toMillis(time.Now()), id, fromVersion, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListBookings returns the bookings of exactly one booker or one owner narrowed by state,
// newest start first.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	ds := db.bookingSelect()

	switch {
	case filter.BookerID != 0:
		ds = ds.Where(goqu.I("b.booker_id").Eq(filter.BookerID))
	case filter.OwnerID != 0:
		ds = ds.Where(goqu.I("i.owner_id").Eq(filter.OwnerID))
	default:
		return nil, fmt.Errorf("booking filter needs a booker or an owner")
	}

	cond, err := stateCondition(filter.State, toMillis(filter.Now))
	if err != nil {
		return nil, err
	}
	if cond != nil {
		ds = ds.Where(cond)
	}

	ds = ds.Order(goqu.I("b.start_ts").Desc(), goqu.I("b.id").Desc())
	ds = paginate(ds, filter.Offset, filter.Limit)

	var rows []bookingRow
	if err := db.selectRows(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookingsFromRows(rows), nil
}

func stateCondition(state models.BookingState, now int64) (exp.Expression, error) {
	switch state {
	case models.StateAll:
		return nil, nil
	case models.StateCurrent:
		return goqu.And(goqu.I("b.start_ts").Lte(now), goqu.I("b.end_ts").Gt(now)), nil
	case models.StatePast:
		return goqu.I("b.end_ts").Lt(now), nil
	case models.StateFuture:
		return goqu.I("b.start_ts").Gt(now), nil
	case models.StateWaiting:
		return goqu.I("b.status").Eq(string(models.StatusWaiting)), nil
	case models.StateRejected:
		return goqu.I("b.status").Eq(string(models.StatusRejected)), nil
	default:
		return nil, fmt.Errorf("unsupported booking state %q", state)
	}
}

// GetBookingsForItems returns the non-rejected bookings of the given items.
func (db *DB) GetBookingsForItems(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}

	ds := db.bookingSelect().
		Where(
			goqu.I("b.item_id").In(itemIDs),
			goqu.I("b.status").Neq(string(models.StatusRejected)),
		).
		Order(goqu.I("b.start_ts").Asc(), goqu.I("b.id").Asc())

	var rows []bookingRow
	if err := db.selectRows(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to get item bookings: %w", err)
	}
	return bookingsFromRows(rows), nil
}

// ExistsCompletedBooking reports whether bookerID has any booking of itemID, whatever its
// status, that ended before the given instant.
func (db *DB) ExistsCompletedBooking(ctx context.Context, itemID, bookerID int64, before time.Time) (bool, error) {
	query := `SELECT EXISTS (
                SELECT 1 FROM bookings
                WHERE item_id = ? AND booker_id = ? AND end_ts < ?
              )`
	var exists bool
	err := db.QueryRowContext(ctx, query, itemID, bookerID, toMillis(before)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check completed booking: %w", err)
	}
	return exists, nil
}
