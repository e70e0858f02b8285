package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/larose/hotel-backoffice/internal/model"
)

// BookingServiceRepo manages the line items attached to bookings and
// reads the service catalog they reference.  Line items live and die
// independently of their booking; removing one never touches the
// booking row.
type BookingServiceRepo struct{ db *sql.DB }

// NewBookingServiceRepo returns a new BookingServiceRepo bound to the
// given database.
func NewBookingServiceRepo(db *sql.DB) *BookingServiceRepo { return &BookingServiceRepo{db: db} }

// GetService loads one catalog service by id for attaching to a booking.
// A missing service is ErrServiceNotFound; a retired one is
// ErrServiceInactive, since inactive services must not appear on new
// line items.
func (r *BookingServiceRepo) GetService(ctx context.Context, id uint64) (*model.Service, error) {
    const q = `SELECT id, name, price, is_active FROM services WHERE id = ?`
    var s model.Service
    err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.Price, &s.IsActive)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrServiceNotFound
    }
    if err != nil {
        return nil, err
    }
    if !s.IsActive {
        return nil, ErrServiceInactive
    }
    return &s, nil
}

// Add attaches a quantity of a catalog service to a booking.  The unit
// price is snapshotted from the catalog at attach time and the total is
// computed here, so later catalog price changes never rewrite existing
// line items.
func (r *BookingServiceRepo) Add(ctx context.Context, item *model.BookingServiceItem) error {
    item.TotalPrice = item.PricePerUnit * int64(item.Quantity)
    const q = `INSERT INTO booking_services
               (booking_id, service_id, quantity, price_per_unit, total_price, notes)
               VALUES (?, ?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        item.BookingID, item.ServiceID, item.Quantity, item.PricePerUnit, item.TotalPrice, item.Notes,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    item.ID = uint64(id)
    return nil
}

// UpdateQuantity changes a line item's quantity and recomputes its total
// from the stored unit price in the same statement.  Zero rows affected
// means the line item does not exist.
func (r *BookingServiceRepo) UpdateQuantity(ctx context.Context, id uint64, quantity int) error {
    const q = `UPDATE booking_services
               SET quantity = ?, total_price = price_per_unit * ?
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, quantity, quantity, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish "missing" from "unchanged quantity".
        var one int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM booking_services WHERE id = ?`, id).Scan(&one); errors.Is(err, sql.ErrNoRows) {
            return ErrServiceNotFound
        } else if err != nil {
            return err
        }
    }
    return nil
}

// Delete removes a line item.  ErrServiceNotFound is returned when the
// item does not exist.
func (r *BookingServiceRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM booking_services WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrServiceNotFound
    }
    return nil
}

// ListByBooking returns all line items on a booking ordered by creation.
func (r *BookingServiceRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.BookingServiceItem, error) {
    const q = `SELECT id, booking_id, service_id, quantity, price_per_unit, total_price, notes, created_at, updated_at
               FROM booking_services WHERE booking_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.BookingServiceItem, 0)
    for rows.Next() {
        var it model.BookingServiceItem
        var notes sql.NullString
        if err := rows.Scan(
            &it.ID, &it.BookingID, &it.ServiceID, &it.Quantity, &it.PricePerUnit,
            &it.TotalPrice, &notes, &it.CreatedAt, &it.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        if notes.Valid {
            n := notes.String
            it.Notes = &n
        }
        items = append(items, it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}
