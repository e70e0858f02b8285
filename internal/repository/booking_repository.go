package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/larose/hotel-backoffice/internal/model"
)

// BookingRepo provides CRUD operations for bookings and their status
// history.  All booking-affecting writes run inside a caller-owned
// transaction (the *Tx methods); reads go straight through the pool.
// Timestamp columns are stored in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions that
// span this repository and others.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, booking_code, user_id, room_id, room_type_id, check_in, check_out,
       nights, guests, price_total, deposit_amount, status, cancel_reason, cancelled_at,
       created_at, updated_at`

// scanBooking reads one bookings row into a model.Booking.  The row must
// have been selected with bookingColumns.
func scanBooking(row *sql.Row) (*model.Booking, error) {
    var b model.Booking
    var status string
    var cancelReason sql.NullString
    var cancelledAt sql.NullTime
    err := row.Scan(
        &b.ID, &b.Code, &b.UserID, &b.RoomID, &b.RoomTypeID, &b.CheckIn, &b.CheckOut,
        &b.Nights, &b.Guests, &b.PriceTotal, &b.DepositAmount, &status, &cancelReason, &cancelledAt,
        &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    b.Status = model.BookingStatus(status)
    if cancelReason.Valid {
        cr := cancelReason.String
        b.CancelReason = &cr
    }
    if cancelledAt.Valid {
        ca := cancelledAt.Time
        b.CancelledAt = &ca
    }
    return &b, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided model.  The booking code must already be assigned; the unique
// index on booking_code is the final guard against duplicates.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings
               (booking_code, user_id, room_id, room_type_id, check_in, check_out,
                nights, guests, price_total, deposit_amount, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q,
        b.Code, b.UserID, b.RoomID, b.RoomTypeID,
        b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"),
        b.Nights, b.Guests, b.PriceTotal, b.DepositAmount, string(b.Status),
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    // Query back the full row to populate timestamps and defaults.
    const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns a single booking by primary key.  It returns
// ErrBookingNotFound when no such row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// GetByCode returns a single booking by its human-readable code.  The
// code is the wire-visible identifier used by the payment callback, so
// lookups here must match the stored value exactly.
func (r *BookingRepo) GetByCode(ctx context.Context, code string) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_code = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, code))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// GetByIDTx is GetByID inside a caller-owned transaction, used when a
// subsequent write depends on the loaded state.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
    b, err := scanBooking(tx.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// UpdateTx rewrites a booking's dates, room linkage, guests and derived
// price within the provided transaction.  Status is deliberately not
// touched here; status changes go through UpdateStatusTx or Cancel.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `UPDATE bookings
               SET room_id = ?, room_type_id = ?, check_in = ?, check_out = ?,
                   nights = ?, guests = ?, price_total = ?
               WHERE id = ?`
    res, err := tx.ExecContext(ctx, q,
        b.RoomID, b.RoomTypeID,
        b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"),
        b.Nights, b.Guests, b.PriceTotal, b.ID,
    )
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        // MySQL reports 0 when the row is missing or unchanged; re-check
        // existence so callers get a clean not-found.
        var one int
        if err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, b.ID).Scan(&one); errors.Is(err, sql.ErrNoRows) {
            return ErrBookingNotFound
        }
    }
    return nil
}

// UpdateStatusTx sets a booking's status unconditionally within the
// provided transaction.  This is the administrative force-transition
// path: no graph check is applied here, callers are expected to have
// validated the status value and to record a booking event for audit.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error {
    res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        var one int
        if err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&one); errors.Is(err, sql.ErrNoRows) {
            return ErrBookingNotFound
        }
    }
    return nil
}

// Cancel performs the guarded cancellation as one conditional multi-table
// UPDATE.  Every precondition lives in the WHERE clause, so concurrent
// cancel attempts and the reconciler's success-marking are serialized by
// the row lock and at most one mutates anything:
//
//   - booking still pending or confirmed
//   - booking created within the last 2 hours
//   - payment transaction absent or still initiated
//
// The join is restricted to payment-type transactions: a refund or
// payout row must neither satisfy nor block the guard.  On success the
// booking becomes cancelled with cancelled_at set, and an initiated
// payment (if any) becomes refunded in the same statement.  The returned
// count is the number of rows the statement changed; when the guard
// refuses, ErrCancelNotAllowed is returned.  Callers must have verified
// the booking exists, otherwise a refusal and a missing row look alike.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) (int64, error) {
    const q = `UPDATE bookings b
               LEFT JOIN transactions t ON t.booking_id = b.id AND t.type = 'payment'
               SET b.status = 'cancelled',
                   b.cancelled_at = UTC_TIMESTAMP(),
                   t.status = CASE
                       WHEN t.id IS NOT NULL AND t.status = 'initiated' THEN 'refunded'
                       ELSE t.status
                   END
               WHERE b.id = ?
                 AND b.status IN ('pending', 'confirmed')
                 AND b.created_at >= UTC_TIMESTAMP() - INTERVAL 2 HOUR
                 AND (t.id IS NULL OR t.status = 'initiated')`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return 0, err
    }
    rows, err := res.RowsAffected()
    if err != nil {
        return 0, err
    }
    if rows == 0 {
        return 0, ErrCancelNotAllowed
    }
    return rows, nil
}

// AdminCancelTx cancels a booking without the time-window guard.  It is
// the staff override used from the back office: the booking must simply
// not be terminal yet.  The caller records the reason as an event too.
func (r *BookingRepo) AdminCancelTx(ctx context.Context, tx *sql.Tx, id uint64, reason string) (int64, error) {
    const q = `UPDATE bookings
               SET status = 'cancelled', cancel_reason = ?, cancelled_at = UTC_TIMESTAMP()
               WHERE id = ? AND status NOT IN ('cancelled', 'checked_out', 'no_show')`
    res, err := tx.ExecContext(ctx, q, reason, id)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// InsertEventTx appends one row to the booking's status history within
// the provided transaction.  FromStatus is empty for the creation event.
func (r *BookingRepo) InsertEventTx(ctx context.Context, tx *sql.Tx, ev *model.BookingEvent) error {
    const q = `INSERT INTO booking_events (booking_id, from_status, to_status, changed_by_user_id, reason)
               VALUES (?, ?, ?, ?, ?)`
    var changedBy interface{}
    if ev.ChangedBy != 0 {
        changedBy = ev.ChangedBy
    }
    _, err := tx.ExecContext(ctx, q, ev.BookingID, ev.FromStatus, ev.ToStatus, changedBy, ev.Reason)
    return err
}

// InsertEvent is InsertEventTx without a caller-owned transaction.  The
// customer cancellation path uses it: the cancel itself is one atomic
// statement, so its history row rides on the pool directly.
func (r *BookingRepo) InsertEvent(ctx context.Context, ev *model.BookingEvent) error {
    const q = `INSERT INTO booking_events (booking_id, from_status, to_status, changed_by_user_id, reason)
               VALUES (?, ?, ?, ?, ?)`
    var changedBy interface{}
    if ev.ChangedBy != 0 {
        changedBy = ev.ChangedBy
    }
    _, err := r.db.ExecContext(ctx, q, ev.BookingID, ev.FromStatus, ev.ToStatus, changedBy, ev.Reason)
    return err
}

// ListByUser returns a page of the user's bookings ordered newest first,
// optionally filtered by status.  Page numbering starts at 1; an empty
// page returns an empty slice, never nil.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, status string, page, size int) ([]model.Booking, error) {
    if page < 1 {
        page = 1
    }
    if size < 1 || size > 100 {
        size = 20
    }
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ?`
    args := []interface{}{userID}
    if status != "" {
        q += ` AND status = ?`
        args = append(args, status)
    }
    q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
    args = append(args, size, (page-1)*size)
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        var b model.Booking
        var st string
        var cancelReason sql.NullString
        var cancelledAt sql.NullTime
        if err := rows.Scan(
            &b.ID, &b.Code, &b.UserID, &b.RoomID, &b.RoomTypeID, &b.CheckIn, &b.CheckOut,
            &b.Nights, &b.Guests, &b.PriceTotal, &b.DepositAmount, &st, &cancelReason, &cancelledAt,
            &b.CreatedAt, &b.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        b.Status = model.BookingStatus(st)
        if cancelReason.Valid {
            cr := cancelReason.String
            b.CancelReason = &cr
        }
        if cancelledAt.Valid {
            ca := cancelledAt.Time
            b.CancelledAt = &ca
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Nights returns the whole number of nights between two check dates.
// Both values are calendar dates; the difference is measured in days.
func Nights(checkIn, checkOut time.Time) int {
    return int(checkOut.Sub(checkIn).Hours() / 24)
}
