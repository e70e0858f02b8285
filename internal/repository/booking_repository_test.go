package repository

import (
    "context"
    "database/sql"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNights(t *testing.T) {
    day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
    assert.Equal(t, 1, Nights(day(1), day(2)))
    assert.Equal(t, 3, Nights(day(1), day(4)))
    assert.Equal(t, 0, Nights(day(2), day(2)))
    assert.Equal(t, -1, Nights(day(2), day(1)))
}

func TestGetByIDNotFound(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = ?").
        WithArgs(uint64(99)).
        WillReturnError(sql.ErrNoRows)

    repo := NewBookingRepo(db)
    _, err = repo.GetByID(context.Background(), 99)
    assert.ErrorIs(t, err, ErrBookingNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelCountsChangedRows(t *testing.T) {
    testCases := []struct {
        name string
        rows int64
    }{
        {"booking and initiated transaction refunded", 2},
        {"booking alone, no transaction yet", 1},
    }
    for _, tc := range testCases {
        t.Run(tc.name, func(t *testing.T) {
            db, mock, err := sqlmock.New()
            require.NoError(t, err)
            defer db.Close()

            mock.ExpectExec("UPDATE bookings b").
                WithArgs(uint64(7)).
                WillReturnResult(sqlmock.NewResult(0, tc.rows))

            repo := NewBookingRepo(db)
            rows, err := repo.Cancel(context.Background(), 7)
            require.NoError(t, err)
            assert.Equal(t, tc.rows, rows)
            assert.NoError(t, mock.ExpectationsWereMet())
        })
    }
}

func TestCancelRefusalIsSentinel(t *testing.T) {
    // Zero changed rows means a guard in the WHERE clause said no;
    // callers branch on the sentinel, never on row counts.
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectExec("UPDATE bookings b").
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    repo := NewBookingRepo(db)
    _, err = repo.Cancel(context.Background(), 7)
    assert.ErrorIs(t, err, ErrCancelNotAllowed)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelIsIdempotent(t *testing.T) {
    // A second cancel of the same booking hits the status guard and
    // reports the refusal rather than mutating anything again.
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectExec("UPDATE bookings b").
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectExec("UPDATE bookings b").
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    repo := NewBookingRepo(db)
    first, err := repo.Cancel(context.Background(), 7)
    require.NoError(t, err)
    assert.Equal(t, int64(2), first)

    _, err = repo.Cancel(context.Background(), 7)
    assert.ErrorIs(t, err, ErrCancelNotAllowed)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelStatementCarriesEveryGuard(t *testing.T) {
    // The whole cancellation policy lives in this one statement, so the
    // statement itself is the contract: open status only, the two-hour
    // window, and only the payment-type transaction may gate or be
    // refunded.  Matched on the exact SQL, not a pattern.
    db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
    require.NoError(t, err)
    defer db.Close()

    const want = `UPDATE bookings b
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
    mock.ExpectExec(want).
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    repo := NewBookingRepo(db)
    rows, err := repo.Cancel(context.Background(), 7)
    require.NoError(t, err)
    assert.Equal(t, int64(1), rows)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCancelSkipsTerminalBookings(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE bookings").
        WithArgs("guest asked by phone", uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectRollback()

    tx, err := db.Begin()
    require.NoError(t, err)
    defer tx.Rollback()

    repo := NewBookingRepo(db)
    rows, err := repo.AdminCancelTx(context.Background(), tx, 5, "guest asked by phone")
    require.NoError(t, err)
    assert.Zero(t, rows, "terminal bookings must not be re-cancelled")
}
