package handler

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/larose/hotel-backoffice/internal/repository"
)

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock, *fakePublisher) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    pub := &fakePublisher{}
    h := NewBookingHandler(
        repository.NewBookingRepo(db),
        repository.NewRoomRepo(db),
        repository.NewUserRepo(db),
        repository.NewSequenceRepo(db),
        "La_Rose",
        pub,
        zap.NewNop(),
    )
    return h, mock, pub
}

func newAuthedContext(t *testing.T, method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    e.Validator = NewValidator()
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, target, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, target, nil)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", userID)
    c.Set("role", "CUSTOMER")
    return c, rec
}

func TestCancelWithinWindow(t *testing.T) {
    h, mock, pub := newBookingHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "confirmed"))
    // The guarded update changes the booking row and refunds the
    // initiated transaction: two rows.
    mock.ExpectExec("UPDATE bookings b").
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "cancelled"))
    mock.ExpectExec("INSERT INTO booking_events").
        WillReturnResult(sqlmock.NewResult(1, 1))

    c, rec := newAuthedContext(t, http.MethodPost, "/v1/bookings/7/cancel", "", 1)
    c.SetParamNames("id")
    c.SetParamValues("7")
    require.NoError(t, h.Cancel(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"cancelled"`)
    require.Len(t, pub.cancelled, 1)
    assert.True(t, pub.cancelled[0].RefundIssued)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRefusedIsBusinessError(t *testing.T) {
    h, mock, pub := newBookingHandler(t)

    // The booking exists and belongs to the caller; the policy says no.
    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "checked_in"))
    mock.ExpectExec("UPDATE bookings b").
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    c, rec := newAuthedContext(t, http.MethodPost, "/v1/bookings/7/cancel", "", 1)
    c.SetParamNames("id")
    c.SetParamValues("7")
    require.NoError(t, h.Cancel(c))

    // A refusal is 400, not 404: the resource is there, the rules are not.
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Empty(t, pub.cancelled)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelMissingBooking(t *testing.T) {
    h, mock, _ := newBookingHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
        WithArgs(uint64(99)).
        WillReturnRows(sqlmock.NewRows(bookingCols))

    c, rec := newAuthedContext(t, http.MethodPost, "/v1/bookings/99/cancel", "", 1)
    c.SetParamNames("id")
    c.SetParamValues("99")
    require.NoError(t, h.Cancel(c))

    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForeignBookingForbidden(t *testing.T) {
    h, mock, pub := newBookingHandler(t)

    // Booking belongs to user 1; the caller is user 999.  No UPDATE may
    // run: a foreign booking must not be cancelled, let alone refunded.
    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "confirmed"))

    c, rec := newAuthedContext(t, http.MethodPost, "/v1/bookings/7/cancel", "", 999)
    c.SetParamNames("id")
    c.SetParamValues("7")
    require.NoError(t, h.Cancel(c))

    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Empty(t, pub.cancelled)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForeignBookingAllowedForStaff(t *testing.T) {
    h, mock, _ := newBookingHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "confirmed"))
    mock.ExpectExec("UPDATE bookings b").
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "cancelled"))
    mock.ExpectExec("INSERT INTO booking_events").
        WillReturnResult(sqlmock.NewResult(1, 1))

    c, rec := newAuthedContext(t, http.MethodPost, "/v1/bookings/7/cancel", "", 999)
    c.Set("role", "ADMIN")
    c.SetParamNames("id")
    c.SetParamValues("7")
    require.NoError(t, h.Cancel(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateForeignBookingForbidden(t *testing.T) {
    h, mock, _ := newBookingHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM rooms").
        WithArgs(uint64(12)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "code", "title", "t.id", "t.name", "t.base_price"}).
            AddRow(uint64(12), "101", "Garden view", uint64(2), "Deluxe", int64(500000)))
    mock.ExpectBegin()
    // The row is loaded and locked, then the ownership check refuses.
    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "confirmed"))
    mock.ExpectRollback()

    body := `{"room_id":12,"check_in":"2026-09-01","check_out":"2026-09-03"}`
    c, rec := newAuthedContext(t, http.MethodPut, "/v1/bookings/7", body, 999)
    c.SetParamNames("id")
    c.SetParamValues("7")
    require.NoError(t, h.Update(c))

    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
    h, _, _ := newBookingHandler(t)

    c, rec := newAuthedContext(t, http.MethodPatch, "/v1/bookings/7/status", `{"status":"archived"}`, 1)
    c.SetParamNames("id")
    c.SetParamValues("7")
    require.NoError(t, h.UpdateStatus(c))

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "unknown booking status")
}

func TestListMineRejectsUnknownStatusFilter(t *testing.T) {
    h, _, _ := newBookingHandler(t)

    c, rec := newAuthedContext(t, http.MethodGet, "/v1/my-bookings?status=bogus", "", 1)
    require.NoError(t, h.ListMine(c))

    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRejectsInvertedDates(t *testing.T) {
    h, _, _ := newBookingHandler(t)

    body := `{"room_id":12,"check_in":"2026-09-05","check_out":"2026-09-03"}`
    c, rec := newAuthedContext(t, http.MethodPost, "/v1/bookings", body, 1)
    require.NoError(t, h.Create(c))

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "check_out must be after check_in")
}
