package handler

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/larose/hotel-backoffice/internal/queue"
    "github.com/larose/hotel-backoffice/internal/repository"
)

// fakePublisher records published events so tests can assert on them.
type fakePublisher struct {
    settled   []queue.BookingSettledEvent
    cancelled []queue.BookingCancelledEvent
}

func (f *fakePublisher) BookingSettled(_ context.Context, ev queue.BookingSettledEvent) error {
    f.settled = append(f.settled, ev)
    return nil
}

func (f *fakePublisher) BookingCancelled(_ context.Context, ev queue.BookingCancelledEvent) error {
    f.cancelled = append(f.cancelled, ev)
    return nil
}

var bookingCols = []string{
    "id", "booking_code", "user_id", "room_id", "room_type_id", "check_in", "check_out",
    "nights", "guests", "price_total", "deposit_amount", "status", "cancel_reason", "cancelled_at",
    "created_at", "updated_at",
}

var txnCols = []string{
    "id", "booking_id", "user_id", "provider", "provider_transaction_id",
    "amount", "currency", "status", "type", "metadata", "created_at", "updated_at",
}

func bookingRow(mockCols []string, code, status string) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows(mockCols).AddRow(
        uint64(7), code, uint64(1), uint64(12), uint64(2), now, now.Add(24*time.Hour),
        1, 2, int64(500000), int64(0), status, nil, nil, now, now,
    )
}

func txnRow(status string) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows(txnCols).AddRow(
        uint64(9), uint64(7), uint64(1), "vnpay", nil,
        int64(500000), "VND", status, "payment", nil, now, now,
    )
}

func newCallbackContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    e.Validator = NewValidator()
    req := httptest.NewRequest(http.MethodPost, "/v1/payments/callback", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func newPaymentHandler(t *testing.T) (*PaymentHandler, sqlmock.Sqlmock, *fakePublisher) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    pub := &fakePublisher{}
    h := NewPaymentHandler(
        repository.NewBookingRepo(db),
        repository.NewTransactionRepo(db),
        nil, // gateway not needed for callbacks
        nil, // no redis: conditional update alone carries idempotency
        pub,
        zap.NewNop(),
    )
    return h, mock, pub
}

func TestCallbackSettlesVnpayTransaction(t *testing.T) {
    h, mock, pub := newPaymentHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE booking_code").
        WithArgs("La_Rose-2026-08-31-001").
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "confirmed"))
    mock.ExpectQuery("SELECT (.+) FROM transactions").
        WithArgs(uint64(7)).
        WillReturnRows(txnRow("initiated"))
    mock.ExpectExec("UPDATE transactions").
        WithArgs("VNP555", uint64(9)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    body := `{
        "bookingId": "La_Rose-2026-08-31-001",
        "roomType": "Deluxe",
        "roomNumber": "101",
        "customer": "Nguyen Van A",
        "customerEmail": "a@example.com",
        "paymentMethod": "vnpay",
        "paymentOption": "deposit",
        "amountPaid": 250000,
        "amountToPay": 500000,
        "remainingDue": 250000,
        "gatewayTxnId": "VNP555"
    }`
    c, rec := newCallbackContext(t, body)
    require.NoError(t, h.Callback(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"success"`)
    require.Len(t, pub.settled, 1)
    settled := pub.settled[0]
    assert.Equal(t, "La_Rose-2026-08-31-001", settled.BookingCode)
    // The settlement details travel from the callback into the event.
    assert.Equal(t, int64(250000), settled.AmountPaid)
    assert.Equal(t, int64(500000), settled.AmountToPay)
    assert.Equal(t, int64(250000), settled.RemainingDue)
    assert.Equal(t, "Nguyen Van A", settled.CustomerName)
    assert.Equal(t, "a@example.com", settled.CustomerEmail)
    assert.Equal(t, "deposit", settled.PaymentOption)
    assert.Equal(t, "Deluxe", settled.RoomType)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackDefaultsAmountPaidToStoredAmount(t *testing.T) {
    h, mock, pub := newPaymentHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE booking_code").
        WithArgs("La_Rose-2026-08-31-001").
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "confirmed"))
    mock.ExpectQuery("SELECT (.+) FROM transactions").
        WithArgs(uint64(7)).
        WillReturnRows(txnRow("initiated"))
    mock.ExpectExec("UPDATE transactions").
        WithArgs("", uint64(9)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    c, _ := newCallbackContext(t, `{"bookingId":"La_Rose-2026-08-31-001","paymentMethod":"vnpay"}`)
    require.NoError(t, h.Callback(c))

    require.Len(t, pub.settled, 1)
    assert.Equal(t, int64(500000), pub.settled[0].AmountPaid)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackIgnoresNonGatewayMethods(t *testing.T) {
    h, mock, pub := newPaymentHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE booking_code").
        WithArgs("La_Rose-2026-08-31-001").
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "confirmed"))
    mock.ExpectQuery("SELECT (.+) FROM transactions").
        WithArgs(uint64(7)).
        WillReturnRows(txnRow("initiated"))
    // No UPDATE expected: cash settles at the desk, not here.

    c, rec := newCallbackContext(t, `{"bookingId":"La_Rose-2026-08-31-001","paymentMethod":"cash"}`)
    require.NoError(t, h.Callback(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"ignored"`)
    assert.Empty(t, pub.settled)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackUnknownBookingCode(t *testing.T) {
    h, mock, _ := newPaymentHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE booking_code").
        WithArgs("La_Rose-2026-08-31-999").
        WillReturnRows(sqlmock.NewRows(bookingCols))

    c, rec := newCallbackContext(t, `{"bookingId":"La_Rose-2026-08-31-999","paymentMethod":"vnpay"}`)
    require.NoError(t, h.Callback(c))

    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallbackReplayLeavesSettledTransaction(t *testing.T) {
    h, mock, pub := newPaymentHandler(t)

    mock.ExpectQuery("SELECT (.+) FROM bookings WHERE booking_code").
        WithArgs("La_Rose-2026-08-31-001").
        WillReturnRows(bookingRow(bookingCols, "La_Rose-2026-08-31-001", "confirmed"))
    mock.ExpectQuery("SELECT (.+) FROM transactions").
        WithArgs(uint64(7)).
        WillReturnRows(txnRow("success"))
    mock.ExpectExec("UPDATE transactions").
        WithArgs("VNP555", uint64(9)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    c, rec := newCallbackContext(t, `{"bookingId":"La_Rose-2026-08-31-001","paymentMethod":"vnpay","gatewayTxnId":"VNP555"}`)
    require.NoError(t, h.Callback(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"unchanged"`)
    assert.Empty(t, pub.settled, "a replay must not publish a second settled event")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackRejectsMissingFields(t *testing.T) {
    h, _, _ := newPaymentHandler(t)
    c, rec := newCallbackContext(t, `{"paymentMethod":"vnpay"}`)
    require.NoError(t, h.Callback(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}
