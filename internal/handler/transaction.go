package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/larose/hotel-backoffice/internal/model"
    "github.com/larose/hotel-backoffice/internal/repository"
)

// TransactionHandler serves the payment transaction endpoints.  A
// transaction is born together with its booking in one database
// transaction: the caller either gets both rows or neither.
type TransactionHandler struct {
    Bookings     *repository.BookingRepo
    Transactions *repository.TransactionRepo
    Rooms        *repository.RoomRepo
    Users        *repository.UserRepo
    Sequences    *repository.SequenceRepo
    HotelCode    string
    Log          *zap.Logger
}

// NewTransactionHandler wires a TransactionHandler.
func NewTransactionHandler(
    bookings *repository.BookingRepo,
    transactions *repository.TransactionRepo,
    rooms *repository.RoomRepo,
    users *repository.UserRepo,
    sequences *repository.SequenceRepo,
    hotelCode string,
    log *zap.Logger,
) *TransactionHandler {
    return &TransactionHandler{
        Bookings:     bookings,
        Transactions: transactions,
        Rooms:        rooms,
        Users:        users,
        Sequences:    sequences,
        HotelCode:    hotelCode,
        Log:          log,
    }
}

// transactionResponse is the wire shape of a transaction.
type transactionResponse struct {
    ID            uint64  `json:"id"`
    BookingID     uint64  `json:"booking_id"`
    UserID        uint64  `json:"user_id"`
    Provider      string  `json:"provider"`
    ProviderTxnID *string `json:"provider_transaction_id,omitempty"`
    Amount        int64   `json:"amount"`
    Currency      string  `json:"currency"`
    Status        string  `json:"status"`
    Type          string  `json:"type"`
    CreatedAt     string  `json:"created_at"`
    UpdatedAt     string  `json:"updated_at"`
}

func toTransactionResponse(t *model.Transaction) transactionResponse {
    return transactionResponse{
        ID:            t.ID,
        BookingID:     t.BookingID,
        UserID:        t.UserID,
        Provider:      t.Provider,
        ProviderTxnID: t.ProviderTxnID,
        Amount:        t.Amount,
        Currency:      t.Currency,
        Status:        string(t.Status),
        Type:          string(t.Type),
        CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
        UpdatedAt:     t.UpdatedAt.UTC().Format(time.RFC3339),
    }
}

// createTransactionRequest creates a booking and its payment transaction
// in one shot.  The payment amount always equals the derived booking
// total; clients cannot set it.
type createTransactionRequest struct {
    bookingPayload
    Provider string `json:"payment_method" validate:"required"`
    Metadata string `json:"metadata"`
}

// Create makes a booking together with its initiated payment
// transaction.  Both inserts, the sequence claim and the creation event
// share one database transaction so a failure anywhere leaves no
// orphan booking awaiting a payment that will never exist.
//
// POST /v1/transactions
func (h *TransactionHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req createTransactionRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    checkIn, checkOut, nights, err := parseStay(&req.bookingPayload)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if req.Guests == 0 {
        req.Guests = 1
    }

    ctx := c.Request().Context()

    if _, err := h.Users.GetActiveByID(ctx, userID); err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found or inactive"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    room, err := h.Rooms.GetByID(ctx, req.RoomID)
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        if errors.Is(err, repository.ErrRoomWithoutType) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "room has no room type assigned"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    today := time.Now().UTC()
    seq, err := h.Sequences.NextTx(ctx, tx, today)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    booking := &model.Booking{
        Code:          repository.FormatBookingCode(h.HotelCode, today, seq),
        UserID:        userID,
        RoomID:        room.ID,
        RoomTypeID:    room.RoomType.ID,
        CheckIn:       checkIn,
        CheckOut:      checkOut,
        Nights:        nights,
        Guests:        req.Guests,
        PriceTotal:    room.RoomType.BasePrice * int64(nights),
        DepositAmount: req.DepositAmount,
        Status:        model.BookingConfirmed,
    }
    if err := h.Bookings.CreateTx(ctx, tx, booking); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := h.Bookings.InsertEventTx(ctx, tx, &model.BookingEvent{
        BookingID: booking.ID,
        ToStatus:  string(model.BookingConfirmed),
        ChangedBy: userID,
        Reason:    "created with payment",
    }); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }

    txn := &model.Transaction{
        BookingID: booking.ID,
        UserID:    userID,
        Provider:  req.Provider,
        Amount:    booking.PriceTotal,
    }
    if req.Metadata != "" {
        txn.Metadata = &req.Metadata
    }
    if err := h.Transactions.CreateTx(ctx, tx, txn); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    committed = true

    h.Log.Info("transaction created",
        zap.Uint64("transaction_id", txn.ID),
        zap.Uint64("booking_id", booking.ID),
        zap.String("booking_code", booking.Code),
        zap.String("provider", txn.Provider),
        zap.Int64("amount", txn.Amount),
    )
    return c.JSON(http.StatusCreated, echo.Map{
        "transaction": toTransactionResponse(txn),
        "booking":     toBookingResponse(booking),
    })
}

// GetByBooking returns the booking's driving payment transaction.
//
// GET /v1/bookings/:id/transaction
func (h *TransactionHandler) GetByBooking(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    txn, err := h.Transactions.GetActiveByBookingID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrTransactionNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    userID, _ := getUserID(c)
    if txn.UserID != userID && getRole(c) != "ADMIN" {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return c.JSON(http.StatusOK, toTransactionResponse(txn))
}

// UpdateStatus applies an explicit status change from the back office.
// Only initiated transactions can move; the repository enforces that in
// SQL, so a replay or a race with the reconciler degrades to zero rows.
//
// PATCH /v1/transactions/:id/status
func (h *TransactionHandler) UpdateStatus(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transaction id"})
    }
    var req statusPayload
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    target, err := model.ParseTransactionStatus(req.Status)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown transaction status"})
    }

    ctx := c.Request().Context()
    var rows int64
    if target == model.TxnFailed {
        rows, err = h.Transactions.MarkFailed(ctx, id)
    } else {
        rows, err = h.Transactions.UpdateStatus(ctx, id, target)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if rows == 0 {
        txn, err := h.Transactions.GetByID(ctx, id)
        if errors.Is(err, repository.ErrTransactionNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
        }
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
        }
        if txn.Status == target {
            // Idempotent replay of the same change.
            return c.JSON(http.StatusOK, toTransactionResponse(txn))
        }
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "transaction is already settled"})
    }

    txn, err := h.Transactions.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    h.Log.Info("transaction status changed",
        zap.Uint64("transaction_id", id),
        zap.String("status", string(target)),
    )
    return c.JSON(http.StatusOK, toTransactionResponse(txn))
}
