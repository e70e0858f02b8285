package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/larose/hotel-backoffice/internal/model"
    "github.com/larose/hotel-backoffice/internal/queue"
    "github.com/larose/hotel-backoffice/internal/repository"
)

// EventPublisher is the slice of the message broker the handlers need.
// Publishing is best effort everywhere: a broker outage is logged and
// never turns into a request failure.
type EventPublisher interface {
    BookingSettled(ctx context.Context, ev queue.BookingSettledEvent) error
    BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookingHandler serves the booking lifecycle endpoints.  Handlers own
// their database transactions: each write path opens one transaction,
// runs the repository *Tx methods inside it, and commits last.
type BookingHandler struct {
    Bookings  *repository.BookingRepo
    Rooms     *repository.RoomRepo
    Users     *repository.UserRepo
    Sequences *repository.SequenceRepo
    HotelCode string
    Publisher EventPublisher
    Log       *zap.Logger
}

// NewBookingHandler wires a BookingHandler.
func NewBookingHandler(
    bookings *repository.BookingRepo,
    rooms *repository.RoomRepo,
    users *repository.UserRepo,
    sequences *repository.SequenceRepo,
    hotelCode string,
    pub EventPublisher,
    log *zap.Logger,
) *BookingHandler {
    return &BookingHandler{
        Bookings:  bookings,
        Rooms:     rooms,
        Users:     users,
        Sequences: sequences,
        HotelCode: hotelCode,
        Publisher: pub,
        Log:       log,
    }
}

const dateLayout = "2006-01-02"

// bookingPayload is the create/update request body.  Dates are calendar
// dates; nights and price are derived server side and never accepted
// from the client.
type bookingPayload struct {
    RoomID        uint64 `json:"room_id" validate:"required"`
    CheckIn       string `json:"check_in" validate:"required,datetime=2006-01-02"`
    CheckOut      string `json:"check_out" validate:"required,datetime=2006-01-02"`
    Guests        int    `json:"guests" validate:"omitempty,min=1"`
    DepositAmount int64  `json:"deposit_amount" validate:"omitempty,min=0"`
}

// bookingResponse is the wire shape of a booking.
type bookingResponse struct {
    ID            uint64  `json:"id"`
    BookingCode   string  `json:"booking_code"`
    UserID        uint64  `json:"user_id"`
    RoomID        uint64  `json:"room_id"`
    RoomTypeID    uint64  `json:"room_type_id"`
    CheckIn       string  `json:"check_in"`
    CheckOut      string  `json:"check_out"`
    Nights        int     `json:"nights"`
    Guests        int     `json:"guests"`
    PriceTotal    int64   `json:"price_total"`
    DepositAmount int64   `json:"deposit_amount"`
    Status        string  `json:"status"`
    CancelReason  *string `json:"cancel_reason,omitempty"`
    CancelledAt   *string `json:"cancelled_at,omitempty"`
    CreatedAt     string  `json:"created_at"`
    UpdatedAt     string  `json:"updated_at"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
    resp := bookingResponse{
        ID:            b.ID,
        BookingCode:   b.Code,
        UserID:        b.UserID,
        RoomID:        b.RoomID,
        RoomTypeID:    b.RoomTypeID,
        CheckIn:       b.CheckIn.Format(dateLayout),
        CheckOut:      b.CheckOut.Format(dateLayout),
        Nights:        b.Nights,
        Guests:        b.Guests,
        PriceTotal:    b.PriceTotal,
        DepositAmount: b.DepositAmount,
        Status:        string(b.Status),
        CancelReason:  b.CancelReason,
        CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
        UpdatedAt:     b.UpdatedAt.UTC().Format(time.RFC3339),
    }
    if b.CancelledAt != nil {
        ca := b.CancelledAt.UTC().Format(time.RFC3339)
        resp.CancelledAt = &ca
    }
    return resp
}

// parseStay validates the date pair and returns check-in, check-out and
// the night count.  Check-out must be strictly after check-in.
func parseStay(p *bookingPayload) (time.Time, time.Time, int, error) {
    checkIn, err := time.Parse(dateLayout, p.CheckIn)
    if err != nil {
        return time.Time{}, time.Time{}, 0, err
    }
    checkOut, err := time.Parse(dateLayout, p.CheckOut)
    if err != nil {
        return time.Time{}, time.Time{}, 0, err
    }
    nights := repository.Nights(checkIn, checkOut)
    if nights <= 0 {
        return time.Time{}, time.Time{}, 0, errors.New("check_out must be after check_in")
    }
    return checkIn, checkOut, nights, nil
}

// Create makes a new booking.  The booking is created directly in the
// confirmed state: the back office records stays that staff have already
// agreed to.  Code assignment, row insert and the creation event are one
// transaction, so a failure at any point releases nothing visible.
//
// POST /v1/bookings
func (h *BookingHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req bookingPayload
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    checkIn, checkOut, nights, err := parseStay(&req)
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
        FromStatus: "",
        ToStatus:   string(model.BookingConfirmed),
        ChangedBy:  userID,
        Reason:     "created",
    }); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    committed = true

    h.Log.Info("booking created",
        zap.Uint64("booking_id", booking.ID),
        zap.String("booking_code", booking.Code),
        zap.Uint64("user_id", userID),
        zap.Int64("price_total", booking.PriceTotal),
    )
    return c.JSON(http.StatusCreated, toBookingResponse(booking))
}

// Get returns one booking.  Customers may only read their own bookings;
// staff may read any.
//
// GET /v1/bookings/:id
func (h *BookingHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    booking, err := h.Bookings.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    userID, _ := getUserID(c)
    if booking.UserID != userID && getRole(c) != "ADMIN" {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// Update rewrites a booking's stay details and reprices it.  Status is
// untouched; only the room, dates, guests and deposit change.  The row
// is locked for the duration so a concurrent cancel or settlement sees
// either the old or the new stay, never a half-write.
//
// PUT /v1/bookings/:id
func (h *BookingHandler) Update(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req bookingPayload
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    checkIn, checkOut, nights, err := parseStay(&req)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx := c.Request().Context()
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

    booking, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    userID, _ := getUserID(c)
    if booking.UserID != userID && getRole(c) != "ADMIN" {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if booking.Status.IsTerminal() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking can no longer be modified"})
    }

    booking.RoomID = room.ID
    booking.RoomTypeID = room.RoomType.ID
    booking.CheckIn = checkIn
    booking.CheckOut = checkOut
    booking.Nights = nights
    if req.Guests != 0 {
        booking.Guests = req.Guests
    }
    booking.PriceTotal = room.RoomType.BasePrice * int64(nights)
    if req.DepositAmount != 0 {
        booking.DepositAmount = req.DepositAmount
    }
    if err := h.Bookings.UpdateTx(ctx, tx, booking); err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    committed = true
    return c.JSON(http.StatusOK, toBookingResponse(booking))
}

type statusPayload struct {
    Status string `json:"status" validate:"required"`
    Reason string `json:"reason"`
}

// UpdateStatus force-sets a booking's status.  This is the staff
// override: the state machine graph is not consulted, but the target
// value must name a real status and the jump is logged loudly plus
// recorded as a history event.
//
// PATCH /v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req statusPayload
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    target, err := model.ParseBookingStatus(req.Status)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown booking status"})
    }
    userID, _ := getUserID(c)

    ctx := c.Request().Context()
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

    booking, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if booking.Status == target {
        // No-op change; the deferred rollback releases the row lock.
        return c.JSON(http.StatusOK, toBookingResponse(booking))
    }
    if !booking.Status.CanTransition(target) {
        // Out-of-graph jumps are allowed from this endpoint but flagged.
        h.Log.Warn("forced booking status change",
            zap.Uint64("booking_id", booking.ID),
            zap.String("from", string(booking.Status)),
            zap.String("to", string(target)),
            zap.Uint64("changed_by", userID),
        )
    }
    if err := h.Bookings.UpdateStatusTx(ctx, tx, id, target); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    reason := req.Reason
    if reason == "" {
        reason = "status set by staff"
    }
    if err := h.Bookings.InsertEventTx(ctx, tx, &model.BookingEvent{
        BookingID:  booking.ID,
        FromStatus: string(booking.Status),
        ToStatus:   string(target),
        ChangedBy:  userID,
        Reason:     reason,
    }); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    committed = true

    booking.Status = target
    return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// SoftDelete marks a booking as no_show.  Nothing is removed from the
// database: the row survives for reporting, only the status changes.
//
// DELETE /v1/bookings/:id
func (h *BookingHandler) SoftDelete(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    userID, _ := getUserID(c)

    ctx := c.Request().Context()
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

    booking, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := h.Bookings.UpdateStatusTx(ctx, tx, id, model.BookingNoShow); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := h.Bookings.InsertEventTx(ctx, tx, &model.BookingEvent{
        BookingID:  booking.ID,
        FromStatus: string(booking.Status),
        ToStatus:   string(model.BookingNoShow),
        ChangedBy:  userID,
        Reason:     "soft removed",
    }); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    committed = true
    return c.NoContent(http.StatusNoContent)
}

// Cancel is the customer self-service cancellation.  The booking is
// loaded first so that a foreign booking is refused outright: customers
// may only cancel their own.  The policy itself (status still open,
// created within the last 2 hours, payment not yet settled) lives inside
// one conditional UPDATE; a refusal there is a business error, not a
// missing resource.
//
// POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    userID, _ := getUserID(c)
    ctx := c.Request().Context()

    before, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if before.UserID != userID && getRole(c) != "ADMIN" {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    rows, err := h.Bookings.Cancel(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrCancelNotAllowed) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking can no longer be cancelled"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }

    booking, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := h.Bookings.InsertEvent(ctx, &model.BookingEvent{
        BookingID:  booking.ID,
        FromStatus: string(before.Status),
        ToStatus:   string(model.BookingCancelled),
        ChangedBy:  userID,
        Reason:     "cancelled by customer",
    }); err != nil {
        h.Log.Warn("booking event insert failed", zap.Uint64("booking_id", id), zap.Error(err))
    }
    if h.Publisher != nil {
        ev := queue.BookingCancelledEvent{
            BookingID:    booking.ID,
            BookingCode:  booking.Code,
            UserID:       booking.UserID,
            RefundIssued: rows > 1,
            CancelledAt:  time.Now().UTC().Format(time.RFC3339),
        }
        if err := h.Publisher.BookingCancelled(ctx, ev); err != nil {
            h.Log.Warn("cancel event publish failed", zap.Uint64("booking_id", id), zap.Error(err))
        }
    }

    h.Log.Info("booking cancelled",
        zap.Uint64("booking_id", booking.ID),
        zap.String("booking_code", booking.Code),
        zap.Uint64("user_id", userID),
        zap.Bool("refund_issued", rows > 1),
    )
    return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// AdminCancel cancels a booking from the back office without the 2-hour
// window.  A reason is mandatory and is stored on the row as well as in
// the history.
//
// POST /v1/admin/bookings/:id/cancel
func (h *BookingHandler) AdminCancel(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req struct {
        Reason string `json:"reason" validate:"required"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
    }
    userID, _ := getUserID(c)

    ctx := c.Request().Context()
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

    booking, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    rows, err := h.Bookings.AdminCancelTx(ctx, tx, id, req.Reason)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if rows == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is already closed"})
    }
    if err := h.Bookings.InsertEventTx(ctx, tx, &model.BookingEvent{
        BookingID:  booking.ID,
        FromStatus: string(booking.Status),
        ToStatus:   string(model.BookingCancelled),
        ChangedBy:  userID,
        Reason:     req.Reason,
    }); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    committed = true

    if h.Publisher != nil {
        ev := queue.BookingCancelledEvent{
            BookingID:   booking.ID,
            BookingCode: booking.Code,
            UserID:      booking.UserID,
            Reason:      req.Reason,
            CancelledAt: time.Now().UTC().Format(time.RFC3339),
        }
        if err := h.Publisher.BookingCancelled(ctx, ev); err != nil {
            h.Log.Warn("cancel event publish failed", zap.Uint64("booking_id", id), zap.Error(err))
        }
    }

    h.Log.Info("booking cancelled by staff",
        zap.Uint64("booking_id", booking.ID),
        zap.Uint64("changed_by", userID),
        zap.String("reason", req.Reason),
    )
    booking.Status = model.BookingCancelled
    booking.CancelReason = &req.Reason
    return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// ListMine returns a page of the caller's own bookings, newest first.
//
// GET /v1/my-bookings?page=&size=&status=
func (h *BookingHandler) ListMine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    status := c.QueryParam("status")
    if status != "" {
        if _, err := model.ParseBookingStatus(status); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown booking status"})
        }
    }
    page := queryInt(c, "page", 1)
    size := queryInt(c, "size", 20)

    items, err := h.Bookings.ListByUser(c.Request().Context(), userID, status, page, size)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    out := make([]bookingResponse, 0, len(items))
    for i := range items {
        out = append(out, toBookingResponse(&items[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": out,
        "page":  page,
        "size":  size,
    })
}
