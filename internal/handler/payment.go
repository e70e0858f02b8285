package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/larose/hotel-backoffice/internal/queue"
    "github.com/larose/hotel-backoffice/internal/repository"
    "github.com/larose/hotel-backoffice/internal/vnpay"
)

// PaymentHandler serves the gateway integration: building signed
// redirect URLs and reconciling the gateway's settlement callbacks
// against stored transactions.
type PaymentHandler struct {
    Bookings     *repository.BookingRepo
    Transactions *repository.TransactionRepo
    Gateway      *vnpay.Client
    Redis        *redis.Client
    Publisher    EventPublisher
    Log          *zap.Logger
}

// NewPaymentHandler wires a PaymentHandler.  Redis may be nil; the
// callback then relies on the conditional update alone for idempotency.
func NewPaymentHandler(
    bookings *repository.BookingRepo,
    transactions *repository.TransactionRepo,
    gateway *vnpay.Client,
    rdb *redis.Client,
    pub EventPublisher,
    log *zap.Logger,
) *PaymentHandler {
    return &PaymentHandler{
        Bookings:     bookings,
        Transactions: transactions,
        Gateway:      gateway,
        Redis:        rdb,
        Publisher:    pub,
        Log:          log,
    }
}

// dedupTTL is how long a processed callback's fingerprint is remembered.
// Gateways retry for at most a day or two; after that the conditional
// update still refuses replays.
const dedupTTL = 48 * time.Hour

// CreatePaymentURL builds a signed VNPay redirect URL for a booking's
// outstanding amount.  The URL is valid for 15 minutes from issuance.
//
// POST /v1/payments/url
func (h *PaymentHandler) CreatePaymentURL(c echo.Context) error {
    var req struct {
        BookingID uint64 `json:"booking_id" validate:"required"`
        OrderInfo string `json:"order_info"`
        TxnRef    string `json:"txn_ref"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx := c.Request().Context()
    booking, err := h.Bookings.GetByID(ctx, req.BookingID)
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

    orderInfo := req.OrderInfo
    if orderInfo == "" {
        orderInfo = "Thanh toan dat phong " + booking.Code
    }
    payURL := h.Gateway.PaymentURL(booking.PriceTotal, orderInfo, booking.RoomID, req.TxnRef, c.RealIP())

    h.Log.Info("payment url issued",
        zap.Uint64("booking_id", booking.ID),
        zap.String("booking_code", booking.Code),
        zap.Int64("amount", booking.PriceTotal),
    )
    return c.JSON(http.StatusOK, echo.Map{"payment_url": payURL})
}

// callbackRequest is the settlement notification posted by the gateway's
// return-page relay.  bookingId carries the human-readable booking code,
// not our numeric key.  The stay, customer and amount-breakdown fields
// are forwarded untouched into the settlement event for the mailer; only
// the code and payment method drive reconciliation.  gatewayTxnId is the
// gateway's own transaction id, used for deduplication when present.
type callbackRequest struct {
    BookingCode   string `json:"bookingId" validate:"required"`
    RoomType      string `json:"roomType"`
    RoomNumber    string `json:"roomNumber"`
    CheckIn       string `json:"checkin"`
    CheckOut      string `json:"checkout"`
    Customer      string `json:"customer"`
    CustomerEmail string `json:"customerEmail"`
    PaymentMethod string `json:"paymentMethod" validate:"required"`
    AmountPaid    int64  `json:"amountPaid"`
    AmountToPay   int64  `json:"amountToPay"`
    RemainingDue  int64  `json:"remainingDue"`
    PaymentOption string `json:"paymentOption"`
    CreatedAt     string `json:"createdAt"`
    GatewayTxnID  string `json:"gatewayTxnId"`
}

// Callback reconciles a gateway settlement against the stored
// transaction.  Only the vnpay method settles anything; other methods
// acknowledge without touching state, since cash and bank transfers are
// settled at the desk.  The booking's own status never changes here.
//
// Idempotency is layered: a Redis SETNX fingerprint short-circuits
// replays cheaply, and the conditional UPDATE underneath guarantees a
// replay that slips past Redis still changes nothing.
//
// POST /v1/payments/callback
func (h *PaymentHandler) Callback(c echo.Context) error {
    var req callbackRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx := c.Request().Context()
    booking, err := h.Bookings.GetByCode(ctx, req.BookingCode)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    txn, err := h.Transactions.GetActiveByBookingID(ctx, booking.ID)
    if err != nil {
        if errors.Is(err, repository.ErrTransactionNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }

    if !strings.EqualFold(req.PaymentMethod, "vnpay") {
        h.Log.Info("callback ignored for non-gateway method",
            zap.String("booking_code", booking.Code),
            zap.String("payment_method", req.PaymentMethod),
        )
        return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
    }

    if h.Redis != nil && req.GatewayTxnID != "" {
        key := "vnpay:callback:" + booking.Code + ":" + req.GatewayTxnID
        set, err := h.Redis.SetNX(ctx, key, 1, dedupTTL).Result()
        if err != nil {
            // Redis being down must not block settlement.
            h.Log.Warn("callback dedup check failed", zap.String("booking_code", booking.Code), zap.Error(err))
        } else if !set {
            h.Log.Info("duplicate callback dropped",
                zap.String("booking_code", booking.Code),
                zap.String("gateway_txn_id", req.GatewayTxnID),
            )
            return c.JSON(http.StatusOK, echo.Map{"status": "duplicate"})
        }
    }

    rows, err := h.Transactions.MarkSuccess(ctx, txn.ID, req.GatewayTxnID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if rows == 0 {
        // Already settled, failed or refunded; nothing to do.
        h.Log.Info("callback left transaction untouched",
            zap.Uint64("transaction_id", txn.ID),
            zap.String("booking_code", booking.Code),
            zap.String("current_status", string(txn.Status)),
        )
        return c.JSON(http.StatusOK, echo.Map{"status": "unchanged"})
    }

    if h.Publisher != nil {
        amountPaid := req.AmountPaid
        if amountPaid == 0 {
            amountPaid = txn.Amount
        }
        ev := queue.BookingSettledEvent{
            BookingID:     booking.ID,
            BookingCode:   booking.Code,
            UserID:        booking.UserID,
            RoomID:        booking.RoomID,
            RoomType:      req.RoomType,
            RoomNumber:    req.RoomNumber,
            CheckIn:       booking.CheckIn.Format(dateLayout),
            CheckOut:      booking.CheckOut.Format(dateLayout),
            CustomerName:  req.Customer,
            CustomerEmail: req.CustomerEmail,
            PaymentMethod: "vnpay",
            PaymentOption: req.PaymentOption,
            AmountPaid:    amountPaid,
            AmountToPay:   req.AmountToPay,
            RemainingDue:  req.RemainingDue,
            Currency:      txn.Currency,
            SettledAt:     time.Now().UTC().Format(time.RFC3339),
        }
        if err := h.Publisher.BookingSettled(ctx, ev); err != nil {
            h.Log.Warn("settled event publish failed", zap.String("booking_code", booking.Code), zap.Error(err))
        }
    }

    h.Log.Info("transaction settled",
        zap.Uint64("transaction_id", txn.ID),
        zap.String("booking_code", booking.Code),
        zap.Int64("amount", txn.Amount),
    )
    return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
