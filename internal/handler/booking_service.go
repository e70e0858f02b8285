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

// BookingServiceHandler serves the line items attached to bookings:
// breakfasts, pickups and other catalog services billed on top of the
// room price.
type BookingServiceHandler struct {
    Bookings *repository.BookingRepo
    Items    *repository.BookingServiceRepo
    Log      *zap.Logger
}

// NewBookingServiceHandler wires a BookingServiceHandler.
func NewBookingServiceHandler(bookings *repository.BookingRepo, items *repository.BookingServiceRepo, log *zap.Logger) *BookingServiceHandler {
    return &BookingServiceHandler{Bookings: bookings, Items: items, Log: log}
}

type lineItemResponse struct {
    ID           uint64  `json:"id"`
    BookingID    uint64  `json:"booking_id"`
    ServiceID    uint64  `json:"service_id"`
    Quantity     int     `json:"quantity"`
    PricePerUnit int64   `json:"price_per_unit"`
    TotalPrice   int64   `json:"total_price"`
    Notes        *string `json:"notes,omitempty"`
    CreatedAt    string  `json:"created_at"`
    UpdatedAt    string  `json:"updated_at"`
}

func toLineItemResponse(it *model.BookingServiceItem) lineItemResponse {
    return lineItemResponse{
        ID:           it.ID,
        BookingID:    it.BookingID,
        ServiceID:    it.ServiceID,
        Quantity:     it.Quantity,
        PricePerUnit: it.PricePerUnit,
        TotalPrice:   it.TotalPrice,
        Notes:        it.Notes,
        CreatedAt:    it.CreatedAt.UTC().Format(time.RFC3339),
        UpdatedAt:    it.UpdatedAt.UTC().Format(time.RFC3339),
    }
}

// List returns all line items on a booking.
//
// GET /v1/bookings/:id/services
func (h *BookingServiceHandler) List(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx := c.Request().Context()
    if _, err := h.Bookings.GetByID(ctx, id); err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    items, err := h.Items.ListByBooking(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    out := make([]lineItemResponse, 0, len(items))
    for i := range items {
        out = append(out, toLineItemResponse(&items[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Add attaches a catalog service to a booking.  The unit price is
// snapshotted from the catalog here; the catalog may change later
// without affecting this line item.
//
// POST /v1/bookings/:id/services
func (h *BookingServiceHandler) Add(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req struct {
        ServiceID uint64 `json:"service_id" validate:"required"`
        Quantity  int    `json:"quantity" validate:"required,min=1"`
        Notes     string `json:"notes"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx := c.Request().Context()
    booking, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    if booking.Status.IsTerminal() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking can no longer be modified"})
    }
    svc, err := h.Items.GetService(ctx, req.ServiceID)
    if err != nil {
        if errors.Is(err, repository.ErrServiceNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
        }
        if errors.Is(err, repository.ErrServiceInactive) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "service is not active"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }

    item := &model.BookingServiceItem{
        BookingID:    booking.ID,
        ServiceID:    svc.ID,
        Quantity:     req.Quantity,
        PricePerUnit: svc.Price,
    }
    if req.Notes != "" {
        item.Notes = &req.Notes
    }
    if err := h.Items.Add(ctx, item); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    h.Log.Info("service added to booking",
        zap.Uint64("booking_id", booking.ID),
        zap.Uint64("service_id", svc.ID),
        zap.Int("quantity", item.Quantity),
        zap.Int64("total_price", item.TotalPrice),
    )
    return c.JSON(http.StatusCreated, toLineItemResponse(item))
}

// UpdateQuantity changes a line item's quantity; the total is recomputed
// from the stored unit price.
//
// PATCH /v1/booking-services/:id
func (h *BookingServiceHandler) UpdateQuantity(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid line item id"})
    }
    var req struct {
        Quantity int `json:"quantity" validate:"required,min=1"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if err := h.Items.UpdateQuantity(c.Request().Context(), id, req.Quantity); err != nil {
        if errors.Is(err, repository.ErrServiceNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "line item not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete removes a line item from its booking.
//
// DELETE /v1/booking-services/:id
func (h *BookingServiceHandler) Delete(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid line item id"})
    }
    if err := h.Items.Delete(c.Request().Context(), id); err != nil {
        if errors.Is(err, repository.ErrServiceNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "line item not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    return c.NoContent(http.StatusNoContent)
}
