package model

import "time"

// BookingServiceItem attaches a quantity of an additional hotel service
// (breakfast, airport pickup, ...) to a booking.  TotalPrice is always
// PricePerUnit × Quantity and is recomputed on every quantity change.
// Items are owned by the booking but deleted independently of it.
type BookingServiceItem struct {
    ID           uint64    // booking_services.id
    BookingID    uint64    // booking_services.booking_id
    ServiceID    uint64    // booking_services.service_id
    Quantity     int       // booking_services.quantity, always > 0
    PricePerUnit int64     // booking_services.price_per_unit in VND
    TotalPrice   int64     // booking_services.total_price in VND
    Notes        *string   // booking_services.notes (nullable)
    CreatedAt    time.Time // booking_services.created_at
    UpdatedAt    time.Time // booking_services.updated_at
}

// Service is a catalog entry for an additional service that can be added
// to bookings.  Inactive services cannot be attached to new bookings.
type Service struct {
    ID       uint64 // services.id
    Name     string // services.name
    Price    int64  // services.price in VND
    IsActive bool   // services.is_active
}
