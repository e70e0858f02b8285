package model

import "time"

// Booking is a reservation of one room for a date range.  The room type is
// denormalized onto the booking at creation time so that later price or
// type changes on the catalog never rewrite history.  PriceTotal is always
// BasePrice × Nights at the time of the last create/update.
//
// A booking is never physically deleted by the normal flow: cancellation
// and no_show are statuses, and the soft remove operation maps to no_show.
type Booking struct {
    ID            uint64        // bookings.id
    Code          string        // bookings.booking_code, unique, e.g. La_Rose-2026-08-31-001
    UserID        uint64        // bookings.user_id
    RoomID        uint64        // bookings.room_id
    RoomTypeID    uint64        // bookings.room_type_id (denormalized)
    CheckIn       time.Time     // bookings.check_in (date)
    CheckOut      time.Time     // bookings.check_out (date)
    Nights        int           // bookings.nights, derived, always > 0
    Guests        int           // bookings.guests
    PriceTotal    int64         // bookings.price_total in VND
    DepositAmount int64         // bookings.deposit_amount in VND
    Status        BookingStatus // bookings.status
    CancelReason  *string       // bookings.cancel_reason (nullable)
    CancelledAt   *time.Time    // bookings.cancelled_at (nullable)
    CreatedAt     time.Time     // bookings.created_at
    UpdatedAt     time.Time     // bookings.updated_at
}

// BookingEvent is one entry in a booking's status history.  Every create,
// guarded transition, forced transition and cancellation appends a row.
// FromStatus is empty for the creation event.
type BookingEvent struct {
    ID         uint64    // booking_events.id
    BookingID  uint64    // booking_events.booking_id
    FromStatus string    // booking_events.from_status
    ToStatus   string    // booking_events.to_status
    ChangedBy  uint64    // booking_events.changed_by_user_id
    Reason     string    // booking_events.reason
    CreatedAt  time.Time // booking_events.created_at
}
