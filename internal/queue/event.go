// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingSettledEvent is published when a payment gateway callback settles
// a booking's transaction. It carries the full settlement details so
// downstream consumers (mailer, analytics) can act without querying the
// primary database: the identifiers come from our records, the customer
// and amount breakdown from the gateway payload.
type BookingSettledEvent struct {
    BookingID     uint64 `json:"booking_id"`
    BookingCode   string `json:"booking_code"`
    UserID        uint64 `json:"user_id"`
    RoomID        uint64 `json:"room_id"`
    RoomType      string `json:"room_type,omitempty"`
    RoomNumber    string `json:"room_number,omitempty"`
    CheckIn       string `json:"check_in"`
    CheckOut      string `json:"check_out"`
    CustomerName  string `json:"customer_name,omitempty"`
    CustomerEmail string `json:"customer_email,omitempty"`
    PaymentMethod string `json:"payment_method"`
    PaymentOption string `json:"payment_option,omitempty"`
    AmountPaid    int64  `json:"amount_paid"`
    AmountToPay   int64  `json:"amount_to_pay"`
    RemainingDue  int64  `json:"remaining_due"`
    Currency      string `json:"currency"`
    SettledAt     string `json:"settled_at"`
}

// BookingCancelledEvent is published when a booking is cancelled, whether
// by the customer within the allowed window or by staff override.
type BookingCancelledEvent struct {
    BookingID    uint64 `json:"booking_id"`
    BookingCode  string `json:"booking_code"`
    UserID       uint64 `json:"user_id"`
    Reason       string `json:"reason,omitempty"`
    RefundIssued bool   `json:"refund_issued"`
    CancelledAt  string `json:"cancelled_at"`
}
