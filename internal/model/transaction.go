package model

import "time"

// Transaction is one attempt to move money for a booking.  Exactly one
// active (non-refunded) payment-type transaction drives a booking's paid
// state.  It is modeled as its own aggregate because refunds and payouts
// can reference it after the booking itself is terminal.
type Transaction struct {
    ID            uint64            // transactions.id
    BookingID     uint64            // transactions.booking_id
    UserID        uint64            // transactions.user_id
    Provider      string            // transactions.provider, e.g. "VNPAY"
    ProviderTxnID *string           // transactions.provider_transaction_id (nullable)
    Amount        int64             // transactions.amount in VND
    Currency      string            // transactions.currency, always "VND"
    Status        TransactionStatus // transactions.status
    Type          TransactionType   // transactions.type
    Metadata      *string           // transactions.metadata, opaque JSON blob
    CreatedAt     time.Time         // transactions.created_at
    UpdatedAt     time.Time         // transactions.updated_at
}
