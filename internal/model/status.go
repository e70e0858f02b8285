package model

import "errors"

// BookingStatus enumerates the lifecycle states of a booking.  The normal
// path is pending → confirmed → checked_in → checked_out.  A booking may
// leave the path early to cancelled or no_show while it is still pending
// or confirmed.  checked_out, cancelled and no_show are terminal.
type BookingStatus string

const (
    BookingPending    BookingStatus = "pending"
    BookingConfirmed  BookingStatus = "confirmed"
    BookingCheckedIn  BookingStatus = "checked_in"
    BookingCheckedOut BookingStatus = "checked_out"
    BookingCancelled  BookingStatus = "cancelled"
    BookingNoShow     BookingStatus = "no_show"
)

// ErrUnknownStatus is returned by the Parse helpers when a raw string does
// not name any recognised status value.
var ErrUnknownStatus = errors.New("unknown status")

// bookingTransitions maps each booking status to the set of statuses it may
// legally move to.  Terminal states map to an empty set.
var bookingTransitions = map[BookingStatus][]BookingStatus{
    BookingPending:    {BookingConfirmed, BookingCancelled, BookingNoShow},
    BookingConfirmed:  {BookingCheckedIn, BookingCancelled, BookingNoShow},
    BookingCheckedIn:  {BookingCheckedOut},
    BookingCheckedOut: {},
    BookingCancelled:  {},
    BookingNoShow:     {},
}

// ParseBookingStatus validates a raw string against the known booking
// statuses.  It returns ErrUnknownStatus for anything it does not recognise
// so callers can reject bad input before touching the database.
func ParseBookingStatus(raw string) (BookingStatus, error) {
    s := BookingStatus(raw)
    if _, ok := bookingTransitions[s]; !ok {
        return "", ErrUnknownStatus
    }
    return s, nil
}

// CanTransition reports whether the booking state machine permits moving
// from one status to another.  A transition to the same status is not a
// transition and returns false.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
    for _, t := range bookingTransitions[s] {
        if t == to {
            return true
        }
    }
    return false
}

// IsTerminal reports whether a booking in this status can never change
// status again through the guarded state machine.
func (s BookingStatus) IsTerminal() bool {
    return len(bookingTransitions[s]) == 0
}

// TransactionStatus enumerates the states of a payment transaction.
// Transitions are monotonic: a transaction never moves back towards
// initiated once it has settled one way or the other.
type TransactionStatus string

const (
    TxnInitiated TransactionStatus = "initiated"
    TxnSuccess   TransactionStatus = "success"
    TxnFailed    TransactionStatus = "failed"
    TxnRefunded  TransactionStatus = "refunded"
)

// txnRank orders transaction statuses so that monotonicity can be checked:
// a transition is only allowed towards an equal or higher rank, and the
// settled states never change into one another.
var txnRank = map[TransactionStatus]int{
    TxnInitiated: 0,
    TxnSuccess:   1,
    TxnFailed:    1,
    TxnRefunded:  1,
}

// ParseTransactionStatus validates a raw string against the known
// transaction statuses.
func ParseTransactionStatus(raw string) (TransactionStatus, error) {
    s := TransactionStatus(raw)
    if _, ok := txnRank[s]; !ok {
        return "", ErrUnknownStatus
    }
    return s, nil
}

// CanTransition reports whether a transaction may move from this status to
// the given one.  Only initiated transactions may settle; settled
// transactions are frozen.
func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
    if s == to {
        return false
    }
    return s == TxnInitiated
}

// TransactionType distinguishes money movement directions on a transaction.
type TransactionType string

const (
    TxnTypePayment TransactionType = "payment"
    TxnTypeRefund  TransactionType = "refund"
    TxnTypePayout  TransactionType = "payout"
)
