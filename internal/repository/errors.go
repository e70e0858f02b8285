// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// string-matching messages. For example, ErrCancelNotAllowed signals
// that the cancellation guard matched zero rows (too late, already
// terminal, or already paid), which is a business-rule rejection and
// must not be confused with a missing booking.
package repository

import "errors"

// ErrBookingNotFound is returned when no booking exists for the given
// id or code. Handlers should translate this into an HTTP 404.
var ErrBookingNotFound = errors.New("booking not found")

// ErrTransactionNotFound is returned when a booking has no active
// payment transaction to reconcile or refund. Handlers should
// translate this into an HTTP 404.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrRoomNotFound is returned when the referenced room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrRoomWithoutType is returned when a room has no room type assigned,
// so a nightly price cannot be computed for it. Handlers should
// translate this into an HTTP 400.
var ErrRoomWithoutType = errors.New("room has no room type assigned")

// ErrUserNotFound is returned when the requesting user does not exist
// or is not active.
var ErrUserNotFound = errors.New("user not found or inactive")

// ErrCancelNotAllowed is returned when the conditional cancellation
// update changed zero rows: the booking exists but is outside the
// 2-hour window, already terminal, or its payment already settled.
// Handlers should translate this into an HTTP 400, not a 404.
var ErrCancelNotAllowed = errors.New("booking can no longer be cancelled")

// ErrServiceNotFound is returned when a catalog service or a booking
// line item does not exist.
var ErrServiceNotFound = errors.New("service not found")

// ErrServiceInactive is returned when attaching a disabled catalog
// service to a booking.
var ErrServiceInactive = errors.New("service is not active")
