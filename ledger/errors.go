/*
errors.go - Centralized abort reasons for the rental ledger

PURPOSE:
  Every way a transaction can abort is a sentinel here. Operations wrap the
  sentinels with context; callers classify with errors.Is or the helpers at
  the bottom.

ERROR CATEGORIES:
  1. Validation errors  - caller-correctable input (empty field, wrong payment)
  2. Authorization errors - caller is not allowed to perform the call
  3. State-conflict errors - stale client view of the ledger; re-query and retry

Every abort leaves the store untouched: atomicity is the sole recovery
guarantee, there is no compensating-transaction logic.
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// Identity
	ErrAlreadyExists = errors.New("account already exists")
	ErrNotSignedUp   = errors.New("account not signed up")
	ErrWrongPassword = errors.New("incorrect password")
	ErrNotLoggedIn   = errors.New("account not logged in")

	// Rooms
	ErrInvalidInput = errors.New("invalid input")
	ErrRoomNotFound = errors.New("room does not exist")
	ErrNotOwner     = errors.New("only the room owner may do this")
	ErrRoomRented   = errors.New("room is currently rented")
	ErrRoomAppointed = errors.New("room has an active appointment")

	// Appointments
	ErrAppointmentExists  = errors.New("appointment already exists for this room")
	ErrRoomUnavailable    = errors.New("room is not available")
	ErrOwnerCannotAppoint = errors.New("room owner cannot make an appointment on their own room")
	ErrNoAppointment      = errors.New("no appointment exists for this room")
	ErrUnauthorized       = errors.New("caller is not a party to this record")

	// Rentals
	ErrDuplicateRental  = errors.New("renter already holds an active rental")
	ErrIncorrectPayment = errors.New("payment does not match the rent due")
	ErrNoRental         = errors.New("renter has no active rental")
	ErrAlreadyConfirmed = errors.New("rental is already confirmed")
	ErrNotConfirmed     = errors.New("rental is not confirmed")

	// Balances
	ErrInsufficientFunds = errors.New("no withdrawable balance")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError names the rejected field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// IncorrectPaymentError reports the exact rent due versus what was sent.
// Overpayment is rejected the same as underpayment.
type IncorrectPaymentError struct {
	RoomID   RoomID
	Expected Amount
	Got      Amount
}

func (e *IncorrectPaymentError) Error() string {
	return fmt.Sprintf("incorrect payment for room %d: expected %s, got %s",
		e.RoomID, e.Expected, e.Got)
}

func (e *IncorrectPaymentError) Unwrap() error { return ErrIncorrectPayment }

// UnauthorizedError reports who attempted what they may not do.
type UnauthorizedError struct {
	Caller Account
	Action string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("account %s may not %s", e.Caller, e.Action)
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsClientError reports whether the abort is caller-correctable input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrIncorrectPayment) ||
		errors.Is(err, ErrWrongPassword)
}

// IsAuthError reports whether the abort is an authorization rejection.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrOwnerCannotAppoint) ||
		errors.Is(err, ErrNotSignedUp) ||
		errors.Is(err, ErrNotLoggedIn)
}

// IsConflict reports whether the abort indicates a stale client view of the
// ledger. The caller should re-query state before retrying.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrDuplicateRental) ||
		errors.Is(err, ErrAppointmentExists) ||
		errors.Is(err, ErrRoomRented) ||
		errors.Is(err, ErrRoomAppointed) ||
		errors.Is(err, ErrRoomUnavailable) ||
		errors.Is(err, ErrAlreadyConfirmed) ||
		errors.Is(err, ErrNotConfirmed) ||
		errors.Is(err, ErrInsufficientFunds)
}

// IsNotFound reports whether the abort references a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrNoAppointment) ||
		errors.Is(err, ErrNoRental)
}
