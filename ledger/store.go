/*
store.go - Persistence interface for the ledger records

PURPOSE:
  Defines the interface between the ledger operations and the database.
  Implementations: store/sqlite (production), ledger/store (in-memory).

TRANSACTION CONTRACT:
  Every mutating ledger operation runs inside TxStore.WithTx. The function
  either returns nil and the whole write set commits, or returns an error and
  nothing is applied. Record-level methods never implement partial writes of
  their own; atomicity lives entirely at the WithTx boundary.

READ SEMANTICS:
  Get* methods return (nil, nil) - not an error - when the record does not
  exist. "Not found" is a domain decision made by the operation, not by the
  store.

RENTAL HISTORY:
  Rentals are never deleted. Ended and refunded rentals stay as history;
  ActiveRental* filter on state, LatestRentalByRoom returns the most recent
  record regardless of state.
*/
package ledger

import "context"

// Store handles persistence of all ledger records.
type Store interface {
	// Identity
	GetUser(ctx context.Context, account Account) (*User, error)
	PutUser(ctx context.Context, u User) error

	// Rooms
	GetRoom(ctx context.Context, id RoomID) (*Room, error)
	PutRoom(ctx context.Context, r Room) error
	DeleteRoom(ctx context.Context, id RoomID) error
	ListRooms(ctx context.Context) ([]Room, error)
	GetCounters(ctx context.Context) (Counters, error)
	PutCounters(ctx context.Context, c Counters) error

	// Appointments (at most one per room)
	GetAppointment(ctx context.Context, roomID RoomID) (*Appointment, error)
	PutAppointment(ctx context.Context, a Appointment) error
	DeleteAppointment(ctx context.Context, roomID RoomID) error

	// Rentals (append/update only, never deleted)
	ActiveRentalByRenter(ctx context.Context, renter Account) (*Rental, error)
	ActiveRentalByRoom(ctx context.Context, roomID RoomID) (*Rental, error)
	LatestRentalByRoom(ctx context.Context, roomID RoomID) (*Rental, error)
	PutRental(ctx context.Context, r Rental) error

	// Balances
	GetBalance(ctx context.Context, account Account) (Amount, error)
	PutBalance(ctx context.Context, account Account, amount Amount) error

	// Audit trail (append-only)
	AppendAudit(ctx context.Context, e AuditEntry) error
	QueryAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, every write fn performed is rolled back.
	// If fn returns nil, the write set commits atomically.
	WithTx(ctx context.Context, fn func(Store) error) error
}
