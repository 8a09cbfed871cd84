/*
Package ledger implements the room rental ledger: a single shared store of
users, rooms, appointments, rentals, and withdrawable balances, mutated only
through atomic operations.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: external account identifier (caller identity for every operation)
  - Amount: integer smallest-unit money (wei-precision, no floating point)
  - User / Room / Appointment / Rental: the tagged records of the sub-ledgers
  - RentalState: the lifecycle state machine NONE -> RENTED -> CONFIRMED -> ENDED
    with the alternate pre-confirmation exit RENTED -> REFUNDED

DESIGN PRINCIPLES:
  1. Atomicity: every mutation runs in one store transaction, all-or-nothing
  2. Precision: decimal.Decimal for money, exact integer comparison
  3. Type safety: Account and RoomID are distinct types
  4. Auditability: every applied mutation leaves an AuditEntry

SEE ALSO:
  - store.go: persistence interface
  - ledger.go: the Ledger aggregate and transaction boundary
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Account is an external account identifier (e.g. a wallet address).
type Account string

// RoomID is a monotonically allocated room identifier. Ids start at 1 and are
// never reused, even after the room is deleted.
type RoomID int64

// =============================================================================
// AMOUNT - Integer smallest-unit money
// =============================================================================

// Amount is a monetary value in the smallest unit (wei). All arithmetic and
// comparisons are exact; there is no floating point anywhere in the ledger.
type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value int64) Amount {
	return Amount{Value: decimal.NewFromInt(value)}
}

// ParseAmount parses a base-10 integer string into an Amount.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d}, nil
}

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) MulInt(n int64) Amount     { return Amount{Value: a.Value.Mul(decimal.NewFromInt(n))} }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) String() string            { return a.Value.String() }

// =============================================================================
// USER - Identity ledger record
// =============================================================================

// User is an identity record. Created once on sign-up, never deleted.
// The password is stored as a bcrypt hash, never in the clear.
type User struct {
	Account      Account
	Username     string
	PasswordHash []byte
	SignedUp     bool
	LoggedIn     bool
	CreatedAt    time.Time
}

// UserStatus is the composite read returned by the status query.
type UserStatus struct {
	SignedUp bool
	LoggedIn bool
	Username string
}

// =============================================================================
// ROOM - Room ledger record
// =============================================================================

// Room is a listed room. Available flips to false while the room is rented
// and back to true on move-out or refund.
type Room struct {
	ID         RoomID
	Owner      Account
	Location   string
	Intro      string
	MonthPrice Amount
	Available  bool
	CreatedAt  time.Time
}

// Counters tracks the room id allocator and the live-room count.
// MaxRoomID only ever grows; TotalRooms decrements on deletion.
type Counters struct {
	TotalRooms int64
	MaxRoomID  RoomID
}

// =============================================================================
// APPOINTMENT - Pre-rental reservation marker
// =============================================================================

// Appointment links a prospective renter to a room before rental.
// At most one valid appointment exists per room.
type Appointment struct {
	RoomID    RoomID
	Renter    Account
	Rentee    Account // the room owner
	Valid     bool
	CreatedAt time.Time
}

// =============================================================================
// RENTAL - The central state machine
// =============================================================================

type RentalState string

const (
	// StateRented: payment escrowed, renter has not yet confirmed move-in.
	StateRented RentalState = "rented"
	// StateConfirmed: renter moved in, escrow released to the owner.
	StateConfirmed RentalState = "confirmed"
	// StateEnded: renter moved out. Terminal; kept as history.
	StateEnded RentalState = "ended"
	// StateRefunded: cancelled before confirmation, escrow returned to the
	// renter. Terminal; equivalent to no rental for all active checks.
	StateRefunded RentalState = "refunded"
)

// Rental records one renter's tenancy of one room. A renter holds at most one
// active rental; a room holds at most one active rental.
type Rental struct {
	ID             string
	RoomID         RoomID
	Renter         Account
	DurationMonths int64
	// Escrow is the full prepaid rent, held from rentRoom until moveIn
	// (credited to the owner) or refundRoom (returned to the renter).
	Escrow    Amount
	State     RentalState
	CreatedAt time.Time
}

// Active reports whether the rental still binds the room and the renter.
func (r *Rental) Active() bool {
	return r != nil && (r.State == StateRented || r.State == StateConfirmed)
}

// =============================================================================
// AUDIT - Who did what, append-only
// =============================================================================

type AuditAction string

const (
	AuditSignUp             AuditAction = "sign_up"
	AuditLogin              AuditAction = "login"
	AuditLogout             AuditAction = "logout"
	AuditRoomAdded          AuditAction = "room_added"
	AuditRoomDeleted        AuditAction = "room_deleted"
	AuditAppointmentMade    AuditAction = "appointment_made"
	AuditAppointmentDeleted AuditAction = "appointment_deleted"
	AuditRoomRented         AuditAction = "room_rented"
	AuditMoveIn             AuditAction = "move_in"
	AuditMoveOut            AuditAction = "move_out"
	AuditRefund             AuditAction = "refund"
	AuditWithdrawal         AuditAction = "withdrawal"
)

// AuditEntry records one applied mutation. Append-only; aborted transactions
// leave no entry.
type AuditEntry struct {
	ID     string
	At     time.Time
	Actor  Account
	Action AuditAction
	RoomID RoomID // zero when the action is not room-scoped
	Amount Amount // zero when the action moves no money
	Detail string
}
