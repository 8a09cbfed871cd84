/*
rentals.go - Rental ledger: the central state machine

STATES (per rental record):
  NONE -> RENTED -> CONFIRMED -> ENDED
                 \-> REFUNDED          (only before confirmation)

MONEY FLOW:
  rentRoom    escrows the full prepaid rent on the rental record
  moveIn      releases the escrow to the owner's balance, exactly once
  refundRoom  returns the escrow to the renter's balance
  moveOut     moves no money; the room re-enters the available pool

INVARIANTS:
  - A renter holds at most one active (rented or confirmed) rental
  - A room holds at most one active rental; Available == no active rental
  - Payment must equal monthPrice * duration exactly, no over- or underpay
  - Starting a rental supersedes any appointment on the room
*/
package ledger

import (
	"context"

	"github.com/google/uuid"
)

// RentRoom rents roomID for durationMonths, escrowing payment. The payment
// must equal the room's monthly price times the duration exactly.
func (l *Ledger) RentRoom(ctx context.Context, renter Account, roomID RoomID, durationMonths int64, payment Amount) error {
	if durationMonths <= 0 {
		return &InvalidInputError{Field: "durationMonths", Reason: "must be positive"}
	}
	return l.apply(ctx, "rentRoom", renter, func(s Store) error {
		if err := l.requireLogin(ctx, s, renter); err != nil {
			return err
		}
		room, err := s.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room == nil || !room.Available {
			return ErrRoomUnavailable
		}
		existing, err := s.ActiveRentalByRenter(ctx, renter)
		if err != nil {
			return err
		}
		if existing.Active() {
			return ErrDuplicateRental
		}
		due := room.MonthPrice.MulInt(durationMonths)
		if !payment.Equal(due) {
			return &IncorrectPaymentError{RoomID: roomID, Expected: due, Got: payment}
		}

		room.Available = false
		if err := s.PutRoom(ctx, *room); err != nil {
			return err
		}
		// The rental supersedes any standing appointment on the room.
		appt, err := s.GetAppointment(ctx, roomID)
		if err != nil {
			return err
		}
		if appt != nil {
			if err := s.DeleteAppointment(ctx, roomID); err != nil {
				return err
			}
		}
		if err := s.PutRental(ctx, Rental{
			ID:             uuid.NewString(),
			RoomID:         roomID,
			Renter:         renter,
			DurationMonths: durationMonths,
			Escrow:         payment,
			State:          StateRented,
			CreatedAt:      l.now(),
		}); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: renter, Action: AuditRoomRented, RoomID: roomID, Amount: payment})
	})
}

// MoveIn confirms the renter's active rental and releases the escrowed rent
// to the room owner's withdrawable balance. The credit happens exactly once;
// a second call fails with ErrAlreadyConfirmed and moves no money.
func (l *Ledger) MoveIn(ctx context.Context, renter Account) error {
	return l.apply(ctx, "moveIn", renter, func(s Store) error {
		rental, err := s.ActiveRentalByRenter(ctx, renter)
		if err != nil {
			return err
		}
		if !rental.Active() {
			return ErrNoRental
		}
		if rental.State != StateRented {
			return ErrAlreadyConfirmed
		}
		room, err := s.GetRoom(ctx, rental.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		rental.State = StateConfirmed
		if err := s.PutRental(ctx, *rental); err != nil {
			return err
		}
		balance, err := s.GetBalance(ctx, room.Owner)
		if err != nil {
			return err
		}
		if err := s.PutBalance(ctx, room.Owner, balance.Add(rental.Escrow)); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: renter, Action: AuditMoveIn, RoomID: rental.RoomID, Amount: rental.Escrow})
	})
}

// MoveOut ends a confirmed rental and returns the room to the available
// pool. The rental record remains as history.
func (l *Ledger) MoveOut(ctx context.Context, renter Account) error {
	return l.apply(ctx, "moveOut", renter, func(s Store) error {
		rental, err := s.ActiveRentalByRenter(ctx, renter)
		if err != nil {
			return err
		}
		if !rental.Active() {
			return ErrNoRental
		}
		if rental.State != StateConfirmed {
			return ErrNotConfirmed
		}
		rental.State = StateEnded
		if err := s.PutRental(ctx, *rental); err != nil {
			return err
		}
		if err := l.markRoomAvailable(ctx, s, rental.RoomID); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: renter, Action: AuditMoveOut, RoomID: rental.RoomID})
	})
}

// RefundRoom cancels an unconfirmed rental: the escrow goes back to the
// renter's balance and the room becomes available again. Refusal after
// confirmation is absolute; once moved in, the only exit is MoveOut.
func (l *Ledger) RefundRoom(ctx context.Context, renter Account) error {
	return l.apply(ctx, "refundRoom", renter, func(s Store) error {
		rental, err := s.ActiveRentalByRenter(ctx, renter)
		if err != nil {
			return err
		}
		if !rental.Active() {
			return ErrNoRental
		}
		if rental.State != StateRented {
			return ErrAlreadyConfirmed
		}
		rental.State = StateRefunded
		if err := s.PutRental(ctx, *rental); err != nil {
			return err
		}
		balance, err := s.GetBalance(ctx, renter)
		if err != nil {
			return err
		}
		if err := s.PutBalance(ctx, renter, balance.Add(rental.Escrow)); err != nil {
			return err
		}
		if err := l.markRoomAvailable(ctx, s, rental.RoomID); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: renter, Action: AuditRefund, RoomID: rental.RoomID, Amount: rental.Escrow})
	})
}

// markRoomAvailable flips the room back into the available pool when a
// rental releases it. The room cannot have been deleted while rented, so a
// missing record here is a store-level fault.
func (l *Ledger) markRoomAvailable(ctx context.Context, s Store, roomID RoomID) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}
	room.Available = true
	return s.PutRoom(ctx, *room)
}

// =============================================================================
// READ QUERIES
// =============================================================================

// GetRenterRentalInfo returns the renter's active rental, or nil when the
// renter holds none.
func (l *Ledger) GetRenterRentalInfo(ctx context.Context, renter Account) (*Rental, error) {
	rental, err := l.store.ActiveRentalByRenter(ctx, renter)
	if err != nil {
		return nil, err
	}
	if !rental.Active() {
		return nil, nil
	}
	return rental, nil
}

// IsRentalRoomConfirmed reports whether the room's current rental has been
// confirmed by move-in.
func (l *Ledger) IsRentalRoomConfirmed(ctx context.Context, roomID RoomID) (bool, error) {
	rental, err := l.store.LatestRentalByRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return rental != nil && rental.State == StateConfirmed, nil
}

// IsRentalRoomEnded reports whether the room's most recent rental has ended.
func (l *Ledger) IsRentalRoomEnded(ctx context.Context, roomID RoomID) (bool, error) {
	rental, err := l.store.LatestRentalByRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return rental != nil && rental.State == StateEnded, nil
}
