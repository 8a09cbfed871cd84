/*
appointments.go - Appointment ledger: pre-rental reservations

INVARIANTS:
  - At most one valid appointment per room
  - An appointment never coexists with an active rental on the same room
  - Only the renter or the rentee may read or clear an appointment
*/
package ledger

import (
	"context"
)

// MakeAppointment reserves a viewing of roomID for renter.
func (l *Ledger) MakeAppointment(ctx context.Context, renter Account, roomID RoomID) error {
	return l.apply(ctx, "makeAppointment", renter, func(s Store) error {
		if err := l.requireLogin(ctx, s, renter); err != nil {
			return err
		}
		room, err := s.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		existing, err := s.GetAppointment(ctx, roomID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Valid {
			return ErrAppointmentExists
		}
		if !room.Available {
			return ErrRoomUnavailable
		}
		if renter == room.Owner {
			return ErrOwnerCannotAppoint
		}
		if err := s.PutAppointment(ctx, Appointment{
			RoomID:    roomID,
			Renter:    renter,
			Rentee:    room.Owner,
			Valid:     true,
			CreatedAt: l.now(),
		}); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: renter, Action: AuditAppointmentMade, RoomID: roomID})
	})
}

// DeleteAppointment clears the room's appointment. Only the appointment's
// renter or the room owner may clear it.
func (l *Ledger) DeleteAppointment(ctx context.Context, caller Account, roomID RoomID) error {
	return l.apply(ctx, "deleteAppointment", caller, func(s Store) error {
		appt, err := s.GetAppointment(ctx, roomID)
		if err != nil {
			return err
		}
		if appt == nil || !appt.Valid {
			return ErrNoAppointment
		}
		if caller != appt.Renter && caller != appt.Rentee {
			return &UnauthorizedError{Caller: caller, Action: "delete this appointment"}
		}
		if err := s.DeleteAppointment(ctx, roomID); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: caller, Action: AuditAppointmentDeleted, RoomID: roomID})
	})
}

// =============================================================================
// READ QUERIES
// =============================================================================

// CheckAppointmentStatus reports whether the room has a valid appointment.
// Callable by anyone.
func (l *Ledger) CheckAppointmentStatus(ctx context.Context, roomID RoomID) (bool, error) {
	appt, err := l.store.GetAppointment(ctx, roomID)
	if err != nil {
		return false, err
	}
	return appt != nil && appt.Valid, nil
}

// GetAppointmentDetails returns the appointment record. Only the renter or
// the rentee may read it.
func (l *Ledger) GetAppointmentDetails(ctx context.Context, caller Account, roomID RoomID) (Appointment, error) {
	appt, err := l.store.GetAppointment(ctx, roomID)
	if err != nil {
		return Appointment{}, err
	}
	if appt == nil || !appt.Valid {
		return Appointment{}, ErrNoAppointment
	}
	if caller != appt.Renter && caller != appt.Rentee {
		return Appointment{}, &UnauthorizedError{Caller: caller, Action: "view this appointment"}
	}
	return *appt, nil
}
