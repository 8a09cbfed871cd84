/*
rooms.go - Room ledger: listing and delisting rooms

ID ALLOCATION:
  Room ids are allocated from a monotonic counter starting at 1. Deleting a
  room retires its id: the live-room count decrements but the max-id counter
  never does, so ids are never reused.
*/
package ledger

import (
	"context"
)

// AddRoom lists a new room for the owner and returns its allocated id.
// Location and intro must be non-empty; the monthly price must not be
// negative.
func (l *Ledger) AddRoom(ctx context.Context, owner Account, location, intro string, monthPrice Amount) (RoomID, error) {
	if location == "" {
		return 0, &InvalidInputError{Field: "location", Reason: "must not be empty"}
	}
	if intro == "" {
		return 0, &InvalidInputError{Field: "intro", Reason: "must not be empty"}
	}
	if monthPrice.IsNegative() {
		return 0, &InvalidInputError{Field: "monthPrice", Reason: "must not be negative"}
	}

	var id RoomID
	err := l.apply(ctx, "addRoom", owner, func(s Store) error {
		if err := l.requireLogin(ctx, s, owner); err != nil {
			return err
		}
		counters, err := s.GetCounters(ctx)
		if err != nil {
			return err
		}
		id = counters.MaxRoomID + 1
		if err := s.PutRoom(ctx, Room{
			ID:         id,
			Owner:      owner,
			Location:   location,
			Intro:      intro,
			MonthPrice: monthPrice,
			Available:  true,
			CreatedAt:  l.now(),
		}); err != nil {
			return err
		}
		counters.MaxRoomID = id
		counters.TotalRooms++
		if err := s.PutCounters(ctx, counters); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{
			Actor:  owner,
			Action: AuditRoomAdded,
			RoomID: id,
			Amount: monthPrice,
			Detail: location,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteRoom delists a room. Only the owner may delete, and only while the
// room has no active rental and no valid appointment. The id is retired,
// never reallocated.
func (l *Ledger) DeleteRoom(ctx context.Context, caller Account, roomID RoomID) error {
	return l.apply(ctx, "deleteRoom", caller, func(s Store) error {
		if err := l.requireLogin(ctx, s, caller); err != nil {
			return err
		}
		room, err := s.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if room.Owner != caller {
			return ErrNotOwner
		}
		rental, err := s.ActiveRentalByRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if rental.Active() {
			return ErrRoomRented
		}
		appt, err := s.GetAppointment(ctx, roomID)
		if err != nil {
			return err
		}
		if appt != nil && appt.Valid {
			return ErrRoomAppointed
		}
		if err := s.DeleteRoom(ctx, roomID); err != nil {
			return err
		}
		counters, err := s.GetCounters(ctx)
		if err != nil {
			return err
		}
		counters.TotalRooms--
		if err := s.PutCounters(ctx, counters); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: caller, Action: AuditRoomDeleted, RoomID: roomID})
	})
}

// =============================================================================
// READ QUERIES
// =============================================================================

// GetRoomInfo returns the full room record, or ErrRoomNotFound.
func (l *Ledger) GetRoomInfo(ctx context.Context, roomID RoomID) (Room, error) {
	room, err := l.store.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, err
	}
	if room == nil {
		return Room{}, ErrRoomNotFound
	}
	return *room, nil
}

// GetRoomLocation returns the room's location.
func (l *Ledger) GetRoomLocation(ctx context.Context, roomID RoomID) (string, error) {
	room, err := l.GetRoomInfo(ctx, roomID)
	if err != nil {
		return "", err
	}
	return room.Location, nil
}

// GetRoomIntro returns the room's description.
func (l *Ledger) GetRoomIntro(ctx context.Context, roomID RoomID) (string, error) {
	room, err := l.GetRoomInfo(ctx, roomID)
	if err != nil {
		return "", err
	}
	return room.Intro, nil
}

// GetRoomPrice returns the room's monthly price.
func (l *Ledger) GetRoomPrice(ctx context.Context, roomID RoomID) (Amount, error) {
	room, err := l.GetRoomInfo(ctx, roomID)
	if err != nil {
		return Amount{}, err
	}
	return room.MonthPrice, nil
}

// IsRoomAvailable reports whether the room can currently be rented.
// Unknown and deleted rooms report false, not an error.
func (l *Ledger) IsRoomAvailable(ctx context.Context, roomID RoomID) (bool, error) {
	room, err := l.store.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return room != nil && room.Available, nil
}

// GetAllRooms returns every listed room, ordered by id.
func (l *Ledger) GetAllRooms(ctx context.Context) ([]Room, error) {
	return l.store.ListRooms(ctx)
}

// GetAllAvailableRooms returns every room currently open to rent.
func (l *Ledger) GetAllAvailableRooms(ctx context.Context) ([]Room, error) {
	rooms, err := l.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Available {
			available = append(available, r)
		}
	}
	return available, nil
}

// GetTotalRoomCount returns the number of live rooms.
func (l *Ledger) GetTotalRoomCount(ctx context.Context) (int64, error) {
	counters, err := l.store.GetCounters(ctx)
	if err != nil {
		return 0, err
	}
	return counters.TotalRooms, nil
}

// GetCurMaxRoomID returns the highest id ever allocated. It does not
// decrement on deletion.
func (l *Ledger) GetCurMaxRoomID(ctx context.Context) (RoomID, error) {
	counters, err := l.store.GetCounters(ctx)
	if err != nil {
		return 0, err
	}
	return counters.MaxRoomID, nil
}
