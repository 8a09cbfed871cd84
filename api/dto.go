/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

Monetary fields travel as base-10 integer strings: wei amounts overflow
JSON-safe numbers. Validation happens in handlers; DTOs are pure carriers.
*/
package api

import (
	"time"

	"github.com/openlease/roomrental/ledger"
)

// =============================================================================
// IDENTITY
// =============================================================================

type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type UserStatusDTO struct {
	SignedUp bool   `json:"signed_up"`
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
}

// =============================================================================
// ROOMS
// =============================================================================

type CreateRoomRequest struct {
	Location   string `json:"location"`
	Intro      string `json:"intro"`
	MonthPrice string `json:"month_price"`
}

type RoomDTO struct {
	ID         int64  `json:"id"`
	Owner      string `json:"owner"`
	Location   string `json:"location"`
	Intro      string `json:"intro"`
	MonthPrice string `json:"month_price"`
	Available  bool   `json:"available"`
}

func toRoomDTO(r ledger.Room) RoomDTO {
	return RoomDTO{
		ID:         int64(r.ID),
		Owner:      string(r.Owner),
		Location:   r.Location,
		Intro:      r.Intro,
		MonthPrice: r.MonthPrice.String(),
		Available:  r.Available,
	}
}

type RoomStatsDTO struct {
	TotalRooms   int64 `json:"total_rooms"`
	CurMaxRoomID int64 `json:"cur_max_room_id"`
}

type CreateRoomResponse struct {
	RoomID int64 `json:"room_id"`
}

// =============================================================================
// APPOINTMENTS
// =============================================================================

type AppointmentDTO struct {
	RoomID int64  `json:"room_id"`
	Renter string `json:"renter"`
	Rentee string `json:"rentee"`
	Valid  bool   `json:"valid"`
}

// =============================================================================
// RENTALS
// =============================================================================

type RentRequest struct {
	RoomID         int64  `json:"room_id"`
	DurationMonths int64  `json:"duration_months"`
	Payment        string `json:"payment"`
}

type RentalDTO struct {
	RoomID         int64  `json:"room_id"`
	Renter         string `json:"renter"`
	DurationMonths int64  `json:"duration_months"`
	Escrow         string `json:"escrow"`
	State          string `json:"state"`
	Confirmed      bool   `json:"confirmed"`
	Ended          bool   `json:"ended"`
}

func toRentalDTO(r ledger.Rental) RentalDTO {
	return RentalDTO{
		RoomID:         int64(r.RoomID),
		Renter:         string(r.Renter),
		DurationMonths: r.DurationMonths,
		Escrow:         r.Escrow.String(),
		State:          string(r.State),
		Confirmed:      r.State == ledger.StateConfirmed || r.State == ledger.StateEnded,
		Ended:          r.State == ledger.StateEnded,
	}
}

// =============================================================================
// BALANCES
// =============================================================================

type BalanceDTO struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type WithdrawResponse struct {
	Account string `json:"account"`
	Paid    string `json:"paid"`
}

// =============================================================================
// AUDIT
// =============================================================================

type AuditEntryDTO struct {
	ID     string `json:"id"`
	At     string `json:"at"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	RoomID int64  `json:"room_id,omitempty"`
	Amount string `json:"amount,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func toAuditDTO(e ledger.AuditEntry) AuditEntryDTO {
	dto := AuditEntryDTO{
		ID:     e.ID,
		At:     e.At.Format(time.RFC3339),
		Actor:  string(e.Actor),
		Action: string(e.Action),
		RoomID: int64(e.RoomID),
		Detail: e.Detail,
	}
	if !e.Amount.IsZero() {
		dto.Amount = e.Amount.String()
	}
	return dto
}

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
