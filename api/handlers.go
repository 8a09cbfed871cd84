/*
handlers.go - HTTP handlers over the rental ledger

PURPOSE:
  The thin-client call surface. Each handler parses the request, resolves the
  caller account, invokes exactly one ledger operation, and serializes the
  result. No business rule lives here.

CALLER IDENTITY:
  The X-Account header carries the caller's account address. Wallet
  connection and signing are an external collaborator's concern; the header
  stands in for the account the wallet provider would inject.

ERROR HANDLING:
  Ledger aborts map to HTTP status by taxonomy:
  - 400: validation errors (empty input, wrong payment, bad password)
  - 403: authorization rejections
  - 404: missing room/appointment/rental
  - 409: state conflicts (stale client view; re-query and retry)

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openlease/roomrental/ledger"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *ledger.Ledger
}

func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{Ledger: l}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeLedgerError maps a ledger abort to its HTTP status.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case ledger.IsAuthError(err):
		writeError(w, http.StatusForbidden, "Not allowed", err)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case ledger.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

// account resolves the caller identity from the X-Account header.
func account(w http.ResponseWriter, r *http.Request) (ledger.Account, bool) {
	acct := r.Header.Get("X-Account")
	if acct == "" {
		writeError(w, http.StatusBadRequest, "Missing X-Account header", nil)
		return "", false
	}
	return ledger.Account(acct), true
}

func roomID(w http.ResponseWriter, r *http.Request) (ledger.RoomID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid room id", err)
		return 0, false
	}
	return ledger.RoomID(id), true
}

// =============================================================================
// IDENTITY HANDLERS
// =============================================================================

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Ledger.SignUp(r.Context(), acct, req.Username, req.Password); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Ledger.Login(r.Context(), acct, req.Password); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.Logout(r.Context(), acct); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UserStatus(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	status, err := h.Ledger.GetUserStatus(r.Context(), acct)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read user status", err)
		return
	}
	writeJSON(w, http.StatusOK, UserStatusDTO{
		SignedUp: status.SignedUp,
		LoggedIn: status.LoggedIn,
		Username: status.Username,
	})
}

// =============================================================================
// ROOM HANDLERS
// =============================================================================

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	var (
		rooms []ledger.Room
		err   error
	)
	if r.URL.Query().Get("available") == "true" {
		rooms, err = h.Ledger.GetAllAvailableRooms(r.Context())
	} else {
		rooms, err = h.Ledger.GetAllRooms(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rooms", err)
		return
	}
	dtos := make([]RoomDTO, len(rooms))
	for i, room := range rooms {
		dtos[i] = toRoomDTO(room)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	room, err := h.Ledger.GetRoomInfo(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(room))
}

func (h *Handler) RoomStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.Ledger.GetTotalRoomCount(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read room stats", err)
		return
	}
	maxID, err := h.Ledger.GetCurMaxRoomID(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read room stats", err)
		return
	}
	writeJSON(w, http.StatusOK, RoomStatsDTO{TotalRooms: total, CurMaxRoomID: int64(maxID)})
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	price, err := ledger.ParseAmount(req.MonthPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month_price", err)
		return
	}
	id, err := h.Ledger.AddRoom(r.Context(), acct, req.Location, req.Intro, price)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateRoomResponse{RoomID: int64(id)})
}

func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.DeleteRoom(r.Context(), acct, id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// APPOINTMENT HANDLERS
// =============================================================================

func (h *Handler) MakeAppointment(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.MakeAppointment(r.Context(), acct, id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.DeleteAppointment(r.Context(), acct, id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAppointment returns full details for the renter or rentee; anyone else
// gets only the validity flag via ?status=true, mirroring the split between
// the status check and the details query.
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("status") == "true" {
		valid, err := h.Ledger.CheckAppointmentStatus(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check appointment", err)
			return
		}
		writeJSON(w, http.StatusOK, AppointmentDTO{RoomID: int64(id), Valid: valid})
		return
	}
	acct, ok := account(w, r)
	if !ok {
		return
	}
	appt, err := h.Ledger.GetAppointmentDetails(r.Context(), acct, id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AppointmentDTO{
		RoomID: int64(appt.RoomID),
		Renter: string(appt.Renter),
		Rentee: string(appt.Rentee),
		Valid:  appt.Valid,
	})
}

// =============================================================================
// RENTAL HANDLERS
// =============================================================================

func (h *Handler) RentRoom(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	var req RentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	payment, err := ledger.ParseAmount(req.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment", err)
		return
	}
	if err := h.Ledger.RentRoom(r.Context(), acct, ledger.RoomID(req.RoomID), req.DurationMonths, payment); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) MoveIn(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.MoveIn(r.Context(), acct); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MoveOut(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.MoveOut(r.Context(), acct); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RefundRoom(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.RefundRoom(r.Context(), acct); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CurrentRental(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	rental, err := h.Ledger.GetRenterRentalInfo(r.Context(), acct)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read rental", err)
		return
	}
	if rental == nil {
		writeError(w, http.StatusNotFound, "No active rental", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRentalDTO(*rental))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	balance, err := h.Ledger.GetUserBalance(r.Context(), acct)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{Account: string(acct), Balance: balance.String()})
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	acct, ok := account(w, r)
	if !ok {
		return
	}
	paid, err := h.Ledger.WithdrawDeposit(r.Context(), acct)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Account: string(acct), Paid: paid.String()})
}

// =============================================================================
// AUDIT
// =============================================================================

func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := h.Ledger.AuditTrail(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read audit trail", err)
		return
	}
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAuditDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}
