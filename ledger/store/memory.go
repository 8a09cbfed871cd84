// Package store provides an in-memory ledger.TxStore for tests and dev.
//
// Transactions are clone-and-swap: WithTx runs the function against a deep
// copy of the state and only installs the copy when the function returns nil.
// A failed transaction therefore leaves the published state byte-for-byte
// untouched, matching the all-or-nothing contract of the SQLite store.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/openlease/roomrental/ledger"
)

type Memory struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	users        map[ledger.Account]ledger.User
	rooms        map[ledger.RoomID]ledger.Room
	counters     ledger.Counters
	appointments map[ledger.RoomID]ledger.Appointment
	rentals      []ledger.Rental // chronological
	balances     map[ledger.Account]ledger.Amount
	audit        []ledger.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{state: newState()}
}

func newState() *state {
	return &state{
		users:        make(map[ledger.Account]ledger.User),
		rooms:        make(map[ledger.RoomID]ledger.Room),
		appointments: make(map[ledger.RoomID]ledger.Appointment),
		balances:     make(map[ledger.Account]ledger.Amount),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.rooms {
		c.rooms[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	c.counters = s.counters
	c.rentals = append(c.rentals, s.rentals...)
	c.audit = append(c.audit, s.audit...)
	return c
}

// WithTx runs fn against a clone of the state and swaps it in on success.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.state.clone()
	if err := fn(&view{state: next}); err != nil {
		return err
	}
	m.state = next
	return nil
}

// =============================================================================
// DIRECT (NON-TRANSACTIONAL) ACCESS
// =============================================================================
// Reads outside WithTx observe the latest committed state. Direct writes
// commit immediately; ledger operations never use them, but tests may.

func (m *Memory) read() *view {
	return &view{state: m.state}
}

func (m *Memory) GetUser(ctx context.Context, account ledger.Account) (*ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetUser(ctx, account)
}

func (m *Memory) PutUser(ctx context.Context, u ledger.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().PutUser(ctx, u)
}

func (m *Memory) GetRoom(ctx context.Context, id ledger.RoomID) (*ledger.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetRoom(ctx, id)
}

func (m *Memory) PutRoom(ctx context.Context, r ledger.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().PutRoom(ctx, r)
}

func (m *Memory) DeleteRoom(ctx context.Context, id ledger.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().DeleteRoom(ctx, id)
}

func (m *Memory) ListRooms(ctx context.Context) ([]ledger.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListRooms(ctx)
}

func (m *Memory) GetCounters(ctx context.Context) (ledger.Counters, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetCounters(ctx)
}

func (m *Memory) PutCounters(ctx context.Context, c ledger.Counters) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().PutCounters(ctx, c)
}

func (m *Memory) GetAppointment(ctx context.Context, roomID ledger.RoomID) (*ledger.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetAppointment(ctx, roomID)
}

func (m *Memory) PutAppointment(ctx context.Context, a ledger.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().PutAppointment(ctx, a)
}

func (m *Memory) DeleteAppointment(ctx context.Context, roomID ledger.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().DeleteAppointment(ctx, roomID)
}

func (m *Memory) ActiveRentalByRenter(ctx context.Context, renter ledger.Account) (*ledger.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ActiveRentalByRenter(ctx, renter)
}

func (m *Memory) ActiveRentalByRoom(ctx context.Context, roomID ledger.RoomID) (*ledger.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ActiveRentalByRoom(ctx, roomID)
}

func (m *Memory) LatestRentalByRoom(ctx context.Context, roomID ledger.RoomID) (*ledger.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().LatestRentalByRoom(ctx, roomID)
}

func (m *Memory) PutRental(ctx context.Context, r ledger.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().PutRental(ctx, r)
}

func (m *Memory) GetBalance(ctx context.Context, account ledger.Account) (ledger.Amount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetBalance(ctx, account)
}

func (m *Memory) PutBalance(ctx context.Context, account ledger.Account, amount ledger.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().PutBalance(ctx, account, amount)
}

func (m *Memory) AppendAudit(ctx context.Context, e ledger.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().AppendAudit(ctx, e)
}

func (m *Memory) QueryAudit(ctx context.Context, limit int) ([]ledger.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().QueryAudit(ctx, limit)
}

// =============================================================================
// VIEW - ledger.Store over one state, no locking
// =============================================================================

type view struct {
	state *state
}

func (v *view) GetUser(_ context.Context, account ledger.Account) (*ledger.User, error) {
	u, ok := v.state.users[account]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (v *view) PutUser(_ context.Context, u ledger.User) error {
	v.state.users[u.Account] = u
	return nil
}

func (v *view) GetRoom(_ context.Context, id ledger.RoomID) (*ledger.Room, error) {
	r, ok := v.state.rooms[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (v *view) PutRoom(_ context.Context, r ledger.Room) error {
	v.state.rooms[r.ID] = r
	return nil
}

func (v *view) DeleteRoom(_ context.Context, id ledger.RoomID) error {
	delete(v.state.rooms, id)
	return nil
}

func (v *view) ListRooms(_ context.Context) ([]ledger.Room, error) {
	rooms := make([]ledger.Room, 0, len(v.state.rooms))
	for _, r := range v.state.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (v *view) GetCounters(_ context.Context) (ledger.Counters, error) {
	return v.state.counters, nil
}

func (v *view) PutCounters(_ context.Context, c ledger.Counters) error {
	v.state.counters = c
	return nil
}

func (v *view) GetAppointment(_ context.Context, roomID ledger.RoomID) (*ledger.Appointment, error) {
	a, ok := v.state.appointments[roomID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (v *view) PutAppointment(_ context.Context, a ledger.Appointment) error {
	v.state.appointments[a.RoomID] = a
	return nil
}

func (v *view) DeleteAppointment(_ context.Context, roomID ledger.RoomID) error {
	delete(v.state.appointments, roomID)
	return nil
}

func (v *view) ActiveRentalByRenter(_ context.Context, renter ledger.Account) (*ledger.Rental, error) {
	for i := len(v.state.rentals) - 1; i >= 0; i-- {
		r := v.state.rentals[i]
		if r.Renter == renter && r.Active() {
			return &r, nil
		}
	}
	return nil, nil
}

func (v *view) ActiveRentalByRoom(_ context.Context, roomID ledger.RoomID) (*ledger.Rental, error) {
	for i := len(v.state.rentals) - 1; i >= 0; i-- {
		r := v.state.rentals[i]
		if r.RoomID == roomID && r.Active() {
			return &r, nil
		}
	}
	return nil, nil
}

func (v *view) LatestRentalByRoom(_ context.Context, roomID ledger.RoomID) (*ledger.Rental, error) {
	for i := len(v.state.rentals) - 1; i >= 0; i-- {
		r := v.state.rentals[i]
		if r.RoomID == roomID {
			return &r, nil
		}
	}
	return nil, nil
}

func (v *view) PutRental(_ context.Context, r ledger.Rental) error {
	for i := range v.state.rentals {
		if v.state.rentals[i].ID == r.ID {
			v.state.rentals[i] = r
			return nil
		}
	}
	v.state.rentals = append(v.state.rentals, r)
	return nil
}

func (v *view) GetBalance(_ context.Context, account ledger.Account) (ledger.Amount, error) {
	b, ok := v.state.balances[account]
	if !ok {
		return ledger.NewAmount(0), nil
	}
	return b, nil
}

func (v *view) PutBalance(_ context.Context, account ledger.Account, amount ledger.Amount) error {
	v.state.balances[account] = amount
	return nil
}

func (v *view) AppendAudit(_ context.Context, e ledger.AuditEntry) error {
	v.state.audit = append(v.state.audit, e)
	return nil
}

func (v *view) QueryAudit(_ context.Context, limit int) ([]ledger.AuditEntry, error) {
	n := len(v.state.audit)
	if limit <= 0 || limit > n {
		limit = n
	}
	// Newest first.
	result := make([]ledger.AuditEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, v.state.audit[i])
	}
	return result, nil
}
