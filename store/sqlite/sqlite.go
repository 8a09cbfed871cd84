/*
Package sqlite provides the SQLite-backed implementation of ledger.TxStore.

PURPOSE:
  Durable store of record for the rental ledger. The same patterns apply to
  PostgreSQL; only minor SQL dialect differences.

KEY TABLES:
  users         identity records (bcrypt password hashes, login flag)
  rooms         live room listings; deleted rooms leave no row
  counters      single-row id allocator + live-room count
  appointments  at most one row per room
  rentals       full rental history; active rows have state rented/confirmed
  balances      per-account withdrawable amounts (base-10 integer strings)
  audit_log     append-only record of applied mutations

TRANSACTIONS:
  WithTx wraps a database transaction: every mutating ledger operation runs
  inside one, so an abort rolls back every write including the audit entry.
  A mutex serializes writers on top of SQLite's own locking, giving the
  at-most-one-writer-at-a-time ordering the ledger assumes.

WAL MODE:
  Opened with WAL so readers don't block behind the writer.

MONEY:
  Amounts are stored as base-10 integer strings (wei precision exceeds
  int64), parsed back through decimal.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openlease/roomrental/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store at dbPath. Use ":memory:" for an in-memory
// database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		account TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		password_hash BLOB NOT NULL,
		signed_up INTEGER NOT NULL,
		logged_in INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id INTEGER PRIMARY KEY,
		owner TEXT NOT NULL,
		location TEXT NOT NULL,
		intro TEXT NOT NULL,
		month_price TEXT NOT NULL,
		available INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rooms_owner ON rooms(owner);

	CREATE TABLE IF NOT EXISTS counters (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		total_rooms INTEGER NOT NULL,
		max_room_id INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO counters (id, total_rooms, max_room_id) VALUES (1, 0, 0);

	CREATE TABLE IF NOT EXISTS appointments (
		room_id INTEGER PRIMARY KEY,
		renter TEXT NOT NULL,
		rentee TEXT NOT NULL,
		valid INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rentals (
		id TEXT PRIMARY KEY,
		seq INTEGER UNIQUE,
		room_id INTEGER NOT NULL,
		renter TEXT NOT NULL,
		duration_months INTEGER NOT NULL,
		escrow TEXT NOT NULL,
		state TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rentals_renter_state ON rentals(renter, state);
	CREATE INDEX IF NOT EXISTS idx_rentals_room_state ON rentals(room_id, state);

	CREATE TABLE IF NOT EXISTS balances (
		account TEXT PRIMARY KEY,
		amount TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		room_id INTEGER NOT NULL,
		amount TEXT NOT NULL,
		detail TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every record method works
// inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{db: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore is the transaction-scoped view handed to WithTx functions.
type txStore struct {
	db *sql.Tx
}

// =============================================================================
// USERS
// =============================================================================

func getUser(ctx context.Context, db dbtx, account ledger.Account) (*ledger.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT account, username, password_hash, signed_up, logged_in, created_at
		 FROM users WHERE account = ?`, string(account))

	var u ledger.User
	var acct, createdAt string
	var signedUp, loggedIn int
	err := row.Scan(&acct, &u.Username, &u.PasswordHash, &signedUp, &loggedIn, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Account = ledger.Account(acct)
	u.SignedUp = signedUp != 0
	u.LoggedIn = loggedIn != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

func putUser(ctx context.Context, db dbtx, u ledger.User) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (account, username, password_hash, signed_up, logged_in, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(account) DO UPDATE SET
			username = excluded.username,
			password_hash = excluded.password_hash,
			signed_up = excluded.signed_up,
			logged_in = excluded.logged_in`,
		string(u.Account), u.Username, u.PasswordHash,
		boolToInt(u.SignedUp), boolToInt(u.LoggedIn),
		u.CreatedAt.Format(time.RFC3339Nano))
	return err
}

func (s *Store) GetUser(ctx context.Context, account ledger.Account) (*ledger.User, error) {
	return getUser(ctx, s.db, account)
}
func (s *Store) PutUser(ctx context.Context, u ledger.User) error { return putUser(ctx, s.db, u) }

func (t *txStore) GetUser(ctx context.Context, account ledger.Account) (*ledger.User, error) {
	return getUser(ctx, t.db, account)
}
func (t *txStore) PutUser(ctx context.Context, u ledger.User) error { return putUser(ctx, t.db, u) }

// =============================================================================
// ROOMS + COUNTERS
// =============================================================================

const roomColumns = `id, owner, location, intro, month_price, available, created_at`

func scanRoom(scan func(dest ...any) error) (*ledger.Room, error) {
	var r ledger.Room
	var price, createdAt string
	var available int
	err := scan(&r.ID, (*string)(&r.Owner), &r.Location, &r.Intro, &price, &available, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	amount, err := ledger.ParseAmount(price)
	if err != nil {
		return nil, fmt.Errorf("corrupt month_price for room %d: %w", r.ID, err)
	}
	r.MonthPrice = amount
	r.Available = available != 0
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &r, nil
}

func getRoom(ctx context.Context, db dbtx, id ledger.RoomID) (*ledger.Room, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, int64(id))
	return scanRoom(row.Scan)
}

func putRoom(ctx context.Context, db dbtx, r ledger.Room) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO rooms (`+roomColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			location = excluded.location,
			intro = excluded.intro,
			month_price = excluded.month_price,
			available = excluded.available`,
		int64(r.ID), string(r.Owner), r.Location, r.Intro,
		r.MonthPrice.String(), boolToInt(r.Available),
		r.CreatedAt.Format(time.RFC3339Nano))
	return err
}

func deleteRoom(ctx context.Context, db dbtx, id ledger.RoomID) error {
	_, err := db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, int64(id))
	return err
}

func listRooms(ctx context.Context, db dbtx) ([]ledger.Room, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []ledger.Room
	for rows.Next() {
		r, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

func getCounters(ctx context.Context, db dbtx) (ledger.Counters, error) {
	var c ledger.Counters
	err := db.QueryRowContext(ctx,
		`SELECT total_rooms, max_room_id FROM counters WHERE id = 1`).
		Scan(&c.TotalRooms, &c.MaxRoomID)
	return c, err
}

func putCounters(ctx context.Context, db dbtx, c ledger.Counters) error {
	_, err := db.ExecContext(ctx,
		`UPDATE counters SET total_rooms = ?, max_room_id = ? WHERE id = 1`,
		c.TotalRooms, int64(c.MaxRoomID))
	return err
}

func (s *Store) GetRoom(ctx context.Context, id ledger.RoomID) (*ledger.Room, error) {
	return getRoom(ctx, s.db, id)
}
func (s *Store) PutRoom(ctx context.Context, r ledger.Room) error { return putRoom(ctx, s.db, r) }
func (s *Store) DeleteRoom(ctx context.Context, id ledger.RoomID) error {
	return deleteRoom(ctx, s.db, id)
}
func (s *Store) ListRooms(ctx context.Context) ([]ledger.Room, error) { return listRooms(ctx, s.db) }
func (s *Store) GetCounters(ctx context.Context) (ledger.Counters, error) {
	return getCounters(ctx, s.db)
}
func (s *Store) PutCounters(ctx context.Context, c ledger.Counters) error {
	return putCounters(ctx, s.db, c)
}

func (t *txStore) GetRoom(ctx context.Context, id ledger.RoomID) (*ledger.Room, error) {
	return getRoom(ctx, t.db, id)
}
func (t *txStore) PutRoom(ctx context.Context, r ledger.Room) error { return putRoom(ctx, t.db, r) }
func (t *txStore) DeleteRoom(ctx context.Context, id ledger.RoomID) error {
	return deleteRoom(ctx, t.db, id)
}
func (t *txStore) ListRooms(ctx context.Context) ([]ledger.Room, error) { return listRooms(ctx, t.db) }
func (t *txStore) GetCounters(ctx context.Context) (ledger.Counters, error) {
	return getCounters(ctx, t.db)
}
func (t *txStore) PutCounters(ctx context.Context, c ledger.Counters) error {
	return putCounters(ctx, t.db, c)
}

// =============================================================================
// APPOINTMENTS
// =============================================================================

func getAppointment(ctx context.Context, db dbtx, roomID ledger.RoomID) (*ledger.Appointment, error) {
	row := db.QueryRowContext(ctx,
		`SELECT room_id, renter, rentee, valid, created_at
		 FROM appointments WHERE room_id = ?`, int64(roomID))

	var a ledger.Appointment
	var valid int
	var createdAt string
	err := row.Scan(&a.RoomID, (*string)(&a.Renter), (*string)(&a.Rentee), &valid, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Valid = valid != 0
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &a, nil
}

func putAppointment(ctx context.Context, db dbtx, a ledger.Appointment) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO appointments (room_id, renter, rentee, valid, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(room_id) DO UPDATE SET
			renter = excluded.renter,
			rentee = excluded.rentee,
			valid = excluded.valid,
			created_at = excluded.created_at`,
		int64(a.RoomID), string(a.Renter), string(a.Rentee),
		boolToInt(a.Valid), a.CreatedAt.Format(time.RFC3339Nano))
	return err
}

func deleteAppointment(ctx context.Context, db dbtx, roomID ledger.RoomID) error {
	_, err := db.ExecContext(ctx, `DELETE FROM appointments WHERE room_id = ?`, int64(roomID))
	return err
}

func (s *Store) GetAppointment(ctx context.Context, roomID ledger.RoomID) (*ledger.Appointment, error) {
	return getAppointment(ctx, s.db, roomID)
}
func (s *Store) PutAppointment(ctx context.Context, a ledger.Appointment) error {
	return putAppointment(ctx, s.db, a)
}
func (s *Store) DeleteAppointment(ctx context.Context, roomID ledger.RoomID) error {
	return deleteAppointment(ctx, s.db, roomID)
}

func (t *txStore) GetAppointment(ctx context.Context, roomID ledger.RoomID) (*ledger.Appointment, error) {
	return getAppointment(ctx, t.db, roomID)
}
func (t *txStore) PutAppointment(ctx context.Context, a ledger.Appointment) error {
	return putAppointment(ctx, t.db, a)
}
func (t *txStore) DeleteAppointment(ctx context.Context, roomID ledger.RoomID) error {
	return deleteAppointment(ctx, t.db, roomID)
}

// =============================================================================
// RENTALS
// =============================================================================

const rentalColumns = `id, room_id, renter, duration_months, escrow, state, created_at`

func scanRental(scan func(dest ...any) error) (*ledger.Rental, error) {
	var r ledger.Rental
	var escrow, state, createdAt string
	err := scan(&r.ID, &r.RoomID, (*string)(&r.Renter), &r.DurationMonths, &escrow, &state, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	amount, err := ledger.ParseAmount(escrow)
	if err != nil {
		return nil, fmt.Errorf("corrupt escrow for rental %s: %w", r.ID, err)
	}
	r.Escrow = amount
	r.State = ledger.RentalState(state)
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &r, nil
}

func activeRentalByRenter(ctx context.Context, db dbtx, renter ledger.Account) (*ledger.Rental, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals
		 WHERE renter = ? AND state IN (?, ?)
		 ORDER BY seq DESC LIMIT 1`,
		string(renter), string(ledger.StateRented), string(ledger.StateConfirmed))
	return scanRental(row.Scan)
}

func activeRentalByRoom(ctx context.Context, db dbtx, roomID ledger.RoomID) (*ledger.Rental, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals
		 WHERE room_id = ? AND state IN (?, ?)
		 ORDER BY seq DESC LIMIT 1`,
		int64(roomID), string(ledger.StateRented), string(ledger.StateConfirmed))
	return scanRental(row.Scan)
}

func latestRentalByRoom(ctx context.Context, db dbtx, roomID ledger.RoomID) (*ledger.Rental, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals
		 WHERE room_id = ? ORDER BY seq DESC LIMIT 1`, int64(roomID))
	return scanRental(row.Scan)
}

func putRental(ctx context.Context, db dbtx, r ledger.Rental) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO rentals (id, seq, room_id, renter, duration_months, escrow, state, created_at)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM rentals), ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state`,
		r.ID, int64(r.RoomID), string(r.Renter), r.DurationMonths,
		r.Escrow.String(), string(r.State), r.CreatedAt.Format(time.RFC3339Nano))
	return err
}

func (s *Store) ActiveRentalByRenter(ctx context.Context, renter ledger.Account) (*ledger.Rental, error) {
	return activeRentalByRenter(ctx, s.db, renter)
}
func (s *Store) ActiveRentalByRoom(ctx context.Context, roomID ledger.RoomID) (*ledger.Rental, error) {
	return activeRentalByRoom(ctx, s.db, roomID)
}
func (s *Store) LatestRentalByRoom(ctx context.Context, roomID ledger.RoomID) (*ledger.Rental, error) {
	return latestRentalByRoom(ctx, s.db, roomID)
}
func (s *Store) PutRental(ctx context.Context, r ledger.Rental) error {
	return putRental(ctx, s.db, r)
}

func (t *txStore) ActiveRentalByRenter(ctx context.Context, renter ledger.Account) (*ledger.Rental, error) {
	return activeRentalByRenter(ctx, t.db, renter)
}
func (t *txStore) ActiveRentalByRoom(ctx context.Context, roomID ledger.RoomID) (*ledger.Rental, error) {
	return activeRentalByRoom(ctx, t.db, roomID)
}
func (t *txStore) LatestRentalByRoom(ctx context.Context, roomID ledger.RoomID) (*ledger.Rental, error) {
	return latestRentalByRoom(ctx, t.db, roomID)
}
func (t *txStore) PutRental(ctx context.Context, r ledger.Rental) error {
	return putRental(ctx, t.db, r)
}

// =============================================================================
// BALANCES
// =============================================================================

func getBalance(ctx context.Context, db dbtx, account ledger.Account) (ledger.Amount, error) {
	var amount string
	err := db.QueryRowContext(ctx,
		`SELECT amount FROM balances WHERE account = ?`, string(account)).Scan(&amount)
	if err == sql.ErrNoRows {
		return ledger.NewAmount(0), nil
	}
	if err != nil {
		return ledger.Amount{}, err
	}
	parsed, err := ledger.ParseAmount(amount)
	if err != nil {
		return ledger.Amount{}, fmt.Errorf("corrupt balance for %s: %w", account, err)
	}
	return parsed, nil
}

func putBalance(ctx context.Context, db dbtx, account ledger.Account, amount ledger.Amount) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO balances (account, amount) VALUES (?, ?)
		 ON CONFLICT(account) DO UPDATE SET amount = excluded.amount`,
		string(account), amount.String())
	return err
}

func (s *Store) GetBalance(ctx context.Context, account ledger.Account) (ledger.Amount, error) {
	return getBalance(ctx, s.db, account)
}
func (s *Store) PutBalance(ctx context.Context, account ledger.Account, amount ledger.Amount) error {
	return putBalance(ctx, s.db, account, amount)
}

func (t *txStore) GetBalance(ctx context.Context, account ledger.Account) (ledger.Amount, error) {
	return getBalance(ctx, t.db, account)
}
func (t *txStore) PutBalance(ctx context.Context, account ledger.Account, amount ledger.Amount) error {
	return putBalance(ctx, t.db, account, amount)
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func appendAudit(ctx context.Context, db dbtx, e ledger.AuditEntry) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_log (id, at, actor, action, room_id, amount, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.Format(time.RFC3339Nano), string(e.Actor), string(e.Action),
		int64(e.RoomID), e.Amount.String(), e.Detail)
	return err
}

func queryAudit(ctx context.Context, db dbtx, limit int) ([]ledger.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, at, actor, action, room_id, amount, detail
		 FROM audit_log ORDER BY at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ledger.AuditEntry
	for rows.Next() {
		var e ledger.AuditEntry
		var at, amount string
		if err := rows.Scan(&e.ID, &at, (*string)(&e.Actor), (*string)(&e.Action),
			&e.RoomID, &amount, &e.Detail); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		if e.Amount, err = ledger.ParseAmount(amount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AppendAudit(ctx context.Context, e ledger.AuditEntry) error {
	return appendAudit(ctx, s.db, e)
}
func (s *Store) QueryAudit(ctx context.Context, limit int) ([]ledger.AuditEntry, error) {
	return queryAudit(ctx, s.db, limit)
}

func (t *txStore) AppendAudit(ctx context.Context, e ledger.AuditEntry) error {
	return appendAudit(ctx, t.db, e)
}
func (t *txStore) QueryAudit(ctx context.Context, limit int) ([]ledger.AuditEntry, error) {
	return queryAudit(ctx, t.db, limit)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
