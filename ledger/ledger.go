/*
ledger.go - The Ledger aggregate and its transaction boundary

PURPOSE:
  Ledger is the single entry point for every operation. Each mutating
  operation opens one store transaction, validates, writes, and appends an
  audit entry; any failure aborts the whole transaction with no side effects.
  Read queries go straight to the store and observe the latest committed
  state.

EXECUTION MODEL:
  Strictly sequential. The store serializes transactions (single writer);
  the ledger itself never interleaves partial state. Ordering between callers
  is whatever order their transactions reach the store in.

POLICY:
  Whether mutations require a logged-in account is a configurable policy,
  not a hard rule: the source system enforced it in some revisions and
  dropped it in later ones. Default is off.

SEE ALSO:
  - identity.go, rooms.go, appointments.go, rentals.go, balance.go:
    the operations themselves
  - store.go: the persistence contract
*/
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Policy holds configurable ledger behavior.
type Policy struct {
	// RequireLogin gates every mutating operation except signUp/login/logout
	// behind a logged-in identity record.
	RequireLogin bool
}

// Ledger applies operations against a shared store, one atomic transaction
// at a time.
type Ledger struct {
	store   TxStore
	policy  Policy
	logger  *slog.Logger
	observe func(op string, err error)
	now     func() time.Time
}

type Option func(*Ledger)

// WithPolicy sets the ledger policy.
func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithObserver registers a callback invoked after every operation with its
// name and outcome. Used to wire metrics without coupling the ledger to a
// metrics registry.
func WithObserver(fn func(op string, err error)) Option {
	return func(l *Ledger) { l.observe = fn }
}

// WithClock overrides the time source. Tests use this for deterministic
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store TxStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// apply runs one mutating operation as a single all-or-nothing transaction,
// then logs and observes the outcome.
func (l *Ledger) apply(ctx context.Context, op string, actor Account, fn func(Store) error) error {
	err := l.store.WithTx(ctx, fn)
	if err != nil {
		l.logger.Warn("transaction aborted", "op", op, "account", string(actor), "reason", err)
	} else {
		l.logger.Info("transaction applied", "op", op, "account", string(actor))
	}
	if l.observe != nil {
		l.observe(op, err)
	}
	return err
}

// requireLogin enforces the login policy inside a transaction.
// No-op when the policy is off.
func (l *Ledger) requireLogin(ctx context.Context, s Store, account Account) error {
	if !l.policy.RequireLogin {
		return nil
	}
	u, err := s.GetUser(ctx, account)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotSignedUp
	}
	if !u.LoggedIn {
		return ErrNotLoggedIn
	}
	return nil
}

// audit appends an audit entry inside the same transaction as the mutation
// it records.
func (l *Ledger) audit(ctx context.Context, s Store, e AuditEntry) error {
	e.ID = uuid.NewString()
	e.At = l.now()
	return s.AppendAudit(ctx, e)
}

// AuditTrail returns the most recent applied mutations, newest first.
func (l *Ledger) AuditTrail(ctx context.Context, limit int) ([]AuditEntry, error) {
	return l.store.QueryAudit(ctx, limit)
}
