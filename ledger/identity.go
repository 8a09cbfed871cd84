/*
identity.go - Identity ledger: sign-up, login, logout

INVARIANTS:
  - signUp succeeds at most once per account; records are never deleted
  - login succeeds iff the password matches the stored bcrypt hash
  - loggedIn is ledger state, not a session token; the client caches it at
    most as a convenience and always reconciles against reads
*/
package ledger

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// SignUp creates the identity record for account. Fails with ErrAlreadyExists
// if the account has signed up before.
func (l *Ledger) SignUp(ctx context.Context, account Account, username, password string) error {
	if account == "" {
		return &InvalidInputError{Field: "account", Reason: "must not be empty"}
	}
	if username == "" {
		return &InvalidInputError{Field: "username", Reason: "must not be empty"}
	}
	if password == "" {
		return &InvalidInputError{Field: "password", Reason: "must not be empty"}
	}

	// Hash outside the transaction; bcrypt is deliberately slow.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return l.apply(ctx, "signUp", account, func(s Store) error {
		existing, err := s.GetUser(ctx, account)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyExists
		}
		if err := s.PutUser(ctx, User{
			Account:      account,
			Username:     username,
			PasswordHash: hash,
			SignedUp:     true,
			LoggedIn:     false,
			CreatedAt:    l.now(),
		}); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: account, Action: AuditSignUp, Detail: username})
	})
}

// Login marks the account logged in. Fails with ErrNotSignedUp for unknown
// accounts and ErrWrongPassword on a hash mismatch.
func (l *Ledger) Login(ctx context.Context, account Account, password string) error {
	return l.apply(ctx, "login", account, func(s Store) error {
		u, err := s.GetUser(ctx, account)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrNotSignedUp
		}
		if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
			return ErrWrongPassword
		}
		u.LoggedIn = true
		if err := s.PutUser(ctx, *u); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: account, Action: AuditLogin})
	})
}

// Logout marks the account logged out. Fails with ErrNotLoggedIn when there
// is no logged-in record to clear.
func (l *Ledger) Logout(ctx context.Context, account Account) error {
	return l.apply(ctx, "logout", account, func(s Store) error {
		u, err := s.GetUser(ctx, account)
		if err != nil {
			return err
		}
		if u == nil || !u.LoggedIn {
			return ErrNotLoggedIn
		}
		u.LoggedIn = false
		if err := s.PutUser(ctx, *u); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: account, Action: AuditLogout})
	})
}

// =============================================================================
// READ QUERIES
// =============================================================================

// SignUpStatus reports whether the account has signed up.
func (l *Ledger) SignUpStatus(ctx context.Context, account Account) (bool, error) {
	u, err := l.store.GetUser(ctx, account)
	if err != nil {
		return false, err
	}
	return u != nil && u.SignedUp, nil
}

// LoginStatus reports whether the account is logged in.
func (l *Ledger) LoginStatus(ctx context.Context, account Account) (bool, error) {
	u, err := l.store.GetUser(ctx, account)
	if err != nil {
		return false, err
	}
	return u != nil && u.LoggedIn, nil
}

// GetUserStatus returns the composite identity view for an account.
// Unknown accounts yield the zero status, not an error.
func (l *Ledger) GetUserStatus(ctx context.Context, account Account) (UserStatus, error) {
	u, err := l.store.GetUser(ctx, account)
	if err != nil {
		return UserStatus{}, err
	}
	if u == nil {
		return UserStatus{}, nil
	}
	return UserStatus{SignedUp: u.SignedUp, LoggedIn: u.LoggedIn, Username: u.Username}, nil
}
