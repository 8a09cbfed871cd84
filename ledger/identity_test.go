package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlease/roomrental/ledger"
	"github.com/openlease/roomrental/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	rentee  = ledger.Account("0xrentee") // distinct addresses; content is opaque
	renter1 = ledger.Account("0xrenter1")
	renter2 = ledger.Account("0xrenter2")
)

func newTestLedger(t *testing.T, opts ...ledger.Option) *ledger.Ledger {
	t.Helper()
	opts = append([]ledger.Option{
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return ledger.New(store.NewMemory(), opts...)
}

func signUpAndLogin(t *testing.T, l *ledger.Ledger, account ledger.Account, username, password string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, l.SignUp(ctx, account, username, password))
	require.NoError(t, l.Login(ctx, account, password))
}

// =============================================================================
// SIGN-UP
// =============================================================================

func TestSignUp_OnlyOnce(t *testing.T) {
	// GIVEN: a fresh account
	// WHEN: signing up twice
	// THEN: the first succeeds, the second aborts with ErrAlreadyExists

	l := newTestLedger(t)
	ctx := context.Background()

	signedUp, err := l.SignUpStatus(ctx, rentee)
	require.NoError(t, err)
	assert.False(t, signedUp)

	require.NoError(t, l.SignUp(ctx, rentee, "alex", "12345"))

	signedUp, err = l.SignUpStatus(ctx, rentee)
	require.NoError(t, err)
	assert.True(t, signedUp)

	err = l.SignUp(ctx, rentee, "tim", "344565")
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)

	// The failed sign-up must not overwrite the original record.
	status, err := l.GetUserStatus(ctx, rentee)
	require.NoError(t, err)
	assert.Equal(t, "alex", status.Username)
}

func TestSignUp_RejectsEmptyFields(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	assert.ErrorIs(t, l.SignUp(ctx, rentee, "", "12345"), ledger.ErrInvalidInput)
	assert.ErrorIs(t, l.SignUp(ctx, rentee, "alex", ""), ledger.ErrInvalidInput)
	assert.ErrorIs(t, l.SignUp(ctx, "", "alex", "12345"), ledger.ErrInvalidInput)
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

func TestLogin_RequiresCorrectPassword(t *testing.T) {
	// GIVEN: alex signed up with password "12345"
	// WHEN: logging in with "2345" and then "12345"
	// THEN: the wrong password aborts and leaves loggedIn false; the right
	//       one sets it true

	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.SignUp(ctx, rentee, "alex", "12345"))

	err := l.Login(ctx, rentee, "2345")
	assert.ErrorIs(t, err, ledger.ErrWrongPassword)

	loggedIn, err := l.LoginStatus(ctx, rentee)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	require.NoError(t, l.Login(ctx, rentee, "12345"))

	loggedIn, err = l.LoginStatus(ctx, rentee)
	require.NoError(t, err)
	assert.True(t, loggedIn)
}

func TestLogin_UnknownAccount(t *testing.T) {
	l := newTestLedger(t)
	err := l.Login(context.Background(), rentee, "12345")
	assert.ErrorIs(t, err, ledger.ErrNotSignedUp)
}

func TestLogout(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	signUpAndLogin(t, l, rentee, "alex", "12345")

	require.NoError(t, l.Logout(ctx, rentee))

	loggedIn, err := l.LoginStatus(ctx, rentee)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	// Logging out again has nothing to clear.
	assert.ErrorIs(t, l.Logout(ctx, rentee), ledger.ErrNotLoggedIn)
}

// =============================================================================
// STATUS QUERIES
// =============================================================================

func TestGetUserStatus(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	// Unknown accounts read as the zero status, not an error.
	status, err := l.GetUserStatus(ctx, renter1)
	require.NoError(t, err)
	assert.Equal(t, ledger.UserStatus{}, status)

	signUpAndLogin(t, l, renter1, "tim", "6789")

	status, err = l.GetUserStatus(ctx, renter1)
	require.NoError(t, err)
	assert.Equal(t, ledger.UserStatus{SignedUp: true, LoggedIn: true, Username: "tim"}, status)
}
