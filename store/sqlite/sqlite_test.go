package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlease/roomrental/ledger"
	"github.com/openlease/roomrental/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// =============================================================================
// RECORD ROUND-TRIPS
// =============================================================================

func TestUserRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	missing, err := st.GetUser(ctx, "0xnobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	u := ledger.User{
		Account:      "0xalex",
		Username:     "alex",
		PasswordHash: []byte("$2a$10$fakehash"),
		SignedUp:     true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.PutUser(ctx, u))

	got, err := st.GetUser(ctx, "0xalex")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, got.SignedUp)
	assert.False(t, got.LoggedIn)

	// Upsert flips the login flag in place.
	got.LoggedIn = true
	require.NoError(t, st.PutUser(ctx, *got))
	again, err := st.GetUser(ctx, "0xalex")
	require.NoError(t, err)
	assert.True(t, again.LoggedIn)
}

func TestRoomRoundTripAndCounters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c, err := st.GetCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.Counters{}, c)

	price, err := ledger.ParseAmount("1000000000000000000")
	require.NoError(t, err)
	room := ledger.Room{
		ID: 1, Owner: "0xalex", Location: "Downtown", Intro: "Nice view",
		MonthPrice: price, Available: true, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.PutRoom(ctx, room))
	require.NoError(t, st.PutCounters(ctx, ledger.Counters{TotalRooms: 1, MaxRoomID: 1}))

	got, err := st.GetRoom(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Downtown", got.Location)
	assert.True(t, got.MonthPrice.Equal(price), "wei precision must survive storage")

	rooms, err := st.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	require.NoError(t, st.DeleteRoom(ctx, 1))
	gone, err := st.GetRoom(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRentalQueries(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	escrow := ledger.NewAmount(100)
	first := ledger.Rental{
		ID: "r-1", RoomID: 1, Renter: "0xtim", DurationMonths: 10,
		Escrow: escrow, State: ledger.StateRented, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.PutRental(ctx, first))

	active, err := st.ActiveRentalByRenter(ctx, "0xtim")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "r-1", active.ID)

	byRoom, err := st.ActiveRentalByRoom(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, byRoom)

	// Ending the rental removes it from active queries but not history.
	first.State = ledger.StateEnded
	require.NoError(t, st.PutRental(ctx, first))

	active, err = st.ActiveRentalByRenter(ctx, "0xtim")
	require.NoError(t, err)
	assert.Nil(t, active)

	latest, err := st.LatestRentalByRoom(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, ledger.StateEnded, latest.State)

	// A newer rental on the same room becomes the latest.
	second := ledger.Rental{
		ID: "r-2", RoomID: 1, Renter: "0xtim", DurationMonths: 1,
		Escrow: escrow, State: ledger.StateRented, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.PutRental(ctx, second))

	latest, err = st.LatestRentalByRoom(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "r-2", latest.ID)
}

func TestBalanceRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	b, err := st.GetBalance(ctx, "0xalex")
	require.NoError(t, err)
	assert.True(t, b.IsZero(), "missing balance reads as zero")

	ten, err := ledger.ParseAmount("10000000000000000000")
	require.NoError(t, err)
	require.NoError(t, st.PutBalance(ctx, "0xalex", ten))

	b, err = st.GetBalance(ctx, "0xalex")
	require.NoError(t, err)
	assert.True(t, b.Equal(ten))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: a transaction that writes a user, a balance, and an audit entry
	// WHEN: the function returns an error
	// THEN: none of the writes are visible afterwards

	st := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(s ledger.Store) error {
		if err := s.PutUser(ctx, ledger.User{Account: "0xalex", Username: "alex", PasswordHash: []byte("h"), SignedUp: true, CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := s.PutBalance(ctx, "0xalex", ledger.NewAmount(42)); err != nil {
			return err
		}
		if err := s.AppendAudit(ctx, ledger.AuditEntry{ID: "a-1", At: time.Now(), Actor: "0xalex", Action: ledger.AuditSignUp}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	u, err := st.GetUser(ctx, "0xalex")
	require.NoError(t, err)
	assert.Nil(t, u)

	b, err := st.GetBalance(ctx, "0xalex")
	require.NoError(t, err)
	assert.True(t, b.IsZero())

	entries, err := st.QueryAudit(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithTx_CommitsOnNil(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(s ledger.Store) error {
		return s.PutBalance(ctx, "0xalex", ledger.NewAmount(7))
	})
	require.NoError(t, err)

	b, err := st.GetBalance(ctx, "0xalex")
	require.NoError(t, err)
	assert.True(t, b.Equal(ledger.NewAmount(7)))
}
