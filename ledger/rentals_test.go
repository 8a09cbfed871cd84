package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlease/roomrental/ledger"
)

// =============================================================================
// RENT ROOM
// =============================================================================

func TestRentRoom_ExactPaymentRequired(t *testing.T) {
	// GIVEN: a room at 1 ether per month
	// WHEN: tim rents for 10 months paying 9, 11, and 10 ether
	// THEN: under- and overpayment abort with ErrIncorrectPayment and leave
	//       the room available; the exact payment succeeds

	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	id := addDowntownRoom(t, l, rentee)

	for _, payment := range []ledger.Amount{ether(9), ether(11)} {
		err := l.RentRoom(ctx, renter1, id, 10, payment)
		assert.ErrorIs(t, err, ledger.ErrIncorrectPayment)

		var payErr *ledger.IncorrectPaymentError
		require.ErrorAs(t, err, &payErr)
		assert.True(t, payErr.Expected.Equal(ether(10)))
		assert.True(t, payErr.Got.Equal(payment))

		available, err := l.IsRoomAvailable(ctx, id)
		require.NoError(t, err)
		assert.True(t, available, "aborted rent must not change availability")
	}

	require.NoError(t, l.RentRoom(ctx, renter1, id, 10, ether(10)))

	available, err := l.IsRoomAvailable(ctx, id)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestRentRoom_UnavailableRoom(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	signUpAndLogin(t, l, renter2, "brandon", "13579")
	id := addDowntownRoom(t, l, rentee)

	// Unknown room and rented room both read as unavailable.
	assert.ErrorIs(t, l.RentRoom(ctx, renter1, 99, 1, ether(1)), ledger.ErrRoomUnavailable)

	require.NoError(t, l.RentRoom(ctx, renter1, id, 10, ether(10)))
	assert.ErrorIs(t, l.RentRoom(ctx, renter2, id, 1, ether(1)), ledger.ErrRoomUnavailable)
}

func TestRentRoom_OneActiveRentalPerRenter(t *testing.T) {
	// GIVEN: tim already rents room 1
	// WHEN: tim tries to rent room 2
	// THEN: the call aborts with ErrDuplicateRental

	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	first := addDowntownRoom(t, l, rentee)
	second, err := l.AddRoom(ctx, rentee, "Uptown", "Quiet street", ether(2))
	require.NoError(t, err)

	require.NoError(t, l.RentRoom(ctx, renter1, first, 10, ether(10)))
	assert.ErrorIs(t, l.RentRoom(ctx, renter1, second, 1, ether(2)), ledger.ErrDuplicateRental)

	// Room 2 is untouched by the aborted call.
	available, err := l.IsRoomAvailable(ctx, second)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestRentRoom_RejectsNonPositiveDuration(t *testing.T) {
	l := newTestLedger(t)
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	id := addDowntownRoom(t, l, rentee)

	err := l.RentRoom(context.Background(), renter1, id, 0, ether(0))
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

// =============================================================================
// MOVE IN
// =============================================================================

func TestMoveIn_ConfirmsAndCreditsOwnerOnce(t *testing.T) {
	// GIVEN: tim rented room 1 for 10 months at 1 ether
	// WHEN: tim moves in, twice
	// THEN: the first call confirms and credits alex exactly 10 ether; the
	//       second aborts with ErrAlreadyConfirmed and does not double-credit

	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	id := addDowntownRoom(t, l, rentee)

	require.NoError(t, l.RentRoom(ctx, renter1, id, 10, ether(10)))

	// Escrow is not yet the owner's.
	balance, err := l.GetUserBalance(ctx, rentee)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	confirmed, err := l.IsRentalRoomConfirmed(ctx, id)
	require.NoError(t, err)
	assert.False(t, confirmed)

	require.NoError(t, l.MoveIn(ctx, renter1))

	confirmed, err = l.IsRentalRoomConfirmed(ctx, id)
	require.NoError(t, err)
	assert.True(t, confirmed)

	balance, err = l.GetUserBalance(ctx, rentee)
	require.NoError(t, err)
	assert.True(t, balance.Equal(ether(10)), "owner balance %s != 10 ether", balance)

	assert.ErrorIs(t, l.MoveIn(ctx, renter1), ledger.ErrAlreadyConfirmed)

	balance, err = l.GetUserBalance(ctx, rentee)
	require.NoError(t, err)
	assert.True(t, balance.Equal(ether(10)), "second move-in must not double-credit")
}

func TestMoveIn_NoRental(t *testing.T) {
	l := newTestLedger(t)
	signUpAndLogin(t, l, renter1, "tim", "6789")
	assert.ErrorIs(t, l.MoveIn(context.Background(), renter1), ledger.ErrNoRental)
}

// =============================================================================
// MOVE OUT
// =============================================================================

func TestMoveOut_EndsRentalAndFreesRoom(t *testing.T) {
	// GIVEN: tim's confirmed rental of room 1
	// WHEN: tim moves out
	// THEN: the rental is history, the room is available, and tim can rent
	//       again

	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	id := addDowntownRoom(t, l, rentee)

	require.NoError(t, l.RentRoom(ctx, renter1, id, 10, ether(10)))
	require.NoError(t, l.MoveIn(ctx, renter1))
	require.NoError(t, l.MoveOut(ctx, renter1))

	ended, err := l.IsRentalRoomEnded(ctx, id)
	require.NoError(t, err)
	assert.True(t, ended)

	available, err := l.IsRoomAvailable(ctx, id)
	require.NoError(t, err)
	assert.True(t, available)

	rental, err := l.GetRenterRentalInfo(ctx, renter1)
	require.NoError(t, err)
	assert.Nil(t, rental, "ended rental is not active")

	// The renter is free to rent the same room again.
	require.NoError(t, l.RentRoom(ctx, renter1, id, 1, ether(1)))
}

func TestMoveOut_RequiresConfirmation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	id := addDowntownRoom(t, l, rentee)

	assert.ErrorIs(t, l.MoveOut(ctx, renter1), ledger.ErrNoRental)

	require.NoError(t, l.RentRoom(ctx, renter1, id, 10, ether(10)))
	assert.ErrorIs(t, l.MoveOut(ctx, renter1), ledger.ErrNotConfirmed)
}

// =============================================================================
// REFUND
// =============================================================================

func TestRefundRoom_BeforeConfirmation(t *testing.T) {
	// GIVEN: tim rented room 1 but has not moved in
	// WHEN: tim refunds
	// THEN: the escrow lands in tim's balance, the room is available again,
	//       and the owner was never credited

	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	id := addDowntownRoom(t, l, rentee)

	require.NoError(t, l.RentRoom(ctx, renter1, id, 10, ether(10)))
	require.NoError(t, l.RefundRoom(ctx, renter1))

	balance, err := l.GetUserBalance(ctx, renter1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(ether(10)))

	ownerBalance, err := l.GetUserBalance(ctx, rentee)
	require.NoError(t, err)
	assert.True(t, ownerBalance.IsZero())

	available, err := l.IsRoomAvailable(ctx, id)
	require.NoError(t, err)
	assert.True(t, available)

	rental, err := l.GetRenterRentalInfo(ctx, renter1)
	require.NoError(t, err)
	assert.Nil(t, rental)
}

func TestRefundRoom_AfterConfirmationAlwaysFails(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	id := addDowntownRoom(t, l, rentee)

	require.NoError(t, l.RentRoom(ctx, renter1, id, 10, ether(10)))
	require.NoError(t, l.MoveIn(ctx, renter1))

	assert.ErrorIs(t, l.RefundRoom(ctx, renter1), ledger.ErrAlreadyConfirmed)

	// The owner keeps the credit; the renter got nothing back.
	balance, err := l.GetUserBalance(ctx, renter1)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestRefundRoom_NoRental(t *testing.T) {
	l := newTestLedger(t)
	signUpAndLogin(t, l, renter1, "tim", "6789")
	assert.ErrorIs(t, l.RefundRoom(context.Background(), renter1), ledger.ErrNoRental)
}

// =============================================================================
// WITHDRAW
// =============================================================================

func TestWithdrawDeposit_DrainsBalance(t *testing.T) {
	// GIVEN: alex holds 10 ether of released rent
	// WHEN: alex withdraws
	// THEN: the payout is 10 ether, the balance is zero, and a second
	//       withdrawal aborts with ErrInsufficientFunds

	l := newTestLedger(t)
	ctx := context.Background()
	signUpAndLogin(t, l, rentee, "alex", "12345")
	signUpAndLogin(t, l, renter1, "tim", "6789")
	id := addDowntownRoom(t, l, rentee)
	require.NoError(t, l.RentRoom(ctx, renter1, id, 10, ether(10)))
	require.NoError(t, l.MoveIn(ctx, renter1))

	paid, err := l.WithdrawDeposit(ctx, rentee)
	require.NoError(t, err)
	assert.True(t, paid.Equal(ether(10)))

	balance, err := l.GetUserBalance(ctx, rentee)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	_, err = l.WithdrawDeposit(ctx, rentee)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
}
