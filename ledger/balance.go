/*
balance.go - Balance ledger: withdrawable per-account funds

Balances are credited by MoveIn (to the owner) and RefundRoom (back to the
renter), and drained in full by WithdrawDeposit. The external transfer of a
withdrawal is the wallet collaborator's concern; the ledger records the
payout and zeroes the entry.
*/
package ledger

import (
	"context"
)

// GetUserBalance returns the account's withdrawable balance.
func (l *Ledger) GetUserBalance(ctx context.Context, account Account) (Amount, error) {
	return l.store.GetBalance(ctx, account)
}

// WithdrawDeposit pays out the account's entire withdrawable balance and
// zeroes the ledger entry. Returns the amount paid out. Fails with
// ErrInsufficientFunds when there is nothing to withdraw.
func (l *Ledger) WithdrawDeposit(ctx context.Context, account Account) (Amount, error) {
	var paid Amount
	err := l.apply(ctx, "withdrawDeposit", account, func(s Store) error {
		balance, err := s.GetBalance(ctx, account)
		if err != nil {
			return err
		}
		if !balance.IsPositive() {
			return ErrInsufficientFunds
		}
		paid = balance
		if err := s.PutBalance(ctx, account, NewAmount(0)); err != nil {
			return err
		}
		return l.audit(ctx, s, AuditEntry{Actor: account, Action: AuditWithdrawal, Amount: paid})
	})
	if err != nil {
		return Amount{}, err
	}
	return paid, nil
}
