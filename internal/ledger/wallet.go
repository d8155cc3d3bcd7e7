// Package ledger is the ledger consistency engine: it applies personal transactions to
// wallet balances, classifies group transactions into accounting buckets and derives
// group settlement summaries from the group transaction log.
//
// Everything here works on in-memory entities. Persisting the result inside one unit
// of work is the caller's job.
package ledger

import (
	"fmt"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/money"

	"github.com/shopspring/decimal"
)

// WalletLedger keeps a wallet's balance equal to its initial balance plus the net
// signed effect of every transaction attributed to it.
type WalletLedger struct {
	allowNegative bool // Debt modelling: let balances go below zero
}

// NewWalletLedger returns a ledger. With allowNegative false every mutation that would
// leave a wallet below zero fails with apperr.ErrInsufficientBalance.
func NewWalletLedger(allowNegative bool) *WalletLedger {
	return &WalletLedger{allowNegative: allowNegative}
}

// Apply records the effect of a transaction: INCOME increases, EXPENSE decreases.
func (l *WalletLedger) Apply(w *domain.Wallet, amount decimal.Decimal, t domain.TransactionType) error {
	delta, err := effect(amount, t)
	if err != nil {
		return err
	}
	return l.commit(w, money.Add(w.Balance, delta))
}

// Reverse undoes Apply for the same amount and type. Deleting a transaction is a Reverse.
func (l *WalletLedger) Reverse(w *domain.Wallet, amount decimal.Decimal, t domain.TransactionType) error {
	delta, err := effect(amount, t)
	if err != nil {
		return err
	}
	return l.commit(w, money.Sub(w.Balance, delta))
}

// ReconcileEdit moves the effect of an edited transaction from (oldWallet, oldAmount,
// oldType) to (newWallet, newAmount, newType). It returns the wallets whose balance
// changed; an unchanged edit returns none so the caller can skip the write entirely.
//
// The floor check runs on the final balances only. On failure no wallet is modified.
func (l *WalletLedger) ReconcileEdit(
	oldWallet, newWallet *domain.Wallet,
	oldAmount, newAmount decimal.Decimal,
	oldType, newType domain.TransactionType,
) ([]*domain.Wallet, error) {
	sameWallet := oldWallet.ID == newWallet.ID

	if sameWallet && money.Equal(oldAmount, newAmount) && oldType == newType {
		return nil, nil
	}

	if sameWallet {
		before := oldWallet.Balance
		if oldType == newType {
			if err := applyDiff(oldWallet, oldAmount, newAmount, oldType); err != nil {
				return nil, err
			}
		} else if err := swap(oldWallet, oldWallet, oldAmount, newAmount, oldType, newType); err != nil {
			return nil, err
		}
		if err := l.checkFloor(oldWallet); err != nil {
			oldWallet.Balance = before
			return nil, err
		}
		return []*domain.Wallet{oldWallet}, nil
	}

	oldBefore, newBefore := oldWallet.Balance, newWallet.Balance
	if err := swap(oldWallet, newWallet, oldAmount, newAmount, oldType, newType); err != nil {
		return nil, err
	}
	for _, w := range []*domain.Wallet{oldWallet, newWallet} {
		if err := l.checkFloor(w); err != nil {
			oldWallet.Balance, newWallet.Balance = oldBefore, newBefore
			return nil, err
		}
	}
	return []*domain.Wallet{oldWallet, newWallet}, nil
}

// applyDiff is the same-wallet, same-type shortcut for reverse-then-apply.
func applyDiff(w *domain.Wallet, oldAmount, newAmount decimal.Decimal, t domain.TransactionType) error {
	var diff decimal.Decimal
	switch t {
	case domain.TransactionExpense:
		diff = money.Sub(oldAmount, newAmount)
	case domain.TransactionIncome:
		diff = money.Sub(newAmount, oldAmount)
	default:
		return unsupported(t)
	}
	switch {
	case diff.IsPositive():
		w.Balance = money.Add(w.Balance, diff)
	case diff.IsNegative():
		w.Balance = money.Sub(w.Balance, diff.Abs())
	}
	return nil
}

// swap reverses the old effect on from and applies the new one on to, validating both
// types before touching either wallet.
func swap(from, to *domain.Wallet, oldAmount, newAmount decimal.Decimal, oldType, newType domain.TransactionType) error {
	oldDelta, err := effect(oldAmount, oldType)
	if err != nil {
		return err
	}
	newDelta, err := effect(newAmount, newType)
	if err != nil {
		return err
	}
	from.Balance = money.Sub(from.Balance, oldDelta)
	to.Balance = money.Add(to.Balance, newDelta)
	return nil
}

func (l *WalletLedger) commit(w *domain.Wallet, next decimal.Decimal) error {
	if !l.allowNegative && money.IsNegative(next) {
		return insufficient(w, next)
	}
	w.Balance = next
	return nil
}

func (l *WalletLedger) checkFloor(w *domain.Wallet) error {
	if !l.allowNegative && money.IsNegative(w.Balance) {
		return insufficient(w, w.Balance)
	}
	return nil
}

// effect is the signed change a transaction makes to its wallet.
func effect(amount decimal.Decimal, t domain.TransactionType) (decimal.Decimal, error) {
	switch t {
	case domain.TransactionIncome:
		return amount, nil
	case domain.TransactionExpense:
		return amount.Neg(), nil
	}
	return decimal.Zero, unsupported(t)
}

// Effect exposes the signed change of a transaction for read models.
func Effect(amount decimal.Decimal, t domain.TransactionType) (decimal.Decimal, error) {
	return effect(amount, t)
}

func unsupported(t any) error {
	return apperr.Wrap(apperr.ErrUnsupportedType, fmt.Errorf("type %q", t))
}

func insufficient(w *domain.Wallet, next decimal.Decimal) error {
	return apperr.Wrap(apperr.ErrInsufficientBalance,
		fmt.Errorf("wallet %d would end at %s", w.ID, money.String(next)))
}
