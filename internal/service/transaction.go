package service

import (
	"context"
	"strings"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/guard"
	"finance_tracker/internal/money"
	"finance_tracker/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// WalletInput creates a wallet
type WalletInput struct {
	Name     string
	Currency string
	Balance  decimal.Decimal // Opening balance, zero or more
}

// TransactionInput is the full state of a personal transaction after create or edit
type TransactionInput struct {
	WalletID   uint
	CategoryID uint
	Type       domain.TransactionType
	Amount     decimal.Decimal
	Note       string
	Date       time.Time
}

func (in TransactionInput) validate() error {
	if !in.Type.Valid() {
		return apperr.Invalid("invalid_type", "type must be INCOME or EXPENSE")
	}
	return money.RequirePositive(in.Amount)
}

// TransactionService keeps wallet balances in step with personal transactions
type TransactionService struct {
	d Deps
}

// NewTransactionService returns the personal ledger use cases
func NewTransactionService(d Deps) *TransactionService {
	return &TransactionService{d: d.withDefaults()}
}

// CreateWallet opens a wallet for userID
func (s *TransactionService) CreateWallet(ctx context.Context, userID uint, in WalletInput) (*domain.Wallet, error) {
	if money.IsNegative(in.Balance) {
		return nil, apperr.Invalid("invalid_amount", "opening balance cannot be negative")
	}
	if err := money.RequireScale(in.Balance); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return nil, apperr.Invalid("invalid_currency", "currency must be a 3 letter code")
	}
	w := &domain.Wallet{UserID: userID, Name: in.Name, Currency: currency, Balance: money.Round(in.Balance)}
	err := s.d.Store.CreateWallet(ctx, w)
	logResult("create_wallet", logrus.Fields{"user_id": userID, "wallet_id": w.ID}, err)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetWallet returns a wallet owned by userID
func (s *TransactionService) GetWallet(ctx context.Context, userID, walletID uint) (*domain.Wallet, error) {
	w, err := s.d.Store.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if err := guard.CheckOwnership(w, userID); err != nil {
		return nil, err
	}
	return w, nil
}

// ListWalletTransactions returns the transactions of a wallet owned by userID
func (s *TransactionService) ListWalletTransactions(ctx context.Context, userID, walletID uint) ([]domain.Transaction, error) {
	if _, err := s.GetWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}
	return s.d.Store.ListTransactionsByWallet(ctx, walletID)
}

// loadTarget resolves the wallet and category of a transaction and checks that userID
// owns both and that the category matches the transaction type.
func loadTarget(ctx context.Context, tx *repository.Store, userID uint, in TransactionInput) (*domain.Wallet, error) {
	w, err := tx.FindWalletByID(ctx, in.WalletID)
	if err != nil {
		return nil, err
	}
	if err := guard.CheckOwnership(w, userID); err != nil {
		return nil, err
	}
	c, err := tx.FindCategoryByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := guard.CheckOwnership(c, userID); err != nil {
		return nil, err
	}
	if c.Type != in.Type {
		return nil, apperr.ErrCategoryTypeMismatch
	}
	return w, nil
}

// CreateTransaction records a transaction and applies it to its wallet
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uint, in TransactionInput) (*domain.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *domain.Transaction
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "create_transaction", func(tx *repository.Store) error {
		w, err := loadTarget(ctx, tx, userID, in)
		if err != nil {
			return err
		}
		if err := s.d.Ledger.Apply(w, in.Amount, in.Type); err != nil {
			return err
		}
		if err := tx.UpdateWalletBalance(ctx, w); err != nil {
			return err
		}
		t := &domain.Transaction{
			UserID:     userID,
			WalletID:   w.ID,
			CategoryID: in.CategoryID,
			Type:       in.Type,
			Amount:     in.Amount,
			Note:       in.Note,
			Date:       s.dateOrToday(in.Date),
		}
		if err := tx.CreateTransaction(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	logResult("create_transaction", logrus.Fields{
		"user_id":   userID,
		"wallet_id": in.WalletID,
		"type":      in.Type,
		"amount":    money.String(in.Amount),
	}, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTransaction replaces a transaction with in and moves its effect accordingly:
// a different amount or type on the same wallet, or a different wallet altogether.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, txID uint, in TransactionInput) (*domain.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *domain.Transaction
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "update_transaction", func(tx *repository.Store) error {
		t, err := tx.FindTransactionByID(ctx, txID)
		if err != nil {
			return err
		}
		if err := guard.CheckOwnership(t, userID); err != nil {
			return err
		}
		oldWallet, err := tx.FindWalletByID(ctx, t.WalletID)
		if err != nil {
			return err
		}
		newWallet := oldWallet
		if in.WalletID != t.WalletID {
			if newWallet, err = loadTarget(ctx, tx, userID, in); err != nil {
				return err
			}
		} else if _, err := loadTarget(ctx, tx, userID, in); err != nil {
			return err
		}

		touched, err := s.d.Ledger.ReconcileEdit(oldWallet, newWallet, t.Amount, in.Amount, t.Type, in.Type)
		if err != nil {
			return err
		}
		for _, w := range touched {
			if err := tx.UpdateWalletBalance(ctx, w); err != nil {
				return err
			}
		}

		t.WalletID = newWallet.ID
		t.CategoryID = in.CategoryID
		t.Type = in.Type
		t.Amount = in.Amount
		t.Note = in.Note
		if !in.Date.IsZero() {
			t.Date = in.Date
		}
		if err := tx.SaveTransaction(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	logResult("update_transaction", logrus.Fields{
		"user_id":        userID,
		"transaction_id": txID,
		"wallet_id":      in.WalletID,
		"amount":         money.String(in.Amount),
	}, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTransaction removes a transaction and reverses its effect
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, txID uint) error {
	err := runUnit(ctx, s.d.Store, s.d.RetryLimit, "delete_transaction", func(tx *repository.Store) error {
		t, err := tx.FindTransactionByID(ctx, txID)
		if err != nil {
			return err
		}
		if err := guard.CheckOwnership(t, userID); err != nil {
			return err
		}
		w, err := tx.FindWalletByID(ctx, t.WalletID)
		if err != nil {
			return err
		}
		if err := s.d.Ledger.Reverse(w, t.Amount, t.Type); err != nil {
			return err
		}
		if err := tx.UpdateWalletBalance(ctx, w); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, t.ID)
	})
	logResult("delete_transaction", logrus.Fields{"user_id": userID, "transaction_id": txID}, err)
	return err
}

func (s *TransactionService) dateOrToday(d time.Time) time.Time {
	if d.IsZero() {
		return s.d.Now()
	}
	return d
}
