package repository

import (
	"context"
	"errors"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/domain"

	"gorm.io/gorm"
)

// CreateUser inserts a user. A taken username yields apperr.ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	err := s.conn(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.ErrUsernameTaken, err)
	}
	return writeErr("create user", err)
}

// FindUserByUsername returns the user with the given (lower case) username
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := s.conn(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, lookupErr(err, "user", username)
	}
	return &u, nil
}

// FindUserByID returns a user
func (s *Store) FindUserByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return &u, nil
}

// CreateWallet inserts a wallet at version 0
func (s *Store) CreateWallet(ctx context.Context, w *domain.Wallet) error {
	return writeErr("create wallet", s.conn(ctx).Create(w).Error)
}

// FindWalletByID returns a wallet
func (s *Store) FindWalletByID(ctx context.Context, id uint) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := s.conn(ctx).First(&w, id).Error; err != nil {
		return nil, lookupErr(err, "wallet", id)
	}
	return &w, nil
}

// UpdateWalletBalance persists w.Balance if the stored version still equals w.Version,
// and advances w.Version on success.
func (s *Store) UpdateWalletBalance(ctx context.Context, w *domain.Wallet) error {
	if err := s.updateVersioned(ctx, &domain.Wallet{}, w.ID, w.Version, map[string]any{"balance": w.Balance}); err != nil {
		return err
	}
	w.Version++
	return nil
}

// CreateCategory inserts a category
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	return writeErr("create category", s.conn(ctx).Create(c).Error)
}

// FindCategoryByID returns a category
func (s *Store) FindCategoryByID(ctx context.Context, id uint) (*domain.Category, error) {
	var c domain.Category
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, lookupErr(err, "category", id)
	}
	return &c, nil
}

// CreateTransaction inserts a personal transaction
func (s *Store) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	return writeErr("create transaction", s.conn(ctx).Create(t).Error)
}

// FindTransactionByID returns a personal transaction
func (s *Store) FindTransactionByID(ctx context.Context, id uint) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := s.conn(ctx).First(&t, id).Error; err != nil {
		return nil, lookupErr(err, "transaction", id)
	}
	return &t, nil
}

// SaveTransaction writes every column of t
func (s *Store) SaveTransaction(ctx context.Context, t *domain.Transaction) error {
	return writeErr("save transaction", s.conn(ctx).Save(t).Error)
}

// DeleteTransaction removes a personal transaction
func (s *Store) DeleteTransaction(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&domain.Transaction{}, id)
	if res.Error != nil {
		return apperr.Internal("delete transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("transaction", id)
	}
	return nil
}

// ListTransactionsByWallet returns the transactions of a wallet, newest first
func (s *Store) ListTransactionsByWallet(ctx context.Context, walletID uint) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.conn(ctx).Where("wallet_id = ?", walletID).Order("date desc, id desc").Find(&txs).Error
	return txs, writeErr("list transactions", err)
}
