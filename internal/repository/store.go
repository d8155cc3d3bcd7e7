// Package repository is the gorm persistence layer: entity lookups, versioned balance
// writes and the unit of work every ledger use case runs in.
package repository

import (
	"context"
	"errors"
	"fmt"

	"finance_tracker/internal/apperr"

	"gorm.io/gorm"
)

// Store wraps a gorm handle. Inside Transaction the handle is the open database
// transaction, so every call made through the callback's Store joins the unit of work.
type Store struct {
	db *gorm.DB
}

// New returns a store over db
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for wiring that needs it directly
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn in one database transaction. Any error returned by fn rolls it back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// lookupErr translates gorm's not-found into apperr.NotFound and anything else into Internal
func lookupErr(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Internal("load "+entity, err)
}

func writeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.Internal(op, err)
}

// updateVersioned writes fields on the row (id, version) and bumps the version.
// A row that moved on since it was read yields apperr.ErrVersionConflict.
func (s *Store) updateVersioned(ctx context.Context, model any, id, version uint, fields map[string]any) error {
	fields["version"] = gorm.Expr("version + 1")
	res := s.conn(ctx).Model(model).Where("id = ? AND version = ?", id, version).Updates(fields)
	if res.Error != nil {
		return apperr.Internal("versioned update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Wrap(apperr.ErrVersionConflict, fmt.Errorf("%T %d at version %d", model, id, version))
	}
	return nil
}
