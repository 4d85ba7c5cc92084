package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every repository over one connection (or transaction).
type Repository struct {
	db *gorm.DB

	Series  SeriesRepository
	Session SessionRepository
}

// NewRepository builds the aggregate over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		Series:  NewSeriesRepo(db),
		Session: NewSessionRepo(db),
	}
}

// BeginTx opens a transaction. Returns a nil tx when the aggregate has no
// database handle (mock repositories in tests); callers treat a nil tx as
// "no transaction" and skip Commit/Rollback.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate whose repositories run inside tx.
// A nil tx returns r unchanged.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
