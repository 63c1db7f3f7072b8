package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRepositories are bound to a single transaction.
type TxRepositories struct {
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository
}

type Transactor interface {
	// WithinTx commits when fn returns nil and rolls back otherwise. The
	// error from fn is returned unchanged so callers can match on it.
	WithinTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

type sqlTransactor struct {
	DB *sql.DB
}

func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{DB: db}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(repos TxRepositories) error) error {

	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	repos := TxRepositories{
		Products: NewProductRepo(tx),
		Carts:    NewCartRepo(tx),
		Orders:   NewOrderRepo(tx),
	}

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
