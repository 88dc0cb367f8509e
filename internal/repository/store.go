package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type store struct {
	db    *sqlx.DB
	repos *Repos
}

// NewStore creates a Store backed by a sqlx connection pool.
func NewStore(db *sqlx.DB) Store {
	return &store{db: db, repos: bindRepos(db)}
}

func bindRepos(ext sqlx.ExtContext) *Repos {
	return &Repos{
		Loans:      &loanRepository{ext: ext},
		Products:   &productRepository{ext: ext},
		Schedules:  &scheduleRepository{ext: ext},
		Repayments: &repaymentRepository{ext: ext},
		Ledger:     &ledgerRepository{ext: ext},
		Receipts:   &receiptRepository{ext: ext},
		Journals:   &journalRepository{ext: ext},
		Collateral: &collateralRepository{ext: ext},
	}
}

func (s *store) Repos() *Repos {
	return s.repos
}

// WithinTx runs fn inside one database transaction. The transaction is the
// unit of isolation: fn either commits as a whole or every side effect is
// rolled back.
func (s *store) WithinTx(ctx context.Context, fn func(ctx context.Context, r *Repos) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, bindRepos(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
