package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
)

type ledgerRepository struct {
	ext sqlx.ExtContext
}

const glColumns = `id, chart_account_id, customer_id, amount, nature, transaction_id, transaction_type, date, description, branch_id, user_id`

func (r *ledgerRepository) Create(ctx context.Context, tx *domain.GLTransaction) error {
	query := `
		INSERT INTO gl_transactions (` + glColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.ext.ExecContext(ctx, query,
		tx.ID,
		tx.ChartAccountID,
		tx.CustomerID,
		tx.Amount,
		tx.Nature,
		tx.TransactionID,
		tx.TransactionType,
		tx.Date,
		tx.Description,
		tx.BranchID,
		tx.UserID,
	)
	return err
}

func (r *ledgerRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID, types []string) ([]*domain.GLTransaction, error) {
	query, args, err := sqlx.In(
		`SELECT `+glColumns+` FROM gl_transactions WHERE transaction_id = ? AND transaction_type IN (?)`,
		transactionID, types,
	)
	if err != nil {
		return nil, err
	}

	var entries []*domain.GLTransaction
	if err := sqlx.SelectContext(ctx, r.ext, &entries, r.ext.Rebind(query), args...); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) DeleteByTransaction(ctx context.Context, transactionID uuid.UUID, types []string) (int64, error) {
	query, args, err := sqlx.In(
		`DELETE FROM gl_transactions WHERE transaction_id = ? AND transaction_type IN (?)`,
		transactionID, types,
	)
	if err != nil {
		return 0, err
	}

	res, err := r.ext.ExecContext(ctx, r.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ledgerRepository) AccrualExists(ctx context.Context, key domain.AccrualKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM gl_transactions
			WHERE chart_account_id = $1
			  AND customer_id = $2
			  AND date = $3
			  AND amount = $4
			  AND transaction_type = $5
		)
	`

	var exists bool
	err := sqlx.GetContext(ctx, r.ext, &exists, query,
		key.ChartAccountID, key.CustomerID, key.Date, key.Amount, key.TransactionType)
	return exists, err
}

func (r *ledgerRepository) ReducePenaltyAmounts(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal) (int64, error) {
	query := `
		UPDATE gl_transactions
		SET amount = amount - $2
		WHERE transaction_id = $1
		  AND transaction_type IN ('Penalty', 'penalty', 'Loan Penalty')
		  AND amount > 0
	`

	res, err := r.ext.ExecContext(ctx, query, loanID, amount)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
