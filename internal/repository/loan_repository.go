package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendcore/loan-engine/internal/domain"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

type loanRepository struct {
	ext sqlx.ExtContext
}

const loanColumns = `id, loan_no, customer_id, product_id, amount, interest_rate, period_months, disbursed_on, method, status, created_at, updated_at`

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(ctx, id, `SELECT `+loanColumns+` FROM loans WHERE id = $1`)
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(ctx, id, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`)
}

func (r *loanRepository) get(ctx context.Context, id uuid.UUID, query string) (*domain.Loan, error) {
	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.ext, &loan, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNotFound(customError.ErrLoanNotFound, id.String())
		}
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE loans SET status = $2, updated_at = $3 WHERE id = $1`

	_, err := r.ext.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 ORDER BY disbursed_on`

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, r.ext, &loans, query, domain.LoanStatusActive); err != nil {
		return nil, err
	}
	return loans, nil
}
