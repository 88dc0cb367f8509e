package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendcore/loan-engine/internal/domain"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

type repaymentRepository struct {
	ext sqlx.ExtContext
}

const repaymentColumns = `id, customer_id, loan_id, loan_schedule_id, bank_chart_account_id, payment_date, due_date, principal, interest, fee_amount, penalty_amount, amount, created_at`

func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	query := `
		INSERT INTO repayments (` + repaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.ext.ExecContext(ctx, query,
		repayment.ID,
		repayment.CustomerID,
		repayment.LoanID,
		repayment.ScheduleID,
		repayment.BankChartAccountID,
		repayment.PaymentDate,
		repayment.DueDate,
		repayment.Principal,
		repayment.Interest,
		repayment.FeeAmount,
		repayment.PenaltyAmount,
		repayment.Amount,
		repayment.CreatedAt,
	)
	return err
}

func (r *repaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE id = $1`

	var repayment domain.Repayment
	if err := sqlx.GetContext(ctx, r.ext, &repayment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNotFound(customError.ErrRepaymentNotFound, id.String())
		}
		return nil, err
	}
	return &repayment, nil
}

func (r *repaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE loan_id = $1 ORDER BY payment_date DESC`

	var repayments []*domain.Repayment
	if err := sqlx.SelectContext(ctx, r.ext, &repayments, query, loanID); err != nil {
		return nil, err
	}
	return repayments, nil
}

func (r *repaymentRepository) PaidTotals(ctx context.Context, scheduleID uuid.UUID) (domain.PaidTotals, error) {
	query := `
		SELECT COALESCE(SUM(principal), 0)      AS principal,
		       COALESCE(SUM(interest), 0)       AS interest,
		       COALESCE(SUM(fee_amount), 0)     AS fee_amount,
		       COALESCE(SUM(penalty_amount), 0) AS penalty_amount
		FROM repayments
		WHERE loan_schedule_id = $1
	`

	var totals domain.PaidTotals
	if err := sqlx.GetContext(ctx, r.ext, &totals, query, scheduleID); err != nil {
		return domain.PaidTotals{}, err
	}
	return totals, nil
}

func (r *repaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM repayments WHERE id = $1`

	_, err := r.ext.ExecContext(ctx, query, id)
	return err
}
