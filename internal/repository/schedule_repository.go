package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

type scheduleRepository struct {
	ext sqlx.ExtContext
}

const scheduleColumns = `id, loan_id, customer_id, installment_no, due_date, principal, interest, fee_amount, penalty_amount, created_at`

func (r *scheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM loan_schedules WHERE id = $1`

	var schedule domain.Schedule
	if err := sqlx.GetContext(ctx, r.ext, &schedule, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNotFound(customError.ErrScheduleNotFound, id.String())
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM loan_schedules WHERE loan_id = $1 ORDER BY due_date`

	var schedules []*domain.Schedule
	if err := sqlx.SelectContext(ctx, r.ext, &schedules, query, loanID); err != nil {
		return nil, err
	}
	return schedules, nil
}

// ListUnpaid selects schedules whose applied repayment totals are strictly
// below the due totals, earliest due date first.
func (r *scheduleRepository) ListUnpaid(ctx context.Context, loanID uuid.UUID) ([]*domain.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM loan_schedules
		WHERE loan_id = $1
		  AND (
			SELECT COALESCE(SUM(principal), 0) + COALESCE(SUM(interest), 0) + COALESCE(SUM(fee_amount), 0) + COALESCE(SUM(penalty_amount), 0)
			FROM repayments
			WHERE repayments.loan_schedule_id = loan_schedules.id
		  ) < (principal + interest + fee_amount + penalty_amount)
		ORDER BY due_date
	`

	var schedules []*domain.Schedule
	if err := sqlx.SelectContext(ctx, r.ext, &schedules, query, loanID); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) UpdatePenaltyAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE loan_schedules SET penalty_amount = $2 WHERE id = $1`

	_, err := r.ext.ExecContext(ctx, query, id, amount)
	return err
}

func (r *scheduleRepository) ListDueBefore(ctx context.Context, loanID uuid.UUID, asOf time.Time) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM loan_schedules WHERE loan_id = $1 AND due_date <= $2 ORDER BY due_date`

	var schedules []*domain.Schedule
	if err := sqlx.SelectContext(ctx, r.ext, &schedules, query, loanID, asOf); err != nil {
		return nil, err
	}
	return schedules, nil
}
