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

type collateralRepository struct {
	ext sqlx.ExtContext
}

const collateralColumns = `id, customer_id, chart_account_id, amount, created_at, updated_at`

func (r *collateralRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CashCollateral, error) {
	return r.get(ctx, `SELECT `+collateralColumns+` FROM cash_collaterals WHERE id = $1`, id)
}

func (r *collateralRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.CashCollateral, error) {
	return r.get(ctx, `SELECT `+collateralColumns+` FROM cash_collaterals WHERE id = $1 FOR UPDATE`, id)
}

func (r *collateralRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.CashCollateral, error) {
	var collateral domain.CashCollateral
	if err := sqlx.GetContext(ctx, r.ext, &collateral, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNotFound(customError.ErrCollateralNotFound, "")
		}
		return nil, err
	}
	return &collateral, nil
}

func (r *collateralRepository) GetByChartAccount(ctx context.Context, chartAccountID, customerID uuid.UUID) (*domain.CashCollateral, error) {
	query := `SELECT ` + collateralColumns + ` FROM cash_collaterals WHERE chart_account_id = $1 AND customer_id = $2`

	var collateral domain.CashCollateral
	if err := sqlx.GetContext(ctx, r.ext, &collateral, query, chartAccountID, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &collateral, nil
}

// Decrement guards against overdraft at the statement level; zero rows
// affected means the balance was insufficient.
func (r *collateralRepository) Decrement(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE cash_collaterals
		SET amount = amount - $2, updated_at = $3
		WHERE id = $1 AND amount >= $2
	`

	res, err := r.ext.ExecContext(ctx, query, id, amount, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.ErrInsufficientCollateral
	}
	return nil
}

func (r *collateralRepository) Increment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE cash_collaterals
		SET amount = amount + $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.ext.ExecContext(ctx, query, id, amount, time.Now())
	return err
}
