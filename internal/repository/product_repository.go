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

type productRepository struct {
	ext sqlx.ExtContext
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanProduct, error) {
	query := `
		SELECT id, name, interest_method, repayment_order,
		       principal_receivable_account_id, interest_receivable_account_id, interest_revenue_account_id
		FROM loan_products
		WHERE id = $1
	`

	var product domain.LoanProduct
	if err := sqlx.GetContext(ctx, r.ext, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNotFound(customError.ErrProductNotFound, id.String())
		}
		return nil, err
	}

	feeQuery := `
		SELECT f.id, f.name, f.amount, f.include_in_schedule, f.chart_account_id
		FROM fees f
		JOIN loan_product_fees pf ON pf.fee_id = f.id
		WHERE pf.product_id = $1
		ORDER BY pf.position
	`
	if err := sqlx.SelectContext(ctx, r.ext, &product.Fees, feeQuery, id); err != nil {
		return nil, err
	}

	penaltyQuery := `
		SELECT p.id, p.name, p.amount, p.penalty_receivables_account_id, p.penalty_income_account_id
		FROM penalties p
		JOIN loan_product_penalties pp ON pp.penalty_id = p.id
		WHERE pp.product_id = $1
		ORDER BY pp.position
	`
	if err := sqlx.SelectContext(ctx, r.ext, &product.Penalties, penaltyQuery, id); err != nil {
		return nil, err
	}

	return &product, nil
}
