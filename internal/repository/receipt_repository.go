package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendcore/loan-engine/internal/domain"
)

type receiptRepository struct {
	ext sqlx.ExtContext
}

func (r *receiptRepository) Create(ctx context.Context, receipt *domain.Receipt) error {
	query := `
		INSERT INTO receipts (id, reference, reference_type, amount, date, description, bank_account_id, payee_id, branch_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.ext.ExecContext(ctx, query,
		receipt.ID,
		receipt.Reference,
		receipt.ReferenceType,
		receipt.Amount,
		receipt.Date,
		receipt.Description,
		receipt.BankAccountID,
		receipt.PayeeID,
		receipt.BranchID,
		receipt.UserID,
	)
	return err
}

func (r *receiptRepository) CreateItem(ctx context.Context, item *domain.ReceiptItem) error {
	query := `
		INSERT INTO receipt_items (id, receipt_id, chart_account_id, amount, description)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.ext.ExecContext(ctx, query,
		item.ID, item.ReceiptID, item.ChartAccountID, item.Amount, item.Description)
	return err
}

func (r *receiptRepository) GetByReference(ctx context.Context, repaymentID uuid.UUID) (*domain.Receipt, error) {
	query := `
		SELECT id, reference, reference_type, amount, date, description, bank_account_id, payee_id, branch_id, user_id
		FROM receipts
		WHERE reference = $1 AND reference_type = 'loan_repayment'
	`

	var receipt domain.Receipt
	if err := sqlx.GetContext(ctx, r.ext, &receipt, query, repaymentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) DeleteItems(ctx context.Context, receiptID uuid.UUID) error {
	_, err := r.ext.ExecContext(ctx, `DELETE FROM receipt_items WHERE receipt_id = $1`, receiptID)
	return err
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.ext.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	return err
}
