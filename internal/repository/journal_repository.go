package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendcore/loan-engine/internal/domain"
)

type journalRepository struct {
	ext sqlx.ExtContext
}

func (r *journalRepository) Create(ctx context.Context, journal *domain.Journal) error {
	query := `
		INSERT INTO journals (id, reference, reference_type, customer_id, description, date, branch_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.ext.ExecContext(ctx, query,
		journal.ID,
		journal.Reference,
		journal.ReferenceType,
		journal.CustomerID,
		journal.Description,
		journal.Date,
		journal.BranchID,
		journal.UserID,
	)
	return err
}

func (r *journalRepository) CreateItem(ctx context.Context, item *domain.JournalItem) error {
	query := `
		INSERT INTO journal_items (id, journal_id, chart_account_id, amount, nature, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.ext.ExecContext(ctx, query,
		item.ID, item.JournalID, item.ChartAccountID, item.Amount, item.Nature, item.Description)
	return err
}

func (r *journalRepository) GetByReference(ctx context.Context, repaymentID uuid.UUID) (*domain.Journal, error) {
	query := `
		SELECT id, reference, reference_type, customer_id, description, date, branch_id, user_id
		FROM journals
		WHERE reference = $1 AND reference_type = $2
	`

	var journal domain.Journal
	if err := sqlx.GetContext(ctx, r.ext, &journal, query, repaymentID, domain.JournalTypeWithdrawal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &journal, nil
}

func (r *journalRepository) DeleteItems(ctx context.Context, journalID uuid.UUID) error {
	_, err := r.ext.ExecContext(ctx, `DELETE FROM journal_items WHERE journal_id = $1`, journalID)
	return err
}

func (r *journalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.ext.ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, id)
	return err
}
