package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/repository"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

// DeleteRepayment reverses a single repayment: its ledger entries,
// receipt and journal are removed, consumed collateral is restored, and
// a loan closed by the repayment is reopened.
func (s *RepaymentService) DeleteRepayment(ctx context.Context, repaymentID uuid.UUID) error {
	var loanID uuid.UUID
	err := s.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repos) error {
		repayment, err := s.deleteRepaymentTx(ctx, r, repaymentID)
		if err != nil {
			return err
		}
		loanID = repayment.LoanID
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateLoanCache(ctx, loanID)
	return nil
}

// BulkDeleteRepayments reverses several repayments in one transaction.
// Any failure rolls back every reversal in the batch.
func (s *RepaymentService) BulkDeleteRepayments(ctx context.Context, repaymentIDs []uuid.UUID) error {
	if len(repaymentIDs) == 0 {
		return customError.WrapValidation("no repayment ids given")
	}

	loans := make(map[uuid.UUID]struct{})
	err := s.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repos) error {
		for _, id := range repaymentIDs {
			repayment, err := s.deleteRepaymentTx(ctx, r, id)
			if err != nil {
				return err
			}
			loans[repayment.LoanID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for loanID := range loans {
		s.invalidateLoanCache(ctx, loanID)
	}
	return nil
}

// UpdateRepayment replaces a repayment by reversing it and replaying the
// loan's allocation with the new amount and payment data, atomically.
func (s *RepaymentService) UpdateRepayment(ctx context.Context, repaymentID uuid.UUID, amount decimal.Decimal, payment domain.PaymentData) (*domain.RepaymentResult, error) {
	if !amount.IsPositive() {
		return nil, customError.WrapValidation("amount must be greater than zero")
	}

	var result *domain.RepaymentResult
	var loanID uuid.UUID
	err := s.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repos) error {
		repayment, err := s.deleteRepaymentTx(ctx, r, repaymentID)
		if err != nil {
			return err
		}
		loanID = repayment.LoanID
		result, err = s.processRepaymentTx(ctx, r, loanID, amount, payment)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLoanCache(ctx, loanID)
	return result, nil
}

// deleteRepaymentTx performs one reversal inside an open transaction and
// returns the removed repayment.
func (s *RepaymentService) deleteRepaymentTx(ctx context.Context, r *repository.Repos, repaymentID uuid.UUID) (*domain.Repayment, error) {
	repayment, err := r.Repayments.GetByID(ctx, repaymentID)
	if err != nil {
		return nil, err
	}

	// Lock the loan so the reversal serializes with concurrent payments.
	loan, err := r.Loans.GetByIDForUpdate(ctx, repayment.LoanID)
	if err != nil {
		return nil, err
	}

	// Collateral funding is detected from the journal-repayment debit
	// before anything is deleted.
	collateralAccount, err := s.findCollateralAccount(ctx, r, repayment.ID)
	if err != nil {
		return nil, err
	}

	if _, err := r.Ledger.DeleteByTransaction(ctx, repayment.ID, domain.RepaymentTxTypes()); err != nil {
		return nil, err
	}

	receipt, err := r.Receipts.GetByReference(ctx, repayment.ID)
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		if _, err := r.Ledger.DeleteByTransaction(ctx, receipt.ID, []string{domain.TxTypeReceipt}); err != nil {
			return nil, err
		}
		if err := r.Receipts.DeleteItems(ctx, receipt.ID); err != nil {
			return nil, err
		}
		if err := r.Receipts.Delete(ctx, receipt.ID); err != nil {
			return nil, err
		}
	}

	journal, err := r.Journals.GetByReference(ctx, repayment.ID)
	if err != nil {
		return nil, err
	}
	if journal != nil {
		if err := r.Journals.DeleteItems(ctx, journal.ID); err != nil {
			return nil, err
		}
		if err := r.Journals.Delete(ctx, journal.ID); err != nil {
			return nil, err
		}
	}

	if collateralAccount != nil {
		collateral, err := r.Collateral.GetByChartAccount(ctx, *collateralAccount, repayment.CustomerID)
		if err != nil {
			return nil, err
		}
		if collateral != nil {
			if err := r.Collateral.Increment(ctx, collateral.ID, repayment.ComponentsTotal()); err != nil {
				return nil, err
			}
		}
	}

	if loan.Status == domain.LoanStatusComplete || loan.Status == domain.LoanStatusClosed {
		fullyPaid, err := s.isLoanFullyPaid(ctx, r, loan.ID, repayment)
		if err != nil {
			return nil, err
		}
		if !fullyPaid {
			if err := r.Loans.UpdateStatus(ctx, loan.ID, domain.LoanStatusActive); err != nil {
				return nil, err
			}
		}
	}

	if err := r.Repayments.Delete(ctx, repayment.ID); err != nil {
		return nil, err
	}

	s.events.ReversalCompleted(repayment.ID)
	return repayment, nil
}

// findCollateralAccount returns the chart account of the collateral that
// funded a repayment, or nil for bank-funded repayments. The marker is
// the debit-natured journal-repayment entry posted against the
// collateral's chart account.
func (s *RepaymentService) findCollateralAccount(ctx context.Context, r *repository.Repos, repaymentID uuid.UUID) (*uuid.UUID, error) {
	entries, err := r.Ledger.ListByTransaction(ctx, repaymentID, []string{domain.TxTypeJournalRepayment})
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Nature == domain.NatureDebit {
			account := entry.ChartAccountID
			return &account, nil
		}
	}
	return nil, nil
}
