package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/repository"
)

// AccrueMatureInterest posts the interest-maturity pair (debit interest
// receivable, credit interest revenue) for every matured installment that
// does not have one yet. Returns the number of installments accrued.
// Posting is idempotent on (account, customer, due date, amount, type).
func (s *RepaymentService) AccrueMatureInterest(ctx context.Context, asOf time.Time) (int, error) {
	loans, err := s.store.Repos().Loans.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	accrued := 0
	for _, loan := range loans {
		loan := loan
		err := s.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repos) error {
			n, err := s.accrueLoanTx(ctx, r, loan, asOf)
			accrued += n
			return err
		})
		if err != nil {
			// One broken loan must not starve the rest of the batch.
			s.events.ConfigWarning(fmt.Sprintf("interest accrual failed for loan %s: %v", loan.ID, err))
		}
	}
	return accrued, nil
}

func (s *RepaymentService) accrueLoanTx(ctx context.Context, r *repository.Repos, loan *domain.Loan, asOf time.Time) (int, error) {
	product, err := r.Products.GetByID(ctx, loan.ProductID)
	if err != nil {
		return 0, err
	}
	receivable := product.InterestReceivableAccountID
	revenue := product.InterestRevenueAccountID
	if receivable == nil || revenue == nil {
		return 0, nil
	}

	schedules, err := r.Schedules.ListDueBefore(ctx, loan.ID, asOf)
	if err != nil {
		return 0, err
	}

	accrued := 0
	for _, sched := range schedules {
		if !sched.Interest.IsPositive() {
			continue
		}

		exists, err := r.Ledger.AccrualExists(ctx, domain.AccrualKey{
			ChartAccountID:  *receivable,
			CustomerID:      loan.CustomerID,
			Date:            sched.DueDate,
			Amount:          sched.Interest,
			TransactionType: domain.TxTypeMatureInterest,
		})
		if err != nil {
			return accrued, err
		}
		if exists {
			continue
		}

		description := fmt.Sprintf("Interest matured for loan %s installment %d", loan.LoanNo, sched.InstallmentNo)
		debit := &domain.GLTransaction{
			ID:              uuid.New(),
			ChartAccountID:  *receivable,
			CustomerID:      loan.CustomerID,
			Amount:          sched.Interest,
			Nature:          domain.NatureDebit,
			TransactionID:   sched.ID,
			TransactionType: domain.TxTypeMatureInterest,
			Date:            sched.DueDate,
			Description:     description,
		}
		if err := r.Ledger.Create(ctx, debit); err != nil {
			return accrued, err
		}
		credit := &domain.GLTransaction{
			ID:              uuid.New(),
			ChartAccountID:  *revenue,
			CustomerID:      loan.CustomerID,
			Amount:          sched.Interest,
			Nature:          domain.NatureCredit,
			TransactionID:   sched.ID,
			TransactionType: domain.TxTypeMatureInterest,
			Date:            sched.DueDate,
			Description:     description,
		}
		if err := r.Ledger.Create(ctx, credit); err != nil {
			return accrued, err
		}
		accrued++
	}
	return accrued, nil
}

// ApplyLatePenalties sets the product's configured penalty on overdue
// installments that carry none yet and posts the matching receivable and
// income pair. Returns the number of installments penalized.
func (s *RepaymentService) ApplyLatePenalties(ctx context.Context, asOf time.Time) (int, error) {
	loans, err := s.store.Repos().Loans.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	penalized := 0
	for _, loan := range loans {
		loan := loan
		err := s.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repos) error {
			n, err := s.penalizeLoanTx(ctx, r, loan, asOf)
			penalized += n
			return err
		})
		if err != nil {
			s.events.ConfigWarning(fmt.Sprintf("penalty application failed for loan %s: %v", loan.ID, err))
		}
	}
	return penalized, nil
}

func (s *RepaymentService) penalizeLoanTx(ctx context.Context, r *repository.Repos, loan *domain.Loan, asOf time.Time) (int, error) {
	product, err := r.Products.GetByID(ctx, loan.ProductID)
	if err != nil {
		return 0, err
	}

	var penalty *domain.PenaltyConfig
	for i := range product.Penalties {
		if product.Penalties[i].Amount.IsPositive() {
			penalty = &product.Penalties[i]
			break
		}
	}
	if penalty == nil {
		return 0, nil
	}

	unpaid, err := r.Schedules.ListUnpaid(ctx, loan.ID)
	if err != nil {
		return 0, err
	}

	penalized := 0
	for _, sched := range unpaid {
		if !sched.DueDate.Before(asOf) || !sched.PenaltyAmount.IsZero() {
			continue
		}

		if err := r.Schedules.UpdatePenaltyAmount(ctx, sched.ID, penalty.Amount); err != nil {
			return penalized, err
		}

		if penalty.ReceivableAccountID != nil {
			description := fmt.Sprintf("Late penalty for loan %s installment %d", loan.LoanNo, sched.InstallmentNo)
			debit := &domain.GLTransaction{
				ID:              uuid.New(),
				ChartAccountID:  *penalty.ReceivableAccountID,
				CustomerID:      loan.CustomerID,
				Amount:          penalty.Amount,
				Nature:          domain.NatureDebit,
				TransactionID:   loan.ID,
				TransactionType: domain.TxTypePenalty,
				Date:            asOf,
				Description:     description,
			}
			if err := r.Ledger.Create(ctx, debit); err != nil {
				return penalized, err
			}
			if penalty.IncomeAccountID != nil {
				credit := &domain.GLTransaction{
					ID:              uuid.New(),
					ChartAccountID:  *penalty.IncomeAccountID,
					CustomerID:      loan.CustomerID,
					Amount:          penalty.Amount,
					Nature:          domain.NatureCredit,
					TransactionID:   loan.ID,
					TransactionType: domain.TxTypePenalty,
					Date:            asOf,
					Description:     description,
				}
				if err := r.Ledger.Create(ctx, credit); err != nil {
					return penalized, err
				}
			} else {
				s.events.ConfigWarning(fmt.Sprintf("penalty income account missing for product %s; credit posting skipped", product.ID))
			}
		}
		penalized++
	}
	return penalized, nil
}
