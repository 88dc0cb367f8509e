package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/allocation"
	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/ledger"
	"github.com/lendcore/loan-engine/internal/repository"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

// ProcessRepayment allocates a payment across the loan's unpaid schedules
// oldest first and posts the matching ledger entries. The whole run is a
// single database transaction.
func (s *RepaymentService) ProcessRepayment(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, payment domain.PaymentData) (*domain.RepaymentResult, error) {
	if !amount.IsPositive() {
		return nil, customError.WrapValidation("amount must be greater than zero")
	}

	var result *domain.RepaymentResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repos) error {
		var txErr error
		result, txErr = s.processRepaymentTx(ctx, r, loanID, amount, payment)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLoanCache(ctx, loanID)
	return result, nil
}

// processRepaymentTx is the transaction-scoped body of ProcessRepayment.
// The reversal path reuses it when replaying an updated payment.
func (s *RepaymentService) processRepaymentTx(ctx context.Context, r *repository.Repos, loanID uuid.UUID, amount decimal.Decimal, payment domain.PaymentData) (*domain.RepaymentResult, error) {
	loan, err := r.Loans.GetByIDForUpdate(ctx, loanID)
	if err != nil {
		return nil, err
	}

	// A settled loan may still carry schedules with forgiven interest;
	// those must never be collected afterwards.
	if loan.Status == domain.LoanStatusComplete || loan.Status == domain.LoanStatusClosed {
		return nil, customError.WrapValidation("loan is not active")
	}

	product, err := r.Products.GetByID(ctx, loan.ProductID)
	if err != nil {
		return nil, err
	}

	unpaid, err := r.Schedules.ListUnpaid(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	if len(unpaid) == 0 {
		return nil, customError.WrapNoUnpaidSchedules(loan.ID.String())
	}

	var collateral *domain.CashCollateral
	if payment.Source == domain.PaymentSourceCashDeposit {
		collateral, err = r.Collateral.GetByIDForUpdate(ctx, payment.CashDepositID)
		if err != nil {
			return nil, err
		}
		if collateral.Amount.LessThan(amount) {
			return nil, customError.WrapInsufficientCollateral(collateral.Amount, amount)
		}
	}

	order := domain.ParseRepaymentOrder(product.RepaymentOrder)

	remaining := amount
	totalPaid := decimal.Zero
	var allocations []domain.ScheduleAllocation
	var warnings []string

	for _, sched := range unpaid {
		if !remaining.IsPositive() {
			break
		}

		// A payment on or before the due date waives whatever penalty
		// is still outstanding on that installment.
		if !payment.PaymentDate.After(sched.DueDate) && sched.PenaltyAmount.IsPositive() {
			paid, perr := r.Repayments.PaidTotals(ctx, sched.ID)
			if perr != nil {
				return nil, perr
			}
			unpaidPenalty := sched.PenaltyAmount.Sub(paid.Penalty)
			if unpaidPenalty.IsPositive() {
				newPenalty, werr := s.removePenaltyTx(ctx, r, sched, loan.ID, unpaidPenalty, "Paid earlier or on due date")
				if werr != nil {
					return nil, werr
				}
				sched.PenaltyAmount = newPenalty
			}
		}

		paid, err := r.Repayments.PaidTotals(ctx, sched.ID)
		if err != nil {
			return nil, err
		}

		alloc := allocation.Allocate(sched, paid, order, remaining)
		if !alloc.Amount.IsPositive() {
			break
		}
		s.events.AllocationComputed(loan.ID, alloc)

		repayment := &domain.Repayment{
			ID:            uuid.New(),
			CustomerID:    loan.CustomerID,
			LoanID:        loan.ID,
			ScheduleID:    sched.ID,
			PaymentDate:   payment.PaymentDate,
			DueDate:       sched.DueDate,
			Principal:     alloc.Principal,
			Interest:      alloc.Interest,
			FeeAmount:     alloc.FeeAmount,
			PenaltyAmount: alloc.PenaltyAmount,
			Amount:        alloc.Amount,
		}
		if payment.Source == domain.PaymentSourceBank {
			id := payment.BankChartAccountID
			repayment.BankChartAccountID = &id
		}
		if err := r.Repayments.Create(ctx, repayment); err != nil {
			return nil, err
		}

		in := ledger.PostInput{
			Loan:       loan,
			Product:    product,
			Repayment:  repayment,
			Allocation: alloc,
			Payment:    payment,
		}
		var postWarnings []string
		switch payment.Source {
		case domain.PaymentSourceBank:
			postWarnings, err = ledger.PostBankReceipt(ctx, r, in)
		case domain.PaymentSourceCashDeposit:
			postWarnings, err = ledger.PostCollateralJournal(ctx, r, in, collateral)
		default:
			return nil, customError.WrapValidation(fmt.Sprintf("unknown payment source %q", payment.Source))
		}
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, postWarnings...)
		s.events.LedgerPosted(loan.ID, repayment.ID, payment.Source, alloc.Amount)

		remaining = remaining.Sub(alloc.Amount)
		totalPaid = totalPaid.Add(alloc.Amount)
		allocations = append(allocations, alloc)
	}

	status := loan.Status
	fullyPaid, err := s.isLoanFullyPaid(ctx, r, loan.ID, nil)
	if err != nil {
		return nil, err
	}
	if fullyPaid && loan.Status == domain.LoanStatusActive {
		// Closure is best effort. A failure here must not undo the
		// repayment itself.
		if err := r.Loans.UpdateStatus(ctx, loan.ID, domain.LoanStatusComplete); err != nil {
			s.events.ConfigWarning(fmt.Sprintf("loan %s fully paid but status update failed: %v", loan.ID, err))
		} else {
			status = domain.LoanStatusComplete
			s.events.LoanClosed(loan.ID)
		}
	}

	return &domain.RepaymentResult{
		PaidAmount:       totalPaid,
		RemainingBalance: remaining,
		Allocations:      allocations,
		LoanStatus:       status,
		Warnings:         warnings,
	}, nil
}

// isLoanFullyPaid reports whether every schedule component is covered by
// repayments. When exclude is non-nil its component amounts are treated
// as not paid, which lets the reversal path evaluate the loan as if the
// repayment were already gone.
func (s *RepaymentService) isLoanFullyPaid(ctx context.Context, r *repository.Repos, loanID uuid.UUID, exclude *domain.Repayment) (bool, error) {
	schedules, err := r.Schedules.ListByLoan(ctx, loanID)
	if err != nil {
		return false, err
	}
	if len(schedules) == 0 {
		return false, nil
	}

	for _, sched := range schedules {
		paid, err := r.Repayments.PaidTotals(ctx, sched.ID)
		if err != nil {
			return false, err
		}
		if exclude != nil && exclude.ScheduleID == sched.ID {
			paid.Principal = paid.Principal.Sub(exclude.Principal)
			paid.Interest = paid.Interest.Sub(exclude.Interest)
			paid.Fee = paid.Fee.Sub(exclude.FeeAmount)
			paid.Penalty = paid.Penalty.Sub(exclude.PenaltyAmount)
		}
		for _, c := range domain.DefaultRepaymentOrder() {
			if paid.Paid(c).LessThan(sched.Due(c)) {
				return false, nil
			}
		}
	}
	return true, nil
}

func (s *RepaymentService) invalidateLoanCache(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, repaymentHistoryKey(loanID)).Err(); err != nil {
		s.events.ConfigWarning(fmt.Sprintf("cache invalidation failed for loan %s: %v", loanID, err))
	}
}

// ProcessBulkRepayments runs each item as its own ProcessRepayment call.
// Items fail independently; a failed item is reported in the result and
// the batch continues.
func (s *RepaymentService) ProcessBulkRepayments(ctx context.Context, items []domain.BulkRepaymentItem) (*domain.BulkRepaymentResult, error) {
	if len(items) == 0 {
		return nil, customError.WrapValidation("no repayment items given")
	}

	result := &domain.BulkRepaymentResult{
		Items: make([]domain.BulkRepaymentItemResult, 0, len(items)),
	}
	for _, item := range items {
		itemResult := domain.BulkRepaymentItemResult{LoanID: item.LoanID.String()}
		repayment, err := s.ProcessRepayment(ctx, item.LoanID, item.Amount, item.Payment)
		if err != nil {
			itemResult.Error = err.Error()
			result.Failed++
		} else {
			itemResult.Result = repayment
			result.Succeeded++
		}
		result.Items = append(result.Items, itemResult)
	}
	return result, nil
}
