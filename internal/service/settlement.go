package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/ledger"
	"github.com/lendcore/loan-engine/internal/repository"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

var settlementTolerance = decimal.NewFromFloat(0.01)

// ProcessSettlement pays a loan off early. The amount must equal the
// current installment's unpaid interest plus all unpaid principal, within
// a 0.01 tolerance. Future interest is forgiven.
func (s *RepaymentService) ProcessSettlement(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, payment domain.PaymentData) (*domain.SettlementResult, error) {
	if !amount.IsPositive() {
		return nil, customError.WrapValidation("amount must be greater than zero")
	}

	var result *domain.SettlementResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repos) error {
		loan, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		product, err := r.Products.GetByID(ctx, loan.ProductID)
		if err != nil {
			return err
		}

		schedules, err := r.Schedules.ListByLoan(ctx, loan.ID)
		if err != nil {
			return err
		}
		if len(schedules) == 0 {
			return customError.WrapNoUnpaidSchedules(loan.ID.String())
		}

		paidBySchedule := make(map[uuid.UUID]domain.PaidTotals, len(schedules))
		for _, sched := range schedules {
			paid, err := r.Repayments.PaidTotals(ctx, sched.ID)
			if err != nil {
				return err
			}
			paidBySchedule[sched.ID] = paid
		}

		// The current installment is the earliest one not fully covered.
		var current *domain.Schedule
		for _, sched := range schedules {
			if paidBySchedule[sched.ID].Total().LessThan(sched.TotalDue()) {
				current = sched
				break
			}
		}
		if current == nil {
			return customError.WrapNoUnpaidSchedules(loan.ID.String())
		}

		currentInterest := current.Interest.Sub(paidBySchedule[current.ID].Interest)
		if currentInterest.IsNegative() {
			currentInterest = decimal.Zero
		}

		outstandingPrincipal := decimal.Zero
		for _, sched := range schedules {
			due := sched.Principal.Sub(paidBySchedule[sched.ID].Principal)
			if due.IsPositive() {
				outstandingPrincipal = outstandingPrincipal.Add(due)
			}
		}

		expected := currentInterest.Add(outstandingPrincipal)
		if amount.Sub(expected).Abs().GreaterThan(settlementTolerance) {
			return customError.WrapAmountMismatch(expected, amount)
		}

		// Only what actually posts is drawn from the deposit; a tolerance
		// overage stays on it.
		drawn := decimal.Min(amount, expected)

		var collateral *domain.CashCollateral
		if payment.Source == domain.PaymentSourceCashDeposit {
			collateral, err = r.Collateral.GetByIDForUpdate(ctx, payment.CashDepositID)
			if err != nil {
				return err
			}
			if collateral.Amount.LessThan(drawn) {
				return customError.WrapInsufficientCollateral(collateral.Amount, drawn)
			}
			if err := r.Collateral.Decrement(ctx, collateral.ID, drawn); err != nil {
				return err
			}
		}

		var warnings []string

		if currentInterest.IsPositive() {
			repayment := settlementRepayment(loan, current, payment, domain.ComponentInterest, currentInterest)
			if err := r.Repayments.Create(ctx, repayment); err != nil {
				return err
			}
			in := ledger.PostInput{Loan: loan, Product: product, Repayment: repayment, Payment: payment}
			w, err := ledger.PostSettlement(ctx, r, in, domain.TxTypeSettleInterest, currentInterest, collateral)
			if err != nil {
				return err
			}
			warnings = append(warnings, w...)
			s.events.LedgerPosted(loan.ID, repayment.ID, domain.TxTypeSettleInterest, currentInterest)
		}

		remaining := drawn.Sub(currentInterest)
		totalPrincipal := decimal.Zero
		for _, sched := range schedules {
			if !remaining.IsPositive() {
				break
			}
			due := sched.Principal.Sub(paidBySchedule[sched.ID].Principal)
			if !due.IsPositive() {
				continue
			}
			pay := decimal.Min(remaining, due)

			repayment := settlementRepayment(loan, sched, payment, domain.ComponentPrincipal, pay)
			if err := r.Repayments.Create(ctx, repayment); err != nil {
				return err
			}
			in := ledger.PostInput{Loan: loan, Product: product, Repayment: repayment, Payment: payment}
			w, err := ledger.PostSettlement(ctx, r, in, domain.TxTypeSettlePrincipal, pay, collateral)
			if err != nil {
				return err
			}
			warnings = append(warnings, w...)
			s.events.LedgerPosted(loan.ID, repayment.ID, domain.TxTypeSettlePrincipal, pay)

			remaining = remaining.Sub(pay)
			totalPrincipal = totalPrincipal.Add(pay)
		}

		// Interest on installments after the current one is forgiven, so
		// the regular fully-paid check never holds after a settlement.
		// The loan is settled once the current installment's interest is
		// covered and no principal remains; the tolerance can leave at
		// most 0.01 of principal behind.
		closed := false
		principalRemaining := outstandingPrincipal.Sub(totalPrincipal)
		if !principalRemaining.GreaterThan(settlementTolerance) && loan.Status == domain.LoanStatusActive {
			if err := r.Loans.UpdateStatus(ctx, loan.ID, domain.LoanStatusComplete); err != nil {
				return err
			}
			closed = true
			s.events.LoanClosed(loan.ID)
		}

		result = &domain.SettlementResult{
			CurrentInterestPaid: currentInterest,
			TotalPrincipalPaid:  totalPrincipal,
			LoanClosed:          closed,
			Warnings:            warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLoanCache(ctx, loanID)
	return result, nil
}

func settlementRepayment(loan *domain.Loan, sched *domain.Schedule, payment domain.PaymentData, component domain.Component, amount decimal.Decimal) *domain.Repayment {
	repayment := &domain.Repayment{
		ID:          uuid.New(),
		CustomerID:  loan.CustomerID,
		LoanID:      loan.ID,
		ScheduleID:  sched.ID,
		PaymentDate: payment.PaymentDate,
		DueDate:     sched.DueDate,
		Amount:      amount,
	}
	if payment.Source == domain.PaymentSourceBank {
		id := payment.BankChartAccountID
		repayment.BankChartAccountID = &id
	}
	switch component {
	case domain.ComponentInterest:
		repayment.Interest = amount
	case domain.ComponentPrincipal:
		repayment.Principal = amount
	}
	return repayment
}
