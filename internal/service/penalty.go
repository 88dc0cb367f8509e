package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/repository"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

// RemovePenalty waives part or all of the unpaid penalty on a schedule.
// Both the schedule's penalty_amount and any Penalty-typed ledger entries
// for the loan are reduced so the receivable stays in step. The schedule
// must belong to the given loan.
func (s *RepaymentService) RemovePenalty(ctx context.Context, loanID, scheduleID uuid.UUID, amount decimal.Decimal, reason string) error {
	if amount.IsNegative() {
		return customError.WrapValidation("waiver amount cannot be negative")
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repos) error {
		sched, err := r.Schedules.GetByID(ctx, scheduleID)
		if err != nil {
			return err
		}
		if sched.LoanID != loanID {
			return customError.WrapValidation("schedule does not belong to the given loan")
		}
		_, err = s.removePenaltyTx(ctx, r, sched, sched.LoanID, amount, reason)
		return err
	})
	return err
}

// removePenaltyTx applies the waiver inside an existing transaction and
// returns the schedule's new penalty amount. The repayment path calls it
// for the on-time waiver before allocating.
func (s *RepaymentService) removePenaltyTx(ctx context.Context, r *repository.Repos, sched *domain.Schedule, loanID uuid.UUID, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	paid, err := r.Repayments.PaidTotals(ctx, sched.ID)
	if err != nil {
		return sched.PenaltyAmount, err
	}

	unpaidPenalty := sched.PenaltyAmount.Sub(paid.Penalty)
	if unpaidPenalty.IsNegative() {
		unpaidPenalty = decimal.Zero
	}
	if amount.GreaterThan(unpaidPenalty) {
		return sched.PenaltyAmount, customError.WrapExceedsPenalty(unpaidPenalty, amount)
	}
	if amount.IsZero() {
		return sched.PenaltyAmount, nil
	}

	if _, err := r.Ledger.ReducePenaltyAmounts(ctx, loanID, amount); err != nil {
		return sched.PenaltyAmount, err
	}

	newPenalty := sched.PenaltyAmount.Sub(amount)
	if newPenalty.IsNegative() {
		newPenalty = decimal.Zero
	}
	if err := r.Schedules.UpdatePenaltyAmount(ctx, sched.ID, newPenalty); err != nil {
		return sched.PenaltyAmount, err
	}

	s.events.PenaltyWaived(sched.ID, amount, reason)
	return newPenalty, nil
}
