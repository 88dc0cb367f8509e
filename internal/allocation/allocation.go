// Package allocation computes how a payment amount spreads across the
// components of an installment, following the product's priority order.
package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
)

// RemainingDue returns the unpaid remainder per component of a schedule,
// given the totals already applied by prior repayments. Negative remainders
// are clamped to zero so an overpaid component can never absorb more.
func RemainingDue(sched *domain.Schedule, paid domain.PaidTotals) map[domain.Component]decimal.Decimal {
	remaining := make(map[domain.Component]decimal.Decimal, 4)
	for _, c := range []domain.Component{
		domain.ComponentPenalty, domain.ComponentFee, domain.ComponentInterest, domain.ComponentPrincipal,
	} {
		due := sched.Due(c).Sub(paid.Paid(c))
		if due.IsNegative() {
			due = decimal.Zero
		}
		remaining[c] = due
	}
	return remaining
}

// Allocate walks the priority order and assigns min(available, remaining)
// to each component with an outstanding remainder, decrementing the
// available amount as it goes. The result is deterministic for identical
// inputs.
func Allocate(sched *domain.Schedule, paid domain.PaidTotals, order []domain.Component, available decimal.Decimal) domain.ScheduleAllocation {
	remaining := RemainingDue(sched, paid)

	alloc := domain.ScheduleAllocation{
		ScheduleID:    sched.ID,
		Amount:        decimal.Zero,
		Principal:     decimal.Zero,
		Interest:      decimal.Zero,
		FeeAmount:     decimal.Zero,
		PenaltyAmount: decimal.Zero,
	}

	current := available
	for _, component := range order {
		if !current.IsPositive() {
			break
		}
		due := remaining[component]
		if !due.IsPositive() {
			continue
		}

		amount := decimal.Min(current, due)
		current = current.Sub(amount)

		switch component {
		case domain.ComponentPrincipal:
			alloc.Principal = amount
		case domain.ComponentInterest:
			alloc.Interest = amount
		case domain.ComponentFee:
			alloc.FeeAmount = amount
		case domain.ComponentPenalty:
			alloc.PenaltyAmount = amount
		}
	}

	alloc.Amount = available.Sub(current)
	return alloc
}
