package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Schedule is one due installment of a loan. The due components are fixed
// at generation time; they are only ever reduced by an explicit penalty
// waiver, never by payment. Payments are tracked separately as Repayments.
type Schedule struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LoanID        uuid.UUID       `json:"loan_id" db:"loan_id"`
	CustomerID    uuid.UUID       `json:"customer_id" db:"customer_id"`
	InstallmentNo int             `json:"installment_no" db:"installment_no"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	Principal     decimal.Decimal `json:"principal" db:"principal"`
	Interest      decimal.Decimal `json:"interest" db:"interest"`
	FeeAmount     decimal.Decimal `json:"fee_amount" db:"fee_amount"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// TotalDue is the sum of all due components.
func (s *Schedule) TotalDue() decimal.Decimal {
	return s.Principal.Add(s.Interest).Add(s.FeeAmount).Add(s.PenaltyAmount)
}

// Due returns the originally due amount for a component.
func (s *Schedule) Due(c Component) decimal.Decimal {
	switch c {
	case ComponentPrincipal:
		return s.Principal
	case ComponentInterest:
		return s.Interest
	case ComponentFee:
		return s.FeeAmount
	case ComponentPenalty:
		return s.PenaltyAmount
	}
	return decimal.Zero
}

// PaidTotals aggregates the amounts already applied to a schedule's
// components by prior repayments.
type PaidTotals struct {
	Principal decimal.Decimal `db:"principal"`
	Interest  decimal.Decimal `db:"interest"`
	Fee       decimal.Decimal `db:"fee_amount"`
	Penalty   decimal.Decimal `db:"penalty_amount"`
}

// Paid returns the applied total for a component.
func (p PaidTotals) Paid(c Component) decimal.Decimal {
	switch c {
	case ComponentPrincipal:
		return p.Principal
	case ComponentInterest:
		return p.Interest
	case ComponentFee:
		return p.Fee
	case ComponentPenalty:
		return p.Penalty
	}
	return decimal.Zero
}

// Total is the sum across all components.
func (p PaidTotals) Total() decimal.Decimal {
	return p.Principal.Add(p.Interest).Add(p.Fee).Add(p.Penalty)
}

// ScheduleAllocation is the per-schedule outcome of one payment allocation.
type ScheduleAllocation struct {
	ScheduleID    uuid.UUID       `json:"schedule_id"`
	Amount        decimal.Decimal `json:"amount"`
	Principal     decimal.Decimal `json:"principal"`
	Interest      decimal.Decimal `json:"interest"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
}

// Installment is one generated amortization period before persistence.
type Installment struct {
	InstallmentNo    int             `json:"installment_no"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	FeeAmount        decimal.Decimal `json:"fee_amount"`
	PenaltyAmount    decimal.Decimal `json:"penalty_amount"`
	TotalInstallment decimal.Decimal `json:"total_installment"`
}
