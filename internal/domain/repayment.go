package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repayment records the amounts actually applied to each component of one
// schedule by a single payment event. Immutable once created; only the
// reversal path removes it, after undoing its side effects.
type Repayment struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	CustomerID         uuid.UUID       `json:"customer_id" db:"customer_id"`
	LoanID             uuid.UUID       `json:"loan_id" db:"loan_id"`
	ScheduleID         uuid.UUID       `json:"loan_schedule_id" db:"loan_schedule_id"`
	BankChartAccountID *uuid.UUID      `json:"bank_chart_account_id" db:"bank_chart_account_id"`
	PaymentDate        time.Time       `json:"payment_date" db:"payment_date"`
	DueDate            time.Time       `json:"due_date" db:"due_date"`
	Principal          decimal.Decimal `json:"principal" db:"principal"`
	Interest           decimal.Decimal `json:"interest" db:"interest"`
	FeeAmount          decimal.Decimal `json:"fee_amount" db:"fee_amount"`
	PenaltyAmount      decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// ComponentsTotal is the sum of the applied component amounts.
func (r *Repayment) ComponentsTotal() decimal.Decimal {
	return r.Principal.Add(r.Interest).Add(r.FeeAmount).Add(r.PenaltyAmount)
}
