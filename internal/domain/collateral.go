package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashCollateral is a customer's prepaid balance usable to fund repayments
// in lieu of a bank transfer. The balance decreases when consumed by a
// repayment and increases when a repayment funded from it is reversed; it
// never goes negative.
type CashCollateral struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CustomerID     uuid.UUID       `json:"customer_id" db:"customer_id"`
	ChartAccountID uuid.UUID       `json:"chart_account_id" db:"chart_account_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}
