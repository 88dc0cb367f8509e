package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanProduct carries repayment configuration shared by loans of the same
// product: the component priority order and the chart accounts used for
// ledger postings. Read-only to the engine.
type LoanProduct struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	InterestMethod string    `json:"interest_method" db:"interest_method"`
	RepaymentOrder string    `json:"repayment_order" db:"repayment_order"`

	PrincipalReceivableAccountID *uuid.UUID `json:"principal_receivable_account_id" db:"principal_receivable_account_id"`
	InterestReceivableAccountID  *uuid.UUID `json:"interest_receivable_account_id" db:"interest_receivable_account_id"`
	InterestRevenueAccountID     *uuid.UUID `json:"interest_revenue_account_id" db:"interest_revenue_account_id"`

	// Fee and penalty configurations attached to the product, loaded
	// alongside it. Chart account resolution scans these in order.
	Fees      []FeeConfig     `json:"fees" db:"-"`
	Penalties []PenaltyConfig `json:"penalties" db:"-"`
}

// FeeConfig is one fee attached to a product.
type FeeConfig struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	IncludeInSchedule bool            `json:"include_in_schedule" db:"include_in_schedule"`
	ChartAccountID    *uuid.UUID      `json:"chart_account_id" db:"chart_account_id"`
}

// PenaltyConfig is one penalty attached to a product.
type PenaltyConfig struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	Amount              decimal.Decimal `json:"amount" db:"amount"`
	ReceivableAccountID *uuid.UUID      `json:"penalty_receivables_account_id" db:"penalty_receivables_account_id"`
	IncomeAccountID     *uuid.UUID      `json:"penalty_income_account_id" db:"penalty_income_account_id"`
}

// FeeChartAccount returns the chart account of the first schedule-eligible
// fee that has one configured, or nil.
func (p *LoanProduct) FeeChartAccount() *uuid.UUID {
	for _, fee := range p.Fees {
		if fee.IncludeInSchedule && fee.ChartAccountID != nil {
			return fee.ChartAccountID
		}
	}
	return nil
}

// PenaltyChartAccount returns the receivable chart account of the first
// penalty that has one configured, or nil.
func (p *LoanProduct) PenaltyChartAccount() *uuid.UUID {
	for _, penalty := range p.Penalties {
		if penalty.ReceivableAccountID != nil {
			return penalty.ReceivableAccountID
		}
	}
	return nil
}
