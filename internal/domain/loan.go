package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "active"
	LoanStatusComplete  = "complete"
	LoanStatusClosed    = "closed"
	LoanStatusSuspended = "suspended"
)

// Calculation methods for amortization schedules.
const (
	MethodFlatRate                 = "flat_rate"
	MethodReducingEqualInstallment = "reducing_equal_installment"
	MethodReducingEqualPrincipal   = "reducing_equal_principal"
)

// Loan represents a disbursed loan with an amortization schedule.
type Loan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	LoanNo       string          `json:"loan_no" db:"loan_no"`
	CustomerID   uuid.UUID       `json:"customer_id" db:"customer_id"`
	ProductID    uuid.UUID       `json:"product_id" db:"product_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"` // annual, percent
	PeriodMonths int             `json:"period_months" db:"period_months"`
	DisbursedOn  time.Time       `json:"disbursed_on" db:"disbursed_on"`
	Method       string          `json:"method" db:"method"`
	Status       string          `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// ActorContext carries the user and branch attributed to ledger postings.
// It is resolved by the request layer and passed into every posting
// operation; the engine never consults a session.
type ActorContext struct {
	UserID   uuid.UUID
	BranchID uuid.UUID
}

// Payment sources

const (
	PaymentSourceBank        = "bank"
	PaymentSourceCashDeposit = "cash_deposit"
)

// PaymentData describes one incoming payment. BankChartAccountID is the
// chart account backing the chosen bank account, resolved by the caller.
type PaymentData struct {
	PaymentDate        time.Time
	Source             string
	BankAccountID      uuid.UUID
	BankChartAccountID uuid.UUID
	CashDepositID      uuid.UUID
	Actor              ActorContext
}

// DTOs for requests and responses

type RepaymentRequest struct {
	LoanID             string `json:"loan_id" validate:"required,uuid"`
	PaymentDate        string `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Amount             string `json:"amount" validate:"required"`
	PaymentSource      string `json:"payment_source" validate:"required,oneof=bank cash_deposit"`
	BankAccountID      string `json:"bank_account_id" validate:"required_if=PaymentSource bank,omitempty,uuid"`
	BankChartAccountID string `json:"bank_chart_account_id" validate:"required_if=PaymentSource bank,omitempty,uuid"`
	CashDepositID      string `json:"cash_deposit_id" validate:"required_if=PaymentSource cash_deposit,omitempty,uuid"`
}

type SettlementRequest struct {
	LoanID             string `json:"loan_id" validate:"required,uuid"`
	PaymentDate        string `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Amount             string `json:"amount" validate:"required"`
	PaymentSource      string `json:"payment_source" validate:"required,oneof=bank cash_deposit"`
	BankAccountID      string `json:"bank_account_id" validate:"required_if=PaymentSource bank,omitempty,uuid"`
	BankChartAccountID string `json:"bank_chart_account_id" validate:"required_if=PaymentSource bank,omitempty,uuid"`
	CashDepositID      string `json:"cash_deposit_id" validate:"required_if=PaymentSource cash_deposit,omitempty,uuid"`
}

type UpdateRepaymentRequest struct {
	PaymentDate        string `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Amount             string `json:"amount" validate:"required"`
	PaymentSource      string `json:"payment_source" validate:"required,oneof=bank cash_deposit"`
	BankAccountID      string `json:"bank_account_id" validate:"required_if=PaymentSource bank,omitempty,uuid"`
	BankChartAccountID string `json:"bank_chart_account_id" validate:"required_if=PaymentSource bank,omitempty,uuid"`
	CashDepositID      string `json:"cash_deposit_id" validate:"required_if=PaymentSource cash_deposit,omitempty,uuid"`
}

type RemovePenaltyRequest struct {
	LoanID     string `json:"loan_id" validate:"required,uuid"`
	ScheduleID string `json:"schedule_id" validate:"required,uuid"`
	Amount     string `json:"amount" validate:"required"`
	Reason     string `json:"reason" validate:"max=500"`
}

type BulkRepaymentRequest struct {
	Items []RepaymentRequest `json:"items" validate:"required,min=1,dive"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type SchedulePreviewRequest struct {
	Method string `json:"method" validate:"required,oneof=flat_rate reducing_equal_installment reducing_equal_principal"`
}

// RepaymentResult is returned by ProcessRepayment.
type RepaymentResult struct {
	PaidAmount       decimal.Decimal      `json:"paid_amount"`
	RemainingBalance decimal.Decimal      `json:"remaining_balance"`
	Allocations      []ScheduleAllocation `json:"allocations"`
	LoanStatus       string               `json:"loan_status"`
	Warnings         []string             `json:"warnings,omitempty"`
}

// BulkRepaymentItem is one parsed entry of a bulk repayment batch.
type BulkRepaymentItem struct {
	LoanID  uuid.UUID
	Amount  decimal.Decimal
	Payment PaymentData
}

// BulkRepaymentItemResult reports the outcome of a single batch entry.
// A failed entry carries the error message and leaves the rest of the
// batch untouched.
type BulkRepaymentItemResult struct {
	LoanID string           `json:"loan_id"`
	Result *RepaymentResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// BulkRepaymentResult is returned by ProcessBulkRepayments.
type BulkRepaymentResult struct {
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
	Items     []BulkRepaymentItemResult `json:"items"`
}

// SettlementResult is returned by ProcessSettlement.
type SettlementResult struct {
	CurrentInterestPaid decimal.Decimal `json:"current_interest_paid"`
	TotalPrincipalPaid  decimal.Decimal `json:"total_principal_paid"`
	LoanClosed          bool            `json:"loan_closed"`
	Warnings            []string        `json:"warnings,omitempty"`
}
