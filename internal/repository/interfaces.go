package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
)

// LoanRepository defines the interface for loan data operations.
type LoanRepository interface {
	// GetByID retrieves a loan by id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByIDForUpdate retrieves a loan and locks its row for the duration
	// of the enclosing transaction. Concurrent repayment calls against the
	// same loan serialize on this lock.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// UpdateStatus changes the loan status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// ListActive returns active loans (used by the accrual scheduler).
	ListActive(ctx context.Context) ([]*domain.Loan, error)
}

// ProductRepository loads loan products with their fee and penalty
// configurations attached.
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanProduct, error)
}

// ScheduleRepository defines the interface for installment schedules.
type ScheduleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)

	// ListByLoan returns all schedules of a loan ordered by due date.
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Schedule, error)

	// ListUnpaid returns schedules whose applied repayment totals are
	// strictly less than their due totals, ordered by due date.
	ListUnpaid(ctx context.Context, loanID uuid.UUID) ([]*domain.Schedule, error)

	// UpdatePenaltyAmount sets a schedule's due penalty (waiver path).
	UpdatePenaltyAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// ListDueBefore returns schedules of a loan due on or before the given
	// date (used by the accrual scheduler).
	ListDueBefore(ctx context.Context, loanID uuid.UUID, asOf time.Time) ([]*domain.Schedule, error)
}

// RepaymentRepository defines the interface for repayment records.
type RepaymentRepository interface {
	Create(ctx context.Context, repayment *domain.Repayment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Repayment, error)
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error)

	// PaidTotals sums the applied component amounts for one schedule.
	PaidTotals(ctx context.Context, scheduleID uuid.UUID) (domain.PaidTotals, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerRepository defines the interface for GL transactions.
type LedgerRepository interface {
	Create(ctx context.Context, tx *domain.GLTransaction) error

	// ListByTransaction returns entries matched by the reversal key.
	ListByTransaction(ctx context.Context, transactionID uuid.UUID, types []string) ([]*domain.GLTransaction, error)

	// DeleteByTransaction removes entries matched by the reversal key and
	// returns the number deleted.
	DeleteByTransaction(ctx context.Context, transactionID uuid.UUID, types []string) (int64, error)

	// AccrualExists reports whether a posting matching the idempotency key
	// already exists.
	AccrualExists(ctx context.Context, key domain.AccrualKey) (bool, error)

	// ReducePenaltyAmounts subtracts amount from positive penalty-type
	// entries tagged to the loan, returning the number updated.
	ReducePenaltyAmounts(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal) (int64, error)
}

// ReceiptRepository defines the interface for receipts and their items.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *domain.Receipt) error
	CreateItem(ctx context.Context, item *domain.ReceiptItem) error

	// GetByReference finds the receipt created for a repayment, or nil.
	GetByReference(ctx context.Context, repaymentID uuid.UUID) (*domain.Receipt, error)

	DeleteItems(ctx context.Context, receiptID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// JournalRepository defines the interface for journals and their items.
type JournalRepository interface {
	Create(ctx context.Context, journal *domain.Journal) error
	CreateItem(ctx context.Context, item *domain.JournalItem) error

	// GetByReference finds the journal created for a repayment, or nil.
	GetByReference(ctx context.Context, repaymentID uuid.UUID) (*domain.Journal, error)

	DeleteItems(ctx context.Context, journalID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CollateralRepository defines the interface for cash collateral balances.
type CollateralRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CashCollateral, error)

	// GetByIDForUpdate locks the collateral row so read-check-decrement is
	// atomic per record.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.CashCollateral, error)

	// GetByChartAccount finds a customer's collateral backed by the given
	// chart account (reversal path), or nil.
	GetByChartAccount(ctx context.Context, chartAccountID, customerID uuid.UUID) (*domain.CashCollateral, error)

	// Decrement reduces the balance, failing if it would go negative.
	Decrement(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// Increment restores balance consumed by a reversed repayment.
	Increment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// Repos bundles every repository bound to one execution scope, either the
// bare connection pool or a single transaction.
type Repos struct {
	Loans      LoanRepository
	Products   ProductRepository
	Schedules  ScheduleRepository
	Repayments RepaymentRepository
	Ledger     LedgerRepository
	Receipts   ReceiptRepository
	Journals   JournalRepository
	Collateral CollateralRepository
}

// Store provides repository access and the transaction boundary. Every
// engine operation runs inside one WithinTx call; any error rolls the
// whole transaction back so no partial state is ever visible.
type Store interface {
	Repos() *Repos
	WithinTx(ctx context.Context, fn func(ctx context.Context, r *Repos) error) error
}
