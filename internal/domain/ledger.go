package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Nature of a ledger line.
const (
	NatureDebit  = "debit"
	NatureCredit = "credit"
)

// Transaction type tags. Together with the transaction id they form the
// only key used to match ledger entries back to their originating record.
const (
	TxTypeReceipt          = "receipt"
	TxTypeJournalRepayment = "journal repayment"
	TxTypeSettleInterest   = "Settle Interest"
	TxTypeSettlePrincipal  = "Settle Principal"
	TxTypeMatureInterest   = "Mature Interest"
	TxTypePenalty          = "Penalty"
)

// RepaymentTxTypes are the transaction type tags a repayment's ledger
// entries may carry, used when reversing it.
func RepaymentTxTypes() []string {
	return []string{TxTypeReceipt, TxTypeJournalRepayment, TxTypeSettleInterest, TxTypeSettlePrincipal}
}

// GLTransaction is a single-sided accounting line. Created atomically with
// its owning Repayment/Receipt/Journal, removed only by a full reversal of
// that record, never edited in place (penalty waiver excepted, which
// reduces matching penalty postings).
type GLTransaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ChartAccountID  uuid.UUID       `json:"chart_account_id" db:"chart_account_id"`
	CustomerID      uuid.UUID       `json:"customer_id" db:"customer_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Nature          string          `json:"nature" db:"nature"`
	TransactionID   uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	TransactionType string          `json:"transaction_type" db:"transaction_type"`
	Date            time.Time       `json:"date" db:"date"`
	Description     string          `json:"description" db:"description"`
	BranchID        uuid.UUID       `json:"branch_id" db:"branch_id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
}

// AccrualKey identifies one maturity-interest accrual posting. Queried
// before posting interest credits so pre-accrued interest is settled
// against the receivable account instead of recognized twice as income.
type AccrualKey struct {
	ChartAccountID  uuid.UUID
	CustomerID      uuid.UUID
	Date            time.Time
	Amount          decimal.Decimal
	TransactionType string
}

// Receipt groups the ledger entries of a bank/cash payment.
type Receipt struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Reference     uuid.UUID       `json:"reference" db:"reference"` // repayment id
	ReferenceType string          `json:"reference_type" db:"reference_type"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Date          time.Time       `json:"date" db:"date"`
	Description   string          `json:"description" db:"description"`
	BankAccountID uuid.UUID       `json:"bank_account_id" db:"bank_account_id"`
	PayeeID       uuid.UUID       `json:"payee_id" db:"payee_id"`
	BranchID      uuid.UUID       `json:"branch_id" db:"branch_id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
}

// ReceiptItem records one per-component credit for traceability.
type ReceiptItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ReceiptID      uuid.UUID       `json:"receipt_id" db:"receipt_id"`
	ChartAccountID uuid.UUID       `json:"chart_account_id" db:"chart_account_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Description    string          `json:"description" db:"description"`
}

// Journal groups the ledger entries of a cash-collateral-funded payment.
type Journal struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Reference     uuid.UUID `json:"reference" db:"reference"` // repayment id
	ReferenceType string    `json:"reference_type" db:"reference_type"`
	CustomerID    uuid.UUID `json:"customer_id" db:"customer_id"`
	Description   string    `json:"description" db:"description"`
	Date          time.Time `json:"date" db:"date"`
	BranchID      uuid.UUID `json:"branch_id" db:"branch_id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
}

const JournalTypeWithdrawal = "Withdrawal"

// JournalItem is one line of a journal.
type JournalItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	JournalID      uuid.UUID       `json:"journal_id" db:"journal_id"`
	ChartAccountID uuid.UUID       `json:"chart_account_id" db:"chart_account_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Nature         string          `json:"nature" db:"nature"`
	Description    string          `json:"description" db:"description"`
}
