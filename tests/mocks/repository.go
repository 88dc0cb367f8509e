package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/repository"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLoanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanProduct), args.Error(1)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Schedule, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ListUnpaid(ctx context.Context, loanID uuid.UUID) ([]*domain.Schedule, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) UpdatePenaltyAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockScheduleRepository) ListDueBefore(ctx context.Context, loanID uuid.UUID, asOf time.Time) ([]*domain.Schedule, error) {
	args := m.Called(ctx, loanID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Schedule), args.Error(1)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Repayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repayment), args.Error(1)
}

func (m *MockRepaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repayment), args.Error(1)
}

func (m *MockRepaymentRepository) PaidTotals(ctx context.Context, scheduleID uuid.UUID) (domain.PaidTotals, error) {
	args := m.Called(ctx, scheduleID)
	return args.Get(0).(domain.PaidTotals), args.Error(1)
}

func (m *MockRepaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, tx *domain.GLTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID, types []string) ([]*domain.GLTransaction, error) {
	args := m.Called(ctx, transactionID, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GLTransaction), args.Error(1)
}

func (m *MockLedgerRepository) DeleteByTransaction(ctx context.Context, transactionID uuid.UUID, types []string) (int64, error) {
	args := m.Called(ctx, transactionID, types)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) AccrualExists(ctx context.Context, key domain.AccrualKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) ReducePenaltyAmounts(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal) (int64, error) {
	args := m.Called(ctx, loanID, amount)
	return args.Get(0).(int64), args.Error(1)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, receipt *domain.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) CreateItem(ctx context.Context, item *domain.ReceiptItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockReceiptRepository) GetByReference(ctx context.Context, repaymentID uuid.UUID) (*domain.Receipt, error) {
	args := m.Called(ctx, repaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) DeleteItems(ctx context.Context, receiptID uuid.UUID) error {
	args := m.Called(ctx, receiptID)
	return args.Error(0)
}

func (m *MockReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Create(ctx context.Context, journal *domain.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) CreateItem(ctx context.Context, item *domain.JournalItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockJournalRepository) GetByReference(ctx context.Context, repaymentID uuid.UUID) (*domain.Journal, error) {
	args := m.Called(ctx, repaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) DeleteItems(ctx context.Context, journalID uuid.UUID) error {
	args := m.Called(ctx, journalID)
	return args.Error(0)
}

func (m *MockJournalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCollateralRepository struct {
	mock.Mock
}

func (m *MockCollateralRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CashCollateral, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashCollateral), args.Error(1)
}

func (m *MockCollateralRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.CashCollateral, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashCollateral), args.Error(1)
}

func (m *MockCollateralRepository) GetByChartAccount(ctx context.Context, chartAccountID, customerID uuid.UUID) (*domain.CashCollateral, error) {
	args := m.Called(ctx, chartAccountID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashCollateral), args.Error(1)
}

func (m *MockCollateralRepository) Decrement(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockCollateralRepository) Increment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockStore satisfies repository.Store with the mocked repositories above.
// WithinTx simply runs the function against the same repos; rollback
// behavior is exercised by integration tests, not here.
type MockStore struct {
	Loans      *MockLoanRepository
	Products   *MockProductRepository
	Schedules  *MockScheduleRepository
	Repayments *MockRepaymentRepository
	Ledger     *MockLedgerRepository
	Receipts   *MockReceiptRepository
	Journals   *MockJournalRepository
	Collateral *MockCollateralRepository
}

func NewMockStore() *MockStore {
	return &MockStore{
		Loans:      &MockLoanRepository{},
		Products:   &MockProductRepository{},
		Schedules:  &MockScheduleRepository{},
		Repayments: &MockRepaymentRepository{},
		Ledger:     &MockLedgerRepository{},
		Receipts:   &MockReceiptRepository{},
		Journals:   &MockJournalRepository{},
		Collateral: &MockCollateralRepository{},
	}
}

func (s *MockStore) Repos() *repository.Repos {
	return &repository.Repos{
		Loans:      s.Loans,
		Products:   s.Products,
		Schedules:  s.Schedules,
		Repayments: s.Repayments,
		Ledger:     s.Ledger,
		Receipts:   s.Receipts,
		Journals:   s.Journals,
		Collateral: s.Collateral,
	}
}

func (s *MockStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r *repository.Repos) error) error {
	return fn(ctx, s.Repos())
}

// AssertExpectations checks every mocked repository at once.
func (s *MockStore) AssertExpectations(t mock.TestingT) {
	s.Loans.AssertExpectations(t)
	s.Products.AssertExpectations(t)
	s.Schedules.AssertExpectations(t)
	s.Repayments.AssertExpectations(t)
	s.Ledger.AssertExpectations(t)
	s.Receipts.AssertExpectations(t)
	s.Journals.AssertExpectations(t)
	s.Collateral.AssertExpectations(t)
}
