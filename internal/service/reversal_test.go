package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/tests/mocks"
)

func testRepayment(f *serviceFixture, scheduleID uuid.UUID) *domain.Repayment {
	return &domain.Repayment{
		ID:          uuid.New(),
		CustomerID:  f.loan.CustomerID,
		LoanID:      f.loan.ID,
		ScheduleID:  scheduleID,
		PaymentDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Principal:   dec("1000"),
		Interest:    dec("200"),
		Amount:      dec("1200"),
	}
}

func TestDeleteRepayment_BankFunded(t *testing.T) {
	f := newServiceFixture()
	sched := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	rep := testRepayment(f, sched.ID)
	receipt := &domain.Receipt{ID: uuid.New(), Reference: rep.ID}

	f.store.Repayments.On("GetByID", mock.Anything, rep.ID).Return(rep, nil)
	f.store.Loans.On("GetByIDForUpdate", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.store.Ledger.On("ListByTransaction", mock.Anything, rep.ID, []string{domain.TxTypeJournalRepayment}).
		Return([]*domain.GLTransaction{}, nil)
	f.store.Ledger.On("DeleteByTransaction", mock.Anything, rep.ID, domain.RepaymentTxTypes()).Return(int64(0), nil)
	f.store.Receipts.On("GetByReference", mock.Anything, rep.ID).Return(receipt, nil)
	f.store.Ledger.On("DeleteByTransaction", mock.Anything, receipt.ID, []string{domain.TxTypeReceipt}).Return(int64(3), nil)
	f.store.Receipts.On("DeleteItems", mock.Anything, receipt.ID).Return(nil)
	f.store.Receipts.On("Delete", mock.Anything, receipt.ID).Return(nil)
	f.store.Journals.On("GetByReference", mock.Anything, rep.ID).Return(nil, nil)
	f.store.Repayments.On("Delete", mock.Anything, rep.ID).Return(nil)

	err := f.service.DeleteRepayment(context.Background(), rep.ID)
	require.NoError(t, err)

	f.store.Receipts.AssertExpectations(t)
	f.store.Ledger.AssertExpectations(t)
	f.store.Collateral.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteRepayment_CollateralRestored(t *testing.T) {
	f := newServiceFixture()
	sched := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	rep := testRepayment(f, sched.ID)
	collateral := &domain.CashCollateral{
		ID:             uuid.New(),
		CustomerID:     f.loan.CustomerID,
		ChartAccountID: uuid.New(),
		Amount:         dec("3800"),
	}
	journal := &domain.Journal{ID: uuid.New(), Reference: rep.ID}

	// The journal-repayment debit marks the collateral funding source.
	marker := &domain.GLTransaction{
		Nature:         domain.NatureDebit,
		ChartAccountID: collateral.ChartAccountID,
	}

	f.store.Repayments.On("GetByID", mock.Anything, rep.ID).Return(rep, nil)
	f.store.Loans.On("GetByIDForUpdate", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.store.Ledger.On("ListByTransaction", mock.Anything, rep.ID, []string{domain.TxTypeJournalRepayment}).
		Return([]*domain.GLTransaction{marker}, nil)
	f.store.Ledger.On("DeleteByTransaction", mock.Anything, rep.ID, domain.RepaymentTxTypes()).Return(int64(3), nil)
	f.store.Receipts.On("GetByReference", mock.Anything, rep.ID).Return(nil, nil)
	f.store.Journals.On("GetByReference", mock.Anything, rep.ID).Return(journal, nil)
	f.store.Journals.On("DeleteItems", mock.Anything, journal.ID).Return(nil)
	f.store.Journals.On("Delete", mock.Anything, journal.ID).Return(nil)
	f.store.Collateral.On("GetByChartAccount", mock.Anything, collateral.ChartAccountID, f.loan.CustomerID).
		Return(collateral, nil)
	f.store.Collateral.On("Increment", mock.Anything, collateral.ID, dec("1200")).Return(nil)
	f.store.Repayments.On("Delete", mock.Anything, rep.ID).Return(nil)

	err := f.service.DeleteRepayment(context.Background(), rep.ID)
	require.NoError(t, err)

	f.store.Collateral.AssertExpectations(t)
	f.store.Journals.AssertExpectations(t)
}

func TestDeleteRepayment_ReopensClosedLoan(t *testing.T) {
	f := newServiceFixture()
	f.loan.Status = domain.LoanStatusComplete
	sched := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	rep := testRepayment(f, sched.ID)

	f.store.Repayments.On("GetByID", mock.Anything, rep.ID).Return(rep, nil)
	f.store.Loans.On("GetByIDForUpdate", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.store.Ledger.On("ListByTransaction", mock.Anything, rep.ID, []string{domain.TxTypeJournalRepayment}).
		Return([]*domain.GLTransaction{}, nil)
	f.store.Ledger.On("DeleteByTransaction", mock.Anything, rep.ID, domain.RepaymentTxTypes()).Return(int64(3), nil)
	f.store.Receipts.On("GetByReference", mock.Anything, rep.ID).Return(nil, nil)
	f.store.Journals.On("GetByReference", mock.Anything, rep.ID).Return(nil, nil)

	// With this repayment excluded the schedule is no longer covered.
	f.store.Schedules.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Schedule{sched}, nil)
	f.store.Repayments.On("PaidTotals", mock.Anything, sched.ID).Return(domain.PaidTotals{
		Principal: dec("1000"),
		Interest:  dec("200"),
	}, nil)
	f.store.Loans.On("UpdateStatus", mock.Anything, f.loan.ID, domain.LoanStatusActive).Return(nil)
	f.store.Repayments.On("Delete", mock.Anything, rep.ID).Return(nil)

	err := f.service.DeleteRepayment(context.Background(), rep.ID)
	require.NoError(t, err)

	f.store.Loans.AssertExpectations(t)
}

func TestBulkDeleteRepayments_AbortsOnFirstFailure(t *testing.T) {
	f := newServiceFixture()
	missing := uuid.New()

	f.store.Repayments.On("GetByID", mock.Anything, missing).Return(nil, errors.New("sql: no rows in result set"))

	err := f.service.BulkDeleteRepayments(context.Background(), []uuid.UUID{missing, uuid.New()})
	require.Error(t, err)

	// The second id is never looked up once the first reversal fails.
	f.store.Repayments.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestBulkDeleteRepayments_EmptyRejected(t *testing.T) {
	f := &serviceFixture{store: mocks.NewMockStore()}
	f.service = NewRepaymentService(f.store, nil, nil, nil)

	err := f.service.BulkDeleteRepayments(context.Background(), nil)
	require.Error(t, err)
}

func TestUpdateRepayment_ReversesThenReplays(t *testing.T) {
	f := newServiceFixture()
	sched := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	rep := testRepayment(f, sched.ID)
	receipt := &domain.Receipt{ID: uuid.New(), Reference: rep.ID}
	payment := bankPayment(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC))

	// Reversal leg.
	f.store.Repayments.On("GetByID", mock.Anything, rep.ID).Return(rep, nil)
	f.store.Loans.On("GetByIDForUpdate", mock.Anything, f.loan.ID).Return(f.loan, nil)
	f.store.Ledger.On("ListByTransaction", mock.Anything, rep.ID, []string{domain.TxTypeJournalRepayment}).
		Return([]*domain.GLTransaction{}, nil)
	f.store.Ledger.On("DeleteByTransaction", mock.Anything, rep.ID, domain.RepaymentTxTypes()).Return(int64(0), nil)
	f.store.Receipts.On("GetByReference", mock.Anything, rep.ID).Return(receipt, nil)
	f.store.Ledger.On("DeleteByTransaction", mock.Anything, receipt.ID, []string{domain.TxTypeReceipt}).Return(int64(3), nil)
	f.store.Receipts.On("DeleteItems", mock.Anything, receipt.ID).Return(nil)
	f.store.Receipts.On("Delete", mock.Anything, receipt.ID).Return(nil)
	f.store.Journals.On("GetByReference", mock.Anything, rep.ID).Return(nil, nil)
	f.store.Repayments.On("Delete", mock.Anything, rep.ID).Return(nil)

	// Replay leg.
	f.store.Products.On("GetByID", mock.Anything, f.loan.ProductID).Return(f.product, nil)
	f.store.Schedules.On("ListUnpaid", mock.Anything, f.loan.ID).Return([]*domain.Schedule{sched}, nil)
	f.store.Repayments.On("PaidTotals", mock.Anything, sched.ID).Return(domain.PaidTotals{}, nil)
	f.store.Repayments.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Repayment) bool {
		return r.Amount.Equal(dec("900"))
	})).Return(nil)
	f.store.Receipts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Receipt")).Return(nil)
	f.store.Receipts.On("CreateItem", mock.Anything, mock.AnythingOfType("*domain.ReceiptItem")).Return(nil)
	f.store.Ledger.On("Create", mock.Anything, mock.AnythingOfType("*domain.GLTransaction")).Return(nil)
	f.store.Schedules.On("ListByLoan", mock.Anything, f.loan.ID).Return([]*domain.Schedule{sched}, nil)

	result, err := f.service.UpdateRepayment(context.Background(), rep.ID, dec("900"), payment)
	require.NoError(t, err)

	assert.True(t, result.PaidAmount.Equal(dec("900")))
	f.store.Repayments.AssertExpectations(t)
}
