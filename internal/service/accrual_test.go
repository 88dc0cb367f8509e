package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendcore/loan-engine/internal/domain"
)

func TestAccrueMatureInterest_PostsPairOncePerInstallment(t *testing.T) {
	f := newServiceFixture()
	f.product.InterestReceivableAccountID = uuidPtr()
	asOf := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	matured := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	alreadyAccrued := f.schedule(2, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "1000", "150")

	f.store.Loans.On("ListActive", mock.Anything).Return([]*domain.Loan{f.loan}, nil)
	f.store.Products.On("GetByID", mock.Anything, f.loan.ProductID).Return(f.product, nil)
	f.store.Schedules.On("ListDueBefore", mock.Anything, f.loan.ID, asOf).
		Return([]*domain.Schedule{alreadyAccrued, matured}, nil)

	f.store.Ledger.On("AccrualExists", mock.Anything, mock.MatchedBy(func(key domain.AccrualKey) bool {
		return key.Amount.Equal(dec("150"))
	})).Return(true, nil)
	f.store.Ledger.On("AccrualExists", mock.Anything, mock.MatchedBy(func(key domain.AccrualKey) bool {
		return key.Amount.Equal(dec("200"))
	})).Return(false, nil)

	var posted []*domain.GLTransaction
	f.store.Ledger.On("Create", mock.Anything, mock.AnythingOfType("*domain.GLTransaction")).
		Run(func(args mock.Arguments) {
			posted = append(posted, args.Get(1).(*domain.GLTransaction))
		}).Return(nil)

	n, err := f.service.AccrueMatureInterest(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// One receivable debit and one revenue credit, nothing for the
	// installment that already has its pair.
	require.Len(t, posted, 2)
	assert.Equal(t, domain.NatureDebit, posted[0].Nature)
	assert.Equal(t, *f.product.InterestReceivableAccountID, posted[0].ChartAccountID)
	assert.Equal(t, domain.NatureCredit, posted[1].Nature)
	assert.Equal(t, *f.product.InterestRevenueAccountID, posted[1].ChartAccountID)
	assert.Equal(t, domain.TxTypeMatureInterest, posted[0].TransactionType)
}

func TestAccrueMatureInterest_SkipsWithoutAccounts(t *testing.T) {
	f := newServiceFixture()
	f.product.InterestReceivableAccountID = nil

	f.store.Loans.On("ListActive", mock.Anything).Return([]*domain.Loan{f.loan}, nil)
	f.store.Products.On("GetByID", mock.Anything, f.loan.ProductID).Return(f.product, nil)

	n, err := f.service.AccrueMatureInterest(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.store.Schedules.AssertNotCalled(t, "ListDueBefore", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyLatePenalties_PenalizesOverdueOnce(t *testing.T) {
	f := newServiceFixture()
	receivable := uuidPtr()
	income := uuidPtr()
	f.product.Penalties = []domain.PenaltyConfig{{
		Amount:              dec("50"),
		ReceivableAccountID: receivable,
		IncomeAccountID:     income,
	}}
	asOf := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	overdue := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	alreadyPenalized := f.schedule(2, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	alreadyPenalized.PenaltyAmount = dec("50")
	notYetDue := f.schedule(3, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "1000", "200")

	f.store.Loans.On("ListActive", mock.Anything).Return([]*domain.Loan{f.loan}, nil)
	f.store.Products.On("GetByID", mock.Anything, f.loan.ProductID).Return(f.product, nil)
	f.store.Schedules.On("ListUnpaid", mock.Anything, f.loan.ID).
		Return([]*domain.Schedule{alreadyPenalized, overdue, notYetDue}, nil)
	f.store.Schedules.On("UpdatePenaltyAmount", mock.Anything, overdue.ID, dec("50")).Return(nil)
	f.store.Ledger.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.GLTransaction) bool {
		return tx.TransactionType == domain.TxTypePenalty && tx.Amount.Equal(dec("50"))
	})).Return(nil)

	n, err := f.service.ApplyLatePenalties(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f.store.Schedules.AssertExpectations(t)
	f.store.Ledger.AssertNumberOfCalls(t, "Create", 2)
}

func TestApplyLatePenalties_NoConfigNoWork(t *testing.T) {
	f := newServiceFixture()

	f.store.Loans.On("ListActive", mock.Anything).Return([]*domain.Loan{f.loan}, nil)
	f.store.Products.On("GetByID", mock.Anything, f.loan.ProductID).Return(f.product, nil)

	n, err := f.service.ApplyLatePenalties(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.store.Schedules.AssertNotCalled(t, "ListUnpaid", mock.Anything, mock.Anything)
}
