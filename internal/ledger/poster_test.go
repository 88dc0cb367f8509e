package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/tests/mocks"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newUUIDPtr() *uuid.UUID {
	id := uuid.New()
	return &id
}

type fixture struct {
	store   *mocks.MockStore
	loan    *domain.Loan
	product *domain.LoanProduct
	input   PostInput
	posted  []*domain.GLTransaction
}

func newFixture() *fixture {
	f := &fixture{store: mocks.NewMockStore()}

	f.loan = &domain.Loan{
		ID:         uuid.New(),
		LoanNo:     "LN-0001",
		CustomerID: uuid.New(),
	}
	f.product = &domain.LoanProduct{
		ID:                           uuid.New(),
		PrincipalReceivableAccountID: newUUIDPtr(),
		InterestRevenueAccountID:     newUUIDPtr(),
	}

	repayment := &domain.Repayment{
		ID:         uuid.New(),
		CustomerID: f.loan.CustomerID,
		LoanID:     f.loan.ID,
		DueDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Principal:  dec("800"),
		Interest:   dec("200"),
		Amount:     dec("1000"),
	}
	f.input = PostInput{
		Loan:      f.loan,
		Product:   f.product,
		Repayment: repayment,
		Allocation: domain.ScheduleAllocation{
			Amount:    dec("1000"),
			Principal: dec("800"),
			Interest:  dec("200"),
		},
		Payment: domain.PaymentData{
			PaymentDate:        time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
			Source:             domain.PaymentSourceBank,
			BankAccountID:      uuid.New(),
			BankChartAccountID: uuid.New(),
		},
	}

	f.store.Ledger.On("Create", mock.Anything, mock.AnythingOfType("*domain.GLTransaction")).
		Run(func(args mock.Arguments) {
			f.posted = append(f.posted, args.Get(1).(*domain.GLTransaction))
		}).Return(nil)

	return f
}

func (f *fixture) balance() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, entry := range f.posted {
		switch entry.Nature {
		case domain.NatureDebit:
			debits = debits.Add(entry.Amount)
		case domain.NatureCredit:
			credits = credits.Add(entry.Amount)
		}
	}
	return debits, credits
}

func TestPostBankReceipt_BalancedPostings(t *testing.T) {
	f := newFixture()
	f.store.Receipts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Receipt")).Return(nil)
	f.store.Receipts.On("CreateItem", mock.Anything, mock.AnythingOfType("*domain.ReceiptItem")).Return(nil)

	warnings, err := PostBankReceipt(context.Background(), f.store.Repos(), f.input)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	debits, credits := f.balance()
	assert.True(t, debits.Equal(credits), "debits %s != credits %s", debits, credits)
	assert.True(t, debits.Equal(dec("1000")))

	// Every entry carries the receipt linkage.
	for _, entry := range f.posted {
		assert.Equal(t, domain.TxTypeReceipt, entry.TransactionType)
	}
}

func TestPostBankReceipt_MissingAccountSkipsCredit(t *testing.T) {
	f := newFixture()
	f.product.PrincipalReceivableAccountID = nil
	f.store.Receipts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Receipt")).Return(nil)
	f.store.Receipts.On("CreateItem", mock.Anything, mock.AnythingOfType("*domain.ReceiptItem")).Return(nil)

	warnings, err := PostBankReceipt(context.Background(), f.store.Repos(), f.input)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "principal")

	// Debit still covers the full amount; only the principal credit is gone.
	debits, credits := f.balance()
	assert.True(t, debits.Equal(dec("1000")))
	assert.True(t, credits.Equal(dec("200")))
}

func TestPostBankReceipt_InterestRoutedToReceivableAfterAccrual(t *testing.T) {
	f := newFixture()
	f.product.InterestReceivableAccountID = newUUIDPtr()
	f.store.Receipts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Receipt")).Return(nil)
	f.store.Receipts.On("CreateItem", mock.Anything, mock.AnythingOfType("*domain.ReceiptItem")).Return(nil)

	// Both sides of the maturity posting exist, so the credit must go to
	// the receivable account.
	f.store.Ledger.On("AccrualExists", mock.Anything, mock.MatchedBy(func(key domain.AccrualKey) bool {
		return key.TransactionType == domain.TxTypeMatureInterest
	})).Return(true, nil)

	_, err := PostBankReceipt(context.Background(), f.store.Repos(), f.input)
	require.NoError(t, err)

	var interestCredit *domain.GLTransaction
	for _, entry := range f.posted {
		if entry.Nature == domain.NatureCredit && entry.Amount.Equal(dec("200")) {
			interestCredit = entry
		}
	}
	require.NotNil(t, interestCredit)
	assert.Equal(t, *f.product.InterestReceivableAccountID, interestCredit.ChartAccountID)
}

func TestPostBankReceipt_InterestStaysOnRevenueWithoutAccrual(t *testing.T) {
	f := newFixture()
	f.product.InterestReceivableAccountID = newUUIDPtr()
	f.store.Receipts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Receipt")).Return(nil)
	f.store.Receipts.On("CreateItem", mock.Anything, mock.AnythingOfType("*domain.ReceiptItem")).Return(nil)
	f.store.Ledger.On("AccrualExists", mock.Anything, mock.Anything).Return(false, nil)

	_, err := PostBankReceipt(context.Background(), f.store.Repos(), f.input)
	require.NoError(t, err)

	var interestCredit *domain.GLTransaction
	for _, entry := range f.posted {
		if entry.Nature == domain.NatureCredit && entry.Amount.Equal(dec("200")) {
			interestCredit = entry
		}
	}
	require.NotNil(t, interestCredit)
	assert.Equal(t, *f.product.InterestRevenueAccountID, interestCredit.ChartAccountID)
}

func TestPostCollateralJournal_DrawsDownAndMirrors(t *testing.T) {
	f := newFixture()
	f.input.Payment.Source = domain.PaymentSourceCashDeposit

	collateral := &domain.CashCollateral{
		ID:             uuid.New(),
		CustomerID:     f.loan.CustomerID,
		ChartAccountID: uuid.New(),
		Amount:         dec("5000"),
	}

	f.store.Collateral.On("Decrement", mock.Anything, collateral.ID, dec("1000")).Return(nil)
	f.store.Journals.On("Create", mock.Anything, mock.AnythingOfType("*domain.Journal")).Return(nil)
	f.store.Journals.On("CreateItem", mock.Anything, mock.AnythingOfType("*domain.JournalItem")).Return(nil)

	warnings, err := PostCollateralJournal(context.Background(), f.store.Repos(), f.input, collateral)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	debits, credits := f.balance()
	assert.True(t, debits.Equal(credits), "debits %s != credits %s", debits, credits)

	// The mirroring debit against the collateral account marks the funding
	// source for later reversal.
	var mirror *domain.GLTransaction
	for _, entry := range f.posted {
		if entry.Nature == domain.NatureDebit {
			mirror = entry
		}
	}
	require.NotNil(t, mirror)
	assert.Equal(t, collateral.ChartAccountID, mirror.ChartAccountID)
	assert.Equal(t, domain.TxTypeJournalRepayment, mirror.TransactionType)
	assert.Equal(t, f.input.Repayment.ID, mirror.TransactionID)

	f.store.Collateral.AssertExpectations(t)
}

func TestPostSettlement_InterestPrefersReceivable(t *testing.T) {
	f := newFixture()
	f.product.InterestReceivableAccountID = newUUIDPtr()

	warnings, err := PostSettlement(context.Background(), f.store.Repos(), f.input, domain.TxTypeSettleInterest, dec("150"), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, f.posted, 2)
	debit, credit := f.posted[0], f.posted[1]
	assert.Equal(t, domain.NatureDebit, debit.Nature)
	assert.Equal(t, f.input.Payment.BankChartAccountID, debit.ChartAccountID)
	assert.Equal(t, *f.product.InterestReceivableAccountID, credit.ChartAccountID)
	assert.Equal(t, domain.TxTypeSettleInterest, credit.TransactionType)
}

func TestPostSettlement_CollateralFundsDebit(t *testing.T) {
	f := newFixture()
	collateral := &domain.CashCollateral{
		ID:             uuid.New(),
		ChartAccountID: uuid.New(),
		Amount:         dec("5000"),
	}

	_, err := PostSettlement(context.Background(), f.store.Repos(), f.input, domain.TxTypeSettlePrincipal, dec("500"), collateral)
	require.NoError(t, err)

	require.Len(t, f.posted, 2)
	assert.Equal(t, collateral.ChartAccountID, f.posted[0].ChartAccountID)
	assert.Equal(t, *f.product.PrincipalReceivableAccountID, f.posted[1].ChartAccountID)
}
