package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendcore/loan-engine/internal/domain"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

func TestRemovePenalty_ReducesScheduleAndLedger(t *testing.T) {
	f := newServiceFixture()
	sched := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	sched.PenaltyAmount = dec("50")

	f.store.Schedules.On("GetByID", mock.Anything, sched.ID).Return(sched, nil)
	f.store.Repayments.On("PaidTotals", mock.Anything, sched.ID).Return(domain.PaidTotals{}, nil)
	f.store.Ledger.On("ReducePenaltyAmounts", mock.Anything, f.loan.ID, dec("30")).Return(int64(2), nil)
	f.store.Schedules.On("UpdatePenaltyAmount", mock.Anything, sched.ID, dec("20")).Return(nil)

	err := f.service.RemovePenalty(context.Background(), f.loan.ID, sched.ID, dec("30"), "goodwill")
	require.NoError(t, err)

	f.store.Schedules.AssertExpectations(t)
	f.store.Ledger.AssertExpectations(t)
}

func TestRemovePenalty_ExceedsUnpaidPenalty(t *testing.T) {
	f := newServiceFixture()
	sched := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	sched.PenaltyAmount = dec("50")

	f.store.Schedules.On("GetByID", mock.Anything, sched.ID).Return(sched, nil)
	// 40 of the 50 already collected, only 10 is still waivable.
	f.store.Repayments.On("PaidTotals", mock.Anything, sched.ID).Return(domain.PaidTotals{Penalty: dec("40")}, nil)

	err := f.service.RemovePenalty(context.Background(), f.loan.ID, sched.ID, dec("20"), "goodwill")
	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrExceedsPenalty)
}

func TestRemovePenalty_ZeroAmountIsNoOp(t *testing.T) {
	f := newServiceFixture()
	sched := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	sched.PenaltyAmount = dec("50")

	f.store.Schedules.On("GetByID", mock.Anything, sched.ID).Return(sched, nil)
	f.store.Repayments.On("PaidTotals", mock.Anything, sched.ID).Return(domain.PaidTotals{}, nil)

	err := f.service.RemovePenalty(context.Background(), f.loan.ID, sched.ID, dec("0"), "")
	require.NoError(t, err)

	// Neither the ledger nor the schedule may be touched.
	f.store.Ledger.AssertNotCalled(t, "ReducePenaltyAmounts", mock.Anything, mock.Anything, mock.Anything)
	f.store.Schedules.AssertNotCalled(t, "UpdatePenaltyAmount", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemovePenalty_NegativeAmountRejected(t *testing.T) {
	f := newServiceFixture()

	err := f.service.RemovePenalty(context.Background(), f.loan.ID, [16]byte{1}, dec("-5"), "")
	require.Error(t, err)

	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.CodeValidation, bizErr.Code)
}

func TestRemovePenalty_WrongLoanRejected(t *testing.T) {
	f := newServiceFixture()
	sched := f.schedule(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "1000", "200")
	sched.PenaltyAmount = dec("50")

	f.store.Schedules.On("GetByID", mock.Anything, sched.ID).Return(sched, nil)

	err := f.service.RemovePenalty(context.Background(), uuid.New(), sched.ID, dec("30"), "goodwill")
	require.Error(t, err)

	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.CodeValidation, bizErr.Code)

	f.store.Ledger.AssertNotCalled(t, "ReducePenaltyAmounts", mock.Anything, mock.Anything, mock.Anything)
}
