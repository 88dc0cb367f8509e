package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/schedule"
)

func repaymentHistoryKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:%s:repayments", loanID)
}

// PreviewSchedule generates the installment schedule a loan would get
// under the given method without persisting anything. An empty method
// falls back to the loan's own.
func (s *RepaymentService) PreviewSchedule(ctx context.Context, loanID uuid.UUID, method string) ([]domain.Installment, error) {
	loan, err := s.store.Repos().Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = loan.Method
	}
	return schedule.Generate(loan, method)
}

// GetRepaymentHistory returns a loan's repayments newest first, served
// from cache when possible.
func (s *RepaymentService) GetRepaymentHistory(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	key := repaymentHistoryKey(loanID)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var repayments []*domain.Repayment
			if jsonErr := json.Unmarshal([]byte(cached), &repayments); jsonErr == nil {
				return repayments, nil
			}
			// Unreadable cache entries are dropped, not served.
			s.redis.Del(ctx, key)
		} else if err != redis.Nil {
			s.events.ConfigWarning(fmt.Sprintf("cache read failed for loan %s: %v", loanID, err))
		}
	}

	repayments, err := s.store.Repos().Repayments.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(repayments); err == nil {
			if err := s.redis.Set(ctx, key, data, s.config.GetRepaymentHistoryTTL()).Err(); err != nil {
				s.events.ConfigWarning(fmt.Sprintf("cache write failed for loan %s: %v", loanID, err))
			}
		}
	}
	return repayments, nil
}

// ScheduleDetails pairs a schedule with its applied payment totals.
type ScheduleDetails struct {
	Schedule *domain.Schedule  `json:"schedule"`
	Paid     domain.PaidTotals `json:"paid"`
}

// GetScheduleDetails returns one installment with how much of each
// component has been paid against it.
func (s *RepaymentService) GetScheduleDetails(ctx context.Context, scheduleID uuid.UUID) (*ScheduleDetails, error) {
	r := s.store.Repos()
	sched, err := r.Schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	paid, err := r.Repayments.PaidTotals(ctx, sched.ID)
	if err != nil {
		return nil, err
	}
	return &ScheduleDetails{Schedule: sched, Paid: paid}, nil
}

// GetLoanSchedules returns every installment of a loan with paid totals.
func (s *RepaymentService) GetLoanSchedules(ctx context.Context, loanID uuid.UUID) ([]ScheduleDetails, error) {
	r := s.store.Repos()
	schedules, err := r.Schedules.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	details := make([]ScheduleDetails, 0, len(schedules))
	for _, sched := range schedules {
		paid, err := r.Repayments.PaidTotals(ctx, sched.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, ScheduleDetails{Schedule: sched, Paid: paid})
	}
	return details, nil
}
