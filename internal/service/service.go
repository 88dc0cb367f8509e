package service

import (
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/config"
	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/repository"
)

// Events receives one notification per engine state transition. The
// default implementation writes to the process log; deployments may plug
// in their own collector.
type Events interface {
	AllocationComputed(loanID uuid.UUID, alloc domain.ScheduleAllocation)
	LedgerPosted(loanID, repaymentID uuid.UUID, transactionType string, amount decimal.Decimal)
	PenaltyWaived(scheduleID uuid.UUID, amount decimal.Decimal, reason string)
	LoanClosed(loanID uuid.UUID)
	ReversalCompleted(repaymentID uuid.UUID)
	ConfigWarning(message string)
}

// LogEvents is the log-backed Events implementation.
type LogEvents struct{}

func (LogEvents) AllocationComputed(loanID uuid.UUID, alloc domain.ScheduleAllocation) {
	log.Printf("allocation computed: loan=%s schedule=%s amount=%s principal=%s interest=%s fee=%s penalty=%s",
		loanID, alloc.ScheduleID, alloc.Amount.StringFixed(2), alloc.Principal.StringFixed(2),
		alloc.Interest.StringFixed(2), alloc.FeeAmount.StringFixed(2), alloc.PenaltyAmount.StringFixed(2))
}

func (LogEvents) LedgerPosted(loanID, repaymentID uuid.UUID, transactionType string, amount decimal.Decimal) {
	log.Printf("ledger posted: loan=%s repayment=%s type=%q amount=%s", loanID, repaymentID, transactionType, amount.StringFixed(2))
}

func (LogEvents) PenaltyWaived(scheduleID uuid.UUID, amount decimal.Decimal, reason string) {
	log.Printf("penalty waived: schedule=%s amount=%s reason=%q", scheduleID, amount.StringFixed(2), reason)
}

func (LogEvents) LoanClosed(loanID uuid.UUID) {
	log.Printf("loan closed: loan=%s", loanID)
}

func (LogEvents) ReversalCompleted(repaymentID uuid.UUID) {
	log.Printf("reversal completed: repayment=%s", repaymentID)
}

func (LogEvents) ConfigWarning(message string) {
	log.Printf("configuration warning: %s", message)
}

// RepaymentService coordinates schedule generation, payment allocation,
// ledger posting, settlement, penalty waiver and reversal for loans.
type RepaymentService struct {
	store  repository.Store
	redis  *redis.Client
	config *config.Config
	events Events
}

func NewRepaymentService(store repository.Store, redisClient *redis.Client, cfg *config.Config, events Events) *RepaymentService {
	if events == nil {
		events = LogEvents{}
	}
	return &RepaymentService{
		store:  store,
		redis:  redisClient,
		config: cfg,
		events: events,
	}
}
