package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/service"
	"github.com/lendcore/loan-engine/pkg/response"
	"github.com/lendcore/loan-engine/pkg/utils"
)

type RepaymentHandler struct {
	service   *service.RepaymentService
	validator *validator.Validate
}

func NewRepaymentHandler(service *service.RepaymentService) *RepaymentHandler {
	return &RepaymentHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateRepayment handles POST /repayments
func (h *RepaymentHandler) CreateRepayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loanID, amount, payment, err := h.paymentFromRequest(r, req.LoanID, req.Amount, req.PaymentDate,
		req.PaymentSource, req.BankAccountID, req.BankChartAccountID, req.CashDepositID)
	if err != nil {
		response.BadRequest(w, "Invalid request values", err)
		return
	}

	result, err := h.service.ProcessRepayment(r.Context(), loanID, amount, payment)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Created(w, result)
}

// CreateBulkRepayments handles POST /repayments/bulk. Items are processed
// independently; the response reports per-item success or failure.
func (h *RepaymentHandler) CreateBulkRepayments(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkRepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	items := make([]domain.BulkRepaymentItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		loanID, amount, payment, err := h.paymentFromRequest(r, itemReq.LoanID, itemReq.Amount, itemReq.PaymentDate,
			itemReq.PaymentSource, itemReq.BankAccountID, itemReq.BankChartAccountID, itemReq.CashDepositID)
		if err != nil {
			response.BadRequest(w, "Invalid request values", err)
			return
		}
		items = append(items, domain.BulkRepaymentItem{LoanID: loanID, Amount: amount, Payment: payment})
	}

	result, err := h.service.ProcessBulkRepayments(r.Context(), items)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, result)
}

// CreateSettlement handles POST /repayments/settlement
func (h *RepaymentHandler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req domain.SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loanID, amount, payment, err := h.paymentFromRequest(r, req.LoanID, req.Amount, req.PaymentDate,
		req.PaymentSource, req.BankAccountID, req.BankChartAccountID, req.CashDepositID)
	if err != nil {
		response.BadRequest(w, "Invalid request values", err)
		return
	}

	result, err := h.service.ProcessSettlement(r.Context(), loanID, amount, payment)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Created(w, result)
}

// UpdateRepayment handles PUT /repayments/{repaymentId}
func (h *RepaymentHandler) UpdateRepayment(w http.ResponseWriter, r *http.Request) {
	repaymentID, err := uuid.Parse(mux.Vars(r)["repaymentId"])
	if err != nil {
		response.BadRequest(w, "Invalid repayment id", err)
		return
	}

	var req domain.UpdateRepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	_, amount, payment, err := h.paymentFromRequest(r, uuid.Nil.String(), req.Amount, req.PaymentDate,
		req.PaymentSource, req.BankAccountID, req.BankChartAccountID, req.CashDepositID)
	if err != nil {
		response.BadRequest(w, "Invalid request values", err)
		return
	}

	result, err := h.service.UpdateRepayment(r.Context(), repaymentID, amount, payment)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, result)
}

// DeleteRepayment handles DELETE /repayments/{repaymentId}
func (h *RepaymentHandler) DeleteRepayment(w http.ResponseWriter, r *http.Request) {
	repaymentID, err := uuid.Parse(mux.Vars(r)["repaymentId"])
	if err != nil {
		response.BadRequest(w, "Invalid repayment id", err)
		return
	}

	if err := h.service.DeleteRepayment(r.Context(), repaymentID); err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, map[string]string{"deleted": repaymentID.String()})
}

// BulkDeleteRepayments handles POST /repayments/bulk-delete
func (h *RepaymentHandler) BulkDeleteRepayments(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid repayment id", err)
			return
		}
		ids = append(ids, id)
	}

	if err := h.service.BulkDeleteRepayments(r.Context(), ids); err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, map[string]int{"deleted": len(ids)})
}

// RemovePenalty handles POST /repayments/remove-penalty
func (h *RepaymentHandler) RemovePenalty(w http.ResponseWriter, r *http.Request) {
	var req domain.RemovePenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loanID, err := uuid.Parse(req.LoanID)
	if err != nil {
		response.BadRequest(w, "Invalid loan id", err)
		return
	}
	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		response.BadRequest(w, "Invalid schedule id", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "Invalid amount", err)
		return
	}

	if err := h.service.RemovePenalty(r.Context(), loanID, scheduleID, amount, req.Reason); err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, map[string]string{"schedule_id": scheduleID.String()})
}

// GetRepaymentHistory handles GET /loans/{loanId}/repayments
func (h *RepaymentHandler) GetRepaymentHistory(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "Invalid loan id", err)
		return
	}

	repayments, err := h.service.GetRepaymentHistory(r.Context(), loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, repayments)
}

// GetLoanSchedules handles GET /loans/{loanId}/schedules
func (h *RepaymentHandler) GetLoanSchedules(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "Invalid loan id", err)
		return
	}

	schedules, err := h.service.GetLoanSchedules(r.Context(), loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, schedules)
}

// GetScheduleDetails handles GET /schedules/{scheduleId}
func (h *RepaymentHandler) GetScheduleDetails(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := uuid.Parse(mux.Vars(r)["scheduleId"])
	if err != nil {
		response.BadRequest(w, "Invalid schedule id", err)
		return
	}

	details, err := h.service.GetScheduleDetails(r.Context(), scheduleID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, details)
}

// PreviewSchedule handles POST /loans/{loanId}/schedule-preview
func (h *RepaymentHandler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "Invalid loan id", err)
		return
	}

	var req domain.SchedulePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	installments, err := h.service.PreviewSchedule(r.Context(), loanID, req.Method)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	response.Success(w, installments)
}

// paymentFromRequest converts validated request strings into the typed
// values the service expects. The acting user and branch come from the
// X-User-ID and X-Branch-ID headers set by the gateway.
func (h *RepaymentHandler) paymentFromRequest(r *http.Request, rawLoanID, rawAmount, rawDate, source, rawBankAccountID, rawBankChartAccountID, rawCashDepositID string) (uuid.UUID, decimal.Decimal, domain.PaymentData, error) {
	var payment domain.PaymentData

	loanID, err := uuid.Parse(rawLoanID)
	if err != nil {
		return uuid.Nil, decimal.Zero, payment, err
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return uuid.Nil, decimal.Zero, payment, err
	}
	paymentDate, err := utils.ParseDate(rawDate)
	if err != nil {
		return uuid.Nil, decimal.Zero, payment, err
	}

	payment.PaymentDate = paymentDate
	payment.Source = source
	payment.Actor = actorFromHeaders(r)

	switch source {
	case domain.PaymentSourceBank:
		if payment.BankAccountID, err = uuid.Parse(rawBankAccountID); err != nil {
			return uuid.Nil, decimal.Zero, payment, err
		}
		if payment.BankChartAccountID, err = uuid.Parse(rawBankChartAccountID); err != nil {
			return uuid.Nil, decimal.Zero, payment, err
		}
	case domain.PaymentSourceCashDeposit:
		if payment.CashDepositID, err = uuid.Parse(rawCashDepositID); err != nil {
			return uuid.Nil, decimal.Zero, payment, err
		}
	}

	return loanID, amount, payment, nil
}

func actorFromHeaders(r *http.Request) domain.ActorContext {
	var actor domain.ActorContext
	if id, err := uuid.Parse(r.Header.Get("X-User-ID")); err == nil {
		actor.UserID = id
	}
	if id, err := uuid.Parse(r.Header.Get("X-Branch-ID")); err == nil {
		actor.BranchID = id
	}
	return actor
}
