// Package ledger turns payment allocations into balanced double-entry
// postings. Every invocation debits the funding account for the full
// allocated amount and credits each component's chart account, so
// sum(debits) == sum(credits) == allocation sum by construction. The one
// escape hatch is a component whose chart account cannot be resolved: its
// credit is skipped and the omission surfaced as a warning, which a
// correctly configured deployment must never trigger.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
	"github.com/lendcore/loan-engine/internal/repository"
)

// PostInput carries everything one posting needs.
type PostInput struct {
	Loan       *domain.Loan
	Product    *domain.LoanProduct
	Repayment  *domain.Repayment
	Allocation domain.ScheduleAllocation
	Payment    domain.PaymentData
}

type componentAmount struct {
	component domain.Component
	amount    decimal.Decimal
	account   *uuid.UUID
}

// PostBankReceipt records a bank/cash repayment: a receipt, one debit to
// the paying bank account's chart account, and per-component credits with
// matching receipt items. Returns configuration warnings.
func PostBankReceipt(ctx context.Context, r *repository.Repos, in PostInput) ([]string, error) {
	receipt := &domain.Receipt{
		ID:            uuid.New(),
		Reference:     in.Repayment.ID,
		ReferenceType: "loan_repayment",
		Amount:        in.Allocation.Amount,
		Date:          in.Payment.PaymentDate,
		Description:   fmt.Sprintf("Loan repayment - Loan %s", in.Loan.LoanNo),
		BankAccountID: in.Payment.BankAccountID,
		PayeeID:       in.Loan.CustomerID,
		BranchID:      in.Payment.Actor.BranchID,
		UserID:        in.Payment.Actor.UserID,
	}
	if err := r.Receipts.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("create receipt: %w", err)
	}

	debit := &domain.GLTransaction{
		ID:              uuid.New(),
		ChartAccountID:  in.Payment.BankChartAccountID,
		CustomerID:      in.Loan.CustomerID,
		Amount:          in.Allocation.Amount,
		Nature:          domain.NatureDebit,
		TransactionID:   receipt.ID,
		TransactionType: domain.TxTypeReceipt,
		Date:            receipt.Date,
		Description:     fmt.Sprintf("Loan repayment received - Loan %s", in.Loan.LoanNo),
		BranchID:        in.Payment.Actor.BranchID,
		UserID:          in.Payment.Actor.UserID,
	}
	if err := r.Ledger.Create(ctx, debit); err != nil {
		return nil, fmt.Errorf("post bank debit: %w", err)
	}

	components, warnings, err := resolveComponents(ctx, r, in)
	if err != nil {
		return nil, err
	}

	for _, c := range components {
		if !c.amount.IsPositive() {
			continue
		}
		if c.account == nil {
			warnings = append(warnings, missingAccountWarning(c.component, c.amount, in.Loan.ID))
			continue
		}

		item := &domain.ReceiptItem{
			ID:             uuid.New(),
			ReceiptID:      receipt.ID,
			ChartAccountID: *c.account,
			Amount:         c.amount,
			Description:    componentDescription(c.component, in.Loan),
		}
		if err := r.Receipts.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("create receipt item: %w", err)
		}

		credit := &domain.GLTransaction{
			ID:              uuid.New(),
			ChartAccountID:  *c.account,
			CustomerID:      in.Loan.CustomerID,
			Amount:          c.amount,
			Nature:          domain.NatureCredit,
			TransactionID:   receipt.ID,
			TransactionType: domain.TxTypeReceipt,
			Date:            receipt.Date,
			Description:     componentDescription(c.component, in.Loan),
			BranchID:        in.Payment.Actor.BranchID,
			UserID:          in.Payment.Actor.UserID,
		}
		if err := r.Ledger.Create(ctx, credit); err != nil {
			return nil, fmt.Errorf("post %s credit: %w", c.component, err)
		}
	}

	return warnings, nil
}

// PostCollateralJournal records a cash-collateral-funded repayment: the
// collateral balance is drawn down, a withdrawal journal is created with a
// debit item against the collateral's chart account, and per-component
// credits are posted with a mirroring debit entry for the full amount. The
// caller must have verified and locked the collateral.
func PostCollateralJournal(ctx context.Context, r *repository.Repos, in PostInput, collateral *domain.CashCollateral) ([]string, error) {
	if err := r.Collateral.Decrement(ctx, collateral.ID, in.Allocation.Amount); err != nil {
		return nil, err
	}

	journal := &domain.Journal{
		ID:            uuid.New(),
		Reference:     in.Repayment.ID,
		ReferenceType: domain.JournalTypeWithdrawal,
		CustomerID:    in.Loan.CustomerID,
		Description:   fmt.Sprintf("Loan repayment from cash deposit - Loan %s", in.Loan.LoanNo),
		Date:          in.Payment.PaymentDate,
		BranchID:      in.Payment.Actor.BranchID,
		UserID:        in.Payment.Actor.UserID,
	}
	if err := r.Journals.Create(ctx, journal); err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}

	debitItem := &domain.JournalItem{
		ID:             uuid.New(),
		JournalID:      journal.ID,
		ChartAccountID: collateral.ChartAccountID,
		Amount:         in.Allocation.Amount,
		Nature:         domain.NatureDebit,
		Description:    "Loan repayment from cash deposit",
	}
	if err := r.Journals.CreateItem(ctx, debitItem); err != nil {
		return nil, fmt.Errorf("create journal debit item: %w", err)
	}

	components, warnings, err := resolveComponents(ctx, r, in)
	if err != nil {
		return nil, err
	}

	for _, c := range components {
		if !c.amount.IsPositive() {
			continue
		}
		if c.account == nil {
			warnings = append(warnings, missingAccountWarning(c.component, c.amount, in.Loan.ID))
			continue
		}

		item := &domain.JournalItem{
			ID:             uuid.New(),
			JournalID:      journal.ID,
			ChartAccountID: *c.account,
			Amount:         c.amount,
			Nature:         domain.NatureCredit,
			Description:    componentDescription(c.component, in.Loan),
		}
		if err := r.Journals.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("create journal credit item: %w", err)
		}

		credit := &domain.GLTransaction{
			ID:              uuid.New(),
			ChartAccountID:  *c.account,
			CustomerID:      in.Loan.CustomerID,
			Amount:          c.amount,
			Nature:          domain.NatureCredit,
			TransactionID:   in.Repayment.ID,
			TransactionType: domain.TxTypeJournalRepayment,
			Date:            journal.Date,
			Description:     componentDescription(c.component, in.Loan),
			BranchID:        in.Payment.Actor.BranchID,
			UserID:          in.Payment.Actor.UserID,
		}
		if err := r.Ledger.Create(ctx, credit); err != nil {
			return nil, fmt.Errorf("post %s credit: %w", c.component, err)
		}
	}

	// Mirroring debit for the full amount against the collateral account.
	// Its presence is also how a reversal detects collateral funding.
	debit := &domain.GLTransaction{
		ID:              uuid.New(),
		ChartAccountID:  collateral.ChartAccountID,
		CustomerID:      in.Loan.CustomerID,
		Amount:          in.Allocation.Amount,
		Nature:          domain.NatureDebit,
		TransactionID:   in.Repayment.ID,
		TransactionType: domain.TxTypeJournalRepayment,
		Date:            journal.Date,
		Description:     fmt.Sprintf("Loan repayment from cash deposit - Loan %s", in.Loan.LoanNo),
		BranchID:        in.Payment.Actor.BranchID,
		UserID:          in.Payment.Actor.UserID,
	}
	if err := r.Ledger.Create(ctx, debit); err != nil {
		return nil, fmt.Errorf("post collateral debit: %w", err)
	}

	return warnings, nil
}

// PostSettlement records one settlement leg: a debit to the funding
// account and a credit to the target account, both tagged with the given
// settlement transaction type and linked to the repayment.
func PostSettlement(ctx context.Context, r *repository.Repos, in PostInput, txType string, amount decimal.Decimal, collateral *domain.CashCollateral) ([]string, error) {
	fundingAccount := in.Payment.BankChartAccountID
	if collateral != nil {
		fundingAccount = collateral.ChartAccountID
	}

	debit := &domain.GLTransaction{
		ID:              uuid.New(),
		ChartAccountID:  fundingAccount,
		CustomerID:      in.Loan.CustomerID,
		Amount:          amount,
		Nature:          domain.NatureDebit,
		TransactionID:   in.Repayment.ID,
		TransactionType: txType,
		Date:            in.Payment.PaymentDate,
		Description:     fmt.Sprintf("%s for loan %s", txType, in.Loan.LoanNo),
		BranchID:        in.Payment.Actor.BranchID,
		UserID:          in.Payment.Actor.UserID,
	}
	if err := r.Ledger.Create(ctx, debit); err != nil {
		return nil, fmt.Errorf("post settlement debit: %w", err)
	}

	var account *uuid.UUID
	var component domain.Component
	switch txType {
	case domain.TxTypeSettleInterest:
		component = domain.ComponentInterest
		account = in.Product.InterestReceivableAccountID
		if account == nil {
			account = in.Product.InterestRevenueAccountID
		}
	case domain.TxTypeSettlePrincipal:
		component = domain.ComponentPrincipal
		account = in.Product.PrincipalReceivableAccountID
	}

	if account == nil {
		return []string{missingAccountWarning(component, amount, in.Loan.ID)}, nil
	}

	credit := &domain.GLTransaction{
		ID:              uuid.New(),
		ChartAccountID:  *account,
		CustomerID:      in.Loan.CustomerID,
		Amount:          amount,
		Nature:          domain.NatureCredit,
		TransactionID:   in.Repayment.ID,
		TransactionType: txType,
		Date:            in.Payment.PaymentDate,
		Description:     fmt.Sprintf("%s for loan %s", txType, in.Loan.LoanNo),
		BranchID:        in.Payment.Actor.BranchID,
		UserID:          in.Payment.Actor.UserID,
	}
	if err := r.Ledger.Create(ctx, credit); err != nil {
		return nil, fmt.Errorf("post settlement credit: %w", err)
	}

	return nil, nil
}

// resolveComponents maps each allocated component to its chart account.
// Interest goes to the revenue account unless a maturity accrual was
// already posted for this schedule's due date and amount, in which case
// the receivable account is credited instead so income is not recognized
// twice.
func resolveComponents(ctx context.Context, r *repository.Repos, in PostInput) ([]componentAmount, []string, error) {
	var warnings []string

	interestAccount := in.Product.InterestRevenueAccountID

	receivable := in.Product.InterestReceivableAccountID
	revenue := in.Product.InterestRevenueAccountID
	if in.Allocation.Interest.IsPositive() && receivable != nil && revenue != nil {
		accrued, err := r.Ledger.AccrualExists(ctx, domain.AccrualKey{
			ChartAccountID:  *receivable,
			CustomerID:      in.Loan.CustomerID,
			Date:            in.Repayment.DueDate,
			Amount:          in.Allocation.Interest,
			TransactionType: domain.TxTypeMatureInterest,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("check interest accrual: %w", err)
		}
		recognized, err := r.Ledger.AccrualExists(ctx, domain.AccrualKey{
			ChartAccountID:  *revenue,
			CustomerID:      in.Loan.CustomerID,
			Date:            in.Repayment.DueDate,
			Amount:          in.Allocation.Interest,
			TransactionType: domain.TxTypeMatureInterest,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("check interest recognition: %w", err)
		}
		if accrued && recognized {
			interestAccount = receivable
		}
	}

	components := []componentAmount{
		{domain.ComponentPrincipal, in.Allocation.Principal, in.Product.PrincipalReceivableAccountID},
		{domain.ComponentInterest, in.Allocation.Interest, interestAccount},
		{domain.ComponentFee, in.Allocation.FeeAmount, in.Product.FeeChartAccount()},
		{domain.ComponentPenalty, in.Allocation.PenaltyAmount, in.Product.PenaltyChartAccount()},
	}
	return components, warnings, nil
}

func missingAccountWarning(c domain.Component, amount decimal.Decimal, loanID uuid.UUID) string {
	return fmt.Sprintf("missing chart account for %s allocation of %s on loan %s; credit posting skipped",
		c, amount.StringFixed(2), loanID)
}

func componentDescription(c domain.Component, loan *domain.Loan) string {
	name := strings.TrimSuffix(string(c), "_amount")
	return fmt.Sprintf("%s%s payment for loan %s", strings.ToUpper(name[:1]), name[1:], loan.LoanNo)
}
