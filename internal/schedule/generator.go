// Package schedule generates amortization schedules for a loan under the
// three supported calculation methods. All monetary values are carried as
// decimals; remaining principal is recomputed from the previous period's
// output rather than accumulated through floats.
package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-engine/internal/domain"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

var (
	hundred       = decimal.NewFromInt(100)
	twelveHundred = decimal.NewFromInt(1200)
	one           = decimal.NewFromInt(1)
)

// Generate produces the ordered installments for a loan under the given
// method. Due dates fall one month after disbursement and advance monthly.
func Generate(loan *domain.Loan, method string) ([]domain.Installment, error) {
	switch method {
	case domain.MethodFlatRate:
		return flatRate(loan), nil
	case domain.MethodReducingEqualInstallment:
		return reducingEqualInstallment(loan), nil
	case domain.MethodReducingEqualPrincipal:
		return reducingEqualPrincipal(loan), nil
	default:
		return nil, customError.WrapInvalidMethod(method)
	}
}

// flatRate charges interest on the full principal for every period:
// total interest = P * (r/100) * n, split evenly, with equal principal.
func flatRate(loan *domain.Loan) []domain.Installment {
	periods := decimal.NewFromInt(int64(loan.PeriodMonths))
	totalInterest := loan.Amount.Mul(loan.InterestRate.Div(hundred)).Mul(periods)

	monthlyInterest := totalInterest.Div(periods).Round(2)
	monthlyPrincipal := loan.Amount.Div(periods).Round(2)

	installments := make([]domain.Installment, 0, loan.PeriodMonths)
	for i := 1; i <= loan.PeriodMonths; i++ {
		installments = append(installments, domain.Installment{
			InstallmentNo:    i,
			DueDate:          loan.DisbursedOn.AddDate(0, i, 0),
			Principal:        monthlyPrincipal,
			Interest:         monthlyInterest,
			FeeAmount:        decimal.Zero,
			PenaltyAmount:    decimal.Zero,
			TotalInstallment: monthlyPrincipal.Add(monthlyInterest),
		})
	}
	return installments
}

// reducingEqualInstallment computes the standard annuity
// A = P*i*(1+i)^n / ((1+i)^n - 1) with i = r/1200, charging interest on the
// declining balance. The final installment's principal is forced to the
// remaining balance so rounding cannot leave a residue.
func reducingEqualInstallment(loan *domain.Loan) []domain.Installment {
	monthlyRate := loan.InterestRate.Div(twelveHundred)
	periods := int64(loan.PeriodMonths)

	compound := one.Add(monthlyRate).Pow(decimal.NewFromInt(periods))
	installment := loan.Amount.Mul(monthlyRate).Mul(compound).Div(compound.Sub(one))

	installments := make([]domain.Installment, 0, loan.PeriodMonths)
	remaining := loan.Amount

	for i := 1; i <= loan.PeriodMonths; i++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principal := installment.Sub(interest).Round(2)
		total := installment.Round(2)

		if i == loan.PeriodMonths {
			principal = remaining
			total = principal.Add(interest)
		}

		installments = append(installments, domain.Installment{
			InstallmentNo:    i,
			DueDate:          loan.DisbursedOn.AddDate(0, i, 0),
			Principal:        principal,
			Interest:         interest,
			FeeAmount:        decimal.Zero,
			PenaltyAmount:    decimal.Zero,
			TotalInstallment: total,
		})

		remaining = remaining.Sub(principal)
	}
	return installments
}

// reducingEqualPrincipal repays a constant principal each period with
// interest on the declining balance.
func reducingEqualPrincipal(loan *domain.Loan) []domain.Installment {
	monthlyRate := loan.InterestRate.Div(twelveHundred)
	monthlyPrincipal := loan.Amount.Div(decimal.NewFromInt(int64(loan.PeriodMonths))).Round(2)

	installments := make([]domain.Installment, 0, loan.PeriodMonths)
	remaining := loan.Amount

	for i := 1; i <= loan.PeriodMonths; i++ {
		interest := remaining.Mul(monthlyRate).Round(2)

		installments = append(installments, domain.Installment{
			InstallmentNo:    i,
			DueDate:          loan.DisbursedOn.AddDate(0, i, 0),
			Principal:        monthlyPrincipal,
			Interest:         interest,
			FeeAmount:        decimal.Zero,
			PenaltyAmount:    decimal.Zero,
			TotalInstallment: monthlyPrincipal.Add(interest),
		})

		remaining = remaining.Sub(monthlyPrincipal)
	}
	return installments
}
