package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendcore/loan-engine/internal/domain"
	customError "github.com/lendcore/loan-engine/pkg/errors"
)

func testLoan(amount string, rate string, months int) *domain.Loan {
	return &domain.Loan{
		Amount:       decimal.RequireFromString(amount),
		InterestRate: decimal.RequireFromString(rate),
		PeriodMonths: months,
		DisbursedOn:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerate_FlatRate(t *testing.T) {
	loan := testLoan("12000", "2", 12)

	installments, err := Generate(loan, domain.MethodFlatRate)
	require.NoError(t, err)
	require.Len(t, installments, 12)

	// Total interest = 12000 * 0.02 * 12 = 2880, split evenly.
	for i, inst := range installments {
		assert.Equal(t, i+1, inst.InstallmentNo)
		assert.True(t, inst.Principal.Equal(decimal.NewFromInt(1000)), "principal %s", inst.Principal)
		assert.True(t, inst.Interest.Equal(decimal.NewFromInt(240)), "interest %s", inst.Interest)
		assert.True(t, inst.TotalInstallment.Equal(decimal.NewFromInt(1240)))
	}

	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), installments[11].DueDate)
}

func TestGenerate_ReducingEqualInstallment(t *testing.T) {
	loan := testLoan("10000", "12", 12)

	installments, err := Generate(loan, domain.MethodReducingEqualInstallment)
	require.NoError(t, err)
	require.Len(t, installments, 12)

	// First month interest on the full balance at 1% monthly.
	assert.True(t, installments[0].Interest.Equal(decimal.NewFromInt(100)), "got %s", installments[0].Interest)

	// Interest declines with the balance.
	for i := 1; i < len(installments); i++ {
		assert.True(t, installments[i].Interest.LessThan(installments[i-1].Interest),
			"interest did not decline at installment %d", i+1)
	}

	// Principal repaid exactly, the final installment absorbing rounding.
	totalPrincipal := decimal.Zero
	for _, inst := range installments {
		totalPrincipal = totalPrincipal.Add(inst.Principal)
	}
	assert.True(t, totalPrincipal.Equal(loan.Amount), "total principal %s", totalPrincipal)

	// All but the last installment share the same total.
	for i := 1; i < len(installments)-1; i++ {
		assert.True(t, installments[i].TotalInstallment.Equal(installments[0].TotalInstallment))
	}
}

func TestGenerate_ReducingEqualPrincipal(t *testing.T) {
	loan := testLoan("1200", "12", 12)

	installments, err := Generate(loan, domain.MethodReducingEqualPrincipal)
	require.NoError(t, err)
	require.Len(t, installments, 12)

	for _, inst := range installments {
		assert.True(t, inst.Principal.Equal(decimal.NewFromInt(100)))
	}

	// Interest at 1% monthly on the declining balance: 12, 11, ..., 1.
	assert.True(t, installments[0].Interest.Equal(decimal.NewFromInt(12)), "got %s", installments[0].Interest)
	assert.True(t, installments[1].Interest.Equal(decimal.NewFromInt(11)), "got %s", installments[1].Interest)
	assert.True(t, installments[11].Interest.Equal(decimal.NewFromInt(1)), "got %s", installments[11].Interest)
}

func TestGenerate_InvalidMethod(t *testing.T) {
	loan := testLoan("1000", "10", 6)

	_, err := Generate(loan, "balloon")
	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrInvalidMethod)
}
