package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRepaymentOrder_JSONArray(t *testing.T) {
	order := ParseRepaymentOrder(`["interest","principal","penalties","fees"]`)

	assert.Equal(t, []Component{ComponentInterest, ComponentPrincipal, ComponentPenalty, ComponentFee}, order)
}

func TestParseRepaymentOrder_CommaSeparated(t *testing.T) {
	order := ParseRepaymentOrder("principal, interest")

	assert.Equal(t, []Component{ComponentPrincipal, ComponentInterest}, order)
}

func TestParseRepaymentOrder_Aliases(t *testing.T) {
	order := ParseRepaymentOrder("penalty_amount,fee_amount,interest,principal")

	assert.Equal(t, DefaultRepaymentOrder(), order)
}

func TestParseRepaymentOrder_EmptyFallsBack(t *testing.T) {
	assert.Equal(t, DefaultRepaymentOrder(), ParseRepaymentOrder(""))
	assert.Equal(t, DefaultRepaymentOrder(), ParseRepaymentOrder("   "))
}

func TestParseRepaymentOrder_UnknownTokensDropped(t *testing.T) {
	order := ParseRepaymentOrder("vat,interest,rounding")

	assert.Equal(t, []Component{ComponentInterest}, order)
}

func TestParseRepaymentOrder_GarbageFallsBack(t *testing.T) {
	assert.Equal(t, DefaultRepaymentOrder(), ParseRepaymentOrder("[not json"))
	assert.Equal(t, DefaultRepaymentOrder(), ParseRepaymentOrder("vat,rounding"))
}
