package domain

import (
	"encoding/json"
	"strings"
)

// Component identifies one repayable part of an installment.
type Component string

const (
	ComponentPenalty   Component = "penalty_amount"
	ComponentFee       Component = "fee_amount"
	ComponentInterest  Component = "interest"
	ComponentPrincipal Component = "principal"
)

// DefaultRepaymentOrder is applied when a product carries no usable
// repayment_order configuration.
func DefaultRepaymentOrder() []Component {
	return []Component{ComponentPenalty, ComponentFee, ComponentInterest, ComponentPrincipal}
}

// ParseRepaymentOrder normalizes a product's free-form repayment_order value
// into an ordered list of known components. The raw value may be a JSON array
// or a comma-separated string; unrecognized tokens are dropped. An empty or
// unparseable value falls back to the default order.
func ParseRepaymentOrder(raw string) []Component {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultRepaymentOrder()
	}

	var tokens []string
	if trimmed[0] == '[' || trimmed[0] == '{' {
		if err := json.Unmarshal([]byte(trimmed), &tokens); err != nil {
			tokens = strings.Split(raw, ",")
		}
	} else {
		tokens = strings.Split(raw, ",")
	}

	order := make([]Component, 0, len(tokens))
	for _, token := range tokens {
		switch strings.TrimSpace(token) {
		case "penalties", "penalty", "penalty_amount":
			order = append(order, ComponentPenalty)
		case "fees", "fee", "fee_amount":
			order = append(order, ComponentFee)
		case "interest":
			order = append(order, ComponentInterest)
		case "principal":
			order = append(order, ComponentPrincipal)
		}
	}

	if len(order) == 0 {
		return DefaultRepaymentOrder()
	}
	return order
}
