package purchaseorder

import "stockpro/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for purchase
	// orders.
	NumeratorStrategy = numerator.StrategyStrict

	// NumberPrefix for generated order numbers (OC-2026-00001).
	NumberPrefix = "OC"
)
