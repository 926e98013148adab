package operation

import "stockpro/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for operations.
	// Operations are primary trade documents, so we use Strict strategy.
	NumeratorStrategy = numerator.StrategyStrict

	// NumberPrefix for generated operation numbers (OP-2026-00001).
	NumberPrefix = "OP"
)
