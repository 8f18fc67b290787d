package types

import "errors"

// Error definitions for zero-tolerance error handling. Every failure aborts
// the enclosing call; nothing is swallowed or retried at this layer.
var (
	// Protocol violations.
	ErrUnknownAction      = errors.New("unknown action identifier")
	ErrMalformedArguments = errors.New("malformed action arguments")

	// Authorization violations.
	ErrUnauthorizedCaller = errors.New("caller is not the owning vault")

	// Precondition violations. The two reason strings are deliberately
	// distinct so callers can tell which target failed validation.
	ErrInvalidPool            = errors.New("pool is not a recognized factory deployment")
	ErrInvalidRewardsContract = errors.New("rewards contract is not a recognized deployment")
	ErrInvalidAmount          = errors.New("amount must be positive")

	// Numeric failures in valuation.
	ErrValuationUnderflow = errors.New("recognizable losses exceed pool value")
	ErrValuationOverflow  = errors.New("valuation arithmetic overflow")
)
