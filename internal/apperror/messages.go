package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Request validation
	CodeInvalidRequest:  "Arbitrage request is malformed",
	CodeRouteMismatch:   "Route does not return to the principal asset",
	CodeDeadlineExpired: "Request deadline has passed",

	// Loan gateway
	CodeLoanUnavailable:      "Loan source has insufficient liquidity",
	CodeLoanCeilingExceeded:  "Requested principal exceeds the loan ceiling",
	CodeUnauthorizedCallback: "Loan callback from unauthorized caller",
	CodeRepaymentShortfall:   "Repayment does not cover principal plus fee",
	CodeObligationClosed:     "Loan obligation already discharged",

	// Swap routing
	CodeSwapFailed:            "Venue rejected the swap",
	CodeVenueNotFound:         "Venue not registered",
	CodeInsufficientLiquidity: "Insufficient liquidity for trade size",

	// Profitability gate
	CodeNoArbitrage:          "Route produced no profit",
	CodeProfitBelowThreshold: "Profit below configured minimum",
	CodeResourceCostExceeded: "Resource cost above configured ceiling",

	// Admission control
	CodeEngineBusy:        "A settlement attempt is already in flight",
	CodeEnginePaused:      "Engine is paused",
	CodeReentrancyBlocked: "Reentrant settlement call blocked",

	// Access control and treasury
	CodeUnauthorized:        "Caller is not the configured operator",
	CodeInsufficientBalance: "Operating account balance too low",

	// Ledger
	CodeLedgerStoreError: "Trade ledger store operation failed",

	// Resource price oracle
	CodeOracleUnavailable: "Resource price oracle unavailable",
	CodeCircuitOpen:       "Circuit breaker is open",
}
