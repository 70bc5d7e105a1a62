package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Settlement pipeline error codes
const (
	// Request validation, rejected before any state change
	CodeInvalidRequest  Code = "INVALID_REQUEST"
	CodeRouteMismatch   Code = "ROUTE_MISMATCH"
	CodeDeadlineExpired Code = "DEADLINE_EXPIRED"

	// Loan gateway
	CodeLoanUnavailable      Code = "LOAN_UNAVAILABLE"
	CodeLoanCeilingExceeded  Code = "LOAN_CEILING_EXCEEDED"
	CodeUnauthorizedCallback Code = "UNAUTHORIZED_CALLBACK"
	CodeRepaymentShortfall   Code = "REPAYMENT_SHORTFALL"
	CodeObligationClosed     Code = "OBLIGATION_CLOSED"

	// Swap routing
	CodeSwapFailed            Code = "SWAP_FAILED"
	CodeVenueNotFound         Code = "VENUE_NOT_FOUND"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"

	// Profitability gate
	CodeNoArbitrage          Code = "NO_ARBITRAGE"
	CodeProfitBelowThreshold Code = "PROFIT_BELOW_THRESHOLD"
	CodeResourceCostExceeded Code = "RESOURCE_COST_EXCEEDED"

	// Admission control
	CodeEngineBusy        Code = "ENGINE_BUSY"
	CodeEnginePaused      Code = "ENGINE_PAUSED"
	CodeReentrancyBlocked Code = "REENTRANCY_BLOCKED"

	// Access control and treasury
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"

	// Ledger
	CodeLedgerStoreError Code = "LEDGER_STORE_ERROR"

	// Resource price oracle
	CodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"
	CodeCircuitOpen       Code = "CIRCUIT_OPEN"
)
