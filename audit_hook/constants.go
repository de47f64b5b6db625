package audithook

// Action constants for audit events.
const (
	// Registry actions
	ActionServerRegistered  = "server.registered"
	ActionServerDeactivated = "server.deactivated"
	ActionServerReassigned  = "server.reassigned"

	// Telemetry actions
	ActionMetricsSubmitted = "metrics.submitted"

	// Pool actions
	ActionRewardsClaimed   = "rewards.claimed"
	ActionRewardsDeposited = "rewards.deposited"
	ActionRewardsReclaimed = "rewards.reclaimed"
	ActionPoolPaused       = "pool.paused"
	ActionPoolUnpaused     = "pool.unpaused"

	// Settlement actions
	ActionTransferFailed = "transfer.failed"
)

// Resource constants for audit events.
const (
	ResourceServer   = "server"
	ResourceTreasury = "treasury"
	ResourceReport   = "report"
	ResourceTransfer = "transfer"
)

// Category constants for audit events.
const (
	CategoryRegistry   = "registry"
	CategoryTelemetry  = "telemetry"
	CategoryRewards    = "rewards"
	CategorySettlement = "settlement"
	CategoryAdmin      = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
