package stipend

import "errors"

// Sentinel errors returned by the engine and stores. Callers should match
// with errors.Is; operations wrap these with context where useful.
var (
	// Pool state errors
	ErrNotInitialized     = errors.New("stipend: pool not initialized")
	ErrAlreadyInitialized = errors.New("stipend: pool already initialized")
	ErrPaused             = errors.New("stipend: pool is paused")
	ErrUnauthorized       = errors.New("stipend: caller is not the pool authority")

	// Registration errors
	ErrServerIDTooLong    = errors.New("stipend: server id exceeds maximum length")
	ErrEmptyServerID      = errors.New("stipend: server id is empty")
	ErrDuplicateServerID  = errors.New("stipend: server id already registered")
	ErrServerNotFound     = errors.New("stipend: server not found")
	ErrServerNotActive    = errors.New("stipend: server is not active")

	// Accrual and claim errors
	ErrInvalidUptime          = errors.New("stipend: uptime exceeds 100 percent")
	ErrNumericOverflow        = errors.New("stipend: numeric overflow")
	ErrClaimCooldownActive    = errors.New("stipend: claim cooldown has not elapsed")
	ErrRewardsNotStale        = errors.New("stipend: rewards are not stale yet")
	ErrInsufficientRewardPool = errors.New("stipend: reward pool cannot cover amount")

	// Settlement errors
	ErrTransferFailed = errors.New("stipend: transfer failed")

	// Storage errors
	ErrAlreadyExists = errors.New("stipend: record already exists")
	ErrNotFound      = errors.New("stipend: record not found")
)

// IsNotFound reports whether err indicates a missing record of any kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrServerNotFound) ||
		errors.Is(err, ErrNotInitialized)
}

// IsConflict reports whether err indicates a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrDuplicateServerID) ||
		errors.Is(err, ErrAlreadyInitialized)
}

// IsRejected reports whether err is a domain rule rejection rather than an
// infrastructure failure. Rejected operations leave no state behind.
func IsRejected(err error) bool {
	switch {
	case errors.Is(err, ErrPaused),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrServerIDTooLong),
		errors.Is(err, ErrEmptyServerID),
		errors.Is(err, ErrInvalidUptime),
		errors.Is(err, ErrNumericOverflow),
		errors.Is(err, ErrClaimCooldownActive),
		errors.Is(err, ErrRewardsNotStale),
		errors.Is(err, ErrInsufficientRewardPool),
		errors.Is(err, ErrServerNotActive):
		return true
	}
	return false
}

// IsRetryable reports whether err is worth retrying. Settlement failures
// may be transient; rule rejections and conflicts are not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransferFailed)
}
