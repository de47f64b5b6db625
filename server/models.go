// Package server defines the per-server registry record.
package server

import (
	"github.com/xraph/stipend/types"
)

// MaxIDLength is the longest permitted server identifier.
const MaxIDLength = 32

// Record is the persisted state of one registered server.
//
// ID is chosen by the registering authority, unique within the registry,
// and immutable for the life of the record. Deactivated records are
// retained (Active = false) so historical lookups and reassignment of
// residual rewards remain possible.
type Record struct {
	types.Entity
	ID    string         `json:"id"`
	Owner types.Identity `json:"owner"`

	// Active is flipped to false on deactivation and never back.
	Active bool `json:"active"`

	// RegisteredAt is the domain clock reading at registration, in unix
	// seconds. GracePeriodEnd is RegisteredAt plus the grace period; it is
	// recorded for off-system consumers but not enforced by the engine.
	RegisteredAt   int64 `json:"registered_at"`
	GracePeriodEnd int64 `json:"grace_period_end"`

	// PendingRewards is increased only by metrics accrual and reset to
	// zero only by a claim payout or a stale reclaim.
	PendingRewards types.Balance `json:"pending_rewards"`

	// LastMetricsUpdate is the unix-second timestamp of the most recent
	// accepted metrics report, 0 until the first one.
	LastMetricsUpdate int64 `json:"last_metrics_update"`
}

// OwnedBy reports whether the given identity is the record's current owner.
func (r *Record) OwnedBy(who types.Identity) bool {
	return r.Owner.Equal(who)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	cp := *r
	return &cp
}

// ListOpts filters and pages registry listings.
type ListOpts struct {
	ActiveOnly bool
	Owner      types.Identity
	Limit      int
	Offset     int
}
