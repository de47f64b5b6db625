// Package event defines the append-only audit stream of accepted transitions.
package event

import (
	"github.com/xraph/stipend/id"
	"github.com/xraph/stipend/types"
)

// Kind labels the transition an event describes.
type Kind string

// Event kinds, one per accepted transition.
const (
	KindServerRegistered   Kind = "server.registered"
	KindGracePeriodStarted Kind = "grace_period.started"
	KindMetricsUpdated     Kind = "metrics.updated"
	KindRewardsClaimed     Kind = "rewards.claimed"
	KindRewardsDeposited   Kind = "rewards.deposited"
	KindRewardsReclaimed   Kind = "rewards.reclaimed"
	KindServerDeregistered Kind = "server.deregistered"
	KindServerReassigned   Kind = "server.reassigned"
	KindPoolPaused         Kind = "pool.paused"
	KindPoolUnpaused       Kind = "pool.unpaused"
)

// Event is one entry in the audit stream. Events describe transitions that
// were accepted; rejected operations leave no trace here. The engine never
// reads events back — the stream exists for off-system consumers.
type Event struct {
	ID       id.EventID     `json:"id"`
	Kind     Kind           `json:"kind"`
	ServerID string         `json:"server_id,omitempty"`
	Actor    types.Identity `json:"actor,omitempty"`

	// Amount is the value the transition moved or accrued: points for a
	// metrics update, the payout for a claim, the deposit or forfeited
	// amount otherwise. Zero for pure lifecycle transitions.
	Amount uint64 `json:"amount,omitempty"`

	// PoolBalance is the reward-pool balance after the transition, for
	// transitions that touch the pool.
	PoolBalance uint64 `json:"pool_balance,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`

	// Timestamp is the domain clock reading, unix seconds.
	Timestamp int64 `json:"timestamp"`
}

// ListOpts filters and pages event listings.
type ListOpts struct {
	Kind     Kind
	ServerID string
	Since    int64
	Limit    int
	Offset   int
}
