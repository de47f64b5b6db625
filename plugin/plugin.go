// Package plugin provides an extensible plugin system for Stipend.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/stipend/event"
	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/transfer"
	"github.com/xraph/stipend/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Registry lifecycle hooks
// ──────────────────────────────────────────────────

// OnServerRegistered is called when a new server record is created.
type OnServerRegistered interface {
	Plugin
	OnServerRegistered(ctx context.Context, rec *server.Record) error
}

// OnGracePeriodStarted is called alongside registration when the
// post-registration grace window opens.
type OnGracePeriodStarted interface {
	Plugin
	OnGracePeriodStarted(ctx context.Context, rec *server.Record, end int64) error
}

// OnServerDeactivated is called when a server record is deactivated.
type OnServerDeactivated interface {
	Plugin
	OnServerDeactivated(ctx context.Context, rec *server.Record) error
}

// OnServerReassigned is called when a server record changes owner.
type OnServerReassigned interface {
	Plugin
	OnServerReassigned(ctx context.Context, rec *server.Record, oldOwner, newOwner types.Identity) error
}

// ──────────────────────────────────────────────────
// Accrual hooks
// ──────────────────────────────────────────────────

// OnMetricsSubmitted is called when a telemetry report is accepted.
type OnMetricsSubmitted interface {
	Plugin
	OnMetricsSubmitted(ctx context.Context, rec *server.Record, rep *metrics.Report) error
}

// ──────────────────────────────────────────────────
// Pool hooks
// ──────────────────────────────────────────────────

// OnRewardsClaimed is called when an owner collects accrued rewards.
type OnRewardsClaimed interface {
	Plugin
	OnRewardsClaimed(ctx context.Context, rec *server.Record, amount uint64) error
}

// OnRewardsDeposited is called when the pool is funded.
type OnRewardsDeposited interface {
	Plugin
	OnRewardsDeposited(ctx context.Context, depositor types.Identity, amount, poolBalance uint64) error
}

// OnRewardsReclaimed is called when stale rewards are forfeited.
type OnRewardsReclaimed interface {
	Plugin
	OnRewardsReclaimed(ctx context.Context, rec *server.Record, forfeited uint64) error
}

// OnPoolPaused is called when the authority halts mutations.
type OnPoolPaused interface {
	Plugin
	OnPoolPaused(ctx context.Context, actor types.Identity) error
}

// OnPoolUnpaused is called when the authority resumes mutations.
type OnPoolUnpaused interface {
	Plugin
	OnPoolUnpaused(ctx context.Context, actor types.Identity) error
}

// OnTransferFailed is called when a settlement attempt is rejected by the
// configured Mover.
type OnTransferFailed interface {
	Plugin
	OnTransferFailed(ctx context.Context, terr *transfer.Error) error
}

// ──────────────────────────────────────────────────
// Audit stream hooks
// ──────────────────────────────────────────────────

// OnEvent receives every appended audit event. Plugins that only care about
// one transition should prefer the specific hook for it.
type OnEvent interface {
	Plugin
	OnEvent(ctx context.Context, e *event.Event) error
}
