// Package audithook bridges Stipend lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import any
// concrete audit system directly. Callers inject a RecorderFunc adapter
// that bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/plugin"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/transfer"
	"github.com/xraph/stipend/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnServerRegistered  = (*Extension)(nil)
	_ plugin.OnServerDeactivated = (*Extension)(nil)
	_ plugin.OnServerReassigned  = (*Extension)(nil)
	_ plugin.OnMetricsSubmitted  = (*Extension)(nil)
	_ plugin.OnRewardsClaimed    = (*Extension)(nil)
	_ plugin.OnRewardsDeposited  = (*Extension)(nil)
	_ plugin.OnRewardsReclaimed  = (*Extension)(nil)
	_ plugin.OnPoolPaused        = (*Extension)(nil)
	_ plugin.OnPoolUnpaused      = (*Extension)(nil)
	_ plugin.OnTransferFailed    = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement. It is
// defined locally so that the audit_hook package does not depend on any
// specific audit system — callers inject the concrete backend at wiring
// time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Stipend lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Registry lifecycle hooks
// ──────────────────────────────────────────────────

// OnServerRegistered implements plugin.OnServerRegistered.
func (e *Extension) OnServerRegistered(ctx context.Context, rec *server.Record) error {
	return e.record(ctx, ActionServerRegistered, SeverityInfo, OutcomeSuccess,
		ResourceServer, rec.ID, CategoryRegistry, nil,
		"owner", rec.Owner.String(),
		"grace_period_end", rec.GracePeriodEnd,
	)
}

// OnServerDeactivated implements plugin.OnServerDeactivated.
func (e *Extension) OnServerDeactivated(ctx context.Context, rec *server.Record) error {
	return e.record(ctx, ActionServerDeactivated, SeverityInfo, OutcomeSuccess,
		ResourceServer, rec.ID, CategoryRegistry, nil,
		"owner", rec.Owner.String(),
		"pending_rewards", rec.PendingRewards.Uint64(),
	)
}

// OnServerReassigned implements plugin.OnServerReassigned.
func (e *Extension) OnServerReassigned(ctx context.Context, rec *server.Record, oldOwner, newOwner types.Identity) error {
	return e.record(ctx, ActionServerReassigned, SeverityInfo, OutcomeSuccess,
		ResourceServer, rec.ID, CategoryRegistry, nil,
		"old_owner", oldOwner.String(),
		"new_owner", newOwner.String(),
	)
}

// ──────────────────────────────────────────────────
// Telemetry hooks
// ──────────────────────────────────────────────────

// OnMetricsSubmitted implements plugin.OnMetricsSubmitted.
func (e *Extension) OnMetricsSubmitted(ctx context.Context, rec *server.Record, rep *metrics.Report) error {
	return e.record(ctx, ActionMetricsSubmitted, SeverityInfo, OutcomeSuccess,
		ResourceReport, rep.ID.String(), CategoryTelemetry, nil,
		"server_id", rec.ID,
		"points", rep.Points,
		"uptime", rep.Uptime,
	)
}

// ──────────────────────────────────────────────────
// Pool hooks
// ──────────────────────────────────────────────────

// OnRewardsClaimed implements plugin.OnRewardsClaimed.
func (e *Extension) OnRewardsClaimed(ctx context.Context, rec *server.Record, amount uint64) error {
	return e.record(ctx, ActionRewardsClaimed, SeverityInfo, OutcomeSuccess,
		ResourceServer, rec.ID, CategoryRewards, nil,
		"owner", rec.Owner.String(),
		"amount", amount,
	)
}

// OnRewardsDeposited implements plugin.OnRewardsDeposited.
func (e *Extension) OnRewardsDeposited(ctx context.Context, depositor types.Identity, amount, poolBalance uint64) error {
	return e.record(ctx, ActionRewardsDeposited, SeverityInfo, OutcomeSuccess,
		ResourceTreasury, "", CategoryRewards, nil,
		"depositor", depositor.String(),
		"amount", amount,
		"pool_balance", poolBalance,
	)
}

// OnRewardsReclaimed implements plugin.OnRewardsReclaimed.
func (e *Extension) OnRewardsReclaimed(ctx context.Context, rec *server.Record, forfeited uint64) error {
	return e.record(ctx, ActionRewardsReclaimed, SeverityWarning, OutcomeSuccess,
		ResourceServer, rec.ID, CategoryRewards, nil,
		"forfeited", forfeited,
	)
}

// OnPoolPaused implements plugin.OnPoolPaused.
func (e *Extension) OnPoolPaused(ctx context.Context, actor types.Identity) error {
	return e.record(ctx, ActionPoolPaused, SeverityWarning, OutcomeSuccess,
		ResourceTreasury, "", CategoryAdmin, nil,
		"actor", actor.String(),
	)
}

// OnPoolUnpaused implements plugin.OnPoolUnpaused.
func (e *Extension) OnPoolUnpaused(ctx context.Context, actor types.Identity) error {
	return e.record(ctx, ActionPoolUnpaused, SeverityInfo, OutcomeSuccess,
		ResourceTreasury, "", CategoryAdmin, nil,
		"actor", actor.String(),
	)
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnTransferFailed implements plugin.OnTransferFailed.
func (e *Extension) OnTransferFailed(ctx context.Context, terr *transfer.Error) error {
	return e.record(ctx, ActionTransferFailed, SeverityCritical, OutcomeFailure,
		ResourceTransfer, "", CategorySettlement, terr.Err,
		"from", terr.From.String(),
		"to", terr.To.String(),
		"amount", terr.Amount,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
