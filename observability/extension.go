// Package observability provides a metrics extension for Stipend that records
// lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/plugin"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/transfer"
	"github.com/xraph/stipend/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnServerRegistered  = (*MetricsExtension)(nil)
	_ plugin.OnServerDeactivated = (*MetricsExtension)(nil)
	_ plugin.OnServerReassigned  = (*MetricsExtension)(nil)
	_ plugin.OnMetricsSubmitted  = (*MetricsExtension)(nil)
	_ plugin.OnRewardsClaimed    = (*MetricsExtension)(nil)
	_ plugin.OnRewardsDeposited  = (*MetricsExtension)(nil)
	_ plugin.OnRewardsReclaimed  = (*MetricsExtension)(nil)
	_ plugin.OnPoolPaused        = (*MetricsExtension)(nil)
	_ plugin.OnPoolUnpaused      = (*MetricsExtension)(nil)
	_ plugin.OnTransferFailed    = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Stipend plugin to automatically track registry and
// reward pool activity.
type MetricsExtension struct {
	factory MetricFactory

	// Registry metrics
	ServersRegistered  Counter
	ServersDeactivated Counter
	ServersReassigned  Counter

	// Telemetry metrics
	ReportsAccepted Counter
	ReportPoints    Histogram
	ReportUptime    Histogram

	// Reward metrics
	RewardsClaimed   Counter
	RewardsDeposited Counter
	RewardsReclaimed Counter
	ClaimAmount      Histogram
	DepositAmount    Histogram
	ForfeitedAmount  Histogram

	// Admin metrics
	PoolPaused   Counter
	PoolUnpaused Counter

	// Settlement metrics
	TransferFailures Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Registry metrics
		ServersRegistered:  factory.Counter("stipend.server.registered"),
		ServersDeactivated: factory.Counter("stipend.server.deactivated"),
		ServersReassigned:  factory.Counter("stipend.server.reassigned"),

		// Telemetry metrics
		ReportsAccepted: factory.Counter("stipend.report.accepted"),
		ReportPoints:    factory.Histogram("stipend.report.points"),
		ReportUptime:    factory.Histogram("stipend.report.uptime"),

		// Reward metrics
		RewardsClaimed:   factory.Counter("stipend.rewards.claimed"),
		RewardsDeposited: factory.Counter("stipend.rewards.deposited"),
		RewardsReclaimed: factory.Counter("stipend.rewards.reclaimed"),
		ClaimAmount:      factory.Histogram("stipend.rewards.claim_amount"),
		DepositAmount:    factory.Histogram("stipend.rewards.deposit_amount"),
		ForfeitedAmount:  factory.Histogram("stipend.rewards.forfeited_amount"),

		// Admin metrics
		PoolPaused:   factory.Counter("stipend.pool.paused"),
		PoolUnpaused: factory.Counter("stipend.pool.unpaused"),

		// Settlement metrics
		TransferFailures: factory.Counter("stipend.transfer.failures"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Registry lifecycle hooks
// ──────────────────────────────────────────────────

// OnServerRegistered implements plugin.OnServerRegistered.
func (m *MetricsExtension) OnServerRegistered(_ context.Context, _ *server.Record) error {
	m.ServersRegistered.Inc()
	return nil
}

// OnServerDeactivated implements plugin.OnServerDeactivated.
func (m *MetricsExtension) OnServerDeactivated(_ context.Context, _ *server.Record) error {
	m.ServersDeactivated.Inc()
	return nil
}

// OnServerReassigned implements plugin.OnServerReassigned.
func (m *MetricsExtension) OnServerReassigned(_ context.Context, _ *server.Record, _, _ types.Identity) error {
	m.ServersReassigned.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Telemetry hooks
// ──────────────────────────────────────────────────

// OnMetricsSubmitted implements plugin.OnMetricsSubmitted.
func (m *MetricsExtension) OnMetricsSubmitted(_ context.Context, _ *server.Record, rep *metrics.Report) error {
	m.ReportsAccepted.Inc()
	m.ReportPoints.Observe(float64(rep.Points))
	m.ReportUptime.Observe(float64(rep.Uptime))
	return nil
}

// ──────────────────────────────────────────────────
// Reward hooks
// ──────────────────────────────────────────────────

// OnRewardsClaimed implements plugin.OnRewardsClaimed.
func (m *MetricsExtension) OnRewardsClaimed(_ context.Context, _ *server.Record, amount uint64) error {
	m.RewardsClaimed.Inc()
	m.ClaimAmount.Observe(float64(amount))
	return nil
}

// OnRewardsDeposited implements plugin.OnRewardsDeposited.
func (m *MetricsExtension) OnRewardsDeposited(_ context.Context, _ types.Identity, amount, _ uint64) error {
	m.RewardsDeposited.Inc()
	m.DepositAmount.Observe(float64(amount))
	return nil
}

// OnRewardsReclaimed implements plugin.OnRewardsReclaimed.
func (m *MetricsExtension) OnRewardsReclaimed(_ context.Context, _ *server.Record, forfeited uint64) error {
	m.RewardsReclaimed.Inc()
	m.ForfeitedAmount.Observe(float64(forfeited))
	return nil
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnPoolPaused implements plugin.OnPoolPaused.
func (m *MetricsExtension) OnPoolPaused(_ context.Context, _ types.Identity) error {
	m.PoolPaused.Inc()
	return nil
}

// OnPoolUnpaused implements plugin.OnPoolUnpaused.
func (m *MetricsExtension) OnPoolUnpaused(_ context.Context, _ types.Identity) error {
	m.PoolUnpaused.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnTransferFailed implements plugin.OnTransferFailed.
func (m *MetricsExtension) OnTransferFailed(_ context.Context, _ *transfer.Error) error {
	m.TransferFailures.Inc()
	return nil
}
