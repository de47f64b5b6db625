package stipend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/xraph/stipend/event"
	"github.com/xraph/stipend/id"
	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/plugin"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/store"
	"github.com/xraph/stipend/transfer"
	"github.com/xraph/stipend/treasury"
	"github.com/xraph/stipend/types"
)

// Domain windows, in seconds of the engine clock.
const (
	// GracePeriod is the onboarding window opened at registration.
	GracePeriod int64 = 7 * 24 * 60 * 60

	// ClaimCooldown is the minimum age of the newest telemetry report
	// before accrued rewards may be collected.
	ClaimCooldown int64 = 7 * 24 * 60 * 60

	// StalenessThreshold is how long a server may stay silent before the
	// authority can forfeit its accrued rewards.
	StalenessThreshold int64 = 365 * 24 * 60 * 60
)

// DefaultPoolAccount is the identity the reward pool settles through unless
// WithPoolAccount overrides it.
const DefaultPoolAccount types.Identity = "reward-pool"

// Engine is the reward pool engine: a registry of compute servers accruing
// points against a shared treasury, settled through a transfer.Mover.
type Engine struct {
	store   store.Store
	mover   transfer.Mover
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   func() time.Time

	poolAccount types.Identity

	// treasuryMu serializes every read-modify-write of the treasury row.
	// Server locks are acquired before it, never after.
	treasuryMu sync.Mutex

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	reportRetention time.Duration
	purgeInterval   time.Duration
}

// New creates a new Engine on top of a store and a settlement mover.
func New(s store.Store, m transfer.Mover, opts ...Option) *Engine {
	e := &Engine{
		store:         s,
		mover:         m,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		clock:         time.Now,
		poolAccount:   DefaultPoolAccount,
		locks:         make(map[string]*sync.Mutex),
		stopChan:      make(chan struct{}),
		purgeInterval: time.Hour,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock replaces the engine clock. All domain timestamps (registration,
// cooldowns, staleness) come from this clock, which makes time-dependent
// behavior testable.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithPoolAccount sets the identity the pool settles through.
func WithPoolAccount(account types.Identity) Option {
	return func(e *Engine) {
		e.poolAccount = account
	}
}

// WithReportRetention enables background purging of telemetry reports older
// than the given age. Zero keeps reports forever.
func WithReportRetention(age time.Duration) Option {
	return func(e *Engine) {
		e.reportRetention = age
	}
}

// WithPurgeInterval sets how often the purge worker runs.
func WithPurgeInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.purgeInterval = interval
	}
}

// Start migrates the store, initializes plugins and begins background workers.
func (e *Engine) Start(ctx context.Context) error {
	// Migrate database
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	e.plugins.EmitInit(ctx, e)

	// Start report purge worker
	if e.reportRetention > 0 {
		e.wg.Add(1)
		go e.purgeWorker(ctx)
	}

	e.logger.Info("stipend started",
		"pool_account", e.poolAccount,
		"report_retention", e.reportRetention,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Pool Administration
// ──────────────────────────────────────────────────

// Initialize creates the treasury with the given authority, an empty reward
// pool and mutations enabled. It fails if the treasury already exists.
func (e *Engine) Initialize(ctx context.Context, authority types.Identity) (*treasury.Treasury, error) {
	if authority.IsZero() {
		return nil, fmt.Errorf("%w: empty authority", ErrUnauthorized)
	}

	t := &treasury.Treasury{
		Entity:     types.NewEntity(),
		Authority:  authority,
		RewardPool: 0,
		Paused:     false,
	}

	if err := e.store.CreateTreasury(ctx, t); err != nil {
		return nil, err
	}

	e.logger.Info("treasury initialized", "authority", authority)
	return t, nil
}

// Pause halts every state-changing operation until Unpause. Only the
// authority may pause. Pausing an already paused pool is a no-op.
func (e *Engine) Pause(ctx context.Context, actor types.Identity) error {
	e.treasuryMu.Lock()
	defer e.treasuryMu.Unlock()

	t, err := e.store.GetTreasury(ctx)
	if err != nil {
		return err
	}
	if !t.AdministeredBy(actor) {
		return ErrUnauthorized
	}
	if t.Paused {
		return nil
	}

	t.Paused = true
	t.Touch()
	if err := e.store.UpdateTreasury(ctx, t); err != nil {
		return err
	}

	e.recordEvent(ctx, &event.Event{
		Kind:      event.KindPoolPaused,
		Actor:     actor,
		Timestamp: e.nowUnix(),
	})
	e.plugins.EmitPoolPaused(ctx, actor)

	e.logger.Warn("pool paused", "actor", actor)
	return nil
}

// Unpause resumes state-changing operations. Only the authority may unpause;
// the pause guard itself does not apply here.
func (e *Engine) Unpause(ctx context.Context, actor types.Identity) error {
	e.treasuryMu.Lock()
	defer e.treasuryMu.Unlock()

	t, err := e.store.GetTreasury(ctx)
	if err != nil {
		return err
	}
	if !t.AdministeredBy(actor) {
		return ErrUnauthorized
	}
	if !t.Paused {
		return nil
	}

	t.Paused = false
	t.Touch()
	if err := e.store.UpdateTreasury(ctx, t); err != nil {
		return err
	}

	e.recordEvent(ctx, &event.Event{
		Kind:      event.KindPoolUnpaused,
		Actor:     actor,
		Timestamp: e.nowUnix(),
	})
	e.plugins.EmitPoolUnpaused(ctx, actor)

	e.logger.Info("pool unpaused", "actor", actor)
	return nil
}

// ──────────────────────────────────────────────────
// Server Registry
// ──────────────────────────────────────────────────

// RegisterServer creates an active server record owned by owner and opens
// its grace period. Only the authority registers servers; the owner is the
// beneficiary, not the caller. Server ids are unique forever: a deactivated
// record still occupies its id.
func (e *Engine) RegisterServer(ctx context.Context, serverID string, owner, caller types.Identity) (*server.Record, error) {
	t, err := e.guard(ctx)
	if err != nil {
		return nil, err
	}
	if !t.AdministeredBy(caller) {
		return nil, ErrUnauthorized
	}
	if serverID == "" {
		return nil, ErrEmptyServerID
	}
	if len(serverID) > server.MaxIDLength {
		return nil, ErrServerIDTooLong
	}

	lock := e.serverLock(serverID)
	lock.Lock()
	defer lock.Unlock()

	now := e.nowUnix()
	rec := &server.Record{
		Entity:         types.NewEntity(),
		ID:             serverID,
		Owner:          owner,
		Active:         true,
		RegisteredAt:   now,
		GracePeriodEnd: now + GracePeriod,
	}

	if err := e.store.CreateServer(ctx, rec); err != nil {
		return nil, err
	}

	e.recordEvent(ctx, &event.Event{
		Kind:      event.KindServerRegistered,
		ServerID:  serverID,
		Actor:     owner,
		Timestamp: now,
	})
	e.recordEvent(ctx, &event.Event{
		Kind:      event.KindGracePeriodStarted,
		ServerID:  serverID,
		Actor:     owner,
		Metadata:  map[string]string{"grace_period_end": strconv.FormatInt(rec.GracePeriodEnd, 10)},
		Timestamp: now,
	})
	e.plugins.EmitServerRegistered(ctx, rec)
	e.plugins.EmitGracePeriodStarted(ctx, rec, rec.GracePeriodEnd)

	e.logger.Info("server registered",
		"server_id", serverID,
		"owner", owner,
	)
	return rec.Clone(), nil
}

// DeactivateServer marks a record inactive. Only the authority may
// deactivate. Accrued rewards survive deactivation and remain claimable by
// the owner; deactivating an already inactive record is a no-op.
func (e *Engine) DeactivateServer(ctx context.Context, serverID string, caller types.Identity) error {
	t, err := e.guard(ctx)
	if err != nil {
		return err
	}
	if !t.AdministeredBy(caller) {
		return ErrUnauthorized
	}

	lock := e.serverLock(serverID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.store.GetServer(ctx, serverID)
	if err != nil {
		return err
	}
	if !rec.Active {
		return nil
	}

	rec.Active = false
	rec.Touch()
	if err := e.store.UpdateServer(ctx, rec); err != nil {
		return err
	}

	e.recordEvent(ctx, &event.Event{
		Kind:      event.KindServerDeregistered,
		ServerID:  serverID,
		Actor:     caller,
		Amount:    rec.PendingRewards.Uint64(),
		Timestamp: e.nowUnix(),
	})
	e.plugins.EmitServerDeactivated(ctx, rec)

	e.logger.Info("server deactivated",
		"server_id", serverID,
		"pending_rewards", rec.PendingRewards,
	)
	return nil
}

// ReassignServer transfers ownership of an active record to newOwner. Only
// the authority may reassign; accrued rewards move with the record.
func (e *Engine) ReassignServer(ctx context.Context, serverID string, newOwner, caller types.Identity) error {
	t, err := e.guard(ctx)
	if err != nil {
		return err
	}
	if !t.AdministeredBy(caller) {
		return ErrUnauthorized
	}
	if newOwner.IsZero() {
		return fmt.Errorf("%w: empty new owner", ErrUnauthorized)
	}

	lock := e.serverLock(serverID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.store.GetServer(ctx, serverID)
	if err != nil {
		return err
	}
	if !rec.Active {
		return ErrServerNotActive
	}

	oldOwner := rec.Owner
	rec.Owner = newOwner
	rec.Touch()
	if err := e.store.UpdateServer(ctx, rec); err != nil {
		return err
	}

	e.recordEvent(ctx, &event.Event{
		Kind:     event.KindServerReassigned,
		ServerID: serverID,
		Actor:    caller,
		Metadata: map[string]string{
			"old_owner": oldOwner.String(),
			"new_owner": newOwner.String(),
		},
		Timestamp: e.nowUnix(),
	})
	e.plugins.EmitServerReassigned(ctx, rec, oldOwner, newOwner)

	e.logger.Info("server reassigned",
		"server_id", serverID,
		"old_owner", oldOwner,
		"new_owner", newOwner,
	)
	return nil
}

// ──────────────────────────────────────────────────
// Telemetry and Accrual
// ──────────────────────────────────────────────────

// SubmitMetrics records a telemetry report for a server and accrues its
// points onto the record's pending rewards. Metrics are attested by the
// authority, not the server owner. Inactive records still accept reports;
// their accruals stay claimable by the owner.
func (e *Engine) SubmitMetrics(ctx context.Context, serverID string, uptime uint8, tasksCompleted, points uint64, caller types.Identity) (*metrics.Report, error) {
	t, err := e.guard(ctx)
	if err != nil {
		return nil, err
	}
	if !t.AdministeredBy(caller) {
		return nil, ErrUnauthorized
	}
	if uptime > metrics.MaxUptime {
		return nil, ErrInvalidUptime
	}

	lock := e.serverLock(serverID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.store.GetServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	accrued, ok := rec.PendingRewards.CheckedAdd(points)
	if !ok {
		return nil, ErrNumericOverflow
	}

	now := e.nowUnix()
	rec.PendingRewards = accrued
	rec.LastMetricsUpdate = now
	rec.Touch()
	if err := e.store.UpdateServer(ctx, rec); err != nil {
		return nil, err
	}

	rep := &metrics.Report{
		ID:             id.NewReportID(),
		ServerID:       serverID,
		Uptime:         uptime,
		TasksCompleted: tasksCompleted,
		Points:         points,
		SubmittedAt:    now,
	}
	// The record is the source of truth for accrual; report history is
	// supplemental and must not fail the submission.
	if err := e.store.RecordReport(ctx, rep); err != nil {
		e.logger.Warn("failed to record telemetry report",
			"server_id", serverID,
			"error", err,
		)
	}

	e.recordEvent(ctx, &event.Event{
		Kind:      event.KindMetricsUpdated,
		ServerID:  serverID,
		Amount:    points,
		Metadata:  map[string]string{"uptime": strconv.FormatUint(uint64(uptime), 10)},
		Timestamp: now,
	})
	e.plugins.EmitMetricsSubmitted(ctx, rec, rep)

	e.logger.Debug("metrics submitted",
		"server_id", serverID,
		"points", points,
		"pending_rewards", rec.PendingRewards,
	)
	return rep, nil
}

// ──────────────────────────────────────────────────
// Claims and Pool Funding
// ──────────────────────────────────────────────────

// ClaimRewards pays a record's accrued rewards out of the pool to its
// owner. Only the owner may claim, the newest telemetry must be at least
// ClaimCooldown old, and the pool must cover the full amount. The payout
// settles through the configured mover before any balances move.
func (e *Engine) ClaimRewards(ctx context.Context, serverID string, caller types.Identity) (uint64, error) {
	if _, err := e.guard(ctx); err != nil {
		return 0, err
	}

	lock := e.serverLock(serverID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.store.GetServer(ctx, serverID)
	if err != nil {
		return 0, err
	}
	if !rec.OwnedBy(caller) {
		return 0, ErrUnauthorized
	}

	now := e.nowUnix()
	if rec.LastMetricsUpdate != 0 && now-rec.LastMetricsUpdate < ClaimCooldown {
		return 0, ErrClaimCooldownActive
	}

	amount := rec.PendingRewards.Uint64()

	e.treasuryMu.Lock()
	defer e.treasuryMu.Unlock()

	t, err := e.store.GetTreasury(ctx)
	if err != nil {
		return 0, err
	}
	remaining, ok := t.RewardPool.CheckedSub(amount)
	if !ok {
		return 0, ErrInsufficientRewardPool
	}

	if err := e.mover.Transfer(ctx, e.poolAccount, caller, amount); err != nil {
		return 0, e.settlementFailure(ctx, err, e.poolAccount, caller, amount)
	}

	t.RewardPool = remaining
	t.Touch()
	rec.PendingRewards = 0
	rec.Touch()

	if err := e.persistClaim(ctx, t, rec); err != nil {
		// Bookkeeping failed after value moved; send it back.
		e.reverse(ctx, caller, e.poolAccount, amount)
		return 0, err
	}

	e.recordEvent(ctx, &event.Event{
		Kind:        event.KindRewardsClaimed,
		ServerID:    serverID,
		Actor:       caller,
		Amount:      amount,
		PoolBalance: remaining.Uint64(),
		Timestamp:   now,
	})
	e.plugins.EmitRewardsClaimed(ctx, rec, amount)

	e.logger.Info("rewards claimed",
		"server_id", serverID,
		"owner", caller,
		"amount", amount,
		"pool_balance", remaining,
	)
	return amount, nil
}

// DepositRewards funds the pool. Only the authority may deposit; the value
// settles from the caller to the pool account before the pool balance grows.
func (e *Engine) DepositRewards(ctx context.Context, depositor types.Identity, amount uint64) error {
	gt, err := e.guard(ctx)
	if err != nil {
		return err
	}
	if !gt.AdministeredBy(depositor) {
		return ErrUnauthorized
	}

	e.treasuryMu.Lock()
	defer e.treasuryMu.Unlock()

	t, err := e.store.GetTreasury(ctx)
	if err != nil {
		return err
	}
	grown, ok := t.RewardPool.CheckedAdd(amount)
	if !ok {
		return ErrNumericOverflow
	}

	if err := e.mover.Transfer(ctx, depositor, e.poolAccount, amount); err != nil {
		return e.settlementFailure(ctx, err, depositor, e.poolAccount, amount)
	}

	t.RewardPool = grown
	t.Touch()
	if err := e.store.UpdateTreasury(ctx, t); err != nil {
		e.reverse(ctx, e.poolAccount, depositor, amount)
		return err
	}

	e.recordEvent(ctx, &event.Event{
		Kind:        event.KindRewardsDeposited,
		Actor:       depositor,
		Amount:      amount,
		PoolBalance: grown.Uint64(),
		Timestamp:   e.nowUnix(),
	})
	e.plugins.EmitRewardsDeposited(ctx, depositor, amount, grown.Uint64())

	e.logger.Info("rewards deposited",
		"depositor", depositor,
		"amount", amount,
		"pool_balance", grown,
	)
	return nil
}

// ReclaimStaleRewards forfeits the accrued rewards of a server whose newest
// telemetry is at least StalenessThreshold old. Only the authority may
// reclaim. The forfeited amount leaves the books entirely; it is not
// returned to the pool.
func (e *Engine) ReclaimStaleRewards(ctx context.Context, serverID string, caller types.Identity) (uint64, error) {
	t, err := e.guard(ctx)
	if err != nil {
		return 0, err
	}
	if !t.AdministeredBy(caller) {
		return 0, ErrUnauthorized
	}

	lock := e.serverLock(serverID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := e.store.GetServer(ctx, serverID)
	if err != nil {
		return 0, err
	}

	// A record that never reported measures staleness from registration.
	basis := rec.LastMetricsUpdate
	if basis == 0 {
		basis = rec.RegisteredAt
	}
	now := e.nowUnix()
	if now-basis < StalenessThreshold {
		return 0, ErrRewardsNotStale
	}

	forfeited := rec.PendingRewards.Uint64()
	rec.PendingRewards = 0
	rec.Touch()
	if err := e.store.UpdateServer(ctx, rec); err != nil {
		return 0, err
	}

	e.recordEvent(ctx, &event.Event{
		Kind:      event.KindRewardsReclaimed,
		ServerID:  serverID,
		Actor:     caller,
		Amount:    forfeited,
		Timestamp: now,
	})
	e.plugins.EmitRewardsReclaimed(ctx, rec, forfeited)

	e.logger.Info("stale rewards reclaimed",
		"server_id", serverID,
		"forfeited", forfeited,
	)
	return forfeited, nil
}

// ──────────────────────────────────────────────────
// Read Side
// ──────────────────────────────────────────────────

// Treasury returns the treasury state.
func (e *Engine) Treasury(ctx context.Context) (*treasury.Treasury, error) {
	return e.store.GetTreasury(ctx)
}

// PoolBalance returns the reward pool balance.
func (e *Engine) PoolBalance(ctx context.Context) (uint64, error) {
	t, err := e.store.GetTreasury(ctx)
	if err != nil {
		return 0, err
	}
	return t.RewardPool.Uint64(), nil
}

// Paused reports whether mutations are currently halted.
func (e *Engine) Paused(ctx context.Context) (bool, error) {
	t, err := e.store.GetTreasury(ctx)
	if err != nil {
		return false, err
	}
	return t.Paused, nil
}

// Authority returns the pool authority identity.
func (e *Engine) Authority(ctx context.Context) (types.Identity, error) {
	t, err := e.store.GetTreasury(ctx)
	if err != nil {
		return "", err
	}
	return t.Authority, nil
}

// Server returns a server record by id.
func (e *Engine) Server(ctx context.Context, serverID string) (*server.Record, error) {
	return e.store.GetServer(ctx, serverID)
}

// Servers lists server records.
func (e *Engine) Servers(ctx context.Context, opts server.ListOpts) ([]*server.Record, error) {
	return e.store.ListServers(ctx, opts)
}

// Reports queries stored telemetry reports.
func (e *Engine) Reports(ctx context.Context, opts metrics.QueryOpts) ([]*metrics.Report, error) {
	return e.store.QueryReports(ctx, opts)
}

// Events lists the audit stream.
func (e *Engine) Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	return e.store.ListEvents(ctx, opts)
}

// Plugins exposes the plugin registry.
func (e *Engine) Plugins() *plugin.Registry {
	return e.plugins
}

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

// guard loads the treasury and rejects the operation if mutations are
// paused. Every state-changing operation except Initialize and Unpause
// passes through it.
func (e *Engine) guard(ctx context.Context) (*treasury.Treasury, error) {
	t, err := e.store.GetTreasury(ctx)
	if err != nil {
		return nil, err
	}
	if t.Paused {
		return nil, ErrPaused
	}
	return t, nil
}

// serverLock returns the mutex guarding one server id's read-modify-write
// cycle. Locks are never reclaimed; the registry is expected to stay small
// relative to memory.
func (e *Engine) serverLock(serverID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	if l, ok := e.locks[serverID]; ok {
		return l
	}
	l := new(sync.Mutex)
	e.locks[serverID] = l
	return l
}

// persistClaim writes the treasury and server updates of a claim.
func (e *Engine) persistClaim(ctx context.Context, t *treasury.Treasury, rec *server.Record) error {
	if err := e.store.UpdateTreasury(ctx, t); err != nil {
		return err
	}
	return e.store.UpdateServer(ctx, rec)
}

// settlementFailure wraps a mover rejection and notifies plugins.
func (e *Engine) settlementFailure(ctx context.Context, err error, from, to types.Identity, amount uint64) error {
	terr := &transfer.Error{From: from, To: to, Amount: amount, Err: err}
	var existing *transfer.Error
	if errors.As(err, &existing) {
		terr = existing
	}

	e.plugins.EmitTransferFailed(ctx, terr)
	e.logger.Error("settlement failed",
		"from", terr.From,
		"to", terr.To,
		"amount", terr.Amount,
		"error", terr.Err,
	)
	return fmt.Errorf("%w: %v", ErrTransferFailed, err)
}

// reverse sends value back after bookkeeping failed post-settlement. Best
// effort: a failure here is logged and left for operator reconciliation.
func (e *Engine) reverse(ctx context.Context, from, to types.Identity, amount uint64) {
	if err := e.mover.Transfer(ctx, from, to, amount); err != nil {
		e.logger.Error("compensating transfer failed, manual reconciliation required",
			"from", from,
			"to", to,
			"amount", amount,
			"error", err,
		)
	}
}

// recordEvent appends to the audit stream and fans the event out to
// subscribed plugins. Append failures are logged, not returned: the state
// transition already happened.
func (e *Engine) recordEvent(ctx context.Context, ev *event.Event) {
	ev.ID = id.NewEventID()
	if err := e.store.AppendEvent(ctx, ev); err != nil {
		e.logger.Warn("failed to append audit event",
			"kind", ev.Kind,
			"error", err,
		)
	}
	e.plugins.EmitEvent(ctx, ev)
}

// purgeWorker deletes telemetry reports older than the retention window.
func (e *Engine) purgeWorker(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			cutoff := e.clock().Add(-e.reportRetention).Unix()
			purged, err := e.store.PurgeReports(ctx, cutoff)
			if err != nil {
				e.logger.Error("report purge failed", "error", err)
				continue
			}
			if purged > 0 {
				e.logger.Debug("purged telemetry reports",
					"count", purged,
					"cutoff", cutoff,
				)
			}
		}
	}
}

func (e *Engine) nowUnix() int64 {
	return e.clock().Unix()
}
