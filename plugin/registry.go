package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/stipend/event"
	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/transfer"
	"github.com/xraph/stipend/types"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit               []OnInit
	onShutdown           []OnShutdown
	onServerRegistered   []OnServerRegistered
	onGracePeriodStarted []OnGracePeriodStarted
	onServerDeactivated  []OnServerDeactivated
	onServerReassigned   []OnServerReassigned
	onMetricsSubmitted   []OnMetricsSubmitted
	onRewardsClaimed     []OnRewardsClaimed
	onRewardsDeposited   []OnRewardsDeposited
	onRewardsReclaimed   []OnRewardsReclaimed
	onPoolPaused         []OnPoolPaused
	onPoolUnpaused       []OnPoolUnpaused
	onTransferFailed     []OnTransferFailed
	onEvent              []OnEvent
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnServerRegistered); ok {
		r.onServerRegistered = append(r.onServerRegistered, v)
	}
	if v, ok := p.(OnGracePeriodStarted); ok {
		r.onGracePeriodStarted = append(r.onGracePeriodStarted, v)
	}
	if v, ok := p.(OnServerDeactivated); ok {
		r.onServerDeactivated = append(r.onServerDeactivated, v)
	}
	if v, ok := p.(OnServerReassigned); ok {
		r.onServerReassigned = append(r.onServerReassigned, v)
	}
	if v, ok := p.(OnMetricsSubmitted); ok {
		r.onMetricsSubmitted = append(r.onMetricsSubmitted, v)
	}
	if v, ok := p.(OnRewardsClaimed); ok {
		r.onRewardsClaimed = append(r.onRewardsClaimed, v)
	}
	if v, ok := p.(OnRewardsDeposited); ok {
		r.onRewardsDeposited = append(r.onRewardsDeposited, v)
	}
	if v, ok := p.(OnRewardsReclaimed); ok {
		r.onRewardsReclaimed = append(r.onRewardsReclaimed, v)
	}
	if v, ok := p.(OnPoolPaused); ok {
		r.onPoolPaused = append(r.onPoolPaused, v)
	}
	if v, ok := p.(OnPoolUnpaused); ok {
		r.onPoolUnpaused = append(r.onPoolUnpaused, v)
	}
	if v, ok := p.(OnTransferFailed); ok {
		r.onTransferFailed = append(r.onTransferFailed, v)
	}
	if v, ok := p.(OnEvent); ok {
		r.onEvent = append(r.onEvent, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnServerRegistered)(nil)).Elem(), "OnServerRegistered")
	checkInterface(reflect.TypeOf((*OnGracePeriodStarted)(nil)).Elem(), "OnGracePeriodStarted")
	checkInterface(reflect.TypeOf((*OnServerDeactivated)(nil)).Elem(), "OnServerDeactivated")
	checkInterface(reflect.TypeOf((*OnServerReassigned)(nil)).Elem(), "OnServerReassigned")
	checkInterface(reflect.TypeOf((*OnMetricsSubmitted)(nil)).Elem(), "OnMetricsSubmitted")
	checkInterface(reflect.TypeOf((*OnRewardsClaimed)(nil)).Elem(), "OnRewardsClaimed")
	checkInterface(reflect.TypeOf((*OnRewardsDeposited)(nil)).Elem(), "OnRewardsDeposited")
	checkInterface(reflect.TypeOf((*OnRewardsReclaimed)(nil)).Elem(), "OnRewardsReclaimed")
	checkInterface(reflect.TypeOf((*OnPoolPaused)(nil)).Elem(), "OnPoolPaused")
	checkInterface(reflect.TypeOf((*OnPoolUnpaused)(nil)).Elem(), "OnPoolUnpaused")
	checkInterface(reflect.TypeOf((*OnTransferFailed)(nil)).Elem(), "OnTransferFailed")
	checkInterface(reflect.TypeOf((*OnEvent)(nil)).Elem(), "OnEvent")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitServerRegistered emits a server registered event.
func (r *Registry) EmitServerRegistered(ctx context.Context, rec *server.Record) {
	r.mu.RLock()
	plugins := r.onServerRegistered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnServerRegistered(ctx, rec)
		}); err != nil {
			r.logger.Warn("plugin OnServerRegistered failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitGracePeriodStarted emits a grace period started event.
func (r *Registry) EmitGracePeriodStarted(ctx context.Context, rec *server.Record, end int64) {
	r.mu.RLock()
	plugins := r.onGracePeriodStarted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnGracePeriodStarted(ctx, rec, end)
		}); err != nil {
			r.logger.Warn("plugin OnGracePeriodStarted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitServerDeactivated emits a server deactivated event.
func (r *Registry) EmitServerDeactivated(ctx context.Context, rec *server.Record) {
	r.mu.RLock()
	plugins := r.onServerDeactivated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnServerDeactivated(ctx, rec)
		}); err != nil {
			r.logger.Warn("plugin OnServerDeactivated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitServerReassigned emits a server reassigned event.
func (r *Registry) EmitServerReassigned(ctx context.Context, rec *server.Record, oldOwner, newOwner types.Identity) {
	r.mu.RLock()
	plugins := r.onServerReassigned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnServerReassigned(ctx, rec, oldOwner, newOwner)
		}); err != nil {
			r.logger.Warn("plugin OnServerReassigned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMetricsSubmitted emits a metrics submitted event.
func (r *Registry) EmitMetricsSubmitted(ctx context.Context, rec *server.Record, rep *metrics.Report) {
	r.mu.RLock()
	plugins := r.onMetricsSubmitted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMetricsSubmitted(ctx, rec, rep)
		}); err != nil {
			r.logger.Warn("plugin OnMetricsSubmitted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRewardsClaimed emits a rewards claimed event.
func (r *Registry) EmitRewardsClaimed(ctx context.Context, rec *server.Record, amount uint64) {
	r.mu.RLock()
	plugins := r.onRewardsClaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRewardsClaimed(ctx, rec, amount)
		}); err != nil {
			r.logger.Warn("plugin OnRewardsClaimed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRewardsDeposited emits a rewards deposited event.
func (r *Registry) EmitRewardsDeposited(ctx context.Context, depositor types.Identity, amount, poolBalance uint64) {
	r.mu.RLock()
	plugins := r.onRewardsDeposited
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRewardsDeposited(ctx, depositor, amount, poolBalance)
		}); err != nil {
			r.logger.Warn("plugin OnRewardsDeposited failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRewardsReclaimed emits a rewards reclaimed event.
func (r *Registry) EmitRewardsReclaimed(ctx context.Context, rec *server.Record, forfeited uint64) {
	r.mu.RLock()
	plugins := r.onRewardsReclaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRewardsReclaimed(ctx, rec, forfeited)
		}); err != nil {
			r.logger.Warn("plugin OnRewardsReclaimed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPoolPaused emits a pool paused event.
func (r *Registry) EmitPoolPaused(ctx context.Context, actor types.Identity) {
	r.mu.RLock()
	plugins := r.onPoolPaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPoolPaused(ctx, actor)
		}); err != nil {
			r.logger.Warn("plugin OnPoolPaused failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPoolUnpaused emits a pool unpaused event.
func (r *Registry) EmitPoolUnpaused(ctx context.Context, actor types.Identity) {
	r.mu.RLock()
	plugins := r.onPoolUnpaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPoolUnpaused(ctx, actor)
		}); err != nil {
			r.logger.Warn("plugin OnPoolUnpaused failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransferFailed emits a transfer failed event.
func (r *Registry) EmitTransferFailed(ctx context.Context, terr *transfer.Error) {
	r.mu.RLock()
	plugins := r.onTransferFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransferFailed(ctx, terr)
		}); err != nil {
			r.logger.Warn("plugin OnTransferFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEvent fans an appended audit event out to stream subscribers.
func (r *Registry) EmitEvent(ctx context.Context, e *event.Event) {
	r.mu.RLock()
	plugins := r.onEvent
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEvent(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnEvent failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the reward pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
