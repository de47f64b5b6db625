// Package extension provides the Forge extension adapter for Stipend.
//
// It implements the forge.Extension interface to integrate Stipend
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.stipend" or "stipend" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	stipend "github.com/xraph/stipend"
	"github.com/xraph/stipend/store"
	"github.com/xraph/stipend/store/memory"
	"github.com/xraph/stipend/transfer"
	transfermem "github.com/xraph/stipend/transfer/memory"
	"github.com/xraph/stipend/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "stipend"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Compute-server registry and shared reward pool engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Stipend as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *stipend.Engine
	store      store.Store
	mover      transfer.Mover
	engineOpts []stipend.Option
}

// New creates a new Stipend Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Stipend instance.
// This is nil until Register is called.
func (e *Extension) Engine() *stipend.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Fall back to in-process backends if none were provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}
	if e.mover == nil {
		e.mover = transfermem.NewBank()
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := stipend.New(e.store, e.mover, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*stipend.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("stipend: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("stipend: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs stipend.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []stipend.Option {
	opts := make([]stipend.Option, 0, len(e.engineOpts)+3)

	if e.config.PoolAccount != "" {
		opts = append(opts, stipend.WithPoolAccount(types.Identity(e.config.PoolAccount)))
	}
	if e.config.ReportRetention > 0 {
		opts = append(opts, stipend.WithReportRetention(e.config.ReportRetention))
	}
	if e.config.PurgeInterval > 0 {
		opts = append(opts, stipend.WithPurgeInterval(e.config.PurgeInterval))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("stipend: configuration is required but not found in config files; " +
				"ensure 'extensions.stipend' or 'stipend' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("stipend: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("pool_account", e.config.PoolAccount),
		forge.F("report_retention", e.config.ReportRetention),
		forge.F("purge_interval", e.config.PurgeInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.stipend" first (namespaced pattern).
	if cm.IsSet("extensions.stipend") {
		if err := cm.Bind("extensions.stipend", &cfg); err == nil {
			e.Logger().Debug("stipend: loaded config from file",
				forge.F("key", "extensions.stipend"),
			)
			return cfg, true
		}
		e.Logger().Warn("stipend: failed to bind extensions.stipend config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "stipend" key.
	if cm.IsSet("stipend") {
		if err := cm.Bind("stipend", &cfg); err == nil {
			e.Logger().Debug("stipend: loaded config from file",
				forge.F("key", "stipend"),
			)
			return cfg, true
		}
		e.Logger().Warn("stipend: failed to bind stipend config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.PoolAccount == "" {
		cfg.PoolAccount = defaults.PoolAccount
	}
	if cfg.PurgeInterval == 0 {
		cfg.PurgeInterval = defaults.PurgeInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.PoolAccount == "" && programmaticConfig.PoolAccount != "" {
		yamlConfig.PoolAccount = programmaticConfig.PoolAccount
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.ReportRetention == 0 && programmaticConfig.ReportRetention != 0 {
		yamlConfig.ReportRetention = programmaticConfig.ReportRetention
	}
	if yamlConfig.PurgeInterval == 0 && programmaticConfig.PurgeInterval != 0 {
		yamlConfig.PurgeInterval = programmaticConfig.PurgeInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
