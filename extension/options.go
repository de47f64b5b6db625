package extension

import (
	"time"

	"github.com/xraph/grove"

	stipend "github.com/xraph/stipend"
	"github.com/xraph/stipend/plugin"
	"github.com/xraph/stipend/store"
	"github.com/xraph/stipend/store/mongo"
	"github.com/xraph/stipend/store/postgres"
	"github.com/xraph/stipend/store/sqlite"
	"github.com/xraph/stipend/transfer"
)

// Option configures the Stipend Forge extension.
type Option func(*Extension)

// WithStore sets the store for the engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithMover sets the settlement backend used for reward payouts and
// deposits. Defaults to an in-process bank when unset.
func WithMover(m transfer.Mover) Option {
	return func(e *Extension) {
		e.mover = m
	}
}

// WithSQLiteDB builds a SQLite-backed store from the given grove database.
func WithSQLiteDB(db *grove.DB) Option {
	return func(e *Extension) {
		e.store = sqlite.New(db)
	}
}

// WithPostgresDB builds a Postgres-backed store from the given grove database.
func WithPostgresDB(db *grove.DB) Option {
	return func(e *Extension) {
		e.store = postgres.New(db)
	}
}

// WithMongoDB builds a MongoDB-backed store from the given grove database.
func WithMongoDB(db *grove.DB) Option {
	return func(e *Extension) {
		e.store = mongo.New(db)
	}
}

// WithEngineOption passes a stipend.Option through to the underlying engine.
func WithEngineOption(opt stipend.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a stipend plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, stipend.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithPoolAccount sets the settlement account the reward pool transfers against.
func WithPoolAccount(account string) Option {
	return func(e *Extension) { e.config.PoolAccount = account }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithReportRetention sets how long accepted telemetry reports are kept.
func WithReportRetention(age time.Duration) Option {
	return func(e *Extension) { e.config.ReportRetention = age }
}

// WithPurgeInterval sets how frequently the report purge worker runs.
func WithPurgeInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.PurgeInterval = d }
}
