package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Stipend store (SQLite).
var Migrations = migrate.NewGroup("stipend")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_stipend_treasury",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stipend_treasury (
    id          TEXT PRIMARY KEY,
    authority   TEXT NOT NULL DEFAULT '',
    reward_pool INTEGER NOT NULL DEFAULT 0,
    paused      INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stipend_treasury`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stipend_servers",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stipend_servers (
    id                  TEXT PRIMARY KEY,
    owner               TEXT NOT NULL DEFAULT '',
    active              INTEGER NOT NULL DEFAULT 0,
    registered_at       INTEGER NOT NULL DEFAULT 0,
    grace_period_end    INTEGER NOT NULL DEFAULT 0,
    pending_rewards     INTEGER NOT NULL DEFAULT 0,
    last_metrics_update INTEGER NOT NULL DEFAULT 0,
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_stipend_servers_owner ON stipend_servers (owner);
CREATE INDEX IF NOT EXISTS idx_stipend_servers_active ON stipend_servers (active);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stipend_servers`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stipend_reports",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stipend_reports (
    id              TEXT PRIMARY KEY,
    server_id       TEXT NOT NULL DEFAULT '',
    uptime          INTEGER NOT NULL DEFAULT 0,
    tasks_completed INTEGER NOT NULL DEFAULT 0,
    points          INTEGER NOT NULL DEFAULT 0,
    submitted_at    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_stipend_reports_server ON stipend_reports (server_id, submitted_at);
CREATE INDEX IF NOT EXISTS idx_stipend_reports_submitted ON stipend_reports (submitted_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stipend_reports`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stipend_events",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stipend_events (
    id           TEXT PRIMARY KEY,
    kind         TEXT NOT NULL DEFAULT '',
    server_id    TEXT NOT NULL DEFAULT '',
    actor        TEXT NOT NULL DEFAULT '',
    amount       INTEGER NOT NULL DEFAULT 0,
    pool_balance INTEGER NOT NULL DEFAULT 0,
    metadata     TEXT NOT NULL DEFAULT '{}',
    timestamp    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_stipend_events_kind ON stipend_events (kind, timestamp);
CREATE INDEX IF NOT EXISTS idx_stipend_events_server ON stipend_events (server_id, timestamp);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stipend_events`)
				return err
			},
		},
	)
}
