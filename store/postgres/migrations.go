package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Stipend store.
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
    reward_pool BIGINT NOT NULL DEFAULT 0,
    paused      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    active              BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at       BIGINT NOT NULL DEFAULT 0,
    grace_period_end    BIGINT NOT NULL DEFAULT 0,
    pending_rewards     BIGINT NOT NULL DEFAULT 0,
    last_metrics_update BIGINT NOT NULL DEFAULT 0,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    uptime          INT NOT NULL DEFAULT 0,
    tasks_completed BIGINT NOT NULL DEFAULT 0,
    points          BIGINT NOT NULL DEFAULT 0,
    submitted_at    BIGINT NOT NULL DEFAULT 0
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
    amount       BIGINT NOT NULL DEFAULT 0,
    pool_balance BIGINT NOT NULL DEFAULT 0,
    metadata     JSONB NOT NULL DEFAULT '{}',
    timestamp    BIGINT NOT NULL DEFAULT 0
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
