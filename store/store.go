package store

import (
	"context"

	"github.com/xraph/stipend/event"
	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/treasury"
)

// Store is the unified storage interface for all Stipend entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Treasury methods
	CreateTreasury(ctx context.Context, t *treasury.Treasury) error
	GetTreasury(ctx context.Context) (*treasury.Treasury, error)
	UpdateTreasury(ctx context.Context, t *treasury.Treasury) error

	// Server methods
	CreateServer(ctx context.Context, rec *server.Record) error
	GetServer(ctx context.Context, serverID string) (*server.Record, error)
	ListServers(ctx context.Context, opts server.ListOpts) ([]*server.Record, error)
	UpdateServer(ctx context.Context, rec *server.Record) error

	// Metrics methods
	RecordReport(ctx context.Context, rep *metrics.Report) error
	QueryReports(ctx context.Context, opts metrics.QueryOpts) ([]*metrics.Report, error)
	PurgeReports(ctx context.Context, before int64) (int64, error)

	// Event methods
	AppendEvent(ctx context.Context, e *event.Event) error
	ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
