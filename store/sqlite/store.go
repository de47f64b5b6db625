package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	stipend "github.com/xraph/stipend"
	"github.com/xraph/stipend/event"
	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/server"
	stipendstore "github.com/xraph/stipend/store"
	"github.com/xraph/stipend/treasury"
)

// compile-time interface check
var _ stipendstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("stipend/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("stipend/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Treasury Store ====================

func (s *Store) CreateTreasury(ctx context.Context, t *treasury.Treasury) error {
	m := toTreasuryModel(t)
	res, err := s.sdb.NewInsert(m).
		OnConflict("(id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return stipend.ErrAlreadyInitialized
	}
	return nil
}

func (s *Store) GetTreasury(ctx context.Context) (*treasury.Treasury, error) {
	m := new(treasuryModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", treasuryRowID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, stipend.ErrNotInitialized
		}
		return nil, err
	}
	return fromTreasuryModel(m), nil
}

func (s *Store) UpdateTreasury(ctx context.Context, t *treasury.Treasury) error {
	m := toTreasuryModel(t)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return stipend.ErrNotInitialized
	}
	return nil
}

// ==================== Server Store ====================

func (s *Store) CreateServer(ctx context.Context, rec *server.Record) error {
	m := toServerModel(rec)
	res, err := s.sdb.NewInsert(m).
		OnConflict("(id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return stipend.ErrDuplicateServerID
	}
	return nil
}

func (s *Store) GetServer(ctx context.Context, serverID string) (*server.Record, error) {
	m := new(serverModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", serverID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, stipend.ErrServerNotFound
		}
		return nil, err
	}
	return fromServerModel(m), nil
}

func (s *Store) ListServers(ctx context.Context, opts server.ListOpts) ([]*server.Record, error) {
	var models []serverModel
	q := s.sdb.NewSelect(&models)

	if opts.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if !opts.Owner.IsZero() {
		q = q.Where("owner = ?", opts.Owner.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*server.Record, len(models))
	for i := range models {
		result[i] = fromServerModel(&models[i])
	}
	return result, nil
}

func (s *Store) UpdateServer(ctx context.Context, rec *server.Record) error {
	m := toServerModel(rec)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return stipend.ErrServerNotFound
	}
	return nil
}

// ==================== Metrics Store ====================

func (s *Store) RecordReport(ctx context.Context, rep *metrics.Report) error {
	m := toReportModel(rep)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) QueryReports(ctx context.Context, opts metrics.QueryOpts) ([]*metrics.Report, error) {
	var models []reportModel
	q := s.sdb.NewSelect(&models)

	if opts.ServerID != "" {
		q = q.Where("server_id = ?", opts.ServerID)
	}
	if opts.Since != 0 {
		q = q.Where("submitted_at >= ?", opts.Since)
	}
	if opts.Until != 0 {
		q = q.Where("submitted_at < ?", opts.Until)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("submitted_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*metrics.Report, len(models))
	for i := range models {
		rep, err := fromReportModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rep
	}
	return result, nil
}

func (s *Store) PurgeReports(ctx context.Context, before int64) (int64, error) {
	res, err := s.sdb.NewDelete((*reportModel)(nil)).
		Where("submitted_at < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// ==================== Event Store ====================

func (s *Store) AppendEvent(ctx context.Context, e *event.Event) error {
	m := toEventModel(e)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	var models []eventModel
	q := s.sdb.NewSelect(&models)

	if opts.Kind != "" {
		q = q.Where("kind = ?", string(opts.Kind))
	}
	if opts.ServerID != "" {
		q = q.Where("server_id = ?", opts.ServerID)
	}
	if opts.Since != 0 {
		q = q.Where("timestamp >= ?", opts.Since)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("timestamp ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*event.Event, len(models))
	for i := range models {
		e, err := fromEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
