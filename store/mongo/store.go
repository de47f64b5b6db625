package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	stipend "github.com/xraph/stipend"
	"github.com/xraph/stipend/event"
	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/server"
	stipendstore "github.com/xraph/stipend/store"
	"github.com/xraph/stipend/treasury"
)

// Collection name constants.
const (
	colTreasury = "stipend_treasury"
	colServers  = "stipend_servers"
	colReports  = "stipend_reports"
	colEvents   = "stipend_events"
)

// compile-time interface check
var _ stipendstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all stipend collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("stipend/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return stipend.ErrAlreadyInitialized
		}
		return fmt.Errorf("stipend/mongo: create treasury: %w", err)
	}
	return nil
}

func (s *Store) GetTreasury(ctx context.Context) (*treasury.Treasury, error) {
	var m treasuryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": treasuryRowID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, stipend.ErrNotInitialized
		}
		return nil, fmt.Errorf("stipend/mongo: get treasury: %w", err)
	}
	return fromTreasuryModel(&m), nil
}

func (s *Store) UpdateTreasury(ctx context.Context, t *treasury.Treasury) error {
	m := toTreasuryModel(t)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("stipend/mongo: update treasury: %w", err)
	}
	if res.MatchedCount() == 0 {
		return stipend.ErrNotInitialized
	}
	return nil
}

// ==================== Server Store ====================

func (s *Store) CreateServer(ctx context.Context, rec *server.Record) error {
	m := toServerModel(rec)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return stipend.ErrDuplicateServerID
		}
		return fmt.Errorf("stipend/mongo: create server: %w", err)
	}
	return nil
}

func (s *Store) GetServer(ctx context.Context, serverID string) (*server.Record, error) {
	var m serverModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": serverID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, stipend.ErrServerNotFound
		}
		return nil, fmt.Errorf("stipend/mongo: get server: %w", err)
	}
	return fromServerModel(&m), nil
}

func (s *Store) ListServers(ctx context.Context, opts server.ListOpts) ([]*server.Record, error) {
	var models []serverModel

	filter := bson.M{}
	if opts.ActiveOnly {
		filter["active"] = true
	}
	if !opts.Owner.IsZero() {
		filter["owner"] = opts.Owner.String()
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("stipend/mongo: list servers: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("stipend/mongo: update server: %w", err)
	}
	if res.MatchedCount() == 0 {
		return stipend.ErrServerNotFound
	}
	return nil
}

// ==================== Metrics Store ====================

func (s *Store) RecordReport(ctx context.Context, rep *metrics.Report) error {
	m := toReportModel(rep)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("stipend/mongo: record report: %w", err)
	}
	return nil
}

func (s *Store) QueryReports(ctx context.Context, opts metrics.QueryOpts) ([]*metrics.Report, error) {
	var models []reportModel

	filter := bson.M{}
	if opts.ServerID != "" {
		filter["server_id"] = opts.ServerID
	}
	if opts.Since != 0 || opts.Until != 0 {
		ts := bson.M{}
		if opts.Since != 0 {
			ts["$gte"] = opts.Since
		}
		if opts.Until != 0 {
			ts["$lt"] = opts.Until
		}
		filter["submitted_at"] = ts
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "submitted_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("stipend/mongo: query reports: %w", err)
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
	res, err := s.mdb.NewDelete((*reportModel)(nil)).
		Filter(bson.M{"submitted_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("stipend/mongo: purge reports: %w", err)
	}
	return res.DeletedCount(), nil
}

// ==================== Event Store ====================

func (s *Store) AppendEvent(ctx context.Context, e *event.Event) error {
	m := toEventModel(e)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("stipend/mongo: append event: %w", err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	var models []eventModel

	filter := bson.M{}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}
	if opts.ServerID != "" {
		filter["server_id"] = opts.ServerID
	}
	if opts.Since != 0 {
		filter["timestamp"] = bson.M{"$gte": opts.Since}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "timestamp", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("stipend/mongo: list events: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all stipend collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colTreasury: {},
		colServers: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "active", Value: 1}}},
		},
		colReports: {
			{Keys: bson.D{{Key: "server_id", Value: 1}, {Key: "submitted_at", Value: 1}}},
			{Keys: bson.D{{Key: "submitted_at", Value: 1}}},
		},
		colEvents: {
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "server_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
	}
}
