package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/stipend"
	"github.com/xraph/stipend/event"
	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/treasury"
)

// Store is a map-backed store for development and tests. Records are copied
// on the way in and out so callers can mutate what they hold without
// racing the store.
type Store struct {
	mu sync.RWMutex

	// Single treasury row
	treasury *treasury.Treasury

	// Server registry keyed by server id
	servers map[string]*server.Record

	// Telemetry reports in submission order
	reports []*metrics.Report

	// Audit stream in append order
	events []*event.Event
}

func New() *Store {
	return &Store{
		servers: make(map[string]*server.Record),
		reports: make([]*metrics.Report, 0),
		events:  make([]*event.Event, 0),
	}
}

// Treasury Store implementation
func (s *Store) CreateTreasury(_ context.Context, t *treasury.Treasury) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.treasury != nil {
		return stipend.ErrAlreadyInitialized
	}
	s.treasury = t.Clone()
	return nil
}

func (s *Store) GetTreasury(_ context.Context) (*treasury.Treasury, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.treasury == nil {
		return nil, stipend.ErrNotInitialized
	}
	return s.treasury.Clone(), nil
}

func (s *Store) UpdateTreasury(_ context.Context, t *treasury.Treasury) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.treasury == nil {
		return stipend.ErrNotInitialized
	}
	s.treasury = t.Clone()
	return nil
}

// Server Store implementation
func (s *Store) CreateServer(_ context.Context, rec *server.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.servers[rec.ID]; exists {
		return stipend.ErrDuplicateServerID
	}
	s.servers[rec.ID] = rec.Clone()
	return nil
}

func (s *Store) GetServer(_ context.Context, serverID string) (*server.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.servers[serverID]; ok {
		return rec.Clone(), nil
	}
	return nil, stipend.ErrServerNotFound
}

func (s *Store) ListServers(_ context.Context, opts server.ListOpts) ([]*server.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*server.Record, 0)
	for _, rec := range s.servers {
		if opts.ActiveOnly && !rec.Active {
			continue
		}
		if !opts.Owner.IsZero() && !rec.Owner.Equal(opts.Owner) {
			continue
		}
		result = append(result, rec.Clone())
	}

	// Map iteration order is random; present a stable listing.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) UpdateServer(_ context.Context, rec *server.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.servers[rec.ID]; !exists {
		return stipend.ErrServerNotFound
	}
	s.servers[rec.ID] = rec.Clone()
	return nil
}

// Metrics Store implementation
func (s *Store) RecordReport(_ context.Context, rep *metrics.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rep
	s.reports = append(s.reports, &cp)
	return nil
}

func (s *Store) QueryReports(_ context.Context, opts metrics.QueryOpts) ([]*metrics.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*metrics.Report, 0)
	for _, rep := range s.reports {
		if opts.ServerID != "" && rep.ServerID != opts.ServerID {
			continue
		}
		if opts.Since != 0 && rep.SubmittedAt < opts.Since {
			continue
		}
		if opts.Until != 0 && rep.SubmittedAt >= opts.Until {
			continue
		}
		cp := *rep
		result = append(result, &cp)
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) PurgeReports(_ context.Context, before int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	kept := make([]*metrics.Report, 0, len(s.reports))
	for _, rep := range s.reports {
		if rep.SubmittedAt < before {
			count++
		} else {
			kept = append(kept, rep)
		}
	}
	s.reports = kept
	return count, nil
}

// Event Store implementation
func (s *Store) AppendEvent(_ context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.events = append(s.events, &cp)
	return nil
}

func (s *Store) ListEvents(_ context.Context, opts event.ListOpts) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*event.Event, 0)
	for _, e := range s.events {
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		if opts.ServerID != "" && e.ServerID != opts.ServerID {
			continue
		}
		if opts.Since != 0 && e.Timestamp < opts.Since {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}
