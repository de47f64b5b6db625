package metrics

import "context"

// Store is the telemetry slice of the storage interface.
type Store interface {
	Record(ctx context.Context, r *Report) error
	Query(ctx context.Context, opts QueryOpts) ([]*Report, error)
	// Purge deletes reports submitted before the given unix-second cutoff
	// and returns how many were removed.
	Purge(ctx context.Context, before int64) (int64, error)
}
