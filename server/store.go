package server

import "context"

// Store is the registry slice of the storage interface.
type Store interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, opts ListOpts) ([]*Record, error)
	Update(ctx context.Context, r *Record) error
}
