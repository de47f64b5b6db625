package event

import "context"

// Store is the audit slice of the storage interface.
type Store interface {
	Append(ctx context.Context, e *Event) error
	List(ctx context.Context, opts ListOpts) ([]*Event, error)
}
