package treasury

import "context"

// Store is the treasury slice of the storage interface.
type Store interface {
	// Create persists the singleton. It fails if a treasury already exists.
	Create(ctx context.Context, t *Treasury) error
	Get(ctx context.Context) (*Treasury, error)
	Update(ctx context.Context, t *Treasury) error
}
