package cart

import "context"

// Store is the persisted cart. Load returns items in stored order; Save
// replaces the whole cart.
type Store interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
	Ping(ctx context.Context) error
}
