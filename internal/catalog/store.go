package catalog

import "context"

// Store is the products collection. Load returns records in stored order;
// Save replaces the whole collection.
type Store interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	Ping(ctx context.Context) error
}
