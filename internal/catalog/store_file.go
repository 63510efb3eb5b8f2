package catalog

import (
	"go.uber.org/zap"

	"storefront/internal/store"
)

// NewFileStore keeps the catalog in <dir>/products.json. A missing file
// reads as an empty catalog; an unreadable or malformed one is an error.
func NewFileStore(dir string, log *zap.Logger) Store {
	return store.NewCollection[Product]("products", dir, store.StartEmptyIfAbsent, log)
}
