package cart

import (
	"go.uber.org/zap"

	"storefront/internal/store"
)

// NewFileStore keeps the cart in <dir>/cart.json. A missing file reads as
// an empty cart.
func NewFileStore(dir string, log *zap.Logger) Store {
	return store.NewCollection[LineItem]("cart", dir, store.StartEmptyIfAbsent, log)
}
