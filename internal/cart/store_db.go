package cart

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/store"
)

func NewPostgresStore(db *sql.DB, log *zap.Logger) Store {
	return store.NewPGCollection[LineItem]("cart", "cart_items", db, log)
}
