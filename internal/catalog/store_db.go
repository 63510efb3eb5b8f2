package catalog

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/store"
)

func NewPostgresStore(db *sql.DB, log *zap.Logger) Store {
	return store.NewPGCollection[Product]("products", "products", db, log)
}
