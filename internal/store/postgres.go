package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// OpenPostgres opens a database/sql pool over the pgx driver.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// PGCollection mirrors Collection on a Postgres table of shape
// (position BIGINT PRIMARY KEY, payload JSONB NOT NULL): load reads all
// rows in position order, save replaces the table contents in one
// transaction.
type PGCollection[T any] struct {
	name  string
	table string
	db    *sql.DB
	log   *zap.Logger
}

func NewPGCollection[T any](name, table string, db *sql.DB, log *zap.Logger) *PGCollection[T] {
	return &PGCollection[T]{name: name, table: table, db: db, log: log}
}

func (c *PGCollection[T]) Load(ctx context.Context) ([]T, error) {
	var out []T

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := c.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT payload FROM %s ORDER BY position ASC`, c.table))
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]T, 0, 16)
		for rows.Next() {
			var payload []byte
			if err := rows.Scan(&payload); err != nil {
				return err
			}
			var rec T
			if err := json.Unmarshal(payload, &rec); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.name, err)
	}
	return out, nil
}

func (c *PGCollection[T]) Save(ctx context.Context, records []T) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := c.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, c.table)); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (position, payload) VALUES ($1, $2)`, c.table))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, rec := range records {
			payload, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, i, payload); err != nil {
				return err
			}
		}

		return tx.Commit()
	})

	if err != nil {
		return fmt.Errorf("save %s: %w", c.name, err)
	}

	if c.log != nil {
		c.log.Debug("collection saved",
			zap.String("collection", c.name),
			zap.Int("records", len(records)),
		)
	}
	return nil
}

func (c *PGCollection[T]) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return c.db.PingContext(ctx)
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
