// Package store holds the collection accessors backing the storefront: a
// JSON-array file collection for the default deployment and a Postgres
// collection for deployments with a real database.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InitPolicy decides what a collection does when its backing file is absent.
type InitPolicy int

const (
	// StartEmptyIfAbsent treats a missing file as an empty collection.
	StartEmptyIfAbsent InitPolicy = iota
	// FailIfAbsent reports a missing file as a read error.
	FailIfAbsent
)

// Collection is a named, ordered record collection persisted as one
// pretty-printed JSON array. Every load reads the whole file and every save
// rewrites it atomically.
type Collection[T any] struct {
	name   string
	path   string
	policy InitPolicy
	log    *zap.Logger
}

func NewCollection[T any](name, dir string, policy InitPolicy, log *zap.Logger) *Collection[T] {
	return &Collection[T]{
		name:   name,
		path:   filepath.Join(dir, name+".json"),
		policy: policy,
		log:    log,
	}
}

// Path returns the backing file location.
func (c *Collection[T]) Path() string { return c.path }

// Load reads and parses the backing file. A missing file yields an empty
// collection or an error depending on the init policy; a present but
// unreadable or malformed file is always an error.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) && c.policy == StartEmptyIfAbsent {
			return []T{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", c.name, err)
	}

	records := make([]T, 0, 16)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.name, err)
	}
	return records, nil
}

// Save rewrites the backing file with the full record sequence. The write
// goes to a uniquely named sibling temp file first and is renamed into
// place, so concurrent readers never observe a torn file.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	data = append(data, '\n')

	tmp := c.path + ".tmp." + uuid.NewString()

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.name, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", c.name, err)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", c.name, err)
	}

	if dir, err := os.Open(filepath.Dir(c.path)); err == nil {
		_ = dir.Sync()
		dir.Close()
	}

	if c.log != nil {
		c.log.Debug("collection saved",
			zap.String("collection", c.name),
			zap.Int("records", len(records)),
		)
	}
	return nil
}

// Ping reports whether the collection's directory is reachable.
func (c *Collection[T]) Ping(ctx context.Context) error {
	if _, err := os.Stat(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("ping %s: %w", c.name, err)
	}
	return nil
}
