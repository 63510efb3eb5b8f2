package store_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/store"
)

// stubConn records every statement database/sql issues and reports success,
// standing in for a live Postgres connection.
type stubConn struct {
	execs []string
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return &stubStmt{conn: c, query: query}, nil
}

func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

func (c *stubConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	return driver.RowsAffected(0), nil
}

type stubStmt struct {
	conn  *stubConn
	query string
}

func (s *stubStmt) Close() error  { return nil }
func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.conn.execs = append(s.conn.execs, s.query)
	return driver.RowsAffected(1), nil
}

func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	return nil, driver.ErrSkip
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubConnector struct {
	conn *stubConn
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return &stubConn{}, nil }

func TestPGCollection_SaveRewritesTable(t *testing.T) {
	conn := &stubConn{}
	db := sql.OpenDB(stubConnector{conn: conn})
	t.Cleanup(func() { _ = db.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	c := store.NewPGCollection[record]("products", "products", db, zap.New(core))

	records := []record{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	if err := c.Save(context.Background(), records); err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(conn.execs) != 3 {
		t.Fatalf("statements: %v", conn.execs)
	}
	if !strings.HasPrefix(conn.execs[0], "DELETE FROM products") {
		t.Fatalf("first statement: %q", conn.execs[0])
	}
	for _, q := range conn.execs[1:] {
		if !strings.HasPrefix(q, "INSERT INTO products") {
			t.Fatalf("statement: %q", q)
		}
	}

	saved := logs.FilterMessage("collection saved").All()
	if len(saved) != 1 {
		t.Fatalf("save logs: %d", len(saved))
	}
	fields := saved[0].ContextMap()
	if fields["collection"] != "products" || fields["records"] != int64(2) {
		t.Fatalf("log fields: %v", fields)
	}
}
