package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// countingDriver records commits and rollbacks so WithTx outcomes can be
// asserted without a real database.
type txCounters struct {
	commits   int64
	rollbacks int64
}

type countingDriver struct {
	counters *txCounters
}

func (d *countingDriver) Open(name string) (driver.Conn, error) {
	return &countingConn{counters: d.counters}, nil
}

type countingConn struct {
	counters *txCounters
}

func (c *countingConn) Prepare(query string) (driver.Stmt, error) { return &noopStmt{}, nil }
func (c *countingConn) Close() error                              { return nil }

func (c *countingConn) Begin() (driver.Tx, error) {
	return &countingTx{counters: c.counters}, nil
}

func (c *countingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return &countingTx{counters: c.counters}, nil
}

type countingTx struct {
	counters *txCounters
}

func (t *countingTx) Commit() error {
	atomic.AddInt64(&t.counters.commits, 1)
	return nil
}

func (t *countingTx) Rollback() error {
	atomic.AddInt64(&t.counters.rollbacks, 1)
	return nil
}

type noopStmt struct{}

func (s *noopStmt) Close() error                                    { return nil }
func (s *noopStmt) NumInput() int                                   { return -1 }
func (s *noopStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *noopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

// conflictDriver fails the first N commits with a retryable pq error.
type conflictCounters struct {
	commitCalls int64
	failCommits int64
	failCode    string
}

type conflictDriver struct {
	counters *conflictCounters
}

func (d *conflictDriver) Open(name string) (driver.Conn, error) {
	return &conflictConn{counters: d.counters}, nil
}

type conflictConn struct {
	counters *conflictCounters
}

func (c *conflictConn) Prepare(query string) (driver.Stmt, error) { return &noopStmt{}, nil }
func (c *conflictConn) Close() error                              { return nil }

func (c *conflictConn) Begin() (driver.Tx, error) {
	return &conflictTx{counters: c.counters}, nil
}

func (c *conflictConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return &conflictTx{counters: c.counters}, nil
}

type conflictTx struct {
	counters *conflictCounters
}

func (t *conflictTx) Commit() error {
	call := atomic.AddInt64(&t.counters.commitCalls, 1)
	if call <= t.counters.failCommits {
		code := t.counters.failCode
		if code == "" {
			code = "40001"
		}
		return &pq.Error{Code: pq.ErrorCode(code)}
	}
	return nil
}

func (t *conflictTx) Rollback() error { return nil }

var driverSeq uint64

func openWithDriver(t *testing.T, d driver.Driver) *sqlx.DB {
	t.Helper()
	name := fmt.Sprintf("budget-test-%d", atomic.AddUint64(&driverSeq, 1))
	sql.Register(name, d)
	conn, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return sqlx.NewDb(conn, name)
}

func TestWithTxCommits(t *testing.T) {
	counters := &txCounters{}
	conn := openWithDriver(t, &countingDriver{counters: counters})

	if err := WithTx(context.Background(), conn, func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counters.commits != 1 || counters.rollbacks != 0 {
		t.Fatalf("expected commit=1 rollback=0, got %d/%d", counters.commits, counters.rollbacks)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	counters := &txCounters{}
	conn := openWithDriver(t, &countingDriver{counters: counters})

	if err := WithTx(context.Background(), conn, func(*sqlx.Tx) error { return errors.New("boom") }); err == nil {
		t.Fatalf("expected error")
	}
	if counters.rollbacks != 1 {
		t.Fatalf("expected rollback=1, got %d", counters.rollbacks)
	}
}

func TestWithTxRetriesOnSerializationConflict(t *testing.T) {
	counters := &conflictCounters{failCommits: 1}
	conn := openWithDriver(t, &conflictDriver{counters: counters})

	if err := WithTx(context.Background(), conn, func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counters.commitCalls != 2 {
		t.Fatalf("expected 2 commit attempts, got %d", counters.commitCalls)
	}
}

func TestWithTxRetryCap(t *testing.T) {
	counters := &conflictCounters{failCommits: 10, failCode: "40P01"}
	conn := openWithDriver(t, &conflictDriver{counters: counters})

	err := WithTx(context.Background(), conn, func(*sqlx.Tx) error { return nil })
	if err == nil {
		t.Fatalf("expected retry limit error")
	}
	if counters.commitCalls != txMaxAttempts {
		t.Fatalf("expected %d commit attempts, got %d", txMaxAttempts, counters.commitCalls)
	}
}
