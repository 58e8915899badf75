package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"
)

// Querier is the query surface shared by *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Gateway runs each repository operation on its own connection.
//
// Read hands fn a bare connection. Write and Snapshot wrap fn in a
// transaction that is committed when fn returns nil and rolled back when it
// returns an error or panics. In every case the connection goes back to the pool before the
// call returns.
type Gateway struct {
	db *sql.DB
}

// NewGateway creates a Gateway over db.
func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

// Ping checks that the database is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

// Read runs a read-only operation.
func (g *Gateway) Read(ctx context.Context, fn func(ctx context.Context, q Querier) error) (err error) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { err = multierr.Append(err, release(conn)) }()

	return fn(ctx, conn)
}

// Write runs fn inside a transaction.
func (g *Gateway) Write(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	return g.inTx(ctx, nil, fn)
}

// Snapshot runs several reads that must agree with each other inside one
// read-only REPEATABLE READ transaction.
func (g *Gateway) Snapshot(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	return g.inTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (g *Gateway) inTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, q Querier) error) (err error) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { err = multierr.Append(err, release(conn)) }()

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return multierr.Append(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func release(conn *sql.Conn) error {
	if err := conn.Close(); err != nil {
		return fmt.Errorf("release connection: %w", err)
	}
	return nil
}
