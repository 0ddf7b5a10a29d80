package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db   *sql.DB
	conn DBTX

	users     repository.UserRepository
	products  repository.ProductRepository
	inventory repository.InventoryLedger
	rentals   repository.RentalRepository
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, conn DBTX) *Store {
	return &Store{
		db:        db,
		conn:      conn,
		users:     NewUserRepository(conn),
		products:  NewProductRepository(conn),
		inventory: NewInventoryLedger(conn),
		rentals:   NewRentalRepository(conn),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Store) Users() repository.UserRepository       { return s.users }
func (s *Store) Products() repository.ProductRepository { return s.products }
func (s *Store) Inventory() repository.InventoryLedger  { return s.inventory }
func (s *Store) Rentals() repository.RentalRepository   { return s.rentals }
func (s *Store) Ping(ctx context.Context) error         { return s.db.PingContext(ctx) }
func (s *Store) Close() error                           { return s.db.Close() }

// RunInTx runs fn against repositories bound to a single transaction.
// Calls nested inside an open transaction join it.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error, opts ...repository.TxOption) error {
	if _, ok := s.conn.(*sql.Tx); ok {
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTx(ctx, sqlTxOptions(repository.ApplyTxOptions(opts...)))
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, newStore(s.db, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sqlTxOptions maps store options onto database/sql. Snapshot reads use
// REPEATABLE READ, which Postgres serves from one snapshot per transaction.
func sqlTxOptions(o repository.TxOptions) *sql.TxOptions {
	if !o.Snapshot && !o.ReadOnly {
		return nil
	}
	txOpts := &sql.TxOptions{ReadOnly: o.ReadOnly}
	if o.Snapshot {
		txOpts.Isolation = sql.LevelRepeatableRead
	}
	return txOpts
}

// wrapError classifies driver errors into domain errors. Domain errors pass through.
func wrapError(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &domain.Error{Code: domain.ErrCodeConflict, Message: "record already exists", Err: err}
		case "23514":
			return &domain.Error{Code: domain.ErrCodeConflict, Message: "update violates an inventory constraint", Err: err}
		case "23503":
			return &domain.Error{Code: domain.ErrCodeNotFound, Message: "referenced record not found", Err: err}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func pageArgs(query string, args []any, skip, limit int) (string, []any) {
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	if skip > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, skip)
	}
	return query, args
}
