package database

import (
	"context"
	"database/sql"

	"github.com/mbolis/talentflow/model"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so the same queries
// can run standalone or as part of a larger transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the persistence layer of the application. Every method maps
// storage failures to model.ErrTransient.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// InTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return transient("db.begin_tx", err)
	}
	defer tx.Rollback()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return transient("db.commit", err)
	}
	return nil
}

// storageError tags a driver error with an error code and the transient
// error kind.
type storageError struct {
	code string
	err  error
}

func transient(code string, err error) error {
	return &storageError{code: code, err: err}
}

func (e *storageError) Error() string {
	return e.code + ": " + e.err.Error()
}

func (e *storageError) Unwrap() error {
	return e.err
}

func (e *storageError) Is(target error) bool {
	return target == model.ErrTransient
}
