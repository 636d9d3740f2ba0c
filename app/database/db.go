package database

import (
	"context"
	"database/sql"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"swadiq-lms/app/services"
)

// repo runs queries against either the pool or an open transaction.
type repo struct {
	db sqlx.ExtContext
}

// Store is the Postgres implementation of services.Store
type Store struct {
	*repo
	pool *sqlx.DB
}

var _ services.Store = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{repo: &repo{db: db}, pool: db}
}

// InTx runs fn inside a READ COMMITTED transaction. Conditional writes and
// ON CONFLICT clauses in the queries carry the concurrency guarantees.
func (s *Store) InTx(ctx context.Context, fn func(tx services.Repository) error) (err error) {
	tx, err := s.pool.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				log.Printf("[DATABASE] rollback failed: %v", rbErr)
			}
		}
	}()

	if err = fn(&repo{db: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// get scans a single row into dest and maps sql.ErrNoRows to services.ErrRecordNotFound.
func (r *repo) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, r.db, dest, query, args...)
	if err == sql.ErrNoRows {
		return services.ErrRecordNotFound
	}
	return err
}

func (r *repo) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, r.db, dest, query, args...)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const pqForeignKeyViolation = "23503"

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
