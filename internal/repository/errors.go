// Package repository implements store.Store on MySQL with plain
// database/sql. Each repository runs its statements through a
// database.Executor, which is the *sql.DB outside a transaction and the
// *sql.Tx inside Store.InTx.
package repository

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// classify translates driver errors into apperr kinds: a missing row becomes
// ErrNotFound, a unique-key violation ErrConflict. Anything else is wrapped
// as an internal failure.
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(apperr.ErrNotFound, what)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return errors.Wrapf(apperr.ErrConflict, "%s: %s", what, me.Message)
	}
	return apperr.Internal(err, what)
}

// mustAffect reports ErrNotFound when an UPDATE or DELETE touched no rows.
func mustAffect(res sql.Result, err error, what string) error {
	if err != nil {
		return classify(err, what)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err, what)
	}
	if n == 0 {
		return errors.Wrap(apperr.ErrNotFound, what)
	}
	return nil
}

// idRows is the subset of *sql.Rows that idList reads.
type idRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// queryIDs runs a query selecting a single id column.
func queryIDs(ctx context.Context, ex database.Executor, what, query string, args ...interface{}) ([]uint64, error) {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, what)
	}
	return idList(rows, what)
}

// idList drains rows of ids and closes them.
func idList(rows idRows, what string) ([]uint64, error) {
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, classify(err, what)
		}
		ids = append(ids, id)
	}
	return ids, classify(rows.Err(), what)
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
