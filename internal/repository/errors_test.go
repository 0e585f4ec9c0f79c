package repository

import (
	"database/sql"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
)

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil, "x"))
	assert.True(t, errors.Is(classify(sql.ErrNoRows, "user"), apperr.ErrNotFound))

	dup := &mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry 'a@b.com' for key 'uq_users_email'"}
	err := classify(dup, "create user")
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Contains(t, err.Error(), "uq_users_email")

	other := classify(sql.ErrConnDone, "create user")
	assert.True(t, errors.Is(other, apperr.ErrInternal))
}

type fakeResult struct{ n int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.n, nil }

func TestMustAffect(t *testing.T) {
	assert.NoError(t, mustAffect(fakeResult{n: 1}, nil, "course"))
	assert.True(t, errors.Is(mustAffect(fakeResult{n: 0}, nil, "course"), apperr.ErrNotFound))
	assert.True(t, errors.Is(mustAffect(nil, sql.ErrTxDone, "course"), apperr.ErrInternal))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
