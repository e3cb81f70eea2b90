package main

import (
	"bytes"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFiles = fstest.MapFS{
	"0001_init.sql":          {Data: []byte("CREATE TABLE a (id INT)")},
	"0001_init_rollback.sql": {Data: []byte("DROP TABLE a")},
	"0002_more.sql":          {Data: []byte("CREATE TABLE b (id INT)")},
}

func newMockMigrator(t *testing.T) (*migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newMigrator(db, testFiles), mock
}

func TestUpAppliesPendingMigrations(t *testing.T) {
	m, mock := newMockMigrator(t)
	exists := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("0001").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(exists).WithArgs("0002").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("0002", "0002_more.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, m.up())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpRollsBackFailedMigration(t *testing.T) {
	m, mock := newMockMigrator(t)
	exists := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("0001").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT)")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := m.up()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_init.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollback(t *testing.T) {
	m, mock := newMockMigrator(t)

	mock.ExpectQuery("SELECT version, name FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "name"}).AddRow("0001", "0001_init.sql"))
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schema_migrations").WithArgs("0001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, m.rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackWithoutScript(t *testing.T) {
	m, mock := newMockMigrator(t)
	mock.ExpectQuery("SELECT version, name FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "name"}).AddRow("0002", "0002_more.sql"))

	err := m.rollback()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0002_more_rollback.sql")
}

func TestRollbackNothingApplied(t *testing.T) {
	m, mock := newMockMigrator(t)
	mock.ExpectQuery("SELECT version, name FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "name"}))

	assert.ErrorIs(t, m.rollback(), ErrNothingToRollback)
}

func TestStatus(t *testing.T) {
	m, mock := newMockMigrator(t)
	mock.ExpectQuery("SELECT version, name, applied_at FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}).
			AddRow("0001", "0001_init.sql", "2024-01-01T00:00:00Z"))

	var out bytes.Buffer
	require.NoError(t, m.status(&out))
	assert.Equal(t, "0001\t0001_init.sql\t2024-01-01T00:00:00Z\n", out.String())
}
