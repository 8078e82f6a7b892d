package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQ   = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id\s*$`
	byEmailQ  = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*session_marker,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	byIDQ     = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*session_marker,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	markerQ   = `(?s)^UPDATE\s+users\s+SET\s+session_marker\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s*$`
	passHashQ = `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var userCols = []string{"id", "email", "password_hash", "session_marker", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("alice@x.io", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Create(context.Background(), "alice@x.io", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("alice@x.io", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	_, err := repo.Create(context.Background(), "alice@x.io", "hash")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("alice@x.io", "hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice@x.io", "hash")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(byEmailQ).
		WithArgs("alice@x.io").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(7), "alice@x.io", "h", "jti-1", created))

	u, err := repo.GetUserByEmail(context.Background(), "alice@x.io")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "h", u.PasswordHash)
	assert.Equal(t, "jti-1", u.SessionMarker)
	assert.True(t, u.HasSession)
	assert.Equal(t, created, u.CreatedAt)
}

func TestGetUserByID_NullMarker(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQ).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(7), "alice@x.io", "h", nil, time.Now()))

	u, err := repo.GetUserByID(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, u.HasSession)
	assert.Empty(t, u.SessionMarker)
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQ).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByID(context.Background(), 9)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUserByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).WithArgs("alice@x.io").WillReturnError(errors.New("db err"))

	_, err := repo.GetUserByEmail(context.Background(), "alice@x.io")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSetSessionMarker(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(markerQ).WithArgs(int64(7), "jti-2").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetSessionMarker(context.Background(), 7, "jti-2"))

	mock.ExpectExec(markerQ).WithArgs(int64(8), "jti-3").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetSessionMarker(context.Background(), 8, "jti-3"), common.ErrorNotFound)

	mock.ExpectExec(markerQ).WithArgs(int64(7), "jti-4").WillReturnError(errors.New("conn reset"))
	err := repo.SetSessionMarker(context.Background(), 7, "jti-4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(passHashQ).WithArgs(int64(7), "$argon2id$x").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePasswordHash(context.Background(), 7, "$argon2id$x"))

	mock.ExpectExec(passHashQ).WithArgs(int64(7), "h").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no rows info")))
	assert.Error(t, repo.UpdatePasswordHash(context.Background(), 7, "h"))

	require.NoError(t, mock.ExpectationsWereMet())
}
