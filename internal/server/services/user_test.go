package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/logging"
	"github.com/dmitrijs2005/recipebook/internal/server/auth"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_IssuesValidToken(t *testing.T) {
	e := newEnv(t, "sha256")
	ctx := context.Background()

	tok, err := e.users.Register(ctx, "a@x.io", "pw")
	require.NoError(t, err)

	p, err := e.sessions.Validate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", p.Email)

	u, err := e.rm.Users(nil).GetUserByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, auth.HashPassword("pw"), u.PasswordHash)
}

func TestRegister_DuplicateKeepsFirstSession(t *testing.T) {
	e := newEnv(t, "sha256")
	ctx := context.Background()

	t1, err := e.users.Register(ctx, "a@x.io", "pw")
	require.NoError(t, err)

	_, err = e.users.Register(ctx, "a@x.io", "other")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)

	_, err = e.sessions.Validate(ctx, t1)
	assert.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t, "sha256")

	for _, c := range [][2]string{{"", "pw"}, {"not-an-email", "pw"}, {"a@x.io", ""}} {
		_, err := e.users.Register(context.Background(), c[0], c[1])
		assert.ErrorIs(t, err, common.ErrorValidation, c)
	}
}

func TestLogin_RevokesPreviousToken(t *testing.T) {
	e := newEnv(t, "sha256")
	ctx := context.Background()

	t1, err := e.users.Register(ctx, "a@x.io", "pw")
	require.NoError(t, err)

	t2, err := e.users.Login(ctx, "a@x.io", "pw")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	_, err = e.sessions.Validate(ctx, t1)
	assert.ErrorIs(t, err, common.ErrStaleToken)

	_, err = e.sessions.Validate(ctx, t2)
	assert.NoError(t, err)
}

func TestLogin_WrongPasswordLeavesMarker(t *testing.T) {
	e := newEnv(t, "sha256")
	ctx := context.Background()

	t1, err := e.users.Register(ctx, "a@x.io", "pw")
	require.NoError(t, err)
	before := e.marker(t, "a@x.io")

	_, err = e.users.Login(ctx, "a@x.io", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, before, e.marker(t, "a@x.io"))

	_, err = e.sessions.Validate(ctx, t1)
	assert.NoError(t, err)
}

func TestLogin_UnknownEmail(t *testing.T) {
	e := newEnv(t, "sha256")

	_, err := e.users.Login(context.Background(), "ghost@x.io", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_MalformedCredentials(t *testing.T) {
	e := newEnv(t, "sha256")
	ctx := context.Background()

	t1, err := e.users.Register(ctx, "a@x.io", "pw")
	require.NoError(t, err)
	before := e.marker(t, "a@x.io")

	for _, c := range [][2]string{{"", ""}, {"bob", "secret"}, {"a@x.io", ""}} {
		_, err := e.users.Login(ctx, c[0], c[1])
		assert.ErrorIs(t, err, common.ErrInvalidCredentials, c)
		assert.NotErrorIs(t, err, common.ErrorValidation, c)
	}
	assert.Equal(t, before, e.marker(t, "a@x.io"))

	_, err = e.sessions.Validate(ctx, t1)
	assert.NoError(t, err)
}

func TestLogin_StorageUnavailable(t *testing.T) {
	e := newEnv(t, "sha256")
	rm := &managerWith{InMemoryRepositoryManager: e.rm, users: &flakyUsers{Repository: e.rm.Users(nil), failGet: true}}
	svc := NewUserService(nil, rm, e.sessions, auth.NewPasswordHasher("sha256"), logging.Nop{})

	_, err := svc.Login(context.Background(), "a@x.io", "pw")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestLogin_UpgradesLegacyHash(t *testing.T) {
	e := newEnv(t, "argon2id")
	ctx := context.Background()

	_, err := e.rm.Users(nil).Create(ctx, "a@x.io", auth.HashPassword("pw"))
	require.NoError(t, err)

	tok, err := e.users.Login(ctx, "a@x.io", "pw")
	require.NoError(t, err)
	_, err = e.sessions.Validate(ctx, tok)
	require.NoError(t, err)

	u, err := e.rm.Users(nil).GetUserByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))

	_, err = e.users.Login(ctx, "a@x.io", "pw")
	assert.NoError(t, err, "upgraded hash still verifies")
}

func newTxEnv(t *testing.T, failMarker bool) (*UserService, sqlmock.Sqlmock, *repomanager.InMemoryRepositoryManager) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mem := repomanager.NewInMemoryRepositoryManager()
	rm := &managerWith{InMemoryRepositoryManager: mem, users: &flakyUsers{Repository: mem.Users(nil), failMarker: failMarker}, inDB: true}
	tokens := auth.NewTokenManager([]byte(testSecret), "com.appRecetas", time.Hour)
	sessions := NewSessionService(db, rm, tokens, logging.Nop{})
	return NewUserService(db, rm, sessions, auth.NewPasswordHasher("sha256"), logging.Nop{}), mock, mem
}

func TestRegister_CommitsTransaction(t *testing.T) {
	svc, mock, _ := newTxEnv(t, false)

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Register(context.Background(), "a@x.io", "pw")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_RollsBackWhenIssueFails(t *testing.T) {
	svc, mock, _ := newTxEnv(t, true)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), "a@x.io", "pw")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_BeginFails(t *testing.T) {
	svc, mock, _ := newTxEnv(t, false)

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	_, err := svc.Register(context.Background(), "a@x.io", "pw")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
