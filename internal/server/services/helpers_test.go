package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipebook/internal/dbx"
	"github.com/dmitrijs2005/recipebook/internal/logging"
	"github.com/dmitrijs2005/recipebook/internal/server/auth"
	"github.com/dmitrijs2005/recipebook/internal/server/models"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/users"
)

const testSecret = "test-secret"

type env struct {
	rm       *repomanager.InMemoryRepositoryManager
	tokens   *auth.TokenManager
	sessions *SessionService
	users    *UserService
}

func newEnv(t *testing.T, scheme string) *env {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	tokens := auth.NewTokenManager([]byte(testSecret), "com.appRecetas", 10*time.Hour)
	sessions := NewSessionService(nil, rm, tokens, logging.Nop{})
	return &env{
		rm:       rm,
		tokens:   tokens,
		sessions: sessions,
		users:    NewUserService(nil, rm, sessions, auth.NewPasswordHasher(scheme), logging.Nop{}),
	}
}

func (e *env) marker(t *testing.T, email string) string {
	t.Helper()
	u, err := e.rm.Users(nil).GetUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("lookup %s: %v", email, err)
	}
	return u.SessionMarker
}

var errStoreDown = errors.New("store down")

// flakyUsers wraps a repository and fails selected operations.
type flakyUsers struct {
	users.Repository
	failGet    bool
	failMarker bool
}

func (f *flakyUsers) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if f.failGet {
		return nil, errStoreDown
	}
	return f.Repository.GetUserByID(ctx, id)
}

func (f *flakyUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.failGet {
		return nil, errStoreDown
	}
	return f.Repository.GetUserByEmail(ctx, email)
}

func (f *flakyUsers) SetSessionMarker(ctx context.Context, id int64, marker string) error {
	if f.failMarker {
		return errStoreDown
	}
	return f.Repository.SetSessionMarker(ctx, id, marker)
}

// managerWith serves the given users repository and reports markers as
// transactional when inDB is set.
type managerWith struct {
	*repomanager.InMemoryRepositoryManager
	users users.Repository
	inDB  bool
}

func (m *managerWith) Users(dbx.DBTX) users.Repository { return m.users }
func (m *managerWith) MarkersInDB() bool               { return m.inDB }
