// Package services contains the application services of the RecipeBook
// client. They sit between the REPL and the API client and keep the
// session token in the local metadata table.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipebook/internal/client/client"
	"github.com/dmitrijs2005/recipebook/internal/client/models"
	"github.com/dmitrijs2005/recipebook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/recipebook/internal/dbx"
)

const (
	keyToken = "token"
	keyEmail = "email"
)

// ErrNotLoggedIn is returned when a command needs a session and none is
// cached locally.
var ErrNotLoggedIn = errors.New("not logged in")

// AuthService manages the locally cached session.
//
// Register and Login replace any cached token with the new one. Logout only
// forgets the local copy; the server keeps no logout state and a token
// simply stops working once a newer login supersedes it.
type AuthService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (*models.Account, error)
	Token(ctx context.Context) (string, error)
	Email(ctx context.Context) string
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, db: db}
}

func (a *authService) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (a *authService) Register(ctx context.Context, email, password string) error {
	token, err := a.client.Register(ctx, email, password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return a.save(ctx, email, token)
}

func (a *authService) Login(ctx context.Context, email, password string) error {
	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return a.save(ctx, email, token)
}

// save stores the token and email together.
func (a *authService) save(ctx context.Context, email, token string) error {
	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := a.repo(tx)
		if err := r.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		return r.Set(ctx, keyEmail, []byte(email))
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.repo(a.db).Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *authService) Token(ctx context.Context) (string, error) {
	v, err := a.repo(a.db).Get(ctx, keyToken)
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		return "", ErrNotLoggedIn
	}
	return string(v), nil
}

// Email returns the address of the cached session, or "" without one.
func (a *authService) Email(ctx context.Context) string {
	if _, err := a.Token(ctx); err != nil {
		return ""
	}
	v, _ := a.repo(a.db).Get(ctx, keyEmail)
	return string(v)
}

// Whoami asks the server who the cached token belongs to. A rejected token
// is dropped locally.
func (a *authService) Whoami(ctx context.Context) (*models.Account, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}

	acc, err := a.client.Me(ctx, token)
	if errors.Is(err, client.ErrUnauthorized) {
		_ = a.Logout(ctx)
	}
	if err != nil {
		return nil, err
	}
	return acc, nil
}
