// Package services contains server-side business logic: UserService for
// registration and login, SessionService for the token lifecycle and
// RecipeService for the recipe catalog.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/dbx"
	"github.com/dmitrijs2005/recipebook/internal/logging"
	"github.com/dmitrijs2005/recipebook/internal/server/auth"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// UserService provides authentication-related operations:
// - Register: create a user and open its first session
// - Login: verify credentials and open a new session, replacing the old one
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
	hasher      *auth.PasswordHasher
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions *SessionService, hasher *auth.PasswordHasher, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		hasher:      hasher,
		log:         log.With("module", "users"),
	}
}

func validateCredentials(email, password string) error {
	err := validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.Email),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

// Register creates the user and issues its first token. When markers are
// kept in the database both writes share one transaction.
func (s *UserService) Register(ctx context.Context, email, password string) (string, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	var token string
	register := func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		id, err := repo.Create(ctx, email, hash)
		if err != nil {
			if errors.Is(err, common.ErrDuplicateIdentity) {
				return err
			}
			return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}

		token, _, err = s.sessions.issue(ctx, repo, id)
		return err
	}

	if s.repomanager.MarkersInDB() {
		err = dbx.WithTx(ctx, s.db, nil, register)
	} else {
		err = register(ctx, s.db)
	}
	if err != nil {
		if !errors.Is(err, common.ErrDuplicateIdentity) {
			s.log.Error(ctx, "registration failed", "error", err)
		}
		return "", err
	}

	s.log.Info(ctx, "user registered")
	return token, nil
}

// Login checks the password and issues a new token, which invalidates any
// token issued before. Unknown email and wrong password are reported the
// same way and leave the stored session untouched, as are blank or
// malformed credentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	if validateCredentials(email, password) != nil {
		return "", common.ErrInvalidCredentials
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, password)
	}

	token, _, err := s.sessions.issue(ctx, repo, user.ID)
	if err != nil {
		s.log.Error(ctx, "session issue failed", "user_id", user.ID, "error", err)
		return "", err
	}

	return token, nil
}

// upgradeHash re-hashes a legacy digest. Failure is logged and the login
// proceeds with the old hash in place.
func (s *UserService) upgradeHash(ctx context.Context, userID int64, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.repomanager.Users(s.db).UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		s.log.Warn(ctx, "password hash upgrade failed", "user_id", userID, "error", err)
		return
	}
	s.log.Info(ctx, "password hash upgraded", "user_id", userID)
}
