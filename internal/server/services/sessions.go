package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/logging"
	"github.com/dmitrijs2005/recipebook/internal/server/auth"
	"github.com/dmitrijs2005/recipebook/internal/server/models"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/users"
)

// SessionService issues session tokens and validates presented ones.
// The session marker stored per user is the id of the last issued token;
// issuing a new token overwrites it, which revokes every earlier token.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
	log         logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenManager, log logging.Logger) *SessionService {
	return &SessionService{db: db, repomanager: m, tokens: tokens, log: log.With("module", "sessions")}
}

// Issue signs a token for userID and makes it the user's only valid
// session. It returns the token and its id.
func (s *SessionService) Issue(ctx context.Context, userID int64) (string, string, error) {
	return s.issue(ctx, s.repomanager.Users(s.db), userID)
}

func (s *SessionService) issue(ctx context.Context, repo users.Repository, userID int64) (string, string, error) {
	token, tokenID, err := s.tokens.Generate(userID)
	if err != nil {
		return "", "", fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}

	if err := repo.SetSessionMarker(ctx, userID, tokenID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrUnknownIdentity
		}
		return "", "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	return token, tokenID, nil
}

// Validate resolves a bearer token to a principal. Rejections are one of
// common.ErrInvalidToken, common.ErrUnknownIdentity or common.ErrStaleToken;
// a store failure yields common.ErrStorageUnavailable.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownIdentity
		}
		s.log.Error(ctx, "session lookup failed", "user_id", claims.UserID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if !user.HasSession || user.SessionMarker != claims.ID {
		return nil, common.ErrStaleToken
	}

	return &models.Principal{UserID: user.ID, Email: user.Email, TokenID: claims.ID}, nil
}
