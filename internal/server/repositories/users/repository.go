package users

import (
	"context"

	"github.com/dmitrijs2005/recipebook/internal/server/models"
)

// Repository is the credential store. SetSessionMarker is the only write
// path for the session marker and replaces whatever was stored before.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SetSessionMarker(ctx context.Context, id int64, marker string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
