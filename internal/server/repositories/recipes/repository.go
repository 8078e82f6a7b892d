package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipebook/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Recipe, error)
	SearchByName(ctx context.Context, name string) ([]models.Recipe, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Recipe, error)
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error)
	Update(ctx context.Context, id int64, u models.RecipeUpdate) (*models.Recipe, error)
	Delete(ctx context.Context, id int64) error
	SetImageURL(ctx context.Context, id int64, url string) error
}
