package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipebook/internal/dbx"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out process-local repositories. The
// DBTX arguments are ignored, so nothing it returns is transactional.
type InMemoryRepositoryManager struct {
	users   *users.MemoryRepository
	recipes *recipes.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:   users.NewMemoryRepository(),
		recipes: recipes.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Recipes(dbx.DBTX) recipes.Repository {
	return m.recipes
}

func (m *InMemoryRepositoryManager) MarkersInDB() bool {
	return false
}
