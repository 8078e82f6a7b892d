package recipes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/server/models"
)

// MemoryRepository is an in-process Repository. Safe for concurrent use.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]models.Recipe
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int64]models.Recipe)}
}

func (m *MemoryRepository) filter(keep func(models.Recipe) bool) []models.Recipe {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Recipe{}
	for _, r := range m.items {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryRepository) List(ctx context.Context) ([]models.Recipe, error) {
	return m.filter(func(models.Recipe) bool { return true }), nil
}

func (m *MemoryRepository) SearchByName(ctx context.Context, name string) ([]models.Recipe, error) {
	needle := strings.ToLower(name)
	return m.filter(func(r models.Recipe) bool {
		return strings.Contains(strings.ToLower(r.Name), needle)
	}), nil
}

func (m *MemoryRepository) ListByUser(ctx context.Context, userID int64) ([]models.Recipe, error) {
	return m.filter(func(r models.Recipe) bool { return r.UserID == userID }), nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := time.Now()
	created := *r
	created.ID = m.nextID
	created.CreatedAt, created.UpdatedAt = now, now
	m.items[created.ID] = created
	return &created, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id int64, u models.RecipeUpdate) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Ingredients != nil {
		r.Ingredients = *u.Ingredients
	}
	if u.Calories != nil {
		r.Calories = *u.Calories
	}
	r.UpdatedAt = time.Now()
	m.items[id] = r
	return &r, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryRepository) SetImageURL(ctx context.Context, id int64, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.ImageURL = &url
	r.UpdatedAt = time.Now()
	m.items[id] = r
	return nil
}
