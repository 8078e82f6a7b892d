package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/dbx"
	"github.com/dmitrijs2005/recipebook/internal/server/models"
)

const recipeColumns = `id, user_id, name, description, ingredients, calories, image_url, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s scanner) (*models.Recipe, error) {
	r := &models.Recipe{}
	var image sql.NullString
	if err := s.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &r.Ingredients, &r.Calories, &image, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if image.Valid {
		r.ImageURL = &image.String
	}
	return r, nil
}

func (p *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Recipe, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (p *PostgresRepository) List(ctx context.Context) ([]models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes ORDER BY id`
	return p.query(ctx, query)
}

// SearchByName matches a case-insensitive substring of the recipe name.
func (p *PostgresRepository) SearchByName(ctx context.Context, name string) ([]models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes
		 WHERE lower(name) LIKE '%' || $1 || '%' ESCAPE '\'
		 ORDER BY id`
	return p.query(ctx, query, escapeLike(strings.ToLower(name)))
}

func (p *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes
		 WHERE user_id = $1
		 ORDER BY id`
	return p.query(ctx, query, userID)
}

func (p *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes
		 WHERE id = $1`

	r, err := scanRecipe(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r, nil
}

func (p *PostgresRepository) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	query := `INSERT INTO recipes (user_id, name, description, ingredients, calories, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + recipeColumns

	created, err := scanRecipe(p.db.QueryRowContext(ctx, query,
		r.UserID, r.Name, r.Description, r.Ingredients, r.Calories, r.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// Update applies the non-nil fields of u. COALESCE keeps columns whose
// parameter is NULL.
func (p *PostgresRepository) Update(ctx context.Context, id int64, u models.RecipeUpdate) (*models.Recipe, error) {
	query := `UPDATE recipes SET
		 name = COALESCE($2, name),
		 description = COALESCE($3, description),
		 ingredients = COALESCE($4, ingredients),
		 calories = COALESCE($5, calories),
		 updated_at = now()
		 WHERE id = $1
		 RETURNING ` + recipeColumns

	r, err := scanRecipe(p.db.QueryRowContext(ctx, query, id, u.Name, u.Description, u.Ingredients, u.Calories))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r, nil
}

func (p *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return p.execOne(ctx, `DELETE FROM recipes WHERE id = $1`, id)
}

func (p *PostgresRepository) SetImageURL(ctx context.Context, id int64, url string) error {
	return p.execOne(ctx, `UPDATE recipes SET image_url = $2, updated_at = now() WHERE id = $1`, id, url)
}

func (p *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
