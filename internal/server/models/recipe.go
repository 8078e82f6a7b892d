package models

import "time"

type Recipe struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Ingredients string    `db:"ingredients" json:"ingredients"`
	Calories    string    `db:"calories" json:"calories"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RecipeUpdate is a partial update; nil fields are left as they are.
type RecipeUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Ingredients *string `json:"ingredients"`
	Calories    *string `json:"calories"`
}

// Empty reports whether the update changes nothing.
func (u RecipeUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Ingredients == nil && u.Calories == nil
}
