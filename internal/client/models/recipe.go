// Package models holds the client-side view of API payloads.
package models

import "time"

type Account struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type Recipe struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Ingredients string    `json:"ingredients"`
	Calories    string    `json:"calories"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImageUpload is a presigned upload target for a recipe image.
type ImageUpload struct {
	UploadURL string `json:"upload_url"`
	ImageURL  string `json:"image_url"`
}

// RecipeInput is the body of a create request.
type RecipeInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Ingredients string `json:"ingredients"`
	Calories    string `json:"calories"`
}
