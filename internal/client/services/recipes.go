package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/recipebook/internal/client/client"
	"github.com/dmitrijs2005/recipebook/internal/client/models"
	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/filex"
)

// RecipeService runs recipe commands with the cached session token.
type RecipeService interface {
	List(ctx context.Context, name string, mine bool) ([]models.Recipe, error)
	Get(ctx context.Context, id int64) (*models.Recipe, error)
	Create(ctx context.Context, in models.RecipeInput) (*models.Recipe, error)
	Delete(ctx context.Context, id int64) error
	AttachImage(ctx context.Context, id int64, path string) (string, error)
}

// MaxImageSize caps the files accepted by AttachImage.
const MaxImageSize = 5 << 20

type recipeService struct {
	client client.Client
	auth   AuthService
}

func NewRecipeService(c client.Client, auth AuthService) RecipeService {
	return &recipeService{client: c, auth: auth}
}

// rejected forgets the session when the server refused the token.
func (s *recipeService) rejected(ctx context.Context, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		_ = s.auth.Logout(ctx)
	}
	return err
}

// List returns matching recipes. The server answers 404 for an empty
// result; that is reported here as an empty slice.
func (s *recipeService) List(ctx context.Context, name string, mine bool) ([]models.Recipe, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.client.ListRecipes(ctx, token, name, mine)
	if errors.Is(err, common.ErrorNotFound) {
		return []models.Recipe{}, nil
	}
	if err != nil {
		return nil, s.rejected(ctx, err)
	}
	return items, nil
}

func (s *recipeService) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.client.GetRecipe(ctx, token, id)
	if err != nil {
		return nil, s.rejected(ctx, err)
	}
	return r, nil
}

func (s *recipeService) Create(ctx context.Context, in models.RecipeInput) (*models.Recipe, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}

	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.client.CreateRecipe(ctx, token, in)
	if err != nil {
		return nil, s.rejected(ctx, err)
	}
	return r, nil
}

func (s *recipeService) Delete(ctx context.Context, id int64) error {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return err
	}

	if err := s.client.DeleteRecipe(ctx, token, id); err != nil {
		return s.rejected(ctx, err)
	}
	return nil
}

// AttachImage uploads the image at path for recipe id, has the server
// attach it, and returns its public URL.
func (s *recipeService) AttachImage(ctx context.Context, id int64, path string) (string, error) {
	data, err := filex.ReadLimited(path, MaxImageSize)
	if err != nil {
		return "", err
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s is %s, not an image", common.ErrorValidation, path, contentType)
	}

	token, err := s.auth.Token(ctx)
	if err != nil {
		return "", err
	}

	upload, err := s.client.RequestImageUpload(ctx, token, id)
	if err != nil {
		return "", s.rejected(ctx, err)
	}

	if err := s.client.UploadImage(ctx, upload.UploadURL, data, contentType); err != nil {
		return "", err
	}

	if _, err := s.client.ConfirmImageUpload(ctx, token, id, upload.ImageURL); err != nil {
		return "", s.rejected(ctx, err)
	}
	return upload.ImageURL, nil
}
