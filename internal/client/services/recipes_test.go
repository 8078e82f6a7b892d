package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/recipebook/internal/client/client"
	"github.com/dmitrijs2005/recipebook/internal/client/models"
	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/filex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeService_NeedsSession(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	s := NewRecipeService(fc, NewAuthService(fc, setupDB(t)))

	_, err := s.List(ctx, "", false)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = s.Create(ctx, models.RecipeInput{Name: "Pie"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, s.Delete(ctx, 1), ErrNotLoggedIn)
}

func TestRecipeService_Flow(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	a := NewAuthService(fc, setupDB(t))
	s := NewRecipeService(fc, a)
	require.NoError(t, a.Register(ctx, "cook@example.com", "pw"))

	items, err := s.List(ctx, "", false)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.Create(ctx, models.RecipeInput{})
	assert.ErrorIs(t, err, common.ErrorValidation)

	created, err := s.Create(ctx, models.RecipeInput{Name: "Pie", Description: "apple"})
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Description)

	items, err = s.List(ctx, "Pie", false)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, s.Delete(ctx, created.ID))
	assert.ErrorIs(t, s.Delete(ctx, created.ID), common.ErrorNotFound)

	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRecipeService_RejectedTokenLogsOut(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	a := NewAuthService(fc, setupDB(t))
	s := NewRecipeService(fc, a)
	require.NoError(t, a.Register(ctx, "cook@example.com", "pw"))

	_, err := fc.Login(ctx, "cook@example.com", "pw")
	require.NoError(t, err)

	_, err = s.List(ctx, "", false)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = a.Token(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRecipeService_AttachImage(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	a := NewAuthService(fc, setupDB(t))
	s := NewRecipeService(fc, a)
	require.NoError(t, a.Register(ctx, "cook@example.com", "pw"))

	created, err := s.Create(ctx, models.RecipeInput{Name: "Pie"})
	require.NoError(t, err)

	png := writeFile(t, "pie.png", []byte("\x89PNG\r\n\x1a\n0000"))
	url, err := s.AttachImage(ctx, created.ID, png)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/recipes/1", url)
	assert.Equal(t, "image/png", fc.uploads["https://upload.example.com/recipes/1"])
	require.NotNil(t, fc.recipes[created.ID].ImageURL, "upload is confirmed with the server")
	assert.Equal(t, url, *fc.recipes[created.ID].ImageURL)

	_, err = s.AttachImage(ctx, 42, png)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	txt := writeFile(t, "notes.txt", []byte("just text"))
	_, err = s.AttachImage(ctx, created.ID, txt)
	assert.ErrorIs(t, err, common.ErrorValidation)

	big := writeFile(t, "big.png", make([]byte, MaxImageSize+1))
	_, err = s.AttachImage(ctx, created.ID, big)
	assert.ErrorIs(t, err, filex.ErrTooLarge)
}
