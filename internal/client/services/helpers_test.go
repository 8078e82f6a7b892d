package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/recipebook/internal/client/client"
	"github.com/dmitrijs2005/recipebook/internal/client/models"
	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient is an in-process stand-in for the server. Each login issues a
// fresh token and invalidates the previous one.
type fakeClient struct {
	passwords map[string]string
	current   map[string]string
	issued    int
	recipes   map[int64]models.Recipe
	nextID    int64
	uploads   map[string]string
	err       error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		passwords: map[string]string{},
		current:   map[string]string{},
		recipes:   map[int64]models.Recipe{},
	}
}

func (f *fakeClient) issue(email string) string {
	f.issued++
	tok := fmt.Sprintf("%s#%d", email, f.issued)
	f.current[email] = tok
	return tok
}

func (f *fakeClient) owner(token string) (string, error) {
	for email, tok := range f.current {
		if tok == token {
			return email, nil
		}
	}
	return "", client.ErrUnauthorized
}

func (f *fakeClient) Register(_ context.Context, email, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, ok := f.passwords[email]; ok {
		return "", common.ErrDuplicateIdentity
	}
	f.passwords[email] = password
	return f.issue(email), nil
}

func (f *fakeClient) Login(_ context.Context, email, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return "", common.ErrInvalidCredentials
	}
	return f.issue(email), nil
}

func (f *fakeClient) Me(_ context.Context, token string) (*models.Account, error) {
	email, err := f.owner(token)
	if err != nil {
		return nil, err
	}
	return &models.Account{ID: 1, Email: email}, nil
}

func (f *fakeClient) ListRecipes(_ context.Context, token, name string, mine bool) ([]models.Recipe, error) {
	if _, err := f.owner(token); err != nil {
		return nil, err
	}
	var out []models.Recipe
	for _, r := range f.recipes {
		if name == "" || r.Name == name {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, common.ErrorNotFound
	}
	return out, nil
}

func (f *fakeClient) GetRecipe(_ context.Context, token string, id int64) (*models.Recipe, error) {
	if _, err := f.owner(token); err != nil {
		return nil, err
	}
	r, ok := f.recipes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (f *fakeClient) CreateRecipe(_ context.Context, token string, in models.RecipeInput) (*models.Recipe, error) {
	if _, err := f.owner(token); err != nil {
		return nil, err
	}
	f.nextID++
	r := models.Recipe{ID: f.nextID, Name: in.Name, Description: in.Description}
	f.recipes[r.ID] = r
	return &r, nil
}

func (f *fakeClient) DeleteRecipe(_ context.Context, token string, id int64) error {
	if _, err := f.owner(token); err != nil {
		return err
	}
	if _, ok := f.recipes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.recipes, id)
	return nil
}

func (f *fakeClient) RequestImageUpload(_ context.Context, token string, id int64) (*models.ImageUpload, error) {
	if _, err := f.owner(token); err != nil {
		return nil, err
	}
	if _, ok := f.recipes[id]; !ok {
		return nil, common.ErrorNotFound
	}
	return &models.ImageUpload{
		UploadURL: fmt.Sprintf("https://upload.example.com/recipes/%d", id),
		ImageURL:  fmt.Sprintf("https://cdn.example.com/recipes/%d", id),
	}, nil
}

func (f *fakeClient) UploadImage(_ context.Context, uploadURL string, data []byte, contentType string) error {
	if f.uploads == nil {
		f.uploads = map[string]string{}
	}
	f.uploads[uploadURL] = contentType
	return nil
}

func (f *fakeClient) ConfirmImageUpload(_ context.Context, token string, id int64, imageURL string) (*models.Recipe, error) {
	if _, err := f.owner(token); err != nil {
		return nil, err
	}
	r, ok := f.recipes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	r.ImageURL = &imageURL
	f.recipes[id] = r
	return &r, nil
}
