package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipebook/internal/client/models"
	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/netx"
)

// Client is the RecipeBook API as seen by the CLI. Authenticated calls take
// the bearer token explicitly.
type Client interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (*models.Account, error)
	ListRecipes(ctx context.Context, token, name string, mine bool) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, token string, id int64) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, token string, in models.RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, token string, id int64) error
	RequestImageUpload(ctx context.Context, token string, id int64) (*models.ImageUpload, error)
	UploadImage(ctx context.Context, uploadURL string, data []byte, contentType string) error
	ConfirmImageUpload(ctx context.Context, token string, id int64, imageURL string) (*models.Recipe, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/register", "", credentials{email, password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/login", "", credentials{email, password}, &out)
	if errors.Is(err, ErrUnauthorized) {
		return "", common.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListRecipes(ctx context.Context, token, name string, mine bool) ([]models.Recipe, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	if mine {
		q.Set("mine", "true")
	}

	path := "/recipes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []models.Recipe
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetRecipe(ctx context.Context, token string, id int64) (*models.Recipe, error) {
	var out models.Recipe
	if err := c.do(ctx, http.MethodGet, recipePath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateRecipe(ctx context.Context, token string, in models.RecipeInput) (*models.Recipe, error) {
	var out models.Recipe
	if err := c.do(ctx, http.MethodPost, "/recipes", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteRecipe(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, recipePath(id), token, nil, nil)
}

func (c *HTTPClient) RequestImageUpload(ctx context.Context, token string, id int64) (*models.ImageUpload, error) {
	var out models.ImageUpload
	if err := c.do(ctx, http.MethodPost, recipePath(id)+"/image", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage sends the bytes straight to object storage; the API server is
// not involved.
func (c *HTTPClient) UploadImage(ctx context.Context, uploadURL string, data []byte, contentType string) error {
	if err := netx.UploadToPresignedURL(ctx, c.http, uploadURL, data, contentType); err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	return nil
}

// ConfirmImageUpload asks the server to attach an uploaded image to the
// recipe.
func (c *HTTPClient) ConfirmImageUpload(ctx context.Context, token string, id int64, imageURL string) (*models.Recipe, error) {
	var out models.Recipe
	body := map[string]string{"image_url": imageURL}
	if err := c.do(ctx, http.MethodPut, recipePath(id)+"/image", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func recipePath(id int64) string {
	return "/recipes/" + strconv.FormatInt(id, 10)
}

// do sends one JSON request. A nil out discards the response body.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var e errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	msg := e.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrDuplicateIdentity
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	default:
		return fmt.Errorf("server error %d: %s", resp.StatusCode, msg)
	}
}
