package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/logging"
	sc "github.com/dmitrijs2005/recipebook/internal/server/config"
	"github.com/dmitrijs2005/recipebook/internal/server/models"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

const imageUploadExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in, optFns...)
	}
)

// RecipeService manages the recipe catalog. Anyone authenticated can read;
// only the owner can change or delete a recipe.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	log         logging.Logger
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, log logging.Logger) *RecipeService {
	return &RecipeService{db: db, repomanager: m, config: config, log: log.With("module", "recipes")}
}

// ImageUpload is a presigned PUT for a recipe image and the URL the
// object will be served from once uploaded.
type ImageUpload struct {
	UploadURL string `json:"upload_url"`
	ImageURL  string `json:"image_url"`
}

var (
	nameRules     = []validation.Rule{validation.Required, validation.Length(1, 200)}
	caloriesRules = []validation.Rule{validation.Length(0, 50)}
)

func validateRecipe(r *models.Recipe) error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, nameRules...),
		validation.Field(&r.Calories, caloriesRules...),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

func validateUpdate(u models.RecipeUpdate) error {
	if u.Name != nil {
		if err := validation.Validate(*u.Name, nameRules...); err != nil {
			return fmt.Errorf("%w: name: %v", common.ErrorValidation, err)
		}
	}
	if u.Calories != nil {
		if err := validation.Validate(*u.Calories, caloriesRules...); err != nil {
			return fmt.Errorf("%w: calories: %v", common.ErrorValidation, err)
		}
	}
	return nil
}

// List returns recipes, optionally filtered by a case-insensitive name
// substring and by owner (ownerID > 0). An empty result is
// common.ErrorNotFound.
func (s *RecipeService) List(ctx context.Context, name string, ownerID int64) ([]models.Recipe, error) {
	repo := s.repomanager.Recipes(s.db)

	var (
		items []models.Recipe
		err   error
	)
	switch {
	case ownerID > 0:
		items, err = repo.ListByUser(ctx, ownerID)
		if err == nil && name != "" {
			items = filterByName(items, name)
		}
	case name != "":
		items, err = repo.SearchByName(ctx, name)
	default:
		items, err = repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}
	if len(items) == 0 {
		return nil, common.ErrorNotFound
	}
	return items, nil
}

func filterByName(items []models.Recipe, name string) []models.Recipe {
	needle := strings.ToLower(name)
	out := items[:0]
	for _, r := range items {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

func (s *RecipeService) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	r, err := s.repomanager.Recipes(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting recipe: %w", err)
	}
	return r, nil
}

// Create stores a recipe owned by the caller. Any id, owner or image URL
// in the input is ignored.
func (s *RecipeService) Create(ctx context.Context, p *models.Principal, in models.Recipe) (*models.Recipe, error) {
	in.ID = 0
	in.UserID = p.UserID
	in.ImageURL = nil
	if err := validateRecipe(&in); err != nil {
		return nil, err
	}

	r, err := s.repomanager.Recipes(s.db).Create(ctx, &in)
	if err != nil {
		return nil, fmt.Errorf("error creating recipe: %w", err)
	}
	s.log.Info(ctx, "recipe created", "recipe_id", r.ID, "user_id", p.UserID)
	return r, nil
}

func (s *RecipeService) Update(ctx context.Context, p *models.Principal, id int64, u models.RecipeUpdate) (*models.Recipe, error) {
	if err := validateUpdate(u); err != nil {
		return nil, err
	}

	current, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if u.Empty() {
		return current, nil
	}

	r, err := s.repomanager.Recipes(s.db).Update(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("error updating recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeService) Delete(ctx context.Context, p *models.Principal, id int64) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	if err := s.repomanager.Recipes(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting recipe: %w", err)
	}
	s.log.Info(ctx, "recipe deleted", "recipe_id", id, "user_id", p.UserID)
	return nil
}

// owned loads the recipe and checks that p owns it.
func (s *RecipeService) owned(ctx context.Context, p *models.Principal, id int64) (*models.Recipe, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != p.UserID {
		return nil, common.ErrorForbidden
	}
	return r, nil
}

func (s *RecipeService) getS3Client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.config.S3Region)}
	if s.config.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// objectURL is where an uploaded key is served from.
func (s *RecipeService) objectURL(key string) string {
	if s.config.S3BaseEndpoint != "" {
		return strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.S3Bucket, s.config.S3Region, key)
}

// imagePrefix is the key prefix every image of recipe id is stored under.
func imagePrefix(id int64) string {
	return fmt.Sprintf("recipes/%d/", id)
}

// PresignImageUpload returns a presigned PUT for a new image of recipe id.
// The recipe is not changed until ConfirmImageUpload sees the object.
func (s *RecipeService) PresignImageUpload(ctx context.Context, p *models.Principal, id int64) (*ImageUpload, error) {
	if !s.config.ImageUploadsEnabled() {
		return nil, common.ErrStorageDisabled
	}

	if _, err := s.owned(ctx, p, id); err != nil {
		return nil, err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := imagePrefix(id) + uuid.NewString()

	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(imageUploadExpiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	return &ImageUpload{UploadURL: req.URL, ImageURL: s.objectURL(key)}, nil
}

// ConfirmImageUpload records imageURL on recipe id once the object behind
// it exists. The URL must be one PresignImageUpload could have issued for
// this recipe.
func (s *RecipeService) ConfirmImageUpload(ctx context.Context, p *models.Principal, id int64, imageURL string) (*models.Recipe, error) {
	if !s.config.ImageUploadsEnabled() {
		return nil, common.ErrStorageDisabled
	}

	if _, err := s.owned(ctx, p, id); err != nil {
		return nil, err
	}

	base := s.objectURL("")
	key, ok := strings.CutPrefix(imageURL, base)
	if !ok || !strings.HasPrefix(key, imagePrefix(id)) || len(key) == len(imagePrefix(id)) {
		return nil, fmt.Errorf("%w: image url does not belong to recipe %d", common.ErrorValidation, id)
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	if _, err := headObject(client, ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w: image has not been uploaded", common.ErrorValidation)
		}
		return nil, fmt.Errorf("error checking image: %w", err)
	}

	repo := s.repomanager.Recipes(s.db)
	if err := repo.SetImageURL(ctx, id, imageURL); err != nil {
		return nil, fmt.Errorf("error saving image url: %w", err)
	}
	s.log.Info(ctx, "recipe image attached", "recipe_id", id, "user_id", p.UserID)
	return s.Get(ctx, id)
}
