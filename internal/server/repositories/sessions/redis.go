// Package sessions keeps session markers in Redis instead of the users
// table. RedisRepository decorates a users.Repository: credential data
// still comes from the wrapped store, the marker comes from Redis only.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/recipebook/internal/server/models"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/users"
	"github.com/redis/go-redis/v9"
)

type RedisRepository struct {
	users.Repository
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisRepository wraps inner. Markers are written with ttl, which
// should match the token validity so an expired session leaves no key
// behind; zero means no expiry.
func NewRedisRepository(inner users.Repository, rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisRepository {
	return &RedisRepository{Repository: inner, rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisRepository) key(id int64) string {
	return r.prefix + ":session:" + strconv.FormatInt(id, 10)
}

func (r *RedisRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.Repository.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.withMarker(ctx, u)
}

func (r *RedisRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := r.Repository.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.withMarker(ctx, u)
}

func (r *RedisRepository) withMarker(ctx context.Context, u *models.User) (*models.User, error) {
	marker, err := r.rdb.Get(ctx, r.key(u.ID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		u.SessionMarker, u.HasSession = "", false
	case err != nil:
		return nil, fmt.Errorf("redis error: %w", err)
	default:
		u.SessionMarker, u.HasSession = marker, true
	}
	return u, nil
}

// SetSessionMarker replaces the marker with a single SET. An id the
// wrapped store does not know is common.ErrorNotFound and leaves Redis
// untouched.
func (r *RedisRepository) SetSessionMarker(ctx context.Context, id int64, marker string) error {
	if _, err := r.Repository.GetUserByID(ctx, id); err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(id), marker, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
