package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"dzgamezone-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache holds rates keyed by normalized region name.
type Cache interface {
	Get(ctx context.Context, name string) (*Wilaya, bool, error)
	Set(ctx context.Context, w *Wilaya) error
	Invalidate(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCache stores every rate as a field of one hash so a write to the
// table can drop the whole cache with a single DEL.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) Cache {
	return &redisCache{client: client, key: prefix + ":shipping:rates", ttl: ttl}
}

func cacheField(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *redisCache) Get(ctx context.Context, name string) (*Wilaya, bool, error) {
	raw, err := c.client.HGet(ctx, c.key, cacheField(name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var w Wilaya
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, false, err
	}
	return &w, true, nil
}

func (c *redisCache) Set(ctx context.Context, w *Wilaya) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, c.key, cacheField(w.Nom), data)
		pipe.Expire(ctx, c.key, c.ttl)
		return nil
	})
	return err
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

type cachedRepository struct {
	Repository
	cache Cache
}

// NewCachedRepository serves GetByName through cache and drops the cache on
// every write. Cache faults are logged and fall through to the store.
func NewCachedRepository(repo Repository, cache Cache) Repository {
	return &cachedRepository{Repository: repo, cache: cache}
}

func (r *cachedRepository) GetByName(ctx context.Context, name string) (*Wilaya, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "cache"), zap.String("wilaya", name))

	if w, ok, err := r.cache.Get(ctx, name); err != nil {
		log.Warn("rate cache read failed", zap.Error(err))
	} else if ok {
		return w, nil
	}

	w, err := r.Repository.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, w); err != nil {
		log.Warn("rate cache write failed", zap.Error(err))
	}
	return w, nil
}

func (r *cachedRepository) invalidate(ctx context.Context) {
	if err := r.cache.Invalidate(ctx); err != nil {
		logger.FromCtx(ctx).Warn("rate cache invalidation failed", zap.Error(err))
	}
}

func (r *cachedRepository) Create(ctx context.Context, w *Wilaya) (*Wilaya, error) {
	created, err := r.Repository.Create(ctx, w)
	if err == nil {
		r.invalidate(ctx)
	}
	return created, err
}

func (r *cachedRepository) Update(ctx context.Context, numero int, ch Changes) (*Wilaya, error) {
	updated, err := r.Repository.Update(ctx, numero, ch)
	if err == nil {
		r.invalidate(ctx)
	}
	return updated, err
}

func (r *cachedRepository) Delete(ctx context.Context, numero int) error {
	err := r.Repository.Delete(ctx, numero)
	if err == nil {
		r.invalidate(ctx)
	}
	return err
}
