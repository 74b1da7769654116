// Package cache кэширует ответы внешнего сервиса сходства в Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"interview-practice/internal/config"
	"interview-practice/internal/scoring"
)

const keyPrefix = "similarity:"

// NewClient подключается к Redis и проверяет соединение
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return rdb, nil
}

// SimilarityCache оборачивает SimilarityBackend и запоминает результаты.
// Ошибки Redis не ломают оценку: запрос уходит в обернутый сервис.
type SimilarityCache struct {
	client *redis.Client
	next   scoring.SimilarityBackend
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewSimilarityCache(client *redis.Client, next scoring.SimilarityBackend, ttl time.Duration, log logrus.FieldLogger) *SimilarityCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SimilarityCache{client: client, next: next, ttl: ttl, log: log}
}

func (c *SimilarityCache) Similarity(ctx context.Context, a, b string) (float64, error) {
	key := Key(a, b)

	score, err := c.client.Get(ctx, key).Float64()
	if err == nil {
		return score, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.log.WithError(err).Warn("similarity cache read failed")
	}

	score, err = c.next.Similarity(ctx, a, b)
	if err != nil {
		return 0, err
	}

	if err := c.client.Set(ctx, key, score, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("similarity cache write failed")
	}
	return score, nil
}

// Key ключ пары текстов
func Key(a, b string) string {
	h := sha256.New()
	h.Write([]byte(a))
	h.Write([]byte{0})
	h.Write([]byte(b))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
