package infra

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"frete-proxy/frete/domain"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/zerr"
)

// RedisSlot guarda o último resultado em uma única chave do Redis.
// O valor inteiro (fretes + timestamp) vai em um SET só, então a troca é atômica.
// Permite que várias réplicas do relay compartilhem o mesmo "latest".
type RedisSlot struct {
	rdb *redis.Client

	key string
	// ttl opcional na chave; o corte de idade continua sendo o do ResultCache.
	ttl time.Duration
}

type RedisSlotOption func(*RedisSlot)

func WithSlotKey(key string) RedisSlotOption {
	return func(s *RedisSlot) {
		if k := strings.TrimSpace(key); k != "" {
			s.key = k
		}
	}
}

func WithSlotTTL(d time.Duration) RedisSlotOption {
	return func(s *RedisSlot) { s.ttl = d }
}

func NewRedisSlot(rdb *redis.Client, opts ...RedisSlotOption) *RedisSlot {
	s := &RedisSlot{
		rdb: rdb,
		key: "frete:latest",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisSlot) Key() string { return s.key }

func (s *RedisSlot) Load(ctx context.Context) (*domain.CachedResult, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "falha ao ler slot no redis"), "chave", s.key)
	}

	var res domain.CachedResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "slot no redis corrompido"), "chave", s.key)
	}
	return &res, nil
}

func (s *RedisSlot) Store(ctx context.Context, res domain.CachedResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return zerr.Wrap(err, "falha ao serializar resultado")
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return zerr.With(zerr.Wrap(err, "falha ao gravar slot no redis"), "chave", s.key)
	}
	return nil
}

func (s *RedisSlot) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return zerr.With(zerr.Wrap(err, "falha ao limpar slot no redis"), "chave", s.key)
	}
	return nil
}
