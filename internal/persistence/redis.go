package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type redisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisStore connects a Redis-backed persistence layer. Collections are
// stored as JSON blobs under fridgepos:collection:<name> with no expiry.
func NewRedisStore(addr, password string, db int, log zerolog.Logger) Store {
	// Accept redis://host:port and rediss://host:port forms.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	} else {
		log.Debug().Str("addr", parsedAddr).Msg("redis connection established")
	}

	return &redisStore{client: client, log: log}
}

func collectionKey(collection string) string {
	return fmt.Sprintf("fridgepos:collection:%s", collection)
}

func (r *redisStore) Save(ctx context.Context, collection string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", collection, err)
	}
	return r.client.Set(ctx, collectionKey(collection), data, 0).Err()
}

func (r *redisStore) Load(ctx context.Context, collection string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, collectionKey(collection)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal collection %s: %w", collection, err)
	}
	return true, nil
}

func (r *redisStore) Delete(ctx context.Context, collection string) error {
	return r.client.Del(ctx, collectionKey(collection)).Err()
}
