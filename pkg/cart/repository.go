package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisKeyPrefix prefixes persisted cart keys.
const RedisKeyPrefix = "storefront:cart:"

// Repository persists carts per user.
type Repository interface {
	Load(ctx context.Context, userID string) (State, error)
	Save(ctx context.Context, userID string, state State) error
}

// RedisRepository stores carts as JSON in Redis.
type RedisRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisRepository creates a repository. A ttl of 0 keeps carts forever.
func NewRedisRepository(redisClient *redis.Client, ttl time.Duration) *RedisRepository {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisRepository{redis: redisClient, ttl: ttl}
}

// Key returns the Redis key for userID.
func Key(userID string) string {
	return RedisKeyPrefix + userID
}

// Load returns the stored cart, or an empty cart if none is stored.
func (r *RedisRepository) Load(ctx context.Context, userID string) (State, error) {
	data, err := r.redis.Get(ctx, Key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("redis get: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode cart: %w", err)
	}
	return state, nil
}

// Save overwrites the stored cart.
func (r *RedisRepository) Save(ctx context.Context, userID string, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.redis.Set(ctx, Key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// PersistOnChange saves c to repo after every mutation. Saves run in the
// order the mutations committed, so the last save holds the latest cart.
// Save failures are logged and never reach the code that mutated the cart.
func PersistOnChange(ctx context.Context, c *Cart, repo Repository, userID string, logger zerolog.Logger) (unsubscribe func()) {
	return c.Subscribe(func(state State) {
		if err := repo.Save(ctx, userID, state); err != nil {
			logger.Warn().
				Err(err).
				Str("user_id", userID).
				Int("items", len(state.Items)).
				Msg("Failed to persist cart")
			return
		}
		logger.Debug().
			Str("user_id", userID).
			Int("items", len(state.Items)).
			Msg("Cart persisted")
	})
}
