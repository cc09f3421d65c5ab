package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/library-fullstack/borrowcart/internal/app/model"
	"github.com/library-fullstack/borrowcart/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings for the mirror.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Key      string // well-known storage key for the serialized cart
}

// RedisMirror stores the cart as one serialized record under a single key.
type RedisMirror struct {
	client *redis.Client
	key    string
}

// NewRedisMirror connects to Redis and verifies it is reachable.
func NewRedisMirror(cfg RedisConfig) (*RedisMirror, error) {
	logger.Info("Initializing Redis cart mirror", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
		"key":  cfg.Key,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisMirror{client: client, key: cfg.Key}, nil
}

// Load reads the stored cart. Missing or corrupt records degrade to
// (nil, nil), same as the file mirror.
func (m *RedisMirror) Load() (*model.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := m.client.Get(ctx, m.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Cart mirror unreadable, treating as empty", map[string]interface{}{
				"key":   m.key,
				"error": err.Error(),
			})
		}
		return nil, nil
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		logger.Warn("Cart mirror corrupt, treating as empty", map[string]interface{}{
			"key":   m.key,
			"error": err.Error(),
		})
		return nil, nil
	}
	cart.Recompute()
	return &cart, nil
}

// Save overwrites the stored record. No TTL: the record lives until logout or
// an empty cart clears it.
func (m *RedisMirror) Save(cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.client.Set(ctx, m.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cart mirror: %w", err)
	}
	return nil
}

// Clear removes the stored record.
func (m *RedisMirror) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.client.Del(ctx, m.key).Err(); err != nil {
		return fmt.Errorf("failed to clear cart mirror: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (m *RedisMirror) Close() error {
	logger.Info("Closing Redis cart mirror connection", nil)
	return m.client.Close()
}
