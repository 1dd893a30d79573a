// internal/commerce/redis_repository.go
package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCartRepository stores session carts as JSON in Redis with a TTL
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartRepository creates a Redis-backed cart repository
func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

// Get returns the session cart, or an empty one when none exists
func (r *RedisCartRepository) Get(ctx context.Context, sessionID string) (*SessionCart, error) {
	data, err := r.client.Get(ctx, cartKey(sessionID)).Result()
	if err == redis.Nil {
		return emptySessionCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session cart: %w", err)
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(data), &sessionCart); err != nil {
		return nil, fmt.Errorf("failed to parse session cart: %w", err)
	}
	return &sessionCart, nil
}

// Save stores the session cart with the repository TTL
func (r *RedisCartRepository) Save(ctx context.Context, sessionID string, sessionCart *SessionCart) error {
	data, err := json.Marshal(sessionCart)
	if err != nil {
		return fmt.Errorf("failed to encode session cart: %w", err)
	}
	return r.client.Set(ctx, cartKey(sessionID), data, r.ttl).Err()
}

// Delete removes the session cart
func (r *RedisCartRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, cartKey(sessionID)).Err()
}

// RedisOTPRepository stores pending one-time codes in Redis
type RedisOTPRepository struct {
	client *redis.Client
}

// NewRedisOTPRepository creates a Redis-backed OTP repository
func NewRedisOTPRepository(client *redis.Client) *RedisOTPRepository {
	return &RedisOTPRepository{client: client}
}

// Put stores a pending code with a TTL
func (r *RedisOTPRepository) Put(ctx context.Context, phone, code string, ttl time.Duration) error {
	return r.client.Set(ctx, otpKey(phone), code, ttl).Err()
}

// Get returns the pending code for a phone, if any
func (r *RedisOTPRepository) Get(ctx context.Context, phone string) (string, bool, error) {
	code, err := r.client.Get(ctx, otpKey(phone)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read otp: %w", err)
	}
	return code, true, nil
}

// Delete removes the pending code
func (r *RedisOTPRepository) Delete(ctx context.Context, phone string) error {
	return r.client.Del(ctx, otpKey(phone)).Err()
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func otpKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}
