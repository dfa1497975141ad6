package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"neoquiz/internal/auth/models"
)

const defaultKeyPrefix = "neoquiz:credentials:"

// RedisStore keeps credentials in Redis so several terminals share a session.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces the access_token and user_data keys.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &RedisStore{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) SaveToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key(TokenKey), token, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", TokenKey, err)
	}
	return nil
}

func (s *RedisStore) GetToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key(TokenKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", TokenKey, err)
	}
	return token, nil
}

func (s *RedisStore) SaveUser(ctx context.Context, user *models.User) error {
	raw, err := encodeUser(user)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(UserKey), raw, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", UserKey, err)
	}
	return nil
}

func (s *RedisStore) GetUser(ctx context.Context) (*models.User, error) {
	raw, err := s.client.Get(ctx, s.key(UserKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", UserKey, err)
	}
	return decodeUser(raw)
}

// ClearAll deletes both keys in one round trip.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(TokenKey), s.key(UserKey)).Err(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
