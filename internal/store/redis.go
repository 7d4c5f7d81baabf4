package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bio-clicker-backend/internal/config"
	"bio-clicker-backend/internal/models"
)

// RedisStore persists every record as a whole JSON document. User
// documents are indexed in a set so admin views can scan the full
// collection; chat streams are lists trimmed to the most recent
// ChatLimit entries.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	key := fmt.Sprintf(keyUserDoc, models.NormalizeUsername(username))

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	user.Normalize(time.Now())

	return &user, nil
}

func (s *RedisStore) SaveUser(ctx context.Context, user *models.User) error {
	key := fmt.Sprintf(keyUserDoc, models.NormalizeUsername(user.Username))

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, userIndexKey, models.NormalizeUsername(user.Username))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

func (s *RedisStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	names, err := s.client.SMembers(ctx, userIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(names) == 0 {
		return []*models.User{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.Get(ctx, fmt.Sprintf(keyUserDoc, name))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to fetch user documents: %w", err)
	}

	users := make([]*models.User, 0, len(names))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue // index entry without a document, skip
		}
		var user models.User
		if err := json.Unmarshal([]byte(data), &user); err != nil {
			continue
		}
		user.Normalize(time.Now())
		users = append(users, &user)
	}

	return users, nil
}

func (s *RedisStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	data, err := s.client.Get(ctx, keySettings).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	settings.Normalize()

	return &settings, nil
}

func (s *RedisStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.client.Set(ctx, keySettings, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *RedisStore) AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.appendToStream(ctx, keyPublicChat, msg)
}

func (s *RedisStore) RecentChatMessages(ctx context.Context, limit int64) ([]*models.ChatMessage, error) {
	return s.recentFromStream(ctx, keyPublicChat, limit)
}

func (s *RedisStore) AppendDirectMessage(ctx context.Context, key string, msg *models.ChatMessage) error {
	return s.appendToStream(ctx, fmt.Sprintf(keyDirectChat, key), msg)
}

func (s *RedisStore) RecentDirectMessages(ctx context.Context, key string, limit int64) ([]*models.ChatMessage, error) {
	return s.recentFromStream(ctx, fmt.Sprintf(keyDirectChat, key), limit)
}

func (s *RedisStore) appendToStream(ctx context.Context, key string, msg *models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -ChatLimit, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

func (s *RedisStore) recentFromStream(ctx context.Context, key string, limit int64) ([]*models.ChatMessage, error) {
	if limit <= 0 || limit > ChatLimit {
		limit = ChatLimit
	}

	raw, err := s.client.LRange(ctx, key, -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	msgs := make([]*models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		msgs = append(msgs, &msg)
	}

	return msgs, nil
}

func (s *RedisStore) AcquireClickCooldown(ctx context.Context, username string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf(keyClickCooldown, models.NormalizeUsername(username))

	ok, err := s.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire cooldown: %w", err)
	}
	return ok, nil
}
