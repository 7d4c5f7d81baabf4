package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bio-clicker-backend/internal/models"
)

// MemoryStore is a map-backed Store used by tests and local
// development. Documents are deep-copied through JSON round-trips so
// callers never share memory with stored state, mirroring the
// marshal/unmarshal boundary of the Redis implementation.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[string][]byte
	settings  []byte
	streams   map[string][][]byte
	cooldowns map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string][]byte),
		streams:   make(map[string][][]byte),
		cooldowns: make(map[string]time.Time),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.users[models.NormalizeUsername(username)]
	if !ok {
		return nil, ErrNotFound
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	user.Normalize(time.Now())
	return &user, nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[models.NormalizeUsername(user.Username)] = data
	return nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*models.User, 0, len(s.users))
	for _, data := range s.users {
		var user models.User
		if err := json.Unmarshal(data, &user); err != nil {
			continue
		}
		user.Normalize(time.Now())
		users = append(users, &user)
	}
	return users, nil
}

func (s *MemoryStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		return nil, ErrNotFound
	}
	var settings models.Settings
	if err := json.Unmarshal(s.settings, &settings); err != nil {
		return nil, err
	}
	settings.Normalize()
	return &settings, nil
}

func (s *MemoryStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = data
	return nil
}

func (s *MemoryStore) AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.appendToStream(keyPublicChat, msg)
}

func (s *MemoryStore) RecentChatMessages(ctx context.Context, limit int64) ([]*models.ChatMessage, error) {
	return s.recentFromStream(keyPublicChat, limit)
}

func (s *MemoryStore) AppendDirectMessage(ctx context.Context, key string, msg *models.ChatMessage) error {
	return s.appendToStream("chat:"+key, msg)
}

func (s *MemoryStore) RecentDirectMessages(ctx context.Context, key string, limit int64) ([]*models.ChatMessage, error) {
	return s.recentFromStream("chat:"+key, limit)
}

func (s *MemoryStore) appendToStream(key string, msg *models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stream := append(s.streams[key], data)
	if len(stream) > ChatLimit {
		stream = stream[len(stream)-ChatLimit:]
	}
	s.streams[key] = stream
	return nil
}

func (s *MemoryStore) recentFromStream(key string, limit int64) ([]*models.ChatMessage, error) {
	if limit <= 0 || limit > ChatLimit {
		limit = ChatLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[key]
	if int64(len(stream)) > limit {
		stream = stream[int64(len(stream))-limit:]
	}
	msgs := make([]*models.ChatMessage, 0, len(stream))
	for _, data := range stream {
		var msg models.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

func (s *MemoryStore) AcquireClickCooldown(ctx context.Context, username string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.NormalizeUsername(username)
	now := time.Now()
	if until, ok := s.cooldowns[key]; ok && now.Before(until) {
		return false, nil
	}
	s.cooldowns[key] = now.Add(ttl)
	return true, nil
}
