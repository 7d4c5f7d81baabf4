package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

const maxMessageLength = 500

// ChatInput is the send form for both public chat and DMs.
type ChatInput struct {
	Text      string `json:"text"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
}

// ChatService writes to the capped public stream and per-pair DM
// streams. Display name and color are captured at send time so old
// messages keep the look the sender had when they wrote them.
type ChatService struct {
	store    store.Store
	settings *SettingsService
	now      func() time.Time
}

func NewChatService(s store.Store, settings *SettingsService) *ChatService {
	return &ChatService{store: s, settings: settings, now: time.Now}
}

// SendPublic appends a message to the public stream.
func (c *ChatService) SendPublic(ctx context.Context, username string, input ChatInput) (*models.ChatMessage, error) {
	msg, err := c.buildMessage(ctx, username, input)
	if err != nil {
		return nil, err
	}
	if err := c.store.AppendChatMessage(ctx, msg); err != nil {
		return nil, models.ErrStorage("chat persist failed", err)
	}
	return msg, nil
}

// SendDirect appends a message to the conversation between the sender
// and peer.
func (c *ChatService) SendDirect(ctx context.Context, username, peer string, input ChatInput) (*models.ChatMessage, error) {
	peer = models.NormalizeUsername(peer)
	if peer == "" || peer == models.NormalizeUsername(username) {
		return nil, models.ErrValidation("invalid recipient")
	}
	if _, err := c.store.GetUser(ctx, peer); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.ErrNotFound("user", peer)
		}
		return nil, models.ErrStorage("user read failed", err)
	}

	msg, err := c.buildMessage(ctx, username, input)
	if err != nil {
		return nil, err
	}
	if err := c.store.AppendDirectMessage(ctx, models.DMKeyFor(username, peer), msg); err != nil {
		return nil, models.ErrStorage("chat persist failed", err)
	}
	return msg, nil
}

// RecentPublic returns the newest public messages, oldest first.
func (c *ChatService) RecentPublic(ctx context.Context, limit int64) ([]*models.ChatMessage, error) {
	if limit <= 0 || limit > store.ChatLimit {
		limit = store.ChatLimit
	}
	msgs, err := c.store.RecentChatMessages(ctx, limit)
	if err != nil {
		return nil, models.ErrStorage("chat read failed", err)
	}
	return msgs, nil
}

// RecentDirect returns the newest messages between the caller and
// peer, oldest first.
func (c *ChatService) RecentDirect(ctx context.Context, username, peer string, limit int64) ([]*models.ChatMessage, error) {
	if limit <= 0 || limit > store.ChatLimit {
		limit = store.ChatLimit
	}
	msgs, err := c.store.RecentDirectMessages(ctx, models.DMKeyFor(username, peer), limit)
	if err != nil {
		return nil, models.ErrStorage("chat read failed", err)
	}
	return msgs, nil
}

func (c *ChatService) buildMessage(ctx context.Context, username string, input ChatInput) (*models.ChatMessage, error) {
	if c.settings.ServerClosed(ctx) {
		return nil, models.ErrServerClosed()
	}

	text := strings.TrimSpace(input.Text)
	if text == "" && input.MediaURL == "" {
		return nil, models.ErrValidation("message is empty")
	}
	if len(text) > maxMessageLength {
		return nil, models.ErrValidation("message is too long")
	}

	user, err := c.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}
	if user.IsBanned {
		return nil, models.ErrBanned()
	}
	if user.IsChatBanned {
		return nil, models.ErrChatBanned()
	}

	color := user.ProfileColor
	if user.FlashyName != "" && user.FlashyColor != "" {
		color = user.FlashyColor
	}

	return &models.ChatMessage{
		ID:            models.GenerateMessageID(),
		User:          user.Username,
		Username:      user.DisplayName(),
		UsernameColor: color,
		Text:          text,
		MediaURL:      input.MediaURL,
		MediaType:     input.MediaType,
		Timestamp:     c.now(),
	}, nil
}
