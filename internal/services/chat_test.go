package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

func newTestChat(s *store.MemoryStore, settings *SettingsService) *ChatService {
	svc := NewChatService(s, settings)
	svc.now = func() time.Time { return testTime }
	return svc
}

func TestSendPublicCapturesIdentity(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.FlashyName = "The Ace"
		u.FlashyColor = "#GOLD01"
	})
	svc := newTestChat(s, settings)
	ctx := context.Background()

	msg, err := svc.SendPublic(ctx, "alice", ChatInput{Text: " hello "})
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.User)
	assert.Equal(t, "The Ace", msg.Username)
	assert.Equal(t, "#GOLD01", msg.UsernameColor)
	assert.Equal(t, "hello", msg.Text)

	msgs, err := svc.RecentPublic(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, msg.ID, msgs[0].ID)
}

func TestSendPublicRejections(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "muted", func(u *models.User) { u.IsChatBanned = true })
	seedUser(t, s, "banned", func(u *models.User) { u.IsBanned = true })
	seedUser(t, s, "alice", nil)
	svc := newTestChat(s, settings)
	ctx := context.Background()

	_, err := svc.SendPublic(ctx, "muted", ChatInput{Text: "hi"})
	assertCode(t, err, "CHAT_BANNED")

	_, err = svc.SendPublic(ctx, "banned", ChatInput{Text: "hi"})
	assertCode(t, err, "BANNED")

	_, err = svc.SendPublic(ctx, "alice", ChatInput{Text: "   "})
	assertCode(t, err, "VALIDATION_ERROR")

	long := make([]byte, maxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.SendPublic(ctx, "alice", ChatInput{Text: string(long)})
	assertCode(t, err, "VALIDATION_ERROR")
}

func TestSendPublicMediaOnly(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", nil)
	svc := newTestChat(s, settings)

	msg, err := svc.SendPublic(context.Background(), "alice", ChatInput{MediaURL: "https://cdn.example/cat.gif", MediaType: "gif"})
	require.NoError(t, err)
	assert.Empty(t, msg.Text)
	assert.Equal(t, "gif", msg.MediaType)
}

func TestDirectMessages(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", nil)
	seedUser(t, s, "bob", nil)
	svc := newTestChat(s, settings)
	ctx := context.Background()

	_, err := svc.SendDirect(ctx, "alice", "bob", ChatInput{Text: "hey"})
	require.NoError(t, err)
	_, err = svc.SendDirect(ctx, "bob", "ALICE", ChatInput{Text: "yo"})
	require.NoError(t, err)

	// Both participants read the same conversation.
	fromAlice, err := svc.RecentDirect(ctx, "alice", "bob", 10)
	require.NoError(t, err)
	fromBob, err := svc.RecentDirect(ctx, "bob", "alice", 10)
	require.NoError(t, err)
	require.Len(t, fromAlice, 2)
	require.Len(t, fromBob, 2)
	assert.Equal(t, fromAlice[0].ID, fromBob[0].ID)

	_, err = svc.SendDirect(ctx, "alice", "alice", ChatInput{Text: "hi me"})
	assertCode(t, err, "VALIDATION_ERROR")

	_, err = svc.SendDirect(ctx, "alice", "ghost", ChatInput{Text: "anyone?"})
	assertCode(t, err, "NOT_FOUND")
}
