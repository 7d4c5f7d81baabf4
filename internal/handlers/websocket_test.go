package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bio-clicker-backend/internal/config"
	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/services"
	"bio-clicker-backend/internal/store"
)

// The hub goroutine is the only connection writer. Reader-side sends
// must enqueue on the hub channel, never touch the conn directly; the
// nil Conn here would panic if they did.
func TestReaderSendsGoThroughHub(t *testing.T) {
	s := store.NewMemoryStore()
	settings := services.NewSettingsService(s)
	jwtService := services.NewJWTService(&config.Config{JWTSecret: "test-secret", JWTExpiryHours: 1})
	auth := services.NewAuthService(s, settings, jwtService)

	user := models.NewUser("alice", "hash", time.Now())
	user.Balance = 12.5
	require.NoError(t, s.SaveUser(context.Background(), user))

	h := &WebSocketHandler{
		auth: auth,
		hub:  &WebSocketHub{broadcast: make(chan *Message, 2)},
	}
	client := &Client{Username: "alice"}

	h.sendBalance(client)
	h.sendPong(client)

	msg := <-h.hub.broadcast
	assert.Equal(t, "BALANCE_UPDATE", msg.Type)
	assert.Equal(t, "alice", msg.Username)

	msg = <-h.hub.broadcast
	assert.Equal(t, "PONG", msg.Type)
	assert.Equal(t, "alice", msg.Username)
}

func TestHandlePingEnqueuesPong(t *testing.T) {
	s := store.NewMemoryStore()
	settings := services.NewSettingsService(s)
	jwtService := services.NewJWTService(&config.Config{JWTSecret: "test-secret", JWTExpiryHours: 1})
	auth := services.NewAuthService(s, settings, jwtService)

	require.NoError(t, s.SaveUser(context.Background(), models.NewUser("alice", "hash", time.Now())))

	h := &WebSocketHandler{
		auth: auth,
		hub:  &WebSocketHub{broadcast: make(chan *Message, 1)},
	}

	h.handleMessage(&Client{Username: "alice"}, &Message{Type: "PING"})

	msg := <-h.hub.broadcast
	assert.Equal(t, "PONG", msg.Type)
}
