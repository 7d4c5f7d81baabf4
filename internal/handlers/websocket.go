package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	auth *services.AuthService
	hub  *WebSocketHub
}

type WebSocketHub struct {
	clients    map[string]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	Username string
	Conn     *websocket.Conn
}

// Message is the WebSocket envelope. An empty Username broadcasts to
// every connected client; otherwise delivery is targeted.
type Message struct {
	Type     string      `json:"type"`
	Username string      `json:"username,omitempty"`
	Data     interface{} `json:"data"`
}

func NewWebSocketHandler(auth *services.AuthService) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{auth: auth, hub: hub}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	username := c.GetString("username")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		Username: username,
		Conn:     conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendBalance(client)

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		// A ping doubles as a presence beacon.
		if err := h.auth.MarkPresence(context.Background(), client.Username); err != nil {
			log.Printf("Failed to mark presence for %s: %v", client.Username, err)
		}
		h.sendPong(client)
	}
}

// sendBalance and sendPong run on the per-connection reader goroutine,
// so they hand the message to the hub instead of writing the
// connection themselves. The hub goroutine is the only writer.
func (h *WebSocketHandler) sendBalance(client *Client) {
	user, err := h.auth.Me(context.Background(), client.Username)
	if err != nil {
		log.Printf("Failed to get user for WS: %v", err)
		return
	}

	h.hub.broadcast <- &Message{
		Type:     "BALANCE_UPDATE",
		Username: client.Username,
		Data: gin.H{
			"balance":        user.Balance,
			"clicks":         user.Clicks,
			"daily_clicks":   user.DailyClicks,
			"daily_earnings": user.DailyEarnings,
		},
	}
}

func (h *WebSocketHandler) sendPong(client *Client) {
	h.hub.broadcast <- &Message{
		Type:     "PONG",
		Username: client.Username,
		Data: gin.H{
			"timestamp": time.Now().Unix(),
		},
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.Username] = client.Conn
			log.Printf("Client registered: %s", client.Username)

		case client := <-hub.unregister:
			if _, ok := hub.clients[client.Username]; ok {
				delete(hub.clients, client.Username)
				log.Printf("Client unregistered: %s", client.Username)
			}

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)
		}
	}
}

func (hub *WebSocketHub) broadcastMessage(message *Message) {
	if message.Username != "" {
		if conn, ok := hub.clients[message.Username]; ok {
			conn.WriteJSON(message)
		}
	} else {
		for _, conn := range hub.clients {
			conn.WriteJSON(message)
		}
	}
}

// PushBalance sends the new balance to one user's open connection.
func (h *WebSocketHandler) PushBalance(username string, balance float64) {
	h.hub.broadcast <- &Message{
		Type:     "BALANCE_UPDATE",
		Username: username,
		Data: gin.H{
			"balance":   balance,
			"timestamp": time.Now().Unix(),
		},
	}
}

// BroadcastChat pushes a public chat message to every connected client.
func (h *WebSocketHandler) BroadcastChat(msg *models.ChatMessage) {
	h.hub.broadcast <- &Message{
		Type: "CHAT_MESSAGE",
		Data: msg,
	}
}

// PushDirectMessage delivers a DM to both participants.
func (h *WebSocketHandler) PushDirectMessage(sender, peer string, msg *models.ChatMessage) {
	for _, username := range []string{models.NormalizeUsername(sender), models.NormalizeUsername(peer)} {
		h.hub.broadcast <- &Message{
			Type:     "DM_MESSAGE",
			Username: username,
			Data:     msg,
		}
	}
}

// PushRequestResolved tells a user their withdrawal or bet was
// resolved.
func (h *WebSocketHandler) PushRequestResolved(username, kind, id string, approved bool, balance float64) {
	h.hub.broadcast <- &Message{
		Type:     "REQUEST_RESOLVED",
		Username: username,
		Data: gin.H{
			"kind":     kind,
			"id":       id,
			"approved": approved,
			"balance":  balance,
		},
	}
}

// BroadcastAnnouncement pushes a new notice to everyone online.
func (h *WebSocketHandler) BroadcastAnnouncement(a models.Announcement) {
	h.hub.broadcast <- &Message{
		Type: "ANNOUNCEMENT",
		Data: a,
	}
}
