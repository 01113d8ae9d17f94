package devserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

// Hub manages websocket rooms keyed by chat ID plus the set of connected
// clients, so pushes can target either a room or a user.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	clients map[*Client]bool
	log     zerolog.Logger

	// onSendMessage is invoked when a client emits a sendMessage command;
	// the returned message is broadcast back into the room as the echo.
	onSendMessage func(senderID, chatID, content string) (models.Message, bool)
}

func newHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]*Room),
		clients: make(map[*Client]bool),
		log:     log,
	}
}

// Room maintains active clients and broadcasts messages to them.
type Room struct {
	id         string
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func newRoom(id string) *Room {
	r := &Room{
		id:         id,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
	go r.run()
	return r
}

func (r *Room) run() {
	for {
		select {
		case c := <-r.register:
			r.clients[c] = true
		case c := <-r.unregister:
			delete(r.clients, c)
		case msg := <-r.broadcast:
			for c := range r.clients {
				select {
				case c.send <- msg:
				default:
					// slow client; drop
				}
			}
		}
	}
}

// Client represents a single websocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	mu     sync.Mutex
	joined map[string]*Room
}

func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		for _, r := range c.joined {
			r.unregister <- c
		}
		c.joined = map[string]*Room{}
		c.mu.Unlock()

		c.hub.mu.Lock()
		delete(c.hub.clients, c)
		c.hub.mu.Unlock()

		close(c.send)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 20)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var evt models.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			// Ignore malformed input; keep the connection alive.
			continue
		}
		c.handleCommand(evt)
	}
}

func (c *Client) handleCommand(evt models.Event) {
	switch evt.Type {
	case models.CommandAuthenticate:
		var p models.AuthPayload
		if json.Unmarshal(evt.Data, &p) == nil && p.UserID != "" {
			c.userID = p.UserID
		}
	case models.CommandJoinChat:
		var p models.RoomPayload
		if json.Unmarshal(evt.Data, &p) == nil && p.ChatID != "" {
			room := c.hub.getRoom(p.ChatID)
			room.register <- c
			c.mu.Lock()
			c.joined[p.ChatID] = room
			c.mu.Unlock()
		}
	case models.CommandLeaveChat:
		var p models.RoomPayload
		if json.Unmarshal(evt.Data, &p) == nil && p.ChatID != "" {
			c.mu.Lock()
			room := c.joined[p.ChatID]
			delete(c.joined, p.ChatID)
			c.mu.Unlock()
			if room != nil {
				room.unregister <- c
			}
		}
	case models.CommandSendMessage:
		var p struct {
			ChatID  string `json:"chatId"`
			Content string `json:"content"`
		}
		if json.Unmarshal(evt.Data, &p) != nil || p.ChatID == "" {
			return
		}
		if c.hub.onSendMessage == nil {
			return
		}
		if msg, ok := c.hub.onSendMessage(c.userID, p.ChatID, p.Content); ok {
			c.hub.BroadcastToRoom(p.ChatID, models.EventNewMessage, msg)
		}
	}
}

func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// getRoom returns the existing room or creates a new one.
func (h *Hub) getRoom(id string) *Room {
	h.mu.RLock()
	r := h.rooms[id]
	h.mu.RUnlock()
	if r != nil {
		return r
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if r = h.rooms[id]; r == nil {
		r = newRoom(id)
		h.rooms[id] = r
	}
	return r
}

// BroadcastToRoom sends the event to every client joined to the room.
func (h *Hub) BroadcastToRoom(chatID, eventType string, payload any) {
	evt, err := models.NewEvent(eventType, payload)
	if err != nil {
		h.log.Error().Err(err).Msg("devserver: marshal event")
		return
	}
	b, err := json.Marshal(evt)
	if err != nil {
		h.log.Error().Err(err).Msg("devserver: marshal envelope")
		return
	}
	h.getRoom(chatID).broadcast <- b
}

// PushToUser sends the event to every connection authenticated as the user.
func (h *Hub) PushToUser(userID, eventType string, payload any) {
	evt, err := models.NewEvent(eventType, payload)
	if err != nil {
		h.log.Error().Err(err).Msg("devserver: marshal event")
		return
	}
	b, err := json.Marshal(evt)
	if err != nil {
		h.log.Error().Err(err).Msg("devserver: marshal envelope")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.userID == userID {
			select {
			case c.send <- b:
			default:
			}
		}
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// serveWS upgrades a connection and starts its pumps. Authentication happens
// via the explicit authenticate command, not the upgrade itself.
func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("devserver: ws upgrade failed")
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		joined: make(map[string]*Room),
	}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	go client.writePump()
	client.readPump()
}
