package leaderboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/fest-portal/models"
	"github.com/gorilla/websocket"
)

const (
	// StandingsRoom is the room every live results display joins.
	StandingsRoom = "standings"

	MessageStandingsUpdated = "STANDINGS_UPDATED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	IsClosed bool
	Mu       sync.Mutex

	initial *models.StandingsSnapshot
}

type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	latest     *models.StandingsSnapshot // последний опубликованный лидерборд
	mu         sync.RWMutex
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "ws_hub")),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, room string) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBufferSize),
		Room: room,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.greet(client)
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Info("client registered", slog.String("room", client.Room), slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
					h.logger.Info("client unregistered", slog.String("room", client.Room), slog.Int("clients", len(clients)))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Join registers a client; it reports false once the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// JoinStandings registers a live display. The display first receives the
// newest standings known at registration time: the last published snapshot,
// or snap when nothing was published yet. Broadcasts that follow are queued
// after it.
func (h *Hub) JoinStandings(c *Client, snap *models.StandingsSnapshot) bool {
	c.Room = StandingsRoom
	c.initial = snap
	return h.Join(c)
}

// greet runs under h.mu, so no broadcast can slip in before the first message.
func (h *Hub) greet(c *Client) {
	if c.Room != StandingsRoom {
		return
	}
	snap := h.latest
	if snap == nil {
		snap = c.initial
	}
	c.initial = nil
	if snap == nil {
		return
	}
	b, err := json.Marshal(StandingsMessage(*snap))
	if err != nil {
		h.logger.Error("failed to marshal initial standings", slog.Any("error", err))
		return
	}
	c.trySend(b)
}

func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		for client := range clients {
			client.closeSend()
		}
		delete(h.rooms, room)
	}
}

// ClientCount returns the number of clients in a room.
func (h *Hub) ClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastToRoom отправляет сообщение всем клиентам в указанной комнате.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.broadcastLocked(roomID, message)
}

func (h *Hub) broadcastLocked(roomID string, message interface{}) {
	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		if !client.trySend(messageBytes) {
			h.logger.Warn("client lagging, oldest queued message discarded", slog.String("room", roomID))
		}
	}
}

// PublishStandings pushes a snapshot to every live display and remembers it
// for displays that connect later. A snapshot computed before the last
// published one is ignored.
func (h *Hub) PublishStandings(snap models.StandingsSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest != nil && snap.ComputedAt.Before(h.latest.ComputedAt) {
		h.logger.Debug("outdated standings not published", slog.Time("computed_at", snap.ComputedAt))
		return
	}
	h.latest = &snap
	h.broadcastLocked(StandingsRoom, StandingsMessage(snap))
}

func StandingsMessage(snap models.StandingsSnapshot) WebSocketMessage {
	return WebSocketMessage{
		Type:    MessageStandingsUpdated,
		Payload: snap,
		RoomID:  StandingsRoom,
	}
}

// trySend never blocks. With a full buffer the oldest queued message is
// discarded to make room, so a lagging client still ends on the newest
// standings; it then reports false.
func (c *Client) trySend(b []byte) bool {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if c.IsClosed {
		return true
	}
	select {
	case c.Send <- b:
		return true
	default:
	}
	// Кроме нас в канал пишут только под c.Mu, так что место освободится
	select {
	case <-c.Send:
	default:
	}
	select {
	case c.Send <- b:
	default:
	}
	return false
}

func (c *Client) closeSend() {
	c.Mu.Lock()
	if !c.IsClosed {
		close(c.Send)
		c.IsClosed = true
	}
	c.Mu.Unlock()
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Входящие сообщения от табло не ожидаются, читаем только ради control frames.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("unexpected websocket close", slog.String("room", c.Room), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Каждое сообщение отдельным фреймом: клиент парсит JSON целиком.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Debug("websocket write failed", slog.String("room", c.Room), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
