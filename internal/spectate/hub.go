// Package spectate streams game events and state to read-only websocket clients.
// Spectators cannot act on a game; the feed is one-way.
package spectate

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ufsim/ufsim-server-go/internal/game"
	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
)

// Message types sent to spectators.
const (
	TypeEvent = "event"
	TypeState = "state"
)

const sendBuffer = 256

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // read-only feed
	},
}

// Message is the envelope of every frame.
type Message struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// EventView is the wire form of a rules.Event.
type EventView struct {
	Type        string            `json:"type"`
	CardID      string            `json:"card_id,omitempty"`
	PlayerID    int               `json:"player_id,omitempty"`
	Amount      int               `json:"amount,omitempty"`
	Flag        bool              `json:"flag,omitempty"`
	Turn        int               `json:"turn"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Description string            `json:"description,omitempty"`
}

// PlayerView is the wire form of one player. Zones carry card counts only.
type PlayerView struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Character string         `json:"character"`
	Health    int            `json:"health"`
	MaxHealth int            `json:"max_health"`
	Momentum  int            `json:"momentum"`
	Zones     map[string]int `json:"zones"`
}

// StateView is the wire form of a game.Snapshot.
type StateView struct {
	GameID       string       `json:"game_id"`
	Status       string       `json:"status"`
	Winner       int          `json:"winner"`
	Phase        string       `json:"phase"`
	Step         string       `json:"step"`
	Turn         int          `json:"turn"`
	ActivePlayer int          `json:"active_player"`
	Players      []PlayerView `json:"players"`
	Checksum     string       `json:"checksum"`
}

// NewEventView converts evt.
func NewEventView(evt rules.Event) EventView {
	return EventView{
		Type:        string(evt.Type),
		CardID:      evt.CardID,
		PlayerID:    evt.PlayerID,
		Amount:      evt.Amount,
		Flag:        evt.Flag,
		Turn:        evt.Turn,
		Metadata:    evt.Metadata,
		Description: evt.Description,
	}
}

// NewStateView converts snap.
func NewStateView(snap *game.Snapshot) StateView {
	view := StateView{
		GameID:       snap.GameID,
		Status:       snap.Status.String(),
		Winner:       snap.Winner,
		Phase:        snap.Turn.Phase.String(),
		Step:         snap.Turn.Step.String(),
		Turn:         snap.Turn.TurnNumber,
		ActivePlayer: snap.Turn.ActivePlayer,
		Checksum:     snap.Checksum(),
	}
	for _, ps := range snap.Players {
		pv := PlayerView{
			ID:        ps.ID,
			Name:      ps.Name,
			Character: ps.Character,
			Health:    ps.Health,
			MaxHealth: ps.MaxHealth,
			Momentum:  ps.Momentum,
			Zones:     make(map[string]int, len(card.AllZones)),
		}
		for _, z := range card.AllZones {
			pv.Zones[z.String()] = ps.Count(z)
		}
		view.Players = append(view.Players, pv)
	}
	return view
}

type outbound struct {
	gameID  string
	payload []byte
}

// Client is one websocket spectator. An empty gameID follows every game.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

func (c *Client) wants(gameID string) bool {
	return c.gameID == "" || c.gameID == gameID
}

// Hub fans messages out to connected spectators.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a hub. Run must be called before clients connect.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast requests until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("spectator registered", zap.String("game_id", client.gameID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("spectator unregistered", zap.String("game_id", client.gameID))

		case out := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(out.gameID) {
					continue
				}
				select {
				case client.send <- out.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Attach streams engine's events to spectators, with a state frame after every phase
// change and at game end. The returned func detaches the engine.
func (h *Hub) Attach(engine *game.Engine) func() {
	gameID := engine.ID()
	handle := engine.Subscribe(func(evt rules.Event) {
		h.Publish(gameID, Message{Type: TypeEvent, GameID: gameID, Data: NewEventView(evt)})
		if evt.Type == rules.EventPhaseChanged || evt.Type == rules.EventGameOver {
			h.Publish(gameID, Message{Type: TypeState, GameID: gameID, Data: NewStateView(engine.Snapshot())})
		}
	})
	return func() { engine.Unsubscribe(handle) }
}

// Publish queues msg for the spectators of gameID. Messages are dropped rather than
// blocking the game when the queue is full.
func (h *Hub) Publish(gameID string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode spectator message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- outbound{gameID: gameID, payload: payload}:
	default:
		h.logger.Warn("spectator queue full, message dropped", zap.String("game_id", gameID))
	}
}

// ServeHTTP upgrades the request to a websocket. The optional game_id query
// parameter restricts the feed to one game.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		gameID: r.URL.Query().Get("game_id"),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

// readPump discards anything the spectator sends and unregisters it on close.
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
