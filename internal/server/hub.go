package server

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/janpfeifer/GoMemory/internal/engine"
	"github.com/janpfeifer/GoMemory/internal/game"
	"k8s.io/klog/v2"
)

// sendBuffer is how many messages may queue for a slow client before they are dropped.
const sendBuffer = 64

// writeTimeout caps a single websocket write.
const writeTimeout = 2 * time.Second

// client is one connected view of the game.
type client struct {
	id   string
	conn *websocket.Conn
	send chan game.WsMessage
}

// Hub fans the engine's signals out to every connected client.
// It implements engine.Notifier, so it never calls back into the engine.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

var _ engine.Notifier = (*Hub)(nil)

// NewHub creates a Hub with no clients.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// register adds conn and starts its writer goroutine.
func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan game.WsMessage, sendBuffer),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	klog.Infof("Client %s connected (%d connected)", c.id, n)
	go c.writeLoop()
	return c
}

// unregister removes the client and stops its writer.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	klog.Infof("Client %s disconnected (%d connected)", c.id, len(h.clients))
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// sendTo queues one message for c.
func (h *Hub) sendTo(c *client, msgType game.MessageType, payload any) {
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		klog.Errorf("Failed to create %s message: %v", msgType, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.id]; ok {
		c.enqueue(msg)
	}
}

// broadcast queues one message for every client.
func (h *Hub) broadcast(msgType game.MessageType, payload any) {
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		klog.Errorf("Failed to create %s message: %v", msgType, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.enqueue(msg)
	}
}

func (h *Hub) CardRevealed(id int, icon game.IconID) {
	h.broadcast(game.MsgTypeRevealed, game.RevealedMessage{CardID: id, Icon: icon})
}

func (h *Hub) CardConcealed(id int) {
	h.broadcast(game.MsgTypeConcealed, game.ConcealedMessage{CardID: id})
}

func (h *Hub) Matched(score, matchCount int) {
	h.broadcast(game.MsgTypeMatch, game.MatchMessage{Score: score, MatchCount: matchCount})
}

func (h *Hub) Mismatched() {
	h.broadcast(game.MsgTypeMismatch, nil)
}

func (h *Hub) GameCompleted(finalScore int) {
	h.broadcast(game.MsgTypeComplete, game.CompleteMessage{FinalScore: finalScore})
}

// enqueue never blocks: the engine lock may be held by the caller.
func (c *client) enqueue(msg game.WsMessage) {
	select {
	case c.send <- msg:
	default:
		klog.Warningf("Client %s is too slow, dropping %s message", c.id, msg.Type)
	}
}

func (c *client) writeLoop() {
	for msg := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := wsjson.Write(ctx, c.conn, msg)
		cancel()
		if err != nil {
			klog.V(1).Infof("Client %s: write error: %v", c.id, err)
		}
	}
}
