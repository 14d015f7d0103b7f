package relay

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/uset82/My-Football-Game/internal/config"
	"github.com/uset82/My-Football-Game/internal/middleware"
	"github.com/uset82/My-Football-Game/internal/ws"
)

const (
	maxRooms = 100
	// readLimit bounds one inbound frame; a full state snapshot is ~1KB.
	readLimit = 8 << 10
)

// Limiter gates connections and messages per client IP.
type Limiter interface {
	ws.MessageLimiter
	ConnectAllowed(ip string) bool
	Disconnect(ip string)
}

// Stats holds live relay metrics.
type Stats struct {
	Rooms            int    `json:"rooms"`
	Connections      int    `json:"connections"`
	TotalConnections uint64 `json:"totalConnections"`
	RejectedConns    uint64 `json:"rejectedConns"`
	DroppedMessages  uint64 `json:"droppedMessages"`
}

type member struct {
	conn *ws.Conn
	role ws.Role
}

// room is a set of connections that only hear each other. It lives as long
// as it has members.
type room struct {
	id      string
	members map[string]*member
}

// Hub is the relay's in-memory room table. It holds no game state: it
// assigns roles and forwards start, input and state frames untouched.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room

	totalConnections atomic.Uint64

	limiter        Limiter
	originPatterns []string
	log            *slog.Logger
}

func NewHub(limiter Limiter, originPatterns []string) *Hub {
	return &Hub{
		rooms:          make(map[string]*room),
		limiter:        limiter,
		originPatterns: originPatterns,
		log:            slog.Default().With("component", "relay"),
	}
}

// AssignRole returns the first free player seat, or spectator when both
// are taken.
func AssignRole(used map[ws.Role]bool) ws.Role {
	if !used[ws.RoleP1] {
		return ws.RoleP1
	}
	if !used[ws.RoleP2] {
		return ws.RoleP2
	}
	return ws.RoleSpectator
}

// Stats returns a snapshot of current relay metrics.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	st := Stats{Rooms: len(h.rooms)}
	for _, r := range h.rooms {
		st.Connections += len(r.members)
	}
	h.mu.Unlock()

	st.TotalConnections = h.totalConnections.Load()
	if rj, ok := h.limiter.(interface{ Rejected() (uint64, uint64) }); ok {
		st.RejectedConns, st.DroppedMessages = rj.Rejected()
	}
	return st
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	if h.limiter != nil && !h.limiter.ConnectAllowed(ip) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}
	defer func() {
		if h.limiter != nil {
			h.limiter.Disconnect(ip)
		}
	}()

	acceptOpts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		acceptOpts.OriginPatterns = h.originPatterns
	}
	c, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		h.log.Warn("ws accept error", "ip", ip, "err", err)
		return
	}
	c.SetReadLimit(readLimit)

	h.totalConnections.Add(1)
	id := uuid.NewString()
	conn := ws.NewConn(c, id, ip, h.limiter)
	roomID := config.ResolveRoom(r.URL.Query())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go conn.WriteLoop(ctx)

	role, ok := h.join(roomID, conn)
	if !ok {
		h.log.Warn("max rooms reached, rejecting", "conn", id, "room", roomID)
		conn.CloseWith(websocket.StatusTryAgainLater, "server full")
		return
	}
	h.log.Info("joined", "conn", id, "room", roomID, "role", role, "ip", ip)

	for msg := range conn.ReadLoop(ctx) {
		if !ws.Relayed(msg.Type) {
			h.log.Debug("ignoring message", "conn", id, "type", msg.Type)
			continue
		}
		h.fanOut(roomID, id, msg.Raw)
	}

	h.leave(roomID, id)
	conn.Close()
	h.log.Info("left", "conn", id, "room", roomID, "role", role)
}

// join seats conn in its room, tells it its role, and announces it to the
// others. It refuses a new room once maxRooms exist.
func (h *Hub) join(roomID string, conn *ws.Conn) (ws.Role, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[roomID]
	if !ok {
		if len(h.rooms) >= maxRooms {
			return "", false
		}
		rm = &room{id: roomID, members: make(map[string]*member)}
		h.rooms[roomID] = rm
	}

	used := make(map[ws.Role]bool, len(rm.members))
	for _, m := range rm.members {
		used[m.role] = true
	}
	role := AssignRole(used)
	rm.members[conn.ID] = &member{conn: conn, role: role}

	msg, err := ws.NewMessage(ws.MsgJoined, ws.JoinedPayload{Room: roomID, Role: role})
	if err == nil {
		err = conn.Send(msg)
	}
	if err != nil {
		h.log.Debug("join ack dropped", "to", conn.ID, "room", roomID, "err", err)
	}
	h.announce(rm, conn.ID, ws.MsgPlayerJoined, ws.PeerPayload{Role: role, ID: conn.ID})
	return role, true
}

// leave frees the connection's seat and drops the room once empty.
func (h *Hub) leave(roomID, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[roomID]
	if !ok {
		return
	}
	m, ok := rm.members[id]
	if !ok {
		return
	}
	delete(rm.members, id)
	h.announce(rm, id, ws.MsgPlayerLeft, ws.PeerPayload{Role: m.role, ID: id})
	if len(rm.members) == 0 {
		delete(h.rooms, roomID)
	}
}

// announce sends a lifecycle message to every member but from. Callers hold h.mu.
func (h *Hub) announce(rm *room, from, typ string, payload ws.PeerPayload) {
	msg, err := ws.NewMessage(typ, payload)
	if err != nil {
		h.log.Error("encode announcement", "type", typ, "err", err)
		return
	}
	for id, m := range rm.members {
		if id == from {
			continue
		}
		if err := m.conn.Send(msg); err != nil {
			h.log.Debug("announcement dropped", "type", typ, "to", id, "err", err)
		}
	}
}

// fanOut forwards a frame verbatim to the rest of the room.
func (h *Hub) fanOut(roomID, from string, data []byte) {
	h.mu.Lock()
	rm, ok := h.rooms[roomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	targets := make([]*ws.Conn, 0, len(rm.members))
	for id, m := range rm.members {
		if id != from {
			targets = append(targets, m.conn)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.SendRaw(data); err != nil {
			h.log.Debug("relay drop", "to", c.ID, "err", err)
		}
	}
}

// Shutdown closes every connection with a going-away status.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	var conns []*ws.Conn
	for _, rm := range h.rooms {
		for _, m := range rm.members {
			conns = append(conns, m.conn)
		}
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.CloseWith(websocket.StatusGoingAway, "server shutting down")
	}
}
