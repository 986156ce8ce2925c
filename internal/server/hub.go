package server

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"pandemic/internal/protocol"
	"pandemic/internal/store"
)

// Hub owns the WebSocket connections of one room. It handles their messages
// one at a time and writes every change through the store's compare-and-swap,
// so it stays correct when several processes serve the same room.
type Hub struct {
	srv        *Server
	roomID     string
	doc        *store.Document
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	done       chan struct{}
	err        error // why Run stopped; read only after done is closed
	log        *zap.Logger
}

func newHub(srv *Server, roomID string) *Hub {
	return &Hub{
		srv:        srv,
		roomID:     roomID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		done:       make(chan struct{}),
		log:        srv.log.With(zap.String("room", roomID)),
	}
}

// Run loads the room and serves it until the last client leaves, the room is
// deleted or ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	snaps, cancel := h.srv.feed.Subscribe(h.roomID)
	defer cancel()

	opCtx, opCancel := context.WithTimeout(ctx, h.srv.conf.Store.OpTimeout())
	doc, err := h.srv.feed.Get(opCtx, h.roomID)
	opCancel()
	if err != nil {
		h.err = err
		return
	}
	h.doc = doc

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("client connected", zap.String("player", client.ParticipantID), zap.Int("clients", len(h.clients)))
			h.welcome(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Info("client disconnected", zap.String("player", client.ParticipantID), zap.Int("clients", len(h.clients)))
			}
			if len(h.clients) == 0 {
				h.closeIfFinished(ctx)
				return
			}

		case msg := <-h.incoming:
			if h.clients[msg.Client] {
				h.handleMessage(ctx, msg)
			}

		case snap, ok := <-snaps:
			if !ok {
				h.err = store.ErrNotFound
				return
			}
			h.adopt(snap)

		case <-ctx.Done():
			h.err = ctx.Err()
			return
		}
	}
}

func (h *Hub) shutdown() {
	h.srv.dropHub(h)
	for client := range h.clients {
		close(client.send)
	}
	h.clients = nil
	close(h.done)
}

// submit hands a message to the hub. It reports false once the hub is gone.
func (h *Hub) submit(msg IncomingMessage) bool {
	select {
	case h.incoming <- msg:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// closeIfFinished deletes a finished room once nobody is watching it.
func (h *Hub) closeIfFinished(ctx context.Context) {
	if h.doc == nil || h.doc.Game == nil || !h.doc.Game.IsOver() {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, h.srv.conf.Store.OpTimeout())
	defer cancel()
	if err := h.srv.feed.Delete(opCtx, h.roomID); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error("delete finished room", zap.Error(err))
		return
	}
	h.log.Info("finished room deleted")
}

// adopt makes doc the current snapshot if it is newer and pushes it to every
// client.
func (h *Hub) adopt(doc *store.Document) {
	if doc == nil || (h.doc != nil && doc.Version <= h.doc.Version) {
		return
	}
	h.doc = doc
	h.broadcast(protocol.MsgLobbyUpdate, protocol.NewLobbyUpdate(doc.Lobby))
	for client := range h.clients {
		h.sendState(client)
	}
}

func (h *Hub) welcome(c *Client) {
	c.SendEnvelope(protocol.MustEnvelope(protocol.MsgWelcome, protocol.Welcome{
		RoomID:        h.roomID,
		ParticipantID: c.ParticipantID,
		IsHost:        c.ParticipantID == h.doc.Lobby.HostID,
		TV:            c.Type == ClientTV,
	}))
	c.SendEnvelope(protocol.MustEnvelope(protocol.MsgLobbyUpdate, protocol.NewLobbyUpdate(h.doc.Lobby)))
	h.sendState(c)
}

// sendState sends the board view to TVs and spectators and the private view
// to seated players.
func (h *Hub) sendState(c *Client) {
	gs := h.doc.Game
	if gs == nil {
		return
	}
	rules := h.srv.rules
	if c.Type == ClientTV || gs.GetPlayer(c.ParticipantID) == nil {
		c.SendEnvelope(protocol.MustEnvelope(protocol.MsgGameState, rules.PublicView(gs)))
		return
	}
	c.SendEnvelope(protocol.MustEnvelope(protocol.MsgPlayerState, rules.ViewFor(gs, c.ParticipantID)))
}

func (h *Hub) broadcast(typ string, payload any) {
	data, err := json.Marshal(protocol.MustEnvelope(typ, payload))
	if err != nil {
		h.log.Error("broadcast marshal error", zap.Error(err))
		return
	}
	for client := range h.clients {
		client.sendRaw(data)
	}
}

// mutate runs fn against the latest stored document and adopts the result.
func (h *Hub) mutate(ctx context.Context, fn func(*store.Document) error) (*store.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, h.srv.conf.Store.OpTimeout())
	defer cancel()
	saved, err := store.Update(ctx, h.srv.feed, h.roomID, h.srv.conf.Store.CASRetries, fn)
	if err != nil {
		return nil, err
	}
	h.adopt(saved)
	return saved, nil
}
