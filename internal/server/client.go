package server

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pandemic/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// ClientType distinguishes TV from player connections.
type ClientType int

const (
	ClientTV     ClientType = 0
	ClientPlayer ClientType = 1
)

// Client represents a single WebSocket connection.
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	limiter       *rate.Limiter
	log           *zap.Logger
	ParticipantID string
	Type          ClientType
}

func NewClient(conn *websocket.Conn, participantID string, clientType ClientType, limiter *rate.Limiter, l *zap.Logger) *Client {
	return &Client{
		conn:          conn,
		send:          make(chan []byte, 256),
		limiter:       limiter,
		log:           l.With(zap.String("player", participantID)),
		ParticipantID: participantID,
		Type:          clientType,
	}
}

// ReadPump reads messages from the WebSocket and forwards them to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("ws read error", zap.Error(err))
			}
			break
		}
		msg := IncomingMessage{Client: c}
		if !c.limiter.Allow() {
			msg.Err = reject(protocol.CodeRateLimited, errRateLimited)
		} else if err := json.Unmarshal(message, &msg.Envelope); err != nil {
			msg.Err = reject(protocol.CodeBadMessage, errMalformed)
		}
		if !c.hub.submit(msg) {
			break
		}
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEnvelope queues a typed message for this client. Only the owning hub
// goroutine may call it, since the hub closes send on unregister.
func (c *Client) SendEnvelope(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.log.Error("marshal envelope", zap.String("type", env.Type), zap.Error(err))
		return
	}
	c.sendRaw(data)
}

func (c *Client) sendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, dropping message")
	}
}

// IncomingMessage pairs a message with its source client. Err is set when
// the read pump already rejected the message.
type IncomingMessage struct {
	Client   *Client
	Envelope protocol.Envelope
	Err      error
}
