package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pandemic/internal/engine"
	"pandemic/internal/identity"
	"pandemic/internal/lobby"
	qr "pandemic/internal/qrcode"
	"pandemic/internal/store"
)

const createRoomAttempts = 5

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type identityRequest struct {
	Token string `json:"token"`
}

// HandleIdentity issues an anonymous participant identity. A still valid
// token is refreshed and keeps its participant id.
func (s *Server) HandleIdentity(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identity request"})
		return
	}

	var (
		id  identity.Identity
		err error
	)
	if pid, perr := s.issuer.Parse(req.Token); req.Token != "" && perr == nil {
		id, err = s.issuer.Issue(pid)
	} else {
		id, err = s.issuer.IssueAnonymous()
	}
	if err != nil {
		s.log.Error("issue identity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue identity"})
		return
	}
	c.JSON(http.StatusOK, id)
}

type createRoomRequest struct {
	Difficulty       engine.Difficulty `json:"difficulty"`
	TurnTimerSeconds *int              `json:"turn_timer_seconds"`
}

type roomResponse struct {
	Code    string                 `json:"code"`
	JoinURL string                 `json:"join_url"`
	Version int64                  `json:"version"`
	Lobby   *lobby.Lobby           `json:"lobby"`
	Game    *engine.PublicViewData `json:"game,omitempty"`
}

func (s *Server) defaultSettings() engine.Settings {
	g := s.conf.Game
	return engine.Settings{
		Difficulty:       engine.Difficulty(g.Difficulty),
		TurnTimerSeconds: g.TurnTimerSeconds,
		MaxPlayers:       g.MaxPlayers,
	}
}

// HandleCreateRoom creates a room hosted by the calling participant.
func (s *Server) HandleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			return
		}
	}
	settings := s.defaultSettings()
	if req.Difficulty != "" {
		settings.Difficulty = req.Difficulty
	}
	if req.TurnTimerSeconds != nil {
		settings.TurnTimerSeconds = *req.TurnTimerSeconds
	}
	if err := settings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hostID := c.GetString(participantKey)
	ctx := c.Request.Context()
	for range createRoomAttempts {
		code := lobby.NewCode()
		doc, err := s.feed.Create(ctx, &store.Document{RoomID: code, Lobby: lobby.New(code, hostID, settings)})
		if errors.Is(err, store.ErrExists) {
			continue
		}
		if err != nil {
			s.log.Error("create room", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
			return
		}
		s.log.Info("room created", zap.String("room", code), zap.String("host", hostID))
		c.JSON(http.StatusCreated, s.roomResponse(c, doc))
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no free room code"})
}

// HandleGetRoom returns the lobby and the public board of a room. Hands and
// deck order stay private.
func (s *Server) HandleGetRoom(c *gin.Context) {
	doc, ok := s.loadRoom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.roomResponse(c, doc))
}

// HandleQR generates a QR code PNG for joining the room.
func (s *Server) HandleQR(c *gin.Context) {
	doc, ok := s.loadRoom(c)
	if !ok {
		return
	}
	png, err := qr.Generate(s.joinURL(c, doc.RoomID))
	if err != nil {
		s.log.Error("qr generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QR generation failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// HandleWS upgrades to a WebSocket bound to one room. type=tv connects a
// board display that only receives the public view.
func (s *Server) HandleWS(c *gin.Context) {
	roomID := strings.ToUpper(c.Query("room"))
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing room parameter"})
		return
	}
	pid, err := s.issuer.Parse(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}
	if _, err := s.feed.Get(c.Request.Context(), roomID); err != nil {
		s.respondStoreError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("ws upgrade error", zap.Error(err))
		return
	}

	ct := ClientPlayer
	if c.Query("type") == "tv" {
		ct = ClientTV
	}
	client := NewClient(conn, pid, ct, s.newLimiter(), s.log.With(zap.String("room", roomID)))
	hub, err := s.attach(roomID, client)
	if err != nil {
		s.log.Warn("ws attach failed", zap.String("room", roomID), zap.Error(err))
		conn.Close()
		return
	}
	client.hub = hub

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) loadRoom(c *gin.Context) (*store.Document, bool) {
	code := strings.ToUpper(c.Param("code"))
	if !lobby.ValidCode(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return nil, false
	}
	doc, err := s.feed.Get(c.Request.Context(), code)
	if err != nil {
		s.respondStoreError(c, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	s.log.Error("load room", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "room is unavailable"})
}

func (s *Server) roomResponse(c *gin.Context, doc *store.Document) roomResponse {
	resp := roomResponse{
		Code:    doc.RoomID,
		JoinURL: s.joinURL(c, doc.RoomID),
		Version: doc.Version,
		Lobby:   doc.Lobby,
	}
	if doc.Game != nil {
		pv := s.rules.PublicView(doc.Game)
		resp.Game = &pv
	}
	return resp
}

func (s *Server) joinURL(c *gin.Context, code string) string {
	base := strings.TrimRight(s.conf.HTTP.PublicBaseURL, "/")
	if base == "" {
		base = "http://" + c.Request.Host
	}
	return fmt.Sprintf("%s/join?room=%s", base, code)
}
