package protocol

import (
	"pandemic/internal/engine"
	"pandemic/internal/lobby"
)

// Message types: Server → Client
const (
	MsgLobbyUpdate = "lobby_update"
	MsgGameState   = "game_state"
	MsgPlayerState = "player_state"
	MsgEvent       = "event"
	MsgError       = "error"
	MsgWelcome     = "welcome"
)

// Message types: Client → Server
const (
	MsgJoin      = "join"
	MsgLeave     = "leave"
	MsgReady     = "ready"
	MsgSettings  = "settings"
	MsgStartGame = "start_game"
	MsgRestart   = "restart"
	// In-game actions use the same names as engine.ActionType
)

// Error codes that do not come from the engine.
const (
	CodeBadMessage  = "bad_message"
	CodeLobby       = "lobby"
	CodeConflict    = "conflict"
	CodeUnavailable = "unavailable"
	CodeRateLimited = "rate_limited"
	CodeTVReadOnly  = "read_only"
)

// Welcome tells a freshly connected client who it is.
type Welcome struct {
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
	IsHost        bool   `json:"is_host"`
	TV            bool   `json:"tv"`
}

// LobbyUpdate is sent to all clients when lobby state changes.
type LobbyUpdate struct {
	RoomID   string          `json:"room_id"`
	HostID   string          `json:"host_id"`
	Status   lobby.Status    `json:"status"`
	Settings engine.Settings `json:"settings"`
	Players  []LobbyPlayer   `json:"players"`
	CanStart bool            `json:"can_start"`
}

type LobbyPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Ready  bool   `json:"ready"`
}

// NewLobbyUpdate projects a lobby into its wire form.
func NewLobbyUpdate(l *lobby.Lobby) LobbyUpdate {
	u := LobbyUpdate{
		RoomID:   l.Code,
		HostID:   l.HostID,
		Status:   l.Status,
		Settings: l.Settings,
		Players:  make([]LobbyPlayer, len(l.Players)),
		CanStart: l.CanStart() == nil,
	}
	for i, p := range l.Players {
		u.Players[i] = LobbyPlayer{ID: p.ID, Name: p.Name, Avatar: p.Avatar, Ready: p.Ready}
	}
	return u
}

// JoinMsg is sent by a player to take a seat.
type JoinMsg struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ReadyMsg is sent by a player to toggle ready state.
type ReadyMsg struct {
	Ready bool `json:"ready"`
}

// SettingsMsg is sent by the host to change room settings before start.
type SettingsMsg struct {
	Difficulty       engine.Difficulty `json:"difficulty"`
	TurnTimerSeconds int               `json:"turn_timer_seconds"`
	MaxPlayers       int               `json:"max_players"`
}

func (m SettingsMsg) Settings() engine.Settings {
	return engine.Settings{
		Difficulty:       m.Difficulty,
		TurnTimerSeconds: m.TurnTimerSeconds,
		MaxPlayers:       m.MaxPlayers,
	}
}

// EventMsg carries the engine events of one accepted action.
type EventMsg struct {
	Version uint64         `json:"version"`
	Message string         `json:"message,omitempty"`
	Events  []engine.Event `json:"events"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
