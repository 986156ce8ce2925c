package lobby

import (
	"errors"
	"strings"

	"pandemic/internal/engine"
)

const MinPlayers = 2

type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

var (
	ErrAlreadyStarted   = errors.New("game already started")
	ErrNotStarted       = errors.New("game has not started")
	ErrFull             = errors.New("lobby is full")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotReady         = errors.New("not every player is ready")
	ErrUnknownPlayer    = errors.New("player is not in this lobby")
	ErrInvalidName      = errors.New("name must not be empty")
)

// PlayerInfo holds lobby-level player information.
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Ready  bool   `json:"ready"`
}

// Lobby is the roster and settings of one room. It has no locking of its
// own: the room document it lives in is only modified through the store's
// compare-and-swap.
type Lobby struct {
	Code     string          `json:"code"`
	HostID   string          `json:"host_id"`
	Status   Status          `json:"status"`
	Settings engine.Settings `json:"settings"`
	Players  []*PlayerInfo   `json:"players"`
}

// New creates a lobby owned by hostID. The host is usually the board
// display and does not take a seat.
func New(code, hostID string, settings engine.Settings) *Lobby {
	if settings.MaxPlayers <= 0 {
		settings.MaxPlayers = engine.DefaultSettings().MaxPlayers
	}
	return &Lobby{
		Code:     code,
		HostID:   hostID,
		Status:   StatusLobby,
		Settings: settings,
	}
}

func (l *Lobby) find(id string) *PlayerInfo {
	for _, p := range l.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Has reports whether id holds a seat.
func (l *Lobby) Has(id string) bool {
	return l.find(id) != nil
}

// Join adds a player to the lobby. Rejoining with a known id updates the
// name and avatar, also after the game has started.
func (l *Lobby) Join(id, name, avatar string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if p := l.find(id); p != nil {
		p.Name = name
		if avatar != "" {
			p.Avatar = avatar
		}
		return nil
	}
	if l.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	if len(l.Players) >= l.Settings.MaxPlayers {
		return ErrFull
	}
	l.Players = append(l.Players, &PlayerInfo{ID: id, Name: name, Avatar: avatar})
	return nil
}

// Leave removes a player before the game starts. Seats of a running game are
// kept so the player can reconnect.
func (l *Lobby) Leave(id string) bool {
	if l.Status != StatusLobby {
		return false
	}
	for i, p := range l.Players {
		if p.ID == id {
			l.Players = append(l.Players[:i], l.Players[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Lobby) SetReady(id string, ready bool) error {
	if l.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	p := l.find(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	p.Ready = ready
	return nil
}

// UpdateSettings replaces the room settings. Host only, lobby only.
func (l *Lobby) UpdateSettings(by string, s engine.Settings) error {
	if by != l.HostID {
		return ErrNotHost
	}
	if l.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	if s.MaxPlayers <= 0 {
		s.MaxPlayers = l.Settings.MaxPlayers
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.MaxPlayers < len(l.Players) {
		return ErrFull
	}
	l.Settings = s
	return nil
}

// CanStart returns nil if enough players are seated and all are ready.
func (l *Lobby) CanStart() error {
	if l.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	if len(l.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	for _, p := range l.Players {
		if !p.Ready {
			return ErrNotReady
		}
	}
	return nil
}

// Start marks the lobby as playing. Any seated player or the host may start.
func (l *Lobby) Start(by string) error {
	if by != l.HostID && !l.Has(by) {
		return ErrNotHost
	}
	if err := l.CanStart(); err != nil {
		return err
	}
	l.Status = StatusPlaying
	return nil
}

// Finish marks the game as over.
func (l *Lobby) Finish() {
	if l.Status == StatusPlaying {
		l.Status = StatusFinished
	}
}

// Restart returns a started room to the lobby with every player unready.
func (l *Lobby) Restart(by string) error {
	if by != l.HostID {
		return ErrNotHost
	}
	if l.Status == StatusLobby {
		return ErrNotStarted
	}
	l.Status = StatusLobby
	for _, p := range l.Players {
		p.Ready = false
	}
	return nil
}

// Roster returns the seated players in join order.
func (l *Lobby) Roster() []engine.Participant {
	out := make([]engine.Participant, len(l.Players))
	for i, p := range l.Players {
		out[i] = engine.Participant{ID: p.ID, Name: p.Name, Avatar: p.Avatar}
	}
	return out
}

// Clone returns a deep copy.
func (l *Lobby) Clone() *Lobby {
	if l == nil {
		return nil
	}
	c := *l
	c.Players = make([]*PlayerInfo, len(l.Players))
	for i, p := range l.Players {
		cp := *p
		c.Players[i] = &cp
	}
	return &c
}
