package server

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"pandemic/internal/engine"
	"pandemic/internal/lobby"
	"pandemic/internal/protocol"
	"pandemic/internal/store"
)

// requestError is a failure reported to the client with a fixed code.
type requestError struct {
	code string
	err  error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func reject(code string, err error) error {
	return &requestError{code: code, err: err}
}

var (
	errNotStarted  = errors.New("game not started")
	errReadOnly    = errors.New("board displays cannot send that")
	errRateLimited = errors.New("too many messages")
	errMalformed   = errors.New("malformed message")
)

func (h *Hub) handleMessage(ctx context.Context, msg IncomingMessage) {
	c := msg.Client
	if msg.Err != nil {
		h.sendError(c, msg.Err)
		return
	}
	if c.Type == ClientTV {
		switch msg.Envelope.Type {
		case protocol.MsgSettings, protocol.MsgStartGame, protocol.MsgRestart:
		default:
			h.sendError(c, reject(protocol.CodeTVReadOnly, errReadOnly))
			return
		}
	}

	var err error
	switch msg.Envelope.Type {
	case protocol.MsgJoin:
		err = h.handleJoin(ctx, msg)
	case protocol.MsgLeave:
		err = h.handleLeave(ctx, msg)
	case protocol.MsgReady:
		err = h.handleReady(ctx, msg)
	case protocol.MsgSettings:
		err = h.handleSettings(ctx, msg)
	case protocol.MsgStartGame:
		err = h.handleStartGame(ctx, msg)
	case protocol.MsgRestart:
		err = h.handleRestart(ctx, msg)
	default:
		err = h.handleGameAction(ctx, msg)
	}
	if err != nil {
		h.sendError(c, err)
	}
}

func (h *Hub) lobbyOp(ctx context.Context, fn func(l *lobby.Lobby) error) error {
	_, err := h.mutate(ctx, func(d *store.Document) error {
		if err := fn(d.Lobby); err != nil {
			return reject(protocol.CodeLobby, err)
		}
		return nil
	})
	return err
}

func (h *Hub) handleJoin(ctx context.Context, msg IncomingMessage) error {
	var join protocol.JoinMsg
	if err := msg.Envelope.Decode(&join); err != nil {
		return reject(protocol.CodeBadMessage, errors.New("invalid join message"))
	}
	pid := msg.Client.ParticipantID
	return h.lobbyOp(ctx, func(l *lobby.Lobby) error {
		return l.Join(pid, join.Name, join.Avatar)
	})
}

func (h *Hub) handleLeave(ctx context.Context, msg IncomingMessage) error {
	pid := msg.Client.ParticipantID
	return h.lobbyOp(ctx, func(l *lobby.Lobby) error {
		if !l.Leave(pid) {
			return lobby.ErrUnknownPlayer
		}
		return nil
	})
}

func (h *Hub) handleReady(ctx context.Context, msg IncomingMessage) error {
	ready := protocol.ReadyMsg{Ready: true}
	if err := msg.Envelope.Decode(&ready); err != nil {
		return reject(protocol.CodeBadMessage, errors.New("invalid ready message"))
	}
	pid := msg.Client.ParticipantID
	return h.lobbyOp(ctx, func(l *lobby.Lobby) error {
		return l.SetReady(pid, ready.Ready)
	})
}

func (h *Hub) handleSettings(ctx context.Context, msg IncomingMessage) error {
	var sm protocol.SettingsMsg
	if err := msg.Envelope.Decode(&sm); err != nil {
		return reject(protocol.CodeBadMessage, errors.New("invalid settings message"))
	}
	pid := msg.Client.ParticipantID
	return h.lobbyOp(ctx, func(l *lobby.Lobby) error {
		return l.UpdateSettings(pid, sm.Settings())
	})
}

func (h *Hub) handleStartGame(ctx context.Context, msg IncomingMessage) error {
	pid := msg.Client.ParticipantID
	saved, err := h.mutate(ctx, func(d *store.Document) error {
		if err := d.Lobby.Start(pid); err != nil {
			return reject(protocol.CodeLobby, err)
		}
		gs, err := h.srv.rules.InitializeGame(d.Lobby.Roster(), d.Lobby.Settings, newSeed())
		if err != nil {
			return reject(protocol.CodeLobby, err)
		}
		d.Game = gs
		return nil
	})
	if err != nil {
		return err
	}
	h.log.Info("game started",
		zap.String("player", pid),
		zap.Int("players", len(saved.Game.Players)),
		zap.String("difficulty", string(saved.Game.Settings.Difficulty)),
		zap.Uint64("seed", saved.Game.Seed),
	)
	return nil
}

func (h *Hub) handleRestart(ctx context.Context, msg IncomingMessage) error {
	pid := msg.Client.ParticipantID
	_, err := h.mutate(ctx, func(d *store.Document) error {
		if err := d.Lobby.Restart(pid); err != nil {
			return reject(protocol.CodeLobby, err)
		}
		d.Game = nil
		return nil
	})
	if err == nil {
		h.log.Info("room returned to lobby", zap.String("player", pid))
	}
	return err
}

func (h *Hub) handleGameAction(ctx context.Context, msg IncomingMessage) error {
	action, err := parseAction(msg.Envelope)
	if err != nil {
		return reject(protocol.CodeBadMessage, errors.New("invalid action payload"))
	}
	pid := msg.Client.ParticipantID

	var (
		out      engine.Outcome
		rejected error
	)
	saved, err := h.mutate(ctx, func(d *store.Document) error {
		out, rejected = engine.Outcome{}, nil
		if d.Game == nil {
			return reject(protocol.CodeLobby, errNotStarted)
		}
		next, err := play(h.srv.rules, d.Game, pid, action)
		if next.State == nil {
			return err
		}
		d.Game = next.State
		if d.Game.IsOver() {
			d.Lobby.Finish()
		}
		out, rejected = next, err
		return nil
	})
	if err != nil {
		return err
	}

	h.log.Info("action applied",
		zap.String("player", pid),
		zap.String("action", string(action.Type)),
		zap.Uint64("version", saved.Game.Version),
	)
	if len(out.Events) > 0 || out.Message != "" {
		h.broadcast(protocol.MsgEvent, protocol.EventMsg{
			Version: saved.Game.Version,
			Message: out.Message,
			Events:  out.Events,
		})
	}
	if saved.Game.IsOver() {
		h.log.Info("game over",
			zap.String("result", string(saved.Game.Result)),
			zap.String("reason", saved.Game.LossReason),
		)
	}
	return rejected
}

func parseAction(env protocol.Envelope) (engine.Action, error) {
	var a engine.Action
	if err := env.Decode(&a); err != nil {
		return engine.Action{}, err
	}
	a.Type = engine.ActionType(strings.TrimSpace(env.Type))
	return a, nil
}

func (h *Hub) sendError(c *Client, err error) {
	var (
		rej *engine.Rejection
		re  *requestError
	)
	switch {
	case errors.As(err, &rej):
		if rej.Kind() == engine.KindStructural {
			h.log.Error("structural fault", zap.String("player", c.ParticipantID), zap.Error(err))
		} else {
			h.log.Debug("action rejected", zap.String("player", c.ParticipantID), zap.String("code", string(rej.Code())))
		}
		c.SendEnvelope(protocol.NewError(string(rej.Code()), rej.Error()))
	case errors.As(err, &re):
		c.SendEnvelope(protocol.NewError(re.code, re.Error()))
	case errors.Is(err, store.ErrVersionConflict):
		h.log.Warn("gave up after version conflicts", zap.String("player", c.ParticipantID))
		c.SendEnvelope(protocol.NewError(protocol.CodeConflict, "room is busy, try again"))
	default:
		h.log.Error("room update failed", zap.String("player", c.ParticipantID), zap.Error(err))
		c.SendEnvelope(protocol.NewError(protocol.CodeUnavailable, "room is unavailable"))
	}
}
