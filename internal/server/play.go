package server

import (
	"strings"

	"pandemic/internal/engine"
)

// play applies one client action. Around the engine it adds the two steps a
// client never sends explicitly: drawing before ending the turn, and ending
// the turn again once a discard brings the hand back within the limit. The
// returned Outcome has a nil State when nothing is to be committed.
func play(rules *engine.Rules, s *engine.GameState, playerID string, a engine.Action) (engine.Outcome, error) {
	var (
		cur      = s
		messages []string
		events   []engine.Event
	)
	run := func(a engine.Action) error {
		out, err := rules.Apply(cur, playerID, a)
		if out.State != nil {
			cur = out.State
			if out.Message != "" {
				messages = append(messages, out.Message)
			}
			events = append(events, out.Events...)
		}
		return err
	}
	result := func(err error) (engine.Outcome, error) {
		if cur == s {
			return engine.Outcome{}, err
		}
		return engine.Outcome{State: cur, Message: strings.Join(messages, "\n"), Events: events}, err
	}

	if needsDraw(s, playerID, a) {
		if err := run(engine.Action{Type: engine.ActionDrawCards}); err != nil || cur.IsOver() {
			return result(err)
		}
	}
	if err := run(a); err != nil {
		return result(err)
	}
	if handCleared(cur, playerID, a) {
		return result(run(engine.Action{Type: engine.ActionEndTurn}))
	}
	return result(nil)
}

func needsDraw(s *engine.GameState, playerID string, a engine.Action) bool {
	return a.Type == engine.ActionEndTurn &&
		s.Phase == engine.PhaseActions &&
		!s.Drawn &&
		s.Pending == nil &&
		s.CurrentPlayerID() == playerID
}

// handCleared reports whether the current player was waiting on the hand
// limit and a discard or event just resolved it.
func handCleared(s *engine.GameState, playerID string, a engine.Action) bool {
	switch a.Type {
	case engine.ActionDiscard, engine.ActionPlayEvent, engine.ActionForecastOrder:
	default:
		return false
	}
	if s.Phase != engine.PhaseTurnEnding || s.Pending != nil || s.CurrentPlayerID() != playerID {
		return false
	}
	p := s.CurrentPlayer()
	return p != nil && !p.OverHandLimit()
}
