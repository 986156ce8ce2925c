package engine

import (
	"errors"
	"fmt"
)

// Kind groups rejections by how a caller must react to them.
type Kind uint8

const (
	// KindValidation leaves the state untouched; the caller reports it to the actor.
	KindValidation Kind = iota
	// KindHandLimit comes with a partially applied state that must be persisted.
	KindHandLimit
	// KindStructural means the stored state is damaged.
	KindStructural
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindHandLimit:
		return "hand_limit"
	case KindStructural:
		return "structural"
	}
	return "unknown"
}

// Code is the stable machine-readable reason of a rejection.
type Code string

// Rejection is the error returned by Rules.Apply. errors.Is matches by code,
// so a Rejection carrying extra detail still matches its sentinel.
type Rejection struct {
	code Code
	kind Kind
	msg  string
}

func newRejection(kind Kind, code Code, msg string) *Rejection {
	return &Rejection{code: code, kind: kind, msg: msg}
}

func (r *Rejection) Error() string {
	if r == nil {
		return "<nil>"
	}
	return r.msg
}

func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	if !ok || r == nil || t == nil {
		return false
	}
	return r.code == t.code
}

func (r *Rejection) Code() Code { return r.code }
func (r *Rejection) Kind() Kind { return r.kind }

// Withf returns a copy with a more specific message. The sentinel is not modified.
func (r *Rejection) Withf(format string, args ...any) *Rejection {
	cp := *r
	cp.msg = fmt.Sprintf(format, args...)
	return &cp
}

var (
	ErrNotYourTurn        = newRejection(KindValidation, "not_your_turn", "not your turn")
	ErrNoActionsLeft      = newRejection(KindValidation, "no_actions_left", "no actions left this turn")
	ErrIllegalDestination = newRejection(KindValidation, "illegal_destination", "illegal destination")
	ErrMissingCard        = newRejection(KindValidation, "missing_card", "required card not in hand")
	ErrCureAlreadyFound   = newRejection(KindValidation, "cure_already_found", "cure already discovered")
	ErrReceiverHandFull   = newRejection(KindValidation, "receiver_hand_full", "receiver hand is full")
	ErrGameOver           = newRejection(KindValidation, "game_over", "game is over")
	ErrPendingDecision    = newRejection(KindValidation, "pending_decision", "a decision is pending")
	ErrInvalidPayload     = newRejection(KindValidation, "invalid_payload", "invalid action payload")
	ErrInvalidAction      = newRejection(KindValidation, "invalid_action", "invalid action")
	ErrWrongPhase         = newRejection(KindValidation, "wrong_phase", "wrong phase for this action")
	ErrNoStationsLeft     = newRejection(KindValidation, "no_stations_left", "no research stations left")
	ErrNoStation          = newRejection(KindValidation, "no_station", "no research station here")
	ErrStationExists      = newRejection(KindValidation, "station_exists", "research station already built")
	ErrNothingToTreat     = newRejection(KindValidation, "nothing_to_treat", "no cubes of that color here")
	ErrInvalidTarget      = newRejection(KindValidation, "invalid_target", "invalid target")
	ErrAlreadyDrawn       = newRejection(KindValidation, "already_drawn", "cards already drawn this turn")
	ErrHandLimitExceeded  = newRejection(KindHandLimit, "hand_limit_exceeded", "hand limit exceeded")
	ErrPlayerNotFound     = newRejection(KindStructural, "player_not_found", "player not found")
	ErrStructural         = newRejection(KindStructural, "structural", "game state is inconsistent")
)

// KindOf classifies any error returned by the engine. Errors that are not
// rejections are treated as structural.
func KindOf(err error) Kind {
	var r *Rejection
	if errors.As(err, &r) {
		return r.kind
	}
	return KindStructural
}
