package engine

// GamePhase represents the current phase of the turn state machine.
type GamePhase int

const (
	PhaseActions    GamePhase = iota // current player spending actions, may draw
	PhaseTurnEnding                  // infection done, waiting for the hand limit to clear
	PhaseGameOver                    // game finished, state frozen
)

var phaseNames = map[GamePhase]string{
	PhaseActions:    "Actions",
	PhaseTurnEnding: "TurnEnding",
	PhaseGameOver:   "GameOver",
}

func (p GamePhase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}

// Result is the final verdict of a finished game.
type Result string

const (
	ResultNone Result = ""
	ResultWin  Result = "win"
	ResultLose Result = "lose"
)
