package engine

import "fmt"

// Difficulty selects how many epidemic markers are shuffled into the player deck.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var epidemicCounts = map[Difficulty]int{
	DifficultyEasy:   4,
	DifficultyMedium: 5,
	DifficultyHard:   6,
}

// EpidemicCount returns the number of epidemic markers for d.
func (d Difficulty) EpidemicCount() int {
	return epidemicCounts[d]
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	_, ok := epidemicCounts[d]
	return ok
}

// Settings holds the room configuration a game is created from.
type Settings struct {
	Difficulty       Difficulty `json:"difficulty"`
	TurnTimerSeconds int        `json:"turn_timer_seconds"` // 0 = untimed, display only
	MaxPlayers       int        `json:"max_players"`        // enforced by the lobby, not the engine
}

func DefaultSettings() Settings {
	return Settings{
		Difficulty:       DifficultyEasy,
		TurnTimerSeconds: 60,
		MaxPlayers:       10,
	}
}

// Validate checks the fields the engine depends on.
func (s Settings) Validate() error {
	if !s.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", s.Difficulty)
	}
	if s.TurnTimerSeconds < 0 {
		return fmt.Errorf("turn timer must not be negative")
	}
	return nil
}

// Game-wide constants.
const (
	HandLimit            = 7
	CubesPerColor        = 24
	MaxCubesPerCity      = 3
	OutbreakLimit        = 8
	TotalStations        = 6
	EpidemicCubes        = 3
	CardsPerDraw         = 2
	ForecastDepth        = 6
	LogViewSize          = 50
	DefaultActionBudget  = 4
	DefaultCureThreshold = 5
)

// InfectionRateTrack maps infectionRateIndex to cities infected per turn.
var InfectionRateTrack = []int{2, 2, 2, 3, 3, 4, 4}

// InitialHandSize is the number of cards dealt per player for a roster of n.
func InitialHandSize(n int) int {
	switch {
	case n <= 2:
		return 4
	case n == 3:
		return 3
	default:
		return 2
	}
}
