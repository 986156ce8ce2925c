package engine

// CityState is the mutable board state of one city.
type CityState struct {
	Cubes   [NumColors]int `json:"cubes"`
	Station bool           `json:"station"`
}

// Total returns the number of cubes of every color in the city.
func (c CityState) Total() int {
	n := 0
	for _, v := range c.Cubes {
		n += v
	}
	return n
}

// DecisionKind identifies a pending out-of-turn choice.
type DecisionKind string

const DecisionForecastOrder DecisionKind = "forecast_order"

// Decision blocks every action except the one resolving it.
type Decision struct {
	Kind     DecisionKind `json:"kind"`
	Event    EventKind    `json:"event"`
	PlayerID string       `json:"player_id"`
	Cards    []string     `json:"cards"`
}

// LogEntry is one line of the append-only game log.
type LogEntry struct {
	Seq     int    `json:"seq"`
	Round   int    `json:"round"`
	Player  string `json:"player,omitempty"`
	Message string `json:"message"`
}

// GameState is the versioned aggregate of one game. It is plain data;
// Rules.Apply never mutates the value it is given.
type GameState struct {
	Version  uint64   `json:"version"`
	Seed     uint64   `json:"seed"`
	Shuffles uint64   `json:"shuffles"`
	Settings Settings `json:"settings"`

	Phase              GamePhase `json:"phase"`
	Players            []*Player `json:"players"`
	TurnOrder          []string  `json:"turn_order"`
	CurrentPlayerIndex int       `json:"current_player_index"`
	Round              int       `json:"round"`
	Drawn              bool      `json:"drawn"`    // current player drew this turn
	Infected           bool      `json:"infected"` // infection step of this turn is done

	Cities               map[string]CityState `json:"cities"`
	Cures                [NumColors]bool      `json:"cures"`
	Eradicated           [NumColors]bool      `json:"eradicated"`
	CubesLeft            [NumColors]int       `json:"cubes_left"`
	OutbreakCount        int                  `json:"outbreak_count"`
	InfectionRateIndex   int                  `json:"infection_rate_index"`
	ResearchStationsLeft int                  `json:"research_stations_left"`
	SkipNextInfection    bool                 `json:"skip_next_infection"`

	PlayerDeck       Deck[Card]   `json:"player_deck"`
	PlayerDiscard    Deck[Card]   `json:"player_discard"`
	InfectionDeck    Deck[string] `json:"infection_deck"`
	InfectionDiscard Deck[string] `json:"infection_discard"`

	Pending    *Decision  `json:"pending,omitempty"`
	Log        []LogEntry `json:"log"`
	Result     Result     `json:"result,omitempty"`
	LossReason string     `json:"loss_reason,omitempty"`
}

// Clone returns a deep copy of s.
func (s *GameState) Clone() *GameState {
	cp := *s
	cp.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp.Players[i] = p.clone()
	}
	cp.TurnOrder = append([]string(nil), s.TurnOrder...)
	cp.Cities = make(map[string]CityState, len(s.Cities))
	for id, c := range s.Cities {
		cp.Cities[id] = c
	}
	cp.PlayerDeck = s.PlayerDeck.Clone()
	cp.PlayerDiscard = s.PlayerDiscard.Clone()
	cp.InfectionDeck = s.InfectionDeck.Clone()
	cp.InfectionDiscard = s.InfectionDiscard.Clone()
	if s.Pending != nil {
		d := *s.Pending
		d.Cards = append([]string(nil), s.Pending.Cards...)
		cp.Pending = &d
	}
	cp.Log = append([]LogEntry(nil), s.Log...)
	return &cp
}

// GetPlayer finds a player by ID.
func (s *GameState) GetPlayer(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayerID returns the id of the player whose turn it is.
func (s *GameState) CurrentPlayerID() string {
	if len(s.TurnOrder) == 0 {
		return ""
	}
	return s.TurnOrder[s.CurrentPlayerIndex%len(s.TurnOrder)]
}

// CurrentPlayer returns the player whose turn it is.
func (s *GameState) CurrentPlayer() *Player {
	return s.GetPlayer(s.CurrentPlayerID())
}

// InfectionRate returns the number of cities infected per turn.
func (s *GameState) InfectionRate() int {
	i := s.InfectionRateIndex
	if i >= len(InfectionRateTrack) {
		i = len(InfectionRateTrack) - 1
	}
	return InfectionRateTrack[i]
}

// Cured reports whether a cure for c has been discovered.
func (s *GameState) Cured(c Color) bool { return s.Cures[c] }

// CuredCount returns the number of discovered cures.
func (s *GameState) CuredCount() int {
	n := 0
	for _, c := range s.Cures {
		if c {
			n++
		}
	}
	return n
}

// IsOver reports whether the game has finished.
func (s *GameState) IsOver() bool {
	return s.Phase == PhaseGameOver
}

// CubesOnBoard counts placed cubes of color c.
func (s *GameState) CubesOnBoard(c Color) int {
	n := 0
	for _, cs := range s.Cities {
		n += cs.Cubes[c]
	}
	return n
}

// StationCount counts cities with a research station.
func (s *GameState) StationCount() int {
	n := 0
	for _, cs := range s.Cities {
		if cs.Station {
			n++
		}
	}
	return n
}

// RecentLog returns at most n of the latest log entries.
func (s *GameState) RecentLog(n int) []LogEntry {
	if len(s.Log) <= n {
		return s.Log
	}
	return s.Log[len(s.Log)-n:]
}
