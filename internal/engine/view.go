package engine

// PublicViewData is the game state visible on the shared board screen.
type PublicViewData struct {
	Version          uint64             `json:"version"`
	Phase            string             `json:"phase"`
	Round            int                `json:"round"`
	Difficulty       Difficulty         `json:"difficulty"`
	TurnTimerSeconds int                `json:"turn_timer_seconds"`
	Players          []PublicPlayerData `json:"players"`
	CurrentTurn      string             `json:"current_turn,omitempty"`
	CurrentPlayerID  string             `json:"current_player_id,omitempty"`
	Cities           []CityView         `json:"cities"`
	Diseases         []DiseaseView      `json:"diseases"`
	OutbreakCount    int                `json:"outbreak_count"`
	OutbreakLimit    int                `json:"outbreak_limit"`
	InfectionRate    int                `json:"infection_rate"`
	StationsLeft     int                `json:"stations_left"`
	PlayerDeckSize   int                `json:"player_deck_size"`
	InfectionDeck    int                `json:"infection_deck_size"`
	InfectionDiscard []string           `json:"infection_discard"`
	QuietNight       bool               `json:"quiet_night,omitempty"`
	Pending          *PendingView       `json:"pending,omitempty"`
	Log              []LogEntry         `json:"log"`
	Result           Result             `json:"result,omitempty"`
	LossReason       string             `json:"loss_reason,omitempty"`
}

type PublicPlayerData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	Role        Role   `json:"role"`
	Location    string `json:"location"`
	HandSize    int    `json:"hand_size"`
	ActionsLeft int    `json:"actions_left"`
}

type CityView struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Color   Color          `json:"color"`
	Cubes   map[string]int `json:"cubes,omitempty"`
	Station bool           `json:"station,omitempty"`
}

type DiseaseView struct {
	Color      Color `json:"color"`
	Cured      bool  `json:"cured"`
	Eradicated bool  `json:"eradicated"`
	CubesLeft  int   `json:"cubes_left"`
}

type PendingView struct {
	Kind     DecisionKind `json:"kind"`
	PlayerID string       `json:"player_id"`
}

func (r *Rules) PublicView(s *GameState) PublicViewData {
	pv := PublicViewData{
		Version:          s.Version,
		Phase:            s.Phase.String(),
		Round:            s.Round,
		Difficulty:       s.Settings.Difficulty,
		TurnTimerSeconds: s.Settings.TurnTimerSeconds,
		OutbreakCount:    s.OutbreakCount,
		OutbreakLimit:    OutbreakLimit,
		InfectionRate:    s.InfectionRate(),
		StationsLeft:     s.ResearchStationsLeft,
		PlayerDeckSize:   s.PlayerDeck.Len(),
		InfectionDeck:    s.InfectionDeck.Len(),
		InfectionDiscard: append([]string{}, s.InfectionDiscard...),
		QuietNight:       s.SkipNextInfection,
		Log:              append([]LogEntry{}, s.RecentLog(LogViewSize)...),
		Result:           s.Result,
		LossReason:       s.LossReason,
	}

	if p := s.CurrentPlayer(); p != nil && !s.IsOver() {
		pv.CurrentTurn = p.Name
		pv.CurrentPlayerID = p.ID
	}
	if d := s.Pending; d != nil {
		pv.Pending = &PendingView{Kind: d.Kind, PlayerID: d.PlayerID}
	}

	for _, c := range AllColors() {
		pv.Diseases = append(pv.Diseases, DiseaseView{
			Color:      c,
			Cured:      s.Cures[c],
			Eradicated: s.Eradicated[c],
			CubesLeft:  s.CubesLeft[c],
		})
	}

	for _, id := range r.world.IDs() {
		city, _ := r.world.City(id)
		cs := s.Cities[id]
		cv := CityView{ID: id, Name: city.Name, Color: city.Color, Station: cs.Station}
		for _, c := range AllColors() {
			if n := cs.Cubes[c]; n > 0 {
				if cv.Cubes == nil {
					cv.Cubes = make(map[string]int)
				}
				cv.Cubes[c.String()] = n
			}
		}
		pv.Cities = append(pv.Cities, cv)
	}

	for _, id := range s.TurnOrder {
		p := s.GetPlayer(id)
		if p == nil {
			continue
		}
		pv.Players = append(pv.Players, PublicPlayerData{
			ID:          p.ID,
			Name:        p.Name,
			Avatar:      p.Avatar,
			Role:        p.Capabilities(),
			Location:    p.Location,
			HandSize:    len(p.Hand),
			ActionsLeft: p.ActionsLeft,
		})
	}

	return pv
}

// PlayerViewData is the game state visible to a specific player.
type PlayerViewData struct {
	PublicViewData
	Hand          []Card   `json:"hand"`
	IsMyTurn      bool     `json:"is_my_turn"`
	CanAct        bool     `json:"can_act"`
	CanDraw       bool     `json:"can_draw"`
	MustDiscard   bool     `json:"must_discard"`
	CureThreshold int      `json:"cure_threshold"`
	Neighbors     []string `json:"neighbors,omitempty"`
	Forecast      []string `json:"forecast,omitempty"`
}

func (r *Rules) ViewFor(s *GameState, playerID string) PlayerViewData {
	pv := PlayerViewData{
		PublicViewData: r.PublicView(s),
	}

	p := s.GetPlayer(playerID)
	if p == nil {
		return pv
	}

	pv.Hand = append([]Card{}, p.Hand...)
	pv.CureThreshold = p.Capabilities().CureThreshold
	pv.Neighbors = append([]string{}, r.world.Neighbors(p.Location)...)
	pv.MustDiscard = p.OverHandLimit()

	if s.IsOver() {
		return pv
	}
	pv.IsMyTurn = s.CurrentPlayerID() == playerID
	if pv.IsMyTurn && s.Pending == nil && s.Phase == PhaseActions {
		pv.CanAct = !s.Drawn && p.ActionsLeft > 0
		pv.CanDraw = !s.Drawn
	}
	if d := s.Pending; d != nil && d.PlayerID == playerID {
		pv.Forecast = append([]string{}, d.Cards...)
	}

	return pv
}
