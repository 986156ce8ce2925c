package engine

// NewVisited returns an empty outbreak chain for one resolution pass.
func NewVisited() map[string]bool {
	return make(map[string]bool)
}

// AddCube places one cube of color c in city, resolving outbreaks. visited
// holds the cities that already broke out during the current pass; each of
// them breaks out at most once.
func (g *Game) AddCube(city string, c Color, visited map[string]bool) {
	s := g.State
	if s.IsOver() || s.Eradicated[c] {
		return
	}
	if g.quarantined(city) {
		return
	}
	cs := s.Cities[city]
	if cs.Cubes[c] >= MaxCubesPerCity {
		g.outbreak(city, c, visited)
		return
	}
	if s.CubesLeft[c] <= 0 {
		g.lose("the " + c.String() + " cube supply ran out")
		return
	}
	cs.Cubes[c]++
	s.Cities[city] = cs
	s.CubesLeft[c]--
}

func (g *Game) outbreak(city string, c Color, visited map[string]bool) {
	if visited[city] {
		return
	}
	visited[city] = true
	s := g.State
	s.OutbreakCount++
	g.Logf("", "Outbreak in %s (%d/%d)", g.cityName(city), s.OutbreakCount, OutbreakLimit)
	g.emit(Event{Type: EventOutbreak, Data: map[string]any{
		"city": city, "color": c.String(), "count": s.OutbreakCount,
	}})
	if s.OutbreakCount >= OutbreakLimit {
		g.lose("too many outbreaks")
		return
	}
	for _, n := range g.World.Neighbors(city) {
		g.AddCube(n, c, visited)
		if s.IsOver() {
			return
		}
	}
}

// quarantined reports whether a quarantine role stands in or next to city.
func (g *Game) quarantined(city string) bool {
	for _, p := range g.State.Players {
		if !p.Capabilities().Quarantine {
			continue
		}
		if p.Location == city || g.World.Adjacent(p.Location, city) {
			return true
		}
	}
	return false
}

// infectCity draws the top infection card and adds one cube to that city.
func (g *Game) infectCity() {
	s := g.State
	cards := s.InfectionDeck.Draw(1)
	if len(cards) == 0 {
		return
	}
	city := cards[0]
	color := g.World.ColorOf(city)
	g.AddCube(city, color, NewVisited())
	s.InfectionDiscard.Return(cards)
	g.Logf("", "%s is infected", g.cityName(city))
	g.emit(Event{Type: EventInfected, Data: map[string]any{"city": city, "color": color.String()}})
}

// infectionStep runs the end-of-turn infection unless a quiet night skips it.
func (g *Game) infectionStep() {
	s := g.State
	if s.SkipNextInfection {
		s.SkipNextInfection = false
		g.Logf("", "A quiet night: no infections")
		return
	}
	n := s.InfectionRate()
	for i := 0; i < n && !s.IsOver(); i++ {
		g.infectCity()
	}
}

// resolveEpidemic raises the infection rate, infects the bottom card heavily
// and stacks the reshuffled discard on top of the infection deck.
func (g *Game) resolveEpidemic() {
	s := g.State
	if s.InfectionRateIndex < len(InfectionRateTrack)-1 {
		s.InfectionRateIndex++
	}
	city, ok := s.InfectionDeck.DrawBottom()
	if ok {
		color := g.World.ColorOf(city)
		visited := NewVisited()
		for i := 0; i < EpidemicCubes && !s.IsOver(); i++ {
			g.AddCube(city, color, visited)
		}
		s.InfectionDiscard.Return([]string{city})
		g.Logf("", "Epidemic in %s", g.cityName(city))
	} else {
		g.Logf("", "Epidemic: infection rate rises")
	}
	g.emit(Event{Type: EventEpidemic, Data: map[string]any{
		"city": city, "infection_rate": s.InfectionRate(),
	}})
	if s.IsOver() {
		return
	}
	pile := s.InfectionDiscard
	pile.Shuffle(g.Rand())
	s.InfectionDeck.PutOnTop(pile)
	s.InfectionDiscard = nil
}
