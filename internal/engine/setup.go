package engine

import (
	"errors"
	"fmt"
)

// InitializeGame builds the opening state for roster under settings. The
// same roster, settings and seed always produce the same game.
func (r *Rules) InitializeGame(roster []Participant, settings Settings, seed uint64) (*GameState, error) {
	if len(roster) == 0 {
		return nil, errors.New("roster is empty")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(roster))
	for _, p := range roster {
		if p.ID == "" {
			return nil, errors.New("participant without id")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate participant %s", p.ID)
		}
		seen[p.ID] = true
	}
	if !r.world.Has(StartCity) {
		return nil, fmt.Errorf("world has no start city %q", StartCity)
	}

	s := &GameState{
		Seed:                 seed,
		Settings:             settings,
		Phase:                PhaseActions,
		Round:                1,
		Cities:               make(map[string]CityState, r.world.Len()),
		ResearchStationsLeft: TotalStations,
	}
	for i := range s.CubesLeft {
		s.CubesLeft[i] = CubesPerColor
	}
	for _, id := range r.world.IDs() {
		s.Cities[id] = CityState{}
	}
	g := &Game{State: s, World: r.world, effects: r.effects}
	if err := g.PlaceStation(StartCity); err != nil {
		return nil, err
	}

	// Roles are shuffled once and dealt round-robin, wrapping past ten players.
	roles := AllRoles()
	shuffle(g, roles)
	for i, part := range roster {
		s.Players = append(s.Players, NewPlayer(part, roles[i%len(roles)], StartCity))
	}

	s.InfectionDeck = NewDeck(r.world.IDs(), g.Rand())
	for cubes := 3; cubes >= 1; cubes-- {
		for i := 0; i < 3; i++ {
			cards := s.InfectionDeck.Draw(1)
			city := cards[0]
			g.seedCubes(city, r.world.ColorOf(city), cubes)
			s.InfectionDiscard.Return(cards)
			g.Logf("", "%s starts with %d %s", g.cityName(city), cubes, plural(cubes, "cube", "cubes"))
		}
	}

	var cards []Card
	for _, id := range r.world.IDs() {
		cards = append(cards, CityCard(id))
	}
	for _, k := range r.effects.Kinds() {
		cards = append(cards, EventCard(k))
	}
	s.PlayerDeck = NewDeck(cards, g.Rand())
	hand := InitialHandSize(len(roster))
	for _, p := range s.Players {
		p.Hand = s.PlayerDeck.Draw(hand)
	}
	s.PlayerDeck = g.insertEpidemics(s.PlayerDeck, settings.Difficulty.EpidemicCount())

	for _, p := range s.Players {
		s.TurnOrder = append(s.TurnOrder, p.ID)
	}
	shuffle(g, s.TurnOrder)

	first := s.CurrentPlayer()
	g.Logf(first.ID, "Game started on %s. %s goes first", settings.Difficulty, first.Name)
	return s, nil
}

// seedCubes places the opening cubes directly. Setup ignores quarantine and
// never triggers an outbreak.
func (g *Game) seedCubes(city string, c Color, n int) {
	s := g.State
	cs := s.Cities[city]
	cs.Cubes[c] += n
	s.Cities[city] = cs
	s.CubesLeft[c] -= n
}

// insertEpidemics splits deck into n near-equal piles, the last taking the
// remainder, shuffles one epidemic into each and stacks them back in order.
func (g *Game) insertEpidemics(deck Deck[Card], n int) Deck[Card] {
	if n <= 0 {
		return deck
	}
	size := len(deck) / n
	out := make(Deck[Card], 0, len(deck)+n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if i == n-1 {
			end = len(deck)
		}
		pile := make(Deck[Card], 0, end-start+1)
		pile = append(pile, deck[start:end]...)
		pile = append(pile, EpidemicCard())
		pile.Shuffle(g.Rand())
		out = append(out, pile...)
	}
	return out
}

func shuffle[T any](g *Game, items []T) {
	g.Rand().Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
