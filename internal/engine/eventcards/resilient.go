package eventcards

import "pandemic/internal/engine"

// ResilientPopulation removes one card from the infection discard for the rest of the game.
type ResilientPopulation struct{}

func (ResilientPopulation) Kind() engine.EventKind { return engine.EventResilientPopulation }

func (ResilientPopulation) Apply(g *engine.Game, playerID string, action engine.Action) ([]engine.Event, error) {
	_, ok := g.State.InfectionDiscard.Remove(func(id string) bool { return id == action.City })
	if !ok {
		return nil, engine.ErrInvalidTarget.Withf("%q is not in the infection discard", action.City)
	}
	g.Logf(playerID, "Resilient Population: %s is removed from the game", g.CityName(action.City))
	return nil, nil
}
