package eventcards

import "pandemic/internal/engine"

// GovernmentGrant builds a research station in any city, taken from the supply.
type GovernmentGrant struct{}

func (GovernmentGrant) Kind() engine.EventKind { return engine.EventGovernmentGrant }

func (GovernmentGrant) Apply(g *engine.Game, playerID string, action engine.Action) ([]engine.Event, error) {
	if err := g.PlaceStation(action.City); err != nil {
		return nil, err
	}
	g.Logf(playerID, "Government Grant: research station built in %s", g.CityName(action.City))
	return []engine.Event{
		{Type: engine.EventStationBuilt, Player: playerID, Data: map[string]any{"city": action.City}},
	}, nil
}
