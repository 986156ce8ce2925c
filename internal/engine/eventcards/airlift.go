package eventcards

import "pandemic/internal/engine"

// Airlift moves any pawn (the player's own when Target is empty) to any city.
type Airlift struct{}

func (Airlift) Kind() engine.EventKind { return engine.EventAirlift }

func (Airlift) Apply(g *engine.Game, playerID string, action engine.Action) ([]engine.Event, error) {
	target := action.Target
	if target == "" {
		target = playerID
	}
	p := g.State.GetPlayer(target)
	if p == nil {
		return nil, engine.ErrInvalidTarget.Withf("unknown player %q", target)
	}
	if !g.World.Has(action.Destination) {
		return nil, engine.ErrIllegalDestination.Withf("unknown city %q", action.Destination)
	}
	if action.Destination == p.Location {
		return nil, engine.ErrIllegalDestination.Withf("%s is already in %s", p.Name, g.CityName(p.Location))
	}
	g.MovePawn(p, action.Destination, "is airlifted")
	return nil, nil
}
