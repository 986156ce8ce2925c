package eventcards

import "pandemic/internal/engine"

// Forecast reveals the top infection cards and lets the player reorder them.
// Until the order is submitted every other action is rejected.
type Forecast struct{}

func (Forecast) Kind() engine.EventKind { return engine.EventForecast }

func (Forecast) Apply(g *engine.Game, playerID string, action engine.Action) ([]engine.Event, error) {
	top := g.State.InfectionDeck.Peek(engine.ForecastDepth)
	if len(top) == 0 {
		g.Logf(playerID, "Forecast: the infection deck is empty")
		return nil, nil
	}
	g.State.Pending = &engine.Decision{
		Kind:     engine.DecisionForecastOrder,
		Event:    engine.EventForecast,
		PlayerID: playerID,
		Cards:    top,
	}
	g.Logf(playerID, "Forecast: rearranging the top %d infection cards", len(top))
	return []engine.Event{
		{Type: engine.EventDecisionPending, Player: playerID, Data: map[string]any{
			"kind": string(engine.DecisionForecastOrder), "count": len(top),
		}},
	}, nil
}

// Resolve puts the revealed cards back in the submitted order, Order[0] on top.
func (Forecast) Resolve(g *engine.Game, playerID string, action engine.Action) ([]engine.Event, error) {
	d := g.State.Pending
	if !samePermutation(d.Cards, action.Order) {
		return nil, engine.ErrInvalidPayload.Withf("order must rearrange exactly the %d revealed cards", len(d.Cards))
	}
	g.State.InfectionDeck.Draw(len(d.Cards))
	g.State.InfectionDeck.PutOnTop(action.Order)
	g.State.Pending = nil
	g.Logf(playerID, "Forecast: infection deck rearranged")
	return nil, nil
}

func samePermutation(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	counts := make(map[string]int, len(want))
	for _, id := range want {
		counts[id]++
	}
	for _, id := range got {
		if counts[id] == 0 {
			return false
		}
		counts[id]--
	}
	return true
}
