package eventcards

import "pandemic/internal/engine"

// OneQuietNight skips the next infection step.
type OneQuietNight struct{}

func (OneQuietNight) Kind() engine.EventKind { return engine.EventOneQuietNight }

func (OneQuietNight) Apply(g *engine.Game, playerID string, action engine.Action) ([]engine.Event, error) {
	g.State.SkipNextInfection = true
	g.Logf(playerID, "One Quiet Night: the next infection step is skipped")
	return nil, nil
}
