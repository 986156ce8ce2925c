// Package eventcards implements the effects of the event cards in the player deck.
package eventcards

import "pandemic/internal/engine"

// Standard returns a registry holding every event card.
func Standard() *engine.EffectRegistry {
	r := engine.NewEffectRegistry()
	r.Register(Airlift{})
	r.Register(GovernmentGrant{})
	r.Register(OneQuietNight{})
	r.Register(Forecast{})
	r.Register(ResilientPopulation{})
	return r
}
