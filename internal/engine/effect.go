package engine

import "fmt"

// EventEffect implements one event card.
type EventEffect interface {
	Kind() EventKind
	// Apply validates the action payload and applies the effect to g.
	// The card has already left the player's hand; on error the whole
	// action is discarded.
	Apply(g *Game, playerID string, action Action) ([]Event, error)
}

// DecisionResolver is implemented by effects that leave a pending decision.
type DecisionResolver interface {
	EventEffect
	Resolve(g *Game, playerID string, action Action) ([]Event, error)
}

// EffectRegistry maps event kinds to their effects.
type EffectRegistry struct {
	effects map[EventKind]EventEffect
}

func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{effects: make(map[EventKind]EventEffect)}
}

func (r *EffectRegistry) Register(e EventEffect) {
	r.effects[e.Kind()] = e
}

func (r *EffectRegistry) Get(kind EventKind) (EventEffect, error) {
	e, ok := r.effects[kind]
	if !ok {
		return nil, fmt.Errorf("no effect registered for event %q", kind)
	}
	return e, nil
}

// Kinds returns the registered kinds in canonical card order.
func (r *EffectRegistry) Kinds() []EventKind {
	var out []EventKind
	for _, k := range eventOrder {
		if _, ok := r.effects[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
