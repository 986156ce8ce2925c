package engine

// ActionType identifies player actions sent to Rules.Apply.
type ActionType string

const (
	ActionMove           ActionType = "move"
	ActionDirectFlight   ActionType = "direct_flight"
	ActionCharterFlight  ActionType = "charter_flight"
	ActionShuttleFlight  ActionType = "shuttle_flight"
	ActionTreat          ActionType = "treat"
	ActionBuildStation   ActionType = "build_station"
	ActionShareKnowledge ActionType = "share_knowledge"
	ActionDiscoverCure   ActionType = "discover_cure"
	ActionPlayEvent      ActionType = "play_event"
	ActionDrawCards      ActionType = "draw_cards"
	ActionEndTurn        ActionType = "end_turn"
	ActionDiscard        ActionType = "discard"
	ActionForecastOrder  ActionType = "forecast_order"
)

// consumesAction reports whether t spends one of the turn's actions.
func (t ActionType) consumesAction() bool {
	switch t {
	case ActionMove, ActionDirectFlight, ActionCharterFlight, ActionShuttleFlight,
		ActionTreat, ActionBuildStation, ActionShareKnowledge, ActionDiscoverCure:
		return true
	}
	return false
}

// Action is a player's action input.
type Action struct {
	Type ActionType `json:"type"`
	// Params depend on Type:
	// move, direct_flight, charter_flight, shuttle_flight: Destination
	// treat: Color
	// share_knowledge: Card, Target (receiver)
	// discover_cure: Color, Cards
	// play_event: Event, plus Target/Destination/City as the event needs
	// discard: Card
	// forecast_order: Order (top first)
	Destination string    `json:"destination,omitempty"`
	Color       string    `json:"color,omitempty"`
	Card        string    `json:"card,omitempty"`
	Cards       []string  `json:"cards,omitempty"`
	Target      string    `json:"target,omitempty"`
	Event       EventKind `json:"event,omitempty"`
	City        string    `json:"city,omitempty"`
	Order       []string  `json:"order,omitempty"`
}

// EventType identifies events emitted by the engine.
type EventType string

const (
	EventMoved           EventType = "moved"
	EventTreated         EventType = "treated"
	EventStationBuilt    EventType = "station_built"
	EventKnowledgeShared EventType = "knowledge_shared"
	EventCureDiscovered  EventType = "cure_discovered"
	EventEradicated      EventType = "eradicated"
	EventCardsDrawn      EventType = "cards_drawn"
	EventEpidemic        EventType = "epidemic"
	EventInfected        EventType = "infected"
	EventOutbreak        EventType = "outbreak"
	EventEventPlayed     EventType = "event_played"
	EventDecisionPending EventType = "decision_pending"
	EventCardDiscarded   EventType = "card_discarded"
	EventHandLimit       EventType = "hand_limit"
	EventTurnEnd         EventType = "turn_end"
	EventGameOver        EventType = "game_over"
	EventPhaseChange     EventType = "phase_change"
)

// Event is emitted by the engine after state changes.
type Event struct {
	Type   EventType `json:"type"`
	Player string    `json:"player,omitempty"`
	Data   any       `json:"data,omitempty"`
}

// Outcome is the result of an applied action.
type Outcome struct {
	State   *GameState `json:"state"`
	Message string     `json:"message"`
	Events  []Event    `json:"events,omitempty"`
}
