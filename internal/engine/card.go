package engine

import "fmt"

// CardKind tags the variant held by a Card.
type CardKind string

const (
	CardCity     CardKind = "city"
	CardEvent    CardKind = "event"
	CardEpidemic CardKind = "epidemic"
)

// EventKind identifies an event card.
type EventKind string

const (
	EventAirlift             EventKind = "airlift"
	EventGovernmentGrant     EventKind = "government_grant"
	EventOneQuietNight       EventKind = "one_quiet_night"
	EventForecast            EventKind = "forecast"
	EventResilientPopulation EventKind = "resilient_population"
)

var eventOrder = []EventKind{
	EventAirlift,
	EventGovernmentGrant,
	EventOneQuietNight,
	EventForecast,
	EventResilientPopulation,
}

var eventNames = map[EventKind]string{
	EventAirlift:             "Airlift",
	EventGovernmentGrant:     "Government Grant",
	EventOneQuietNight:       "One Quiet Night",
	EventForecast:            "Forecast",
	EventResilientPopulation: "Resilient Population",
}

// AllEvents returns the fixed event card set in canonical order.
func AllEvents() []EventKind {
	out := make([]EventKind, len(eventOrder))
	copy(out, eventOrder)
	return out
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return string(k)
}

// Card is a player-deck card. Exactly one of City or Event is set,
// matching Kind; epidemic markers carry neither.
type Card struct {
	Kind  CardKind  `json:"kind"`
	City  string    `json:"city,omitempty"`
	Event EventKind `json:"event,omitempty"`
}

func CityCard(id string) Card    { return Card{Kind: CardCity, City: id} }
func EventCard(k EventKind) Card { return Card{Kind: CardEvent, Event: k} }
func EpidemicCard() Card         { return Card{Kind: CardEpidemic} }

// ID names the card inside a hand: the city id or the event kind.
func (c Card) ID() string {
	switch c.Kind {
	case CardCity:
		return c.City
	case CardEvent:
		return string(c.Event)
	default:
		return string(c.Kind)
	}
}

func (c Card) String() string {
	switch c.Kind {
	case CardCity:
		return "city:" + c.City
	case CardEvent:
		return "event:" + string(c.Event)
	case CardEpidemic:
		return "epidemic"
	default:
		return fmt.Sprintf("card(%s)", c.Kind)
	}
}
