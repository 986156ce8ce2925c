package eventcards_test

import (
	"errors"
	"testing"

	"pandemic/internal/engine"
	"pandemic/internal/engine/eventcards"
)

func newTestGame(t *testing.T) (*engine.Rules, *engine.GameState) {
	t.Helper()
	r := engine.NewRules(engine.StandardWorld(), eventcards.Standard())
	roster := []engine.Participant{{ID: "A", Name: "Ada"}, {ID: "B", Name: "Bo"}}
	s, err := r.InitializeGame(roster, engine.DefaultSettings(), 11)
	if err != nil {
		t.Fatalf("InitializeGame: %v", err)
	}
	for _, p := range s.Players {
		p.Role = engine.RoleDispatcher
		p.Hand = nil
	}
	return r, s
}

// bystander returns the player who is not on turn; events may be played out of turn.
func bystander(s *engine.GameState) *engine.Player {
	for _, p := range s.Players {
		if p.ID != s.CurrentPlayerID() {
			return p
		}
	}
	return nil
}

func play(kind engine.EventKind) engine.Action {
	return engine.Action{Type: engine.ActionPlayEvent, Event: kind}
}

func TestStandardRegistry(t *testing.T) {
	r := eventcards.Standard()
	for _, k := range engine.AllEvents() {
		if _, err := r.Get(k); err != nil {
			t.Errorf("missing effect for %s: %v", k, err)
		}
	}
	if len(r.Kinds()) != len(engine.AllEvents()) {
		t.Errorf("expected %d kinds, got %d", len(engine.AllEvents()), len(r.Kinds()))
	}
}

func TestPlayEventRequiresCard(t *testing.T) {
	r, s := newTestGame(t)
	if _, err := r.Apply(s, s.CurrentPlayerID(), play(engine.EventOneQuietNight)); !errors.Is(err, engine.ErrMissingCard) {
		t.Errorf("expected ErrMissingCard, got %v", err)
	}
}

func TestAirlift(t *testing.T) {
	r, s := newTestGame(t)
	p := bystander(s)
	p.Hand = []engine.Card{engine.EventCard(engine.EventAirlift)}
	target := s.CurrentPlayerID()

	a := play(engine.EventAirlift)
	a.Target = target
	a.Destination = "sydney"
	out, err := r.Apply(s, p.ID, a)
	if err != nil {
		t.Fatalf("airlift: %v", err)
	}
	if out.State.GetPlayer(target).Location != "sydney" {
		t.Error("target should be airlifted to sydney")
	}
	if out.State.GetPlayer(p.ID).HasCard(string(engine.EventAirlift)) {
		t.Error("event card should leave the hand")
	}
	if out.State.CurrentPlayer().ActionsLeft != s.CurrentPlayer().ActionsLeft {
		t.Error("events should not spend actions")
	}

	a.Destination = "nowhere"
	if _, err := r.Apply(s, p.ID, a); !errors.Is(err, engine.ErrIllegalDestination) {
		t.Errorf("expected ErrIllegalDestination, got %v", err)
	}
}

func TestGovernmentGrant(t *testing.T) {
	r, s := newTestGame(t)
	p := s.CurrentPlayer()
	p.Hand = []engine.Card{engine.EventCard(engine.EventGovernmentGrant)}

	a := play(engine.EventGovernmentGrant)
	a.City = "tokyo"
	out, err := r.Apply(s, p.ID, a)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !out.State.Cities["tokyo"].Station {
		t.Error("expected a station in tokyo")
	}
	if out.State.ResearchStationsLeft != s.ResearchStationsLeft-1 {
		t.Error("grant should take a station from the supply")
	}

	s.ResearchStationsLeft = 0
	if _, err := r.Apply(s, p.ID, a); !errors.Is(err, engine.ErrNoStationsLeft) {
		t.Errorf("expected ErrNoStationsLeft, got %v", err)
	}
	if !p.HasCard(string(engine.EventGovernmentGrant)) {
		t.Error("a rejected event must leave the card in hand")
	}
}

func TestOneQuietNight(t *testing.T) {
	r, s := newTestGame(t)
	p := bystander(s)
	p.Hand = []engine.Card{engine.EventCard(engine.EventOneQuietNight)}

	out, err := r.Apply(s, p.ID, play(engine.EventOneQuietNight))
	if err != nil {
		t.Fatalf("quiet night: %v", err)
	}
	if !out.State.SkipNextInfection {
		t.Error("expected the next infection to be skipped")
	}
}

func TestResilientPopulation(t *testing.T) {
	r, s := newTestGame(t)
	p := s.CurrentPlayer()
	p.Hand = []engine.Card{engine.EventCard(engine.EventResilientPopulation)}
	city := s.InfectionDiscard[0]

	a := play(engine.EventResilientPopulation)
	a.City = city
	out, err := r.Apply(s, p.ID, a)
	if err != nil {
		t.Fatalf("resilient population: %v", err)
	}
	if out.State.InfectionDiscard.Len() != s.InfectionDiscard.Len()-1 {
		t.Error("one card should leave the infection discard")
	}
	for _, id := range out.State.InfectionDiscard {
		if id == city {
			t.Errorf("%s should be removed", city)
		}
	}

	a.City = s.InfectionDeck[0]
	if _, err := r.Apply(s, p.ID, a); !errors.Is(err, engine.ErrInvalidTarget) {
		t.Errorf("city not in discard: expected ErrInvalidTarget, got %v", err)
	}
}

func TestForecast(t *testing.T) {
	r, s := newTestGame(t)
	p := bystander(s)
	p.Hand = []engine.Card{engine.EventCard(engine.EventForecast)}
	top := s.InfectionDeck.Peek(engine.ForecastDepth)

	out, err := r.Apply(s, p.ID, play(engine.EventForecast))
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	s2 := out.State
	if s2.Pending == nil || s2.Pending.PlayerID != p.ID {
		t.Fatal("forecast should leave a pending decision for its player")
	}

	move := engine.Action{Type: engine.ActionMove, Destination: "chicago"}
	if _, err := r.Apply(s2, s2.CurrentPlayerID(), move); !errors.Is(err, engine.ErrPendingDecision) {
		t.Errorf("expected ErrPendingDecision, got %v", err)
	}

	reversed := make([]string, len(top))
	for i, id := range top {
		reversed[len(top)-1-i] = id
	}
	order := engine.Action{Type: engine.ActionForecastOrder, Order: reversed}
	if _, err := r.Apply(s2, s2.CurrentPlayerID(), order); !errors.Is(err, engine.ErrNotYourTurn) {
		t.Errorf("another player resolving: expected ErrNotYourTurn, got %v", err)
	}

	bad := engine.Action{Type: engine.ActionForecastOrder, Order: reversed[1:]}
	if _, err := r.Apply(s2, p.ID, bad); !errors.Is(err, engine.ErrInvalidPayload) {
		t.Errorf("short order: expected ErrInvalidPayload, got %v", err)
	}

	out, err = r.Apply(s2, p.ID, order)
	if err != nil {
		t.Fatalf("forecast order: %v", err)
	}
	s3 := out.State
	if s3.Pending != nil {
		t.Error("decision should be resolved")
	}
	for i, id := range reversed {
		if s3.InfectionDeck[i] != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, s3.InfectionDeck[i])
		}
	}
	if s3.InfectionDeck.Len() != s.InfectionDeck.Len() {
		t.Error("forecast should not change the deck size")
	}
}
