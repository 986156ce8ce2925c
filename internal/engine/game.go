package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Rules binds the static world and event effects every game is played under.
// It holds no per-game state and is safe for concurrent use.
type Rules struct {
	world   *World
	effects *EffectRegistry
}

func NewRules(world *World, effects *EffectRegistry) *Rules {
	return &Rules{world: world, effects: effects}
}

func (r *Rules) World() *World { return r.world }

// Game is a working copy of a GameState bound to its rules. Handlers mutate
// it freely; Rules.Apply only publishes it when the whole action succeeds.
type Game struct {
	State *GameState
	World *World

	effects *EffectRegistry
	events  []Event
}

// Bind returns a Game operating on a deep copy of s.
func (r *Rules) Bind(s *GameState) *Game {
	return &Game{State: s.Clone(), World: r.world, effects: r.effects}
}

// Apply is the single entry point for player actions. The input state is
// never modified. On success the returned Outcome carries the next state.
// A rejection of KindHandLimit also carries the next state, which the caller
// must persist before asking the player to discard.
func (r *Rules) Apply(s *GameState, playerID string, action Action) (Outcome, error) {
	if s == nil {
		return Outcome{}, ErrStructural.Withf("no game state")
	}
	if err := r.checkStructure(s); err != nil {
		return Outcome{}, err
	}
	g := r.Bind(s)
	mark := len(g.State.Log)
	err := g.apply(playerID, action)
	if err != nil && !errors.Is(err, ErrHandLimitExceeded) {
		return Outcome{}, err
	}
	g.State.Version++
	out := Outcome{State: g.State, Message: g.messagesSince(mark), Events: g.events}
	if err != nil {
		out.Message = err.Error()
	}
	return out, err
}

func (r *Rules) checkStructure(s *GameState) error {
	if len(s.TurnOrder) == 0 || len(s.Players) == 0 {
		return ErrStructural.Withf("game has no players")
	}
	if len(s.TurnOrder) != len(s.Players) {
		return ErrStructural.Withf("turn order has %d entries for %d players", len(s.TurnOrder), len(s.Players))
	}
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.TurnOrder) {
		return ErrStructural.Withf("current player index %d out of range", s.CurrentPlayerIndex)
	}
	seen := make(map[string]bool, len(s.TurnOrder))
	for _, id := range s.TurnOrder {
		if seen[id] {
			return ErrStructural.Withf("turn order names %s twice", id)
		}
		seen[id] = true
		p := s.GetPlayer(id)
		if p == nil {
			return ErrPlayerNotFound.Withf("turn order names unknown player %s", id)
		}
		if _, ok := LookupRole(p.Role); !ok {
			return ErrStructural.Withf("player %s has unknown role %q", id, p.Role)
		}
		if !r.world.Has(p.Location) {
			return ErrStructural.Withf("player %s stands in unknown city %q", id, p.Location)
		}
		for _, c := range p.Hand {
			if !r.validHandCard(c) {
				return ErrStructural.Withf("player %s holds malformed card %s", id, c)
			}
		}
	}
	if len(s.Cities) != r.world.Len() {
		return ErrStructural.Withf("board has %d cities, world has %d", len(s.Cities), r.world.Len())
	}
	for _, id := range r.world.IDs() {
		if _, ok := s.Cities[id]; !ok {
			return ErrStructural.Withf("board is missing %s", id)
		}
	}
	return nil
}

// validHandCard reports whether c may sit in a hand: a known city or a
// registered event.
func (r *Rules) validHandCard(c Card) bool {
	switch c.Kind {
	case CardCity:
		return r.world.Has(c.City)
	case CardEvent:
		_, err := r.effects.Get(c.Event)
		return err == nil
	default:
		return false
	}
}

func (g *Game) apply(playerID string, action Action) error {
	p := g.State.GetPlayer(playerID)
	if p == nil {
		return ErrPlayerNotFound.Withf("player %s not found", playerID)
	}
	if g.State.IsOver() {
		return ErrGameOver
	}
	if g.State.Pending != nil && action.Type != ActionForecastOrder {
		return ErrPendingDecision.Withf("waiting for %s to resolve %s", g.playerName(g.State.Pending.PlayerID), g.State.Pending.Event)
	}
	if action.Type.consumesAction() {
		if err := g.requireAction(p); err != nil {
			return err
		}
	}

	var err error
	switch action.Type {
	case ActionMove:
		err = g.applyMove(p, action)
	case ActionDirectFlight:
		err = g.applyDirectFlight(p, action)
	case ActionCharterFlight:
		err = g.applyCharterFlight(p, action)
	case ActionShuttleFlight:
		err = g.applyShuttleFlight(p, action)
	case ActionTreat:
		err = g.applyTreat(p, action)
	case ActionBuildStation:
		err = g.applyBuildStation(p)
	case ActionShareKnowledge:
		err = g.applyShareKnowledge(p, action)
	case ActionDiscoverCure:
		err = g.applyDiscoverCure(p, action)
	case ActionPlayEvent:
		err = g.applyPlayEvent(p, action)
	case ActionDrawCards:
		err = g.applyDrawCards(p)
	case ActionEndTurn:
		err = g.applyEndTurn(p)
	case ActionDiscard:
		err = g.applyDiscard(p, action)
	case ActionForecastOrder:
		err = g.applyResolveDecision(p, action)
	default:
		return ErrInvalidAction.Withf("unknown action %q", action.Type)
	}
	if err != nil {
		return err
	}
	if action.Type.consumesAction() {
		p.ActionsLeft--
	}
	return nil
}

func (g *Game) requireAction(p *Player) error {
	s := g.State
	if s.CurrentPlayerID() != p.ID {
		return ErrNotYourTurn
	}
	if s.Phase != PhaseActions {
		return ErrWrongPhase
	}
	if s.Drawn {
		return ErrWrongPhase.Withf("cards were drawn, the action phase is over")
	}
	if p.ActionsLeft <= 0 {
		return ErrNoActionsLeft
	}
	return nil
}

func (g *Game) applyMove(p *Player, action Action) error {
	dest := action.Destination
	if !g.World.Has(dest) {
		return ErrIllegalDestination.Withf("unknown city %q", dest)
	}
	if !g.World.Adjacent(p.Location, dest) {
		return ErrIllegalDestination.Withf("%s is not adjacent to %s", g.cityName(dest), g.cityName(p.Location))
	}
	g.MovePawn(p, dest, "drives")
	return nil
}

func (g *Game) applyDirectFlight(p *Player, action Action) error {
	dest := action.Destination
	if err := g.checkFlight(p, dest); err != nil {
		return err
	}
	if !p.HasCard(dest) {
		return ErrMissingCard.Withf("direct flight needs the %s card", g.cityName(dest))
	}
	g.discardFromHand(p, dest)
	g.MovePawn(p, dest, "flies directly")
	return nil
}

func (g *Game) applyCharterFlight(p *Player, action Action) error {
	dest := action.Destination
	if err := g.checkFlight(p, dest); err != nil {
		return err
	}
	if !p.HasCard(p.Location) {
		return ErrMissingCard.Withf("charter flight needs the %s card", g.cityName(p.Location))
	}
	g.discardFromHand(p, p.Location)
	g.MovePawn(p, dest, "charters a flight")
	return nil
}

func (g *Game) applyShuttleFlight(p *Player, action Action) error {
	dest := action.Destination
	if err := g.checkFlight(p, dest); err != nil {
		return err
	}
	if !g.State.Cities[p.Location].Station {
		return ErrNoStation.Withf("no research station in %s", g.cityName(p.Location))
	}
	if !g.State.Cities[dest].Station {
		return ErrIllegalDestination.Withf("no research station in %s", g.cityName(dest))
	}
	g.MovePawn(p, dest, "takes a shuttle")
	return nil
}

func (g *Game) checkFlight(p *Player, dest string) error {
	if !g.World.Has(dest) {
		return ErrIllegalDestination.Withf("unknown city %q", dest)
	}
	if dest == p.Location {
		return ErrIllegalDestination.Withf("already in %s", g.cityName(dest))
	}
	return nil
}

func (g *Game) applyTreat(p *Player, action Action) error {
	color, err := ParseColor(action.Color)
	if err != nil {
		return ErrInvalidPayload.Withf("%v", err)
	}
	cs := g.State.Cities[p.Location]
	have := cs.Cubes[color]
	if have == 0 {
		return ErrNothingToTreat.Withf("no %s cubes in %s", color, g.cityName(p.Location))
	}
	removed := 1
	if p.Capabilities().TreatAll || g.State.Cures[color] {
		removed = have
	}
	cs.Cubes[color] -= removed
	g.State.Cities[p.Location] = cs
	g.State.CubesLeft[color] += removed

	g.Logf(p.ID, "%s treats %d %s in %s", p.Name, removed, pluralCubes(removed, color), g.cityName(p.Location))
	g.emit(Event{Type: EventTreated, Player: p.ID, Data: map[string]any{
		"city": p.Location, "color": color.String(), "removed": removed,
	}})
	g.checkEradication(color)
	return nil
}

func (g *Game) applyBuildStation(p *Player) error {
	if g.State.Cities[p.Location].Station {
		return ErrStationExists.Withf("%s already has a research station", g.cityName(p.Location))
	}
	if g.State.ResearchStationsLeft <= 0 {
		return ErrNoStationsLeft
	}
	free := p.Capabilities().FreeBuild
	if !free && !p.HasCard(p.Location) {
		return ErrMissingCard.Withf("building in %s needs the %s card", g.cityName(p.Location), g.cityName(p.Location))
	}
	if !free {
		g.discardFromHand(p, p.Location)
	}
	if err := g.PlaceStation(p.Location); err != nil {
		return err
	}
	g.Logf(p.ID, "%s builds a research station in %s", p.Name, g.cityName(p.Location))
	g.emit(Event{Type: EventStationBuilt, Player: p.ID, Data: map[string]any{"city": p.Location}})
	return nil
}

func (g *Game) applyShareKnowledge(p *Player, action Action) error {
	to := g.State.GetPlayer(action.Target)
	if to == nil || to.ID == p.ID {
		return ErrInvalidTarget.Withf("unknown receiver %q", action.Target)
	}
	if to.Location != p.Location {
		return ErrInvalidTarget.Withf("%s is not in %s", to.Name, g.cityName(p.Location))
	}
	idx := p.HandFind(action.Card)
	if idx < 0 {
		return ErrMissingCard.Withf("%s does not hold %q", p.Name, action.Card)
	}
	card := p.Hand[idx]
	if !p.Capabilities().ShareAnyCard && (card.Kind != CardCity || card.City != p.Location) {
		return ErrInvalidPayload.Withf("only the %s card can be shared here", g.cityName(p.Location))
	}
	if len(to.Hand) >= HandLimit {
		return ErrReceiverHandFull.Withf("%s already holds %d cards", to.Name, len(to.Hand))
	}
	p.RemoveFromHand(card.ID())
	to.Hand = append(to.Hand, card)

	g.Logf(p.ID, "%s gives %s to %s", p.Name, g.cardName(card), to.Name)
	g.emit(Event{Type: EventKnowledgeShared, Player: p.ID, Data: map[string]any{
		"to": to.ID, "card": card.ID(),
	}})
	return nil
}

func (g *Game) applyDiscoverCure(p *Player, action Action) error {
	if !g.State.Cities[p.Location].Station {
		return ErrNoStation.Withf("a cure needs a research station")
	}
	color, err := ParseColor(action.Color)
	if err != nil {
		return ErrInvalidPayload.Withf("%v", err)
	}
	if g.State.Cures[color] {
		return ErrCureAlreadyFound.Withf("%s is already cured", color)
	}
	need := p.Capabilities().CureThreshold

	cards := action.Cards
	if len(cards) == 0 {
		cards = p.cityCardsOf(color, g.World)
		if len(cards) > need {
			cards = cards[:need]
		}
	}
	seen := make(map[string]bool, len(cards))
	for _, id := range cards {
		if seen[id] {
			return ErrInvalidPayload.Withf("card %q listed twice", id)
		}
		seen[id] = true
		i := p.HandFind(id)
		if i < 0 || p.Hand[i].Kind != CardCity {
			return ErrMissingCard.Withf("%s does not hold the %q city card", p.Name, id)
		}
		if g.World.ColorOf(id) != color {
			return ErrInvalidPayload.Withf("%s is not a %s city", g.cityName(id), color)
		}
	}
	if len(cards) < need {
		return ErrMissingCard.Withf("a %s cure needs %d %s cards, have %d", color, need, color, len(cards))
	}
	if len(cards) > need {
		return ErrInvalidPayload.Withf("a %s cure takes exactly %d cards", color, need)
	}

	for _, id := range cards {
		g.discardFromHand(p, id)
	}
	g.State.Cures[color] = true
	g.Logf(p.ID, "%s discovers a cure for %s", p.Name, color)
	g.emit(Event{Type: EventCureDiscovered, Player: p.ID, Data: map[string]any{"color": color.String()}})
	g.checkEradication(color)
	g.checkWin()
	return nil
}

func (g *Game) applyPlayEvent(p *Player, action Action) error {
	i := p.HandFind(string(action.Event))
	if i < 0 || p.Hand[i].Kind != CardEvent {
		return ErrMissingCard.Withf("%s does not hold %s", p.Name, action.Event)
	}
	effect, err := g.effects.Get(action.Event)
	if err != nil {
		return ErrStructural.Withf("%v", err)
	}
	card, _ := p.RemoveFromHand(string(action.Event))
	events, err := effect.Apply(g, p.ID, action)
	if err != nil {
		return err
	}
	g.State.PlayerDiscard.Return([]Card{card})
	g.emit(Event{Type: EventEventPlayed, Player: p.ID, Data: map[string]any{"event": string(action.Event)}})
	g.events = append(g.events, events...)
	return nil
}

func (g *Game) applyResolveDecision(p *Player, action Action) error {
	d := g.State.Pending
	if d == nil {
		return ErrInvalidAction.Withf("no decision is pending")
	}
	if d.PlayerID != p.ID {
		return ErrNotYourTurn.Withf("%s must resolve %s", g.playerName(d.PlayerID), d.Event)
	}
	effect, err := g.effects.Get(d.Event)
	if err != nil {
		return ErrStructural.Withf("%v", err)
	}
	resolver, ok := effect.(DecisionResolver)
	if !ok {
		return ErrStructural.Withf("event %s cannot resolve a decision", d.Event)
	}
	events, err := resolver.Resolve(g, p.ID, action)
	if err != nil {
		return err
	}
	g.events = append(g.events, events...)
	return nil
}

func (g *Game) applyDrawCards(p *Player) error {
	s := g.State
	if s.CurrentPlayerID() != p.ID {
		return ErrNotYourTurn
	}
	if s.Phase != PhaseActions {
		return ErrWrongPhase
	}
	if s.Drawn {
		return ErrAlreadyDrawn
	}
	s.Drawn = true
	drawn := 0
	for i := 0; i < CardsPerDraw && !s.IsOver(); i++ {
		cards := s.PlayerDeck.Draw(1)
		if len(cards) == 0 {
			g.lose("the player deck ran out")
			break
		}
		c := cards[0]
		if c.Kind == CardEpidemic {
			s.PlayerDiscard.Return(cards)
			g.resolveEpidemic()
			continue
		}
		p.Hand = append(p.Hand, c)
		drawn++
	}
	g.Logf(p.ID, "%s draws %d %s", p.Name, drawn, plural(drawn, "card", "cards"))
	g.emit(Event{Type: EventCardsDrawn, Player: p.ID, Data: map[string]any{
		"count": drawn, "hand_size": len(p.Hand),
	}})
	return nil
}

func (g *Game) applyEndTurn(p *Player) error {
	s := g.State
	if s.CurrentPlayerID() != p.ID {
		return ErrNotYourTurn
	}
	if s.Phase == PhaseActions {
		g.infectionStep()
		if s.IsOver() {
			return nil
		}
		s.Infected = true
		s.Phase = PhaseTurnEnding
	}
	if p.OverHandLimit() {
		g.emit(Event{Type: EventHandLimit, Player: p.ID, Data: map[string]any{
			"hand_size": len(p.Hand), "limit": HandLimit,
		}})
		return ErrHandLimitExceeded.Withf("%s holds %d cards and must discard down to %d", p.Name, len(p.Hand), HandLimit)
	}
	g.advanceTurn()
	return nil
}

func (g *Game) applyDiscard(p *Player, action Action) error {
	if !p.OverHandLimit() {
		return ErrInvalidAction.Withf("%s is within the hand limit", p.Name)
	}
	card, ok := p.RemoveFromHand(action.Card)
	if !ok {
		return ErrMissingCard.Withf("%s does not hold %q", p.Name, action.Card)
	}
	g.State.PlayerDiscard.Return([]Card{card})
	g.Logf(p.ID, "%s discards %s", p.Name, g.cardName(card))
	g.emit(Event{Type: EventCardDiscarded, Player: p.ID, Data: map[string]any{
		"card": card.ID(), "hand_size": len(p.Hand),
	}})
	return nil
}

func (g *Game) advanceTurn() {
	s := g.State
	prev := s.CurrentPlayerID()
	s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.TurnOrder)
	if s.CurrentPlayerIndex == 0 {
		s.Round++
	}
	next := s.CurrentPlayer()
	next.ActionsLeft = next.Capabilities().ActionBudget
	s.Drawn = false
	s.Infected = false
	s.Phase = PhaseActions
	g.Logf(next.ID, "%s's turn", next.Name)
	g.emit(Event{Type: EventTurnEnd, Player: prev, Data: map[string]any{
		"next": next.ID, "round": s.Round,
	}})
}

// MovePawn relocates p and records how it travelled.
func (g *Game) MovePawn(p *Player, dest, how string) {
	from := p.Location
	p.Location = dest
	g.Logf(p.ID, "%s %s from %s to %s", p.Name, how, g.cityName(from), g.cityName(dest))
	g.emit(Event{Type: EventMoved, Player: p.ID, Data: map[string]any{"from": from, "to": dest}})
}

// PlaceStation builds a research station in city from the shared supply.
func (g *Game) PlaceStation(city string) error {
	cs, ok := g.State.Cities[city]
	if !ok {
		return ErrIllegalDestination.Withf("unknown city %q", city)
	}
	if cs.Station {
		return ErrStationExists.Withf("%s already has a research station", g.cityName(city))
	}
	if g.State.ResearchStationsLeft <= 0 {
		return ErrNoStationsLeft
	}
	cs.Station = true
	g.State.Cities[city] = cs
	g.State.ResearchStationsLeft--
	return nil
}

// Rand returns the generator for the next shuffle of this game.
func (g *Game) Rand() *rand.Rand {
	r := newRand(g.State.Seed, g.State.Shuffles)
	g.State.Shuffles++
	return r
}

// Logf appends a line to the game log.
func (g *Game) Logf(playerID, format string, args ...any) {
	g.State.Log = append(g.State.Log, LogEntry{
		Seq:     len(g.State.Log) + 1,
		Round:   g.State.Round,
		Player:  playerID,
		Message: fmt.Sprintf(format, args...),
	})
}

func (g *Game) emit(e Event) {
	g.events = append(g.events, e)
}

func (g *Game) messagesSince(mark int) string {
	var msgs []string
	for _, e := range g.State.Log[mark:] {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, ". ")
}

func (g *Game) discardFromHand(p *Player, id string) {
	if c, ok := p.RemoveFromHand(id); ok {
		g.State.PlayerDiscard.Return([]Card{c})
	}
}

func (g *Game) cityName(id string) string {
	if c, ok := g.World.City(id); ok {
		return c.Name
	}
	return id
}

func (g *Game) cardName(c Card) string {
	switch c.Kind {
	case CardCity:
		return g.cityName(c.City)
	case CardEvent:
		return c.Event.String()
	}
	return "Epidemic"
}

func (g *Game) playerName(id string) string {
	if p := g.State.GetPlayer(id); p != nil {
		return p.Name
	}
	return id
}

// CityName returns the display name of a city id.
func (g *Game) CityName(id string) string { return g.cityName(id) }

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func pluralCubes(n int, c Color) string {
	return c.String() + " " + plural(n, "cube", "cubes")
}
