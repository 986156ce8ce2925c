package engine_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"pandemic/internal/engine"
	"pandemic/internal/engine/eventcards"
)

func newRules() *engine.Rules {
	return engine.NewRules(engine.StandardWorld(), eventcards.Standard())
}

func roster(n int) []engine.Participant {
	var out []engine.Participant
	for i := 0; i < n; i++ {
		out = append(out, engine.Participant{
			ID:   string(rune('A' + i)),
			Name: "Player" + string(rune('1'+i)),
		})
	}
	return out
}

func newTestGame(t *testing.T, n int) (*engine.Rules, *engine.GameState) {
	t.Helper()
	r := newRules()
	s, err := r.InitializeGame(roster(n), engine.DefaultSettings(), 42)
	if err != nil {
		t.Fatalf("InitializeGame: %v", err)
	}
	return r, s
}

// calmBoard removes every cube, empties hands and gives everyone a role
// without board effects, so a test controls the whole position.
func calmBoard(s *engine.GameState) {
	for id := range s.Cities {
		cs := s.Cities[id]
		cs.Cubes = [engine.NumColors]int{}
		s.Cities[id] = cs
	}
	for c := range s.CubesLeft {
		s.CubesLeft[c] = engine.CubesPerColor
	}
	for _, p := range s.Players {
		p.Role = engine.RoleDispatcher
		p.Location = engine.StartCity
		p.Hand = nil
		p.ActionsLeft = engine.DefaultActionBudget
	}
}

func setCubes(s *engine.GameState, city string, c engine.Color, n int) {
	cs := s.Cities[city]
	s.CubesLeft[c] += cs.Cubes[c] - n
	cs.Cubes[c] = n
	s.Cities[city] = cs
}

func cityCards(ids ...string) []engine.Card {
	var out []engine.Card
	for _, id := range ids {
		out = append(out, engine.CityCard(id))
	}
	return out
}

func mustApply(t *testing.T, r *engine.Rules, s *engine.GameState, playerID string, a engine.Action) *engine.GameState {
	t.Helper()
	out, err := r.Apply(s, playerID, a)
	if err != nil {
		t.Fatalf("apply %s by %s: %v", a.Type, playerID, err)
	}
	return out.State
}

func otherPlayer(s *engine.GameState) *engine.Player {
	for _, p := range s.Players {
		if p.ID != s.CurrentPlayerID() {
			return p
		}
	}
	return nil
}

func TestInitializeGame(t *testing.T) {
	_, s := newTestGame(t, 2)

	if s.Phase != engine.PhaseActions {
		t.Fatalf("expected Actions phase, got %s", s.Phase)
	}
	if s.Round != 1 {
		t.Errorf("expected round 1, got %d", s.Round)
	}
	for _, p := range s.Players {
		if len(p.Hand) != 4 {
			t.Errorf("player %s should have 4 cards, got %d", p.Name, len(p.Hand))
		}
		if p.Location != engine.StartCity {
			t.Errorf("player %s should start in %s, got %s", p.Name, engine.StartCity, p.Location)
		}
		if p.ActionsLeft != p.Capabilities().ActionBudget {
			t.Errorf("player %s has %d actions, want %d", p.Name, p.ActionsLeft, p.Capabilities().ActionBudget)
		}
	}
	if got := s.PlayerDeck.Len(); got != 49 {
		t.Errorf("player deck should hold 49 cards, got %d", got)
	}
	if got := s.InfectionDiscard.Len(); got != 9 {
		t.Errorf("infection discard should hold 9 cards, got %d", got)
	}
	if got := s.InfectionDeck.Len(); got != 39 {
		t.Errorf("infection deck should hold 39 cards, got %d", got)
	}
	if !s.Cities[engine.StartCity].Station {
		t.Error("start city should have a research station")
	}
	if s.ResearchStationsLeft != engine.TotalStations-1 {
		t.Errorf("expected %d stations left, got %d", engine.TotalStations-1, s.ResearchStationsLeft)
	}
	if s.StationCount()+s.ResearchStationsLeft != engine.TotalStations {
		t.Error("stations on board and in supply should add up")
	}
	if len(s.TurnOrder) != 2 {
		t.Fatalf("expected 2 players in turn order, got %d", len(s.TurnOrder))
	}
	if s.TurnOrder[0] == s.TurnOrder[1] {
		t.Error("turn order should be a permutation of the roster")
	}
	for _, c := range engine.AllColors() {
		if s.CubesLeft[c]+s.CubesOnBoard(c) != engine.CubesPerColor {
			t.Errorf("%s cubes do not add up: %d left, %d on board", c, s.CubesLeft[c], s.CubesOnBoard(c))
		}
	}
}

func TestInitializeGameRejectsBadInput(t *testing.T) {
	r := newRules()
	tests := []struct {
		name     string
		roster   []engine.Participant
		settings engine.Settings
	}{
		{"empty roster", nil, engine.DefaultSettings()},
		{"duplicate ids", []engine.Participant{{ID: "A"}, {ID: "A"}}, engine.DefaultSettings()},
		{"unknown difficulty", roster(2), engine.Settings{Difficulty: "nightmare"}},
	}
	for _, tt := range tests {
		if _, err := r.InitializeGame(tt.roster, tt.settings, 1); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestInitialHandSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 4}, {2, 4}, {3, 3}, {4, 2}, {6, 2}, {10, 2},
	}
	for _, tt := range tests {
		if got := engine.InitialHandSize(tt.n); got != tt.want {
			t.Errorf("InitialHandSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestEpidemicDistribution(t *testing.T) {
	tests := []struct {
		players    int
		difficulty engine.Difficulty
		epidemics  int
	}{
		{2, engine.DifficultyEasy, 4},
		{3, engine.DifficultyMedium, 5},
		{4, engine.DifficultyHard, 6},
		{5, engine.DifficultyHard, 6},
	}
	r := newRules()
	for _, tt := range tests {
		settings := engine.DefaultSettings()
		settings.Difficulty = tt.difficulty
		s, err := r.InitializeGame(roster(tt.players), settings, 7)
		if err != nil {
			t.Fatalf("InitializeGame: %v", err)
		}
		base := engine.StandardWorld().Len() + len(engine.AllEvents()) - tt.players*engine.InitialHandSize(tt.players)
		if got := s.PlayerDeck.Len(); got != base+tt.epidemics {
			t.Errorf("%d players %s: deck has %d cards, want %d", tt.players, tt.difficulty, got, base+tt.epidemics)
			continue
		}
		size := base / tt.epidemics
		pos := 0
		for i := 0; i < tt.epidemics; i++ {
			pile := size + 1
			if i == tt.epidemics-1 {
				pile = base - (tt.epidemics-1)*size + 1
			}
			n := 0
			for _, c := range s.PlayerDeck[pos : pos+pile] {
				if c.Kind == engine.CardEpidemic {
					n++
				}
			}
			if n != 1 {
				t.Errorf("%d players %s: pile %d holds %d epidemics", tt.players, tt.difficulty, i, n)
			}
			pos += pile
		}
	}
}

func TestRolesWrapPastTen(t *testing.T) {
	r := newRules()
	s, err := r.InitializeGame(roster(11), engine.DefaultSettings(), 3)
	if err != nil {
		t.Fatalf("InitializeGame: %v", err)
	}
	seen := map[engine.RoleID]int{}
	for _, p := range s.Players {
		seen[p.Role]++
	}
	if len(seen) != len(engine.AllRoles()) {
		t.Errorf("expected every role dealt, got %d distinct", len(seen))
	}
	if s.Players[10].Role != s.Players[0].Role {
		t.Errorf("eleventh player should wrap to the first role")
	}
}

func TestDeterministicReplay(t *testing.T) {
	r := newRules()
	a, err := r.InitializeGame(roster(3), engine.DefaultSettings(), 99)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.InitializeGame(roster(3), engine.DefaultSettings(), 99)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed should produce the same game")
	}

	end := engine.Action{Type: engine.ActionEndTurn}
	draw := engine.Action{Type: engine.ActionDrawCards}
	for i := 0; i < 3; i++ {
		oa, errA := r.Apply(a, a.CurrentPlayerID(), draw)
		ob, errB := r.Apply(b, b.CurrentPlayerID(), draw)
		if (errA == nil) != (errB == nil) {
			t.Fatalf("draw diverged: %v vs %v", errA, errB)
		}
		if errA != nil {
			break
		}
		a, b = oa.State, ob.State
		oa, errA = r.Apply(a, a.CurrentPlayerID(), end)
		ob, errB = r.Apply(b, b.CurrentPlayerID(), end)
		if oa.State == nil || ob.State == nil {
			break
		}
		if (errA == nil) != (errB == nil) {
			t.Fatalf("end turn diverged: %v vs %v", errA, errB)
		}
		a, b = oa.State, ob.State
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("states diverged after turn %d", i+1)
		}
	}

	c, err := r.InitializeGame(roster(3), engine.DefaultSettings(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(c.InfectionDiscard, a.InfectionDiscard) && reflect.DeepEqual(c.PlayerDeck, a.PlayerDeck) {
		t.Error("different seeds should produce different games")
	}
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	r, s := newTestGame(t, 2)
	before, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	out, err := r.Apply(s, s.CurrentPlayerID(), engine.Action{Type: engine.ActionEndTurn})
	if err != nil && !errors.Is(err, engine.ErrHandLimitExceeded) {
		t.Fatalf("end turn: %v", err)
	}
	after, _ := json.Marshal(s)
	if string(before) != string(after) {
		t.Fatal("Apply mutated its input state")
	}
	if out.State == s {
		t.Fatal("Apply should return a new state")
	}
	if out.State.Version != s.Version+1 {
		t.Errorf("expected version %d, got %d", s.Version+1, out.State.Version)
	}

	// Rejected actions return no state at all.
	out, err = r.Apply(s, s.CurrentPlayerID(), engine.Action{Type: engine.ActionMove, Destination: "tokyo"})
	if !errors.Is(err, engine.ErrIllegalDestination) {
		t.Fatalf("expected ErrIllegalDestination, got %v", err)
	}
	if out.State != nil {
		t.Error("rejected action should not produce a state")
	}
}

func TestStructuralFaults(t *testing.T) {
	r, s := newTestGame(t, 2)

	_, err := r.Apply(s, "nobody", engine.Action{Type: engine.ActionEndTurn})
	if !errors.Is(err, engine.ErrPlayerNotFound) || engine.KindOf(err) != engine.KindStructural {
		t.Errorf("unknown player should be a structural fault, got %v", err)
	}

	broken := s.Clone()
	broken.CurrentPlayerIndex = 5
	if _, err := r.Apply(broken, s.CurrentPlayerID(), engine.Action{Type: engine.ActionEndTurn}); engine.KindOf(err) != engine.KindStructural {
		t.Errorf("bad turn index should be a structural fault, got %v", err)
	}

	broken = s.Clone()
	broken.CurrentPlayer().Hand = append(broken.CurrentPlayer().Hand, engine.EpidemicCard())
	if _, err := r.Apply(broken, s.CurrentPlayerID(), engine.Action{Type: engine.ActionEndTurn}); engine.KindOf(err) != engine.KindStructural {
		t.Errorf("epidemic in hand should be a structural fault, got %v", err)
	}

	if _, err := r.Apply(nil, "A", engine.Action{Type: engine.ActionEndTurn}); engine.KindOf(err) != engine.KindStructural {
		t.Errorf("nil state should be a structural fault, got %v", err)
	}

	tests := []struct {
		name    string
		corrupt func(s *engine.GameState)
	}{
		{"duplicate turn order", func(s *engine.GameState) {
			s.TurnOrder = []string{s.TurnOrder[0], s.TurnOrder[0]}
		}},
		{"short turn order", func(s *engine.GameState) {
			s.TurnOrder = s.TurnOrder[:1]
			s.CurrentPlayerIndex = 0
		}},
		{"missing board city", func(s *engine.GameState) {
			cs := s.Cities["paris"]
			delete(s.Cities, "paris")
			s.Cities["atlantis"] = cs
		}},
		{"unknown location", func(s *engine.GameState) {
			s.Players[0].Location = "atlantis"
		}},
		{"unknown card kind", func(s *engine.GameState) {
			s.Players[0].Hand = append(s.Players[0].Hand, engine.Card{Kind: "joker"})
		}},
		{"unregistered event", func(s *engine.GameState) {
			s.Players[0].Hand = append(s.Players[0].Hand, engine.EventCard("borrowed_time"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := s.Clone()
			tt.corrupt(broken)
			_, err := r.Apply(broken, s.CurrentPlayerID(), engine.Action{Type: engine.ActionEndTurn})
			if err == nil || engine.KindOf(err) != engine.KindStructural {
				t.Errorf("expected a structural fault, got %v", err)
			}
		})
	}
}

func TestInitialInfectionIgnoresQuarantine(t *testing.T) {
	r := newRules()
	for seed := uint64(1); seed <= 300; seed++ {
		s, err := r.InitializeGame(roster(4), engine.DefaultSettings(), seed)
		if err != nil {
			t.Fatalf("seed %d: InitializeGame: %v", seed, err)
		}
		placed := 0
		for _, c := range engine.AllColors() {
			placed += s.CubesOnBoard(c)
			if s.CubesLeft[c]+s.CubesOnBoard(c) != engine.CubesPerColor {
				t.Fatalf("seed %d: %s cubes do not add up", seed, c)
			}
		}
		if placed != 18 {
			t.Fatalf("seed %d: initial infection placed %d cubes, want 18", seed, placed)
		}
		byCount := map[int]int{}
		for _, city := range s.InfectionDiscard {
			byCount[s.Cities[city].Total()]++
		}
		if byCount[3] != 3 || byCount[2] != 3 || byCount[1] != 3 {
			t.Fatalf("seed %d: want three cities each with 3, 2 and 1 cubes, got %v", seed, byCount)
		}
		if s.OutbreakCount != 0 {
			t.Fatalf("seed %d: setup caused %d outbreaks", seed, s.OutbreakCount)
		}
	}
}

func TestRoleDescriptions(t *testing.T) {
	seen := map[string]engine.RoleID{}
	for _, id := range engine.AllRoles() {
		role, ok := engine.LookupRole(id)
		if !ok {
			t.Fatalf("role %s missing from the table", id)
		}
		if role.Name == "" || role.Ability == "" {
			t.Errorf("role %s needs a name and an ability", id)
		}
		if other, dup := seen[role.Ability]; dup {
			t.Errorf("roles %s and %s share the ability text %q", other, id, role.Ability)
		}
		seen[role.Ability] = id
	}
	planner, _ := engine.LookupRole(engine.RoleContingencyPlanner)
	if !strings.Contains(planner.Ability, "Event card") {
		t.Errorf("contingency planner ability should mention event cards, got %q", planner.Ability)
	}
}

func TestRejectionMatchesSentinel(t *testing.T) {
	err := engine.ErrMissingCard.Withf("need the Paris card")
	if !errors.Is(err, engine.ErrMissingCard) {
		t.Error("detailed rejection should match its sentinel")
	}
	if errors.Is(err, engine.ErrNoActionsLeft) {
		t.Error("rejection should not match a different code")
	}
	if engine.ErrMissingCard.Error() != "required card not in hand" {
		t.Error("Withf must not modify the sentinel")
	}
	if engine.KindOf(errors.New("boom")) != engine.KindStructural {
		t.Error("foreign errors should be treated as structural")
	}
}
