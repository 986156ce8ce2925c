package engine_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"pandemic/internal/engine"
)

// checkCubes fails the test if cubes were created or lost, or a city holds
// more than the maximum of one color.
func checkCubes(t *testing.T, s *engine.GameState, step string) {
	t.Helper()
	for _, c := range engine.AllColors() {
		if got := s.CubesLeft[c] + s.CubesOnBoard(c); got != engine.CubesPerColor {
			t.Fatalf("%s: %s cubes total %d, want %d", step, c, got, engine.CubesPerColor)
		}
		if s.CubesLeft[c] < 0 {
			t.Fatalf("%s: %s supply is negative", step, c)
		}
	}
	for id, cs := range s.Cities {
		for _, c := range engine.AllColors() {
			if n := cs.Cubes[c]; n < 0 || n > engine.MaxCubesPerCity {
				t.Fatalf("%s: %s holds %d %s cubes", step, id, n, c)
			}
		}
	}
}

func TestRandomPlaythroughKeepsCubeInvariants(t *testing.T) {
	r := newRules()
	world := engine.StandardWorld()

	for seed := uint64(1); seed <= 40; seed++ {
		s, err := r.InitializeGame(roster(3), engine.DefaultSettings(), seed)
		if err != nil {
			t.Fatalf("seed %d: InitializeGame: %v", seed, err)
		}
		checkCubes(t, s, "setup")
		rng := rand.New(rand.NewPCG(seed, 7))

		apply := func(pid string, a engine.Action) error {
			out, err := r.Apply(s, pid, a)
			if out.State != nil {
				s = out.State
				checkCubes(t, s, string(a.Type))
			}
			return err
		}

		for turn := 0; turn < 60 && !s.IsOver(); turn++ {
			p := s.CurrentPlayer()
			for p.ActionsLeft > 0 && !s.IsOver() {
				a := engine.Action{Type: engine.ActionMove}
				if cs := s.Cities[p.Location]; cs.Total() > 0 && rng.IntN(2) == 0 {
					for _, c := range engine.AllColors() {
						if cs.Cubes[c] > 0 {
							a = engine.Action{Type: engine.ActionTreat, Color: c.String()}
							break
						}
					}
				}
				if a.Type == engine.ActionMove {
					next := world.Neighbors(p.Location)
					a.Destination = next[rng.IntN(len(next))]
				}
				if err := apply(p.ID, a); err != nil {
					t.Fatalf("seed %d: %s by %s: %v", seed, a.Type, p.ID, err)
				}
				p = s.CurrentPlayer()
			}
			if s.IsOver() {
				break
			}
			if err := apply(p.ID, engine.Action{Type: engine.ActionDrawCards}); err != nil {
				t.Fatalf("seed %d: draw_cards: %v", seed, err)
			}
			if s.IsOver() {
				break
			}
			err := apply(p.ID, engine.Action{Type: engine.ActionEndTurn})
			for errors.Is(err, engine.ErrHandLimitExceeded) {
				p = s.GetPlayer(p.ID)
				for p.OverHandLimit() {
					card := p.Hand[rng.IntN(len(p.Hand))].ID()
					if err := apply(p.ID, engine.Action{Type: engine.ActionDiscard, Card: card}); err != nil {
						t.Fatalf("seed %d: discard %s: %v", seed, card, err)
					}
					p = s.GetPlayer(p.ID)
				}
				err = apply(p.ID, engine.Action{Type: engine.ActionEndTurn})
			}
			if err != nil {
				t.Fatalf("seed %d: end_turn: %v", seed, err)
			}
		}
	}
}
