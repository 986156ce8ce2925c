package engine

// checkEradication marks c eradicated once it is cured and no cube remains.
func (g *Game) checkEradication(c Color) {
	s := g.State
	if !s.Cures[c] || s.Eradicated[c] || s.CubesOnBoard(c) > 0 {
		return
	}
	s.Eradicated[c] = true
	g.Logf("", "%s has been eradicated", c)
	g.emit(Event{Type: EventEradicated, Data: map[string]any{"color": c.String()}})
}

func (g *Game) checkWin() {
	if g.State.CuredCount() == NumColors {
		g.finish(ResultWin, "")
	}
}

func (g *Game) lose(reason string) {
	g.finish(ResultLose, reason)
}

func (g *Game) finish(result Result, reason string) {
	s := g.State
	if s.IsOver() {
		return
	}
	s.Phase = PhaseGameOver
	s.Result = result
	s.LossReason = reason
	s.Pending = nil
	if result == ResultWin {
		g.Logf("", "All four cures discovered. The team wins!")
	} else {
		g.Logf("", "Game lost: %s", reason)
	}
	g.emit(Event{Type: EventGameOver, Data: map[string]any{
		"result": string(result), "reason": reason,
	}})
	g.emit(Event{Type: EventPhaseChange, Data: map[string]any{"phase": PhaseGameOver.String()}})
}
