package game

// GoalMouth is a gap in the top or bottom wall. X spans the half-open
// interval [X, X+Width).
type GoalMouth struct {
	X, Y          float64
	Width, Height float64
	// Line is the y threshold the ball must pass to count.
	Line float64
	// Scorer is the side credited when the ball crosses this line.
	Scorer Side
}

var (
	TopGoal = GoalMouth{
		X:      175,
		Y:      10,
		Width:  150,
		Height: 50,
		Line:   50,
		Scorer: SideHome,
	}
	BottomGoal = GoalMouth{
		X:      175,
		Y:      540,
		Width:  150,
		Height: 50,
		Line:   540,
		Scorer: SideAway,
	}
)

// InMouth reports whether x lies inside the mouth's horizontal span.
func (g GoalMouth) InMouth(x float64) bool {
	return x >= g.X && x < g.X+g.Width
}

// Crossed reports whether a ball at p is over the scoring threshold.
func (g GoalMouth) Crossed(p Vec) bool {
	if !g.InMouth(p.X) {
		return false
	}
	if g.Scorer == SideHome {
		return p.Y < g.Line
	}
	return p.Y > g.Line
}

var goalMessages = map[Mode][2]string{
	ModeSolo:      {"GOAL!", "ENEMY SCORED!"},
	ModeNetworked: {"BLUE SCORES!", "RED SCORES!"},
}

// checkGoals credits a goal for each mouth the ball has crossed. Both mouths
// are evaluated every tick; they never overlap, so at most one fires.
func (s *Simulator) checkGoals(w *World) {
	for _, g := range [...]GoalMouth{TopGoal, BottomGoal} {
		if !g.Crossed(w.Ball.Pos) {
			continue
		}
		s.scored(w, g.Scorer)
	}
}

func (s *Simulator) scored(w *World, side Side) {
	m := &w.Match
	m.Score[side]++
	m.GoalMessage = goalMessages[m.Mode][side]
	m.GoalTimer = GoalMessageTicks

	s.emit(Event{Kind: EventGoal, Side: side, Pos: w.Ball.Pos})
	w.Referee.Blow()

	s.log.Info("goal", "side", side, "home", m.Score[SideHome], "away", m.Score[SideAway], "tick", w.Tick)
	w.ResetPositions()
}
