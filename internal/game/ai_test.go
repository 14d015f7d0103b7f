package game

import "testing"

func quietSimulator() *Simulator {
	s := NewSimulator(3)
	s.Tuning.WanderJitter = 0
	return s
}

// placeOpponent puts opponent 0 with its center dist units above the ball
// and parks the others in a far corner.
func placeOpponent(w *World, dist float64, mode AIMode) {
	for i := range w.Opponents {
		w.Opponents[i].Pos = Vec{opponentMaxX, opponentMaxY}
		w.Opponents[i].Vel = Vec{}
	}
	w.Ball.Pos = Vec{250, 500}
	o := &w.Opponents[0]
	o.Pos = Vec{250 - OpponentSize/2, 500 - dist - OpponentSize/2}
	o.Mode = mode
}

func TestMoveOpponents_Hysteresis(t *testing.T) {
	tests := []struct {
		name string
		dist float64
		from AIMode
		want AIMode
	}{
		{"wander enters seek when close", 190, AIWander, AISeek},
		{"wander stays between thresholds", 220, AIWander, AIWander},
		{"seek holds between thresholds", 220, AISeek, AISeek},
		{"seek gives up when far", 250, AISeek, AIWander},
		{"seek holds at exit threshold", 240, AISeek, AISeek},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			placeOpponent(w, tt.dist, tt.from)

			quietSimulator().moveOpponents(w)

			if got := w.Opponents[0].Mode; got != tt.want {
				t.Fatalf("mode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoveOpponents_SeekChasesBall(t *testing.T) {
	w := NewWorld()
	placeOpponent(w, 100, AIWander)
	before := w.Opponents[0].Center()

	quietSimulator().moveOpponents(w)

	o := w.Opponents[0]
	if o.Vel.Y <= 0 {
		t.Fatalf("vel = %+v, want heading down to the ball", o.Vel)
	}
	want := difficultyTable[DifficultyMedium].OpponentSpeed * 0.8
	if got := hypot(o.Vel.X, o.Vel.Y); got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("chase speed = %v, want %v", got, want)
	}
	if after := o.Center(); after.Y <= before.Y {
		t.Fatalf("opponent did not advance: %+v -> %+v", before, after)
	}
}

func TestMoveKeeper_StaysInMouth(t *testing.T) {
	for _, bx := range []float64{0, 100, 250, 400, 500} {
		w := NewWorld()
		w.Ball.Pos = Vec{bx, 300}
		for i := 0; i < 200; i++ {
			moveKeeper(w, KeeperTop)
			moveKeeper(w, KeeperBottom)
		}
		for idx, g := range []GoalMouth{TopGoal, BottomGoal} {
			x := w.Keepers[idx].Pos.X
			if x < g.X+5 || x > g.X+g.Width-KeeperWidth-5 {
				t.Fatalf("ball x %v: keeper %d at %v left the mouth", bx, idx, x)
			}
		}
	}
}

func TestMoveTeammates_SkipsControlled(t *testing.T) {
	w := NewWorld()
	w.Controlled = 1
	before := w.Teammates

	moveTeammates(w)

	if w.Teammates[1].Pos != before[1].Pos {
		t.Fatalf("controlled teammate moved by AI")
	}
	if w.Teammates[0].Pos == before[0].Pos {
		t.Fatalf("free teammate did not patrol")
	}
}

func TestReferee_CardHoldsUntilTimer(t *testing.T) {
	w := NewWorld()
	w.Ball.Pos = Vec{50, 100}
	w.Referee.ShowCard(false)

	for i := 0; i < CardTicks-1; i++ {
		moveReferee(w)
		if w.Referee.State != RefereeCardYellow {
			t.Fatalf("tick %d: state %q, want cardYellow", i, w.Referee.State)
		}
	}
	moveReferee(w)
	if w.Referee.State != RefereeWatching {
		t.Fatalf("state after card = %q, want watching", w.Referee.State)
	}
	w.Ball.Pos = Vec{450, 100}
	moveReferee(w)
	if w.Referee.State != RefereeRunning {
		t.Fatalf("state = %q, want running toward a far target", w.Referee.State)
	}
}

func TestBookCard_SecondIsRed(t *testing.T) {
	w := NewWorld()
	s := NewSimulator(1)

	s.bookCard(w, Vec{})
	if w.Referee.State != RefereeCardYellow {
		t.Fatalf("first card = %q", w.Referee.State)
	}
	s.bookCard(w, Vec{})
	if w.Referee.State != RefereeCardRed {
		t.Fatalf("second card = %q", w.Referee.State)
	}
	events := s.drain()
	if len(events) != 4 || !events[2].Red || events[0].Red {
		t.Fatalf("events = %+v", events)
	}
}

func TestPlayerVsOpponents_PushesToNearerSide(t *testing.T) {
	s := NewSimulator(1)
	s.Tuning.CardChance = 0
	w := NewWorld()
	for i := range w.Opponents {
		w.Opponents[i].Pos = Vec{opponentMinX, opponentMinY}
	}
	w.Opponents[2].Pos = Vec{250, 300}

	w.Players[0].Pos = Vec{230, 300}
	s.playerVsOpponents(w)
	if got, want := w.Players[0].Pos.X, 250-PlayerWidth-clearance; got != want {
		t.Fatalf("left push: x = %v, want %v", got, want)
	}

	w.Players[0].Pos = Vec{260, 300}
	s.playerVsOpponents(w)
	if got, want := w.Players[0].Pos.X, 250+OpponentSize+clearance; got != want {
		t.Fatalf("right push: x = %v, want %v", got, want)
	}
}

func TestPlayerVsOpponents_HardHitBooksCard(t *testing.T) {
	s := NewSimulator(1)
	s.Tuning.CardChance = 1
	w := NewWorld()
	w.Opponents[2].Pos = Vec{250, 300}
	w.Players[0].Pos = Vec{230, 300}
	w.Players[0].Running = true

	s.playerVsOpponents(w)

	if w.Match.Cards != 1 || w.Referee.State != RefereeCardYellow {
		t.Fatalf("cards %d state %q", w.Match.Cards, w.Referee.State)
	}
}

func TestCheckGoals_RightPostDoesNotScore(t *testing.T) {
	s := NewSimulator(1)
	w := NewWorld()
	w.Match.Phase = PhaseRunning
	w.Ball.Pos = Vec{TopGoal.X + TopGoal.Width, 20}

	s.checkGoals(w)

	if w.Match.Score != [2]int{} {
		t.Fatalf("scored on the post: %v", w.Match.Score)
	}

	w.Ball.Pos = Vec{BottomGoal.X, 560}
	s.checkGoals(w)
	if w.Match.Score != [2]int{0, 1} {
		t.Fatalf("score = %v, want [0 1]", w.Match.Score)
	}
	if w.Match.GoalMessage != "ENEMY SCORED!" {
		t.Fatalf("message = %q", w.Match.GoalMessage)
	}
}
