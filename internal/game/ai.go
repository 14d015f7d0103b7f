package game

import "math"

// Opponent patrol box.
const (
	opponentMinX = 10.0
	opponentMaxX = FieldWidth - OpponentSize - 10
	opponentMinY = 80.0
	opponentMaxY = FieldHeight - OpponentSize - 60

	teammateMinX = 40.0
	teammateMaxX = FieldWidth - TeammateSize - 40
	teammateMinY = 80.0
	teammateMaxY = FieldHeight - TeammateSize - 80
)

// reflectInBox clamps pos into [min,max] and flips the velocity component
// on each wall touched.
func reflectInBox(pos, vel *Vec, minX, maxX, minY, maxY float64) {
	if pos.X < minX {
		pos.X = minX
		vel.X = -vel.X
	}
	if pos.X > maxX {
		pos.X = maxX
		vel.X = -vel.X
	}
	if pos.Y < minY {
		pos.Y = minY
		vel.Y = -vel.Y
	}
	if pos.Y > maxY {
		pos.Y = maxY
		vel.Y = -vel.Y
	}
}

// moveOpponents runs the Seek/Wander policy. An opponent enters Seek when
// the ball is closer than SeekEnter and only falls back to Wander once it is
// farther than SeekExit, so it does not flicker at the boundary.
func (s *Simulator) moveOpponents(w *World) {
	settings := w.Match.Difficulty.settings()
	base := settings.OpponentSpeed

	for i := range w.Opponents {
		o := &w.Opponents[i]
		c := o.Center()
		dx := w.Ball.Pos.X - c.X
		dy := w.Ball.Pos.Y - c.Y
		dist := hypot(dx, dy)

		switch o.Mode {
		case AIWander:
			if dist < s.Tuning.SeekEnter {
				o.Mode = AISeek
			}
		case AISeek:
			if dist > s.Tuning.SeekExit {
				o.Mode = AIWander
			}
		}

		if o.Mode == AISeek && dist > 0 {
			chase := base * 0.8
			o.Vel.X = dx / dist * chase
			o.Vel.Y = dy / dist * chase
		} else if o.Mode == AIWander {
			o.Vel.X *= 0.98
			o.Vel.Y *= 0.98
			if s.rng.Float64() < s.Tuning.WanderJitter {
				o.Vel.X = (s.rng.Float64() - 0.5) * base * 2
				o.Vel.Y = (s.rng.Float64() - 0.5) * base * 2
			}
		}

		o.Pos.X += o.Vel.X
		o.Pos.Y += o.Vel.Y
		reflectInBox(&o.Pos, &o.Vel, opponentMinX, opponentMaxX, opponentMinY, opponentMaxY)
	}
}

// moveKeeper tracks the ball's x with a rate-limited approach, leans toward
// a short linear extrapolation when the ball is heading at its goal, and
// stays inside the goal mouth.
func moveKeeper(w *World, idx int) {
	k := &w.Keepers[idx]
	b := &w.Ball
	goal := TopGoal
	if idx == KeeperBottom {
		goal = BottomGoal
	}

	diff := b.Pos.X - KeeperWidth/2 - k.Pos.X
	if math.Abs(diff) > 5 {
		step := math.Min(k.Speed, math.Abs(diff)*0.1)
		if diff < 0 {
			step = -step
		}
		k.Pos.X += step
	}

	incoming := b.Vel.Y < -3 && b.Pos.Y < FieldHeight/2
	if idx == KeeperBottom {
		incoming = b.Vel.Y > 3 && b.Pos.Y > FieldHeight/2
	}
	if incoming {
		predicted := b.Pos.X + b.Vel.X*10
		k.Pos.X += (predicted - KeeperWidth/2 - k.Pos.X) * 0.05
	}

	k.Pos.X = clampF(k.Pos.X, goal.X+5, goal.X+goal.Width-KeeperWidth-5)
}

// moveTeammates patrols every teammate the user is not steering this tick.
func moveTeammates(w *World) {
	for i := range w.Teammates {
		if i == w.Controlled {
			continue
		}
		t := &w.Teammates[i]
		t.Pos.X += t.Vel.X
		t.Pos.Y += t.Vel.Y
		reflectInBox(&t.Pos, &t.Vel, teammateMinX, teammateMaxX, teammateMinY, teammateMaxY)
	}
}

// moveReferee follows a point behind the ball. Whistle and card states hold
// until their timer runs out; only then does movement pick the state again.
func moveReferee(w *World) {
	r := &w.Referee

	tx := clampF(w.Ball.Pos.X-RefereeSize/2, 30, FieldWidth-RefereeSize-30)
	ty := clampF(w.Ball.Pos.Y+80, 100, FieldHeight-RefereeSize-100)
	dx := tx - r.Pos.X
	dy := ty - r.Pos.Y

	running := false
	if hypot(dx, dy) > 50 {
		r.Vel.X = dx * 0.03
		r.Vel.Y = dy * 0.03
		running = true
	} else {
		r.Vel.X *= 0.9
		r.Vel.Y *= 0.9
	}
	r.Pos.X += r.Vel.X
	r.Pos.Y += r.Vel.Y

	if r.Timer > 0 {
		r.Timer--
		if r.Timer == 0 {
			r.State = RefereeWatching
		}
		return
	}
	if running {
		r.State = RefereeRunning
	} else if math.Abs(r.Vel.X) < 0.1 && math.Abs(r.Vel.Y) < 0.1 {
		r.State = RefereeWatching
	}
}

// Blow makes the referee whistle for WhistleTicks.
func (r *Referee) Blow() {
	r.State = RefereeWhistle
	r.Timer = WhistleTicks
}

// ShowCard holds a yellow or red card for CardTicks.
func (r *Referee) ShowCard(red bool) {
	r.State = RefereeCardYellow
	if red {
		r.State = RefereeCardRed
	}
	r.Timer = CardTicks
}
