package game

import "math"

// steer turns held directions into a per-tick displacement. Right wins
// over left and down over up when both are held.
func steer(in Input, speed float64) (dx, dy float64) {
	if in.Left {
		dx = -speed
	}
	if in.Right {
		dx = speed
	}
	if in.Up {
		dy = -speed
	}
	if in.Down {
		dy = speed
	}
	return dx, dy
}

// exert drains or regenerates stamina and returns the speed it allows.
func (p *Player) exert(moving bool) float64 {
	speed := p.BaseSpeed * (StaminaMinMult + p.Stamina/MaxStamina*(1-StaminaMinMult))
	if moving {
		p.AnimFrame += 0.3
		p.Stamina = math.Max(0, p.Stamina-StaminaDrain)
	} else {
		p.Stamina = math.Min(MaxStamina, p.Stamina+StaminaRegen)
	}
	p.Running = moving
	return speed
}

func keepInField(pos *Vec, w, h float64) {
	pos.X = clampF(pos.X, 40, FieldWidth-w-40)
	pos.Y = clampF(pos.Y, 20, FieldHeight-h-20)
}

// UpdateControlled hands control to whichever of the primary player and the
// teammates is nearest the ball. Ties stay with the primary player. In
// networked mode the primary player is always controlled.
func UpdateControlled(w *World) {
	if w.Match.Mode == ModeNetworked {
		w.Controlled = ControlPrimary
		return
	}

	c := w.Players[0].Center()
	best := ControlPrimary
	bestDist := hypot(w.Ball.Pos.X-c.X, w.Ball.Pos.Y-c.Y)
	for i := range w.Teammates {
		tc := w.Teammates[i].Center()
		if d := hypot(w.Ball.Pos.X-tc.X, w.Ball.Pos.Y-tc.Y); d < bestDist {
			bestDist = d
			best = i
		}
	}
	w.Controlled = best
}

// movePrimary applies player 1's input to whichever actor is controlled.
func movePrimary(w *World) {
	in := w.Inputs[0]
	p := &w.Players[0]

	speed := p.exert(in.Moving())
	dx, dy := steer(in, speed)
	if dx != 0 || dy != 0 {
		p.Facing = math.Atan2(dy, dx)
	}

	if w.Controlled == ControlPrimary {
		p.Pos.X += dx
		p.Pos.Y += dy
		keepInField(&p.Pos, PlayerWidth, PlayerHeight)
		return
	}
	t := &w.Teammates[w.Controlled]
	t.Pos.X += dx
	t.Pos.Y += dy
	keepInField(&t.Pos, TeammateSize, TeammateSize)
}

// moveSecond drives player 2. Only networked matches have one.
func moveSecond(w *World) {
	in := w.Inputs[1]
	p := &w.Players[1]

	speed := p.exert(in.Moving())
	dx, dy := steer(in, speed)
	if dx != 0 || dy != 0 {
		p.Facing = math.Atan2(dy, dx)
	}
	p.Pos.X += dx
	p.Pos.Y += dy
	keepInField(&p.Pos, PlayerWidth, PlayerHeight)
}

// chargePower raises a held charge by PowerChargeRate up to MaxPower.
func chargePower(in *Input) {
	if in.Charging && in.Power < MaxPower {
		in.Power = math.Min(MaxPower, in.Power+PowerChargeRate)
	}
}

// kickerCenter returns the center of the actor kicking for participant idx.
func kickerCenter(w *World, idx int) Vec {
	if idx == 0 && w.Controlled != ControlPrimary {
		return w.Teammates[w.Controlled].Center()
	}
	return w.Players[idx].Center()
}
