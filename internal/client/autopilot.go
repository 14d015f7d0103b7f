package client

import (
	"math"

	"github.com/uset82/My-Football-Game/internal/game"
)

const (
	chargeRange = 120.0
	kickRange   = game.KickRange - 5
	deadZone    = 4.0
)

// Autopilot plays by chasing the ball, charging on approach and kicking
// once in range. It stands in for a keyboard in headless runs.
type Autopilot struct{}

func (Autopilot) Poll(w *game.World, idx int) game.Input {
	from := actorCenter(w, idx)
	dx := w.Ball.Pos.X - from.X
	dy := w.Ball.Pos.Y - from.Y
	dist := math.Hypot(dx, dy)

	in := game.Input{
		Left:  dx < -deadZone,
		Right: dx > deadZone,
		Up:    dy < -deadZone,
		Down:  dy > deadZone,
	}
	// Charge on approach; the kick releases whatever has built up.
	in.Charging = dist < chargeRange
	in.Kick = dist < kickRange
	return in
}

// actorCenter is the center of whoever participant idx currently moves.
func actorCenter(w *game.World, idx int) game.Vec {
	if idx == 0 && w.Controlled != game.ControlPrimary {
		return w.Teammates[w.Controlled].Center()
	}
	return w.Players[idx].Center()
}
