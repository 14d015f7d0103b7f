package game

import (
	"math"
	"math/rand"
)

func hypot(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}

func clampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// AdvanceBall moves the ball one tick: trail, integration, spin curve,
// height bounce, friction, wind, rest snapping and wall reflection. Goal
// mouths are gaps in the top and bottom walls. Every reflection is reported
// through emit.
func AdvanceBall(w *World, emit func(Event)) {
	b := &w.Ball

	if b.Speed() > TrailMinSpeed {
		b.Trail.Push(TrailPoint{X: b.Pos.X, Y: b.Pos.Y, Alpha: 1})
	}
	b.Trail.Fade(TrailFade)

	b.Pos.X += b.Vel.X
	b.Pos.Y += b.Vel.Y

	b.Rotation += b.Spin
	b.Spin *= SpinDecay
	b.Vel.X += b.Spin * SpinCurve

	if b.Height > 0 || b.HeightVel != 0 {
		b.HeightVel -= HeightGravity
		b.Height += b.HeightVel
		if b.Height <= 0 {
			b.Height = 0
			b.HeightVel = -b.HeightVel * HeightBounce
			if math.Abs(b.HeightVel) < HeightRestSpeed {
				b.HeightVel = 0
			}
		}
	}

	friction := GroundFriction
	if b.Height > 0 {
		friction = AirFriction
	}
	b.Vel.X *= friction
	b.Vel.Y *= friction

	if w.Match.Weather == WeatherWindy || w.Match.Weather == WeatherRain {
		b.Vel.X += w.Match.Wind * WindFactor
	}

	if math.Abs(b.Vel.X) < RestSpeed {
		b.Vel.X = 0
	}
	if math.Abs(b.Vel.Y) < RestSpeed {
		b.Vel.Y = 0
	}

	bounce := func() {
		if emit != nil {
			emit(Event{Kind: EventBounce, Pos: b.Pos})
		}
	}
	if b.Pos.X < BallRadius {
		b.Pos.X = BallRadius
		b.Vel.X = -b.Vel.X
		bounce()
	}
	if b.Pos.X > FieldWidth-BallRadius {
		b.Pos.X = FieldWidth - BallRadius
		b.Vel.X = -b.Vel.X
		bounce()
	}
	if b.Pos.Y > FieldHeight-BallRadius && !BottomGoal.InMouth(b.Pos.X) {
		b.Pos.Y = FieldHeight - BallRadius
		b.Vel.Y = -b.Vel.Y
		bounce()
	}
	if b.Pos.Y < BallRadius && !TopGoal.InMouth(b.Pos.X) {
		b.Pos.Y = BallRadius
		b.Vel.Y = -b.Vel.Y
		bounce()
	}
}

// Kick strikes the ball from the kicker's center. Nothing happens when the
// ball is KickRange or more away. A power kick needs a charge above
// PowerKickThreshold, otherwise it falls back to a normal kick. It reports
// whether the ball was struck.
func Kick(b *Ball, kicker Vec, power float64, charging bool, rng *rand.Rand) (struck, powered bool) {
	dx := b.Pos.X - kicker.X
	dy := b.Pos.Y - kicker.Y
	if hypot(dx, dy) >= KickRange {
		return false, false
	}

	powered = charging && power > PowerKickThreshold
	factor := 0.3
	minSpeed := 8.0
	if powered {
		factor = 0.4 + power/150
		minSpeed = 12
	}

	b.Vel.X = dx * factor
	b.Vel.Y = dy * factor

	// too close to the center for a direction; punt it up the field
	if math.Abs(b.Vel.X) < 3 && math.Abs(b.Vel.Y) < 3 {
		b.Vel.Y = -minSpeed
	}

	if powered {
		b.Vel.X *= PowerKickMult
		b.Vel.Y *= PowerKickMult
		b.Spin = (rng.Float64() - 0.5) * 0.5
		b.HeightVel = 4 + power/30
	} else {
		b.Spin = (rng.Float64() - 0.5) * 0.2
		b.HeightVel = 2
	}
	b.Rotation += math.Abs(b.Vel.X) * 0.1
	return true, powered
}
